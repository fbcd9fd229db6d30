package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vectorlite/vectorlite"
	"github.com/vectorlite/vectorlite/metadata"
)

// resolveDBPath returns the --db flag value, falling back to the config file.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("db")
	if path != "" {
		return path, nil
	}

	cfg, _, err := LoadDefaultConfig()
	if err != nil {
		return "", err
	}
	if cfg.Database == "" {
		return "", fmt.Errorf("no database path: pass --db or set database in the config file")
	}
	return cfg.Database, nil
}

func openDB(cmd *cobra.Command, extra ...vectorlite.Option) (*vectorlite.DB, error) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}

	opts := commonOptions(cmd)
	opts = append(opts, extra...)
	return vectorlite.Open(path, opts...)
}

func commonOptions(cmd *cobra.Command) []vectorlite.Option {
	var opts []vectorlite.Option
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts = append(opts, vectorlite.WithLogger(vectorlite.NewTextLogger(slog.LevelDebug)))
	}
	return opts
}

// parseVector parses a comma-separated list of numbers, e.g. "0.1,0.2,0.3".
func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	vec := make([]float32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		vec = append(vec, float32(f))
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("vector is empty")
	}
	return vec, nil
}

func formatVector(vec []float32) string {
	parts := make([]string, len(vec))
	for i, x := range vec {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}

// parseMetadata decodes a JSON object into a typed metadata document.
func parseMetadata(s string) (metadata.Document, error) {
	if s == "" {
		return nil, nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("invalid metadata JSON: %w", err)
	}
	return metadata.DocumentFromAny(raw)
}

type filterSpec struct {
	Key   string `json:"key"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// parseFilters decodes a JSON array (or a single object) of filter
// conditions, e.g. [{"key":"kind","op":"eq","value":"fruit"}].
func parseFilters(s string) (*metadata.FilterSet, error) {
	if s == "" {
		return nil, nil
	}

	var specs []filterSpec
	if err := json.Unmarshal([]byte(s), &specs); err != nil {
		var single filterSpec
		if err2 := json.Unmarshal([]byte(s), &single); err2 != nil {
			return nil, fmt.Errorf("invalid filter JSON: %w", err)
		}
		specs = []filterSpec{single}
	}

	filters := make([]metadata.Filter, 0, len(specs))
	for _, spec := range specs {
		op := metadata.Operator(spec.Op)
		if !validOperator(op) {
			return nil, fmt.Errorf("unknown filter operator %q", spec.Op)
		}
		value, err := metadata.FromAny(spec.Value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, metadata.Filter{Key: spec.Key, Operator: op, Value: value})
	}
	return metadata.NewFilterSet(filters...), nil
}

func validOperator(op metadata.Operator) bool {
	switch op {
	case metadata.OpEqual, metadata.OpNotEqual,
		metadata.OpGreaterThan, metadata.OpGreaterEqual,
		metadata.OpLessThan, metadata.OpLessEqual,
		metadata.OpIn, metadata.OpContains:
		return true
	}
	return false
}

// valueToAny converts a typed metadata value back to plain Go data for
// user-facing JSON output.
func valueToAny(v metadata.Value) any {
	switch v.Kind {
	case metadata.KindNull:
		return nil
	case metadata.KindInt:
		i, _ := v.AsInt64()
		return i
	case metadata.KindFloat:
		f, _ := v.AsFloat64()
		return f
	case metadata.KindString:
		s, _ := v.AsString()
		return s
	case metadata.KindBool:
		b, _ := v.AsBool()
		return b
	case metadata.KindArray:
		arr, _ := v.AsArray()
		out := make([]any, len(arr))
		for i := range arr {
			out[i] = valueToAny(arr[i])
		}
		return out
	default:
		return nil
	}
}

func documentToAny(doc metadata.Document) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = valueToAny(v)
	}
	return out
}

func formatDocument(doc metadata.Document) string {
	if doc == nil {
		return ""
	}
	data, err := json.Marshal(documentToAny(doc))
	if err != nil {
		return ""
	}
	return string(data)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
