package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vectorlite/vectorlite"
)

func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find the k best-scoring records for a query vector",
		Long:  `Score every record against the query vector and print the k best, optionally restricted by metadata filters.`,
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}

	cmd.Flags().String("vector", "", "Comma-separated query vector (required)")
	cmd.Flags().IntP("top-k", "k", 10, "Number of results")
	cmd.Flags().String("filter", "", `Filter conditions as JSON, e.g. '[{"key":"kind","op":"eq","value":"fruit"}]'`)
	_ = cmd.MarkFlagRequired("vector")

	return cmd
}

func runSearch(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("vector")
	query, err := parseVector(raw)
	if err != nil {
		return err
	}

	k, _ := cmd.Flags().GetInt("top-k")

	filterRaw, _ := cmd.Flags().GetString("filter")
	fs, err := parseFilters(filterRaw)
	if err != nil {
		return err
	}

	db, err := openDB(cmd, vectorlite.WithReadOnly())
	if err != nil {
		return err
	}
	defer db.Close()

	var searchOpts []vectorlite.SearchOption
	if fs != nil {
		searchOpts = append(searchOpts, vectorlite.WithFilter(fs))
	}

	results, err := db.Search(query, k, searchOpts...)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out := make([]map[string]any, len(results))
		for i, r := range results {
			out[i] = map[string]any{"id": r.ID, "score": r.Score}
			if r.Metadata != nil {
				out[i]["metadata"] = documentToAny(r.Metadata)
			}
		}
		return printJSON(cmd, out)
	}

	for i, r := range results {
		line := fmt.Sprintf("%2d. %-24s %.6f", i+1, r.ID, r.Score)
		if r.Metadata != nil {
			line += "  " + formatDocument(r.Metadata)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
