package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectorlite/vectorlite"
)

func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print a summary of the database",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	db, err := openDB(cmd, vectorlite.WithReadOnly())
	if err != nil {
		return err
	}
	defer db.Close()

	st := db.Stats()

	var warnings []string
	for _, w := range db.Warnings() {
		warnings = append(warnings, w.String())
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, map[string]any{
			"records":    st.Records,
			"tombstones": st.Tombstones,
			"capacity":   st.Capacity,
			"dimension":  st.Dimension,
			"metric":     st.Metric.String(),
			"modified":   st.Modified.UTC().Format(time.RFC3339),
			"file_size":  st.FileSize,
			"warnings":   warnings,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "records:    %d\n", st.Records)
	fmt.Fprintf(out, "tombstones: %d\n", st.Tombstones)
	fmt.Fprintf(out, "capacity:   %d\n", st.Capacity)
	fmt.Fprintf(out, "dimension:  %d\n", st.Dimension)
	fmt.Fprintf(out, "metric:     %s\n", st.Metric)
	fmt.Fprintf(out, "modified:   %s\n", st.Modified.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "file size:  %d bytes\n", st.FileSize)
	if len(warnings) > 0 {
		fmt.Fprintln(out, "warnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	return nil
}
