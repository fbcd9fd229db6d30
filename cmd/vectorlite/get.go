package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vectorlite/vectorlite"
)

func NewGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Retrieve a record",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	db, err := openDB(cmd, vectorlite.WithReadOnly())
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.Get(args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, map[string]any{
			"id":       rec.ID,
			"vector":   rec.Vector,
			"metadata": documentToAny(rec.Metadata),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "id:       %s\n", rec.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "vector:   %s\n", formatVector(rec.Vector))
	if rec.Metadata != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "metadata: %s\n", formatDocument(rec.Metadata))
	}
	return nil
}
