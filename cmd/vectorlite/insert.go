package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert [id]",
		Short: "Insert or replace a record",
		Long:  `Insert a vector with optional metadata. Without an id argument a random UUID is assigned and printed.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInsert,
	}

	cmd.Flags().String("vector", "", "Comma-separated vector components (required)")
	cmd.Flags().String("metadata", "", "Metadata document as a JSON object")
	_ = cmd.MarkFlagRequired("vector")

	return cmd
}

func runInsert(cmd *cobra.Command, args []string) error {
	id := uuid.NewString()
	if len(args) == 1 {
		id = args[0]
	}

	raw, _ := cmd.Flags().GetString("vector")
	vector, err := parseVector(raw)
	if err != nil {
		return err
	}

	metaRaw, _ := cmd.Flags().GetString("metadata")
	doc, err := parseMetadata(metaRaw)
	if err != nil {
		return err
	}

	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Insert(id, vector, doc); err != nil {
		return err
	}
	// Close flushes; surface its error instead of relying on the defer.
	if err := db.Close(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
