package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCompactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Rewrite the database without tombstoned slots",
		Args:  cobra.NoArgs,
		RunE:  runCompact,
	}
}

func runCompact(cmd *cobra.Command, _ []string) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	before := db.Stats().Capacity
	if err := db.Compact(); err != nil {
		return err
	}
	reclaimed := before - db.Stats().Capacity

	if err := db.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "reclaimed %d slots\n", reclaimed)
	return nil
}
