package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectorlite/vectorlite"
)

func NewBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <output>",
		Short: "Write a compressed backup of the database",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackup,
	}
}

func runBackup(cmd *cobra.Command, args []string) error {
	db, err := openDB(cmd, vectorlite.WithReadOnly())
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := db.Backup(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", args[0])
	return nil
}

func NewRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup>",
		Short: "Restore the database file from a backup",
		Long:  `Validate a backup produced by the backup command and write it to the --db path. A damaged backup fails validation and leaves any existing database file untouched.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}
}

func runRestore(cmd *cobra.Command, args []string) error {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := vectorlite.Restore(f, path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s\n", path, args[0])
	return nil
}
