package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vectorlite",
		Short:         "Embedded single-file vector database",
		Long:          `vectorlite stores float32 vectors with typed metadata in a single file and answers exact top-k similarity queries over it.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	addSubcommands(rootCmd)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("db", "", "Path to the database file (defaults to the config file value)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("verbose", false, "Log operations to stderr")
}

func addSubcommands(root *cobra.Command) {
	root.AddCommand(
		NewCreateCmd(),
		NewInsertCmd(),
		NewGetCmd(),
		NewDeleteCmd(),
		NewSearchCmd(),
		NewStatsCmd(),
		NewCompactCmd(),
		NewBackupCmd(),
		NewRestoreCmd(),
		NewConfigCmd(),
	)
}
