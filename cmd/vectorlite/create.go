package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectorlite/vectorlite"
	"github.com/vectorlite/vectorlite/distance"
)

func NewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new database file",
		Long:  `Create an empty database file with the given dimension and metric. Parent directories are created as needed.`,
		Args:  cobra.NoArgs,
		RunE:  runCreate,
	}

	cmd.Flags().Int("dimension", 0, "Vector dimensionality (falls back to the config file value)")
	cmd.Flags().String("metric", "", "Similarity metric: cosine, l2 or dot")

	return cmd
}

func runCreate(cmd *cobra.Command, _ []string) error {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("database already exists at %s", path)
	}

	cfg, _, err := LoadDefaultConfig()
	if err != nil {
		return err
	}

	dimension, _ := cmd.Flags().GetInt("dimension")
	if dimension == 0 {
		dimension = cfg.Dimension
	}
	if dimension <= 0 {
		return fmt.Errorf("pass --dimension or set dimension in the config file")
	}

	metricName, _ := cmd.Flags().GetString("metric")
	if metricName == "" {
		metricName = cfg.Metric
	}
	metric, err := distance.Parse(metricName)
	if err != nil {
		return err
	}

	opts := append(commonOptions(cmd),
		vectorlite.WithDimension(dimension),
		vectorlite.WithMetric(metric),
	)
	db, err := vectorlite.Open(path, opts...)
	if err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s (dimension %d, metric %s)\n", path, dimension, metric)
	return nil
}
