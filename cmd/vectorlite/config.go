package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const localConfigName = "vectorlite.yaml"

// Config holds CLI defaults so common flags can be omitted.
type Config struct {
	Database  string `yaml:"database"`
	Dimension int    `yaml:"dimension"`
	Metric    string `yaml:"metric"`
}

func defaultConfig() *Config {
	return &Config{Metric: "cosine"}
}

func applyConfigDefaults(cfg *Config) {
	if cfg.Metric == "" {
		cfg.Metric = "cosine"
	}
}

// LoadConfig reads a config from path. A missing file returns defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefaultConfig tries ./vectorlite.yaml first, then
// ~/.config/vectorlite/config.yaml. Missing files fall back to defaults.
func LoadDefaultConfig() (*Config, string, error) {
	if _, err := os.Stat(localConfigName); err == nil {
		cfg, err := LoadConfig(localConfigName)
		return cfg, localConfigName, err
	}

	userPath, err := defaultUserConfigPath()
	if err != nil {
		return defaultConfig(), "", nil
	}
	cfg, err := LoadConfig(userPath)
	return cfg, userPath, err
}

// SaveConfig writes the config to path, creating directories as needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vectorlite", "config.yaml"), nil
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage CLI configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a default config file to the user config directory",
			RunE:  runConfigInit,
		},
	)

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, path, err := LoadDefaultConfig()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, map[string]any{
			"path":      path,
			"database":  cfg.Database,
			"dimension": cfg.Dimension,
			"metric":    cfg.Metric,
		})
	}

	if path == "" {
		path = "(none)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "config file: %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "database:    %s\n", cfg.Database)
	fmt.Fprintf(cmd.OutOrStdout(), "dimension:   %d\n", cfg.Dimension)
	fmt.Fprintf(cmd.OutOrStdout(), "metric:      %s\n", cfg.Metric)
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := defaultUserConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := SaveConfig(path, defaultConfig()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
