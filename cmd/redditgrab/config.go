package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"redditgrab/pkg/config"
	"redditgrab/pkg/ui"
)

const defaultConfigPath = ".redditgrab.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage redditgrab configuration files.

Configuration is loaded from, in order of priority:
  - Command line flags
  - Environment variables (REDDITGRAB_*)
  - .env files
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write a configuration file holding every option with its default value.

The file is created as '.redditgrab.yaml' in the current directory unless
another path is given with --config. An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = defaultConfigPath
		}
		if err := writeDefaultConfig(path); err != nil {
			return err
		}
		ui.PrintSuccess("Configuration file created: " + path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, nil)
		if err != nil {
			return err
		}
		ui.PrintHighlight("Current configuration")
		return showConfig(cmd.OutOrStdout(), cfg)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from every source and check it.

Besides value checks, the output directory and the directory of the run log
must be creatable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, nil)
		if err != nil {
			return err
		}
		if err := checkPaths(cfg); err != nil {
			return err
		}

		ui.PrintSuccess("Configuration is valid")
		ui.PrintInfo("Output directory", cfg.Output.Directory)
		ui.PrintInfo("Requests per minute", fmt.Sprintf("%d", cfg.Reddit.RequestsPerMinute))
		ui.PrintInfo("Download delay", cfg.Download.Delay.String())
		ui.PrintInfo("Retry attempts", fmt.Sprintf("%d", cfg.Download.RetryAttempts))
		ui.PrintInfo("Log level", cfg.Logging.Level)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file %s already exists", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	return nil
}

func showConfig(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// checkPaths makes sure the directories a run writes to can be created
func checkPaths(cfg *config.Config) error {
	var errs []error
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		errs = append(errs, fmt.Errorf("cannot create output directory: %w", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			errs = append(errs, fmt.Errorf("cannot create log directory: %w", err))
		}
	}
	return errors.Join(errs...)
}
