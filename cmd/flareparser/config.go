package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Memorem/wallpaperflare-parser/pkg/config"
	"github.com/Memorem/wallpaperflare-parser/pkg/ui"
	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage flareparser configuration files.

Configuration is loaded from, lowest priority first:
  - Default values
  - Configuration file
  - .env files
  - Environment variables (FLARE_*)
  - Command line flags`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the default values",
	Long: `Create a configuration file holding every option at its default value.

The file is written to ./.flareparser.yaml, to the path given with --config,
or to $XDG_CONFIG_HOME/flareparser/config.yaml with --global.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from every source and report invalid values.

This command checks:
  - YAML syntax
  - Site URL and templates
  - Value ranges
  - Output and log directory accessibility`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	initCmd.Flags().Bool("global", false, "write to the XDG config directory")
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if global, _ := cmd.Flags().GetBool("global"); global {
		configPath = filepath.Join(xdg.ConfigHome, config.AppName, "config.yaml")
	}
	if configPath == "" {
		configPath = "." + config.AppName + ".yaml"
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Adjust the output directory and worker counts")
	fmt.Fprintln(out, "2. Run 'flareparser config validate' to check the configuration")
	fmt.Fprintln(out, "3. Start downloading with 'flareparser <tag>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, changedFlags(cmd))
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	if configPath == "" {
		configPath = "(none found)"
	}
	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintf(out, "2. Environment variables (%s*) and .env files\n", config.EnvPrefix)
	fmt.Fprintf(out, "3. Configuration file: %s\n", configPath)
	fmt.Fprintln(out, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	if configPath != "" {
		ui.PrintInfo("Validating configuration", configPath)
	} else {
		ui.PrintInfo("Validating configuration", "defaults and environment")
	}

	cfg, err := config.Load(configPath, changedFlags(cmd))
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var problems []error
	if err := os.MkdirAll(cfg.Output.RootDirectory, 0755); err != nil {
		problems = append(problems, fmt.Errorf("cannot create output directory: %w", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Errorf("cannot create log directory: %w", err))
		}
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintSummary(cmd.OutOrStdout(), "Configuration summary", []ui.SummaryRow{
		ui.Row("Base URL", cfg.Site.BaseURL),
		ui.Row("Root directory", cfg.Output.RootDirectory),
		ui.Row("Download workers", workersLabel(cfg.Download.Workers)),
		ui.Row("Max pages", pagesLabel(cfg.Download.MaxPages)),
		ui.Row("Max retries", cfg.Retry.MaxAttempts),
		ui.Row("Log level", cfg.Logging.Level),
	})
	return nil
}

func workersLabel(n int) string {
	if n <= 0 {
		return "one per CPU"
	}
	return fmt.Sprint(n)
}

func pagesLabel(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
