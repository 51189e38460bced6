package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/Memorem/wallpaperflare-parser/pkg/config"
	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/Memorem/wallpaperflare-parser/pkg/ui"
	"github.com/spf13/cobra"
)

var (
	// Version information, set with -ldflags at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// rootCmd scrapes when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "flareparser [tag]",
	Short: "Download wallpapers from wallpaperflare.com by tag",
	Long: `flareparser walks the wallpaperflare.com listing for a search tag (or the
front page when no tag is given), resolves every wallpaper to its full-size
image and downloads the images into <root>/image/<tag>/.

Files are named wallpaper_flare_<n>.<ext> and renumbered 0..n-1 after the run.`,
	Example: `  # Ask for a tag interactively
  flareparser

  # Download everything tagged "nature", at most 3 listing pages
  flareparser nature --max-pages 3

  # Front page wallpapers into ./walls with 8 download workers
  flareparser scrape "" --root-dir ./walls --workers 8`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(1),
	RunE:          runScrape,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default: ./.flareparser.yaml or $XDG_CONFIG_HOME/flareparser/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show info-level logs alongside progress")

	addScrapeFlags(rootCmd)

	rootCmd.SetVersionTemplate(`flareparser {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// flagKeys lists the flags forwarded to config.MergeCommandLineFlags
var flagKeys = []string{
	"base-url", "user-agent", "root-dir", "overwrite", "rename",
	"workers", "max-pages", "timeout", "max-retries", "log-level", "log-file",
}

// changedFlags collects the explicitly set flags of cmd by their typed value
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()
	for _, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		switch f.Value.Type() {
		case "string":
			v, _ := fs.GetString(name)
			flags[name] = v
		case "int":
			v, _ := fs.GetInt(name)
			flags[name] = v
		case "bool":
			v, _ := fs.GetBool(name)
			flags[name] = v
		case "duration":
			v, _ := fs.GetDuration(name)
			flags[name] = v
		}
	}
	return flags
}

// setup loads the configuration for cmd and initializes the global logger
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, changedFlags(cmd))
	if err != nil {
		return nil, nil, err
	}

	// progress lines carry the run; logs only surface problems unless asked for
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose && !cmd.Flags().Changed("log-level") && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"version": version,
		"started": time.Now().Format(time.RFC3339),
	}).Debug("flareparser starting")

	return cfg, log, nil
}
