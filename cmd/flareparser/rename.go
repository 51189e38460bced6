package main

import (
	"github.com/Memorem/wallpaperflare-parser/pkg/checkpoint"
	"github.com/Memorem/wallpaperflare-parser/pkg/storage"
	"github.com/Memorem/wallpaperflare-parser/pkg/ui"
	"github.com/spf13/cobra"
)

// renameCmd renumbers an existing download directory without scraping
var renameCmd = &cobra.Command{
	Use:   "rename <dir>",
	Short: "Renumber downloaded wallpapers to <prefix>_0..n-1",
	Long: `Renumber every <prefix>_<token>.<ext> file in a directory to
<prefix>_<index>.<ext>, keeping the extension. Other files are left alone.
Running it twice gives the same result.`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
	renameCmd.Flags().String("prefix", "", "file prefix to match (default from config)")
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	if prefix == "" {
		prefix = cfg.Output.FilePrefix
	}

	report, err := storage.Rename(args[0], prefix)
	log.InfoWithFields("Rename finished", map[string]interface{}{
		"dir":       args[0],
		"renamed":   report.Renamed,
		"unchanged": report.Unchanged,
		"skipped":   report.Skipped,
	})
	if err != nil {
		return err
	}

	// keep a scrape checkpoint in the directory pointing at the new names
	cp, err := checkpoint.Open(args[0], "", log)
	if err != nil {
		log.WithError(err).Warn("Ignoring unreadable checkpoint")
	} else if cp.Len() > 0 {
		cp.Remap(report.Moves)
		if err := cp.Save(); err != nil {
			log.WithError(err).Warn("Failed to save checkpoint")
		}
	}

	ui.PrintSummary(cmd.OutOrStdout(), "Rename", []ui.SummaryRow{
		ui.Row("Directory", args[0]),
		ui.Row("Renamed", report.Renamed),
		ui.Row("Unchanged", report.Unchanged),
		ui.Row("Skipped", report.Skipped),
	})
	return nil
}
