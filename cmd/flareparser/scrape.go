package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Memorem/wallpaperflare-parser/pkg/scraper"
	"github.com/Memorem/wallpaperflare-parser/pkg/session"
	"github.com/Memorem/wallpaperflare-parser/pkg/ui"
	"github.com/spf13/cobra"
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [tag]",
	Short: "Download wallpapers for a tag, or from the front page when the tag is empty",
	Long: `Download wallpapers for a search tag.

Without a tag argument the command asks for one when running in a terminal;
the tag is also read from piped stdin. An empty answer downloads from the
front page listing into <root>/image/Main page image/.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addScrapeFlags(scrapeCmd)
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("root-dir", "o", "", "root output directory; images go to <root>/image/<tag>")
	cmd.Flags().Int("workers", 0, "download workers (0 = one per CPU)")
	cmd.Flags().Int("max-pages", 0, "stop after this many listing pages (0 = no limit)")
	cmd.Flags().Duration("timeout", 0, "per-request timeout, e.g. 30s")
	cmd.Flags().Int("max-retries", 0, "attempts per request for transient failures")
	cmd.Flags().Bool("overwrite", false, "download again when the file already exists")
	cmd.Flags().Bool("rename", true, "renumber files after downloading")
	cmd.Flags().String("base-url", "", "site base URL")
	cmd.Flags().String("user-agent", "", "User-Agent header")
	cmd.Flags().Bool("no-pause", false, "do not wait for Enter before exiting")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	interactive := ui.IsInteractive()
	if interactive {
		ui.PrintLogo()
	}

	var tag string
	switch {
	case len(args) == 1:
		tag = args[0]
	case interactive:
		tag, err = ui.AskTag()
		if errors.Is(err, ui.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	default:
		// piped stdin; EOF means main page mode
		tag, err = ui.ReadLine(os.Stdin, os.Stdout, ui.TagQuestion)
		if err != nil {
			return err
		}
	}

	sess := session.New(tag, cfg.Output.RootDirectory, cfg.Site.Headers)
	if sess.Mode() == session.ModeMainPage {
		ui.PrintInfo("Mode", "main page")
	} else {
		ui.PrintInfo("Tag", sess.Tag())
	}
	ui.PrintInfo("Directory", sess.Dir())

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scraper.New(cfg,
		scraper.WithLogger(log),
		scraper.WithReporter(ui.NewStageTracker(os.Stdout)))
	summary, runErr := s.Run(ctx, sess)

	if summary != nil {
		ui.PrintSummary(os.Stdout, "Run summary", summaryRows(summary))
	}
	if runErr == nil {
		ui.PrintSuccess("Done")
	}

	noPause, _ := cmd.Flags().GetBool("no-pause")
	if interactive && !noPause {
		ui.Pause(os.Stdin, os.Stdout, "Press Enter to exit...")
	}
	return runErr
}

func summaryRows(s *scraper.Summary) []ui.SummaryRow {
	return []ui.SummaryRow{
		ui.Row("Directory", s.Dir),
		ui.Row("Listing pages", fmt.Sprintf("%d (%s)", s.Pages, s.StopReason)),
		ui.Row("Referer links", s.RefererLinks),
		ui.Row("Image pages", s.ImagePages),
		ui.Row("Image URLs", s.ImageURLs),
		ui.Row("Unresolved", s.ResolveFailed),
		ui.Row("Downloaded", s.Downloaded),
		ui.Row("Skipped", s.Skipped),
		ui.Row("Failed", s.Failed),
		ui.Row("Renamed", s.Renamed),
		ui.Row("Duration", s.Duration.Round(time.Millisecond)),
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
