package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Memorem/wallpaperflare-parser/internal/downloader"
	"github.com/Memorem/wallpaperflare-parser/pkg/checkpoint"
	"github.com/Memorem/wallpaperflare-parser/pkg/config"
	"github.com/Memorem/wallpaperflare-parser/pkg/extract"
	"github.com/Memorem/wallpaperflare-parser/pkg/fetch"
	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/Memorem/wallpaperflare-parser/pkg/paginate"
	"github.com/Memorem/wallpaperflare-parser/pkg/pipeline"
	"github.com/Memorem/wallpaperflare-parser/pkg/retry"
	"github.com/Memorem/wallpaperflare-parser/pkg/session"
	"github.com/Memorem/wallpaperflare-parser/pkg/storage"
)

// Stage names passed to the Reporter and the logs
const (
	StageListing    = "listing"
	StageImagePages = "image pages"
	StageImageURLs  = "image urls"
	StageDownload   = "download"
	StageRename     = "rename"
)

// ErrNothingFetched means the run produced no image URL at all
var ErrNothingFetched = errors.New("nothing fetched")

// Summary describes a finished run
type Summary struct {
	Dir          string
	Pages        int
	StopReason   paginate.StopReason
	RefererLinks int
	ImagePages   int
	ImageURLs    int
	// ResolveFailed counts referer and image pages that could not be fetched or parsed
	ResolveFailed int
	Downloaded    int
	Skipped       int
	Failed        int
	Renamed       int
	Duration      time.Duration
}

// Scraper orchestrates one wallpaper run
type Scraper struct {
	config   *config.Config
	client   Client
	reporter Reporter
	logger   logger.Logger
}

// Option configures a Scraper
type Option func(*Scraper)

// WithClient replaces the HTTP client built from the session headers
func WithClient(c Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithReporter sets the stage progress receiver
func WithReporter(r Reporter) Option {
	return func(s *Scraper) { s.reporter = r }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// New creates a Scraper from cfg
func New(cfg *config.Config, opts ...Option) *Scraper {
	s := &Scraper{
		config:   cfg,
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetLogger()
	}
	return s
}

// Run executes every stage for sess. Per-item failures are counted in the
// Summary; the error is non-nil only when nothing could be fetched or the
// output directory cannot be created.
func (s *Scraper) Run(ctx context.Context, sess *session.Session) (*Summary, error) {
	start := time.Now()
	log := s.logger.WithFields(map[string]interface{}{
		"tag":  sess.Tag(),
		"mode": sess.Mode().String(),
	})
	summary := &Summary{Dir: sess.Dir()}
	defer func() { summary.Duration = time.Since(start) }()

	if err := sess.EnsureDir(); err != nil {
		return summary, err
	}
	client := s.clientFor(sess)

	referers := s.collectReferers(ctx, client, sess, summary, log)
	if summary.Pages == 0 && summary.StopReason == paginate.StopError {
		return summary, fmt.Errorf("%w: first listing page failed", ErrNothingFetched)
	}

	imagePages, failedPages := s.resolve(ctx, client, StageImagePages, referers, extract.ImagePageLink, log)
	summary.ImagePages = len(imagePages)

	imageURLs, failedURLs := s.resolve(ctx, client, StageImageURLs, imagePages, extract.DownloadLink, log)
	summary.ImageURLs = len(imageURLs)
	summary.ResolveFailed = failedPages + failedURLs

	if len(imageURLs) == 0 {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		return summary, fmt.Errorf("%w: no image URL resolved", ErrNothingFetched)
	}

	cp, err := checkpoint.Open(sess.Dir(), sess.Tag(), log)
	if err != nil {
		log.WithError(err).Warn("Ignoring unreadable checkpoint")
	}

	if err := s.download(ctx, client, sess, cp, imageURLs, summary, log); err != nil {
		return summary, err
	}
	saveCheckpoint(cp, log)

	if s.config.Output.RenameAfterDownload {
		s.reporter.StageStarted(StageRename, summary.Downloaded+summary.Skipped)
		report, err := storage.Rename(sess.Dir(), s.config.Output.FilePrefix)
		if err != nil {
			log.WithError(err).Warn("Rename pass failed")
		}
		cp.Remap(report.Moves)
		saveCheckpoint(cp, log)
		summary.Renamed = report.Renamed
		s.reporter.StageFinished(StageRename, report.Renamed+report.Unchanged, 0)
	}

	summary.Duration = time.Since(start)
	logger.LogSummary(log, map[string]interface{}{
		"pages":       summary.Pages,
		"image_urls":  summary.ImageURLs,
		"downloaded":  summary.Downloaded,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"renamed":     summary.Renamed,
		"stop_reason": summary.StopReason.String(),
		"duration":    summary.Duration,
	})
	return summary, nil
}

func (s *Scraper) clientFor(sess *session.Session) Client {
	if s.client != nil {
		return s.client
	}
	return fetch.NewClient(s.config.Download.Timeout, sess.Headers(), s.logger,
		fetch.WithRetry(retry.FromSettings(s.config.Retry, s.logger)))
}

// collectReferers walks the listing and returns the distinct referer links
func (s *Scraper) collectReferers(ctx context.Context, client Client, sess *session.Session, summary *Summary, log logger.Logger) []string {
	s.reporter.StageStarted(StageListing, s.config.Download.MaxPages)

	p := paginate.New(client, paginate.Templates{
		BaseURL:  s.config.Site.BaseURL,
		Search:   s.config.Site.SearchTemplate,
		MainPage: s.config.Site.MainPageTemplate,
	}, sess, s.config.Download.MaxPages, log)

	links := extract.NewSet()
	failed := 0
	for {
		page, ok := p.Next(ctx)
		if !ok {
			break
		}
		summary.Pages++

		found, err := extract.RefererLinks(page.Body, sess.Mode())
		if err != nil {
			failed++
			log.WithError(err).WarnWithFields("Listing page has no referer links", map[string]interface{}{
				"page": page.Number,
			})
			continue
		}
		for _, href := range found {
			abs, err := extract.Resolve(page.URL, href)
			if err != nil {
				failed++
				continue
			}
			links.Add(abs)
		}
	}

	summary.StopReason = p.Stop()
	summary.RefererLinks = links.Len()
	if err := p.Err(); err != nil && p.Stop() == paginate.StopError {
		log.WithError(err).Warn("Pagination ended early")
	}

	logger.LogStage(log, StageListing, summary.Pages, links.Len(), failed)
	s.reporter.StageFinished(StageListing, summary.Pages, failed)
	return links.Items()
}

// resolve fetches every url as one batch, parses the bodies on the parse pool
// with pick and returns the distinct absolute links in input order.
func (s *Scraper) resolve(
	ctx context.Context,
	client Client,
	stage string,
	urls []string,
	pick func([]byte) (string, error),
	log logger.Logger,
) ([]string, int) {
	s.reporter.StageStarted(stage, len(urls))
	if len(urls) == 0 {
		s.reporter.StageFinished(stage, 0, 0)
		return nil, 0
	}

	results := client.FetchAll(ctx, urls)
	outcomes := pipeline.Map(ctx, s.config.Download.ParseWorkers, results,
		func(_ context.Context, r fetch.Result) (string, error) {
			if r.Err != nil {
				return "", r.Err
			}
			link, err := pick(r.Body)
			if err != nil {
				return "", err
			}
			return extract.Resolve(r.URL, link)
		})

	for i, o := range outcomes {
		if o.Err != nil {
			log.WithError(o.Err).WarnWithFields("Skipping page", map[string]interface{}{
				"stage": stage,
				"url":   urls[i],
			})
		}
	}
	values, failed := pipeline.Values(outcomes)
	links := extract.NewSet()
	links.AddAll(values)

	logger.LogStage(log, stage, len(urls), links.Len(), failed)
	s.reporter.StageFinished(stage, len(urls)-failed, failed)
	return links.Items(), failed
}

func saveCheckpoint(cp *checkpoint.Manager, log logger.Logger) {
	if err := cp.Save(); err != nil {
		log.WithError(err).Warn("Failed to save checkpoint")
	}
}

func (s *Scraper) download(
	ctx context.Context,
	client Client,
	sess *session.Session,
	cp *checkpoint.Manager,
	urls []string,
	summary *Summary,
	log logger.Logger,
) error {
	s.reporter.StageStarted(StageDownload, len(urls))

	mgr, err := storage.NewManager(sess.Dir(), s.config.Output.FilePrefix)
	if err != nil {
		return err
	}

	pool := downloader.NewWorkerPool(ctx, s.config.Download.Workers, client, mgr,
		s.config.Output.OverwriteExisting, log).WithHistory(cp)
	for _, r := range pool.Run(urls) {
		switch r.Status {
		case downloader.StatusDownloaded:
			summary.Downloaded++
		case downloader.StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	logger.LogStage(log, StageDownload, len(urls), summary.Downloaded, summary.Failed)
	s.reporter.StageFinished(StageDownload, summary.Downloaded+summary.Skipped, summary.Failed)
	return nil
}
