package scraper

import (
	"context"

	"github.com/Memorem/wallpaperflare-parser/pkg/fetch"
)

// Client is the HTTP surface the pipeline needs
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
	FetchAll(ctx context.Context, urls []string) []fetch.Result
	Download(ctx context.Context, url string) ([]byte, error)
}

// Reporter receives stage progress, typically to draw it on a terminal
type Reporter interface {
	StageStarted(stage string, total int)
	StageFinished(stage string, ok, failed int)
}

type nopReporter struct{}

func (nopReporter) StageStarted(string, int)        {}
func (nopReporter) StageFinished(string, int, int)  {}
