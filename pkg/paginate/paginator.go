// Package paginate walks a gallery listing one page at a time until the site
// stops returning content.
package paginate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/Memorem/wallpaperflare-parser/pkg/session"
)

// StopReason explains why a Paginator finished
type StopReason int

const (
	// NotStopped means Next may still yield pages
	NotStopped StopReason = iota
	// StopEndOfResults is a non-success status or an empty body
	StopEndOfResults
	// StopError is a transient failure that survived retries
	StopError
	// StopMaxPages is the configured page cap
	StopMaxPages
	// StopCanceled is context cancellation
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case NotStopped:
		return "running"
	case StopEndOfResults:
		return "end_of_results"
	case StopError:
		return "error"
	case StopMaxPages:
		return "max_pages"
	case StopCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Page is one listing page body
type Page struct {
	Number int
	URL    string
	Body   []byte
}

// Getter fetches a single URL
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Templates holds the listing URL patterns, relative to BaseURL
type Templates struct {
	BaseURL string
	// Search takes the escaped tag and the page number
	Search string
	// MainPage takes the page number
	MainPage string
}

// Paginator yields listing pages on demand. It is not safe for concurrent use.
type Paginator struct {
	getter    Getter
	templates Templates
	sess      *session.Session
	maxPages  int
	logger    logger.Logger

	next int
	stop StopReason
	err  error
}

// New creates a Paginator for sess. maxPages <= 0 means no cap.
func New(getter Getter, templates Templates, sess *session.Session, maxPages int, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{
		getter:    getter,
		templates: templates,
		sess:      sess,
		maxPages:  maxPages,
		logger:    log.WithField("component", "paginator"),
		next:      1,
	}
}

// URL returns the listing URL for page n
func (p *Paginator) URL(n int) string {
	base := strings.TrimRight(p.templates.BaseURL, "/")
	if p.sess.Mode() == session.ModeMainPage {
		return base + fmt.Sprintf(p.templates.MainPage, n)
	}
	return base + fmt.Sprintf(p.templates.Search, url.QueryEscape(p.sess.Tag()), n)
}

// Next fetches the next page. It returns false once the listing is finished;
// Stop and Err then describe why.
func (p *Paginator) Next(ctx context.Context) (Page, bool) {
	if p.stop != NotStopped {
		return Page{}, false
	}
	if p.maxPages > 0 && p.next > p.maxPages {
		return p.finish(StopMaxPages, nil)
	}
	if err := ctx.Err(); err != nil {
		return p.finish(StopCanceled, err)
	}

	n := p.next
	u := p.URL(n)
	body, err := p.getter.Get(ctx, u)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return p.finish(StopCanceled, err)
		case errs.IsRetryable(errs.TypeOf(err)):
			p.logger.WithError(err).WarnWithFields("Listing fetch failed", map[string]interface{}{"page": n})
			return p.finish(StopError, err)
		default:
			p.logger.DebugWithFields("Listing returned no page", map[string]interface{}{"page": n, "reason": err.Error()})
			return p.finish(StopEndOfResults, nil)
		}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return p.finish(StopEndOfResults, nil)
	}

	p.next++
	return Page{Number: n, URL: u, Body: body}, true
}

// Stop returns why the paginator finished, or NotStopped
func (p *Paginator) Stop() StopReason { return p.stop }

// Err returns the error behind StopError or StopCanceled
func (p *Paginator) Err() error { return p.err }

// Reset rewinds the paginator to page 1
func (p *Paginator) Reset() {
	p.next = 1
	p.stop = NotStopped
	p.err = nil
}

// All drains the paginator and returns every page in order
func (p *Paginator) All(ctx context.Context) []Page {
	var pages []Page
	for {
		page, ok := p.Next(ctx)
		if !ok {
			return pages
		}
		pages = append(pages, page)
	}
}

func (p *Paginator) finish(reason StopReason, err error) (Page, bool) {
	p.stop = reason
	p.err = err
	p.logger.DebugWithFields("Pagination stopped", map[string]interface{}{
		"reason": reason.String(),
		"pages":  p.next - 1,
	})
	return Page{}, false
}
