// Package fetch performs the plain HTTP GETs of the parser: single requests,
// order-preserving batches and image downloads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/Memorem/wallpaperflare-parser/pkg/retry"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one request in a batch
type Result struct {
	URL  string
	Body []byte
	Err  error
}

// Client issues GET requests with a fixed header set over one shared connection pool
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	retry      *retry.Config
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the retry policy for transient failures
func WithRetry(rc *retry.Config) Option {
	return func(c *Client) { c.retry = rc }
}

// NewClient creates a Client sending headers on every request
func NewClient(timeout time.Duration, headers map[string]string, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers:    make(map[string]string, len(headers)),
		logger:     log,
	}
	for k, v := range headers {
		c.headers[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry == nil {
		c.retry = retry.DefaultConfig()
		c.retry.Logger = log
	}
	return c
}

// Get fetches url and returns the body of a 200 response. Transient failures
// (transport errors, 429, 5xx) are retried; other statuses fail immediately
// with a typed error carrying the status code.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithResult(func() ([]byte, error) {
		return c.get(ctx, url)
	}, c.retry.WithContext(ctx))
}

// Download fetches image bytes from url
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// FetchAll requests every url concurrently and waits for all of them.
// results[i] always belongs to urls[i]; a failed request sets Err and leaves
// the rest of the batch untouched.
func (c *Client) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			body, err := c.Get(ctx, u)
			results[i] = Result{URL: u, Body: body, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeBadURL, url, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.LogRequest(c.logger, req.Method, url, 0, time.Since(start))
		return nil, errs.Wrap(errs.ErrorTypeNetwork, url, err)
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		// drain so the connection goes back to the pool
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errs.FromStatus(resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, url, fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}
