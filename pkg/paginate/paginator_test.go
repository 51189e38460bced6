package paginate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Memorem/wallpaperflare-parser/pkg/fetch"
	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/Memorem/wallpaperflare-parser/pkg/retry"
	"github.com/Memorem/wallpaperflare-parser/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTemplates = Templates{
	Search:   "/search?wallpaper=%s&page=%d",
	MainPage: "/index.php?c=main&m=portal_loadmore&page=%d",
}

func newClient() *fetch.Client {
	return fetch.NewClient(5*time.Second, nil, logger.NewNopLogger(), fetch.WithRetry(&retry.Config{
		MaxAttempts: 2,
		Backoff:     &retry.ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     retry.DefaultRetryIf,
		Context:     context.Background(),
	}))
}

// listingServer serves non-empty pages 1..n; emptyStatus controls what comes after
func listingServer(t *testing.T, n int, emptyStatus int, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page >= 1 && page <= n {
			fmt.Fprintf(w, "<ul class=\"gallery\"><li>page %d</li></ul>", page)
			return
		}
		w.WriteHeader(emptyStatus)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStopsAfterLastPage(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusOK} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var hits int32
			const n = 4
			server := listingServer(t, n, status, &hits)

			tmpl := testTemplates
			tmpl.BaseURL = server.URL
			p := New(newClient(), tmpl, session.New("cats", t.TempDir(), nil), 0, logger.NewNopLogger())

			pages := p.All(context.Background())

			require.Len(t, pages, n)
			for i, page := range pages {
				assert.Equal(t, i+1, page.Number)
				assert.Contains(t, string(page.Body), fmt.Sprintf("page %d", i+1))
			}
			assert.Equal(t, StopEndOfResults, p.Stop())
			assert.NoError(t, p.Err())
			// pages 1..n plus the terminating request n+1
			assert.Equal(t, int32(n+1), atomic.LoadInt32(&hits))
		})
	}
}

func TestMaxPagesCap(t *testing.T) {
	var hits int32
	server := listingServer(t, 10, http.StatusNotFound, &hits)

	tmpl := testTemplates
	tmpl.BaseURL = server.URL
	p := New(newClient(), tmpl, session.New("cats", t.TempDir(), nil), 3, logger.NewNopLogger())

	assert.Len(t, p.All(context.Background()), 3)
	assert.Equal(t, StopMaxPages, p.Stop())
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestTransientFailureStopsWithError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, "first")
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tmpl := testTemplates
	tmpl.BaseURL = server.URL
	p := New(newClient(), tmpl, session.New("cats", t.TempDir(), nil), 0, logger.NewNopLogger())

	pages := p.All(context.Background())
	assert.Len(t, pages, 1)
	assert.Equal(t, StopError, p.Stop())
	assert.Error(t, p.Err())
}

func TestCanceledContext(t *testing.T) {
	p := New(newClient(), testTemplates, session.New("", t.TempDir(), nil), 0, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := p.Next(ctx)
	assert.False(t, ok)
	assert.Equal(t, StopCanceled, p.Stop())
	assert.ErrorIs(t, p.Err(), context.Canceled)
}

func TestURLTemplates(t *testing.T) {
	tmpl := testTemplates
	tmpl.BaseURL = "https://www.wallpaperflare.com/"

	tagged := New(nil, tmpl, session.New("Night Sky", ".", nil), 0, logger.NewNopLogger())
	assert.Equal(t, "https://www.wallpaperflare.com/search?wallpaper=night+sky&page=2", tagged.URL(2))

	main := New(nil, tmpl, session.New("", ".", nil), 0, logger.NewNopLogger())
	assert.Equal(t, "https://www.wallpaperflare.com/index.php?c=main&m=portal_loadmore&page=1", main.URL(1))
}

func TestResetRestarts(t *testing.T) {
	var hits int32
	server := listingServer(t, 2, http.StatusNotFound, &hits)

	tmpl := testTemplates
	tmpl.BaseURL = server.URL
	p := New(newClient(), tmpl, session.New("", t.TempDir(), nil), 0, logger.NewNopLogger())

	assert.Len(t, p.All(context.Background()), 2)
	_, ok := p.Next(context.Background())
	assert.False(t, ok)

	p.Reset()
	assert.Equal(t, NotStopped, p.Stop())
	assert.Len(t, p.All(context.Background()), 2)
}
