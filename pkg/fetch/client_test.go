package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
	"github.com/Memorem/wallpaperflare-parser/pkg/logger"
	"github.com/Memorem/wallpaperflare-parser/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) *retry.Config {
	return &retry.Config{
		MaxAttempts: attempts,
		Backoff:     &retry.ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     retry.DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

func newTestClient(attempts int) *Client {
	return NewClient(5*time.Second, map[string]string{"User-Agent": "flare-test"},
		logger.NewNopLogger(), WithRetry(fastRetry(attempts)))
}

func TestGetSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "flare-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	body, err := newTestClient(1).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestGetNotFoundIsNotRetried(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestClient(3).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNotFound, errs.TypeOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer server.Close()

	body, err := newTestClient(3).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestGetGivesUpAfterMaxAttempts(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(2).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeServerError, errs.TypeOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetBadURL(t *testing.T) {
	_, err := newTestClient(1).Get(context.Background(), "://nope")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeBadURL, errs.TypeOf(err))
}

func TestFetchAllPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// later paths answer faster so completion order differs from request order
		var n int
		fmt.Sscanf(r.URL.Path, "/item/%d", &n)
		time.Sleep(time.Duration(20-n) * time.Millisecond)
		fmt.Fprintf(w, "body-%d", n)
	}))
	defer server.Close()

	const m = 20
	urls := make([]string, m)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/item/%d", server.URL, i)
	}

	results := newTestClient(1).FetchAll(context.Background(), urls)
	require.Len(t, results, m)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, urls[i], r.URL)
		assert.Equal(t, fmt.Sprintf("body-%d", i), string(r.Body))
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, r.URL.Path)
	}))
	defer server.Close()

	urls := []string{server.URL + "/a", server.URL + "/missing", server.URL + "/b"}
	results := newTestClient(1).FetchAll(context.Background(), urls)

	require.Len(t, results, 3)
	assert.Equal(t, "/a", string(results[0].Body))
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Body)
	assert.Equal(t, "/b", string(results[2].Body))
}

func TestFetchAllEmpty(t *testing.T) {
	assert.Empty(t, newTestClient(1).FetchAll(context.Background(), nil))
}

func TestGetCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "late")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(3).Get(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
