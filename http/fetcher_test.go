package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/medreg"
	medreghttp "github.com/fwojciec/medreg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and status from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := medreghttp.NewFetcher()
		defer fetcher.Close()

		req := &medreg.Request{URL: server.URL}
		resp, err := fetcher.Fetch(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<html><body>Hello World</body></html>", string(resp.Body))
		assert.Same(t, req, resp.Request)
	})

	t.Run("sends request headers", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
		}))
		defer server.Close()

		fetcher := medreghttp.NewFetcher(medreghttp.WithUserAgent("fallback-agent"))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), &medreg.Request{
			URL: server.URL,
			Headers: map[string]string{
				"accept-language": "de",
				"User-Agent":      "Mozilla/5.0",
			},
		})
		require.NoError(t, err)
		got := <-headers
		assert.Equal(t, "de", got.Get("Accept-Language"))
		assert.Equal(t, "Mozilla/5.0", got.Get("User-Agent"))
	})

	t.Run("falls back to configured user agent", func(t *testing.T) {
		t.Parallel()

		agents := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agents <- r.UserAgent()
		}))
		defer server.Close()

		fetcher := medreghttp.NewFetcher(medreghttp.WithUserAgent("fallback-agent"))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), &medreg.Request{URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, "fallback-agent", <-agents)
	})

	t.Run("reports final URL after redirect", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {})
		server := httptest.NewServer(mux)
		defer server.Close()

		fetcher := medreghttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), &medreg.Request{URL: server.URL + "/old"})
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/new", resp.URL)
	})

	t.Run("returns non-200 responses without error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := medreghttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), &medreg.Request{URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := medreghttp.NewFetcher(medreghttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), &medreg.Request{URL: server.URL})
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		fetcher := medreghttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, &medreg.Request{URL: server.URL})
		require.Error(t, err)
	})

	t.Run("returns error for invalid URL", func(t *testing.T) {
		t.Parallel()

		fetcher := medreghttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), &medreg.Request{URL: "http://[::1"})
		require.Error(t, err)
		assert.Equal(t, medreg.EINVALID, medreg.ErrorCode(err))
	})
}

// Compile-time verification that Fetcher implements medreg.Fetcher
var _ medreg.Fetcher = (*medreghttp.Fetcher)(nil)
