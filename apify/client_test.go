package apify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/apify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_PushData(t *testing.T) {
	t.Parallel()

	t.Run("posts records as a JSON array", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotAuth, gotType string
		var got []map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotType = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := apify.NewClient(apify.WithBaseURL(srv.URL+"/"), apify.WithToken("secret"))
		err := client.Dataset("abc").PushData(context.Background(),
			medreg.Record{"url": "https://www.kvhh.net/a", "source": "kvhh"},
			medreg.Record{"url": "https://www.kvhh.net/b", "source": "kvhh"},
		)

		require.NoError(t, err)
		assert.Equal(t, "/v2/datasets/abc/items", gotPath)
		assert.Equal(t, "Bearer secret", gotAuth)
		assert.Contains(t, gotType, "application/json")
		assert.Equal(t, []map[string]any{
			{"url": "https://www.kvhh.net/a", "source": "kvhh"},
			{"url": "https://www.kvhh.net/b", "source": "kvhh"},
		}, got)
	})

	t.Run("empty push sends nothing", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer srv.Close()

		err := apify.NewClient(apify.WithBaseURL(srv.URL)).Dataset("abc").PushData(context.Background())

		require.NoError(t, err)
	})

	t.Run("maps client errors", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"type":"token-not-valid"}}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		err := apify.NewClient(apify.WithBaseURL(srv.URL)).Dataset("abc").PushData(context.Background(), medreg.Record{"url": "a"})

		assert.Equal(t, medreg.EINVALID, medreg.ErrorCode(err))
		assert.Contains(t, medreg.ErrorMessage(err), "token-not-valid")
	})

	t.Run("splits batches the API rejects as too large", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var sizes []int
		var urls []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var got []map[string]any
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &got))
			if len(got) > 2 {
				http.Error(w, `{"error":{"type":"request-too-large"}}`, http.StatusRequestEntityTooLarge)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			sizes = append(sizes, len(got))
			for _, item := range got {
				urls = append(urls, item["url"].(string))
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		var records []medreg.Record
		var want []string
		for i := range 7 {
			u := "https://www.uke.de/" + strconv.Itoa(i)
			records = append(records, medreg.Record{"url": u})
			want = append(want, u)
		}

		err := apify.NewClient(apify.WithBaseURL(srv.URL)).Dataset("abc").PushData(context.Background(), records...)

		require.NoError(t, err)
		assert.Equal(t, want, urls)
		for _, n := range sizes {
			assert.LessOrEqual(t, n, 2)
		}
	})

	t.Run("bounds request bodies by size", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var bodies [][]byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			defer mu.Unlock()
			bodies = append(bodies, body)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		records := []medreg.Record{
			{"url": "https://www.kvhh.net/a"},
			{"url": "https://www.kvhh.net/b"},
			{"url": "https://www.kvhh.net/c"},
			{"url": "https://www.kvhh.net/d"},
		}
		client := apify.NewClient(apify.WithBaseURL(srv.URL), apify.WithMaxPayload(70))

		err := client.Dataset("abc").PushData(context.Background(), records...)

		require.NoError(t, err)
		require.Len(t, bodies, 2)
		for _, b := range bodies {
			assert.LessOrEqual(t, len(b), 70)
		}
	})

	t.Run("a single record too large is invalid", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}))
		defer srv.Close()

		err := apify.NewClient(apify.WithBaseURL(srv.URL)).Dataset("abc").PushData(context.Background(), medreg.Record{"url": "a"})

		assert.Equal(t, medreg.EINVALID, medreg.ErrorCode(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("server errors are internal", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		err := apify.NewClient(apify.WithBaseURL(srv.URL)).Dataset("abc").PushData(context.Background(), medreg.Record{"url": "a"})

		require.Error(t, err)
		assert.Equal(t, medreg.EINTERNAL, medreg.ErrorCode(err))
		assert.Contains(t, err.Error(), "HTTP 502")
	})
}

func TestKeyValueStore_Input(t *testing.T) {
	t.Parallel()

	t.Run("decodes the INPUT record", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/key-value-stores/kv1/records/INPUT", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"spider_name":"asklepios","max_items":100}`)
		}))
		defer srv.Close()

		in, err := apify.NewClient(apify.WithBaseURL(srv.URL)).KeyValueStore("kv1").Input(context.Background())

		require.NoError(t, err)
		assert.Equal(t, &medreg.Input{SpiderName: "asklepios", MaxItems: 100}, in)
	})

	t.Run("missing record is empty input", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		in, err := apify.NewClient(apify.WithBaseURL(srv.URL)).KeyValueStore("kv1").Input(context.Background())

		require.NoError(t, err)
		assert.Equal(t, &medreg.Input{}, in)
	})

	t.Run("malformed record is invalid", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"spiders":`)
		}))
		defer srv.Close()

		_, err := apify.NewClient(apify.WithBaseURL(srv.URL)).KeyValueStore("kv1").Input(context.Background())

		assert.Equal(t, medreg.EINVALID, medreg.ErrorCode(err))
	})
}
