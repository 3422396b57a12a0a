package main_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/medreg"
	main "github.com/fwojciec/medreg/cmd/medreg"
	"github.com/fwojciec/medreg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range []string{"crawl", "list", "records"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_ListShowsSpiders(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"list"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "uke "))
	assert.True(t, strings.HasPrefix(lines[1], "apothekerkammer-hamburg "))
	assert.True(t, strings.HasPrefix(lines[2], "asklepios "))
	assert.True(t, strings.HasPrefix(lines[3], "kvhh "))
	assert.Contains(t, lines[2], "concurrency=128 per_domain=96")
	assert.Contains(t, lines[2], "retries=2")
	assert.Contains(t, lines[3], "retries=2")
}

func TestMain_Run_CrawlWiresInjectedServices(t *testing.T) {
	t.Parallel()

	const sitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://www.kvhh.net/de/medicalregister/net-kvhh-physician-1</loc></url>
  <url><loc>https://www.kvhh.net/de/aktuelles</loc></url>
</urlset>`
	const profile = `<html><body><h1>Dr. med. Anna Schmidt</h1></body></html>`

	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, req *medreg.Request) (*medreg.Response, error) {
			body := profile
			if strings.HasSuffix(req.URL, "/sitemap.xml") {
				body = sitemap
			}
			return &medreg.Response{URL: req.URL, StatusCode: http.StatusOK, Body: []byte(body)}, nil
		},
	}
	var mu sync.Mutex
	var pushed []medreg.Record
	store := &mock.DatasetStore{
		PushDataFn: func(_ context.Context, records ...medreg.Record) error {
			mu.Lock()
			defer mu.Unlock()
			pushed = append(pushed, records...)
			return nil
		},
	}
	input := &mock.InputSource{
		InputFn: func(context.Context) (*medreg.Input, error) {
			return &medreg.Input{SpiderName: "kvhh"}, nil
		},
	}

	m := main.NewMain()
	m.Fetcher, m.Store, m.Input = fetcher, store, input
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"crawl"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "kvhh  ok  items=1 pushed=1 requests=2")
	require.Len(t, pushed, 1)
	assert.Equal(t, "kvhh", pushed[0]["source"])
	assert.Equal(t, "Dr. med. Anna Schmidt", pushed[0]["name"])
	assert.Equal(t, "", pushed[0]["phone"])
}

func TestMain_Run_CrawlUnknownSpider(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.Fetcher = &mock.Fetcher{}
	m.Store = &mock.DatasetStore{}
	m.Input = &mock.InputSource{
		InputFn: func(context.Context) (*medreg.Input, error) { return &medreg.Input{}, nil },
	}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"crawl", "charite"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Equal(t, medreg.ENOTFOUND, medreg.ErrorCode(err))
	assert.Contains(t, stderr.String(), `unknown spider "charite"`)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := main.NewLogger(&buf, "debug", "json")
		require.NoError(t, err)

		logger.Debug("crawl started", "adapter", "uke")

		assert.Contains(t, buf.String(), `"msg":"crawl started"`)
		assert.Contains(t, buf.String(), `"adapter":"uke"`)
	})

	t.Run("level filters messages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := main.NewLogger(&buf, "warn", "text")
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := main.NewLogger(&bytes.Buffer{}, "info", "xml")

		assert.Equal(t, medreg.EINVALID, medreg.ErrorCode(err))
	})
}
