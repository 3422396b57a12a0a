//go:build integration

package rod_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Integration_AsklepiosProfile(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	resp, err := fetcher.Fetch(ctx, &medreg.Request{URL: "https://www.asklepios.com/sitemap-index.xml"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.Contains(string(resp.Body), "sitemap"), "expected sitemap content")

	t.Logf("Fetched %d bytes from asklepios.com", len(resp.Body))
}
