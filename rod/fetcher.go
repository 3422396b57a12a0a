// Package rod provides a headless Chrome implementation of medreg.Fetcher
// for pages that render their content with JavaScript.
package rod

import (
	"context"
	"net/textproto"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fwojciec/medreg"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 60 * time.Second

// Ensure Fetcher implements medreg.Fetcher at compile time.
var _ medreg.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	session *Session
	timeout time.Duration
	closed  atomic.Bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherConfig)

type fetcherConfig struct {
	timeout      time.Duration
	recycleAfter int
}

// WithFetchTimeout bounds each page load. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithRecycleAfter sets the number of pages after which the browser is
// replaced. Defaults to DefaultRecycleAfter.
func WithRecycleAfter(n int) FetcherOption {
	return func(c *fetcherConfig) {
		c.recycleAfter = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout, recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(&cfg)
	}

	session, err := NewSession(cfg.recycleAfter)
	if err != nil {
		return nil, err
	}
	return &Fetcher{session: session, timeout: cfg.timeout}, nil
}

// Fetch navigates to the request URL and returns the rendered HTML together
// with the status code of the main document.
func (f *Fetcher) Fetch(ctx context.Context, r *medreg.Request) (*medreg.Response, error) {
	if f.closed.Load() {
		return nil, medreg.Errorf(medreg.EINVALID, "fetcher closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	begin := time.Now()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.session.Page()
	if err != nil {
		return nil, err
	}
	defer page.Close()

	page = page.Context(ctx)

	headers := r.Header()
	if ua := headers.Get("User-Agent"); ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			return nil, err
		}
		headers.Del("User-Agent")
	}
	if len(headers) > 0 {
		cleanup, err := page.SetExtraHeaders(headerPairs(r.Headers))
		if err != nil {
			return nil, err
		}
		defer cleanup()
	}

	var doc proto.NetworkResponseReceived
	waitDoc := page.WaitEvent(&doc)

	if err := page.Navigate(r.URL); err != nil {
		return nil, err
	}
	waitDoc()
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}

	finalURL := r.URL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}
	status := 200
	if doc.Response != nil && doc.Response.Status > 0 {
		status = doc.Response.Status
	}

	return &medreg.Response{
		URL:        finalURL,
		StatusCode: status,
		Body:       []byte(html),
		Request:    r,
		Duration:   time.Since(begin),
	}, nil
}

// headerPairs flattens headers other than User-Agent into the key/value
// list expected by SetExtraHeaders, in a stable order.
func headerPairs(h map[string]string) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		if textproto.CanonicalMIMEHeaderKey(k) == "User-Agent" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, h[k])
	}
	return pairs
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.session.Close()
}

// LauncherPID returns the process ID of the current browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.session.PID()
}
