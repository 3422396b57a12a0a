package medreg

import "time"

// Settings are the declarative crawl settings of one adapter.
type Settings struct {
	// Concurrency caps the number of in-flight requests.
	Concurrency int
	// ConcurrencyPerDomain caps in-flight requests per host.
	ConcurrencyPerDomain int
	// Delay is the minimum interval between requests to the same host.
	Delay time.Duration
	// RetryTimes is the number of retries after the first attempt. Zero
	// selects the default; NoRetry disables retries.
	RetryTimes int
	// Timeout bounds a single request.
	Timeout time.Duration
	// UserAgent identifies the crawler. Request headers take precedence.
	UserAgent string
	// AllowedStatus lists non-2xx status codes passed to callbacks.
	AllowedStatus []int
}

// NoRetry as Settings.RetryTimes makes every request a single attempt.
const NoRetry = -1

// DefaultSettings returns the settings used when an adapter leaves a value unset.
func DefaultSettings() Settings {
	return Settings{
		Concurrency:          16,
		ConcurrencyPerDomain: 8,
		RetryTimes:           2,
		Timeout:              180 * time.Second,
	}
}

// WithDefaults returns s with unset concurrency, retries and timeout taken
// from DefaultSettings. The per-domain cap defaults to the global one.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.Concurrency <= 0 {
		s.Concurrency = d.Concurrency
	}
	if s.ConcurrencyPerDomain <= 0 {
		s.ConcurrencyPerDomain = s.Concurrency
	}
	switch {
	case s.RetryTimes == 0:
		s.RetryTimes = d.RetryTimes
	case s.RetryTimes < 0:
		s.RetryTimes = 0
	}
	if s.Timeout <= 0 {
		s.Timeout = d.Timeout
	}
	return s
}

// Allows reports whether a non-2xx status code is handed to callbacks.
func (s Settings) Allows(code int) bool {
	for _, c := range s.AllowedStatus {
		if c == code {
			return true
		}
	}
	return false
}

// Adapter is a per-site crawling and extraction strategy.
type Adapter interface {
	// Name identifies the adapter and tags its records.
	Name() string

	// Settings returns the adapter's crawl settings.
	Settings() Settings

	// Discover returns the seed requests: a search API call, a sitemap or a
	// directory listing page.
	Discover() []*Request

	// ExtractRecord assembles one raw record from a document.
	ExtractRecord(doc Document, pageURL string) Record

	// NextPage returns the follow-up listing request, or nil when
	// pagination ends.
	NextPage(resp *Response) (*Request, error)
}

// AdapterRegistry looks up adapters by name.
type AdapterRegistry interface {
	// Get returns the adapter registered under name.
	// Returns ENOTFOUND if no such adapter exists.
	Get(name string) (Adapter, error)

	// Names returns all registered names in registration order.
	Names() []string
}
