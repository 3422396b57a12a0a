package medreg

import (
	"context"
	"net/http"
	"time"
)

// Callback processes a fetched response and returns extracted records and
// follow-up requests.
type Callback func(ctx context.Context, resp *Response) (*Result, error)

// Request describes one document fetch.
type Request struct {
	URL     string
	Headers map[string]string

	// Priority orders the crawl queue; higher values are fetched first.
	Priority int

	// DontFilter bypasses the duplicate request filter.
	DontFilter bool

	// Page is the listing page number for page-counter pagination, 0 when
	// not paginated.
	Page int

	// Callback handles the response. Required.
	Callback Callback
}

// Header returns the request headers as an http.Header.
func (r *Request) Header() http.Header {
	h := make(http.Header, len(r.Headers))
	for k, v := range r.Headers {
		h.Set(k, v)
	}
	return h
}

// Response is a fetched document.
type Response struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Body       []byte
	Request    *Request
	Duration   time.Duration
}

// Result is the outcome of a callback.
type Result struct {
	Records  []Record
	Requests []*Request
}

// Merge appends the records and requests of other to r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Records = append(r.Records, other.Records...)
	r.Requests = append(r.Requests, other.Requests...)
}

// Fetcher retrieves documents.
type Fetcher interface {
	// Fetch performs the request and returns the response for any HTTP
	// status. Errors are reserved for transport failures.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, req *Request) (*Response, error)

	// Close releases resources.
	Close() error
}
