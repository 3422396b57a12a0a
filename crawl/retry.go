package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/medreg"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, req *medreg.Request) (*medreg.Response, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// RetryHTTPCodes are the status codes that trigger a retry.
var RetryHTTPCodes = []int{408, 429, 500, 502, 503, 504, 522, 524}

// RetryDelays returns n doubling delays starting at one second.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, n)
	d := time.Second
	for i := 0; i < n; i++ {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// retryable reports whether a fetch outcome should be attempted again.
func retryable(resp *medreg.Response, err error) bool {
	if err != nil {
		return true
	}
	for _, code := range RetryHTTPCodes {
		if resp.StatusCode == code {
			return true
		}
	}
	return false
}

// FetchWithRetry calls fetch once plus once per delay, sleeping the delay
// before each retry. Transport errors and RetryHTTPCodes are retried. When
// attempts run out the last response is returned, so callers can still
// inspect its status. The logger, if set, is called for each retry.
func FetchWithRetry(ctx context.Context, req *medreg.Request, fetch FetchFunc, logger LogFunc, delays []time.Duration) (*medreg.Response, error) {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var resp *medreg.Response
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err = fetch(ctx, req)
		if !retryable(resp, err) {
			return resp, nil
		}

		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		// Check context before sleeping
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if logger != nil {
			if err != nil {
				logger("retry %s (attempt %d): %v", req.URL, attempt+2, err)
			} else {
				logger("retry %s (attempt %d): HTTP %d", req.URL, attempt+2, resp.StatusCode)
			}
		}

		// Wait before next attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return resp, err
}
