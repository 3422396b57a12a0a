// Package slog provides logging decorators for medreg services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/medreg"
)

// Ensure LoggingFetcher implements medreg.Fetcher.
var _ medreg.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   medreg.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next medreg.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation: at Debug
// when it succeeds and at Warn when it fails.
func (f *LoggingFetcher) Fetch(ctx context.Context, req *medreg.Request) (resp *medreg.Response, err error) {
	defer func(begin time.Time) {
		var status, size int
		if resp != nil {
			status, size = resp.StatusCode, len(resp.Body)
		}
		attrs := []any{
			"url", req.URL,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
		}
		if err != nil {
			f.logger.Warn("fetch", append(attrs, "err", err)...)
			return
		}
		f.logger.Debug("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, req)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
