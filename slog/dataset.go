package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/medreg"
)

// Ensure LoggingDatasetStore implements medreg.DatasetStore.
var _ medreg.DatasetStore = (*LoggingDatasetStore)(nil)

// LoggingDatasetStore wraps a DatasetStore with logging.
type LoggingDatasetStore struct {
	next   medreg.DatasetStore
	logger *slog.Logger
}

// NewLoggingDatasetStore creates a new LoggingDatasetStore.
func NewLoggingDatasetStore(next medreg.DatasetStore, logger *slog.Logger) *LoggingDatasetStore {
	return &LoggingDatasetStore{next: next, logger: logger}
}

// PushData delegates to the wrapped store and logs the operation.
func (s *LoggingDatasetStore) PushData(ctx context.Context, records ...medreg.Record) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("push data",
			"count", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.PushData(ctx, records...)
}

// Ensure LoggingInputSource implements medreg.InputSource.
var _ medreg.InputSource = (*LoggingInputSource)(nil)

// LoggingInputSource wraps an InputSource with logging.
type LoggingInputSource struct {
	next   medreg.InputSource
	logger *slog.Logger
}

// NewLoggingInputSource creates a new LoggingInputSource.
func NewLoggingInputSource(next medreg.InputSource, logger *slog.Logger) *LoggingInputSource {
	return &LoggingInputSource{next: next, logger: logger}
}

// Input delegates to the wrapped source and logs the selected spiders.
func (s *LoggingInputSource) Input(ctx context.Context) (in *medreg.Input, err error) {
	defer func(begin time.Time) {
		s.logger.Info("input loaded",
			"spiders", in.Names(),
			"limits", in.Limits(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Input(ctx)
}
