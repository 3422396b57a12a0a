package medreg

import (
	"context"
	"time"
)

// DatasetStore is the external dataset records are flushed to.
type DatasetStore interface {
	// PushData appends records to the dataset.
	PushData(ctx context.Context, records ...Record) error
}

// StoredRecord is a record read back from a local store.
type StoredRecord struct {
	ID        string
	Source    string
	URL       string
	Data      Record
	CreatedAt time.Time
}

// RecordFilter selects stored records. Nil fields match everything; a zero
// Limit means no limit.
type RecordFilter struct {
	Source *string
	URL    *string

	Limit  int
	Offset int
}

// RecordReader reads records back from a local store, oldest first.
type RecordReader interface {
	FindRecords(ctx context.Context, filter RecordFilter) ([]*StoredRecord, error)

	// CountRecords counts the records of source, or all records when
	// source is empty.
	CountRecords(ctx context.Context, source string) (int, error)
}

// Input is the run configuration supplied to the actor.
type Input struct {
	// Spiders selects adapters to run, in order.
	Spiders []string `json:"spiders"`

	// SpiderName selects a single adapter. Ignored when Spiders is set.
	SpiderName string `json:"spider_name"`

	MaxItems        int `json:"max_items"`
	MaxPages        int `json:"max_pages"`
	MaxDurationSecs int `json:"max_duration_secs"`
}

// Names returns the selected adapter names.
func (in *Input) Names() []string {
	if in == nil {
		return nil
	}
	if len(in.Spiders) > 0 {
		return in.Spiders
	}
	if in.SpiderName != "" {
		return []string{in.SpiderName}
	}
	return nil
}

// Limits converts the input caps to crawl limits.
func (in *Input) Limits() Limits {
	if in == nil {
		return Limits{}
	}
	return Limits{
		MaxItems:    in.MaxItems,
		MaxPages:    in.MaxPages,
		MaxDuration: time.Duration(in.MaxDurationSecs) * time.Second,
	}
}

// Limits are optional stop conditions for one adapter run. Zero means
// unlimited.
type Limits struct {
	MaxItems    int
	MaxPages    int
	MaxDuration time.Duration
}

// InputSource loads the actor input.
type InputSource interface {
	// Input returns the run configuration. A missing input is not an error
	// and yields an empty Input.
	Input(ctx context.Context) (*Input, error)
}
