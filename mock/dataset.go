package mock

import (
	"context"

	"github.com/fwojciec/medreg"
)

var (
	_ medreg.DatasetStore = (*DatasetStore)(nil)
	_ medreg.InputSource  = (*InputSource)(nil)
	_ medreg.RecordReader = (*RecordReader)(nil)
)

// DatasetStore is a mock implementation of medreg.DatasetStore.
type DatasetStore struct {
	PushDataFn func(ctx context.Context, records ...medreg.Record) error
}

func (s *DatasetStore) PushData(ctx context.Context, records ...medreg.Record) error {
	return s.PushDataFn(ctx, records...)
}

// InputSource is a mock implementation of medreg.InputSource.
type InputSource struct {
	InputFn func(ctx context.Context) (*medreg.Input, error)
}

func (s *InputSource) Input(ctx context.Context) (*medreg.Input, error) {
	return s.InputFn(ctx)
}

// RecordReader is a mock implementation of medreg.RecordReader.
type RecordReader struct {
	FindRecordsFn  func(ctx context.Context, filter medreg.RecordFilter) ([]*medreg.StoredRecord, error)
	CountRecordsFn func(ctx context.Context, source string) (int, error)
}

func (r *RecordReader) FindRecords(ctx context.Context, filter medreg.RecordFilter) ([]*medreg.StoredRecord, error) {
	return r.FindRecordsFn(ctx, filter)
}

func (r *RecordReader) CountRecords(ctx context.Context, source string) (int, error) {
	return r.CountRecordsFn(ctx, source)
}
