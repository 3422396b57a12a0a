package mock

import (
	"context"

	"github.com/fwojciec/medreg"
)

var _ medreg.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of medreg.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, req *medreg.Request) (*medreg.Response, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, req *medreg.Request) (*medreg.Response, error) {
	return f.FetchFn(ctx, req)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
