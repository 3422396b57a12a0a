package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fwojciec/medreg"
)

// Runner executes adapters one after another, each with its own sink run.
// The flush of one adapter overlaps the crawl of the next.
type Runner struct {
	Engine   *Engine
	Sink     *Sink
	Adapters medreg.AdapterRegistry
	Logger   *slog.Logger
}

// Report is the outcome of one adapter run.
type Report struct {
	Adapter  string
	Stats    *Stats
	Accepted int
	Pushed   int
	CrawlErr error
	FlushErr error

	flush *Flush
}

// Err combines the crawl and flush errors of the run.
func (r *Report) Err() error {
	var errs []error
	if r.CrawlErr != nil {
		errs = append(errs, fmt.Errorf("%s: crawl: %w", r.Adapter, r.CrawlErr))
	}
	if r.FlushErr != nil {
		errs = append(errs, fmt.Errorf("%s: flush: %w", r.Adapter, r.FlushErr))
	}
	return errors.Join(errs...)
}

// Run crawls the named adapters in order. All names are resolved before
// anything runs. It waits for every flush and returns one report per
// adapter together with the joined errors of all runs.
func (r *Runner) Run(ctx context.Context, names []string) ([]*Report, error) {
	if len(names) == 0 {
		return nil, medreg.Errorf(medreg.EINVALID, "no spiders selected")
	}
	adapters := make([]medreg.Adapter, 0, len(names))
	for _, name := range names {
		a, err := r.Adapters.Get(name)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	logger := r.logger()
	reports := make([]*Report, 0, len(adapters))
	for _, a := range adapters {
		if ctx.Err() != nil {
			break
		}
		reports = append(reports, r.runOne(ctx, a, logger))
	}

	var errs []error
	for _, rep := range reports {
		rep.FlushErr = rep.flush.Err()
		rep.Pushed = rep.flush.Count()
		if err := rep.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := ctx.Err(); err != nil && len(reports) < len(adapters) {
		errs = append(errs, err)
	}
	return reports, errors.Join(errs...)
}

func (r *Runner) runOne(ctx context.Context, a medreg.Adapter, logger *slog.Logger) *Report {
	rep := &Report{Adapter: a.Name()}
	run := r.Sink.Open(a.Name())

	stats, err := r.Engine.Crawl(ctx, a, func(rec medreg.Record) {
		if err := run.Accept(rec); err != nil {
			logger.Warn("record rejected", "adapter", a.Name(), "err", err)
			return
		}
		rep.Accepted++
	})
	rep.Stats = stats
	rep.CrawlErr = err
	rep.flush = run.Close(ctx)
	return rep
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
