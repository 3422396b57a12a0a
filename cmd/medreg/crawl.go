package main

import (
	"fmt"

	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	in := c.input(deps)

	runner := &crawl.Runner{
		Engine: &crawl.Engine{
			Fetcher:   deps.Fetcher,
			Enrichers: deps.Enrichers,
			Limits:    c.limits(in),
			Logger:    deps.Logger,
		},
		Sink: &crawl.Sink{
			Store:        deps.Store,
			FlushTimeout: c.FlushTimeout,
			Logger:       deps.Logger,
		},
		Adapters: deps.Adapters,
		Logger:   deps.Logger,
	}

	reports, err := runner.Run(deps.Ctx, c.names(deps, in))
	for _, rep := range reports {
		status := "ok"
		if rep.Err() != nil {
			status = "error"
		}
		stats := rep.Stats
		if stats == nil {
			stats = &crawl.Stats{}
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  items=%d pushed=%d requests=%d failed=%d downloaded=%s reason=%s\n",
			rep.Adapter, status, rep.Accepted, rep.Pushed, stats.Requests, stats.Failed, crawl.FormatBytes(stats.Bytes), stats.Reason)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", medreg.ErrorMessage(err))
		return err
	}
	return nil
}

// input loads the actor input. A failing source is logged and treated as
// empty input.
func (c *CrawlCmd) input(deps *Dependencies) *medreg.Input {
	if deps.Input == nil {
		return &medreg.Input{}
	}
	in, err := deps.Input.Input(deps.Ctx)
	if err != nil {
		deps.Logger.Warn("could not load actor input", "err", err)
		return &medreg.Input{}
	}
	return in
}

// names selects the spiders: arguments, --all, the actor input, then
// --spider-name.
func (c *CrawlCmd) names(deps *Dependencies, in *medreg.Input) []string {
	switch {
	case len(c.Spiders) > 0:
		return c.Spiders
	case c.All:
		return deps.Adapters.Names()
	}
	if names := in.Names(); len(names) > 0 {
		return names
	}
	if c.SpiderName != "" {
		return []string{c.SpiderName}
	}
	return nil
}

// limits merges flag limits over the actor input.
func (c *CrawlCmd) limits(in *medreg.Input) medreg.Limits {
	l := in.Limits()
	if c.MaxItems > 0 {
		l.MaxItems = c.MaxItems
	}
	if c.MaxPages > 0 {
		l.MaxPages = c.MaxPages
	}
	if c.MaxDuration > 0 {
		l.MaxDuration = c.MaxDuration
	}
	return l
}
