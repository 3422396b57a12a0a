// Package crawl runs site adapters: it schedules their requests, fetches
// and parses documents, and hands extracted records to a dataset sink.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/medreg"
	"golang.org/x/sync/errgroup"
)

// Finish reasons reported in Stats.
const (
	ReasonFinished  = "finished"
	ReasonItemCount = "closespider_itemcount"
	ReasonPageCount = "closespider_pagecount"
	ReasonTimeout   = "closespider_timeout"
	ReasonCancelled = "cancelled"
)

// Frontier configuration.
const (
	// frontierExpectedRequests sizes the duplicate filter.
	frontierExpectedRequests = 100000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.0001
)

// Engine executes one adapter at a time. It holds no per-run state and may
// be reused for sequential runs.
type Engine struct {
	Fetcher   medreg.Fetcher
	Enrichers []medreg.Enricher
	Limits    medreg.Limits
	Logger    *slog.Logger

	// RetryDelays overrides the backoff schedule derived from
	// Settings.RetryTimes.
	RetryDelays []time.Duration
}

// Stats summarizes one adapter run.
type Stats struct {
	Requests   int
	Responses  int
	Failed     int
	Duplicates int
	Items      int
	Dropped    int
	Bytes      int
	Reason     string
	Elapsed    time.Duration
}

// outcome is what a worker hands back to the coordinator.
type outcome struct {
	req     *medreg.Request
	status  int
	bytes   int
	records []medreg.Record
	follow  []*medreg.Request
	err     error
}

// Crawl runs the adapter until its requests are exhausted or a stop
// condition is met. Records are passed to emit from a single goroutine, in
// the order their responses complete. A failed request loses only its own
// records. The returned error is non-nil only if ctx itself ends the run.
func (e *Engine) Crawl(ctx context.Context, a medreg.Adapter, emit func(medreg.Record)) (*Stats, error) {
	begin := time.Now()
	logger := e.logger().With("adapter", a.Name())
	settings := a.Settings().WithDefaults()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if e.Limits.MaxDuration > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, e.Limits.MaxDuration)
		defer cancelTimeout()
	}

	w := &worker{
		fetcher:   e.Fetcher,
		enrichers: e.Enrichers,
		settings:  settings,
		delays:    e.retryDelays(settings),
		slots:     NewDomainSlots(settings.ConcurrencyPerDomain),
		logger:    logger,
	}
	if settings.Delay > 0 {
		w.limiter = NewDelayLimiter(settings.Delay)
	}

	stats := &Stats{}
	frontier := NewFrontier(frontierExpectedRequests, frontierFalsePositiveRate)
	push := func(req *medreg.Request) {
		if req == nil || req.Callback == nil {
			return
		}
		if !frontier.Push(req) {
			stats.Duplicates++
		}
	}
	for _, req := range a.Discover() {
		push(req)
	}

	logger.Info("crawl started",
		"concurrency", settings.Concurrency,
		"concurrency_per_domain", settings.ConcurrencyPerDomain,
		"delay", settings.Delay,
		"seeds", frontier.Len(),
	)

	results := make(chan outcome)
	g, gctx := errgroup.WithContext(runCtx)

	active := 0
	stopping := false
	capped := false
	stop := func(reason string) {
		if !stopping {
			stopping = true
			stats.Reason = reason
			cancel()
		}
	}

	for {
		for !stopping && !capped && active < settings.Concurrency {
			if e.Limits.MaxPages > 0 && stats.Requests >= e.Limits.MaxPages {
				if frontier.Len() > 0 {
					capped = true
					stats.Reason = ReasonPageCount
				}
				break
			}
			req, ok := frontier.Pop()
			if !ok {
				break
			}
			active++
			stats.Requests++
			g.Go(func() error {
				results <- w.process(gctx, req)
				return nil
			})
		}
		if active == 0 {
			break
		}

		out := <-results
		active--

		if !stopping && runCtx.Err() != nil {
			if ctx.Err() != nil {
				stop(ReasonCancelled)
			} else {
				stop(ReasonTimeout)
			}
		}

		stats.Bytes += out.bytes
		if out.err != nil {
			if !stopping || !isContextErr(out.err) {
				stats.Failed++
				logger.Warn("request failed", "url", out.req.URL, "status", out.status, "err", out.err)
			}
		} else {
			stats.Responses++
		}

		for _, rec := range out.records {
			if stopping {
				stats.Dropped++
				continue
			}
			emit(rec)
			stats.Items++
			if e.Limits.MaxItems > 0 && stats.Items >= e.Limits.MaxItems {
				stop(ReasonItemCount)
			}
		}
		if !stopping && !capped {
			for _, req := range out.follow {
				push(req)
			}
		}
	}
	_ = g.Wait()

	if stats.Reason == "" {
		stats.Reason = ReasonFinished
		if ctx.Err() != nil {
			stats.Reason = ReasonCancelled
		}
	}
	stats.Elapsed = time.Since(begin)

	logger.Info("crawl finished",
		"reason", stats.Reason,
		"requests", stats.Requests,
		"responses", stats.Responses,
		"failed", stats.Failed,
		"duplicates", stats.Duplicates,
		"items", stats.Items,
		"bytes", stats.Bytes,
		"duration", stats.Elapsed,
	)

	if stats.Reason == ReasonCancelled {
		return stats, ctx.Err()
	}
	return stats, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (e *Engine) retryDelays(s medreg.Settings) []time.Duration {
	if e.RetryDelays != nil {
		return e.RetryDelays
	}
	return RetryDelays(s.RetryTimes)
}

// worker performs the fetch/parse/extract part of a request. It runs on
// pool goroutines and never touches coordinator state.
type worker struct {
	fetcher   medreg.Fetcher
	enrichers []medreg.Enricher
	settings  medreg.Settings
	delays    []time.Duration
	slots     *DomainSlots
	limiter   *DomainLimiter
	logger    *slog.Logger
}

func (w *worker) process(ctx context.Context, req *medreg.Request) (out outcome) {
	out.req = req
	defer func() {
		if r := recover(); r != nil {
			out.err = medreg.Errorf(medreg.EINTERNAL, "callback panic for %s: %v", req.URL, r)
		}
	}()

	host := hostOf(req.URL)
	release, err := w.slots.Acquire(ctx, host)
	if err != nil {
		out.err = err
		return out
	}
	defer release()

	resp, err := FetchWithRetry(ctx, w.prepare(req), w.fetchOnce, w.logf, w.delays)
	if err != nil {
		out.err = err
		return out
	}
	out.status = resp.StatusCode
	out.bytes = len(resp.Body)
	if resp.Request == nil {
		resp.Request = req
	}

	if !w.accepts(resp.StatusCode) {
		out.err = fmt.Errorf("HTTP %d for %s", resp.StatusCode, req.URL)
		return out
	}

	res, err := req.Callback(ctx, resp)
	if res != nil {
		out.records = res.Records
		out.follow = res.Requests
	}
	if err != nil {
		out.err = err
	}

	for _, rec := range out.records {
		for _, enricher := range w.enrichers {
			if err := enricher.Enrich(resp, rec); err != nil {
				w.logger.Warn("enrich failed", "url", resp.URL, "err", err)
			}
		}
	}
	return out
}

// fetchOnce performs a single rate-limited attempt bounded by the adapter's
// request timeout.
func (w *worker) fetchOnce(ctx context.Context, req *medreg.Request) (*medreg.Response, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx, hostOf(req.URL)); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, w.settings.Timeout)
	defer cancel()
	return w.fetcher.Fetch(ctx, req)
}

// prepare returns a copy of req carrying the adapter's User-Agent unless
// the request sets its own.
func (w *worker) prepare(req *medreg.Request) *medreg.Request {
	if w.settings.UserAgent == "" || req.Header().Get("User-Agent") != "" {
		return req
	}
	r := *req
	r.Headers = make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		r.Headers[k] = v
	}
	r.Headers["User-Agent"] = w.settings.UserAgent
	return &r
}

func (w *worker) logf(format string, args ...any) {
	w.logger.Debug(fmt.Sprintf(format, args...))
}

func (w *worker) accepts(code int) bool {
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return true
	}
	return w.settings.Allows(code)
}
