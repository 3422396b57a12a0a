package crawl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/medreg"
	"github.com/google/uuid"
)

// Sink defaults.
const (
	DefaultFlushTimeout = 2 * time.Hour
	DefaultBatchSize    = 500
)

// RunState is the lifecycle state of a sink run.
type RunState int32

// Run states.
const (
	StateOpened RunState = iota
	StateCollecting
	StateFlushing
	StateClosed
)

func (s RunState) String() string {
	switch s {
	case StateOpened:
		return "opened"
	case StateCollecting:
		return "collecting"
	case StateFlushing:
		return "flushing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sink buffers the records of one adapter run and flushes them to a dataset
// store when the run closes.
type Sink struct {
	Store        medreg.DatasetStore
	FlushTimeout time.Duration
	BatchSize    int
	Logger       *slog.Logger
}

// Open starts a run for the named adapter. Runs are independent; a sink may
// have several open at once.
func (s *Sink) Open(adapter string) *Run {
	r := &Run{
		id:      uuid.NewString(),
		adapter: adapter,
		sink:    s,
		logger:  s.logger().With("adapter", adapter),
	}
	r.logger.Debug("sink opened", "run", r.id)
	return r
}

func (s *Sink) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (s *Sink) flushTimeout() time.Duration {
	if s.FlushTimeout > 0 {
		return s.FlushTimeout
	}
	return DefaultFlushTimeout
}

func (s *Sink) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return DefaultBatchSize
}

// Run is the per-adapter buffer of a Sink.
type Run struct {
	id      string
	adapter string
	sink    *Sink
	logger  *slog.Logger

	state atomic.Int32

	mu     sync.Mutex
	buffer []medreg.Record
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Adapter returns the name records are tagged with.
func (r *Run) Adapter() string { return r.adapter }

// State returns the current lifecycle state.
func (r *Run) State() RunState { return RunState(r.state.Load()) }

// Len returns the number of buffered records.
func (r *Run) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

// Accept copies rec, tags it with the adapter name, normalizes it and
// appends it to the buffer. It returns EINVALID for a record without a URL
// and ECONFLICT once the run is closing.
func (r *Run) Accept(rec medreg.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.State() {
	case StateFlushing, StateClosed:
		return medreg.Errorf(medreg.ECONFLICT, "sink run for %q is closed", r.adapter)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	r.state.Store(int32(StateCollecting))

	item := rec.Clone()
	item[medreg.FieldSource] = r.adapter
	r.buffer = append(r.buffer, medreg.NormalizeRecord(item))
	return nil
}

// Close stops accepting records and flushes the buffer in the background.
// An empty buffer resolves immediately without contacting the store.
// Closing twice yields a flush resolved with ECONFLICT.
func (r *Run) Close(ctx context.Context) *Flush {
	r.mu.Lock()
	switch r.State() {
	case StateFlushing, StateClosed:
		r.mu.Unlock()
		f := newFlush()
		f.resolve(0, medreg.Errorf(medreg.ECONFLICT, "sink run for %q already closed", r.adapter))
		return f
	}
	items := r.buffer
	r.buffer = nil
	r.state.Store(int32(StateFlushing))
	r.mu.Unlock()

	f := newFlush()
	if len(items) == 0 {
		r.state.Store(int32(StateClosed))
		r.logger.Info("sink closed", "run", r.id, "items", 0)
		f.resolve(0, nil)
		return f
	}

	timeout := r.sink.flushTimeout()
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	timer := time.AfterFunc(timeout, func() {
		f.resolve(0, medreg.Errorf(medreg.ETIMEOUT, "flush of %d items for %q timed out after %s", len(items), r.adapter, timeout))
	})

	go func() {
		defer cancel()
		defer timer.Stop()

		start := time.Now()
		n, err := r.push(flushCtx, items)
		r.state.Store(int32(StateClosed))
		if err != nil {
			r.logger.Error("sink flush failed", "run", r.id, "items", len(items), "pushed", n, "err", err)
		} else {
			r.logger.Info("sink flushed", "run", r.id, "items", n, "duration", time.Since(start))
		}
		f.resolve(n, err)
	}()
	return f
}

func (r *Run) push(ctx context.Context, items []medreg.Record) (int, error) {
	size := r.sink.batchSize()
	pushed := 0
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		if err := r.sink.Store.PushData(ctx, items[start:end]...); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return pushed, medreg.Errorf(medreg.ETIMEOUT, "flush for %q: %v", r.adapter, err)
			}
			return pushed, err
		}
		pushed = end
	}
	return pushed, nil
}

// Flush is the completion handle of a closing run. It resolves exactly once.
type Flush struct {
	done  chan struct{}
	once  sync.Once
	err   error
	count int
}

func newFlush() *Flush {
	return &Flush{done: make(chan struct{})}
}

func (f *Flush) resolve(count int, err error) {
	f.once.Do(func() {
		f.count = count
		f.err = err
		close(f.done)
	})
}

// Done is closed when the flush resolves.
func (f *Flush) Done() <-chan struct{} { return f.done }

// Err blocks until the flush resolves and returns its error.
func (f *Flush) Err() error {
	<-f.done
	return f.err
}

// Count blocks until the flush resolves and returns the number of records
// pushed.
func (f *Flush) Count() int {
	<-f.done
	return f.count
}
