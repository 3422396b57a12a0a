package crawl

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DomainLimiter spaces requests to the same host. Hosts do not delay
// each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDelayLimiter creates a DomainLimiter that lets one request per delay
// through for each host.
func NewDelayLimiter(delay time.Duration) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(delay),
	}
}

// Wait blocks until a request to domain may start or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// DomainSlots caps the number of concurrent requests per domain.
type DomainSlots struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
	n    int64
}

// NewDomainSlots creates DomainSlots allowing n concurrent requests per domain.
func NewDomainSlots(n int) *DomainSlots {
	return &DomainSlots{
		sems: make(map[string]*semaphore.Weighted),
		n:    int64(n),
	}
}

// Acquire blocks until a slot for domain is free and returns its release func.
func (d *DomainSlots) Acquire(ctx context.Context, domain string) (func(), error) {
	d.mu.Lock()
	sem, ok := d.sems[domain]
	if !ok {
		sem = semaphore.NewWeighted(d.n)
		d.sems[domain] = sem
	}
	d.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// hostOf returns the host of a URL, or the raw URL if it cannot be parsed.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
