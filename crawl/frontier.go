package crawl

import (
	"container/heap"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/medreg"
	"github.com/fwojciec/medreg/bloom"
)

// Frontier is an in-memory request queue ordered by priority, with Bloom
// filter deduplication. Requests of equal priority pop in push order.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue *requestHeap
	seq   uint64
}

// NewFrontier creates a new Frontier sized for n expected requests
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &requestHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewFilter(n, fpRate),
		queue: h,
	}
}

// Push adds a request to the frontier.
// Returns false if an equivalent request has already been seen, unless the
// request sets DontFilter.
func (f *Frontier) Push(req *medreg.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := CanonicalURL(req.URL)
	if !req.DontFilter {
		if f.seen.Test(key) {
			return false
		}
	}
	f.seen.Add(key)

	f.seq++
	heap.Push(f.queue, queued{req: req, seq: f.seq})
	return true
}

// Pop returns the next request by priority.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (*medreg.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return nil, false
	}
	q, _ := heap.Pop(f.queue).(queued)
	return q.req, true
}

// Len returns the number of queued requests.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// CanonicalURL strips the fragment and sorts query parameters so that
// equivalent URLs deduplicate.
func CanonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if idx := strings.Index(rawURL, "#"); idx != -1 {
			return rawURL[:idx]
		}
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}
	return u.String()
}

type queued struct {
	req *medreg.Request
	seq uint64
}

// requestHeap implements heap.Interface as a max-heap on priority.
type requestHeap []queued

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].req.Priority != h[j].req.Priority {
		return h[i].req.Priority > h[j].req.Priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) {
	q, _ := x.(queued)
	*h = append(*h, q)
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
