// Package dedupe tracks allocation request IDs for idempotent submission.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper maps client request IDs to the job that served them.
type Deduper interface {
	// Claim atomically binds requestID to jobID unless it is already bound.
	// It returns the bound job ID and whether the request was a duplicate.
	Claim(ctx context.Context, requestID, jobID string) (string, bool)

	// Release forgets requestID so a retry can claim it again. Used when a
	// claimed job could not be enqueued.
	Release(ctx context.Context, requestID string)

	Size() int
}

type claim struct {
	requestID string
	jobID     string
}

// inMemoryDeduper keeps claims in insertion order; the front of the list is
// the oldest claim and is evicted first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		claims:  make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Claim binds requestID to jobID.
func (d *inMemoryDeduper) Claim(ctx context.Context, requestID, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[requestID]; ok {
		return el.Value.(claim).jobID, true
	}
	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			oldest := d.order.Front()
			d.order.Remove(oldest)
			delete(d.claims, oldest.Value.(claim).requestID)
		}
	}
	d.claims[requestID] = d.order.PushBack(claim{requestID: requestID, jobID: jobID})
	return jobID, false
}

// Release forgets requestID.
func (d *inMemoryDeduper) Release(ctx context.Context, requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[requestID]; ok {
		d.order.Remove(el)
		delete(d.claims, requestID)
	}
}

// Size returns the number of claims held.
func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
