package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/metrics"
)

// rosterSnapshot is an immutable view published after every write so that
// List never takes the write lock.
type rosterSnapshot struct {
	signups []model.Signup
}

// InMemoryRoster implements RosterStore.
type InMemoryRoster struct {
	mu       sync.Mutex
	order    []string
	byID     map[string]model.Signup
	maxSize  int
	snapshot atomic.Pointer[rosterSnapshot]
}

// NewInMemoryRoster creates an empty roster.
func NewInMemoryRoster(opts ...RosterOption) *InMemoryRoster {
	r := &InMemoryRoster{byID: make(map[string]model.Signup)}
	for _, opt := range opts {
		opt(r)
	}
	r.publish()
	return r
}

// Upsert adds or replaces a signup.
func (r *InMemoryRoster) Upsert(ctx context.Context, s model.Signup) (bool, error) {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		return false, fmt.Errorf("%w: id is required", ErrInvalidSignup)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.byID[s.ID]
	if !exists {
		if r.maxSize > 0 && len(r.order) >= r.maxSize {
			return false, fmt.Errorf("%w: limit %d", ErrRosterFull, r.maxSize)
		}
		r.order = append(r.order, s.ID)
	}
	r.byID[s.ID] = s
	r.publish()
	return !exists, nil
}

// List returns the published snapshot in first-seen order.
func (r *InMemoryRoster) List(ctx context.Context) []model.Signup {
	snap := r.snapshot.Load()
	out := make([]model.Signup, len(snap.signups))
	copy(out, snap.signups)
	return out
}

// Get returns one signup.
func (r *InMemoryRoster) Get(ctx context.Context, id string) (model.Signup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return model.Signup{}, fmt.Errorf("signup %q: %w", id, ErrNotFound)
	}
	return s, nil
}

// Clear removes every signup.
func (r *InMemoryRoster) Clear(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.order)
	r.order = nil
	r.byID = make(map[string]model.Signup)
	r.publish()
	return n
}

// Count returns the number of signups.
func (r *InMemoryRoster) Count(ctx context.Context) int {
	return len(r.snapshot.Load().signups)
}

// publish must be called with r.mu held.
func (r *InMemoryRoster) publish() {
	signups := make([]model.Signup, len(r.order))
	for i, id := range r.order {
		signups[i] = r.byID[id]
	}
	r.snapshot.Store(&rosterSnapshot{signups: signups})
	metrics.UpdateRosterSize(len(signups))
}
