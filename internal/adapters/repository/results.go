package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/metrics"
)

const defaultHistorySize = 100

// InMemoryResults implements ResultStore with FIFO eviction.
type InMemoryResults struct {
	mu          sync.RWMutex
	order       []string
	byID        map[string]*JobRecord
	latest      string
	historySize int
	now         func() time.Time
}

// NewInMemoryResults creates an empty history.
func NewInMemoryResults(opts ...ResultOption) *InMemoryResults {
	r := &InMemoryResults{
		byID:        make(map[string]*JobRecord),
		historySize: defaultHistorySize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Put registers a pending job, evicting the oldest job when full.
func (r *InMemoryResults) Put(ctx context.Context, id string, submittedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("job %q: %w", id, ErrDuplicateJob)
	}
	for len(r.order) >= r.historySize {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.byID, oldest)
		if r.latest == oldest {
			r.latest = ""
		}
	}
	r.order = append(r.order, id)
	r.byID[id] = &JobRecord{ID: id, Status: StatusPending, SubmittedAt: submittedAt}
	metrics.UpdateStoredResults(len(r.order))
	return nil
}

// Complete stores the result of a job.
func (r *InMemoryResults) Complete(ctx context.Context, id string, res model.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("job %q: %w", id, ErrNotFound)
	}
	rec.Status = StatusDone
	rec.Result = &res
	rec.Failure = nil
	rec.CompletedAt = r.now()
	r.latest = id
	return nil
}

// Fail stores the cause of a failed job.
func (r *InMemoryResults) Fail(ctx context.Context, id string, cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("job %q: %w", id, ErrNotFound)
	}
	rec.Status = StatusFailed
	rec.Result = nil
	rec.Failure = NewFailure(cause)
	rec.CompletedAt = r.now()
	return nil
}

// Get returns a copy of a job record.
func (r *InMemoryResults) Get(ctx context.Context, id string) (JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return JobRecord{}, fmt.Errorf("job %q: %w", id, ErrNotFound)
	}
	return *rec, nil
}

// Latest returns the most recent successful job.
func (r *InMemoryResults) Latest(ctx context.Context) (JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == "" {
		return JobRecord{}, ErrNoResult
	}
	return *r.byID[r.latest], nil
}

// Count returns the number of jobs in history.
func (r *InMemoryResults) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// NewFailure converts an allocation error into its stored form.
func NewFailure(cause error) *Failure {
	if cause == nil {
		return nil
	}
	f := &Failure{Message: cause.Error()}
	var inf *allocation.InfeasibleError
	if errors.As(cause, &inf) {
		f.Invariant = string(inf.Invariant)
		f.Team = inf.Team + 1
		f.Participants = inf.Participants
		f.Violations = inf.Violations
	}
	return f
}
