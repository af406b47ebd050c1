// Package repository keeps the signup roster and the allocation history in
// memory. Nothing survives a process restart.
package repository

import (
	"context"
	"time"

	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
)

// RosterStore holds the current signups keyed by participant ID.
type RosterStore interface {
	// Upsert adds or replaces a signup. Replacing keeps the first-seen
	// position. created is false when an existing entry was replaced.
	Upsert(ctx context.Context, s model.Signup) (created bool, err error)

	// List returns a snapshot of all signups in first-seen order.
	List(ctx context.Context) []model.Signup

	// Get returns one signup or ErrNotFound.
	Get(ctx context.Context, id string) (model.Signup, error)

	// Clear removes every signup and returns how many were removed.
	Clear(ctx context.Context) int

	Count(ctx context.Context) int
}

// JobStatus is the lifecycle state of an allocation job.
type JobStatus string

// Job states.
const (
	StatusPending JobStatus = "pending"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// Failure describes why a job produced no teams. Team is 1-based and zero
// when the whole roster is implicated.
type Failure struct {
	Message      string                 `json:"message" yaml:"message"`
	Invariant    string                 `json:"invariant,omitempty" yaml:"invariant,omitempty"`
	Team         int                    `json:"team,omitempty" yaml:"team,omitempty"`
	Participants []string               `json:"participants,omitempty" yaml:"participants,omitempty"`
	Violations   []allocation.Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// JobRecord is one allocation job and its outcome.
type JobRecord struct {
	ID          string        `json:"id" yaml:"id"`
	Status      JobStatus     `json:"status" yaml:"status"`
	Result      *model.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Failure     *Failure      `json:"failure,omitempty" yaml:"failure,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at" yaml:"submitted_at"`
	CompletedAt time.Time     `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// ResultStore keeps a bounded history of allocation jobs.
type ResultStore interface {
	// Put registers a pending job. It fails with ErrDuplicateJob if id is
	// already known.
	Put(ctx context.Context, id string, submittedAt time.Time) error

	// Complete stores the result of a job.
	Complete(ctx context.Context, id string, res model.Result) error

	// Fail stores the cause of a failed job.
	Fail(ctx context.Context, id string, cause error) error

	// Get returns a job or ErrNotFound.
	Get(ctx context.Context, id string) (JobRecord, error)

	// Latest returns the most recently completed successful job, or
	// ErrNoResult.
	Latest(ctx context.Context) (JobRecord, error)

	Count(ctx context.Context) int
}
