// Package service wires the roster, the allocation engine and the job
// pipeline behind the operations used by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/squad/internal/adapters/mq/queue"
	workerpool "github.com/okian/squad/internal/adapters/mq/worker"
	"github.com/okian/squad/internal/adapters/repository"
	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/dedupe"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

// Ticket identifies a submitted allocation job.
type Ticket struct {
	JobID     string               `json:"job_id"`
	Status    repository.JobStatus `json:"status"`
	Duplicate bool                 `json:"duplicate,omitempty"`
}

// Stats is a point-in-time view of the service.
type Stats struct {
	Started       bool `json:"started"`
	WorkerCount   int  `json:"worker_count"`
	BusyWorkers   int  `json:"busy_workers"`
	QueueCapacity int  `json:"queue_capacity"`
	QueueLength   int  `json:"queue_length"`
	Signups       int  `json:"signups"`
	StoredJobs    int  `json:"stored_jobs"`
	DedupeEntries int  `json:"dedupe_entries"`
}

// Service implements the API dependencies for the allocation system.
type Service struct {
	mu sync.RWMutex

	engine  *allocation.Engine
	roster  repository.RosterStore
	results repository.ResultStore
	deduper dedupe.Deduper
	queue   *jobqueue.InMemoryQueue
	pool    *workerpool.Pool

	workerCount     int
	queueSize       int
	dedupeSize      int
	historySize     int
	maxRosterSize   int
	shutdownTimeout time.Duration
	policy          allocation.Policy

	started bool
	logger  logger.Logger
}

// New constructs a Service. Stores and the engine are ready immediately;
// the job pipeline runs only between Start and Stop.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       1024,
		dedupeSize:      10_000,
		historySize:     100,
		maxRosterSize:   500,
		shutdownTimeout: 30 * time.Second,
		policy:          allocation.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	engine, err := allocation.New(
		allocation.WithPolicy(s.policy),
		allocation.WithLogger(s.logger.Named("allocation")),
	)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	s.engine = engine
	s.roster = repository.NewInMemoryRoster(repository.WithMaxRosterSize(s.maxRosterSize))
	s.results = repository.NewInMemoryResults(repository.WithHistorySize(s.historySize))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s, nil
}

// Policy returns the policy the engine runs with.
func (s *Service) Policy() allocation.Policy { return s.engine.Policy() }

// Start initializes the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.results,
		workerpool.WithLogger(s.logger.Named("worker")))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "allocation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("historySize", s.historySize),
	)
	return nil
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping allocation service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "allocation service stopped")
}

// SubmitSignup adds or replaces a signup on the current roster.
func (s *Service) SubmitSignup(ctx context.Context, signup model.Signup) (bool, error) {
	created, err := s.roster.Upsert(ctx, signup)
	if err != nil {
		return false, err
	}
	metrics.UpdateRosterSize(s.roster.Count(ctx))
	s.logger.Debug(ctx, "signup stored",
		logger.String("id", signup.ID),
		logger.Bool("created", created),
	)
	return created, nil
}

// Signups returns the current roster in first-seen order.
func (s *Service) Signups(ctx context.Context) []model.Signup {
	return s.roster.List(ctx)
}

// ClearSignups empties the roster for the next event.
func (s *Service) ClearSignups(ctx context.Context) int {
	n := s.roster.Clear(ctx)
	metrics.UpdateRosterSize(0)
	s.logger.Info(ctx, "roster cleared", logger.Int("removed", n))
	return n
}

// RequestAllocation queues an allocation of roster, or of the current roster
// when roster is nil. A repeated non-empty requestID returns the job it was
// first bound to.
func (s *Service) RequestAllocation(ctx context.Context, requestID string, roster []model.Signup) (Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Ticket{}, ErrNotStarted
	}
	if roster == nil {
		roster = s.roster.List(ctx)
	}

	jobID := uuid.NewString()
	if requestID != "" {
		bound, dup := s.deduper.Claim(ctx, requestID, jobID)
		if dup {
			metrics.RecordDuplicateRequest()
			t := Ticket{JobID: bound, Status: repository.StatusPending, Duplicate: true}
			if rec, err := s.results.Get(ctx, bound); err == nil {
				t.Status = rec.Status
			}
			return t, nil
		}
	}

	if err := s.results.Put(ctx, jobID, time.Now()); err != nil {
		s.release(ctx, requestID)
		return Ticket{}, err
	}
	metrics.UpdateStoredResults(s.results.Count(ctx))

	job := model.Job{ID: jobID, Roster: roster, SubmittedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.release(ctx, requestID)
		_ = s.results.Fail(ctx, jobID, err)
		if errors.Is(err, jobqueue.ErrFull) || errors.Is(err, jobqueue.ErrClosed) {
			return Ticket{}, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		return Ticket{}, err
	}

	s.logger.Debug(ctx, "allocation queued",
		logger.String("job_id", jobID),
		logger.String("request_id", requestID),
		logger.Int("participants", len(roster)),
	)
	return Ticket{JobID: jobID, Status: repository.StatusPending}, nil
}

func (s *Service) release(ctx context.Context, requestID string) {
	if requestID != "" {
		s.deduper.Release(ctx, requestID)
	}
}

// Allocation returns a job record by ID.
func (s *Service) Allocation(ctx context.Context, id string) (repository.JobRecord, error) {
	return s.results.Get(ctx, id)
}

// LatestAllocation returns the most recent successful job.
func (s *Service) LatestAllocation(ctx context.Context) (repository.JobRecord, error) {
	return s.results.Latest(ctx)
}

// AllocateNow runs the engine inline and stores the outcome like a queued
// job. The record is returned for both outcomes; err is non-nil when the
// roster was infeasible.
func (s *Service) AllocateNow(ctx context.Context, roster []model.Signup) (repository.JobRecord, error) {
	if roster == nil {
		roster = s.roster.List(ctx)
	}

	jobID := uuid.NewString()
	if err := s.results.Put(ctx, jobID, time.Now()); err != nil {
		return repository.JobRecord{}, err
	}
	metrics.UpdateStoredResults(s.results.Count(ctx))

	start := time.Now()
	res, err := s.engine.Allocate(ctx, roster)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		var inf *allocation.InfeasibleError
		if errors.As(err, &inf) {
			metrics.RecordAllocation(metrics.OutcomeInfeasible, string(inf.Invariant), elapsed)
		} else {
			metrics.RecordAllocation(metrics.OutcomeError, "", elapsed)
		}
		if ferr := s.results.Fail(ctx, jobID, err); ferr != nil {
			return repository.JobRecord{}, ferr
		}
		rec, gerr := s.results.Get(ctx, jobID)
		if gerr != nil {
			return repository.JobRecord{}, gerr
		}
		return rec, err
	}

	metrics.RecordAllocation(metrics.OutcomeSuccess, "", elapsed)
	metrics.RecordAllocationResult(len(res.Teams), res.RepairMoves, len(res.Degraded))
	if err := s.results.Complete(ctx, jobID, res); err != nil {
		return repository.JobRecord{}, err
	}
	return s.results.Get(ctx, jobID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:       s.started,
		WorkerCount:   s.workerCount,
		QueueCapacity: s.queueSize,
		Signups:       s.roster.Count(ctx),
		StoredJobs:    s.results.Count(ctx),
		DedupeEntries: s.deduper.Size(),
	}
	if s.started {
		st.QueueLength = s.queue.Len(ctx)
		st.BusyWorkers = s.pool.Busy()

		metrics.UpdateQueueSize(st.QueueLength)
		metrics.UpdateWorkerActiveCount(st.BusyWorkers)
	}
	metrics.UpdateRosterSize(st.Signups)
	metrics.UpdateStoredResults(st.StoredJobs)
	return st
}
