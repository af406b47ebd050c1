// Package worker runs queued allocation jobs through the engine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Allocator partitions a roster.
type Allocator interface {
	Allocate(ctx context.Context, roster []model.Signup) (model.Result, error)
}

// Recorder stores job outcomes.
type Recorder interface {
	Complete(ctx context.Context, id string, res model.Result) error
	Fail(ctx context.Context, id string, cause error) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
}

// Worker processes allocation jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// Activity counts busy workers.
type Activity struct {
	busy atomic.Int64
}

func (a *Activity) begin() {
	if a != nil {
		metrics.UpdateWorkerActiveCount(int(a.busy.Add(1)))
	}
}

func (a *Activity) end() {
	if a != nil {
		metrics.UpdateWorkerActiveCount(int(a.busy.Add(-1)))
	}
}

// Busy returns the number of workers currently running a job.
func (a *Activity) Busy() int { return int(a.busy.Load()) }

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	allocator Allocator
	recorder  Recorder
	name      string
	activity  *Activity

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, a Allocator, r Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		allocator: a,
		recorder:  r,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs one allocation and records its outcome. Infeasible
// rosters are a normal outcome and are recorded as failed jobs.
func (w *InMemoryWorker) processJob(ctx context.Context, job model.Job) error {
	w.activity.begin()
	defer w.activity.end()

	start := time.Now()
	res, err := w.allocator.Allocate(ctx, job.Roster)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if !job.SubmittedAt.IsZero() {
		defer func() { metrics.RecordJobLatency(float64(time.Since(job.SubmittedAt).Milliseconds())) }()
	}

	if err != nil {
		var inf *allocation.InfeasibleError
		if errors.As(err, &inf) {
			metrics.RecordAllocation(metrics.OutcomeInfeasible, string(inf.Invariant), elapsed)
			w.logger.Info(ctx, "allocation infeasible",
				logger.String("job_id", job.ID),
				logger.String("invariant", string(inf.Invariant)),
				logger.Strings("participants", inf.Participants),
			)
		} else {
			metrics.RecordAllocation(metrics.OutcomeError, "", elapsed)
			metrics.RecordErrorByComponent("worker", "allocation_error")
		}
		if ferr := w.recorder.Fail(ctx, job.ID, err); ferr != nil {
			metrics.RecordErrorByComponent("worker", "record_error")
			return fmt.Errorf("record failure of %s: %w", job.ID, ferr)
		}
		return nil
	}

	metrics.RecordAllocation(metrics.OutcomeSuccess, "", elapsed)
	metrics.RecordAllocationResult(len(res.Teams), res.RepairMoves, len(res.Degraded))
	if err := w.recorder.Complete(ctx, job.ID, res); err != nil {
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record result of %s: %w", job.ID, err)
	}
	w.logger.Info(ctx, "allocation complete",
		logger.String("job_id", job.ID),
		logger.Int("participants", res.Participants()),
		logger.Int("teams", len(res.Teams)),
		logger.Int("repair_moves", res.RepairMoves),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	activity *Activity
	wg       sync.WaitGroup
	logger   logger.Logger
}

// NewPool creates a worker pool. A non-positive workerCount uses one worker
// per CPU.
func NewPool(workerCount int, q Queue, a Allocator, r Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		activity: &Activity{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i)), WithActivity(pool.activity)}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, a, r, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Busy returns the number of workers running a job.
func (p *Pool) Busy() int { return p.activity.Busy() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Shutdown closes the queue, lets workers drain it, and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		return nil
	case <-shutdownCtx.Done():
		for _, w := range p.workers {
			_ = w.Shutdown(shutdownCtx)
		}
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
}
