package rostergen

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/squad/internal/adapters/repository"
	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string
	Participants int
	Workers      int
	Timeout      time.Duration
	PollInterval time.Duration
	// ClearFirst empties the service roster before submitting.
	ClearFirst bool
	// Policy is the policy the service runs with; results are checked against it.
	Policy allocation.Policy
}

// Report summarises a load run.
type Report struct {
	Submitted   int
	Failed      int
	JobID       string
	Status      repository.JobStatus
	Teams       int
	RepairMoves int
	Degraded    int
	Failure     *repository.Failure
	Duration    time.Duration
}

// Run submits roster concurrently, requests an allocation and verifies it.
// An infeasible roster is reported, not returned as an error.
func Run(ctx context.Context, cfg Config, roster []model.Signup) (Report, error) {
	log := logger.Get().Named("rostergen")
	start := time.Now()
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Healthy(ctx); err != nil {
		return Report{}, err
	}
	if cfg.ClearFirst {
		if err := client.ClearSignups(ctx); err != nil {
			return Report{}, fmt.Errorf("clear roster: %w", err)
		}
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, s := range roster {
		g.Go(func() error {
			if err := client.SubmitSignup(gctx, s); err != nil {
				failed.Add(1)
				log.Warn(gctx, "signup rejected", logger.String("id", s.ID), logger.Error(err))
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("submit signups: %w", err)
	}

	rep := Report{Submitted: len(roster), Failed: int(failed.Load())}
	log.Info(ctx, "roster submitted", logger.Int("submitted", rep.Submitted), logger.Int("failed", rep.Failed))

	ticket, err := client.RequestAllocation(ctx, uuid.NewString())
	if err != nil {
		return rep, fmt.Errorf("request allocation: %w", err)
	}
	rep.JobID = ticket.JobID

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	rec, err := client.Await(ctx, ticket.JobID, poll)
	if err != nil {
		return rep, err
	}
	rep.Status = rec.Status
	rep.Duration = time.Since(start)

	if rec.Status == repository.StatusFailed {
		rep.Failure = rec.Failure
		log.Info(ctx, "allocation infeasible", logger.Any("failure", rec.Failure))
		return rep, nil
	}

	res := *rec.Result
	rep.Teams = len(res.Teams)
	rep.RepairMoves = res.RepairMoves
	rep.Degraded = len(res.Degraded)
	if err := Verify(cfg.Policy, roster, res); err != nil {
		return rep, err
	}
	log.Info(ctx, "allocation verified",
		logger.String("job_id", rep.JobID),
		logger.Int("teams", rep.Teams),
		logger.Int("repair_moves", rep.RepairMoves),
		logger.Duration("duration", rep.Duration),
	)
	return rep, nil
}

// Verify checks that res places every submitted signup exactly once and
// satisfies the policy's invariants.
func Verify(pol allocation.Policy, roster []model.Signup, res model.Result) error {
	want := make(map[string]bool, len(roster))
	for _, s := range roster {
		want[s.ID] = true
	}
	var placed []model.Participant
	for _, t := range res.Teams {
		placed = append(placed, t.Members...)
	}
	for _, p := range placed {
		if !want[p.ID] {
			return fmt.Errorf("%w: unexpected participant %s", ErrVerification, p.ID)
		}
		delete(want, p.ID)
	}
	if len(want) > 0 {
		return fmt.Errorf("%w: %d signups not placed", ErrVerification, len(want))
	}
	if err := allocation.Validate(pol, placed, res.Teams); err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}
	return nil
}
