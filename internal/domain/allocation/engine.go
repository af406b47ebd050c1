package allocation

import (
	"context"
	"time"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/internal/domain/tier"
	"github.com/okian/squad/pkg/logger"
)

// Allocator partitions rosters into teams.
type Allocator interface {
	// Allocate classifies roster and partitions it. It returns an
	// *InfeasibleError when the invariants cannot all be met.
	Allocate(ctx context.Context, roster []model.Signup) (model.Result, error)
}

// Engine is the allocation pipeline. It is safe for concurrent use: every
// call works on its own copy of the input.
type Engine struct {
	policy     Policy
	classifier *tier.Classifier
	log        logger.Logger
}

// New creates an Engine. The policy is validated once here.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		policy: DefaultPolicy(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	e.classifier = tier.New(
		tier.WithThresholds(e.policy.Thresholds),
		tier.WithLogger(e.log),
	)
	return e, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy { return e.policy }

// Allocate classifies roster and partitions it. Records that had to be
// recovered are listed in Result.Degraded.
func (e *Engine) Allocate(ctx context.Context, roster []model.Signup) (model.Result, error) {
	participants, degraded := e.classifier.ClassifyAll(ctx, roster)
	res, err := e.AllocateParticipants(ctx, participants)
	if err != nil {
		return model.Result{}, err
	}
	res.Degraded = degraded
	return res, nil
}

// AllocateParticipants partitions already classified participants.
func (e *Engine) AllocateParticipants(ctx context.Context, participants []model.Participant) (model.Result, error) {
	start := time.Now()
	if len(participants) == 0 {
		return model.Result{Teams: []model.Team{}, Unplaced: []model.Participant{}}, nil
	}

	sorted := sortRoster(participants)
	p := splitPools(sorted)

	plan, err := planSizes(len(sorted), e.policy)
	if err != nil {
		return model.Result{}, &InfeasibleError{
			Invariant:    TeamSize,
			Team:         -1,
			Participants: ids(participants),
			Violations:   []Violation{{Invariant: TeamSize, Team: -1, Participants: ids(participants)}},
			cause:        err,
		}
	}
	if e.policy.ConsolidateUnderSupervised && len(p.supervisors) > 0 && len(p.supervisors) < len(plan) {
		plan = consolidatedPlan(len(p.supervisors))
	}

	teams := seed(plan, p)
	teams = distribute(teams, p, e.policy)

	r := &repairer{policy: e.policy, log: e.log}
	teams, moves := r.repair(ctx, teams)

	if err := Validate(e.policy, participants, teams); err != nil {
		e.log.Info(ctx, "allocation infeasible",
			logger.Int("participants", len(participants)),
			logger.Int("repair_moves", moves),
			logger.Error(err),
		)
		return model.Result{}, err
	}

	e.log.Debug(ctx, "allocation complete",
		logger.Int("participants", len(participants)),
		logger.Int("teams", len(teams)),
		logger.Int("repair_moves", moves),
		logger.Duration("elapsed", time.Since(start)),
	)
	return model.Result{
		Teams:       teams,
		Unplaced:    []model.Participant{},
		RepairMoves: moves,
	}, nil
}

func ids(ps []model.Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
