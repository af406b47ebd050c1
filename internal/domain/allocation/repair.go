package allocation

import (
	"context"
	"slices"
	"sort"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
)

type moveKind int

const (
	relocate moveKind = iota
	exchange
	spawn
)

func (k moveKind) String() string {
	switch k {
	case relocate:
		return "relocate"
	case exchange:
		return "exchange"
	default:
		return "spawn"
	}
}

// move is a proposed change to at most two teams. For relocate and spawn the
// member at fromIdx of team from moves to team to (a new team for spawn).
// For exchange the members at fromIdx and toIdx trade places.
type move struct {
	kind    moveKind
	from    int
	fromIdx int
	to      int
	toIdx   int
}

// preview returns the two affected teams after m without touching teams.
// For spawn the second team is the new one.
func (m move) preview(teams []model.Team) (model.Team, model.Team) {
	src := teams[m.from].Clone()
	var dst model.Team
	if m.kind == spawn {
		dst = model.Team{TargetSize: NoviceHostSize}
	} else {
		dst = teams[m.to].Clone()
	}

	moving := src.Members[m.fromIdx]
	src.Members = slices.Delete(src.Members, m.fromIdx, m.fromIdx+1)
	if m.kind == exchange {
		back := dst.Members[m.toIdx]
		dst.Members = slices.Delete(dst.Members, m.toIdx, m.toIdx+1)
		src.Members = append(src.Members, back)
	}
	dst.Members = append(dst.Members, moving)
	return src, dst
}

// repairer rewrites a distributed partition toward zero violations. Every
// applied move strictly lowers the total score, so the loop ends at a
// fixpoint or when the budget runs out.
type repairer struct {
	policy Policy
	log    logger.Logger
}

func (r *repairer) repair(ctx context.Context, teams []model.Team) ([]model.Team, int) {
	teams = prune(teams)
	budget := r.policy.repairBudget(len(teams))
	moves := 0
	for moves < budget {
		m, inv, gain, ok := r.next(teams)
		if !ok {
			break
		}
		r.log.Debug(ctx, "repair move",
			logger.String("invariant", string(inv)),
			logger.String("kind", m.kind.String()),
			logger.String("participant", teams[m.from].Members[m.fromIdx].ID),
			logger.Int("from_team", m.from+1),
			logger.Int("gain", gain),
		)
		teams = apply(teams, m)
		moves++
	}
	if moves == budget {
		r.log.Warn(ctx, "repair budget exhausted", logger.Int("budget", budget))
	}
	return teams, moves
}

// next scans the rules in priority order and returns the best improving move
// for the first violating team that has one.
func (r *repairer) next(teams []model.Team) (move, Invariant, int, bool) {
	for _, rl := range rules {
		for v := range teams {
			if !rl.needsRepair(teams[v], count(teams[v]), r.policy) {
				continue
			}
			if m, gain, ok := r.best(teams, v, rl); ok {
				return m, rl.inv, gain, true
			}
		}
	}
	return move{}, "", 0, false
}

// best generates the candidate moves touching team v in the rule's preferred
// order and returns the one with the largest strict score decrease. Ties go
// to the earlier candidate.
func (r *repairer) best(teams []model.Team, v int, rl rule) (move, int, bool) {
	var (
		bestMove move
		bestGain int
		found    bool
	)
	consider := func(m move) {
		before := score(teams[m.from], r.policy)
		if m.kind != spawn {
			before += score(teams[m.to], r.policy)
		}
		a, b := m.preview(teams)
		gain := before - score(a, r.policy) - score(b, r.policy)
		if gain > 0 && gain > bestGain {
			bestMove, bestGain, found = m, gain, true
		}
	}

	members := memberOrder(teams[v], rl.offender)
	for _, t := range r.targets(teams, v, rl) {
		for _, i := range members {
			consider(move{kind: relocate, from: v, fromIdx: i, to: t})
		}
		for _, i := range members {
			for j := range teams[t].Members {
				consider(move{kind: exchange, from: v, fromIdx: i, to: t, toIdx: j})
			}
		}
		for j := range teams[t].Members {
			consider(move{kind: relocate, from: t, fromIdx: j, to: v})
		}
	}
	for _, i := range members {
		if rl.offender(teams[v].Members[i]) {
			consider(move{kind: spawn, from: v, fromIdx: i})
		}
	}
	return bestMove, bestGain, found
}

// targets returns every other team ordered by the rule's preference, ties in
// team order.
func (r *repairer) targets(teams []model.Team, v int, rl rule) []int {
	out := make([]int, 0, len(teams)-1)
	ranks := make(map[int]int, len(teams))
	for t := range teams {
		if t == v {
			continue
		}
		out = append(out, t)
		ranks[t] = rl.rank(teams[t], count(teams[t]), r.policy)
	}
	sort.SliceStable(out, func(i, j int) bool { return ranks[out[i]] < ranks[out[j]] })
	return out
}

// memberOrder lists member positions with offenders first.
func memberOrder(t model.Team, offender func(model.Participant) bool) []int {
	out := make([]int, 0, t.Size())
	for i, m := range t.Members {
		if offender(m) {
			out = append(out, i)
		}
	}
	for i, m := range t.Members {
		if !offender(m) {
			out = append(out, i)
		}
	}
	return out
}

func apply(teams []model.Team, m move) []model.Team {
	a, b := m.preview(teams)
	out := slices.Clone(teams)
	out[m.from] = a
	if m.kind == spawn {
		out = append(out, b)
	} else {
		out[m.to] = b
	}
	return prune(out)
}

// prune drops empty teams, keeping order.
func prune(teams []model.Team) []model.Team {
	return slices.DeleteFunc(teams, func(t model.Team) bool { return t.Size() == 0 })
}
