package allocation

import (
	"errors"
	"sort"

	"github.com/okian/squad/internal/domain/model"
	"go.uber.org/multierr"
)

// Validate checks a partition of roster against every invariant. It returns
// nil or an *InfeasibleError describing the highest priority violation.
func Validate(pol Policy, roster []model.Participant, teams []model.Team) error {
	var errs error
	for i, t := range teams {
		c := count(t)
		for _, rl := range rules {
			if rl.broken(c, pol) {
				errs = multierr.Append(errs, Violation{
					Invariant:    rl.inv,
					Team:         i,
					Participants: offenders(t, rl),
				})
			}
		}
	}
	if missing := completeness(roster, teams); len(missing) > 0 {
		errs = multierr.Append(errs, Violation{Invariant: Completeness, Team: -1, Participants: missing})
	}
	if errs == nil {
		return nil
	}
	return infeasible(errs)
}

// infeasible builds an InfeasibleError from aggregated Violation errors.
func infeasible(errs error) *InfeasibleError {
	var vs []Violation
	for _, err := range multierr.Errors(errs) {
		var v Violation
		if errors.As(err, &v) {
			vs = append(vs, v)
		}
	}
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Invariant.priority() < vs[j].Invariant.priority()
	})
	top := vs[0]
	return &InfeasibleError{
		Invariant:    top.Invariant,
		Team:         top.Team,
		Participants: top.Participants,
		Violations:   vs,
		cause:        errs,
	}
}

// offenders names the members implicated in a violation of rl on t. When no
// member is singled out the whole team is implicated.
func offenders(t model.Team, rl rule) []string {
	var ids []string
	if rl.inv != TeamSize && rl.inv != SupervisionCoverage {
		for _, m := range t.Members {
			if rl.offender(m) {
				ids = append(ids, m.ID)
			}
		}
	}
	if len(ids) == 0 {
		ids = t.IDs()
	}
	return ids
}

// completeness returns the IDs that are missing from or duplicated in teams
// relative to roster.
func completeness(roster []model.Participant, teams []model.Team) []string {
	want := make(map[string]int, len(roster))
	for _, p := range roster {
		want[p.ID]++
	}
	var bad []string
	for _, t := range teams {
		for _, m := range t.Members {
			want[m.ID]--
			if want[m.ID] < 0 {
				bad = append(bad, m.ID)
			}
		}
	}
	for _, p := range roster {
		if want[p.ID] > 0 {
			bad = append(bad, p.ID)
			want[p.ID] = 0
		}
	}
	return bad
}
