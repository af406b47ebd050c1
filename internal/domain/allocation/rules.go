package allocation

import (
	"github.com/okian/squad/internal/domain/model"
)

// Weights of the violation score. One hard unit outweighs the soft units of
// any pair of teams.
const (
	hardWeight = 100
	softWeight = 1
)

// census counts the members of a team that the rules look at.
type census struct {
	size             int
	supervisors      int
	strong           int
	novices          int
	assisted         int
	gearlessAssisted int
	rare             int
}

func count(t model.Team) census {
	c := census{size: t.Size()}
	for _, m := range t.Members {
		switch {
		case m.IsSupervisor():
			c.supervisors++
		case m.IsStrong():
			c.strong++
		case m.IsAssisted():
			c.assisted++
			if !m.HasSpecialistGear {
				c.gearlessAssisted++
			}
		default:
			c.novices++
		}
		if m.WantsRareTraining {
			c.rare++
		}
	}
	return c
}

// rule is one invariant together with the hints the repairer uses to order
// its candidate moves.
type rule struct {
	inv Invariant
	// broken reports a hard violation.
	broken func(c census, pol Policy) bool
	// offender marks the members that should move first.
	offender func(m model.Participant) bool
	// rank orders target teams; lower is tried first.
	rank func(t model.Team, c census, pol Policy) int
}

var rules = []rule{
	{
		inv: SupervisionCoverage,
		broken: func(c census, _ Policy) bool {
			return c.supervisors > 0 && c.strong == 0
		},
		offender: model.Participant.IsSupervisor,
		rank: func(_ model.Team, c census, _ Policy) int {
			return boolRank(c.strong > 1)
		},
	},
	{
		inv: NoviceSupervision,
		broken: func(c census, _ Policy) bool {
			return c.novices > 0 && (c.supervisors == 0 || c.strong == 0)
		},
		offender: model.Participant.IsNovice,
		rank:     noviceHostRank,
	},
	{
		inv: NoviceIsolation,
		broken: func(c census, pol Policy) bool {
			return c.novices > 0 && (c.size != NoviceHostSize || c.novices > pol.MaxNovicesPerTeam)
		},
		offender: model.Participant.IsNovice,
		rank:     noviceHostRank,
	},
	{
		inv: AssistedSize,
		broken: func(c census, _ Policy) bool {
			return c.size == MinTeamSize && c.gearlessAssisted > 0
		},
		offender: model.Participant.IsGearlessAssisted,
		rank: func(_ model.Team, c census, _ Policy) int {
			return boolRank(c.size == NoviceHostSize && c.novices == 0)
		},
	},
	{
		inv: MixedFive,
		broken: func(c census, _ Policy) bool {
			return c.size == MaxTeamSize && c.novices > 0 && c.assisted > 0
		},
		offender: model.Participant.IsNovice,
		rank: func(_ model.Team, c census, _ Policy) int {
			return boolRank(c.size < MaxTeamSize && c.novices == 0)
		},
	},
	{
		inv: RareTraining,
		broken: func(c census, _ Policy) bool {
			return c.rare > 1
		},
		offender: func(m model.Participant) bool { return m.WantsRareTraining },
		rank: func(_ model.Team, c census, _ Policy) int {
			return boolRank(c.rare == 0 && c.size < MaxTeamSize)
		},
	},
	{
		inv: TeamSize,
		broken: func(c census, _ Policy) bool {
			return c.size < MinTeamSize || c.size > MaxTeamSize
		},
		offender: func(m model.Participant) bool { return !m.IsNovice() },
		rank: func(_ model.Team, c census, _ Policy) int {
			return boolRank(c.size == MaxTeamSize)
		},
	},
}

func boolRank(preferred bool) int {
	if preferred {
		return 0
	}
	return 1
}

// noviceHostRank prefers legal novice hosts, then size-3 teams that an
// exchange can turn into one.
func noviceHostRank(_ model.Team, c census, pol Policy) int {
	switch {
	case c.size == NoviceHostSize && c.supervisors > 0 && c.strong > 0 && c.novices < pol.MaxNovicesPerTeam:
		return 0
	case c.size == MinTeamSize:
		return 1
	default:
		return 2
	}
}

// unsanctionedThree reports a size-3 team that was not planned as one.
func unsanctionedThree(t model.Team) bool {
	return t.Size() == MinTeamSize && t.TargetSize != MinTeamSize
}

// needsRepair reports whether r should look at t: a hard violation, or for
// the team-size rule an unplanned size-3 team that may be topped up.
func (r rule) needsRepair(t model.Team, c census, pol Policy) bool {
	if r.broken(c, pol) {
		return true
	}
	return r.inv == TeamSize && unsanctionedThree(t)
}

// score is the weighted violation score of one team. Empty teams score 0
// and are pruned.
func score(t model.Team, pol Policy) int {
	c := count(t)
	if c.size == 0 {
		return 0
	}

	hard := 0
	switch {
	case c.size < MinTeamSize:
		hard += MinTeamSize - c.size
	case c.size > MaxTeamSize:
		hard += c.size - MaxTeamSize
	}
	if c.supervisors > 0 && c.strong == 0 {
		hard++
	}
	if c.novices > 0 {
		if c.size != NoviceHostSize {
			hard += c.novices
		}
		if c.supervisors == 0 {
			hard++
		}
		if c.strong == 0 {
			hard++
		}
		if c.novices > pol.MaxNovicesPerTeam {
			hard += c.novices - pol.MaxNovicesPerTeam
		}
	}
	if c.size == MinTeamSize {
		hard += c.gearlessAssisted
	}
	if c.size == MaxTeamSize && c.novices > 0 && c.assisted > 0 {
		hard++
	}
	if c.rare > 1 {
		hard += c.rare - 1
	}

	soft := 0
	if unsanctionedThree(t) {
		soft++
	}
	return hard*hardWeight + soft*softWeight
}
