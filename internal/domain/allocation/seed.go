package allocation

import (
	"sort"

	"github.com/okian/squad/internal/domain/model"
)

// pools holds the participants not yet placed, each in placement order.
type pools struct {
	supervisors []model.Participant
	strong      []model.Participant
	assisted    []model.Participant
	novices     []model.Participant
}

// sortRoster orders participants by tier, gear holders first, then kill
// count descending. The sort is stable so input order breaks ties.
func sortRoster(ps []model.Participant) []model.Participant {
	out := make([]model.Participant, len(ps))
	copy(out, ps)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Tier.Rank() != b.Tier.Rank() {
			return a.Tier.Rank() < b.Tier.Rank()
		}
		if a.HasSpecialistGear != b.HasSpecialistGear {
			return a.HasSpecialistGear
		}
		return a.KillCount > b.KillCount
	})
	return out
}

func splitPools(sorted []model.Participant) *pools {
	p := &pools{}
	for _, m := range sorted {
		switch {
		case m.IsSupervisor():
			p.supervisors = append(p.supervisors, m)
		case m.IsStrong():
			p.strong = append(p.strong, m)
		case m.IsAssisted():
			p.assisted = append(p.assisted, m)
		default:
			p.novices = append(p.novices, m)
		}
	}
	return p
}

// seed creates one team per planned size and places its anchor: a
// supervisor while any remain, otherwise the strongest participant left.
// Surplus supervisors queue behind the strong pool.
func seed(plan []int, p *pools) []model.Team {
	teams := make([]model.Team, len(plan))
	for i, size := range plan {
		teams[i] = model.Team{TargetSize: size, Members: make([]model.Participant, 0, size)}
		if anchor, ok := p.takeAnchor(); ok {
			teams[i].Members = append(teams[i].Members, anchor)
		}
	}
	p.strong = append(p.strong, p.supervisors...)
	p.supervisors = nil
	return teams
}

func (p *pools) takeAnchor() (model.Participant, bool) {
	for _, pool := range []*[]model.Participant{&p.supervisors, &p.strong, &p.assisted, &p.novices} {
		if len(*pool) > 0 {
			anchor := (*pool)[0]
			*pool = (*pool)[1:]
			return anchor, true
		}
	}
	return model.Participant{}, false
}
