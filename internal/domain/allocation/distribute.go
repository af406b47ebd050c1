package allocation

import (
	"slices"

	"github.com/okian/squad/internal/domain/model"
)

// distribute fills seeded teams toward their target sizes from the pools.
// Whatever is still unplaced afterwards spills into new teams of 4.
func distribute(teams []model.Team, p *pools, pol Policy) []model.Team {
	placeStrong(teams, p, pol.StrongRounds)
	placeAssisted(teams, p)
	placeNovices(teams, p, pol.MaxNovicesPerTeam)
	fillStrong(teams, p)
	return spill(teams, p)
}

func hasRoom(t model.Team) bool { return t.Size() < t.TargetSize }

func supported(t model.Team) bool { return t.Has(model.Participant.ProvidesSupport) }

// placeStrong deals strong supporters round-robin. A team without gear takes
// the first gear holder in the pool.
func placeStrong(teams []model.Team, p *pools, rounds int) {
	for r := 0; r < rounds; r++ {
		for i := range teams {
			if len(p.strong) == 0 {
				return
			}
			if !hasRoom(teams[i]) {
				continue
			}
			pick := 0
			if !teams[i].HasGear() {
				if g := slices.IndexFunc(p.strong, func(m model.Participant) bool { return m.HasSpecialistGear }); g >= 0 {
					pick = g
				}
			}
			teams[i].Members = append(teams[i].Members, p.strong[pick])
			p.strong = slices.Delete(p.strong, pick, pick+1)
		}
	}
}

// placeAssisted puts Novice-assisted members on supported teams. The first
// pass keeps supervisor-led size-4 teams free for novices and keeps gearless
// members off size-3 teams.
func placeAssisted(teams []model.Team, p *pools) {
	var left []model.Participant
	for _, m := range p.assisted {
		first := func(t model.Team) bool {
			switch t.TargetSize {
			case MaxTeamSize:
				return true
			case NoviceHostSize:
				return !t.Has(model.Participant.IsSupervisor)
			default:
				return m.HasSpecialistGear
			}
		}
		second := func(t model.Team) bool { return t.TargetSize != MinTeamSize || m.HasSpecialistGear }
		anywhere := func(model.Team) bool { return true }

		placed := false
		for pass, accept := range []func(model.Team) bool{first, second, anywhere} {
			idx := -1
			for i, t := range teams {
				if !hasRoom(t) || !supported(t) || !accept(t) {
					continue
				}
				if idx < 0 {
					idx = i
				}
				if pass > 0 || !m.WantsSupervisorGroup {
					break
				}
				if t.Has(model.Participant.IsSupervisor) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				teams[idx].Members = append(teams[idx].Members, m)
				placed = true
				break
			}
		}
		if !placed {
			left = append(left, m)
		}
	}
	p.assisted = left
}

// placeNovices deals novices round-robin onto supported teams. The first
// pass only considers legal hosts: size-4 targets led by a supervisor with a
// strong peer and fewer than max novices.
func placeNovices(teams []model.Team, p *pools, maxNovices int) {
	if len(teams) == 0 {
		return
	}
	legalHost := func(t model.Team) bool {
		return t.TargetSize == NoviceHostSize &&
			t.Has(model.Participant.IsSupervisor) &&
			t.Has(model.Participant.IsStrong) &&
			t.Count(model.Participant.IsNovice) < maxNovices
	}

	var left []model.Participant
	cursor := 0
	for _, m := range p.novices {
		idx := -1
		for _, accept := range []func(model.Team) bool{legalHost, supported} {
			for k := range teams {
				i := (cursor + k) % len(teams)
				if hasRoom(teams[i]) && supported(teams[i]) && accept(teams[i]) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				break
			}
		}
		if idx < 0 {
			left = append(left, m)
			continue
		}
		teams[idx].Members = append(teams[idx].Members, m)
		cursor = (idx + 1) % len(teams)
	}
	p.novices = left
}

// fillStrong places the remaining strong supporters on any team with room.
func fillStrong(teams []model.Team, p *pools) {
	for i := range teams {
		for hasRoom(teams[i]) && len(p.strong) > 0 {
			teams[i].Members = append(teams[i].Members, p.strong[0])
			p.strong = p.strong[1:]
		}
	}
}

// spill moves every unplaced participant into new teams of 4.
func spill(teams []model.Team, p *pools) []model.Team {
	var rest []model.Participant
	rest = append(rest, p.strong...)
	rest = append(rest, p.assisted...)
	rest = append(rest, p.novices...)
	p.strong, p.assisted, p.novices = nil, nil, nil

	for chunk := range slices.Chunk(rest, NoviceHostSize) {
		teams = append(teams, model.Team{
			TargetSize: NoviceHostSize,
			Members:    slices.Clone(chunk),
		})
	}
	return teams
}
