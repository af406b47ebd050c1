// Package rostergen builds synthetic signup rosters and drives a running
// service with them.
package rostergen

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/internal/domain/tier"
)

// Mix is the relative weight of each tier in a generated roster.
type Mix struct {
	Supervisor float64 `json:"supervisor" yaml:"supervisor"`
	Expert     float64 `json:"expert" yaml:"expert"`
	Competent  float64 `json:"competent" yaml:"competent"`
	Assisted   float64 `json:"assisted" yaml:"assisted"`
	Novice     float64 `json:"novice" yaml:"novice"`
}

// DefaultMix resembles a typical weekly signup sheet.
func DefaultMix() Mix {
	return Mix{Supervisor: 0.12, Expert: 0.18, Competent: 0.3, Assisted: 0.2, Novice: 0.2}
}

func (m Mix) total() float64 {
	return m.Supervisor + m.Expert + m.Competent + m.Assisted + m.Novice
}

// Generator produces rosters. The same seed always yields the same roster.
type Generator struct {
	seed          uint64
	mix           Mix
	thresholds    tier.Thresholds
	gearRate      float64
	rareRate      float64
	malformedRate float64
}

// New creates a Generator with configuration options.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		seed:       1,
		mix:        DefaultMix(),
		thresholds: tier.DefaultThresholds(),
		gearRate:   0.5,
		rareRate:   0.1,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.mix.total() <= 0 {
		return nil, fmt.Errorf("%w: tier mix has no weight", ErrInvalidOption)
	}
	if err := g.thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	return g, nil
}

var callsigns = []string{
	"Vex", "Kat", "Orrin", "Tamsin", "Brugh", "Ila", "Marrow", "Sable",
	"Quill", "Dace", "Fenn", "Rook", "Lark", "Wren", "Hollis", "Juno",
}

// Generate returns n signups with unique IDs.
func (g *Generator) Generate(n int) []model.Signup {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], g.seed)
	ids := rand.NewChaCha8(key)
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	out := make([]model.Signup, n)
	for i := range out {
		id := uuid.Must(uuid.NewRandomFromReader(ids))
		out[i] = g.signup(rng, i, id.String())
	}
	return out
}

func (g *Generator) signup(rng *rand.Rand, i int, id string) model.Signup {
	name := callsigns[rng.IntN(len(callsigns))] + " " + strconv.Itoa(i+1)
	if rng.IntN(8) == 0 {
		name += " (alt)"
	}
	s := model.Signup{
		ID:                id,
		DisplayName:       name,
		HasSpecialistGear: rng.Float64() < g.gearRate,
		WantsRareTraining: rng.Float64() < g.rareRate,
	}

	t := g.pick(rng)
	kc := g.killCount(rng, t)
	if t == model.Supervisor {
		s.SupervisorRole = true
		s.HasSpecialistGear = true
	}
	if t == model.Novice || t == model.NoviceAssisted {
		s.WantsSupervisorGroup = rng.IntN(4) == 0
	}

	switch {
	case rng.Float64() < g.malformedRate:
		s.KillCount = model.KillCount([]string{"lots", "?", "-3", "idk"}[rng.IntN(4)])
	case kc >= 1000:
		s.KillCount = model.KillCount(strconv.Itoa(kc/1000) + "," + fmt.Sprintf("%03d", kc%1000))
	default:
		s.KillCount = model.KillCount(strconv.Itoa(kc))
	}
	return s
}

func (g *Generator) pick(rng *rand.Rand) model.Tier {
	r := rng.Float64() * g.mix.total()
	for _, w := range []struct {
		t model.Tier
		w float64
	}{
		{model.Supervisor, g.mix.Supervisor},
		{model.Expert, g.mix.Expert},
		{model.Competent, g.mix.Competent},
		{model.NoviceAssisted, g.mix.Assisted},
	} {
		if r < w.w {
			return w.t
		}
		r -= w.w
	}
	return model.Novice
}

// killCount draws a kill count inside the interval of t.
func (g *Generator) killCount(rng *rand.Rand, t model.Tier) int {
	th := g.thresholds
	between := func(lo, hi int) int { return lo + rng.IntN(hi-lo+1) }
	switch t {
	case model.Supervisor:
		return between(th.CompetentMax+1, th.CompetentMax*12)
	case model.Expert:
		return between(th.CompetentMax+1, th.CompetentMax*6)
	case model.Competent:
		return between(th.AssistedMax+1, th.CompetentMax)
	case model.NoviceAssisted:
		return between(th.NoviceMax+1, th.AssistedMax)
	default:
		return between(0, th.NoviceMax)
	}
}
