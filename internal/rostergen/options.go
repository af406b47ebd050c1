package rostergen

import "github.com/okian/squad/internal/domain/tier"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed fixes the random source.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithMix sets the tier weights.
func WithMix(m Mix) Option {
	return func(g *Generator) {
		g.mix = m
	}
}

// WithThresholds draws kill counts against custom tier bounds.
func WithThresholds(t tier.Thresholds) Option {
	return func(g *Generator) {
		g.thresholds = t
	}
}

// WithGearRate sets the share of non-supervisors owning specialist gear.
func WithGearRate(rate float64) Option {
	return func(g *Generator) {
		g.gearRate = rate
	}
}

// WithRareTrainingRate sets the share asking for rare-item training.
func WithRareTrainingRate(rate float64) Option {
	return func(g *Generator) {
		g.rareRate = rate
	}
}

// WithMalformedRate sets the share of signups with an unreadable kill count.
func WithMalformedRate(rate float64) Option {
	return func(g *Generator) {
		g.malformedRate = rate
	}
}
