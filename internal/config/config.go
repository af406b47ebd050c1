// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/tier"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory allocation job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of allocation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps the number of remembered request IDs. Zero disables the cap.
	DedupeSize int `koanf:"dedupe_size"`

	// HistorySize caps the number of stored allocation jobs.
	HistorySize int `koanf:"history_size"`

	// MaxRosterSize caps the number of signups held for the current event.
	MaxRosterSize int `koanf:"max_roster_size"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server and workers.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	Policy PolicyConfig `koanf:"policy"`
}

// PolicyConfig is the file and env form of allocation.Policy.
type PolicyConfig struct {
	NoviceMaxKC                int   `koanf:"novice_max_kc"`
	AssistedMaxKC              int   `koanf:"assisted_max_kc"`
	CompetentMaxKC             int   `koanf:"competent_max_kc"`
	ThreeTeamTotals            []int `koanf:"three_team_totals"`
	MaxNovicesPerTeam          int   `koanf:"max_novices_per_team"`
	StrongRounds               int   `koanf:"strong_rounds"`
	RepairBudgetPerTeam        int   `koanf:"repair_budget_per_team"`
	RepairBudgetFloor          int   `koanf:"repair_budget_floor"`
	ConsolidateUnderSupervised bool  `koanf:"consolidate_under_supervised"`
}

// New creates a Config with defaults.
func New() *Config {
	p := allocation.DefaultPolicy()
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       1024,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      10_000,
		HistorySize:     100,
		MaxRosterSize:   500,
		ShutdownTimeout: 30 * time.Second,
		Policy: PolicyConfig{
			NoviceMaxKC:                p.Thresholds.NoviceMax,
			AssistedMaxKC:              p.Thresholds.AssistedMax,
			CompetentMaxKC:             p.Thresholds.CompetentMax,
			ThreeTeamTotals:            slices.Clone(p.ThreeTeamTotals),
			MaxNovicesPerTeam:          p.MaxNovicesPerTeam,
			StrongRounds:               p.StrongRounds,
			RepairBudgetPerTeam:        p.RepairBudgetPerTeam,
			RepairBudgetFloor:          p.RepairBudgetFloor,
			ConsolidateUnderSupervised: p.ConsolidateUnderSupervised,
		},
	}
}

// AllocationPolicy converts the policy block into the engine's policy.
func (c *Config) AllocationPolicy() allocation.Policy {
	return allocation.Policy{
		Thresholds: tier.Thresholds{
			NoviceMax:    c.Policy.NoviceMaxKC,
			AssistedMax:  c.Policy.AssistedMaxKC,
			CompetentMax: c.Policy.CompetentMaxKC,
		},
		ThreeTeamTotals:            slices.Clone(c.Policy.ThreeTeamTotals),
		MaxNovicesPerTeam:          c.Policy.MaxNovicesPerTeam,
		StrongRounds:               c.Policy.StrongRounds,
		RepairBudgetPerTeam:        c.Policy.RepairBudgetPerTeam,
		RepairBudgetFloor:          c.Policy.RepairBudgetFloor,
		ConsolidateUnderSupervised: c.Policy.ConsolidateUnderSupervised,
	}
}

// Validate checks the config for values the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history_size must be positive", ErrInvalidConfig)
	case c.MaxRosterSize <= 0:
		return fmt.Errorf("%w: max_roster_size must be positive", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if err := c.AllocationPolicy().Validate(); err != nil {
		return fmt.Errorf("%w: policy: %w", ErrInvalidConfig, err)
	}
	return nil
}
