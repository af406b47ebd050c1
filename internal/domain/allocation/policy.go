package allocation

import (
	"fmt"

	"github.com/okian/squad/internal/domain/tier"
)

// Team size bounds. The invariants are defined over these exact sizes.
const (
	MinTeamSize    = 3
	NoviceHostSize = 4
	MaxTeamSize    = 5
)

// Policy is the configuration surface of the engine. It is passed in at
// construction; the algorithm holds no other defaults.
type Policy struct {
	Thresholds tier.Thresholds `json:"thresholds" yaml:"thresholds"`
	// ThreeTeamTotals are the roster sizes allowed to use size-3 teams when
	// no split into sizes 4 and 5 exists.
	ThreeTeamTotals   []int `json:"three_team_totals" yaml:"three_team_totals"`
	MaxNovicesPerTeam int   `json:"max_novices_per_team" yaml:"max_novices_per_team"`
	// StrongRounds is the number of round-robin passes of strong supporters.
	StrongRounds        int `json:"strong_rounds" yaml:"strong_rounds"`
	RepairBudgetPerTeam int `json:"repair_budget_per_team" yaml:"repair_budget_per_team"`
	RepairBudgetFloor   int `json:"repair_budget_floor" yaml:"repair_budget_floor"`
	// ConsolidateUnderSupervised shrinks the team count to the number of
	// supervisors when there are fewer supervisors than planned teams.
	ConsolidateUnderSupervised bool `json:"consolidate_under_supervised" yaml:"consolidate_under_supervised"`
}

// DefaultPolicy returns the policy used by the weekly event.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds:          tier.DefaultThresholds(),
		ThreeTeamTotals:     []int{3, 6, 7, 11},
		MaxNovicesPerTeam:   2,
		StrongRounds:        2,
		RepairBudgetPerTeam: 8,
		RepairBudgetFloor:   16,
	}
}

// Validate reports the first inconsistency in p.
func (p Policy) Validate() error {
	if err := p.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}
	for _, n := range p.ThreeTeamTotals {
		if n < MinTeamSize {
			return fmt.Errorf("%w: three-team total %d is below %d", ErrInvalidPolicy, n, MinTeamSize)
		}
	}
	if p.MaxNovicesPerTeam < 1 || p.MaxNovicesPerTeam > NoviceHostSize-2 {
		return fmt.Errorf("%w: max_novices_per_team must be within [1,%d], got %d", ErrInvalidPolicy, NoviceHostSize-2, p.MaxNovicesPerTeam)
	}
	if p.StrongRounds < 0 {
		return fmt.Errorf("%w: strong_rounds is negative", ErrInvalidPolicy)
	}
	if p.RepairBudgetPerTeam < 1 || p.RepairBudgetFloor < 1 {
		return fmt.Errorf("%w: repair budgets must be positive", ErrInvalidPolicy)
	}
	return nil
}

func (p Policy) repairBudget(teams int) int {
	return max(p.RepairBudgetFloor, p.RepairBudgetPerTeam*teams)
}

func (p Policy) allowsThrees(n int) bool {
	for _, t := range p.ThreeTeamTotals {
		if t == n {
			return true
		}
	}
	return false
}
