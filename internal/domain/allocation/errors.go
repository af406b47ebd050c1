package allocation

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package.
var (
	ErrInfeasible    = errors.New("infeasible allocation")
	ErrInvalidPolicy = errors.New("invalid allocation policy")
)

// Invariant names a rule a partition must satisfy.
type Invariant string

// Invariants in priority order.
const (
	SupervisionCoverage Invariant = "supervision-coverage"
	NoviceSupervision   Invariant = "novice-supervision"
	NoviceIsolation     Invariant = "novice-isolation"
	AssistedSize        Invariant = "assisted-size"
	MixedFive           Invariant = "mixed-five"
	RareTraining        Invariant = "rare-training"
	TeamSize            Invariant = "team-size"
	Completeness        Invariant = "completeness"
)

// Invariants returns every invariant, highest priority first.
func Invariants() []Invariant {
	return []Invariant{
		SupervisionCoverage,
		NoviceSupervision,
		NoviceIsolation,
		AssistedSize,
		MixedFive,
		RareTraining,
		TeamSize,
		Completeness,
	}
}

func (i Invariant) priority() int {
	for p, inv := range Invariants() {
		if inv == i {
			return p
		}
	}
	return len(Invariants())
}

// Violation is one broken invariant on one team. Team is -1 when the
// violation concerns the roster as a whole.
type Violation struct {
	Invariant    Invariant `json:"invariant" yaml:"invariant"`
	Team         int       `json:"team" yaml:"team"`
	Participants []string  `json:"participants" yaml:"participants"`
}

func (v Violation) Error() string {
	if v.Team < 0 {
		return fmt.Sprintf("%s: [%s]", v.Invariant, strings.Join(v.Participants, ", "))
	}
	return fmt.Sprintf("%s: team %d [%s]", v.Invariant, v.Team+1, strings.Join(v.Participants, ", "))
}

// InfeasibleError reports that no partition satisfying every invariant was
// reached. Invariant, Team and Participants describe the highest priority
// violation; Violations lists all of them.
type InfeasibleError struct {
	Invariant    Invariant
	Team         int
	Participants []string
	Violations   []Violation
	cause        error
}

func (e *InfeasibleError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInfeasible.Error())
	b.WriteString(": ")
	b.WriteString(string(e.Invariant))
	if e.Team >= 0 {
		fmt.Fprintf(&b, " on team %d", e.Team+1)
	}
	if len(e.Participants) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Participants, ", "))
	}
	if n := len(e.Violations); n > 1 {
		fmt.Fprintf(&b, "; %d violations", n)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrInfeasible) hold.
func (e *InfeasibleError) Is(target error) bool { return target == ErrInfeasible }

// Unwrap returns the aggregated violations.
func (e *InfeasibleError) Unwrap() error { return e.cause }
