// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Tier is the ordinal skill classification of a participant.
// The zero value is Novice so that an unclassified participant never
// receives more trust than it earned.
type Tier int

// Tiers from weakest to strongest.
const (
	Novice Tier = iota
	NoviceAssisted
	Competent
	Expert
	Supervisor
)

var tierNames = [...]string{
	Novice:         "novice",
	NoviceAssisted: "novice-assisted",
	Competent:      "competent",
	Expert:         "expert",
	Supervisor:     "supervisor",
}

// Tiers lists every tier from strongest to weakest.
func Tiers() []Tier {
	return []Tier{Supervisor, Expert, Competent, NoviceAssisted, Novice}
}

// String returns the canonical lower-case name.
func (t Tier) String() string {
	if t < Novice || t > Supervisor {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Rank orders tiers for sorting: 0 is strongest.
func (t Tier) Rank() int {
	return int(Supervisor - t)
}

// AtLeast reports whether t is o or stronger.
func (t Tier) AtLeast(o Tier) bool {
	return t >= o
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTier accepts canonical names plus the aliases used on signup forms.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "supervisor", "mentor":
		return Supervisor, nil
	case "expert", "highly proficient", "highly-proficient":
		return Expert, nil
	case "competent", "proficient":
		return Competent, nil
	case "novice-assisted", "assisted", "learner":
		return NoviceAssisted, nil
	case "novice", "new":
		return Novice, nil
	}
	return Novice, fmt.Errorf("unknown tier %q", s)
}
