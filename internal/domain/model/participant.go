package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Participant is a classified roster entry. Values are immutable for the
// duration of one allocation run.
type Participant struct {
	ID                   string `json:"id" yaml:"id"`
	DisplayName          string `json:"display_name" yaml:"display_name"`
	FavoriteRoles        string `json:"favorite_roles,omitempty" yaml:"favorite_roles,omitempty"`
	KillCount            int    `json:"kill_count" yaml:"kill_count"`
	Tier                 Tier   `json:"tier" yaml:"tier"`
	HasSpecialistGear    bool   `json:"has_specialist_gear" yaml:"has_specialist_gear"`
	WantsRareTraining    bool   `json:"wants_rare_training" yaml:"wants_rare_training"`
	WantsSupervisorGroup bool   `json:"wants_supervisor_group,omitempty" yaml:"wants_supervisor_group,omitempty"`
}

// IsSupervisor reports whether p leads teams.
func (p Participant) IsSupervisor() bool { return p.Tier == Supervisor }

// IsStrong reports whether p is an Expert or Competent member. Supervisors
// are deliberately excluded: a supervisor cannot be its own skilled peer.
func (p Participant) IsStrong() bool { return p.Tier == Expert || p.Tier == Competent }

// ProvidesSupport reports whether p can support weaker members on a team.
func (p Participant) ProvidesSupport() bool { return p.Tier >= Competent }

// IsNovice reports whether p is a plain Novice.
func (p Participant) IsNovice() bool { return p.Tier == Novice }

// IsAssisted reports whether p is Novice-assisted.
func (p Participant) IsAssisted() bool { return p.Tier == NoviceAssisted }

// IsGearlessAssisted reports whether p is Novice-assisted without specialist gear.
func (p Participant) IsGearlessAssisted() bool { return p.IsAssisted() && !p.HasSpecialistGear }

// Signup is the raw record supplied by the roster collaborator.
// SupervisorRole carries role membership from the host platform; together
// with DeclaredTier it is the independent supervisor signal.
type Signup struct {
	ID                   string    `json:"id" yaml:"id"`
	DisplayName          string    `json:"display_name" yaml:"display_name"`
	FavoriteRoles        string    `json:"favorite_roles,omitempty" yaml:"favorite_roles,omitempty"`
	KillCount            KillCount `json:"kill_count" yaml:"kill_count"`
	HasSpecialistGear    bool      `json:"has_specialist_gear" yaml:"has_specialist_gear"`
	DeclaredTier         string    `json:"declared_tier,omitempty" yaml:"declared_tier,omitempty"`
	WantsRareTraining    bool      `json:"wants_rare_training" yaml:"wants_rare_training"`
	WantsSupervisorGroup bool      `json:"wants_supervisor_group,omitempty" yaml:"wants_supervisor_group,omitempty"`
	SupervisorRole       bool      `json:"supervisor_role,omitempty" yaml:"supervisor_role,omitempty"`
}

// KillCount is the kill count exactly as submitted. Forms deliver free
// text, so it is kept raw and parsed during classification.
type KillCount string

// UnmarshalJSON accepts both JSON numbers and strings.
func (k *KillCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*k = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = KillCount(s)
		return nil
	}
	*k = KillCount(b)
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler for YAML scalars.
func (k *KillCount) UnmarshalText(b []byte) error {
	*k = KillCount(strings.TrimSpace(string(b)))
	return nil
}
