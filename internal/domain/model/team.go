package model

// Team is an ordered group of participants with the size it was seeded for.
type Team struct {
	TargetSize int           `json:"target_size" yaml:"target_size"`
	Members    []Participant `json:"members" yaml:"members"`
}

// Size returns the number of members.
func (t Team) Size() int { return len(t.Members) }

// Count returns how many members satisfy pred.
func (t Team) Count(pred func(Participant) bool) int {
	n := 0
	for _, m := range t.Members {
		if pred(m) {
			n++
		}
	}
	return n
}

// Has reports whether any member satisfies pred.
func (t Team) Has(pred func(Participant) bool) bool {
	for _, m := range t.Members {
		if pred(m) {
			return true
		}
	}
	return false
}

// Index returns the position of the member with id, or -1.
func (t Team) Index(id string) int {
	for i, m := range t.Members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// HasGear reports whether a member carries specialist gear.
func (t Team) HasGear() bool {
	return t.Has(func(p Participant) bool { return p.HasSpecialistGear })
}

// IDs returns member IDs in team order.
func (t Team) IDs() []string {
	ids := make([]string, len(t.Members))
	for i, m := range t.Members {
		ids[i] = m.ID
	}
	return ids
}

// Clone returns a deep copy whose member slice can be mutated freely.
func (t Team) Clone() Team {
	members := make([]Participant, len(t.Members))
	copy(members, t.Members)
	return Team{TargetSize: t.TargetSize, Members: members}
}
