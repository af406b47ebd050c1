package model

import "time"

// Result is the immutable output of one allocation run.
type Result struct {
	Teams []Team `json:"teams" yaml:"teams"`
	// Unplaced is empty on success.
	Unplaced []Participant `json:"unplaced" yaml:"unplaced"`
	// RepairMoves counts the moves the repairer applied.
	RepairMoves int `json:"repair_moves" yaml:"repair_moves"`
	// Degraded lists IDs of malformed records that were recovered.
	Degraded []string `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// Participants returns the number of placed participants.
func (r Result) Participants() int {
	n := 0
	for _, t := range r.Teams {
		n += t.Size()
	}
	return n
}

// Job is an allocation request flowing through the queue.
type Job struct {
	ID          string
	Roster      []Signup
	SubmittedAt time.Time
}
