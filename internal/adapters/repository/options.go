package repository

// RosterOption applies a configuration option to the InMemoryRoster.
type RosterOption func(*InMemoryRoster)

// WithMaxRosterSize bounds the number of signups. Zero or less means
// unbounded.
func WithMaxRosterSize(n int) RosterOption {
	return func(r *InMemoryRoster) {
		r.maxSize = n
	}
}

// ResultOption applies a configuration option to the InMemoryResults.
type ResultOption func(*InMemoryResults)

// WithHistorySize sets how many jobs are kept before the oldest is evicted.
func WithHistorySize(n int) ResultOption {
	return func(r *InMemoryResults) {
		if n > 0 {
			r.historySize = n
		}
	}
}
