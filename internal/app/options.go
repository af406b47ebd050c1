package service

import (
	"time"

	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued allocation jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistorySize sets how many allocation jobs are kept.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithMaxRosterSize bounds the current roster.
func WithMaxRosterSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxRosterSize = size
		}
	}
}

// WithShutdownTimeout bounds Stop.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithPolicy sets the allocation policy. It is validated by New.
func WithPolicy(p allocation.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
