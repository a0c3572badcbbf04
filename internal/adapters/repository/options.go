package repository

import "github.com/pulsetrack/pulsetrack/pkg/logger"

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithSnapshotPath sets the JSON snapshot file the store loads at
// construction and writes on Flush. Empty disables persistence.
func WithSnapshotPath(path string) Option {
	return func(s *MemoryStore) {
		s.path = path
	}
}

// WithLogger sets the store logger.
func WithLogger(log logger.Logger) Option {
	return func(s *MemoryStore) {
		if log != nil {
			s.log = log
		}
	}
}
