// Package config defines service configuration structures and loading.
//
// Conventions:
// - Fields carry koanf tags matching the env/file key names.
// - New() supplies defaults; Load layers file and env on top.
// - External errors are wrapped via this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scoring queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the import-ID deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingLimit caps ?limit on the ranking endpoints.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// SnapshotPath is where the session store persists its JSON
	// snapshot. Empty disables persistence (in-memory only).
	SnapshotPath string `koanf:"snapshot_path"`
}

// New returns a Config populated with defaults. Import volume is small
// for a single facility, so the queue and worker defaults stay modest.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9180",
		QueueSize:       1024,
		WorkerCount:     4,
		DedupeSize:      50_000,
		MaxRankingLimit: 100,
		SnapshotPath:    "sessions.json",
	}
}
