// Package repository defines the session store interface and errors.
package repository

import (
	"context"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
)

// Store provides read/write access to persisted sessions. All mutation
// is serialized by the implementation; callers never see a partially
// updated session.
type Store interface {
	// Insert adds a new session. Returns ErrDuplicateID when the id is
	// already present.
	Insert(ctx context.Context, s model.Session) error

	// Get returns a session by id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Session, error)

	// List returns every session. The returned slice is the caller's;
	// session contents are shared read-only.
	List(ctx context.Context) []model.Session

	// UpdateScore writes a score and breakdown onto an unscored session.
	// Returns false when the session already carries a score — a score,
	// once set, is immutable.
	UpdateScore(ctx context.Context, id string, score int, b model.ScoreBreakdown) (bool, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int

	// Flush persists the current state. A no-op for stores without a
	// backing file.
	Flush(ctx context.Context) error
}
