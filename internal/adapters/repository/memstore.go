package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
	"github.com/pulsetrack/pulsetrack/pkg/metrics"
)

// Snapshot file permissions.
const snapshotFileMode = 0o600

// MemoryStore keeps sessions in memory, optionally mirrored to a JSON
// snapshot file. The snapshot is read once at construction and written
// only on Flush, so batch jobs can sweep many sessions and persist a
// single time at the end.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	order    []string // insertion order, for stable listings
	path     string
	log      logger.Logger
}

// NewMemoryStore creates a store, loading the snapshot at the
// configured path when one exists. A corrupt or unreadable snapshot is
// logged and ignored rather than blocking service activation.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*model.Session),
		log:      logger.Get().Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.path != "" {
		s.load(ctx)
	}
	metrics.UpdateStoreSessions(len(s.sessions))
	return s
}

// Insert adds a new session.
func (s *MemoryStore) Insert(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, sess.ID)
	}
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	s.sessions[sess.ID] = &sess
	s.order = append(s.order, sess.ID)
	metrics.UpdateStoreSessions(len(s.sessions))
	return nil
}

// Get returns a session by id.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *sess, nil
}

// List returns all sessions in insertion order.
func (s *MemoryStore) List(_ context.Context) []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.sessions[id])
	}
	return out
}

// UpdateScore writes a score and breakdown onto an unscored session.
// The already-scored check happens under the same lock as the write, so
// the backfill sweep and the scoring workers cannot both score one
// session.
func (s *MemoryStore) UpdateScore(_ context.Context, id string, score int, b model.ScoreBreakdown) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if sess.Score != nil {
		return false, nil
	}
	sess.Score = &score
	sess.Breakdown = &b
	sess.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Count returns the number of stored sessions.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Flush writes the snapshot file, replacing it atomically. No-op when
// the store has no backing path.
func (s *MemoryStore) Flush(_ context.Context) error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	list := make([]model.Session, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, *s.sessions[id])
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshot, err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	if err := os.WriteFile(tmp, data, snapshotFileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	return nil
}

// load reads the snapshot into memory. Best-effort: a missing file is
// normal on first run, anything else is logged and skipped.
func (s *MemoryStore) load(ctx context.Context) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(ctx, "snapshot unreadable; starting empty",
				logger.String("path", s.path), logger.Error(err))
		}
		return
	}

	var list []model.Session
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Warn(ctx, "snapshot corrupt; starting empty",
			logger.String("path", s.path), logger.Error(err))
		return
	}

	for i := range list {
		sess := list[i]
		if _, ok := s.sessions[sess.ID]; ok {
			continue
		}
		s.sessions[sess.ID] = &sess
		s.order = append(s.order, sess.ID)
	}
	s.log.Info(ctx, "snapshot loaded",
		logger.String("path", s.path), logger.Int("sessions", len(s.sessions)))
}
