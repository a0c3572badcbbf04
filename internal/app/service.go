// Package service provides the core business service that implements
// the dependencies required by the HTTP API: session intake, async
// scoring, rankings, and the startup backfill sweep.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	jobqueue "github.com/pulsetrack/pulsetrack/internal/adapters/mq/queue"
	workerpool "github.com/pulsetrack/pulsetrack/internal/adapters/mq/worker"
	"github.com/pulsetrack/pulsetrack/internal/adapters/repository"
	"github.com/pulsetrack/pulsetrack/internal/domain/dedupe"
	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/internal/domain/rankings"
	"github.com/pulsetrack/pulsetrack/internal/domain/scoring"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
	"github.com/pulsetrack/pulsetrack/pkg/metrics"
)

// Service wires the session store, dedupe cache, scoring queue and
// worker pool into the operations the HTTP API exposes.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	deduper  dedupe.Deduper
	jobQueue jobqueue.Queue
	pool     *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	snapshotPath    string
	maxRankingLimit int

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       1024,
		dedupeSize:      50000,
		maxRankingLimit: 100,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the components and runs the backfill sweep so that
// sessions left unscored by a previous run are caught up before the
// service accepts traffic.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting quality tracking service...")

	s.store = repository.NewMemoryStore(ctx,
		repository.WithSnapshotPath(s.snapshotPath),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.store)
	s.pool.Start(ctx)

	updated, err := s.backfillLocked(ctx)
	if err != nil {
		return fmt.Errorf("startup backfill: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "quality tracking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("storedSessions", s.store.Count(ctx)),
		logger.Int("backfilled", updated),
	)
	return nil
}

// Stop gracefully shuts down the service, flushing the store last so
// nothing scored during drain is lost.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping quality tracking service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	if s.store != nil {
		if err := s.store.Flush(ctx); err != nil {
			s.logger.Warn(ctx, "final snapshot flush failed", logger.Error(err))
		}
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "quality tracking service stopped")
}

// SeenAndRecord atomically checks whether an import id was seen and
// records it if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordImportDuplicate()
	}
	return seen
}

// Unrecord removes an import id from the seen list so the submission
// can be retried after a failed insert.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// SubmitSession stores a session and hands it to the scoring pipeline.
// When the queue rejects the job the session stays persisted and is
// picked up by the next backfill sweep, so intake never fails on
// backpressure alone.
func (s *Service) SubmitSession(ctx context.Context, sess model.Session) error {
	if err := s.store.Insert(ctx, sess); err != nil {
		return err
	}
	metrics.RecordSessionImported()

	if sess.Scoreable() && sess.Score == nil {
		if !s.jobQueue.Enqueue(ctx, jobqueue.Job{SessionID: sess.ID}) {
			s.logger.Warn(ctx, "scoring queue full; deferring to backfill",
				logger.String("sessionID", sess.ID),
			)
		}
	}
	return nil
}

// Session returns a stored session by id.
func (s *Service) Session(ctx context.Context, id string) (model.Session, error) {
	return s.store.Get(ctx, id)
}

// Sessions returns every stored session in insertion order.
func (s *Service) Sessions(ctx context.Context) []model.Session {
	return s.store.List(ctx)
}

// ProviderRankings returns ranked per-provider stats. typeFilter limits
// the raw-metric averages to one session type; empty means all.
func (s *Service) ProviderRankings(ctx context.Context, typeFilter model.SessionType, limit int) []*rankings.Stats {
	return s.rank(ctx, rankings.ByProvider, typeFilter, limit)
}

// TeamRankings returns ranked per-team stats.
func (s *Service) TeamRankings(ctx context.Context, typeFilter model.SessionType, limit int) []*rankings.Stats {
	return s.rank(ctx, rankings.ByTeam, typeFilter, limit)
}

func (s *Service) rank(ctx context.Context, keyFn rankings.KeyFunc, typeFilter model.SessionType, limit int) []*rankings.Stats {
	sessions := s.store.List(ctx)
	if typeFilter != "" {
		filtered := sessions[:0:0]
		for _, sess := range sessions {
			if sess.Type == typeFilter {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	byKey := rankings.Aggregate(sessions, keyFn)
	rows := make([]*rankings.Stats, 0, len(byKey))
	for _, r := range byKey {
		rows = append(rows, r)
	}
	ranked := rankings.Rank(rows)

	if limit <= 0 || limit > s.maxRankingLimit {
		limit = s.maxRankingLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// DashboardKPIs returns the dashboard summary computed over all
// stored sessions.
func (s *Service) DashboardKPIs(ctx context.Context) rankings.KPIs {
	return rankings.DashboardKPIs(s.store.List(ctx))
}

// Backfill scores every stored session that is eligible but unscored.
// It is idempotent: a second sweep over the same data updates nothing.
// The snapshot is flushed once at the end, and only when something
// changed.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backfillLocked(ctx)
}

func (s *Service) backfillLocked(ctx context.Context) (int, error) {
	updated := 0
	for _, sess := range s.store.List(ctx) {
		if !sess.Scoreable() || sess.Score != nil {
			continue
		}

		breakdown := scoring.Score(*sess.Metrics, sess.ShocksDelivered)
		wrote, err := s.store.UpdateScore(ctx, sess.ID, breakdown.Score, breakdown)
		if err != nil {
			return updated, fmt.Errorf("backfill session %s: %w", sess.ID, err)
		}
		if wrote {
			updated++
			metrics.RecordSessionScored()
		}
	}

	metrics.RecordBackfillRun(updated)
	if updated > 0 {
		if err := s.store.Flush(ctx); err != nil {
			return updated, fmt.Errorf("backfill flush: %w", err)
		}
	}
	if s.logger != nil {
		s.logger.Info(ctx, "backfill sweep complete", logger.Int("updated", updated))
	}
	return updated, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		totalSessions := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalSessions"] = totalSessions

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreSessions(totalSessions)
	}

	return stats
}

// Size returns the current number of entries in the dedupe cache.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
