// Package worker runs the asynchronous scoring pipeline: jobs come off
// the queue, the referenced session is loaded, scored, and written back.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/pulsetrack/pulsetrack/internal/adapters/mq/queue"
	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/internal/domain/scoring"
	"github.com/pulsetrack/pulsetrack/pkg/logger"
	"github.com/pulsetrack/pulsetrack/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Repository is the slice of the session store workers need.
type Repository interface {
	Get(ctx context.Context, id string) (model.Session, error)
	UpdateScore(ctx context.Context, id string, score int, b model.ScoreBreakdown) (bool, error)
	Flush(ctx context.Context) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes scoring jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker after draining in-flight work.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker against an in-process queue and store.
type InMemoryWorker struct {
	queue Queue
	repo  Repository
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, repo Repository, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		repo:     repo,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob scores one session. Sessions that are not eligible, or
// were already scored by the backfill sweep, are skipped without error.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	sess, err := w.repo.Get(ctx, job.SessionID)
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("load session %s: %w", job.SessionID, err)
	}

	if !sess.Scoreable() || sess.Score != nil {
		return nil
	}

	scoreStart := time.Now()
	breakdown := scoring.Score(*sess.Metrics, sess.ShocksDelivered)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))

	updated, err := w.repo.UpdateScore(ctx, sess.ID, breakdown.Score, breakdown)
	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "score write failed",
			logger.String("sessionID", sess.ID),
			logger.Error(err),
		)
		return fmt.Errorf("score write for session %s: %w", sess.ID, err)
	}
	if !updated {
		// Lost the race to the backfill sweep. Nothing to persist.
		return nil
	}

	metrics.RecordSessionScored()
	if err := w.repo.Flush(ctx); err != nil {
		w.logger.Warn(ctx, "snapshot flush failed",
			logger.String("sessionID", sess.ID),
			logger.Error(err),
		)
	}

	w.logger.Debug(ctx, "session scored",
		logger.String("sessionID", sess.ID),
		logger.Int("score", breakdown.Score),
		logger.String("band", string(breakdown.ColorBand)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, repo Repository) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			repo,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
