// Package dedupe tracks already-seen import IDs so a device export
// submitted twice cannot create two sessions.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen import IDs for at-most-once ingestion.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID so a submission can be retried. Used when
	// an import was marked seen but failed before it was persisted.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// Default bound on remembered IDs.
const defaultMaxSize = 50_000

// inMemoryDeduper is a map plus an insertion-ordered ring: when the
// bound is reached the oldest remembered ID is forgotten first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	oldest  int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxSize < 0 {
		d.maxSize = 0
	}
	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = make([]string, 0, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if len(d.seen) >= d.maxSize && d.maxSize > 0 {
		evict := d.order[d.oldest]
		delete(d.seen, evict)
		d.order[d.oldest] = id
		d.oldest = (d.oldest + 1) % len(d.order)
	} else {
		d.order = append(d.order, id)
	}
	d.seen[id] = struct{}{}
	d.size.Store(int64(len(d.seen)))
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// The ring slot stays occupied until eviction reaches it; only the
	// membership set matters for duplicate checks.
	delete(d.seen, id)
	d.size.Store(int64(len(d.seen)))
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
