package photo

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/inventory/internal/platform/metrics"
)

const drainTimeout = 5 * time.Second

// Janitor deletes photos that no longer belong to any item. Deletion happens on
// its own goroutine so request handlers never wait for it.
type Janitor struct {
	store   Store
	queue   chan Ref
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewJanitor creates a Janitor with a queue of the given size.
func NewJanitor(store Store, logger *slog.Logger, m *metrics.Metrics, buffer int) *Janitor {
	if buffer <= 0 {
		buffer = 1
	}
	return &Janitor{
		store:   store,
		queue:   make(chan Ref, buffer),
		logger:  logger.With("component", "photo-janitor"),
		metrics: m,
	}
}

// Enqueue schedules ref for deletion without blocking. When the queue is full
// the photo is left behind as an orphan and false is returned.
func (j *Janitor) Enqueue(ref Ref) bool {
	if ref.IsZero() {
		return true
	}
	select {
	case j.queue <- ref:
		return true
	default:
		j.logger.Warn("Reclaim queue is full, leaving photo in place", "photo", ref)
		return false
	}
}

// Run deletes queued photos until ctx is done, then drains what is left.
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.Info("Photo janitor started")
	// deletions already dequeued finish even if ctx is cancelled meanwhile
	work := context.WithoutCancel(ctx)
	for {
		select {
		case ref := <-j.queue:
			j.reclaim(work, ref)
		case <-ctx.Done():
			j.drain(work)
			j.logger.Info("Photo janitor stopped")
			return nil
		}
	}
}

func (j *Janitor) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	for {
		select {
		case ref := <-j.queue:
			j.reclaim(ctx, ref)
		default:
			return
		}
	}
}

func (j *Janitor) reclaim(ctx context.Context, ref Ref) {
	err := j.store.Delete(ctx, ref)
	j.metrics.PhotoReclaimed(err)
	if err != nil {
		j.logger.Error("Failed to reclaim photo", "photo", ref, "error", err)
		return
	}
	j.logger.Debug("Photo reclaimed", "photo", ref)
}
