package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/core/ports"
	"github.com/repairdesk/dashboard-state/internal/metrics"
)

const channelBuffer = 64

// ErrWriterClosed is returned by Save after Close.
var ErrWriterClosed = errors.New("snapshot writer closed")

type writeRequest struct {
	snapshot domain.SessionSnapshot
	clear    bool
	flushed  chan struct{}
}

// SnapshotWriter is a write-behind ports.SessionRepository. Writes are handed
// to a single worker, so they reach the backend in call order and a store
// mutation never waits on a remote round trip. Loads go straight through.
type SnapshotWriter struct {
	backend ports.SessionRepository
	ch      chan writeRequest
	log     zerolog.Logger

	mu      sync.RWMutex
	started bool
	closed  bool
	done    chan struct{}
}

var _ ports.SessionRepository = (*SnapshotWriter)(nil)

// NewSnapshotWriter wraps backend. Call Start before the first Save.
func NewSnapshotWriter(backend ports.SessionRepository, log zerolog.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		backend: backend,
		ch:      make(chan writeRequest, channelBuffer),
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches the worker. It exits once Close has drained the queue.
// ctx only bounds individual backend writes. Calls after the first, or after
// Close, do nothing.
func (w *SnapshotWriter) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	go w.run(ctx)
}

func (w *SnapshotWriter) Load(ctx context.Context) (*domain.SessionSnapshot, error) {
	return w.backend.Load(ctx)
}

// Save enqueues the snapshot. It blocks only when the queue is full.
func (w *SnapshotWriter) Save(_ context.Context, snapshot domain.SessionSnapshot) error {
	return w.enqueue(writeRequest{snapshot: snapshot})
}

// Clear enqueues removal of the stored snapshot behind any pending writes.
func (w *SnapshotWriter) Clear(_ context.Context) error {
	return w.enqueue(writeRequest{clear: true})
}

// Flush blocks until every write enqueued before the call reached the backend.
func (w *SnapshotWriter) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	if err := w.enqueue(writeRequest{flushed: flushed}); err != nil {
		return err
	}
	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for the queue to drain. A writer
// that was never started drains on the calling goroutine.
func (w *SnapshotWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.ch)
	started := w.started
	w.mu.Unlock()

	if !started {
		w.run(context.Background())
	}
	<-w.done
}

func (w *SnapshotWriter) enqueue(req writeRequest) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWriterClosed
	}
	w.ch <- req
	metrics.SnapshotQueueDepth.Set(float64(len(w.ch)))
	return nil
}

func (w *SnapshotWriter) run(ctx context.Context) {
	defer close(w.done)
	for req := range w.ch {
		metrics.SnapshotQueueDepth.Set(float64(len(w.ch)))
		switch {
		case req.flushed != nil:
			close(req.flushed)
		case req.clear:
			if err := w.backend.Clear(ctx); err != nil {
				w.log.Error().Err(err).Msg("session clear failed")
			}
		default:
			if err := w.backend.Save(ctx, req.snapshot); err != nil {
				w.log.Error().Err(err).
					Bool("authenticated", req.snapshot.IsAuthenticated).
					Msg("session write failed")
			}
		}
	}
}
