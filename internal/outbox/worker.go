package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"verdict/internal/platform/metrics"
)

// Dispatcher delivers one batch of events to the notification transport.
// Delivery must be at-least-once; consumers deduplicate on event ID.
type Dispatcher interface {
	Dispatch(ctx context.Context, events []Event) error
}

// Worker drains pending outbox rows to the dispatcher on a fixed interval.
// Dispatch failures are logged and retried on the next tick; rows are only
// marked dispatched after the transport accepts them.
type Worker struct {
	store     Store
	dispatch  Dispatcher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
	batchSize int
}

func NewWorker(store Store, dispatch Dispatcher, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		store:     store,
		dispatch:  dispatch,
		logger:    logger,
		metrics:   m,
		interval:  time.Second,
		batchSize: 100,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	events, err := w.store.ListPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	w.metrics.SetPending(len(events))
	if len(events) == 0 {
		return nil
	}
	if err := w.dispatch.Dispatch(ctx, events); err != nil {
		w.metrics.IncDispatchFailures()
		return err
	}
	ids := make([]uuid.UUID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	if err := w.store.MarkDispatched(ctx, ids); err != nil {
		return err
	}
	w.metrics.IncDispatched(len(events))
	return nil
}
