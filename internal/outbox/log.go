package outbox

import (
	"context"
	"log/slog"
)

// LogDispatcher logs events instead of publishing them. Used when no
// brokers are configured, so development runs still drain the outbox.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, events []Event) error {
	for _, e := range events {
		d.logger.InfoContext(ctx, "notification event",
			"event_id", e.ID.String(),
			"kind", e.Kind,
			"decision_id", e.DecisionID.String(),
			"project_id", e.ProjectID.String(),
		)
	}
	return nil
}
