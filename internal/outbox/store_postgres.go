package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	txcontext "verdict/pkg/platform/tx"
)

// PostgresStore writes events to the outbox table. Append joins the
// enclosing transaction from context, so the event row commits or rolls back
// together with the transition that produced it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// MigrateOutbox applies the outbox table schema.
func MigrateOutbox(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notification_outbox (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			payload JSONB NOT NULL,
			appended_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			dispatched_at TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("apply outbox schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal outbox event: %w", err)
	}
	q := txcontext.QuerierFor(ctx, s.db)
	if _, err := q.ExecContext(ctx, `
		INSERT INTO notification_outbox (id, kind, payload, appended_at)
		VALUES ($1, $2, $3, $4)
	`, event.ID, event.Kind, payload, event.OccurredAt); err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPending(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM notification_outbox
		WHERE dispatched_at IS NULL ORDER BY appended_at LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		var e Event
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("unmarshal outbox event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkDispatched(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE notification_outbox SET dispatched_at = now() WHERE id = ANY($1)
	`, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark outbox events dispatched: %w", err)
	}
	return nil
}
