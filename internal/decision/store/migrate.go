package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied idempotently at startup. The tables map the six engine
// entities one-to-one; edges carry a uniqueness constraint per ordered
// (from, to) pair, and commit records are keyed by decision so a second
// insert for the same decision is a conflict the database itself rejects.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS decisions (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL,
		project_seq BIGINT NOT NULL,
		title TEXT NOT NULL,
		context_summary TEXT NOT NULL DEFAULT '',
		reasoning TEXT NOT NULL DEFAULT '',
		risk_level TEXT NOT NULL,
		confidence INT NOT NULL,
		status TEXT NOT NULL,
		requires_approval BOOLEAN NOT NULL DEFAULT FALSE,
		committed_at TIMESTAMPTZ,
		approved_at TIMESTAMPTZ,
		author_id UUID NOT NULL,
		last_edited_by_id UUID,
		committed_by_id UUID,
		approved_by_id UUID,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (project_id, project_seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_decisions_project ON decisions (project_id) WHERE NOT is_deleted`,
	`CREATE TABLE IF NOT EXISTS signals (
		id UUID PRIMARY KEY,
		decision_id UUID NOT NULL REFERENCES decisions (id),
		metric TEXT NOT NULL,
		movement TEXT NOT NULL,
		period TEXT NOT NULL DEFAULT '',
		comparison TEXT NOT NULL DEFAULT '',
		scope_type TEXT,
		scope_value TEXT NOT NULL DEFAULT '',
		display_text_override TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_decision ON signals (decision_id)`,
	`CREATE TABLE IF NOT EXISTS options (
		id UUID PRIMARY KEY,
		decision_id UUID NOT NULL REFERENCES decisions (id),
		option_text TEXT NOT NULL,
		is_selected BOOLEAN NOT NULL DEFAULT FALSE,
		display_order INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_options_decision ON options (decision_id)`,
	`CREATE TABLE IF NOT EXISTS decision_edges (
		project_id UUID NOT NULL,
		from_id UUID NOT NULL REFERENCES decisions (id),
		to_id UUID NOT NULL REFERENCES decisions (id),
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (from_id, to_id),
		CHECK (from_id <> to_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_project ON decision_edges (project_id)`,
	`CREATE TABLE IF NOT EXISTS decision_state_transitions (
		id UUID PRIMARY KEY,
		decision_id UUID NOT NULL REFERENCES decisions (id),
		from_status TEXT NOT NULL,
		to_status TEXT NOT NULL,
		method TEXT NOT NULL,
		triggered_by_id UUID NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		note TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transitions_decision ON decision_state_transitions (decision_id)`,
	`CREATE TABLE IF NOT EXISTS commit_records (
		decision_id UUID PRIMARY KEY REFERENCES decisions (id),
		committed_by_id UUID NOT NULL,
		committed_at TIMESTAMPTZ NOT NULL,
		validation_snapshot JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id UUID PRIMARY KEY,
		decision_id UUID NOT NULL REFERENCES decisions (id),
		reviewer_id UUID NOT NULL,
		outcome_text TEXT NOT NULL,
		reflection_text TEXT NOT NULL DEFAULT '',
		quality TEXT NOT NULL,
		reviewed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_decision ON reviews (decision_id)`,
}

// Migrate applies the engine schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
