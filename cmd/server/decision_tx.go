package main

import (
	"context"
	"database/sql"
	"encoding/binary"
	"time"

	"github.com/google/uuid"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/tx"
)

const defaultDecisionTxTimeout = 5 * time.Second

// decisionPostgresTx is the production transactional boundary: one SQL
// transaction per atomic unit, serialized per project with an advisory lock
// so concurrent writers to the same project queue instead of interleaving.
type decisionPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newDecisionPostgresTx(db *sql.DB) *decisionPostgresTx {
	return &decisionPostgresTx{db: db}
}

func (t *decisionPostgresTx) RunInProjectTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultDecisionTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	// Advisory lock keyed by project; released automatically at commit or
	// rollback.
	if _, err := sqlTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", projectLockKey(projectID)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire project lock")
	}

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}

// projectLockKey folds the project UUID into the signed 64-bit key space
// pg_advisory_xact_lock expects.
func projectLockKey(projectID id.ProjectID) int64 {
	raw := uuid.UUID(projectID)
	return int64(binary.BigEndian.Uint64(raw[:8]) ^ binary.BigEndian.Uint64(raw[8:]))
}
