package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
	txcontext "verdict/pkg/platform/tx"
)

// PostgresStore persists all six entities in PostgreSQL. Methods join an
// enclosing transaction when one is present in the context, so the service's
// transactional runner controls atomicity without the store knowing.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) q(ctx context.Context) txcontext.Querier {
	return txcontext.QuerierFor(ctx, s.db)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

const decisionColumns = `id, project_id, project_seq, title, context_summary, reasoning,
	risk_level, confidence, status, requires_approval, committed_at, approved_at,
	author_id, last_edited_by_id, committed_by_id, approved_by_id,
	is_deleted, created_at, updated_at`

func (s *PostgresStore) CreateDecision(ctx context.Context, d *models.Decision) error {
	// The project sequence is assigned inside the insert; the caller's
	// project-scoped transaction serializes concurrent creates.
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO decisions (`+decisionColumns+`)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(project_seq), 0) + 1 FROM decisions WHERE project_id = $2),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING project_seq
	`,
		uuid.UUID(d.ID), uuid.UUID(d.ProjectID),
		d.Title, d.ContextSummary, d.Reasoning,
		string(d.RiskLevel), d.Confidence, string(d.Status), d.RequiresApproval,
		d.CommittedAt, d.ApprovedAt,
		uuid.UUID(d.AuthorID), userIDOrNil(d.LastEditedByID), userIDOrNil(d.CommittedByID), userIDOrNil(d.ApprovedByID),
		d.IsDeleted, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ProjectSeq)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create decision: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDecision(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+decisionColumns+` FROM decisions WHERE id = $1 AND NOT is_deleted
	`, uuid.UUID(decisionID))
	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) UpdateDecision(ctx context.Context, d *models.Decision) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE decisions SET
			title = $2, context_summary = $3, reasoning = $4, risk_level = $5,
			confidence = $6, status = $7, requires_approval = $8,
			committed_at = $9, approved_at = $10, last_edited_by_id = $11,
			committed_by_id = $12, approved_by_id = $13, is_deleted = $14, updated_at = $15
		WHERE id = $1
	`,
		uuid.UUID(d.ID), d.Title, d.ContextSummary, d.Reasoning, string(d.RiskLevel),
		d.Confidence, string(d.Status), d.RequiresApproval,
		d.CommittedAt, d.ApprovedAt, userIDOrNil(d.LastEditedByID),
		userIDOrNil(d.CommittedByID), userIDOrNil(d.ApprovedByID), d.IsDeleted, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update decision: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListProjectDecisions(ctx context.Context, projectID id.ProjectID) ([]*models.Decision, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+decisionColumns+` FROM decisions
		WHERE project_id = $1 AND NOT is_deleted
		ORDER BY project_seq
	`, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []*models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*models.Decision, error) {
	var (
		d                                      models.Decision
		decisionUUID, projectUUID, authorUUID  uuid.UUID
		riskLevel, status                      string
		lastEditedBy, committedBy, approvedBy  uuid.NullUUID
		committedAt, approvedAt                sql.NullTime
	)
	err := row.Scan(
		&decisionUUID, &projectUUID, &d.ProjectSeq, &d.Title, &d.ContextSummary, &d.Reasoning,
		&riskLevel, &d.Confidence, &status, &d.RequiresApproval, &committedAt, &approvedAt,
		&authorUUID, &lastEditedBy, &committedBy, &approvedBy,
		&d.IsDeleted, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.ID = id.DecisionID(decisionUUID)
	d.ProjectID = id.ProjectID(projectUUID)
	d.AuthorID = id.UserID(authorUUID)
	d.RiskLevel = models.RiskLevel(riskLevel)
	d.Status = models.Status(status)
	if committedAt.Valid {
		t := committedAt.Time
		d.CommittedAt = &t
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		d.ApprovedAt = &t
	}
	d.LastEditedByID = nullableUserID(lastEditedBy)
	d.CommittedByID = nullableUserID(committedBy)
	d.ApprovedByID = nullableUserID(approvedBy)
	return &d, nil
}

func userIDOrNil(u *id.UserID) any {
	if u == nil {
		return nil
	}
	return uuid.UUID(*u)
}

func nullableUserID(n uuid.NullUUID) *id.UserID {
	if !n.Valid {
		return nil
	}
	u := id.UserID(n.UUID)
	return &u
}

func (s *PostgresStore) ListSignals(ctx context.Context, decisionID id.DecisionID) ([]*models.Signal, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, decision_id, metric, movement, period, comparison,
			scope_type, scope_value, display_text_override, created_at, updated_at
		FROM signals WHERE decision_id = $1 ORDER BY created_at
	`, uuid.UUID(decisionID))
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID) (*models.Signal, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, decision_id, metric, movement, period, comparison,
			scope_type, scope_value, display_text_override, created_at, updated_at
		FROM signals WHERE decision_id = $1 AND id = $2
	`, uuid.UUID(decisionID), uuid.UUID(signalID))
	sig, err := scanSignal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get signal: %w", err)
	}
	return sig, nil
}

func scanSignal(row rowScanner) (*models.Signal, error) {
	var (
		sig                    models.Signal
		sigUUID, decisionUUID  uuid.UUID
		scopeType              sql.NullString
	)
	err := row.Scan(&sigUUID, &decisionUUID, &sig.Metric, &sig.Movement, &sig.Period,
		&sig.Comparison, &scopeType, &sig.ScopeValue, &sig.DisplayTextOverride,
		&sig.CreatedAt, &sig.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sig.ID = id.SignalID(sigUUID)
	sig.DecisionID = id.DecisionID(decisionUUID)
	if scopeType.Valid {
		sig.ScopeType = models.ScopeType(scopeType.String)
	}
	return &sig, nil
}

func (s *PostgresStore) SaveSignal(ctx context.Context, sig *models.Signal) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO signals (id, decision_id, metric, movement, period, comparison,
			scope_type, scope_value, display_text_override, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			metric = EXCLUDED.metric, movement = EXCLUDED.movement,
			period = EXCLUDED.period, comparison = EXCLUDED.comparison,
			scope_type = EXCLUDED.scope_type, scope_value = EXCLUDED.scope_value,
			display_text_override = EXCLUDED.display_text_override,
			updated_at = EXCLUDED.updated_at
	`, uuid.UUID(sig.ID), uuid.UUID(sig.DecisionID), sig.Metric, sig.Movement, sig.Period,
		sig.Comparison, nullString(string(sig.ScopeType)), sig.ScopeValue,
		sig.DisplayTextOverride, sig.CreatedAt, sig.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save signal: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		DELETE FROM signals WHERE decision_id = $1 AND id = $2
	`, uuid.UUID(decisionID), uuid.UUID(signalID))
	if err != nil {
		return fmt.Errorf("delete signal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *PostgresStore) ListOptions(ctx context.Context, decisionID id.DecisionID) ([]*models.Option, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, decision_id, option_text, is_selected, display_order, created_at, updated_at
		FROM options WHERE decision_id = $1 ORDER BY display_order, created_at
	`, uuid.UUID(decisionID))
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var out []*models.Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetOption(ctx context.Context, decisionID id.DecisionID, optionID id.OptionID) (*models.Option, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, decision_id, option_text, is_selected, display_order, created_at, updated_at
		FROM options WHERE decision_id = $1 AND id = $2
	`, uuid.UUID(decisionID), uuid.UUID(optionID))
	o, err := scanOption(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get option: %w", err)
	}
	return o, nil
}

func scanOption(row rowScanner) (*models.Option, error) {
	var (
		o                    models.Option
		oUUID, decisionUUID  uuid.UUID
	)
	err := row.Scan(&oUUID, &decisionUUID, &o.Text, &o.IsSelected, &o.Order, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.ID = id.OptionID(oUUID)
	o.DecisionID = id.DecisionID(decisionUUID)
	return &o, nil
}

func (s *PostgresStore) SaveOption(ctx context.Context, o *models.Option) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO options (id, decision_id, option_text, is_selected, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			option_text = EXCLUDED.option_text, is_selected = EXCLUDED.is_selected,
			display_order = EXCLUDED.display_order, updated_at = EXCLUDED.updated_at
	`, uuid.UUID(o.ID), uuid.UUID(o.DecisionID), o.Text, o.IsSelected, o.Order, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save option: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProjectEdges(ctx context.Context, projectID id.ProjectID) ([]models.Edge, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT project_id, from_id, to_id, created_at
		FROM decision_edges WHERE project_id = $1 ORDER BY created_at
	`, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()
	return collectEdges(rows)
}

func collectEdges(rows *sql.Rows) ([]models.Edge, error) {
	var out []models.Edge
	for rows.Next() {
		var (
			e                          models.Edge
			projectUUID, fromU, toU    uuid.UUID
		)
		if err := rows.Scan(&projectUUID, &fromU, &toU, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.ProjectID = id.ProjectID(projectUUID)
		e.From = id.DecisionID(fromU)
		e.To = id.DecisionID(toU)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListParents(ctx context.Context, decisionID id.DecisionID) ([]id.DecisionID, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT from_id FROM decision_edges WHERE to_id = $1
	`, uuid.UUID(decisionID))
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	defer rows.Close()

	var parents []id.DecisionID
	for rows.Next() {
		var fromU uuid.UUID
		if err := rows.Scan(&fromU); err != nil {
			return nil, fmt.Errorf("scan parent: %w", err)
		}
		parents = append(parents, id.DecisionID(fromU))
	}
	return parents, rows.Err()
}

func (s *PostgresStore) InsertEdge(ctx context.Context, e models.Edge) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO decision_edges (project_id, from_id, to_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(e.ProjectID), uuid.UUID(e.From), uuid.UUID(e.To), e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteEdge(ctx context.Context, projectID id.ProjectID, from, to id.DecisionID) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		DELETE FROM decision_edges WHERE project_id = $1 AND from_id = $2 AND to_id = $3
	`, uuid.UUID(projectID), uuid.UUID(from), uuid.UUID(to))
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendTransition(ctx context.Context, t *models.StateTransition) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO decision_state_transitions
			(id, decision_id, from_status, to_status, method, triggered_by_id, occurred_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, uuid.UUID(t.DecisionID), string(t.FromStatus), string(t.ToStatus),
		string(t.Method), uuid.UUID(t.TriggeredByID), t.Timestamp, t.Note)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTransitions(ctx context.Context, decisionID id.DecisionID) ([]*models.StateTransition, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, decision_id, from_status, to_status, method, triggered_by_id, occurred_at, note
		FROM decision_state_transitions WHERE decision_id = $1 ORDER BY occurred_at
	`, uuid.UUID(decisionID))
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []*models.StateTransition
	for rows.Next() {
		var (
			t                          models.StateTransition
			decisionUUID, triggeredBy  uuid.UUID
			from, to, method           string
		)
		if err := rows.Scan(&t.ID, &decisionUUID, &from, &to, &method, &triggeredBy, &t.Timestamp, &t.Note); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.DecisionID = id.DecisionID(decisionUUID)
		t.FromStatus = models.Status(from)
		t.ToStatus = models.Status(to)
		t.Method = models.TransitionMethod(method)
		t.TriggeredByID = id.UserID(triggeredBy)
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateCommitRecord(ctx context.Context, r *models.CommitRecord) error {
	snapshot, err := json.Marshal(r.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal validation snapshot: %w", err)
	}
	_, err = s.q(ctx).ExecContext(ctx, `
		INSERT INTO commit_records (decision_id, committed_by_id, committed_at, validation_snapshot)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(r.DecisionID), uuid.UUID(r.CommittedByID), r.CommittedAt, snapshot)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create commit record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCommitRecord(ctx context.Context, decisionID id.DecisionID) (*models.CommitRecord, error) {
	var (
		r             models.CommitRecord
		decisionUUID  uuid.UUID
		committedBy   uuid.UUID
		snapshotJSON  []byte
	)
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT decision_id, committed_by_id, committed_at, validation_snapshot
		FROM commit_records WHERE decision_id = $1
	`, uuid.UUID(decisionID)).Scan(&decisionUUID, &committedBy, &r.CommittedAt, &snapshotJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get commit record: %w", err)
	}
	if err := json.Unmarshal(snapshotJSON, &r.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal validation snapshot: %w", err)
	}
	r.DecisionID = id.DecisionID(decisionUUID)
	r.CommittedByID = id.UserID(committedBy)
	return &r, nil
}

func (s *PostgresStore) AddReview(ctx context.Context, r *models.Review) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO reviews (id, decision_id, reviewer_id, outcome_text, reflection_text, quality, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(r.ID), uuid.UUID(r.DecisionID), uuid.UUID(r.ReviewerID),
		r.OutcomeText, r.ReflectionText, string(r.Quality), r.ReviewedAt)
	if err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, decisionID id.DecisionID) ([]*models.Review, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, decision_id, reviewer_id, outcome_text, reflection_text, quality, reviewed_at
		FROM reviews WHERE decision_id = $1 ORDER BY reviewed_at
	`, uuid.UUID(decisionID))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []*models.Review
	for rows.Next() {
		var (
			r                              models.Review
			reviewUUID, decUUID, reviewer  uuid.UUID
			quality                        string
		)
		if err := rows.Scan(&reviewUUID, &decUUID, &reviewer, &r.OutcomeText, &r.ReflectionText, &quality, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.ID = id.ReviewID(reviewUUID)
		r.DecisionID = id.DecisionID(decUUID)
		r.ReviewerID = id.UserID(reviewer)
		r.Quality = models.ReviewQuality(quality)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountReviews(ctx context.Context, decisionID id.DecisionID) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reviews WHERE decision_id = $1
	`, uuid.UUID(decisionID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// ProjectGraph reads nodes and edges inside one read-only transaction so the
// snapshot is never torn by a concurrent edge diff.
func (s *PostgresStore) ProjectGraph(ctx context.Context, projectID id.ProjectID) (*models.Graph, error) {
	if _, inTx := txcontext.From(ctx); inTx {
		return s.projectGraph(ctx, projectID)
	}
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin graph read: %w", err)
	}
	defer func() { _ = dbTx.Rollback() }()

	g, err := s.projectGraph(txcontext.WithTx(ctx, dbTx), projectID)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit graph read: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) projectGraph(ctx context.Context, projectID id.ProjectID) (*models.Graph, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, project_seq, title, status FROM decisions
		WHERE project_id = $1 AND NOT is_deleted ORDER BY project_seq
	`, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("graph nodes: %w", err)
	}
	defer rows.Close()

	g := &models.Graph{}
	for rows.Next() {
		var (
			node     models.GraphNode
			nodeUUID uuid.UUID
			status   string
		)
		if err := rows.Scan(&nodeUUID, &node.ProjectSeq, &node.Title, &status); err != nil {
			return nil, fmt.Errorf("scan graph node: %w", err)
		}
		node.ID = id.DecisionID(nodeUUID)
		node.Status = models.Status(status)
		g.Nodes = append(g.Nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edges, err := s.ListProjectEdges(ctx, projectID)
	if err != nil {
		return nil, err
	}
	g.Edges = edges
	return g, nil
}
