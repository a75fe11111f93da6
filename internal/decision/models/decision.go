package models

import (
	"time"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// RiskLevel grades the downside of a decision going wrong.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel validates a raw risk level string.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "risk level must be low, medium, or high")
}

// Decision is the aggregate root for one recorded decision.
//
// Invariants:
//   - ProjectSeq is assigned once at creation and never changes
//   - AuthorID is immutable after construction
//   - Once Status leaves draft, the draft-only fields (Title, ContextSummary,
//     Reasoning, RiskLevel, Confidence) and the signal/option sets are frozen;
//     the state machine enforces this, not storage
//   - Decisions are never physically deleted; archival is a status and
//     IsDeleted is an orthogonal hygiene flag
type Decision struct {
	ID         id.DecisionID `json:"id"`
	ProjectID  id.ProjectID  `json:"project_id"`
	ProjectSeq int64         `json:"project_seq"`

	Title          string    `json:"title"`
	ContextSummary string    `json:"context_summary"`
	Reasoning      string    `json:"reasoning"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Confidence     int       `json:"confidence"`

	Status           Status     `json:"status"`
	RequiresApproval bool       `json:"requires_approval"`
	CommittedAt      *time.Time `json:"committed_at,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`

	AuthorID       id.UserID  `json:"author_id"`
	LastEditedByID *id.UserID `json:"last_edited_by_id,omitempty"`
	CommittedByID  *id.UserID `json:"committed_by_id,omitempty"`
	ApprovedByID   *id.UserID `json:"approved_by_id,omitempty"`

	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDecision constructs a draft decision owned by author. ProjectSeq is
// assigned by the store at persist time.
func NewDecision(decisionID id.DecisionID, projectID id.ProjectID, authorID id.UserID, title string, now time.Time) (*Decision, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "decision title cannot be empty")
	}
	if len(title) > 256 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "decision title must be 256 characters or less")
	}
	return &Decision{
		ID:         decisionID,
		ProjectID:  projectID,
		AuthorID:   authorID,
		Title:      title,
		RiskLevel:  RiskMedium,
		Confidence: 3,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanEdit checks whether actor may mutate draft-only fields right now.
// Returns an invalid-state error outside draft and a forbidden error for
// anyone but the author.
func (d *Decision) CanEdit(actor id.UserID) error {
	if !d.Status.Mutable() {
		return dErrors.New(dErrors.CodeInvalidState, "decision is no longer editable in status "+string(d.Status))
	}
	if d.AuthorID != actor {
		return dErrors.New(dErrors.CodeForbidden, "only the author may edit a draft decision")
	}
	return nil
}

// FieldPatch carries the draft-only field updates of a PATCH. Nil members
// are left untouched.
type FieldPatch struct {
	Title          *string
	ContextSummary *string
	Reasoning      *string
	RiskLevel      *RiskLevel
	Confidence     *int
}

// ApplyPatch mutates the draft-only fields. Call CanEdit first.
func (d *Decision) ApplyPatch(p FieldPatch, actor id.UserID, now time.Time) error {
	if p.Title != nil {
		if *p.Title == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "decision title cannot be empty")
		}
		d.Title = *p.Title
	}
	if p.ContextSummary != nil {
		d.ContextSummary = *p.ContextSummary
	}
	if p.Reasoning != nil {
		d.Reasoning = *p.Reasoning
	}
	if p.RiskLevel != nil {
		if _, err := ParseRiskLevel(string(*p.RiskLevel)); err != nil {
			return err
		}
		d.RiskLevel = *p.RiskLevel
	}
	if p.Confidence != nil {
		if *p.Confidence < 1 || *p.Confidence > 5 {
			return dErrors.New(dErrors.CodeInvariantViolation, "confidence must be between 1 and 5")
		}
		d.Confidence = *p.Confidence
	}
	actorCopy := actor
	d.LastEditedByID = &actorCopy
	d.UpdatedAt = now
	return nil
}

// CanCommit checks the commit transition is available from the current
// status. Commit validation itself runs separately so the caller sees every
// violated rule at once.
func (d *Decision) CanCommit() error {
	_, err := NextStatus(d.Status, MethodCommit, d.RequiresApproval)
	return err
}

// ApplyCommit transitions the decision out of draft. When approval is not
// required the decision lands in committed with commit metadata set; when it
// is, the decision parks in awaiting_approval and the commit metadata is set
// by ApplyApproval. Returns the status the decision landed in.
func (d *Decision) ApplyCommit(actor id.UserID, now time.Time) Status {
	next, _ := NextStatus(d.Status, MethodCommit, d.RequiresApproval)
	d.Status = next
	if next == StatusCommitted {
		actorCopy := actor
		d.CommittedAt = &now
		d.CommittedByID = &actorCopy
	}
	d.UpdatedAt = now
	return next
}

// CanApprove checks the approve transition is available.
func (d *Decision) CanApprove() error {
	_, err := NextStatus(d.Status, MethodApprove, d.RequiresApproval)
	return err
}

// ApplyApproval completes a gated commit: awaiting_approval to committed,
// recording both the approval and the commit metadata.
func (d *Decision) ApplyApproval(approver id.UserID, now time.Time) {
	approverCopy := approver
	d.Status = StatusCommitted
	d.ApprovedAt = &now
	d.ApprovedByID = &approverCopy
	d.CommittedAt = &now
	d.CommittedByID = &approverCopy
	d.UpdatedAt = now
}

// CanReview checks the review transition is available. Reviews of an
// already-reviewed decision are allowed but cause no transition, so this only
// rejects statuses where no review may be recorded at all.
func (d *Decision) CanReview() error {
	if d.Status == StatusCommitted || d.Status == StatusReviewed {
		return nil
	}
	return dErrors.New(dErrors.CodeInvalidState, "cannot review a decision in status "+string(d.Status))
}

// ApplyReviewed flips committed to reviewed. Call only for the first review.
func (d *Decision) ApplyReviewed(now time.Time) {
	d.Status = StatusReviewed
	d.UpdatedAt = now
}

// CanArchive checks the archive transition is available.
func (d *Decision) CanArchive() error {
	_, err := NextStatus(d.Status, MethodArchive, d.RequiresApproval)
	return err
}

// ApplyArchive transitions the decision to archived.
func (d *Decision) ApplyArchive(now time.Time) {
	d.Status = StatusArchived
	d.UpdatedAt = now
}

// VisibleTo reports whether viewer may see this decision, given whether the
// viewer is an active member of the decision's project. Drafts are private to
// their author; everything else is project-visible.
func (d *Decision) VisibleTo(viewer id.UserID, activeMember bool) bool {
	if !activeMember {
		return false
	}
	if d.Status == StatusDraft {
		return d.AuthorID == viewer
	}
	return true
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate shared state outside a transaction.
func (d *Decision) Clone() *Decision {
	c := *d
	if d.CommittedAt != nil {
		t := *d.CommittedAt
		c.CommittedAt = &t
	}
	if d.ApprovedAt != nil {
		t := *d.ApprovedAt
		c.ApprovedAt = &t
	}
	if d.LastEditedByID != nil {
		u := *d.LastEditedByID
		c.LastEditedByID = &u
	}
	if d.CommittedByID != nil {
		u := *d.CommittedByID
		c.CommittedByID = &u
	}
	if d.ApprovedByID != nil {
		u := *d.ApprovedByID
		c.ApprovedByID = &u
	}
	return &c
}
