// Package outbox implements the notification dispatch boundary. Accepted
// state transitions append an event row inside the same atomic unit as the
// transition itself; a background worker drains pending rows to the
// notification topic. The engine only emits, it never consumes.
package outbox

import (
	"time"

	"github.com/google/uuid"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
)

// Event is one transition notification awaiting dispatch.
type Event struct {
	ID         uuid.UUID               `json:"id"`
	Kind       string                  `json:"kind"`
	DecisionID id.DecisionID           `json:"decision_id"`
	ProjectID  id.ProjectID            `json:"project_id"`
	ActorID    id.UserID               `json:"actor_id"`
	FromStatus models.Status           `json:"from_status"`
	ToStatus   models.Status           `json:"to_status"`
	Method     models.TransitionMethod `json:"method"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// Event kinds, one per accepted transition method.
const (
	KindDecisionCommitted = "decision.committed"
	KindDecisionApproved  = "decision.approved"
	KindDecisionReviewed  = "decision.reviewed"
	KindDecisionArchived  = "decision.archived"
	KindDecisionSubmitted = "decision.submitted_for_approval"
)

// FromTransition derives the notification event for an accepted transition.
func FromTransition(t *models.StateTransition, projectID id.ProjectID) Event {
	kind := KindDecisionCommitted
	switch {
	case t.Method == models.MethodCommit && t.ToStatus == models.StatusAwaitingApproval:
		kind = KindDecisionSubmitted
	case t.Method == models.MethodApprove:
		kind = KindDecisionApproved
	case t.Method == models.MethodReview:
		kind = KindDecisionReviewed
	case t.Method == models.MethodArchive:
		kind = KindDecisionArchived
	}
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		DecisionID: t.DecisionID,
		ProjectID:  projectID,
		ActorID:    t.TriggeredByID,
		FromStatus: t.FromStatus,
		ToStatus:   t.ToStatus,
		Method:     t.Method,
		OccurredAt: t.Timestamp,
	}
}
