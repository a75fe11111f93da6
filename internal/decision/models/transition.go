package models

import (
	"time"

	"github.com/google/uuid"

	id "verdict/pkg/domain"
)

// StateTransition is one append-only audit row recording an accepted status
// transition. Rows are never updated or deleted.
type StateTransition struct {
	ID            uuid.UUID        `json:"id"`
	DecisionID    id.DecisionID    `json:"decision_id"`
	FromStatus    Status           `json:"from_status"`
	ToStatus      Status           `json:"to_status"`
	Method        TransitionMethod `json:"method"`
	TriggeredByID id.UserID        `json:"triggered_by_id"`
	Timestamp     time.Time        `json:"timestamp"`
	Note          string           `json:"note,omitempty"`
}

// NewStateTransition builds the audit row for an accepted transition.
func NewStateTransition(decisionID id.DecisionID, from, to Status, method TransitionMethod, actor id.UserID, at time.Time) *StateTransition {
	return &StateTransition{
		ID:            uuid.New(),
		DecisionID:    decisionID,
		FromStatus:    from,
		ToStatus:      to,
		Method:        method,
		TriggeredByID: actor,
		Timestamp:     at,
	}
}
