package models

import (
	dErrors "verdict/pkg/domain-errors"
)

// Status is the decision lifecycle status. The set is closed; transitions
// happen only through the table below.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusCommitted        Status = "committed"
	StatusReviewed         Status = "reviewed"
	StatusArchived         Status = "archived"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusAwaitingApproval, StatusCommitted, StatusReviewed, StatusArchived:
		return Status(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown status: "+s)
}

// TransitionMethod names the action that caused a status transition. It is
// recorded verbatim on the audit row.
type TransitionMethod string

const (
	MethodCommit  TransitionMethod = "commit"
	MethodApprove TransitionMethod = "approve"
	MethodReview  TransitionMethod = "review"
	MethodArchive TransitionMethod = "archive"
)

// transitionTable is the single source of truth for the state machine. A
// (from, method) pair absent from the table is rejected; nothing outside this
// table ever changes a decision's status.
//
// Archive is special-cased in NextStatus: it is reachable from every
// non-terminal state, and enumerating it here per state would invite drift.
var transitionTable = map[Status]map[TransitionMethod]Status{
	StatusDraft: {
		MethodCommit: StatusCommitted, // or StatusAwaitingApproval when approval is required
	},
	StatusAwaitingApproval: {
		MethodApprove: StatusCommitted,
	},
	StatusCommitted: {
		MethodReview: StatusReviewed,
	},
}

// NextStatus resolves the target status for (from, method), or an
// invalid-state error when the pair is not in the table. Commit from draft
// resolves to awaiting_approval when the decision requires approval.
func NextStatus(from Status, method TransitionMethod, requiresApproval bool) (Status, error) {
	if method == MethodArchive {
		if from == StatusArchived {
			return "", dErrors.New(dErrors.CodeInvalidState, "decision is already archived")
		}
		return StatusArchived, nil
	}
	to, ok := transitionTable[from][method]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidState,
			"cannot "+string(method)+" a decision in status "+string(from))
	}
	if from == StatusDraft && method == MethodCommit && requiresApproval {
		return StatusAwaitingApproval, nil
	}
	return to, nil
}

// IsTerminal reports whether no further transition can leave the status.
func (s Status) IsTerminal() bool { return s == StatusArchived }

// Mutable reports whether draft-only fields and the signal/option sets may
// still change.
func (s Status) Mutable() bool { return s == StatusDraft }
