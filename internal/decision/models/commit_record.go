package models

import (
	"time"

	id "verdict/pkg/domain"
)

// CommitRecord is the immutable one-to-one record created atomically with
// the committed transition. The snapshot is a deep copy of the data that
// passed validation, kept for audit.
type CommitRecord struct {
	DecisionID    id.DecisionID      `json:"decision_id"`
	CommittedByID id.UserID          `json:"committed_by_id"`
	CommittedAt   time.Time          `json:"committed_at"`
	Snapshot      ValidationSnapshot `json:"snapshot"`
}

// ValidationSnapshot freezes the validated state of a decision at commit
// time.
type ValidationSnapshot struct {
	Title          string    `json:"title"`
	ContextSummary string    `json:"context_summary"`
	Reasoning      string    `json:"reasoning"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Confidence     int       `json:"confidence"`
	Signals        []Signal  `json:"signals"`
	Options        []Option  `json:"options"`
}

// NewCommitRecord deep-copies the validated state into an immutable record.
func NewCommitRecord(d *Decision, signals []*Signal, options []*Option, committedBy id.UserID, at time.Time) *CommitRecord {
	snap := ValidationSnapshot{
		Title:          d.Title,
		ContextSummary: d.ContextSummary,
		Reasoning:      d.Reasoning,
		RiskLevel:      d.RiskLevel,
		Confidence:     d.Confidence,
		Signals:        make([]Signal, len(signals)),
		Options:        make([]Option, len(options)),
	}
	for i, s := range signals {
		snap.Signals[i] = *s.Clone()
	}
	for i, o := range options {
		snap.Options[i] = *o.Clone()
	}
	return &CommitRecord{
		DecisionID:    d.ID,
		CommittedByID: committedBy,
		CommittedAt:   at,
		Snapshot:      snap,
	}
}
