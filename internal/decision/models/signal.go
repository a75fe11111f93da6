package models

import (
	"fmt"
	"time"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// MaxSignalsPerDecision caps the evidence set attached to one decision.
const MaxSignalsPerDecision = 15

// ScopeType narrows the slice of data a signal describes.
type ScopeType string

// ScopeChannel scopes a signal to a single acquisition channel and requires
// a non-empty scope value.
const ScopeChannel ScopeType = "channel"

// Signal is one piece of evidence attached to a decision while it is a
// draft. Frozen (read-only) after commit.
type Signal struct {
	ID         id.SignalID   `json:"id"`
	DecisionID id.DecisionID `json:"decision_id"`

	Metric     string `json:"metric"`
	Movement   string `json:"movement"`
	Period     string `json:"period"`
	Comparison string `json:"comparison"`

	ScopeType  ScopeType `json:"scope_type,omitempty"`
	ScopeValue string    `json:"scope_value,omitempty"`

	// DisplayTextOverride, when non-empty, freezes DisplayText until the
	// override is explicitly cleared with an empty string.
	DisplayTextOverride string `json:"display_text_override,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSignal constructs a validated signal.
func NewSignal(signalID id.SignalID, decisionID id.DecisionID, metric, movement, period, comparison string, now time.Time) (*Signal, error) {
	s := &Signal{
		ID:         signalID,
		DecisionID: decisionID,
		Metric:     metric,
		Movement:   movement,
		Period:     period,
		Comparison: comparison,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate enforces the signal's own invariants.
func (s *Signal) Validate() error {
	if s.Metric == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "signal metric cannot be empty")
	}
	if s.Movement == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "signal movement cannot be empty")
	}
	if s.ScopeType != "" && s.ScopeType != ScopeChannel {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown signal scope type: "+string(s.ScopeType))
	}
	if s.ScopeType == ScopeChannel && s.ScopeValue == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "channel-scoped signals require a scope value")
	}
	return nil
}

// DisplayText returns the human-readable rendering of the signal. A
// non-empty override freezes the text; otherwise it is recomputed from the
// metric fields on every read.
func (s *Signal) DisplayText() string {
	if s.DisplayTextOverride != "" {
		return s.DisplayTextOverride
	}
	return s.computedDisplayText()
}

func (s *Signal) computedDisplayText() string {
	text := s.Metric + " " + s.Movement
	if s.Period != "" {
		text += " over " + s.Period
	}
	if s.Comparison != "" {
		text += " vs " + s.Comparison
	}
	if s.ScopeType == ScopeChannel {
		text += fmt.Sprintf(" (channel: %s)", s.ScopeValue)
	}
	return text
}

// SignalPatch carries partial signal updates. Nil members are untouched.
// Override uses a pointer so an explicit empty string clears the freeze while
// an absent field leaves it alone.
type SignalPatch struct {
	Metric     *string
	Movement   *string
	Period     *string
	Comparison *string
	ScopeType  *ScopeType
	ScopeValue *string
	Override   *string
}

// ApplyPatch mutates the signal and revalidates it.
func (s *Signal) ApplyPatch(p SignalPatch, now time.Time) error {
	if p.Metric != nil {
		s.Metric = *p.Metric
	}
	if p.Movement != nil {
		s.Movement = *p.Movement
	}
	if p.Period != nil {
		s.Period = *p.Period
	}
	if p.Comparison != nil {
		s.Comparison = *p.Comparison
	}
	if p.ScopeType != nil {
		s.ScopeType = *p.ScopeType
	}
	if p.ScopeValue != nil {
		s.ScopeValue = *p.ScopeValue
	}
	if p.Override != nil {
		s.DisplayTextOverride = *p.Override
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.UpdatedAt = now
	return nil
}

// Clone returns a copy safe to hand outside the store.
func (s *Signal) Clone() *Signal {
	c := *s
	return &c
}
