package models

import (
	"time"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// Option is one candidate choice considered for a decision. Options share
// the signal mutability window: author-only writes while the decision is a
// draft.
type Option struct {
	ID         id.OptionID   `json:"id"`
	DecisionID id.DecisionID `json:"decision_id"`

	Text       string `json:"text"`
	IsSelected bool   `json:"is_selected"`
	// Order is display sequencing only; no uniqueness or density is enforced.
	Order int `json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOption constructs a validated option.
func NewOption(optionID id.OptionID, decisionID id.DecisionID, text string, order int, now time.Time) (*Option, error) {
	if text == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "option text cannot be empty")
	}
	return &Option{
		ID:         optionID,
		DecisionID: decisionID,
		Text:       text,
		Order:      order,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// OptionPatch carries partial option updates. Nil members are untouched.
type OptionPatch struct {
	Text       *string
	IsSelected *bool
	Order      *int
}

// ApplyPatch mutates the option.
func (o *Option) ApplyPatch(p OptionPatch, now time.Time) error {
	if p.Text != nil {
		if *p.Text == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "option text cannot be empty")
		}
		o.Text = *p.Text
	}
	if p.IsSelected != nil {
		o.IsSelected = *p.IsSelected
	}
	if p.Order != nil {
		o.Order = *p.Order
	}
	o.UpdatedAt = now
	return nil
}

// Clone returns a copy safe to hand outside the store.
func (o *Option) Clone() *Option {
	c := *o
	return &c
}
