// Package domain holds shared domain primitives: typed identifiers and the
// closed enums used across module boundaries.
//
// Typed IDs prevent cross-type assignment at compile time (a DecisionID can
// never be passed where a ProjectID is expected). ParseXxxID functions are the
// trust boundary: transport layers parse raw strings exactly once and hand
// typed IDs to services.
package domain

import (
	"github.com/google/uuid"

	dErrors "verdict/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated user.
	UserID uuid.UUID
	// ProjectID identifies a project, the tenant boundary for decisions.
	ProjectID uuid.UUID
	// DecisionID identifies a decision aggregate.
	DecisionID uuid.UUID
	// SignalID identifies an evidence signal attached to a decision.
	SignalID uuid.UUID
	// OptionID identifies a candidate option attached to a decision.
	OptionID uuid.UUID
	// ReviewID identifies an outcome review.
	ReviewID uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return u, nil
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user", s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseProjectID validates and returns a ProjectID.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := parseUUID("project", s)
	if err != nil {
		return ProjectID{}, err
	}
	return ProjectID(u), nil
}

// ParseDecisionID validates and returns a DecisionID.
func ParseDecisionID(s string) (DecisionID, error) {
	u, err := parseUUID("decision", s)
	if err != nil {
		return DecisionID{}, err
	}
	return DecisionID(u), nil
}

// ParseSignalID validates and returns a SignalID.
func ParseSignalID(s string) (SignalID, error) {
	u, err := parseUUID("signal", s)
	if err != nil {
		return SignalID{}, err
	}
	return SignalID(u), nil
}

// ParseOptionID validates and returns an OptionID.
func ParseOptionID(s string) (OptionID, error) {
	u, err := parseUUID("option", s)
	if err != nil {
		return OptionID{}, err
	}
	return OptionID(u), nil
}

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id ProjectID) String() string  { return uuid.UUID(id).String() }
func (id DecisionID) String() string { return uuid.UUID(id).String() }
func (id SignalID) String() string   { return uuid.UUID(id).String() }
func (id OptionID) String() string   { return uuid.UUID(id).String() }
func (id ReviewID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DecisionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SignalID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id OptionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ReviewID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewUserID mints a fresh UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewProjectID mints a fresh ProjectID.
func NewProjectID() ProjectID { return ProjectID(uuid.New()) }

// NewDecisionID mints a fresh DecisionID.
func NewDecisionID() DecisionID { return DecisionID(uuid.New()) }

// NewSignalID mints a fresh SignalID.
func NewSignalID() SignalID { return SignalID(uuid.New()) }

// NewOptionID mints a fresh OptionID.
func NewOptionID() OptionID { return OptionID(uuid.New()) }

// NewReviewID mints a fresh ReviewID.
func NewReviewID() ReviewID { return ReviewID(uuid.New()) }
