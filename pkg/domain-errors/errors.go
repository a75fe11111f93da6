// Package errors provides coded domain errors shared by services and
// transport layers.
//
// Services return these instead of raw errors so handlers can map them to
// HTTP statuses without inspecting error strings. Stores return sentinel
// errors (pkg/platform/sentinel) which services translate into coded errors
// at the boundary.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a domain error. Codes are closed: transport layers switch
// on them exhaustively.
type Code string

const (
	// CodeBadRequest covers malformed or missing request payload data.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput covers values that fail trust-boundary parsing (IDs,
	// enums).
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation covers business-rule violations; the error carries the
	// complete list of violated rules as field errors.
	CodeValidation Code = "validation_failed"
	// CodeUnauthorized means the caller is not authenticated.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the caller lacks the role-level permission for the
	// attempted action.
	CodeForbidden Code = "forbidden"
	// CodeScope means the project scope is missing, or the caller holds no
	// active membership in it.
	CodeScope Code = "invalid_scope"
	// CodeNotFound means the referenced entity does not exist or is outside
	// the caller's visibility.
	CodeNotFound Code = "not_found"
	// CodeConflict means the request conflicts with existing state.
	CodeConflict Code = "conflict"
	// CodeInvalidState means the action is not permitted from the entity's
	// current lifecycle status.
	CodeInvalidState Code = "invalid_state"
	// CodeCycle means a parent-set update would close a cycle in the
	// dependency graph.
	CodeCycle Code = "graph_cycle"
	// CodeInvariantViolation covers broken aggregate invariants detected at
	// construction or mutation time.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout means the operation was abandoned before completion.
	CodeTimeout Code = "timeout"
	// CodeInternal covers unexpected infrastructure failures. Descriptions
	// are never surfaced to clients.
	CodeInternal Code = "internal_error"
)

// FieldError names a single violated rule on a single field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (f FieldError) String() string { return f.Field + ": " + f.Rule }

// Error is a coded domain error, optionally wrapping a cause and carrying
// field-level detail for validation failures.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.String()
		}
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, "; "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause remains
// reachable through errors.Is/As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// WithFields creates a validation error carrying the complete list of
// violated rules. Callers see every violation at once, not just the first.
func WithFields(code Code, message string, fields []FieldError) error {
	return &Error{Code: code, Message: message, Fields: fields}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in tests.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf returns the field errors carried by err, if any.
func FieldsOf(err error) []FieldError {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// MessageOf returns the outermost message carried by err, or empty.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
