package models

import (
	dErrors "verdict/pkg/domain-errors"
)

// ValidateCommit is the pure commit validator. It checks every rule and
// returns the complete list of violations so the caller sees all of them at
// once; an empty slice means the decision may commit.
//
// Rules:
//   - context summary and reasoning are non-empty
//   - at least one signal is attached
//   - at least two options are attached
//   - exactly one option is selected
func ValidateCommit(d *Decision, signals []*Signal, options []*Option) []dErrors.FieldError {
	var fields []dErrors.FieldError

	if d.ContextSummary == "" {
		fields = append(fields, dErrors.FieldError{Field: "context_summary", Rule: "must not be empty"})
	}
	if d.Reasoning == "" {
		fields = append(fields, dErrors.FieldError{Field: "reasoning", Rule: "must not be empty"})
	}
	if len(signals) == 0 {
		fields = append(fields, dErrors.FieldError{Field: "signals", Rule: "at least one signal is required"})
	}
	if len(options) < 2 {
		fields = append(fields, dErrors.FieldError{Field: "options", Rule: "at least two options are required"})
	}

	selected := 0
	for _, o := range options {
		if o.IsSelected {
			selected++
		}
	}
	switch {
	case selected == 0:
		fields = append(fields, dErrors.FieldError{Field: "options", Rule: "exactly one option must be selected, none is"})
	case selected > 1:
		fields = append(fields, dErrors.FieldError{Field: "options", Rule: "exactly one option must be selected"})
	}

	return fields
}
