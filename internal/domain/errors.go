package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while running an election.
var (
	// ErrInvalidAgent indicates that an agent index does not name an agent
	// of the preference profile.
	ErrInvalidAgent = errors.New("invalid agent")

	// ErrInvalidTieBreak indicates a tie-break policy other than max, min
	// or an agent index.
	ErrInvalidTieBreak = errors.New("invalid tie-break option")

	// ErrIncompatibleScoreVector indicates that a score vector does not
	// have exactly one weight per alternative.
	ErrIncompatibleScoreVector = errors.New("incompatible score vector")

	// ErrMalformedTable indicates an empty, ragged or non-numeric
	// valuation table.
	ErrMalformedTable = errors.New("malformed valuation table")

	// ErrMalformedProfile indicates rankings that are not permutations of
	// the same alternative set.
	ErrMalformedProfile = errors.New("malformed preference profile")

	// ErrEmptyProfile indicates a profile with no agents.
	ErrEmptyProfile = errors.New("empty preference profile")

	// ErrNoCandidates indicates that a tie break was requested over an
	// empty candidate set.
	ErrNoCandidates = errors.New("no candidates to break tie")
)

// RuleError represents a failure of a single voting rule.
// It records which rule failed so that one rule's failure can be reported
// without aborting the remaining rules of an election.
type RuleError struct {
	// Rule is the identifier of the rule that failed.
	Rule string

	// Err is the underlying error that caused the rule to fail.
	Err error
}

// Error implements the error interface for RuleError.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule error: rule=%s, err=%v", e.Rule, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *RuleError) Unwrap() error { return e.Err }

// NewRuleError creates a new RuleError for the given rule.
func NewRuleError(rule string, err error) *RuleError {
	return &RuleError{
		Rule: rule,
		Err:  err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// AddErrorf adds a formatted error message to the validation error.
func (e *ValidationError) AddErrorf(format string, args ...any) {
	e.AddError(fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
