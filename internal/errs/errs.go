// Package errs defines the semantic error types the orchestrator
// distinguishes: preconditions checked before any side effect, input
// validation, and bounded waits that ran out of time. Best-effort
// failures are not represented here; they are logged and swallowed
// at the call site.
package errs

import (
	"fmt"
	"time"
)

// PreconditionError indicates a required external tool or resource is
// unavailable. It is always raised before any state is touched.
type PreconditionError struct {
	Requirement string
	Err         error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("precondition failed: %s: %v", e.Requirement, e.Err)
	}
	return fmt.Sprintf("precondition failed: %s", e.Requirement)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// NewPrecondition creates a PreconditionError for a missing requirement.
func NewPrecondition(requirement string, err error) *PreconditionError {
	return &PreconditionError{Requirement: requirement, Err: err}
}

// ValidationError indicates malformed caller input, such as a team name
// that reduces to nothing after sanitizing.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NewValidation creates a ValidationError.
func NewValidation(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// TimeoutError indicates a bounded wait reached its deadline. Callers
// treat it as a degraded-but-usable outcome, not a fatal one.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}

// NewTimeout creates a TimeoutError for the given operation.
func NewTimeout(op string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{Op: op, Timeout: timeout}
}
