package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every failure crossing the service boundary is one of
// these; none of them is ever a panic. Callers match with errors.As.

// ValidationError rejects bad user input (quantity, date). Recoverable,
// surfaced to the user as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InvalidStateError rejects an illegal lifecycle transition, e.g.
// submitting a cart that is no longer a draft.
type InvalidStateError struct {
	Entity string
	From   string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s cannot %s from status %q", e.Entity, e.Action, e.From)
}

// ConflictError reports a uniqueness violation in the backing store
// (duplicate draft, duplicate cart line, double submit). The caller is
// expected to refetch and retry, not to crash.
type ConflictError struct {
	Table string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflict on %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("conflict on %s", e.Table)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a required entity that is missing. Where absence
// is semantically valid (empty history) services return empty results
// instead.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

// UpstreamError wraps a store or network failure. Logged once at the
// point of occurrence, then surfaced so the caller can retry.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
