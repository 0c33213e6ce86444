/*
errors.go - Centralized error types for the accrual engine

PURPOSE:
  All engine errors in one place. Almost nothing in the computation itself
  is allowed to fail hard: a missing hire record yields an empty report, an
  unrecognized accrual method yields a diagnostic log line, malformed rules
  degrade to defaults, and inverted document date ranges contribute zero
  days. Only persistence failures propagate to the caller.

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, leave.ErrEmployeeNotFound) { ... 404 ... }

SEE ALSO:
  - engine.go: the degradation rules above in action
  - store.go: store methods returning these errors
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPolicyNotFound is returned when a referenced policy doesn't exist.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrDocumentNotFound is returned when a referenced document doesn't exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrPersistence is returned when the ledger cannot be written. The prior
	// ledger state is left intact (transaction rollback).
	ErrPersistence = errors.New("ledger persistence failed")

	// ErrInvalidDateRange marks a document whose end precedes its start.
	// The engine never escalates it; it exists for validation surfaces.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// PersistenceError carries the employee whose rebuild failed and the
// underlying store error.
type PersistenceError struct {
	EmployeeID EmployeeID
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger rebuild for %s failed: %v", e.EmployeeID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrDocumentNotFound)
}
