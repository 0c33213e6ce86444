/*
store.go - Persistence contracts for the accrual engine

PURPOSE:
  The engine is a library-style computation; these interfaces are the whole
  of its persistence surface. Reads feed the orchestrator, and a single
  atomic write (ReplaceForEmployee) commits a rebuilt ledger.

IMPLEMENTATIONS:
  - leave/store: in-memory, for tests and dev mode
  - store/sqlite: SQLite-backed

SEE ALSO:
  - engine.go: the only consumer of LedgerStore.ReplaceForEmployee
*/
package leave

import "context"

// EmployeeStore provides read/write access to employee records.
type EmployeeStore interface {
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error
}

// DocumentStore provides access to an employee's event history.
type DocumentStore interface {
	ListDocuments(ctx context.Context, employeeID EmployeeID) ([]Document, error)
	ListDocumentsByType(ctx context.Context, employeeID EmployeeID, t DocumentType) ([]Document, error)
	SaveDocument(ctx context.Context, d Document) error
	DeleteDocument(ctx context.Context, id DocumentID) error
}

// PolicyStore provides access to leave policies.
type PolicyStore interface {
	GetPolicy(ctx context.Context, id PolicyID) (Policy, error)
	ListPolicies(ctx context.Context) ([]Policy, error)
	SavePolicy(ctx context.Context, p Policy) error
}

// LedgerStore persists ledger entries. ReplaceForEmployee deletes every
// entry for the employee and inserts the given set as one atomic unit; on
// failure the previous ledger must remain intact.
type LedgerStore interface {
	ListEntries(ctx context.Context, employeeID EmployeeID) ([]Entry, error)
	ListEntriesByPolicy(ctx context.Context, employeeID EmployeeID, policyID PolicyID) ([]Entry, error)
	ReplaceForEmployee(ctx context.Context, employeeID EmployeeID, entries []Entry) error
}

// Store bundles the four contracts; both store implementations satisfy it.
type Store interface {
	EmployeeStore
	DocumentStore
	PolicyStore
	LedgerStore
}
