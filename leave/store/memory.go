// Package store provides an in-memory leave.Store implementation.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[leave.EmployeeID]leave.Employee
	documents map[leave.DocumentID]leave.Document
	policies  map[leave.PolicyID]leave.Policy
	entries   map[leave.EmployeeID][]leave.Entry
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[leave.EmployeeID]leave.Employee),
		documents: make(map[leave.DocumentID]leave.Document),
		policies:  make(map[leave.PolicyID]leave.Policy),
		entries:   make(map[leave.EmployeeID][]leave.Entry),
	}
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) GetEmployee(_ context.Context, id leave.EmployeeID) (leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return leave.Employee{}, leave.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

// -----------------------------------------------------------------------------
// Documents
// -----------------------------------------------------------------------------

func (m *Memory) ListDocuments(_ context.Context, employeeID leave.EmployeeID) ([]leave.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Document
	for _, d := range m.documents {
		if d.EmployeeID == employeeID {
			out = append(out, d)
		}
	}
	sortDocuments(out)
	return out, nil
}

func (m *Memory) ListDocumentsByType(_ context.Context, employeeID leave.EmployeeID, t leave.DocumentType) ([]leave.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Document
	for _, d := range m.documents {
		if d.EmployeeID == employeeID && d.Type == t {
			out = append(out, d)
		}
	}
	sortDocuments(out)
	return out, nil
}

func (m *Memory) SaveDocument(_ context.Context, d leave.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[d.ID] = d
	return nil
}

func (m *Memory) DeleteDocument(_ context.Context, id leave.DocumentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return leave.ErrDocumentNotFound
	}
	delete(m.documents, id)
	return nil
}

// Documents are returned in chronological order so recomputation output is
// stable regardless of insertion order.
func sortDocuments(docs []leave.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].DateFrom.Equal(docs[j].DateFrom) {
			return docs[i].DateFrom.Before(docs[j].DateFrom)
		}
		return docs[i].ID < docs[j].ID
	})
}

// -----------------------------------------------------------------------------
// Policies
// -----------------------------------------------------------------------------

func (m *Memory) GetPolicy(_ context.Context, id leave.PolicyID) (leave.Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.policies[id]
	if !ok {
		return leave.Policy{}, leave.ErrPolicyNotFound
	}
	return p, nil
}

func (m *Memory) ListPolicies(_ context.Context) ([]leave.Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.Policy, 0, len(m.policies))
	for _, p := range m.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SavePolicy(_ context.Context, p leave.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.ID] = p
	return nil
}

// -----------------------------------------------------------------------------
// Ledger
// -----------------------------------------------------------------------------

func (m *Memory) ListEntries(_ context.Context, employeeID leave.EmployeeID) ([]leave.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.Entry, len(m.entries[employeeID]))
	copy(out, m.entries[employeeID])
	return out, nil
}

func (m *Memory) ListEntriesByPolicy(_ context.Context, employeeID leave.EmployeeID, policyID leave.PolicyID) ([]leave.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Entry
	for _, e := range m.entries[employeeID] {
		if e.PolicyID == policyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) ReplaceForEmployee(_ context.Context, employeeID leave.EmployeeID, entries []leave.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	replacement := make([]leave.Entry, len(entries))
	copy(replacement, entries)
	m.entries[employeeID] = replacement
	return nil
}
