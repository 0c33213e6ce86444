/*
engine.go - The recalculation orchestrator

PURPOSE:
  Rebuilds an employee's entire leave ledger from source documents and
  derives per-policy balances. The rebuild is delete-then-regenerate:
  nothing is ever appended to a stale ledger, so the computation is
  idempotent and never drifts.

SEQUENCING:
  1. resolve the work-year anchor (none -> empty report, ledger untouched)
  2. every policy's accrual strategy runs; cross-policy transfers are
     routed to their target policy
  3. usage extraction per policy
  4. every policy's expiration pass (provisional FIFO inside)
  5. the final FIFO per policy
  6. one atomic persist of the full entry set
  All expirations run before any final FIFO so that transfers landing on
  the annual policy are present when its remainders are computed.

CONCURRENCY:
  Recalculations for the same employee are serialized with a per-employee
  lock; different employees may run in parallel. A failed persist rolls
  back and leaves the previous ledger intact.

IDEMPOTENCE:
  Entry IDs are deterministic sequence numbers, not random, so rerunning
  with unchanged inputs reproduces the ledger byte for byte.

SEE ALSO:
  - accrual.go, usage.go, expiration.go, fifo.go: the phases
  - store.go: the persistence contract
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORTS
// =============================================================================

// PolicyReport is the balance view for one (employee, policy) pair.
type PolicyReport struct {
	Policy         Policy
	Accrued        decimal.Decimal
	Used           decimal.Decimal
	Expired        decimal.Decimal
	TransferredOut decimal.Decimal
	Balance        decimal.Decimal
	BalanceKD      decimal.Decimal
	PaymentStatus  string
	Entries        []Entry
	Log            []string
}

// Report is the full recalculation result for one employee.
type Report struct {
	Employee  Employee
	Anchor    Date
	Reference Date
	Policies  []PolicyReport
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine wires the stores and the child entitlement lookup together.
type Engine struct {
	Employees EmployeeStore
	Documents DocumentStore
	Policies  PolicyStore
	Ledger    LedgerStore
	ChildDays ChildEntitlementFunc

	mu    sync.Mutex
	locks map[EmployeeID]*sync.Mutex
}

// NewEngine constructs an Engine over a combined store.
func NewEngine(store Store) *Engine {
	return &Engine{
		Employees: store,
		Documents: store,
		Policies:  store,
		Ledger:    store,
		ChildDays: ExtraChildDays,
	}
}

func (en *Engine) lockFor(id EmployeeID) *sync.Mutex {
	en.mu.Lock()
	defer en.mu.Unlock()
	if en.locks == nil {
		en.locks = make(map[EmployeeID]*sync.Mutex)
	}
	l, ok := en.locks[id]
	if !ok {
		l = &sync.Mutex{}
		en.locks[id] = l
	}
	return l
}

// Recalculate rebuilds the employee's ledger as of today and returns the
// balance report. Only store failures are returned as errors; algorithmic
// degradations (missing anchor, unknown accrual method, malformed rules)
// surface in the report instead.
func (en *Engine) Recalculate(ctx context.Context, employeeID EmployeeID, today Date) (*Report, error) {
	l := en.lockFor(employeeID)
	l.Lock()
	defer l.Unlock()

	emp, err := en.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	docs, err := en.Documents.ListDocuments(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	policies, err := en.Policies.ListPolicies(ctx)
	if err != nil {
		return nil, err
	}

	reference := ReferenceDate(today)
	report := &Report{Employee: emp, Reference: reference}

	anchor, ok := ResolveAnchor(emp, docs, policies)
	if !ok {
		// No hire record: no entitlements computable, ledger untouched.
		return report, nil
	}
	report.Anchor = anchor

	annualID := PolicyID("")
	if annual, ok := AnnualPolicy(policies); ok {
		annualID = annual.ID
	}

	childDays := 0
	if en.ChildDays != nil {
		childDays = en.ChildDays(docs, reference)
	}

	// Deterministic policy order for ID assignment and reporting.
	sorted := make([]Policy, len(policies))
	copy(sorted, policies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	perPolicy := make(map[PolicyID][]Entry)
	perLog := make(map[PolicyID][]string)

	// Phase 1: accrual strategies, with cross-policy routing.
	for _, p := range sorted {
		strategy := StrategyFor(p.Rules.AccrualMethod)
		if strategy == nil {
			perLog[p.ID] = append(perLog[p.ID],
				fmt.Sprintf("unrecognized accrual method %q, no accrual computed", p.Rules.AccrualMethod))
			continue
		}
		res := strategy.Accrue(AccrualContext{
			Employee:       emp,
			Policy:         p,
			Policies:       policies,
			Documents:      docs,
			Anchor:         anchor,
			Reference:      reference,
			ChildDays:      childDays,
			AnnualPolicyID: annualID,
		})
		for _, e := range res.Entries {
			perPolicy[e.PolicyID] = append(perPolicy[e.PolicyID], e)
		}
		perLog[p.ID] = append(perLog[p.ID], res.Log...)
	}

	// Phase 2: usage.
	for _, p := range sorted {
		entries, usageLog := UsageEntries(emp, p, docs)
		perPolicy[p.ID] = append(perPolicy[p.ID], entries...)
		perLog[p.ID] = append(perLog[p.ID], usageLog...)
	}

	// Phase 3: every policy's expiration before any final FIFO, so that
	// lapsing remainders transferred to the annual policy take part in its
	// remainder computation below.
	for _, p := range sorted {
		expired, expLog := ExpirationEntries(p, annualID, perPolicy[p.ID], reference)
		for _, e := range expired {
			perPolicy[e.PolicyID] = append(perPolicy[e.PolicyID], e)
		}
		perLog[p.ID] = append(perLog[p.ID], expLog...)
	}

	// Phase 4: final FIFO.
	for _, p := range sorted {
		ApplyFIFO(perPolicy[p.ID])
	}

	// Assign deterministic IDs and flatten for the single persist.
	var all []Entry
	seq := 0
	for _, p := range sorted {
		entries := perPolicy[p.ID]
		for i := range entries {
			seq++
			entries[i].ID = EntryID(fmt.Sprintf("%s-%s-%04d", employeeID, p.ID, seq))
		}
		all = append(all, entries...)
	}

	// Phase 5: atomic persist. Failure must leave the prior ledger intact.
	if err := en.Ledger.ReplaceForEmployee(ctx, employeeID, all); err != nil {
		return nil, &PersistenceError{EmployeeID: employeeID, Err: err}
	}

	for _, p := range sorted {
		report.Policies = append(report.Policies, buildPolicyReport(p, perPolicy[p.ID], perLog[p.ID]))
	}
	return report, nil
}

// RecalculateAll rebuilds every employee's ledger. Per-employee failures
// are collected rather than aborting the sweep.
func (en *Engine) RecalculateAll(ctx context.Context, today Date) ([]*Report, error) {
	employees, err := en.Employees.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	var reports []*Report
	var errs []error
	for _, emp := range employees {
		r, err := en.Recalculate(ctx, emp.ID, today)
		if err != nil {
			log.Printf("[engine] recalculation for %s failed: %v", emp.ID, err)
			errs = append(errs, err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, errors.Join(errs...)
}

// buildPolicyReport aggregates one policy's entries into the balance view.
func buildPolicyReport(p Policy, entries []Entry, logLines []string) PolicyReport {
	accrued := decimal.Zero
	used := decimal.Zero
	expired := decimal.Zero
	transferredOut := decimal.Zero

	for _, e := range entries {
		switch e.Type {
		case EntryAccrual, EntryTransferredIn:
			accrued = accrued.Add(e.Days)
		case EntryUsage:
			used = used.Add(e.Days.Abs())
		case EntryExpiration:
			expired = expired.Add(e.Days.Abs())
		case EntryTransferredOut:
			transferredOut = transferredOut.Add(e.Days.Abs())
		}
	}

	balance := accrued.Sub(expired).Sub(used).Sub(transferredOut).Round(2)

	return PolicyReport{
		Policy:         p,
		Accrued:        accrued.Round(2),
		Used:           used.Round(2),
		Expired:        expired.Round(2),
		TransferredOut: transferredOut.Round(2),
		Balance:        balance,
		BalanceKD:      balance.Mul(decimal.NewFromInt(7)).Div(decimal.NewFromInt(5)).Round(2),
		PaymentStatus:  p.Rules.PaymentStatus,
		Entries:        entries,
		Log:            logLines,
	}
}
