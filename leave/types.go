/*
types.go - Core domain types for the leave accrual engine

PURPOSE:
  Employees, documents (the event history) and ledger entries. Policies live
  in policy.go because their rule decoding is substantial on its own.

KEY CONCEPTS:
  - Document: an immutable timestamped event (hire, leave taken, life event,
    salary record). The engine only reads documents; ledger entries may point
    back at the document that produced them.
  - Entry: one ledger row for an (employee, policy) pair. Accrual and
    transferred_in rows are "batches" carrying a Remaining quantity that the
    FIFO consumer maintains; all other rows are pure consumption.
  - The whole ledger for an employee is regenerated on every recomputation.
    Entries are never appended to a stale ledger.

SEE ALSO:
  - policy.go: Policy and Rules
  - engine.go: the orchestrator that produces entries
*/
package leave

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS - Typed string IDs
// =============================================================================

type EmployeeID string
type PolicyID string
type DocumentID string
type EntryID string

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is identity plus optional base compensation. The engine treats
// employees as read-only.
type Employee struct {
	ID         EmployeeID
	FirstName  string
	LastName   string
	Position   string
	Department string
	StartDate  Date
	BaseSalary decimal.Decimal
}

func (e Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	return e.FirstName + " " + e.LastName
}

// =============================================================================
// DOCUMENT - Timestamped employee event
// =============================================================================

type DocumentType string

const (
	DocHire              DocumentType = "hire"
	DocVacation          DocumentType = "vacation"
	DocUnpaidLeave       DocumentType = "unpaid_leave"
	DocStudyLeave        DocumentType = "study_leave"
	DocDonorDay          DocumentType = "donor_day"
	DocChildRegistration DocumentType = "child_registration"
	DocSalaryRecord      DocumentType = "salary_record"
)

// Document is a single event in an employee's history. Payload is a free-form
// key/value map; the helpers below read the keys the engine understands.
type Document struct {
	ID         DocumentID
	EmployeeID EmployeeID
	Type       DocumentType
	DateFrom   Date
	DateTo     Date
	Days       int
	Payload    map[string]any
}

// PolicyRef returns the policy the document is tied to via its payload,
// or "" when untagged.
func (d Document) PolicyRef() PolicyID {
	return PolicyID(d.payloadString("vacation_config_id"))
}

// ChildDOB returns the child birth date carried by a child registration
// document, ok=false when absent or unparseable.
func (d Document) ChildDOB() (Date, bool) {
	s := d.payloadString("child_dob")
	if s == "" {
		return Date{}, false
	}
	dob, err := ParseDate(s)
	if err != nil {
		return Date{}, false
	}
	return dob, true
}

// IsDisabled reports the disabled-child flag on a child registration document.
func (d Document) IsDisabled() bool { return d.Flag("is_disabled") }

// Flag reads a boolean payload value, tolerating bool, string and numeric
// encodings.
func (d Document) Flag(key string) bool {
	if d.Payload == nil {
		return false
	}
	switch v := d.Payload[key].(type) {
	case bool:
		return v
	case string:
		return v == "1" || v == "true" || v == "yes"
	case float64:
		return v != 0
	}
	return false
}

// Amount reads a decimal payload value (salary records), ok=false when absent.
func (d Document) Amount(key string) (decimal.Decimal, bool) {
	if d.Payload == nil {
		return decimal.Zero, false
	}
	switch v := d.Payload[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return dec, true
	case json.Number:
		dec, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return dec, true
	}
	return decimal.Zero, false
}

// Int reads an integer payload value, ok=false when absent.
func (d Document) Int(key string) (int, bool) {
	if d.Payload == nil {
		return 0, false
	}
	switch v := d.Payload[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// CalendarDays returns the inclusive span of the document's date range,
// or the stored day count when no end date is set. Inverted ranges count
// as zero.
func (d Document) CalendarDays() int {
	if d.DateTo.IsZero() {
		if d.Days > 0 {
			return d.Days
		}
		return 0
	}
	return CalendarDaysInclusive(d.DateFrom, d.DateTo)
}

func (d Document) payloadString(key string) string {
	if d.Payload == nil {
		return ""
	}
	if s, ok := d.Payload[key].(string); ok {
		return s
	}
	if f, ok := d.Payload[key].(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// =============================================================================
// LEDGER ENTRY
// =============================================================================

type EntryType string

const (
	EntryAccrual        EntryType = "accrual"
	EntryUsage          EntryType = "usage"
	EntryExpiration     EntryType = "expiration"
	EntryTransferredOut EntryType = "transferred_out"
	EntryTransferredIn  EntryType = "transferred_in"
)

// Entry is one ledger row. Days is signed: positive for accrual and
// transferred_in, negative for usage, expiration and transferred_out.
// Remaining is only meaningful on batch rows (see IsBatch).
type Entry struct {
	ID          EntryID
	EmployeeID  EmployeeID
	PolicyID    PolicyID
	Type        EntryType
	PeriodFrom  Date
	PeriodTo    Date
	Days        decimal.Decimal
	Remaining   decimal.Decimal
	DocumentID  DocumentID
	Description string
}

// IsBatch reports whether the entry is an accrual batch consumable via FIFO.
func (e Entry) IsBatch() bool {
	return e.Type == EntryAccrual || e.Type == EntryTransferredIn
}
