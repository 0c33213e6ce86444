/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	BaseSalary string `json:"base_salary,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	StartDate  string `json:"start_date"`
	BaseSalary string `json:"base_salary"`
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// DocumentDTO represents a document in API responses.
type DocumentDTO struct {
	ID         string         `json:"id"`
	EmployeeID string         `json:"employee_id"`
	Type       string         `json:"type"`
	DateFrom   string         `json:"date_from,omitempty"`
	DateTo     string         `json:"date_to,omitempty"`
	Days       int            `json:"days,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// CreateDocumentRequest is the request to create a document.
type CreateDocumentRequest struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	DateFrom string         `json:"date_from"`
	DateTo   string         `json:"date_to"`
	Days     int            `json:"days"`
	Payload  map[string]any `json:"payload"`
}

// =============================================================================
// POLICIES
// =============================================================================

// PolicyDTO represents a policy in API responses. Rules is echoed back as
// raw JSON so an administrator sees exactly what is stored.
type PolicyDTO struct {
	ID        string          `json:"id"`
	TypeCode  int             `json:"type_code"`
	Name      string          `json:"name"`
	Accruable bool            `json:"is_accruable"`
	NormDays  string          `json:"norm_days"`
	Rules     json.RawMessage `json:"rules,omitempty"`
}

// SavePolicyRequest creates or updates a policy.
type SavePolicyRequest struct {
	ID        string          `json:"id"`
	TypeCode  int             `json:"type_code"`
	Name      string          `json:"name"`
	Accruable bool            `json:"is_accruable"`
	NormDays  string          `json:"norm_days"`
	Rules     json.RawMessage `json:"rules"`
}

// =============================================================================
// BALANCES
// =============================================================================

// EntryDTO represents one ledger entry.
type EntryDTO struct {
	ID          string `json:"id"`
	PolicyID    string `json:"policy_id"`
	Type        string `json:"type"`
	PeriodFrom  string `json:"period_from,omitempty"`
	PeriodTo    string `json:"period_to,omitempty"`
	Days        string `json:"days"`
	Remaining   string `json:"remaining,omitempty"`
	DocumentID  string `json:"document_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// PolicyBalanceDTO is the per-policy section of a balance report.
type PolicyBalanceDTO struct {
	PolicyID       string     `json:"policy_id"`
	PolicyName     string     `json:"policy_name"`
	Accrued        string     `json:"accrued"`
	Used           string     `json:"used"`
	Expired        string     `json:"expired"`
	TransferredOut string     `json:"transferred_out"`
	Balance        string     `json:"balance_days"`
	BalanceKD      string     `json:"balance_calendar_days"`
	PaymentStatus  string     `json:"payment_status,omitempty"`
	Entries        []EntryDTO `json:"transactions"`
	Log            []string   `json:"algorithm_log"`
}

// BalanceReportDTO is the full recalculation result for an employee.
type BalanceReportDTO struct {
	EmployeeID string             `json:"employee_id"`
	Anchor     string             `json:"anchor,omitempty"`
	Reference  string             `json:"reference"`
	Policies   []PolicyBalanceDTO `json:"policies"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// PayEstimateDTO is the pay estimate for a leave span.
type PayEstimateDTO struct {
	PolicyID    string   `json:"policy_id"`
	Formula     string   `json:"formula"`
	DailyRate   string   `json:"daily_rate"`
	PayableDays string   `json:"payable_days"`
	Total       string   `json:"total"`
	Log         []string `json:"log,omitempty"`
}

// =============================================================================
// MISC
// =============================================================================

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RecalculateResponse summarizes an admin-triggered sweep.
type RecalculateResponse struct {
	Employees int    `json:"employees"`
	Failed    int    `json:"failed"`
	AsOf      string `json:"as_of"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(e.ID),
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Position:   e.Position,
		Department: e.Department,
	}
	if !e.StartDate.IsZero() {
		dto.StartDate = e.StartDate.String()
	}
	if e.BaseSalary.Sign() != 0 {
		dto.BaseSalary = e.BaseSalary.String()
	}
	return dto
}

func toDocumentDTO(d leave.Document) DocumentDTO {
	dto := DocumentDTO{
		ID:         string(d.ID),
		EmployeeID: string(d.EmployeeID),
		Type:       string(d.Type),
		Days:       d.Days,
		Payload:    d.Payload,
	}
	if !d.DateFrom.IsZero() {
		dto.DateFrom = d.DateFrom.String()
	}
	if !d.DateTo.IsZero() {
		dto.DateTo = d.DateTo.String()
	}
	return dto
}

func toPolicyDTO(p leave.Policy) PolicyDTO {
	return PolicyDTO{
		ID:        string(p.ID),
		TypeCode:  p.TypeCode,
		Name:      p.Name,
		Accruable: p.Accruable,
		NormDays:  p.NormDays.String(),
		Rules:     json.RawMessage(p.RawRules),
	}
}

func toEntryDTO(e leave.Entry) EntryDTO {
	dto := EntryDTO{
		ID:          string(e.ID),
		PolicyID:    string(e.PolicyID),
		Type:        string(e.Type),
		Days:        e.Days.String(),
		DocumentID:  string(e.DocumentID),
		Description: e.Description,
	}
	if !e.PeriodFrom.IsZero() {
		dto.PeriodFrom = e.PeriodFrom.String()
	}
	if !e.PeriodTo.IsZero() {
		dto.PeriodTo = e.PeriodTo.String()
	}
	if e.IsBatch() {
		dto.Remaining = e.Remaining.String()
	}
	return dto
}

func toBalanceReportDTO(r *leave.Report) BalanceReportDTO {
	dto := BalanceReportDTO{
		EmployeeID: string(r.Employee.ID),
		Reference:  r.Reference.String(),
		Policies:   []PolicyBalanceDTO{},
	}
	if !r.Anchor.IsZero() {
		dto.Anchor = r.Anchor.String()
	}
	for _, pr := range r.Policies {
		pb := PolicyBalanceDTO{
			PolicyID:       string(pr.Policy.ID),
			PolicyName:     pr.Policy.Name,
			Accrued:        pr.Accrued.StringFixed(2),
			Used:           pr.Used.StringFixed(2),
			Expired:        pr.Expired.StringFixed(2),
			TransferredOut: pr.TransferredOut.StringFixed(2),
			Balance:        pr.Balance.StringFixed(2),
			BalanceKD:      pr.BalanceKD.StringFixed(2),
			PaymentStatus:  pr.PaymentStatus,
			Entries:        []EntryDTO{},
			Log:            pr.Log,
		}
		for _, e := range pr.Entries {
			pb.Entries = append(pb.Entries, toEntryDTO(e))
		}
		dto.Policies = append(dto.Policies, pb)
	}
	return dto
}
