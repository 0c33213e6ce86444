/*
handlers.go - HTTP API handlers for the leave accrual engine

PURPOSE:
  Exposes the accrual engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                  List all employees
    POST   /api/employees                  Create employee
    GET    /api/employees/{id}             Get employee details
    GET    /api/employees/{id}/balance     Recalculate and return balances
    GET    /api/employees/{id}/entries     Current ledger entries
    GET    /api/employees/{id}/documents   Event history
    POST   /api/employees/{id}/documents   Record a document
    GET    /api/employees/{id}/pay         Pay estimate for a leave span

  Documents:
    DELETE /api/documents/{id}             Remove a document

  Policies:
    GET    /api/policies                   List all policies
    POST   /api/policies                   Create or update a policy
    GET    /api/policies/{id}              Get one policy

  Admin:
    POST   /api/admin/recalculate          Rebuild every employee's ledger

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, payroll)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

BALANCE SEMANTICS:
  GET /balance recomputes the ledger before answering, so the response is
  always consistent with the current document set. The rebuild is atomic
  per employee and serialized by the engine, so concurrent reads are safe.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Statutory policy seed data
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  leave.Store
	Engine *leave.Engine

	// Now is injectable for tests; defaults to the wall clock.
	Now func() leave.Date
}

// NewHandler creates a new handler over the given store.
func NewHandler(store leave.Store) *Handler {
	return &Handler{
		Store:  store,
		Engine: leave.NewEngine(store),
		Now:    func() leave.Date { return leave.DateOf(time.Now().UTC()) },
	}
}

// asOf resolves the effective "today" for a request: the as_of query
// parameter when present and valid, the wall clock otherwise.
func (h *Handler) asOf(r *http.Request) leave.Date {
	if s := r.URL.Query().Get("as_of"); s != "" {
		if d, err := leave.ParseDate(s); err == nil {
			return d
		}
	}
	return h.Now()
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.LastName == "" {
		writeError(w, http.StatusBadRequest, "last_name is required", nil)
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	emp := leave.Employee{
		ID:         leave.EmployeeID(req.ID),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Position:   req.Position,
		Department: req.Department,
	}
	if req.StartDate != "" {
		d, err := leave.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date", err)
			return
		}
		emp.StartDate = d
	}
	if req.BaseSalary != "" {
		salary, err := decimal.NewFromString(req.BaseSalary)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid base_salary", err)
			return
		}
		emp.BaseSalary = salary
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// =============================================================================
// BALANCE ENDPOINTS
// =============================================================================

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	today := h.asOf(r)

	start := time.Now()
	report, err := h.Engine.Recalculate(r.Context(), id, today)
	observeRecalculation(time.Since(start), err)

	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "recalculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceReportDTO(report))
}

func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	entries, err := h.Store.ListEntries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err)
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DOCUMENT ENDPOINTS
// =============================================================================

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))
	docs, err := h.Store.ListDocuments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents", err)
		return
	}
	dtos := make([]DocumentDTO, 0, len(docs))
	for _, d := range docs {
		dtos = append(dtos, toDocumentDTO(d))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	employeeID := leave.EmployeeID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetEmployee(r.Context(), employeeID); err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required", nil)
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	doc := leave.Document{
		ID:         leave.DocumentID(req.ID),
		EmployeeID: employeeID,
		Type:       leave.DocumentType(req.Type),
		Days:       req.Days,
		Payload:    req.Payload,
	}
	if req.DateFrom != "" {
		d, err := leave.ParseDate(req.DateFrom)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date_from", err)
			return
		}
		doc.DateFrom = d
	}
	if req.DateTo != "" {
		d, err := leave.ParseDate(req.DateTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date_to", err)
			return
		}
		doc.DateTo = d
	}
	if !doc.DateFrom.IsZero() && !doc.DateTo.IsZero() && doc.DateTo.Before(doc.DateFrom) {
		writeError(w, http.StatusBadRequest, "date_to precedes date_from", leave.ErrInvalidDateRange)
		return
	}

	if err := h.Store.SaveDocument(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save document", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentDTO(doc))
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := leave.DocumentID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteDocument(r.Context(), id); err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "document not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// POLICY ENDPOINTS
// =============================================================================

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list policies", err)
		return
	}
	dtos := make([]PolicyDTO, 0, len(policies))
	for _, p := range policies {
		dtos = append(dtos, toPolicyDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := leave.PolicyID(chi.URLParam(r, "id"))
	p, err := h.Store.GetPolicy(r.Context(), id)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "policy not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(p))
}

func (h *Handler) SavePolicy(w http.ResponseWriter, r *http.Request) {
	var req SavePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	normDays := decimal.Zero
	if req.NormDays != "" {
		var err error
		normDays, err = decimal.NewFromString(req.NormDays)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid norm_days", err)
			return
		}
	}

	p := leave.Policy{
		ID:        leave.PolicyID(req.ID),
		TypeCode:  req.TypeCode,
		Name:      req.Name,
		Accruable: req.Accruable,
		NormDays:  normDays,
		RawRules:  []byte(req.Rules),
	}
	p.Rules = leave.DecodeRules(p.RawRules)

	if err := h.Store.SavePolicy(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save policy", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPolicyDTO(p))
}

// =============================================================================
// PAYROLL ENDPOINT
// =============================================================================

// GetPayEstimate answers "what would this leave span pay" for one policy.
// Query parameters: policy_id (required), from, to, days.
func (h *Handler) GetPayEstimate(w http.ResponseWriter, r *http.Request) {
	employeeID := leave.EmployeeID(chi.URLParam(r, "id"))
	policyID := leave.PolicyID(r.URL.Query().Get("policy_id"))
	if policyID == "" {
		writeError(w, http.StatusBadRequest, "policy_id is required", nil)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}
	p, err := h.Store.GetPolicy(r.Context(), policyID)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "policy not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load policy", err)
		return
	}
	docs, err := h.Store.ListDocuments(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents", err)
		return
	}

	var from, to leave.Date
	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = leave.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date", err)
			return
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = leave.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date", err)
			return
		}
	}

	days := decimal.Zero
	if s := r.URL.Query().Get("days"); s != "" {
		if days, err = decimal.NewFromString(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid days", err)
			return
		}
	} else if !from.IsZero() && !to.IsZero() {
		days = decimal.NewFromInt(int64(leave.BusinessDays(from, to)))
	}

	est := payroll.Pay(emp, p, days, from, to, docs)
	writeJSON(w, http.StatusOK, PayEstimateDTO{
		PolicyID:    string(p.ID),
		Formula:     est.Formula,
		DailyRate:   est.DailyRate.String(),
		PayableDays: est.PayableDays.String(),
		Total:       est.Total.StringFixed(2),
		Log:         est.Log,
	})
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

func (h *Handler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	today := h.asOf(r)

	reports, err := h.Engine.RecalculateAll(r.Context(), today)
	failed := 0
	if err != nil {
		// Per-employee failures are joined; the sweep itself continued.
		employees, listErr := h.Store.ListEmployees(r.Context())
		if listErr != nil {
			writeError(w, http.StatusInternalServerError, "recalculation sweep failed", err)
			return
		}
		failed = len(employees) - len(reports)
	}

	writeJSON(w, http.StatusOK, RecalculateResponse{
		Employees: len(reports),
		Failed:    failed,
		AsOf:      today.String(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
