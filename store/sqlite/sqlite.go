/*
Package sqlite provides a SQLite-backed implementation of the leave stores.

PURPOSE:
  Implements leave.Store (employees, documents, policies, ledger entries)
  on SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  employees:     Identity and base compensation
  documents:     The immutable event history (hire, leave taken, life
                 events, salary records), payload as JSON
  policies:      Leave type configuration, rules as JSON
  leave_entries: The regenerated ledger

LEDGER SEMANTICS:
  leave_entries is NOT append-only: every recomputation deletes the
  employee's entries and inserts the rebuilt set. ReplaceForEmployee does
  both inside a single database transaction, so a failed rebuild rolls
  back and readers never observe a half-rebuilt ledger.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: Interface definitions
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		position TEXT,
		department TEXT,
		start_date TEXT,
		base_salary TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		doc_type TEXT NOT NULL,
		date_from TEXT,
		date_to TEXT,
		days INTEGER NOT NULL DEFAULT 0,
		payload_json TEXT,
		FOREIGN KEY (employee_id) REFERENCES employees(id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_employee
		ON documents(employee_id);
	CREATE INDEX IF NOT EXISTS idx_documents_employee_type
		ON documents(employee_id, doc_type);

	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		type_code INTEGER NOT NULL,
		name TEXT NOT NULL,
		is_accruable INTEGER NOT NULL DEFAULT 1,
		norm_days TEXT NOT NULL DEFAULT '0',
		rules_json TEXT
	);

	CREATE TABLE IF NOT EXISTS leave_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		policy_id TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		period_from TEXT,
		period_to TEXT,
		days TEXT NOT NULL,
		remaining TEXT NOT NULL DEFAULT '0',
		document_id TEXT,
		description TEXT,
		FOREIGN KEY (employee_id) REFERENCES employees(id),
		FOREIGN KEY (policy_id) REFERENCES policies(id)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_employee
		ON leave_entries(employee_id);
	CREATE INDEX IF NOT EXISTS idx_entries_employee_policy
		ON leave_entries(employee_id, policy_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id leave.EmployeeID) (leave.Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, position, department, start_date, base_salary
		FROM employees WHERE id = ?`, id)
	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return leave.Employee{}, leave.ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, position, department, start_date, base_salary
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) SaveEmployee(ctx context.Context, e leave.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, position, department, start_date, base_salary)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			position = excluded.position,
			department = excluded.department,
			start_date = excluded.start_date,
			base_salary = excluded.base_salary`,
		e.ID, e.FirstName, e.LastName, e.Position, e.Department,
		dateString(e.StartDate), e.BaseSalary.String())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (leave.Employee, error) {
	var (
		emp        leave.Employee
		position   sql.NullString
		department sql.NullString
		startDate  sql.NullString
		baseSalary string
	)
	err := row.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &position, &department,
		&startDate, &baseSalary)
	if err != nil {
		return emp, err
	}
	emp.Position = position.String
	emp.Department = department.String
	emp.StartDate = parseDate(startDate.String)
	emp.BaseSalary, _ = decimal.NewFromString(baseSalary)
	return emp, nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func (s *Store) ListDocuments(ctx context.Context, employeeID leave.EmployeeID) ([]leave.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT id, employee_id, doc_type, date_from, date_to, days, payload_json
		FROM documents WHERE employee_id = ?
		ORDER BY date_from, id`, employeeID)
}

func (s *Store) ListDocumentsByType(ctx context.Context, employeeID leave.EmployeeID, t leave.DocumentType) ([]leave.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT id, employee_id, doc_type, date_from, date_to, days, payload_json
		FROM documents WHERE employee_id = ? AND doc_type = ?
		ORDER BY date_from, id`, employeeID, t)
}

func (s *Store) SaveDocument(ctx context.Context, d leave.Document) error {
	payloadJSON, _ := json.Marshal(d.Payload)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, employee_id, doc_type, date_from, date_to, days, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			doc_type = excluded.doc_type,
			date_from = excluded.date_from,
			date_to = excluded.date_to,
			days = excluded.days,
			payload_json = excluded.payload_json`,
		d.ID, d.EmployeeID, d.Type, dateString(d.DateFrom), dateString(d.DateTo),
		d.Days, string(payloadJSON))
	return err
}

func (s *Store) DeleteDocument(ctx context.Context, id leave.DocumentID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrDocumentNotFound
	}
	return nil
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]leave.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Document
	for rows.Next() {
		var (
			doc         leave.Document
			dateFrom    sql.NullString
			dateTo      sql.NullString
			payloadJSON sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.EmployeeID, &doc.Type,
			&dateFrom, &dateTo, &doc.Days, &payloadJSON); err != nil {
			return nil, err
		}
		doc.DateFrom = parseDate(dateFrom.String)
		doc.DateTo = parseDate(dateTo.String)
		if payloadJSON.String != "" {
			json.Unmarshal([]byte(payloadJSON.String), &doc.Payload)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// =============================================================================
// POLICIES
// =============================================================================

func (s *Store) GetPolicy(ctx context.Context, id leave.PolicyID) (leave.Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type_code, name, is_accruable, norm_days, rules_json
		FROM policies WHERE id = ?`, id)
	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return leave.Policy{}, leave.ErrPolicyNotFound
	}
	return p, err
}

func (s *Store) ListPolicies(ctx context.Context) ([]leave.Policy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type_code, name, is_accruable, norm_days, rules_json
		FROM policies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SavePolicy(ctx context.Context, p leave.Policy) error {
	raw := p.RawRules
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policies (id, type_code, name, is_accruable, norm_days, rules_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type_code = excluded.type_code,
			name = excluded.name,
			is_accruable = excluded.is_accruable,
			norm_days = excluded.norm_days,
			rules_json = excluded.rules_json`,
		p.ID, p.TypeCode, p.Name, boolInt(p.Accruable), p.NormDays.String(), string(raw))
	return err
}

func scanPolicy(row scanner) (leave.Policy, error) {
	var (
		p         leave.Policy
		accruable int
		normDays  string
		rulesJSON sql.NullString
	)
	err := row.Scan(&p.ID, &p.TypeCode, &p.Name, &accruable, &normDays, &rulesJSON)
	if err != nil {
		return p, err
	}
	p.Accruable = accruable != 0
	p.NormDays, _ = decimal.NewFromString(normDays)
	p.RawRules = []byte(rulesJSON.String)
	// Rules decoding never fails; malformed JSON degrades to defaults.
	p.Rules = leave.DecodeRules(p.RawRules)
	return p, nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) ListEntries(ctx context.Context, employeeID leave.EmployeeID) ([]leave.Entry, error) {
	return s.queryEntries(ctx, `
		SELECT id, employee_id, policy_id, entry_type, period_from, period_to,
		       days, remaining, document_id, description
		FROM leave_entries WHERE employee_id = ?
		ORDER BY policy_id, id`, employeeID)
}

func (s *Store) ListEntriesByPolicy(ctx context.Context, employeeID leave.EmployeeID, policyID leave.PolicyID) ([]leave.Entry, error) {
	return s.queryEntries(ctx, `
		SELECT id, employee_id, policy_id, entry_type, period_from, period_to,
		       days, remaining, document_id, description
		FROM leave_entries WHERE employee_id = ? AND policy_id = ?
		ORDER BY id`, employeeID, policyID)
}

// ReplaceForEmployee wipes and rewrites the employee's ledger in one
// database transaction. On any failure the transaction rolls back and the
// previous ledger remains visible.
func (s *Store) ReplaceForEmployee(ctx context.Context, employeeID leave.EmployeeID, entries []leave.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leave_entries WHERE employee_id = ?`, employeeID); err != nil {
		return err
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO leave_entries (id, employee_id, policy_id, entry_type,
				period_from, period_to, days, remaining, document_id, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.EmployeeID, e.PolicyID, e.Type,
			dateString(e.PeriodFrom), dateString(e.PeriodTo),
			e.Days.String(), e.Remaining.String(), e.DocumentID, e.Description)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]leave.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Entry
	for rows.Next() {
		var (
			e           leave.Entry
			periodFrom  sql.NullString
			periodTo    sql.NullString
			days        string
			remaining   string
			documentID  sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.PolicyID, &e.Type,
			&periodFrom, &periodTo, &days, &remaining, &documentID, &description); err != nil {
			return nil, err
		}
		e.PeriodFrom = parseDate(periodFrom.String)
		e.PeriodTo = parseDate(periodTo.String)
		e.Days, _ = decimal.NewFromString(days)
		e.Remaining, _ = decimal.NewFromString(remaining)
		e.DocumentID = leave.DocumentID(documentID.String)
		e.Description = description.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func dateString(d leave.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s string) leave.Date {
	if s == "" {
		return leave.Date{}
	}
	d, err := leave.ParseDate(s)
	if err != nil {
		return leave.Date{}
	}
	return d
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
