package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployeeRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	emp := leave.Employee{
		ID:         "e1",
		FirstName:  "Anna",
		LastName:   "Ozola",
		Position:   "Engineer",
		Department: "Platform",
		StartDate:  leave.MustDate("2023-03-01"),
		BaseSalary: decimal.NewFromInt(1800),
	}
	require.NoError(t, s.SaveEmployee(ctx, emp))

	got, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, emp.FullName(), got.FullName())
	assert.Equal(t, leave.MustDate("2023-03-01"), got.StartDate)
	assert.True(t, got.BaseSalary.Equal(decimal.NewFromInt(1800)))
}

func TestGetEmployee_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetEmployee(context.Background(), "ghost")

	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestSaveEmployee_Upsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, leave.Employee{ID: "e1", LastName: "Ozola"}))
	require.NoError(t, s.SaveEmployee(ctx, leave.Employee{ID: "e1", LastName: "Berzina"}))

	got, err := s.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Berzina", got.LastName)

	all, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func TestDocumentRoundTrip_PayloadSurvives(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, leave.Employee{ID: "e1", LastName: "Ozola"}))

	doc := leave.Document{
		ID:         "d1",
		EmployeeID: "e1",
		Type:       leave.DocVacation,
		DateFrom:   leave.MustDate("2024-07-01"),
		DateTo:     leave.MustDate("2024-07-12"),
		Payload: map[string]any{
			"vacation_config_id": "annual",
			"use_immediately":    true,
		},
	}
	require.NoError(t, s.SaveDocument(ctx, doc))

	docs, err := s.ListDocuments(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, leave.PolicyID("annual"), docs[0].PolicyRef())
	assert.True(t, docs[0].Flag("use_immediately"))
	assert.Equal(t, leave.MustDate("2024-07-12"), docs[0].DateTo)
}

func TestListDocuments_ChronologicalOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, leave.Employee{ID: "e1", LastName: "Ozola"}))

	for _, d := range []leave.Document{
		{ID: "d-late", EmployeeID: "e1", Type: leave.DocVacation, DateFrom: leave.MustDate("2025-03-01")},
		{ID: "d-early", EmployeeID: "e1", Type: leave.DocHire, DateFrom: leave.MustDate("2023-03-01")},
	} {
		require.NoError(t, s.SaveDocument(ctx, d))
	}

	docs, err := s.ListDocuments(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, leave.DocumentID("d-early"), docs[0].ID)
}

func TestListDocumentsByType(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, leave.Employee{ID: "e1", LastName: "Ozola"}))
	require.NoError(t, s.SaveDocument(ctx, leave.Document{
		ID: "d1", EmployeeID: "e1", Type: leave.DocHire, DateFrom: leave.MustDate("2023-03-01")}))
	require.NoError(t, s.SaveDocument(ctx, leave.Document{
		ID: "d2", EmployeeID: "e1", Type: leave.DocVacation, DateFrom: leave.MustDate("2024-07-01")}))

	docs, err := s.ListDocumentsByType(ctx, "e1", leave.DocHire)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, leave.DocHire, docs[0].Type)
}

func TestDeleteDocument(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, leave.Employee{ID: "e1", LastName: "Ozola"}))
	require.NoError(t, s.SaveDocument(ctx, leave.Document{ID: "d1", EmployeeID: "e1", Type: leave.DocVacation}))

	require.NoError(t, s.DeleteDocument(ctx, "d1"))

	assert.ErrorIs(t, s.DeleteDocument(ctx, "d1"), leave.ErrDocumentNotFound)
}

// =============================================================================
// POLICIES
// =============================================================================

func TestPolicyRoundTrip_RulesDecodedOnRead(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p := leave.Policy{
		ID:        "annual",
		TypeCode:  1,
		Name:      "Ikgadejais atvalinajums",
		Accruable: true,
		NormDays:  decimal.NewFromInt(20),
		RawRules:  []byte(`{"accrual_method":"monthly","period_type":"working_year","measure_unit":"DD"}`),
	}
	require.NoError(t, s.SavePolicy(ctx, p))

	got, err := s.GetPolicy(ctx, "annual")
	require.NoError(t, err)
	assert.Equal(t, leave.MethodMonthly, got.Rules.AccrualMethod)
	assert.Equal(t, leave.UnitWorkingDays, got.Rules.MeasureUnit)
	assert.True(t, got.NormDays.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Accruable)
}

func TestPolicyRoundTrip_DoublyEncodedRules(t *testing.T) {
	// Rules imported from legacy systems arrive serialized twice; decoding
	// on read still recovers them.
	s := newStore(t)
	ctx := context.Background()

	p := leave.Policy{
		ID:       "study",
		Name:     "Macibu atvalinajums",
		RawRules: []byte(`"{\"accrual_method\":\"yearly\",\"max_per_year_dd\":20}"`),
	}
	require.NoError(t, s.SavePolicy(ctx, p))

	got, err := s.GetPolicy(ctx, "study")
	require.NoError(t, err)
	assert.Equal(t, leave.MethodYearly, got.Rules.AccrualMethod)
	require.NotNil(t, got.Rules.MaxPerYearDD)
	assert.Equal(t, 20, *got.Rules.MaxPerYearDD)
}

func TestGetPolicy_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetPolicy(context.Background(), "ghost")

	assert.ErrorIs(t, err, leave.ErrPolicyNotFound)
}

// =============================================================================
// LEDGER
// =============================================================================

func ledgerFixture(t *testing.T, s *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveEmployee(ctx, leave.Employee{ID: "e1", LastName: "Ozola"}))
	require.NoError(t, s.SavePolicy(ctx, leave.Policy{ID: "annual", Name: "Annual"}))
}

func TestReplaceForEmployee_ReplacesNotAppends(t *testing.T) {
	// GIVEN: A previously persisted ledger
	// WHEN: Replacing with a new entry set
	// THEN: Only the new set remains

	s := newStore(t)
	ctx := context.Background()
	ledgerFixture(t, s)

	first := []leave.Entry{
		{ID: "a-1", EmployeeID: "e1", PolicyID: "annual", Type: leave.EntryAccrual,
			PeriodFrom: leave.MustDate("2024-01-01"), PeriodTo: leave.MustDate("2024-12-31"),
			Days: decimal.NewFromInt(20), Remaining: decimal.NewFromInt(20)},
		{ID: "a-2", EmployeeID: "e1", PolicyID: "annual", Type: leave.EntryUsage,
			Days: decimal.NewFromInt(-5)},
	}
	require.NoError(t, s.ReplaceForEmployee(ctx, "e1", first))

	second := []leave.Entry{
		{ID: "b-1", EmployeeID: "e1", PolicyID: "annual", Type: leave.EntryAccrual,
			PeriodFrom: leave.MustDate("2024-01-01"), PeriodTo: leave.MustDate("2024-12-31"),
			Days: decimal.NewFromInt(20), Remaining: decimal.NewFromInt(15)},
	}
	require.NoError(t, s.ReplaceForEmployee(ctx, "e1", second))

	entries, err := s.ListEntries(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, leave.EntryID("b-1"), entries[0].ID)
	assert.True(t, entries[0].Remaining.Equal(decimal.NewFromInt(15)))
}

func TestReplaceForEmployee_EmptySetClearsLedger(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ledgerFixture(t, s)

	require.NoError(t, s.ReplaceForEmployee(ctx, "e1", []leave.Entry{
		{ID: "a-1", EmployeeID: "e1", PolicyID: "annual", Type: leave.EntryAccrual,
			Days: decimal.NewFromInt(20), Remaining: decimal.NewFromInt(20)},
	}))
	require.NoError(t, s.ReplaceForEmployee(ctx, "e1", nil))

	entries, err := s.ListEntries(ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryRoundTrip_DecimalPrecision(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ledgerFixture(t, s)

	days, _ := decimal.NewFromString("6.66668")
	require.NoError(t, s.ReplaceForEmployee(ctx, "e1", []leave.Entry{
		{ID: "a-1", EmployeeID: "e1", PolicyID: "annual", Type: leave.EntryAccrual,
			PeriodFrom: leave.MustDate("2025-03-01"), PeriodTo: leave.MustDate("2025-06-30"),
			Days: days, Remaining: days, Description: "partial year"},
	}))

	entries, err := s.ListEntries(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "6.66668", entries[0].Days.String())
	assert.Equal(t, "partial year", entries[0].Description)
	assert.Equal(t, leave.MustDate("2025-06-30"), entries[0].PeriodTo)
}

func TestListEntriesByPolicy(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ledgerFixture(t, s)
	require.NoError(t, s.SavePolicy(ctx, leave.Policy{ID: "donor", Name: "Donor"}))

	require.NoError(t, s.ReplaceForEmployee(ctx, "e1", []leave.Entry{
		{ID: "a-1", EmployeeID: "e1", PolicyID: "annual", Type: leave.EntryAccrual,
			Days: decimal.NewFromInt(20), Remaining: decimal.NewFromInt(20)},
		{ID: "d-1", EmployeeID: "e1", PolicyID: "donor", Type: leave.EntryAccrual,
			Days: decimal.NewFromInt(1), Remaining: decimal.NewFromInt(1)},
	}))

	entries, err := s.ListEntriesByPolicy(ctx, "e1", "donor")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, leave.PolicyID("donor"), entries[0].PolicyID)
}
