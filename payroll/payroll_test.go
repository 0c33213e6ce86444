package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/payroll"
)

func salaryRecord(month string, amount float64, workedDays int) leave.Document {
	return leave.Document{
		Type:     leave.DocSalaryRecord,
		DateFrom: leave.MustDate(month),
		Payload:  map[string]any{"amount": amount, "worked_days": workedDays},
	}
}

func sixMonths2025() []leave.Document {
	return []leave.Document{
		salaryRecord("2025-01-01", 1800, 21),
		salaryRecord("2025-02-01", 1800, 21),
		salaryRecord("2025-03-01", 1800, 21),
		salaryRecord("2025-04-01", 1800, 21),
		salaryRecord("2025-05-01", 1800, 21),
		salaryRecord("2025-06-01", 1800, 21),
	}
}

// =============================================================================
// AVERAGE DAILY RATE
// =============================================================================

func TestAverageDailyRate_SixMonthWindow(t *testing.T) {
	// GIVEN: Six months at 1800 gross over 21 worked days each
	// WHEN: Averaging for a leave starting July 2025
	// THEN: 10800 / 126 = 85.7143 per day

	rate, log := payroll.AverageDailyRate(sixMonths2025(), leave.MustDate("2025-07-07"))

	assert.Equal(t, "85.7143", rate.String())
	assert.NotEmpty(t, log)
}

func TestAverageDailyRate_IgnoresRecordsOutsideWindow(t *testing.T) {
	docs := append(sixMonths2025(),
		salaryRecord("2024-12-01", 9000, 21), // before the window
		salaryRecord("2025-07-01", 9000, 21), // the leave month itself
	)

	rate, _ := payroll.AverageDailyRate(docs, leave.MustDate("2025-07-07"))

	assert.Equal(t, "85.7143", rate.String())
}

func TestAverageDailyRate_NoRecords(t *testing.T) {
	rate, log := payroll.AverageDailyRate(nil, leave.MustDate("2025-07-07"))

	assert.True(t, rate.IsZero())
	assert.Contains(t, log[len(log)-1], "rate is 0")
}

func TestAverageDailyRate_SkipsMalformedRecords(t *testing.T) {
	docs := []leave.Document{
		salaryRecord("2025-05-01", 1800, 21),
		{Type: leave.DocSalaryRecord, DateFrom: leave.MustDate("2025-06-01"),
			Payload: map[string]any{"amount": 1800.0}}, // no worked_days
		{Type: leave.DocSalaryRecord, DateFrom: leave.MustDate("2025-04-01"),
			Payload: map[string]any{"amount": 1800.0, "worked_days": 0}},
	}

	rate, _ := payroll.AverageDailyRate(docs, leave.MustDate("2025-07-07"))

	assert.Equal(t, "85.7143", rate.String())
}

// =============================================================================
// PAY ESTIMATES
// =============================================================================

func TestPay_AverageSalary(t *testing.T) {
	p := leave.Policy{Rules: leave.Rules{
		FinancialFormula: payroll.FormulaAverageSalary,
		MeasureUnit:      leave.UnitWorkingDays,
	}}

	est := payroll.Pay(leave.Employee{}, p, decimal.NewFromInt(10),
		leave.MustDate("2025-07-07"), leave.MustDate("2025-07-18"), sixMonths2025())

	assert.Equal(t, "85.7143", est.DailyRate.String())
	assert.Equal(t, "857.14", est.Total.String())
	assert.Equal(t, payroll.FormulaAverageSalary, est.Formula)
}

func TestPay_BaseSalary(t *testing.T) {
	emp := leave.Employee{BaseSalary: decimal.NewFromInt(2100)}
	p := leave.Policy{Rules: leave.Rules{FinancialFormula: payroll.FormulaBaseSalary}}

	est := payroll.Pay(emp, p, decimal.NewFromInt(5),
		leave.MustDate("2025-07-07"), leave.MustDate("2025-07-11"), nil)

	assert.Equal(t, "100", est.DailyRate.String())
	assert.Equal(t, "500", est.Total.String())
}

func TestPay_Unpaid(t *testing.T) {
	p := leave.Policy{Rules: leave.Rules{FinancialFormula: payroll.FormulaUnpaid}}

	est := payroll.Pay(leave.Employee{}, p, decimal.NewFromInt(5),
		leave.MustDate("2025-07-07"), leave.MustDate("2025-07-11"), nil)

	assert.True(t, est.Total.IsZero())
}

func TestPay_UnknownFormulaTreatedAsUnpaid(t *testing.T) {
	p := leave.Policy{Rules: leave.Rules{FinancialFormula: "lottery"}}

	est := payroll.Pay(leave.Employee{}, p, decimal.NewFromInt(5),
		leave.MustDate("2025-07-07"), leave.MustDate("2025-07-11"), nil)

	assert.True(t, est.Total.IsZero())
	require.NotEmpty(t, est.Log)
	assert.Contains(t, est.Log[len(est.Log)-1], "unknown financial formula")
}

func TestPay_CalendarDayPolicyRecountsPayableDays(t *testing.T) {
	// GIVEN: A 14-calendar-day leave on a KD policy
	// WHEN: Estimating pay
	// THEN: Only the 10 business days inside the span are paid

	emp := leave.Employee{BaseSalary: decimal.NewFromInt(2100)}
	p := leave.Policy{Rules: leave.Rules{
		FinancialFormula: payroll.FormulaBaseSalary,
		MeasureUnit:      leave.UnitCalendarDays,
	}}

	est := payroll.Pay(emp, p, decimal.NewFromInt(14),
		leave.MustDate("2025-07-07"), leave.MustDate("2025-07-20"), nil)

	assert.True(t, est.PayableDays.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "1000", est.Total.String())
}
