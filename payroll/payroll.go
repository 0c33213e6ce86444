/*
Package payroll estimates the pay attached to a leave request.

PURPOSE:
  Leave policies carry a financial_formula rule deciding how taken days are
  compensated: at the employee's average daily earnings, at a flat fraction
  of base salary, or not at all. The average is the statutory six-month
  window: total gross over total worked days across the six calendar months
  preceding the leave.

KEY CONCEPTS:
  - Salary records are ordinary documents (type salary_record) whose payload
    carries the month's gross amount and worked-day count.
  - Calendar-day (KD) policies pay only the business days inside the leave
    span, so the payable day count is recounted from the date range.

SEE ALSO:
  - leave/policy.go: the financial_formula and measure_unit rules
*/
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// Financial formulas recognized on policies.
const (
	FormulaAverageSalary = "average_salary"
	FormulaBaseSalary    = "base_salary"
	FormulaUnpaid        = "unpaid"
)

// baseSalaryDivisor is the statutory average count of working days per month
// used by the flat base-salary formula.
var baseSalaryDivisor = decimal.NewFromInt(21)

// Estimate is the result of a pay calculation.
type Estimate struct {
	DailyRate   decimal.Decimal
	PayableDays decimal.Decimal
	Total       decimal.Decimal
	Formula     string
	Log         []string
}

// AverageDailyRate computes gross earnings per worked day over the six
// calendar months preceding asOf. Salary records outside the window are
// ignored; a window with no worked days yields a zero rate.
func AverageDailyRate(docs []leave.Document, asOf leave.Date) (decimal.Decimal, []string) {
	windowStart := leave.NewDate(asOf.Year(), asOf.Month(), 1).AddMonths(-6)
	windowEnd := leave.NewDate(asOf.Year(), asOf.Month(), 1).AddDays(-1)

	var log []string
	log = append(log, fmt.Sprintf("average window %s..%s", windowStart, windowEnd))

	gross := decimal.Zero
	workedDays := decimal.Zero

	for _, doc := range docs {
		if doc.Type != leave.DocSalaryRecord || doc.DateFrom.IsZero() {
			continue
		}
		if doc.DateFrom.Before(windowStart) || doc.DateFrom.After(windowEnd) {
			continue
		}
		amount, ok := doc.Amount("amount")
		if !ok {
			continue
		}
		days, ok := doc.Int("worked_days")
		if !ok || days <= 0 {
			continue
		}
		gross = gross.Add(amount)
		workedDays = workedDays.Add(decimal.NewFromInt(int64(days)))
		log = append(log, fmt.Sprintf("month %s: %s gross over %d days",
			doc.DateFrom, amount, days))
	}

	if workedDays.Sign() <= 0 {
		log = append(log, "no salary records in window, rate is 0")
		return decimal.Zero, log
	}

	rate := gross.Div(workedDays).Round(4)
	log = append(log, fmt.Sprintf("average daily rate %s / %s = %s", gross, workedDays, rate))
	return rate, log
}

// Pay estimates the compensation for taking the given leave span under the
// policy's financial formula. days is the quantity charged to the ledger;
// for calendar-day policies the payable count is recomputed as the business
// days inside [from, to].
func Pay(emp leave.Employee, p leave.Policy, days decimal.Decimal, from, to leave.Date, docs []leave.Document) Estimate {
	est := Estimate{Formula: p.Rules.FinancialFormula, PayableDays: days}

	if p.Rules.MeasureUnit == leave.UnitCalendarDays && !from.IsZero() && !to.IsZero() {
		payable := leave.BusinessDays(from, to)
		est.PayableDays = decimal.NewFromInt(int64(payable))
		est.Log = append(est.Log, fmt.Sprintf("calendar-day policy: %d payable business days in %s..%s",
			payable, from, to))
	}

	switch p.Rules.FinancialFormula {
	case FormulaAverageSalary:
		rate, rateLog := AverageDailyRate(docs, from)
		est.DailyRate = rate
		est.Log = append(est.Log, rateLog...)

	case FormulaBaseSalary:
		est.DailyRate = emp.BaseSalary.Div(baseSalaryDivisor).Round(4)
		est.Log = append(est.Log, fmt.Sprintf("base salary %s / %s = %s per day",
			emp.BaseSalary, baseSalaryDivisor, est.DailyRate))

	case FormulaUnpaid, "":
		est.DailyRate = decimal.Zero
		est.Log = append(est.Log, "unpaid leave type")

	default:
		est.DailyRate = decimal.Zero
		est.Log = append(est.Log, fmt.Sprintf("unknown financial formula %q, treated as unpaid",
			p.Rules.FinancialFormula))
	}

	est.Total = est.DailyRate.Mul(est.PayableDays).Round(2)
	return est
}
