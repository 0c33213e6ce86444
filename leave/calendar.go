/*
calendar.go - Day-granularity date type and month-fraction arithmetic

PURPOSE:
  All date handling for the accrual engine. Dates are day-granular and UTC;
  the engine never cares about clock time. The central piece is MonthsBetween,
  which turns a date range into a continuous month-equivalent used for
  pro-rata accrual.

KEY CONCEPTS:
  - Date: a normalized (midnight UTC) calendar day.
  - MonthSpan: full months + fractional month + total, as decimals.
  - Reference date: the end of the last fully completed calendar month.
    Accrual is always computed "as of" a reference date, never "as of now",
    so runs are deterministic and testable with injected dates.

MONTH-FRACTION ALGORITHM:
  ymStart = year(from)*12 + month(from) + 1
  ymEnd   = year(to)*12 + month(to)
  full    = max(ymEnd - ymStart, 0)
  Same-month ranges (ymEnd-ymStart == -1) contribute
    (day(to) - day(from) + 1) / daysInMonth(from), clamped to >= 0.
  Otherwise the fraction is the remainder of the start month plus the
  elapsed portion of the end month. No rounding happens here; callers
  round final day quantities only.

SEE ALSO:
  - accrual.go: multiplies month totals by monthly rates
  - basedate.go: anchor arithmetic built on Date
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day-granularity calendar point
// =============================================================================

// Date is a calendar day. The underlying time is always midnight UTC.
type Date struct {
	t time.Time
}

// NewDate constructs a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time.Time to a Date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "2006-01-02". The zero Date is returned on failure.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// MustDate is ParseDate for literals in tests and seed data.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.t.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.t.AddDate(0, n, 0)) }
func (d Date) AddYears(n int) Date  { return DateOf(d.t.AddDate(n, 0, 0)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MinDate / MaxDate pick the earlier / later of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

// DaysInMonth returns the number of days in the month containing d.
func DaysInMonth(d Date) int {
	first := NewDate(d.Year(), d.Month(), 1)
	return first.AddMonths(1).AddDays(-1).Day()
}

// EndOfMonth returns the last day of the month containing d.
func EndOfMonth(d Date) Date {
	return NewDate(d.Year(), d.Month(), 1).AddMonths(1).AddDays(-1)
}

// ReferenceDate returns the end of the last fully completed month as of today.
// If today is itself a month end, the current month counts as completed.
func ReferenceDate(today Date) Date {
	eom := EndOfMonth(today)
	if today.Equal(eom) {
		return today
	}
	return NewDate(today.Year(), today.Month(), 1).AddDays(-1)
}

// CalendarDaysInclusive counts every day from from to to, both ends included.
// Returns 0 for inverted ranges.
func CalendarDaysInclusive(from, to Date) int {
	if from.After(to) {
		return 0
	}
	return int(to.t.Sub(from.t).Hours()/24) + 1
}

// BusinessDays counts Mon-Fri days in [from, to]. No holiday calendar is
// applied. Returns 0 for inverted ranges.
func BusinessDays(from, to Date) int {
	if from.After(to) {
		return 0
	}
	n := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if !d.IsWeekend() {
			n++
		}
	}
	return n
}

// =============================================================================
// MONTH-FRACTION CALCULATOR
// =============================================================================

// MonthSpan is the month-equivalent of a date range.
type MonthSpan struct {
	Full     int
	Fraction decimal.Decimal
	Total    decimal.Decimal
}

// MonthsBetween computes the month-equivalent of [from, to] using the
// year-month-day method described in the package header. Inverted ranges
// yield a zero span.
func MonthsBetween(from, to Date) MonthSpan {
	if from.After(to) {
		return MonthSpan{Fraction: decimal.Zero, Total: decimal.Zero}
	}

	ymStart := from.Year()*12 + int(from.Month()) + 1
	ymEnd := to.Year()*12 + int(to.Month())

	full := ymEnd - ymStart
	if full < 0 {
		full = 0
	}

	var fraction decimal.Decimal
	if ymEnd-ymStart == -1 {
		// Same calendar month: fraction is the covered share of that month.
		days := to.Day() - from.Day() + 1
		if days < 0 {
			days = 0
		}
		fraction = decimal.NewFromInt(int64(days)).
			Div(decimal.NewFromInt(int64(DaysInMonth(from))))
	} else {
		startRemainder := decimal.NewFromInt(int64(DaysInMonth(from) - from.Day() + 1)).
			Div(decimal.NewFromInt(int64(DaysInMonth(from))))
		endElapsed := decimal.NewFromInt(int64(to.Day())).
			Div(decimal.NewFromInt(int64(DaysInMonth(to))))
		fraction = startRemainder.Add(endElapsed)
	}

	return MonthSpan{
		Full:     full,
		Fraction: fraction,
		Total:    decimal.NewFromInt(int64(full)).Add(fraction),
	}
}
