/*
policy.go - Leave policy model and rule decoding

PURPOSE:
  A Policy is one leave type: a yearly entitlement baseline plus a declarative
  rule map that selects the accrual algorithm and the expiration behavior.
  Policies are administered externally; the engine only reads them.

RULE DECODING:
  Rules arrive as persisted JSON and are not trusted: the stored value may be
  a JSON object, a JSON string containing JSON (double encoding happens when
  a client serializes twice), or garbage. Decoding never fails; malformed
  input degrades to the documented defaults. Numeric values may arrive as
  JSON numbers or as strings. Unknown keys are ignored.

DEFAULTS:
  period_type            working_year
  measure_unit           DD
  threshold weeks        4 (28 calendar days)
  carry_over_years       unset (no carry-over rule)
  usage deadline         unset (per-event falls back to +1 year)
  event_days             1

SEE ALSO:
  - accrual.go: dispatches on Rules.AccrualMethod
  - expiration.go: consumes the expiration-related rules
*/
package leave

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POLICY
// =============================================================================

// Policy is one leave type's configuration row.
type Policy struct {
	ID        PolicyID
	TypeCode  int
	Name      string
	Accruable bool
	NormDays  decimal.Decimal
	Rules     Rules
	RawRules  []byte
}

// =============================================================================
// RULES
// =============================================================================

// Accrual methods recognized by the engine. Anything else produces a
// diagnostic log line and no entries.
const (
	MethodMonthly   = "monthly"
	MethodYearly    = "yearly"
	MethodPerEvent  = "per_event"
	MethodOnRequest = "on_request"
)

// Period types.
const (
	PeriodWorkingYear  = "working_year"
	PeriodCalendarYear = "calendar_year"
)

// Measure units.
const (
	UnitWorkingDays  = "DD"
	UnitCalendarDays = "KD"
)

// Rules is the decoded, typed form of a policy's rule map. Pointer fields
// distinguish "unset" from zero.
type Rules struct {
	AccrualMethod string
	PeriodType    string
	MeasureUnit   string

	PaymentStatus    string
	FinancialFormula string

	ShiftsWorkingYear        bool
	ShiftThresholdWeeks      int
	CarryOverYears           *int
	ExpiresEndOfPeriod       bool
	ExpiresByAddingToAnnual  bool
	UsageDeadlineDays        *int
	UsageDeadlineMonths      *int
	EventSource              string
	EventDays                int
	RequiresHireDateCheck    bool
	ChildBased               bool
	AddToAnnualImmediately   bool
	MaxPerYearDD             *int
}

// DefaultRules returns the rule set every decode starts from.
func DefaultRules() Rules {
	return Rules{
		PeriodType:          PeriodWorkingYear,
		MeasureUnit:         UnitWorkingDays,
		ShiftThresholdWeeks: 4,
		EventDays:           1,
	}
}

// ShiftThresholdDays is the calendar-day grace threshold for working-year
// shifting absences. Zero weeks means no grace period.
func (r Rules) ShiftThresholdDays() int {
	weeks := r.ShiftThresholdWeeks
	if weeks < 0 {
		weeks = 4
	}
	return weeks * 7
}

// DecodeRules turns persisted rule JSON into a Rules value. It tolerates a
// JSON object, a doubly encoded JSON string, and malformed input, which all
// degrade to defaults rather than erroring.
func DecodeRules(raw []byte) Rules {
	rules := DefaultRules()

	m := decodeRuleMap(raw)
	if m == nil {
		return rules
	}

	if s, ok := ruleString(m, "accrual_method"); ok {
		rules.AccrualMethod = s
	}
	if s, ok := ruleString(m, "period_type"); ok {
		rules.PeriodType = s
	}
	if s, ok := ruleString(m, "measure_unit"); ok {
		rules.MeasureUnit = s
	}
	if s, ok := ruleString(m, "payment_status"); ok {
		rules.PaymentStatus = s
	}
	if s, ok := ruleString(m, "financial_formula"); ok {
		rules.FinancialFormula = s
	}
	if s, ok := ruleString(m, "event_source"); ok {
		rules.EventSource = s
	}

	if b, ok := ruleBool(m, "shifts_working_year"); ok {
		rules.ShiftsWorkingYear = b
	}
	if b, ok := ruleBool(m, "expires_end_of_period"); ok {
		rules.ExpiresEndOfPeriod = b
	}
	if b, ok := ruleBool(m, "expires_by_adding_to_annual"); ok {
		rules.ExpiresByAddingToAnnual = b
	}
	if b, ok := ruleBool(m, "requires_hire_date_check"); ok {
		rules.RequiresHireDateCheck = b
	}
	if b, ok := ruleBool(m, "child_based"); ok {
		rules.ChildBased = b
	}
	if b, ok := ruleBool(m, "add_to_annual_immediately"); ok {
		rules.AddToAnnualImmediately = b
	}

	if n, ok := ruleInt(m, "shifts_working_year_threshold_weeks"); ok && n >= 0 {
		// Zero is meaningful: no grace period, every absent day shifts.
		rules.ShiftThresholdWeeks = n
	}
	if n, ok := ruleInt(m, "event_days"); ok && n > 0 {
		rules.EventDays = n
	}
	if n, ok := ruleInt(m, "carry_over_years"); ok {
		rules.CarryOverYears = &n
	}
	if n, ok := ruleInt(m, "usage_deadline_days"); ok {
		rules.UsageDeadlineDays = &n
	}
	if n, ok := ruleInt(m, "usage_deadline_months"); ok {
		rules.UsageDeadlineMonths = &n
	}
	if n, ok := ruleInt(m, "max_per_year_dd"); ok {
		rules.MaxPerYearDD = &n
	}

	return rules
}

// decodeRuleMap unwraps up to two levels of string encoding before giving up.
func decodeRuleMap(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	for i := 0; i < 3; i++ {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err == nil {
			return m
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		raw = []byte(s)
	}
	return nil
}

func ruleString(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func ruleBool(m map[string]any, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return b == "1" || b == "true" || b == "yes", true
	case float64:
		return b != 0, true
	}
	return false, false
}

func ruleInt(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// =============================================================================
// POLICY HELPERS
// =============================================================================

// AnnualPolicy finds the monthly-accruing annual leave policy among the
// given set, ok=false when none is configured. Transfers from other
// policies land here.
func AnnualPolicy(policies []Policy) (Policy, bool) {
	for _, p := range policies {
		if p.Rules.AccrualMethod == MethodMonthly {
			return p, true
		}
	}
	return Policy{}, false
}

// MonthlyRate is the policy's per-month accrual, norm_days / 12 rounded to
// five decimal places.
func (p Policy) MonthlyRate() decimal.Decimal {
	return p.NormDays.Div(decimal.NewFromInt(12)).Round(5)
}

// YearlyGrant is the fixed per-year quantity for yearly policies:
// max_per_year_dd when capped, norm_days otherwise.
func (p Policy) YearlyGrant() decimal.Decimal {
	if p.Rules.MaxPerYearDD != nil {
		return decimal.NewFromInt(int64(*p.Rules.MaxPerYearDD))
	}
	return p.NormDays
}
