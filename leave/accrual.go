/*
accrual.go - Accrual strategies

PURPOSE:
  Four interchangeable algorithms turn an employee's history into positive
  ledger entries for one policy. Selection is data-driven: the policy's
  accrual_method rule picks the strategy, so adding a leave type never
  requires code changes.

STRATEGIES:
  monthly    - pro-rata accrual at norm_days/12 per month worked, split into
               one batch per working year, with a deduction for time spent
               on work-year shifting absences (that time earns nothing).
  yearly     - a fixed grant per calendar year in a small lookback window;
               child_based policies grant the household entitlement instead.
  per_event  - one batch per triggering document (life events, donor days),
               valid from the event until a usage deadline.
  on_request - no automatic accrual; emits eligibility log lines only.

  Strategies may emit entries for a DIFFERENT policy: a per-event benefit
  configured to feed annual leave emits its transferred_in already tagged
  with the annual policy's ID, and the orchestrator routes it there.

SEE ALSO:
  - basedate.go: the anchor every strategy measures from
  - expiration.go: what happens to unused batches
*/
package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STRATEGY CONTRACT
// =============================================================================

// AccrualContext is everything a strategy may read. Reference is the end of
// the last completed month; strategies never consult a clock.
type AccrualContext struct {
	Employee       Employee
	Policy         Policy
	Policies       []Policy
	Documents      []Document
	Anchor         Date
	Reference      Date
	ChildDays      int
	AnnualPolicyID PolicyID
}

// AccrualResult is a strategy's output: zero or more entries plus the
// human-readable trace shown in audit views.
type AccrualResult struct {
	Entries []Entry
	Log     []string
}

func (r *AccrualResult) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// AccrualStrategy produces accrual entries for one policy.
type AccrualStrategy interface {
	Method() string
	Accrue(ac AccrualContext) AccrualResult
}

// StrategyFor dispatches on the accrual_method rule. Unknown methods return
// nil; the orchestrator logs a diagnostic and moves on. Never a fatal error.
func StrategyFor(method string) AccrualStrategy {
	switch method {
	case MethodMonthly:
		return monthlyStrategy{}
	case MethodYearly:
		return yearlyStrategy{}
	case MethodPerEvent:
		return perEventStrategy{}
	case MethodOnRequest:
		return onRequestStrategy{}
	default:
		return nil
	}
}

// =============================================================================
// MONTHLY - Pro-rata annual leave
// =============================================================================

type monthlyStrategy struct{}

func (monthlyStrategy) Method() string { return MethodMonthly }

func (monthlyStrategy) Accrue(ac AccrualContext) AccrualResult {
	var res AccrualResult

	rate := ac.Policy.MonthlyRate()
	res.logf("monthly rate: %s / 12 = %s per month", ac.Policy.NormDays, rate)

	if ac.Anchor.After(ac.Reference) {
		res.logf("anchor %s is after reference %s, nothing accrued yet", ac.Anchor, ac.Reference)
		return res
	}

	total := MonthsBetween(ac.Anchor, ac.Reference)
	res.logf("worked %s months between %s and %s", total.Total.Round(5), ac.Anchor, ac.Reference)

	shifting := ShiftingIntervals(ac.Documents, ac.Policies)

	// One accrual batch per working year, each clipped to the reference and
	// reduced by the months spent on shifting absences inside it.
	for k := 0; ; k++ {
		from := ac.Anchor.AddYears(k)
		if from.After(ac.Reference) {
			break
		}
		to := MinDate(ac.Anchor.AddYears(k+1).AddDays(-1), ac.Reference)

		months := MonthsBetween(from, to).Total
		deducted := decimal.Zero
		for _, iv := range shifting {
			clipFrom := MaxDate(iv.From, from)
			clipTo := MinDate(iv.To, to)
			if clipFrom.After(clipTo) {
				continue
			}
			deducted = deducted.Add(MonthsBetween(clipFrom, clipTo).Total)
		}

		earned := months.Sub(deducted).Mul(rate).Round(5)
		if deducted.Sign() > 0 {
			res.logf("working year %s..%s: %s months, %s months non-accruing",
				from, to, months.Round(5), deducted.Round(5))
		}
		if earned.Sign() <= 0 {
			continue
		}

		res.Entries = append(res.Entries, Entry{
			EmployeeID: ac.Employee.ID,
			PolicyID:   ac.Policy.ID,
			Type:       EntryAccrual,
			PeriodFrom: from,
			PeriodTo:   to,
			Days:       earned,
			Remaining:  earned,
			Description: fmt.Sprintf("accrued %s days for working year %s to %s",
				earned.Round(2), from, to),
		})
		res.logf("working year %s..%s: accrued %s days", from, to, earned.Round(2))
	}

	return res
}

// =============================================================================
// YEARLY - Fixed per-calendar-year grants
// =============================================================================

type yearlyStrategy struct{}

func (yearlyStrategy) Method() string { return MethodYearly }

func (yearlyStrategy) Accrue(ac AccrualContext) AccrualResult {
	var res AccrualResult

	grant := ac.Policy.YearlyGrant()
	if ac.Policy.Rules.ChildBased {
		grant = decimal.NewFromInt(int64(ac.ChildDays))
		res.logf("child-based entitlement: %d day(s)", ac.ChildDays)
		if ac.ChildDays == 0 {
			res.logf("no eligible children, nothing granted")
			return res
		}
	}

	lookback := 1
	if ac.Policy.Rules.CarryOverYears != nil {
		lookback = *ac.Policy.Rules.CarryOverYears + 1
	}

	firstYear := ac.Reference.Year() - lookback
	if y := ac.Anchor.Year(); y > firstYear {
		firstYear = y
	}

	for year := firstYear; year <= ac.Reference.Year(); year++ {
		from := NewDate(year, 1, 1)
		if from.Before(ac.Anchor) {
			from = ac.Anchor
		}
		to := NewDate(year, 12, 31)

		res.Entries = append(res.Entries, Entry{
			EmployeeID: ac.Employee.ID,
			PolicyID:   ac.Policy.ID,
			Type:       EntryAccrual,
			PeriodFrom: from,
			PeriodTo:   to,
			Days:       grant,
			Remaining:  grant,
			Description: fmt.Sprintf("yearly grant of %s days for %d",
				grant, year),
		})
		res.logf("year %d: granted %s days (%s..%s)", year, grant, from, to)
	}

	return res
}

// =============================================================================
// PER-EVENT - Document-triggered batches
// =============================================================================

type perEventStrategy struct{}

func (perEventStrategy) Method() string { return MethodPerEvent }

func (perEventStrategy) Accrue(ac AccrualContext) AccrualResult {
	var res AccrualResult
	rules := ac.Policy.Rules

	for _, doc := range ac.Documents {
		if !eventMatches(doc, ac.Policy) {
			continue
		}

		eventDate := doc.DateFrom
		if dob, ok := doc.ChildDOB(); ok {
			eventDate = dob
		}
		if eventDate.IsZero() {
			continue
		}

		deadline := eventDeadline(eventDate, rules)

		if rules.RequiresHireDateCheck && deadline.Before(ac.Anchor) {
			res.logf("event %s predates employment (deadline %s, anchor %s), skipped",
				eventDate, deadline, ac.Anchor)
			continue
		}

		days := decimal.NewFromInt(int64(rules.EventDays))
		useNow := doc.Flag("use_immediately")
		if useNow {
			// One day compensates the absence itself, one day is net benefit.
			days = days.Mul(decimal.NewFromInt(2))
		}

		res.Entries = append(res.Entries, Entry{
			EmployeeID: ac.Employee.ID,
			PolicyID:   ac.Policy.ID,
			Type:       EntryAccrual,
			PeriodFrom: eventDate,
			PeriodTo:   deadline,
			Days:       days,
			Remaining:  days,
			DocumentID: doc.ID,
			Description: fmt.Sprintf("%s days for %s event on %s, usable until %s",
				days, doc.Type, eventDate, deadline),
		})
		res.logf("event on %s: %s days usable until %s", eventDate, days, deadline)

		if (rules.AddToAnnualImmediately || doc.Flag("add_to_annual")) && ac.AnnualPolicyID != "" {
			amount := decimal.NewFromInt(int64(rules.EventDays))
			res.Entries = append(res.Entries,
				Entry{
					EmployeeID: ac.Employee.ID,
					PolicyID:   ac.Policy.ID,
					Type:       EntryTransferredOut,
					PeriodFrom: eventDate,
					PeriodTo:   deadline,
					Days:       amount.Neg(),
					DocumentID: doc.ID,
					Description: fmt.Sprintf("%s days moved to annual leave", amount),
				},
				Entry{
					EmployeeID: ac.Employee.ID,
					PolicyID:   ac.AnnualPolicyID,
					Type:       EntryTransferredIn,
					PeriodFrom: eventDate,
					PeriodTo:   deadline,
					Days:       amount,
					Remaining:  amount,
					DocumentID: doc.ID,
					Description: fmt.Sprintf("%s days received from %s", amount, ac.Policy.Name),
				},
			)
			res.logf("moved %s days to annual leave", amount)
		}
	}

	if len(res.Entries) == 0 {
		res.logf("no qualifying events")
	}
	return res
}

// eventMatches reports whether the document triggers this per-event policy:
// by configured event_source document type, or by explicit policy tag.
func eventMatches(doc Document, p Policy) bool {
	if src := p.Rules.EventSource; src != "" {
		return string(doc.Type) == src
	}
	return doc.PolicyRef() == p.ID && doc.Type != DocHire && doc.Type != DocSalaryRecord
}

func eventDeadline(eventDate Date, rules Rules) Date {
	switch {
	case rules.UsageDeadlineMonths != nil:
		return eventDate.AddMonths(*rules.UsageDeadlineMonths)
	case rules.UsageDeadlineDays != nil:
		return eventDate.AddDays(*rules.UsageDeadlineDays)
	default:
		return eventDate.AddYears(1)
	}
}

// =============================================================================
// ON-REQUEST - No automatic accrual
// =============================================================================

type onRequestStrategy struct{}

func (onRequestStrategy) Method() string { return MethodOnRequest }

func (onRequestStrategy) Accrue(ac AccrualContext) AccrualResult {
	var res AccrualResult
	res.logf("%s is granted on request, no automatic accrual", ac.Policy.Name)
	if ac.Policy.Rules.ShiftsWorkingYear {
		res.logf("absences beyond %d calendar days delay the working year",
			ac.Policy.Rules.ShiftThresholdDays())
	}
	return res
}
