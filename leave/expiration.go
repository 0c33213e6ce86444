/*
expiration.go - Time-boundary expiration of unused batches

PURPOSE:
  Decides, per accrual batch, whether its unused remainder has lapsed by the
  reference date, and emits the corresponding expiration entries. A policy
  configured with expires_by_adding_to_annual moves the lapsing remainder to
  the annual leave policy (transferred_out + transferred_in) instead of
  burning it.

RULE PRECEDENCE:
  The first configured rule governs a batch, evaluated in this order:
    1. carry_over_years       batch period end + N years < reference
    2. expires_end_of_period  calendar-year policies lapse after Dec 31 of
                              the batch's start year, working-year policies
                              after the batch's own period end
    3. usage_deadline_days    batch period start + N days < reference
    4. usage_deadline_months  batch period start + N months < reference

  Only the remainder a PROVISIONAL FIFO pass leaves on the batch expires,
  never the original quantity; days already taken cannot lapse. The
  provisional pass is discarded and the real FIFO runs after expiration
  entries are in place.

SEE ALSO:
  - fifo.go: the provisional and final passes
*/
package leave

import (
	"fmt"
)

// ExpirationEntries evaluates the policy's expiration rules over the given
// per-policy entries and returns the new expiration/transfer entries plus
// trace lines. transferIn entries it returns may be tagged with the annual
// policy's ID; the orchestrator routes them.
func ExpirationEntries(p Policy, annualID PolicyID, entries []Entry, reference Date) ([]Entry, []string) {
	var out []Entry
	var log []string

	remainders := provisionalRemainders(entries)

	for i, batch := range entries {
		if !batch.IsBatch() {
			continue
		}
		rem := remainders[i]
		if rem.Sign() <= 0 {
			continue
		}
		if !batchLapsed(p.Rules, batch, reference) {
			continue
		}

		if p.Rules.ExpiresByAddingToAnnual && annualID != "" && annualID != p.ID {
			out = append(out,
				Entry{
					EmployeeID: batch.EmployeeID,
					PolicyID:   p.ID,
					Type:       EntryTransferredOut,
					PeriodFrom: batch.PeriodFrom,
					PeriodTo:   batch.PeriodTo,
					Days:       rem.Neg(),
					DocumentID: batch.DocumentID,
					Description: fmt.Sprintf("%s unused days moved to annual leave", rem),
				},
				Entry{
					EmployeeID: batch.EmployeeID,
					PolicyID:   annualID,
					Type:       EntryTransferredIn,
					PeriodFrom: batch.PeriodFrom,
					PeriodTo:   batch.PeriodTo,
					Days:       rem,
					Remaining:  rem,
					DocumentID: batch.DocumentID,
					Description: fmt.Sprintf("%s days received from %s", rem, p.Name),
				},
			)
			log = append(log, fmt.Sprintf("batch %s..%s lapsed, %s days moved to annual leave",
				batch.PeriodFrom, batch.PeriodTo, rem))
			continue
		}

		out = append(out, Entry{
			EmployeeID: batch.EmployeeID,
			PolicyID:   p.ID,
			Type:       EntryExpiration,
			PeriodFrom: batch.PeriodFrom,
			PeriodTo:   batch.PeriodTo,
			Days:       rem.Neg(),
			DocumentID: batch.DocumentID,
			Description: fmt.Sprintf("%s unused days expired for period %s to %s",
				rem, batch.PeriodFrom, batch.PeriodTo),
		})
		log = append(log, fmt.Sprintf("batch %s..%s: %s unused days expired",
			batch.PeriodFrom, batch.PeriodTo, rem))
	}

	return out, log
}

// batchLapsed applies the first configured rule to one batch.
func batchLapsed(rules Rules, batch Entry, reference Date) bool {
	switch {
	case rules.CarryOverYears != nil:
		return batch.PeriodTo.AddYears(*rules.CarryOverYears).Before(reference)

	case rules.ExpiresEndOfPeriod:
		if rules.PeriodType == PeriodCalendarYear {
			return NewDate(batch.PeriodFrom.Year(), 12, 31).Before(reference)
		}
		return batch.PeriodTo.Before(reference)

	case rules.UsageDeadlineDays != nil:
		return batch.PeriodFrom.AddDays(*rules.UsageDeadlineDays).Before(reference)

	case rules.UsageDeadlineMonths != nil:
		return batch.PeriodFrom.AddMonths(*rules.UsageDeadlineMonths).Before(reference)
	}
	return false
}
