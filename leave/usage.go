/*
usage.go - Usage extraction

PURPOSE:
  Turns leave-taking documents into negative ledger entries. A document is
  usage for a policy when its payload tags that policy. The quantity is the
  business-day count of the document's span (Mon-Fri, no holiday calendar).
  Zero-length or inverted spans contribute nothing.

SEE ALSO:
  - fifo.go: how usage is allocated against accrual batches
*/
package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// usageDocTypes are document types that can represent taken leave.
var usageDocTypes = map[DocumentType]bool{
	DocVacation:    true,
	DocUnpaidLeave: true,
	DocStudyLeave:  true,
	DocDonorDay:    true,
}

// UsageEntries emits one negative entry per usage document tied to the
// policy, along with trace lines.
func UsageEntries(emp Employee, p Policy, docs []Document) ([]Entry, []string) {
	var entries []Entry
	var log []string

	for _, doc := range docs {
		if !usageDocTypes[doc.Type] || doc.PolicyRef() != p.ID {
			continue
		}
		if doc.DateFrom.IsZero() {
			continue
		}

		to := doc.DateTo
		if to.IsZero() {
			to = doc.DateFrom
		}
		days := BusinessDays(doc.DateFrom, to)
		if days <= 0 {
			log = append(log, fmt.Sprintf("document %s..%s has no business days, skipped",
				doc.DateFrom, to))
			continue
		}

		entries = append(entries, Entry{
			EmployeeID: emp.ID,
			PolicyID:   p.ID,
			Type:       EntryUsage,
			PeriodFrom: doc.DateFrom,
			PeriodTo:   to,
			Days:       decimal.NewFromInt(int64(days)).Neg(),
			DocumentID: doc.ID,
			Description: fmt.Sprintf("used %d days from %s to %s",
				days, doc.DateFrom, to),
		})
		log = append(log, fmt.Sprintf("used %d business days %s..%s", days, doc.DateFrom, to))
	}

	return entries, log
}
