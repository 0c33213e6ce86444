/*
basedate.go - Work-year anchor resolution

PURPOSE:
  An employee's accrual year is measured from a personal anchor date,
  normally the hire date. Qualifying long absences push the anchor forward:
  only the portion of such an absence beyond a grace threshold delays the
  work year, so a 40-day unpaid leave under a 28-day threshold shifts the
  anchor by 12 days.

QUALIFYING ABSENCES:
  - a usage document tied to a policy whose rules set shifts_working_year
  - a study-leave document flagged unpaid in its payload

SEE ALSO:
  - accrual.go: every strategy receives the resolved anchor
*/
package leave

// ResolveAnchor determines the employee's work-year anchor. The base is the
// earliest hire document's start date, falling back to the employee's stored
// start date. Each qualifying absence adds its calendar-day span in excess
// of the policy's threshold. ok is false when no anchor can be established,
// which callers treat as "no entitlements computable".
func ResolveAnchor(emp Employee, docs []Document, policies []Policy) (Date, bool) {
	anchor, ok := baseAnchor(emp, docs)
	if !ok {
		return Date{}, false
	}

	byID := make(map[PolicyID]Policy, len(policies))
	for _, p := range policies {
		byID[p.ID] = p
	}

	for _, doc := range docs {
		threshold, shifts := shiftThreshold(doc, byID)
		if !shifts {
			continue
		}
		span := doc.CalendarDays()
		if span > threshold {
			anchor = anchor.AddDays(span - threshold)
		}
	}
	return anchor, true
}

func baseAnchor(emp Employee, docs []Document) (Date, bool) {
	var earliest Date
	for _, doc := range docs {
		if doc.Type != DocHire || doc.DateFrom.IsZero() {
			continue
		}
		if earliest.IsZero() || doc.DateFrom.Before(earliest) {
			earliest = doc.DateFrom
		}
	}
	if !earliest.IsZero() {
		return earliest, true
	}
	if !emp.StartDate.IsZero() {
		return emp.StartDate, true
	}
	return Date{}, false
}

// shiftThreshold reports whether the document delays the work year and, if
// so, the grace threshold in calendar days.
func shiftThreshold(doc Document, policies map[PolicyID]Policy) (int, bool) {
	if doc.Type == DocStudyLeave && doc.Flag("unpaid") {
		return DefaultRules().ShiftThresholdDays(), true
	}
	p, ok := policies[doc.PolicyRef()]
	if !ok || !p.Rules.ShiftsWorkingYear {
		return 0, false
	}
	return p.Rules.ShiftThresholdDays(), true
}

// DateRange is an inclusive calendar interval.
type DateRange struct {
	From Date
	To   Date
}

// ShiftingIntervals returns the date ranges of the employee's work-year
// shifting absences, used by the monthly strategy's non-accrual deduction.
func ShiftingIntervals(docs []Document, policies []Policy) []DateRange {
	byID := make(map[PolicyID]Policy, len(policies))
	for _, p := range policies {
		byID[p.ID] = p
	}
	var out []DateRange
	for _, doc := range docs {
		if _, shifts := shiftThreshold(doc, byID); !shifts {
			continue
		}
		if doc.DateFrom.IsZero() || doc.DateTo.IsZero() || doc.DateTo.Before(doc.DateFrom) {
			continue
		}
		out = append(out, DateRange{doc.DateFrom, doc.DateTo})
	}
	return out
}
