/*
childdays.go - Household-based extra vacation entitlement

PURPOSE:
  Employees with children get extra annual vacation days. The entitlement
  is a small step function over the household's child registrations:

    0 eligible children                 -> 0 days
    1-2 children under 14               -> 1 day
    3+ children under 14, or one
    disabled child of any count         -> 3 days

  A child counts while under 14 on the as-of date; a disabled child counts
  regardless of age.

SEE ALSO:
  - accrual.go: the yearly strategy consults this for child_based policies
  - engine.go: injectable via the Engine's ChildDays field
*/
package leave

// ChildEntitlementFunc computes extra vacation days from an employee's
// documents as of a date. Returns 0, 1 or 3.
type ChildEntitlementFunc func(docs []Document, asOf Date) int

// ExtraChildDays is the default ChildEntitlementFunc.
func ExtraChildDays(docs []Document, asOf Date) int {
	eligible := 0
	disabled := false

	for _, doc := range docs {
		if doc.Type != DocChildRegistration {
			continue
		}
		if doc.IsDisabled() {
			disabled = true
			eligible++
			continue
		}
		dob, ok := doc.ChildDOB()
		if !ok {
			dob = doc.DateFrom
		}
		if dob.IsZero() {
			continue
		}
		if dob.AddYears(14).After(asOf) {
			eligible++
		}
	}

	switch {
	case disabled || eligible >= 3:
		return 3
	case eligible >= 1:
		return 1
	default:
		return 0
	}
}
