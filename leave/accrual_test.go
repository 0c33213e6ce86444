package leave_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func annualPolicy() leave.Policy {
	return leave.Policy{
		ID:        "annual",
		Name:      "Annual leave",
		Accruable: true,
		NormDays:  dec(20),
		Rules: leave.Rules{
			AccrualMethod: leave.MethodMonthly,
			PeriodType:    leave.PeriodWorkingYear,
			MeasureUnit:   leave.UnitWorkingDays,
		},
	}
}

func accrueWith(p leave.Policy, ac leave.AccrualContext) leave.AccrualResult {
	strategy := leave.StrategyFor(p.Rules.AccrualMethod)
	if strategy == nil {
		return leave.AccrualResult{}
	}
	ac.Policy = p
	return strategy.Accrue(ac)
}

func entriesOfType(entries []leave.Entry, t leave.EntryType) []leave.Entry {
	var out []leave.Entry
	for _, e := range entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func totalDays(entries []leave.Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Days)
	}
	return sum
}

// =============================================================================
// DISPATCH
// =============================================================================

func TestStrategyFor(t *testing.T) {
	assert.NotNil(t, leave.StrategyFor(leave.MethodMonthly))
	assert.NotNil(t, leave.StrategyFor(leave.MethodYearly))
	assert.NotNil(t, leave.StrategyFor(leave.MethodPerEvent))
	assert.NotNil(t, leave.StrategyFor(leave.MethodOnRequest))
	assert.Nil(t, leave.StrategyFor("quarterly"))
	assert.Nil(t, leave.StrategyFor(""))
}

// =============================================================================
// MONTHLY STRATEGY
// =============================================================================

func TestMonthly_SixMonthsAtNormTwenty(t *testing.T) {
	// GIVEN: Anchor 2025-01-01, reference 2025-06-30, norm 20
	// WHEN: Accruing monthly
	// THEN: Rate 1.66667, six months worked, ~10.00 days earned

	p := annualPolicy()
	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Anchor:    leave.MustDate("2025-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	require.Len(t, res.Entries, 1)
	entry := res.Entries[0]
	assert.Equal(t, leave.EntryAccrual, entry.Type)
	assert.Equal(t, "10.00", entry.Days.Round(2).String())
	assert.True(t, entry.Remaining.Equal(entry.Days))
	assert.Equal(t, leave.MustDate("2025-01-01"), entry.PeriodFrom)
	assert.Equal(t, leave.MustDate("2025-06-30"), entry.PeriodTo)
}

func TestMonthly_SplitsPerWorkingYear(t *testing.T) {
	// Two and a half years of service produce three batches, the last one
	// clipped to the reference.
	p := annualPolicy()
	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Anchor:    leave.MustDate("2023-03-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	require.Len(t, res.Entries, 3)
	assert.Equal(t, leave.MustDate("2023-03-01"), res.Entries[0].PeriodFrom)
	assert.Equal(t, leave.MustDate("2024-02-29"), res.Entries[0].PeriodTo)
	assert.Equal(t, leave.MustDate("2024-03-01"), res.Entries[1].PeriodFrom)
	assert.Equal(t, leave.MustDate("2025-02-28"), res.Entries[1].PeriodTo)
	assert.Equal(t, leave.MustDate("2025-03-01"), res.Entries[2].PeriodFrom)
	assert.Equal(t, leave.MustDate("2025-06-30"), res.Entries[2].PeriodTo)

	// Full working years earn the full norm.
	assert.Equal(t, "20.00", res.Entries[0].Days.Round(2).String())
	assert.Equal(t, "20.00", res.Entries[1].Days.Round(2).String())
}

func TestMonthly_NonAccrualDeduction(t *testing.T) {
	// GIVEN: A two-month child-care absence inside the working year
	// WHEN: Accruing annual leave
	// THEN: Those months earn nothing

	p := annualPolicy()
	policies := []leave.Policy{p, {
		ID: "child-care",
		Rules: leave.Rules{
			AccrualMethod:     leave.MethodOnRequest,
			ShiftsWorkingYear: true,
		},
	}}
	docs := []leave.Document{{
		Type:     leave.DocUnpaidLeave,
		DateFrom: leave.MustDate("2025-03-01"),
		DateTo:   leave.MustDate("2025-04-30"),
		Payload:  map[string]any{"vacation_config_id": "child-care"},
	}}

	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Policies:  policies,
		Documents: docs,
		Anchor:    leave.MustDate("2025-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	require.Len(t, res.Entries, 1)
	// 6 months minus 2 non-accruing months at 1.66667/month.
	assert.Equal(t, "6.67", res.Entries[0].Days.Round(2).String())
}

func TestMonthly_AnchorAfterReference(t *testing.T) {
	p := annualPolicy()
	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Anchor:    leave.MustDate("2025-07-15"),
		Reference: leave.MustDate("2025-06-30"),
	})

	assert.Empty(t, res.Entries)
	assert.NotEmpty(t, res.Log)
}

// =============================================================================
// YEARLY STRATEGY
// =============================================================================

func TestYearly_CappedGrantPerYear(t *testing.T) {
	limit := 20
	p := leave.Policy{
		ID:   "study",
		Name: "Study leave",
		Rules: leave.Rules{
			AccrualMethod:      leave.MethodYearly,
			PeriodType:         leave.PeriodCalendarYear,
			MaxPerYearDD:       &limit,
			ExpiresEndOfPeriod: true,
		},
	}

	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Anchor:    leave.MustDate("2023-05-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	// Default lookback 1: 2024 and 2025.
	require.Len(t, res.Entries, 2)
	assert.Equal(t, leave.MustDate("2024-01-01"), res.Entries[0].PeriodFrom)
	assert.Equal(t, leave.MustDate("2024-12-31"), res.Entries[0].PeriodTo)
	assert.True(t, res.Entries[0].Days.Equal(dec(20)))
	assert.Equal(t, leave.MustDate("2025-01-01"), res.Entries[1].PeriodFrom)
	assert.True(t, res.Entries[1].Days.Equal(dec(20)))
}

func TestYearly_ClippedToMidYearAnchor(t *testing.T) {
	p := leave.Policy{
		ID:       "study",
		NormDays: dec(10),
		Rules: leave.Rules{
			AccrualMethod: leave.MethodYearly,
			PeriodType:    leave.PeriodCalendarYear,
		},
	}

	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Anchor:    leave.MustDate("2025-04-15"),
		Reference: leave.MustDate("2025-06-30"),
	})

	require.Len(t, res.Entries, 1)
	assert.Equal(t, leave.MustDate("2025-04-15"), res.Entries[0].PeriodFrom)
	assert.True(t, res.Entries[0].Days.Equal(dec(10)))
}

func TestYearly_ChildBased(t *testing.T) {
	p := leave.Policy{
		ID: "child-extra",
		Rules: leave.Rules{
			AccrualMethod: leave.MethodYearly,
			PeriodType:    leave.PeriodCalendarYear,
			ChildBased:    true,
		},
	}
	base := leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Anchor:    leave.MustDate("2024-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	}

	// One child: one day per year.
	withOne := base
	withOne.ChildDays = 1
	res := accrueWith(p, withOne)
	require.Len(t, res.Entries, 2)
	assert.True(t, res.Entries[0].Days.Equal(dec(1)))

	// Three children: three days per year.
	withThree := base
	withThree.ChildDays = 3
	res = accrueWith(p, withThree)
	require.Len(t, res.Entries, 2)
	assert.True(t, res.Entries[1].Days.Equal(dec(3)))

	// No eligible children: no entries at all.
	res = accrueWith(p, base)
	assert.Empty(t, res.Entries)
}

// =============================================================================
// PER-EVENT STRATEGY
// =============================================================================

func paternityPolicy() leave.Policy {
	months := 6
	return leave.Policy{
		ID:   "paternity",
		Name: "Paternity leave",
		Rules: leave.Rules{
			AccrualMethod:         leave.MethodPerEvent,
			EventSource:           string(leave.DocChildRegistration),
			EventDays:             10,
			UsageDeadlineMonths:   &months,
			RequiresHireDateCheck: true,
		},
	}
}

func TestPerEvent_BirthGrant(t *testing.T) {
	docs := []leave.Document{{
		ID:       "d1",
		Type:     leave.DocChildRegistration,
		DateFrom: leave.MustDate("2025-02-10"),
		Payload:  map[string]any{"child_dob": "2025-02-01"},
	}}

	res := accrueWith(paternityPolicy(), leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Documents: docs,
		Anchor:    leave.MustDate("2023-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	require.Len(t, res.Entries, 1)
	entry := res.Entries[0]
	assert.True(t, entry.Days.Equal(dec(10)))
	assert.Equal(t, leave.MustDate("2025-02-01"), entry.PeriodFrom)
	assert.Equal(t, leave.MustDate("2025-08-01"), entry.PeriodTo)
	assert.Equal(t, leave.DocumentID("d1"), entry.DocumentID)
}

func TestPerEvent_PredatingEmploymentSkipped(t *testing.T) {
	docs := []leave.Document{{
		Type:     leave.DocChildRegistration,
		DateFrom: leave.MustDate("2020-01-15"),
		Payload:  map[string]any{"child_dob": "2020-01-15"},
	}}

	res := accrueWith(paternityPolicy(), leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Documents: docs,
		Anchor:    leave.MustDate("2023-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	assert.Empty(t, res.Entries)
}

func TestPerEvent_DefaultDeadlineOneYear(t *testing.T) {
	p := leave.Policy{
		ID: "donor",
		Rules: leave.Rules{
			AccrualMethod: leave.MethodPerEvent,
			EventSource:   string(leave.DocDonorDay),
			EventDays:     1,
		},
	}
	docs := []leave.Document{{
		Type:     leave.DocDonorDay,
		DateFrom: leave.MustDate("2025-02-14"),
	}}

	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Documents: docs,
		Anchor:    leave.MustDate("2023-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	require.Len(t, res.Entries, 1)
	assert.Equal(t, leave.MustDate("2026-02-14"), res.Entries[0].PeriodTo)
}

func TestPerEvent_UseImmediatelyDoubles(t *testing.T) {
	p := leave.Policy{
		ID: "donor",
		Rules: leave.Rules{
			AccrualMethod: leave.MethodPerEvent,
			EventSource:   string(leave.DocDonorDay),
			EventDays:     1,
		},
	}
	docs := []leave.Document{{
		Type:     leave.DocDonorDay,
		DateFrom: leave.MustDate("2025-02-14"),
		Payload:  map[string]any{"use_immediately": true},
	}}

	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Documents: docs,
		Anchor:    leave.MustDate("2023-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	require.Len(t, res.Entries, 1)
	assert.True(t, res.Entries[0].Days.Equal(dec(2)))
}

func TestPerEvent_AddToAnnualEmitsTransferPair(t *testing.T) {
	// GIVEN: A donor-day policy feeding the annual policy immediately
	// WHEN: Accruing over one donor day
	// THEN: transferred_out -1 on the donor policy, transferred_in +1
	//       tagged for the annual policy

	p := leave.Policy{
		ID:   "donor",
		Name: "Donor day",
		Rules: leave.Rules{
			AccrualMethod:          leave.MethodPerEvent,
			EventSource:            string(leave.DocDonorDay),
			EventDays:              1,
			AddToAnnualImmediately: true,
		},
	}
	docs := []leave.Document{{
		ID:       "d9",
		Type:     leave.DocDonorDay,
		DateFrom: leave.MustDate("2025-02-14"),
	}}

	res := accrueWith(p, leave.AccrualContext{
		Employee:       leave.Employee{ID: "e1"},
		Documents:      docs,
		Anchor:         leave.MustDate("2023-01-01"),
		Reference:      leave.MustDate("2025-06-30"),
		AnnualPolicyID: "annual",
	})

	require.Len(t, res.Entries, 3)

	out := entriesOfType(res.Entries, leave.EntryTransferredOut)
	require.Len(t, out, 1)
	assert.Equal(t, leave.PolicyID("donor"), out[0].PolicyID)
	assert.True(t, out[0].Days.Equal(dec(-1)))

	in := entriesOfType(res.Entries, leave.EntryTransferredIn)
	require.Len(t, in, 1)
	assert.Equal(t, leave.PolicyID("annual"), in[0].PolicyID)
	assert.True(t, in[0].Days.Equal(dec(1)))
}

// =============================================================================
// ON-REQUEST STRATEGY
// =============================================================================

func TestOnRequest_NoEntriesOnlyLog(t *testing.T) {
	p := leave.Policy{
		ID:   "unpaid",
		Name: "Unpaid leave",
		Rules: leave.Rules{
			AccrualMethod:     leave.MethodOnRequest,
			ShiftsWorkingYear: true,
		},
	}

	res := accrueWith(p, leave.AccrualContext{
		Employee:  leave.Employee{ID: "e1"},
		Anchor:    leave.MustDate("2023-01-01"),
		Reference: leave.MustDate("2025-06-30"),
	})

	assert.Empty(t, res.Entries)
	assert.NotEmpty(t, res.Log)
}
