/*
fifo.go - Oldest-first consumption of accrual batches

PURPOSE:
  Allocates everything consumed on a policy (usage, expiration, transfers
  out) against the policy's accrual batches, oldest period first, and
  records what remains on each batch. This is the canonical remaining-
  balance state; rerunning it over unchanged entries is a no-op.

SEE ALSO:
  - expiration.go: runs a provisional pass of this before deciding what
    expires
*/
package leave

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ApplyFIFO recomputes Remaining on every batch entry in place. The
// consumption pool is the absolute sum of usage, expiration and
// transferred_out days. Batches are walked by period start ascending;
// batches beyond pool exhaustion stay fully available.
func ApplyFIFO(entries []Entry) {
	pool := decimal.Zero
	var batches []*Entry
	for i := range entries {
		e := &entries[i]
		if e.IsBatch() {
			batches = append(batches, e)
			continue
		}
		pool = pool.Add(e.Days.Abs())
	}

	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].PeriodFrom.Before(batches[j].PeriodFrom)
	})

	for _, b := range batches {
		take := decimal.Min(pool, b.Days)
		if take.Sign() < 0 {
			take = decimal.Zero
		}
		b.Remaining = b.Days.Sub(take)
		pool = pool.Sub(take)
	}
}

// provisionalRemainders runs FIFO on copies and returns the remainder each
// batch WOULD retain, keyed by index into entries. The entries themselves
// are untouched.
func provisionalRemainders(entries []Entry) map[int]decimal.Decimal {
	scratch := make([]Entry, len(entries))
	copy(scratch, entries)
	ApplyFIFO(scratch)

	out := make(map[int]decimal.Decimal)
	for i, e := range scratch {
		if e.IsBatch() {
			out[i] = e.Remaining
		}
	}
	return out
}
