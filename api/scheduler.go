/*
scheduler.go - Nightly recalculation scheduler

PURPOSE:
  Keeps every employee's ledger fresh without waiting for a balance read.
  A cron job rebuilds all ledgers shortly after midnight UTC, so expirations
  that trip on a month boundary are materialized the night they occur.

DESIGN:
  - robfig/cron with a UTC location; schedule is configurable
  - Runs are full sweeps via Engine.RecalculateAll; the engine serializes
    per-employee, so a sweep racing an on-demand balance read is safe
  - A run is idempotent, so an extra or missed run is harmless

USAGE:
  sched := NewRecalcScheduler(handler)
  sched.Start()
  // ... later
  sched.Stop()

SEE ALSO:
  - handlers.go: the on-demand recalculation path
*/
package api

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// RecalcScheduler runs the nightly full recalculation sweep.
type RecalcScheduler struct {
	Handler *Handler
	// Spec is a cron expression; default is 02:30 UTC daily.
	Spec string

	cron *cron.Cron
}

// NewRecalcScheduler creates a scheduler over the handler's engine.
func NewRecalcScheduler(h *Handler) *RecalcScheduler {
	return &RecalcScheduler{
		Handler: h,
		Spec:    "30 2 * * *",
	}
}

// Start registers the cron entry and begins scheduling.
func (s *RecalcScheduler) Start() error {
	s.cron = cron.New(cron.WithLocation(time.UTC))
	if _, err := s.cron.AddFunc(s.Spec, s.RunNow); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[Scheduler] Started, spec %q", s.Spec)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *RecalcScheduler) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] Stopped")
}

// RunNow triggers an immediate sweep (also used by cron).
func (s *RecalcScheduler) RunNow() {
	ctx := context.Background()
	today := s.Handler.Now()

	start := time.Now()
	reports, err := s.Handler.Engine.RecalculateAll(ctx, today)
	observeRecalculation(time.Since(start), err)

	if err != nil {
		log.Printf("[Scheduler] Sweep as of %s: %d rebuilt, with errors: %v",
			today, len(reports), err)
		return
	}
	log.Printf("[Scheduler] Sweep as of %s: %d employees rebuilt in %v",
		today, len(reports), time.Since(start).Round(time.Millisecond))
}

// NextRun reports the next scheduled sweep time.
func (s *RecalcScheduler) NextRun() time.Time {
	if s.cron == nil || len(s.cron.Entries()) == 0 {
		return time.Time{}
	}
	return s.cron.Entries()[0].Next
}
