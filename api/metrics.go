/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counts and times ledger recalculations. Exposed on /metrics via the
  standard promhttp handler wired in server.go.
*/
package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recalcTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_recalculations_total",
		Help: "Total ledger recalculations, labeled by outcome",
	}, []string{"outcome"})

	recalcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leave_recalculation_duration_seconds",
		Help:    "Latency distribution of single-employee recalculations",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
)

func observeRecalculation(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	recalcTotal.WithLabelValues(outcome).Inc()
	recalcDuration.Observe(elapsed.Seconds())
}
