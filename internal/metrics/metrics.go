package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seowatch_rule_evaluations_total",
			Help: "Total number of rule evaluations",
		},
		[]string{"rule_type", "outcome"}, // outcome: triggered, not_triggered, skipped, suppressed
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seowatch_batch_evaluation_duration_seconds",
			Help:    "Time taken to evaluate one rule batch",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	AlertsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seowatch_alerts_persisted_total",
			Help: "Total number of alert records written",
		},
	)

	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seowatch_alert_dispatch_total",
			Help: "Total number of notification dispatch attempts",
		},
		[]string{"channel", "status"}, // status: success, failed, skipped
	)

	DedupFailOpen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seowatch_dedup_fail_open_total",
			Help: "Duplicate checks that failed and proceeded fail-open",
		},
	)
)
