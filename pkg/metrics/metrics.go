package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SaveConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "personnel_save_conflicts_total",
		Help: "Optimistic concurrency conflicts detected on aggregate save.",
	})

	ResolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "personnel_resolve_duration_seconds",
		Help:    "Latency of temporal status resolution.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ResolvedDays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "personnel_resolved_days_total",
		Help: "Person-days resolved by month-matrix queries.",
	})
)
