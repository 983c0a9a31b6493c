package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache behaviour as seen by the orchestrator.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by query kind and outcome",
		},
		[]string{"query", "outcome"},
	)

	CacheFailoversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_failovers_total",
			Help: "Times the durable cache store was abandoned for the local fallback",
		},
	)

	// Reload cycles, whether triggered by a stale read or by the scheduler.
	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reloads_total",
			Help: "Full reload cycles by status",
		},
		[]string{"status"},
	)

	ReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reload_duration_seconds",
			Help:    "Duration of full reload cycles",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	RefresherSkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresher_skips_total",
			Help: "Periodic refresh triggers skipped by guard",
		},
		[]string{"reason"},
	)

	// Outbound Open-Meteo traffic.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Upstream API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
)
