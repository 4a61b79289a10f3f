package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunsTotal counts reconciliation runs by outcome
	// (success, partial, empty_feed, upstream_error).
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonds_sync_runs_total",
			Help: "Total number of bond feed reconciliation runs (by outcome).",
		},
		[]string{"outcome"},
	)

	// SyncDuration measures end-to-end reconciliation run duration.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bonds_sync_duration_seconds",
			Help:    "Duration of bond feed reconciliation runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms → ~3.5min
		},
	)

	// SyncRecordsTotal counts per-record reconciliation results.
	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonds_sync_records_total",
			Help: "Feed records processed during reconciliation (by result).",
		},
		[]string{"result"}, // stored, updated, failed
	)

	// QueryDuration measures catalog query latency per operation.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bonds_query_duration_seconds",
			Help:    "Duration of bond catalog queries in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"operation"},
	)
)

// ObserveQuery records the time taken by one catalog query.
func ObserveQuery(operation string, start time.Time) {
	QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// AddSyncRecords bumps the per-record counter by n for the given result.
func AddSyncRecords(result string, n int) {
	if n > 0 {
		SyncRecordsTotal.WithLabelValues(result).Add(float64(n))
	}
}
