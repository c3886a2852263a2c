package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncOutcomes counts syncer calls by operation (get, refresh, clear) and
	// result (network, cache, fallback, error).
	SyncOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_sync_outcomes_total",
			Help: "Holdings sync calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	ReconciledRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_reconciled_rows_total",
			Help: "Rows touched by reconciliation",
		},
		[]string{"action"}, // deleted, upserted
	)

	CachedRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_cached_rows",
			Help: "Rows in the holdings cache after the last reconciliation",
		},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_fetch_duration_seconds",
			Help:    "Holdings endpoint fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)
