// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	LevelsProcessed         prometheus.Counter
	LastProcessedLevel      prometheus.Gauge
	LevelProcessingDuration prometheus.Histogram
	TransactionsRecorded    *prometheus.CounterVec
	UnpricedTransactions    prometheus.Counter
	OperationErrors         prometheus.Counter

	// Trigger metrics
	BlocksReceived prometheus.Counter
	RunsSkipped    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "plenty_analytics"
	}

	return &Metrics{
		LevelsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "levels_processed_total",
			Help:      "Total number of block levels fully processed",
		}),
		LastProcessedLevel: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "last_processed_level",
			Help:      "Most recent block level committed to the checkpoint",
		}),
		LevelProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "level_processing_duration_seconds",
			Help:      "Time taken to process a single block level across all pools",
			Buckets:   prometheus.DefBuckets,
		}),
		TransactionsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "transactions_recorded_total",
			Help:      "Total number of pool transactions recorded, by type",
		}, []string{"type"}),
		UnpricedTransactions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "unpriced_transactions_total",
			Help:      "Total number of recorded transactions with an unresolvable price",
		}),
		OperationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "operation_errors_total",
			Help:      "Total number of operations abandoned due to classification or persistence errors",
		}),
		BlocksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trigger",
			Name:      "blocks_received_total",
			Help:      "Total number of new-block notifications received",
		}),
		RunsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trigger",
			Name:      "runs_skipped_total",
			Help:      "Total number of notifications dropped because a run was in flight",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
