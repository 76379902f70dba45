package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestRuns tracks ingest invocations by outcome (ok, upstream, validation, network)
	IngestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dininghours_ingest_runs_total",
			Help: "Total number of ingest runs",
		},
		[]string{"outcome"},
	)

	// LocationsIngested tracks locations that passed validation and were persisted
	LocationsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dininghours_locations_ingested_total",
			Help: "Total number of locations persisted",
		},
	)

	// LocationsFailed tracks raw records that failed schema validation
	LocationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dininghours_locations_failed_total",
			Help: "Total number of locations that failed validation",
		},
	)

	// FetchAttempts tracks fetch attempts per strategy and outcome
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dininghours_fetch_attempts_total",
			Help: "Total number of upstream fetch attempts",
		},
		[]string{"strategy", "outcome"},
	)

	// FetchLatency tracks end-to-end retrieval latency
	FetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dininghours_fetch_latency_seconds",
			Help:    "Upstream retrieval latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DaysReplaced tracks per-day slot replacements committed
	DaysReplaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dininghours_days_replaced_total",
			Help: "Total number of (location, date) slot sets replaced",
		},
	)

	// DayWriteErrors tracks per-day transactions that failed
	DayWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dininghours_day_write_errors_total",
			Help: "Total number of failed (location, date) slot writes",
		},
	)
)
