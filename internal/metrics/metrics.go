// Package metrics provides Prometheus metrics for the inventory sync service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tcg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Batch Metrics
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_sync_batches_total",
			Help: "Total number of inventory batches by mode and terminal status",
		},
		[]string{"mode", "status"}, // mode: "merge" or "replace_all", status: "completed" or "failed"
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_sync_batch_duration_seconds",
			Help:    "Time taken to process an inventory batch end to end",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_sync_records_total",
			Help: "Inventory records reconciled by outcome",
		},
		[]string{"outcome"}, // "added", "updated", "error", "removed"
	)

	// Catalog Metrics
	CatalogEntriesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_catalog_entries_created_total",
			Help: "Catalog entries created on first sighting",
		},
	)

	// Progress Metrics
	ProgressEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_progress_entries",
			Help: "Number of upload jobs with live progress state",
		},
	)

	// Storage Metrics
	StoreInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_store_operations_in_flight",
			Help: "Storage operations currently holding a pool slot",
		},
	)

	StoreWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_store_wait_duration_seconds",
			Help:    "Time spent waiting for a storage pool slot",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)
)
