// Package metrics provides Prometheus metrics for the finance services.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finance_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Chart Metrics
	ChartQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_chart_queries_total",
			Help: "Chart reconstructions by range and outcome (ok, error, superseded)",
		},
		[]string{"range", "result"},
	)

	ChartQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finance_chart_query_duration_seconds",
			Help:    "Time taken to reconstruct a chart series",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"range"},
	)

	// PricedHoldingsTotal counts holding valuations by the tier that priced them.
	PricedHoldingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_priced_holdings_total",
			Help: "Holding valuations by pricing tier (history, live, cost_basis)",
		},
		[]string{"tier"},
	)

	// Quote cache
	QuoteCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_quote_cache_total",
			Help: "Live quote cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	// Upstream providers
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_provider_requests_total",
			Help: "Upstream market data requests by provider and HTTP status",
		},
		[]string{"provider", "status"},
	)

	SnapshotsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finance_snapshots_recorded_total",
			Help: "Daily snapshot attempts by result (ok, exists, unpriced, error)",
		},
		[]string{"result"},
	)
)
