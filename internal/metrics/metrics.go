// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DocumentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_generated_total",
			Help: "Generated PDF documents by kind",
		},
		[]string{"kind"},
	)

	NumbersAllocated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncr_numbers_allocated_total",
			Help: "NCR numbers handed out by the allocator",
		},
	)
)
