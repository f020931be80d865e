// Package metrics provides Prometheus metrics for palette extraction.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "swatch"

var (
	// RequestsTotal tracks HTTP requests by route and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"route", "code"},
	)

	// RequestLatency tracks HTTP request latency by route.
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// ExtractionsTotal tracks palette extractions.
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total palette extractions",
		},
		[]string{"strategy", "metric", "status"}, // status: success/error
	)

	// ExtractionLatency tracks how long a best-of-N extraction takes.
	ExtractionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_latency_seconds",
			Help:      "Palette extraction latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"strategy", "metric"},
	)

	// ClusterError tracks the error of winning clusterings.
	ClusterError = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_error",
			Help:      "Sum of point to centroid distances of the winning run",
			Buckets:   prometheus.ExponentialBuckets(1e3, 4, 10),
		},
		[]string{"metric"},
	)

	// InFlightExtractions tracks extractions currently running.
	InFlightExtractions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extractions_in_flight",
			Help:      "Number of palette extractions currently running",
		},
	)
)

// ObserveRequest records a served HTTP request.
func ObserveRequest(route string, code int, latencySeconds float64) {
	RequestsTotal.WithLabelValues(route, statusCode(code)).Inc()
	RequestLatency.WithLabelValues(route).Observe(latencySeconds)
}

// ObserveExtraction records a finished extraction. clusterError is only
// recorded when err is nil.
func ObserveExtraction(strategy, metric string, latencySeconds, clusterError float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExtractionsTotal.WithLabelValues(strategy, metric, status).Inc()
	ExtractionLatency.WithLabelValues(strategy, metric).Observe(latencySeconds)
	if err == nil {
		ClusterError.WithLabelValues(metric).Observe(clusterError)
	}
}

func statusCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
