// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nestlings_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nestlings_http_rate_limited_total",
			Help: "Total number of requests rejected by the per-IP rate limiter",
		},
	)

	// Catalog
	ProductQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nestlings_product_query_duration_seconds",
			Help:    "Duration of product query engine calls against storage",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestlings_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestlings_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"namespace"},
	)

	// Recommendations
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestlings_recommendations_served_total",
			Help: "Total number of recommendation lists served",
		},
		[]string{"source"}, // "rules", "curated"
	)

	// LLM
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestlings_llm_requests_total",
			Help: "Total number of LLM API requests by outcome",
		},
		[]string{"operation", "outcome"},
	)

	LLMCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nestlings_llm_circuit_state",
			Help: "LLM circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	IngestionResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestlings_ingestion_results_total",
			Help: "Total number of product ingestion attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveSince records the elapsed time since start on the histogram
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// RecordCacheLookup counts a cache hit or miss for the namespace
func RecordCacheLookup(namespace string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(namespace).Inc()
		return
	}
	CacheMisses.WithLabelValues(namespace).Inc()
}

// RecordLLMRequest counts an LLM call outcome
func RecordLLMRequest(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	LLMRequests.WithLabelValues(operation, outcome).Inc()
}
