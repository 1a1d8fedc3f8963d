package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector counter vectors
var (
	CollectorDocumentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "collector_documents_total",
		Help:      "Race documents returned by each collector",
	}, []string{"collector"})

	CollectorFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "collector_failures_total",
		Help:      "Collector runs that returned an error",
	}, []string{"collector"})

	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP circuit breaker trips",
	})

	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "collector_cache_hits_total",
		Help:      "Collector runs served from cache",
	}, []string{"collector"})
)

// Collector histogram vectors
var (
	CollectorDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "collector_duration_seconds",
		Help:      "Duration of collector runs in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"collector"})
)

// RecordCollectorSuccess records a collector run and what it returned.
func RecordCollectorSuccess(collector string, documents int, durationSeconds float64) {
	CollectorDocumentsTotal.WithLabelValues(collector).Add(float64(documents))
	CollectorDuration.WithLabelValues(collector).Observe(durationSeconds)
}

// RecordCollectorFailure records a failed collector run.
func RecordCollectorFailure(collector string, durationSeconds float64) {
	CollectorFailuresTotal.WithLabelValues(collector).Inc()
	CollectorDuration.WithLabelValues(collector).Observe(durationSeconds)
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordCacheHit records a batch served from a collector cache.
func RecordCacheHit(collector string) {
	CacheHitsTotal.WithLabelValues(collector).Inc()
}
