// Package metrics provides the centralized Prometheus registry for pipeline
// runs.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "paddock"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "runs_total",
		Help:      "Total number of pipeline runs by status",
	}, []string{"status"})
	DocumentsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "documents_rejected_total",
		Help:      "Race documents dropped at the normalization boundary",
	}, []string{"source"})
	RacesMergedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "races_merged_total",
		Help:      "Canonical races produced after merging",
	})
	RacesFilteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "races_filtered_total",
		Help:      "Races dropped by the runner-count filter",
	})
	SinkFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "sink_failures_total",
		Help:      "Report sink write failures",
	}, []string{"sink"})
)

// Gauge metrics
var (
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last pipeline run finished",
	})
	RacesScored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "races_scored",
		Help:      "Races scored in the last run",
	})
)

// Histogram metrics
var (
	RaceScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "race_score",
		Help:      "Distribution of composite race scores",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages in seconds",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
	}, []string{"stage"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RunsTotal)
		registry.MustRegister(DocumentsRejectedTotal)
		registry.MustRegister(RacesMergedTotal)
		registry.MustRegister(RacesFilteredTotal)
		registry.MustRegister(SinkFailuresTotal)

		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(RacesScored)

		registry.MustRegister(RaceScore)
		registry.MustRegister(StageDuration)

		// Collector metrics
		registry.MustRegister(CollectorDocumentsTotal)
		registry.MustRegister(CollectorFailuresTotal)
		registry.MustRegister(CollectorDuration)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(CacheHitsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records a finished pipeline run.
func RecordRun(status string, finishedUnix float64, scored int) {
	RunsTotal.WithLabelValues(status).Inc()
	LastRunTimestamp.Set(finishedUnix)
	RacesScored.Set(float64(scored))
}

// RecordStage records how long a pipeline stage took.
func RecordStage(stage string, durationSeconds float64) {
	StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordDocumentRejected records a document the normalizer refused.
func RecordDocumentRejected(source string) {
	DocumentsRejectedTotal.WithLabelValues(source).Inc()
}

// RecordRacesMerged records how many canonical races a run produced.
func RecordRacesMerged(n int) {
	RacesMergedTotal.Add(float64(n))
}

// RecordRacesFiltered records races dropped by the runner filter.
func RecordRacesFiltered(n int) {
	RacesFilteredTotal.Add(float64(n))
}

// RecordScore records one composite race score.
func RecordScore(score float64) {
	RaceScore.Observe(score)
}

// RecordSinkFailure records a failed report write.
func RecordSinkFailure(sink string) {
	SinkFailuresTotal.WithLabelValues(sink).Inc()
}
