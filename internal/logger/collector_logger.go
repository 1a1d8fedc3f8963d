package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CollectorLogger logs source-side events: fetches, throttling and breaker
// trips.
type CollectorLogger struct {
	*logrus.Entry
}

// NewCollectorLogger creates a logger scoped to one collector.
func NewCollectorLogger(baseLogger logrus.FieldLogger, collector string) *CollectorLogger {
	return &CollectorLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "collector",
			"collector": collector,
		}),
	}
}

// LogFetch logs a completed upstream request.
func (cl *CollectorLogger) LogFetch(url string, status int, duration time.Duration) {
	cl.WithFields(logrus.Fields{
		"url":         url,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Fetched source page")
}

// LogSkipped logs an upstream record that could not be turned into a race.
func (cl *CollectorLogger) LogSkipped(reason string, fields logrus.Fields) {
	cl.WithFields(fields).WithField("reason", reason).Debug("Skipped source record")
}

// LogCircuitBreakerEvent logs circuit breaker transitions.
func (cl *CollectorLogger) LogCircuitBreakerEvent(state string, failures int) {
	cl.WithFields(logrus.Fields{
		"event_type": "circuit_breaker",
		"state":      state,
		"failures":   failures,
	}).Warn("Circuit breaker state changed")
}

// LogCacheHit logs a batch served from the collector cache.
func (cl *CollectorLogger) LogCacheHit(documents int) {
	cl.WithField("documents", documents).Debug("Serving cached batch")
}
