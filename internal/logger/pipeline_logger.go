package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for pipeline runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger logrus.FieldLogger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// WithRun scopes the logger to a single run.
func (pl *PipelineLogger) WithRun(runID string) *PipelineLogger {
	return &PipelineLogger{Entry: pl.WithField("run_id", runID)}
}

// LogStageCompleted logs the end of a pipeline stage.
func (pl *PipelineLogger) LogStageCompleted(stage string, items int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"stage":       stage,
		"items":       items,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Pipeline stage completed")
}

// LogCollectorFailure logs a collector that produced nothing this run.
func (pl *PipelineLogger) LogCollectorFailure(collector string, err error) {
	pl.WithFields(logrus.Fields{
		"collector": collector,
		"error":     err.Error(),
	}).Warn("Collector failed, continuing without it")
}

// LogCollectorSucceeded logs what a collector returned.
func (pl *PipelineLogger) LogCollectorSucceeded(collector string, documents, races int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"collector":   collector,
		"documents":   documents,
		"races":       races,
		"duration_ms": duration.Milliseconds(),
	}).Info("Collector finished")
}

// LogDocumentRejected logs a document dropped at the normalization boundary.
func (pl *PipelineLogger) LogDocumentRejected(source, raceKey string, err error) {
	pl.WithFields(logrus.Fields{
		"source":   source,
		"race_key": raceKey,
		"error":    err.Error(),
	}).Warn("Race document rejected")
}

// LogSinkFailure logs a report sink that could not be written.
func (pl *PipelineLogger) LogSinkFailure(sink string, err error) {
	pl.WithFields(logrus.Fields{
		"sink":  sink,
		"error": err.Error(),
	}).Error("Report sink failed")
}

// LogRunCompleted logs the summary of a finished run.
func (pl *PipelineLogger) LogRunCompleted(stats map[string]int, duration time.Duration) {
	fields := logrus.Fields{"duration_ms": duration.Milliseconds()}
	for k, v := range stats {
		fields[k] = v
	}
	pl.WithFields(fields).Info("Pipeline run completed")
}
