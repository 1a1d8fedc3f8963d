package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/datasource"
	"github.com/yourusername/paddock-parser/internal/logger"
	"github.com/yourusername/paddock-parser/internal/merge"
	"github.com/yourusername/paddock-parser/internal/metrics"
	"github.com/yourusername/paddock-parser/internal/models"
	"github.com/yourusername/paddock-parser/internal/normalize"
	"github.com/yourusername/paddock-parser/internal/report"
	"github.com/yourusername/paddock-parser/internal/scoring"
)

// ErrRunInProgress is returned when Run is called while a run is active.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Run statuses recorded in metrics.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Pipeline wires collectors, the normalizer, the scorer and report sinks
// together. A Pipeline runs one pass at a time.
type Pipeline struct {
	collectors []datasource.Collector
	normalizer *normalize.Normalizer
	scorer     *scoring.Scorer
	sinks      []report.Sink
	filters    Filters
	logger     *logger.PipelineLogger
	running    atomic.Bool
	now        func() time.Time
}

// RunResult describes one completed run.
type RunResult struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	StageDurations map[Stage]time.Duration
	Results        []models.ScoreResult
	Stats          Stats
}

// Duration returns the wall-clock time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// New creates a pipeline.
func New(
	collectors []datasource.Collector,
	normalizer *normalize.Normalizer,
	scorer *scoring.Scorer,
	sinks []report.Sink,
	filters Filters,
	log logrus.FieldLogger,
) *Pipeline {
	return &Pipeline{
		collectors: collectors,
		normalizer: normalizer,
		scorer:     scorer,
		sinks:      sinks,
		filters:    filters,
		logger:     logger.NewPipelineLogger(log),
		now:        time.Now,
	}
}

// Running reports whether a run is in flight.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Run executes every stage once. Collector, document and sink failures
// are logged and counted but do not fail the run; only cancellation of
// ctx does.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	res := &RunResult{
		RunID:          uuid.NewString(),
		StartedAt:      p.now(),
		StageDurations: make(map[Stage]time.Duration, len(Stages)),
	}
	log := p.logger.WithRun(res.RunID)
	log.Info("Pipeline run started")

	stage := func(s Stage, items int, started time.Time) {
		d := time.Since(started)
		res.StageDurations[s] = d
		metrics.RecordStage(s.String(), d.Seconds())
		log.LogStageCompleted(s.String(), items, d)
	}

	started := time.Now()
	entries := p.collect(ctx, log, &res.Stats)
	stage(StageCollect, len(entries), started)
	if err := ctx.Err(); err != nil {
		return p.fail(res, log, err)
	}

	started = time.Now()
	groups := merge.Coalesce(entries)
	stage(StageCoalesce, len(groups), started)

	started = time.Now()
	races := p.normalizeAndMerge(groups, log, &res.Stats)
	res.Stats.RacesMerged = len(races)
	metrics.RecordRacesMerged(len(races))
	stage(StageNormalizeMerge, len(races), started)

	started = time.Now()
	races, dropped := p.filters.Apply(races)
	res.Stats.RacesFiltered = dropped
	metrics.RecordRacesFiltered(dropped)
	stage(StageFilter, len(races), started)

	started = time.Now()
	res.Results = p.scorer.ScoreAll(races)
	res.Stats.RacesScored = len(res.Results)
	for i := range res.Results {
		metrics.RecordScore(res.Results[i].Score)
	}
	stage(StageScore, len(res.Results), started)

	if err := ctx.Err(); err != nil {
		return p.fail(res, log, err)
	}

	started = time.Now()
	p.report(ctx, res.Results, log, &res.Stats)
	stage(StageReport, len(p.sinks), started)

	res.FinishedAt = p.now()
	metrics.RecordRun(StatusSuccess, float64(res.FinishedAt.Unix()), res.Stats.RacesScored)
	log.LogRunCompleted(res.Stats.Map(), res.Duration())
	return res, nil
}

func (p *Pipeline) fail(res *RunResult, log *logger.PipelineLogger, err error) (*RunResult, error) {
	res.FinishedAt = p.now()
	metrics.RecordRun(StatusFailed, float64(res.FinishedAt.Unix()), 0)
	log.WithError(err).Warn("Pipeline run aborted")
	return res, fmt.Errorf("pipeline run %s aborted: %w", res.RunID, err)
}

// entry is one collected document or pre-normalized race waiting to be
// grouped by race key.
type entry struct {
	source string
	doc    *models.RawRaceDocument
	race   *models.NormalizedRace
}

func (e entry) Key() string {
	if e.doc != nil {
		return e.doc.RaceKey
	}
	return e.race.RaceKey
}

type collectOutcome struct {
	batch    *datasource.Batch
	err      error
	duration time.Duration
}

// collect runs every collector concurrently. Entries are returned in
// collector order, then in the order each collector listed them, so the
// merge order does not depend on goroutine scheduling.
func (p *Pipeline) collect(ctx context.Context, log *logger.PipelineLogger, stats *Stats) []entry {
	outcomes := make([]collectOutcome, len(p.collectors))

	var wg sync.WaitGroup
	for i, c := range p.collectors {
		wg.Add(1)
		go func(i int, c datasource.Collector) {
			defer wg.Done()
			started := time.Now()
			batch, err := safeCollect(ctx, c)
			outcomes[i] = collectOutcome{batch: batch, err: err, duration: time.Since(started)}
		}(i, c)
	}
	wg.Wait()

	var entries []entry
	for i, c := range p.collectors {
		out := outcomes[i]
		stats.CollectorsRun++
		if out.err != nil {
			stats.CollectorsFailed++
			metrics.RecordCollectorFailure(c.Name(), out.duration.Seconds())
			log.LogCollectorFailure(c.Name(), out.err)
			continue
		}
		if out.batch == nil {
			out.batch = &datasource.Batch{}
		}
		metrics.RecordCollectorSuccess(c.Name(), out.batch.Len(), out.duration.Seconds())
		log.LogCollectorSucceeded(c.Name(), len(out.batch.Documents), len(out.batch.Races), out.duration)

		stats.DocumentsCollected += len(out.batch.Documents)
		stats.RacesCollected += len(out.batch.Races)
		for j := range out.batch.Documents {
			entries = append(entries, entry{source: c.Name(), doc: &out.batch.Documents[j]})
		}
		for j := range out.batch.Races {
			entries = append(entries, entry{source: c.Name(), race: &out.batch.Races[j]})
		}
	}
	return entries
}

// safeCollect turns a collector panic into an error so one broken source
// cannot take down the run.
func safeCollect(ctx context.Context, c datasource.Collector) (batch *datasource.Batch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collector %s panicked: %v", c.Name(), r)
		}
	}()
	return c.Collect(ctx)
}

// normalizeAndMerge reduces each group to one race. The first entry that
// normalizes seeds the race and later entries merge into it in order.
func (p *Pipeline) normalizeAndMerge(groups []merge.Group[entry], log *logger.PipelineLogger, stats *Stats) []models.NormalizedRace {
	races := make([]models.NormalizedRace, 0, len(groups))
	for _, g := range groups {
		var race *models.NormalizedRace
		for _, e := range g.Entries {
			candidate, err := p.normalize(e)
			if err != nil {
				stats.DocumentsRejected++
				metrics.RecordDocumentRejected(e.source)
				log.LogDocumentRejected(e.source, g.RaceKey, err)
				continue
			}
			if race == nil {
				race = candidate
				continue
			}
			merge.Merge(race, candidate)
		}
		if race != nil {
			races = append(races, *race)
		}
	}
	return races
}

func (p *Pipeline) normalize(e entry) (*models.NormalizedRace, error) {
	if e.doc != nil {
		return p.normalizer.Normalize(e.doc)
	}
	return p.normalizer.NormalizeRace(e.race, e.source)
}

func (p *Pipeline) report(ctx context.Context, results []models.ScoreResult, log *logger.PipelineLogger, stats *Stats) {
	for _, sink := range p.sinks {
		if err := sink.Write(ctx, results); err != nil {
			stats.SinkFailures++
			metrics.RecordSinkFailure(sink.Name())
			log.LogSinkFailure(sink.Name(), err)
		}
	}
}
