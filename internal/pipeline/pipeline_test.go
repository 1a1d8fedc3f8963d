package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/paddock-parser/internal/datasource"
	"github.com/yourusername/paddock-parser/internal/models"
	"github.com/yourusername/paddock-parser/internal/normalize"
	"github.com/yourusername/paddock-parser/internal/report"
	"github.com/yourusername/paddock-parser/internal/scoring"
)

type stubCollector struct {
	name    string
	batch   *datasource.Batch
	err     error
	panics  bool
	release chan struct{}
	started chan struct{}
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Collect(ctx context.Context) (*datasource.Batch, error) {
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.panics {
		panic("parser exploded")
	}
	return s.batch, s.err
}

type failingSink struct{}

func (failingSink) Name() string { return "broken" }

func (failingSink) Write(context.Context, []models.ScoreResult) error {
	return errors.New("disk full")
}

type runnerRow struct {
	name string
	odds string
}

func document(source, track, raceKey string, runners ...runnerRow) models.RawRaceDocument {
	doc := models.RawRaceDocument{
		SourceID:     source,
		TrackKey:     track,
		RaceKey:      raceKey,
		StartTimeISO: "2024-06-01T14:30:00",
	}
	for i, r := range runners {
		raw := models.RawRunner{
			Name:   models.NewField(r.name, 0.8, source),
			Number: models.NewField(string(rune('1'+i)), 0.8, source),
		}
		if r.odds != "" {
			raw.Odds = models.FieldPtr(r.odds, 0.8, source)
		}
		doc.Runners = append(doc.Runners, raw)
	}
	return doc
}

func newTestPipeline(collectors []datasource.Collector, sinks []report.Sink, filters Filters) (*Pipeline, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	p := New(
		collectors,
		normalize.NewNormalizer(log),
		scoring.NewScorer(nil, nil, log),
		sinks,
		filters,
		log,
	)
	return p, hook
}

func scenario() []datasource.Collector {
	alpha := &stubCollector{name: "alpha", batch: &datasource.Batch{Documents: []models.RawRaceDocument{
		document("alpha", "ascot", "ascot::r1430",
			runnerRow{"Runner 1", "5/2"},
			runnerRow{"Runner 2", "3/1"},
			runnerRow{"Runner 3", ""},
			runnerRow{"Runner 4", "5/1"},
		),
		document("alpha", "york", "york::r1500", runnerRow{"Lonely", "2/1"}),
		document("alpha", "ascot", "ascot::1430", runnerRow{"Broken Key", "2/1"}),
	}}}
	beta := &stubCollector{name: "beta", batch: &datasource.Batch{Documents: []models.RawRaceDocument{
		document("beta", "ascot", "ascot::r1430", runnerRow{" runner 3 ", "4/1"}),
	}}}
	down := &stubCollector{name: "down", err: errors.New("connection refused")}
	return []datasource.Collector{alpha, beta, down}
}

func TestRun_EndToEnd(t *testing.T) {
	memory := report.NewMemorySink()
	p, hook := newTestPipeline(scenario(), []report.Sink{memory}, Filters{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
	assert.Len(t, res.StageDurations, len(Stages))

	require.Len(t, res.Results, 2)
	top := res.Results[0]
	assert.Equal(t, "ascot::r1430", top.Race.RaceKey)
	assert.Equal(t, 75.0, top.Score)
	assert.Equal(t, []string{"alpha", "beta"}, top.Race.SourceIDs)
	require.NotNil(t, top.BestValueReason)
	assert.Equal(t, "Value Pick: runner 3 (5.00)", *top.BestValueReason, "merged record comes from the source with odds")

	york := res.Results[1]
	assert.Equal(t, "york::r1500", york.Race.RaceKey)
	assert.Equal(t, 0.0, york.Score)
	assert.Equal(t, "insufficient odds data", york.Reason)

	assert.Equal(t, Stats{
		CollectorsRun:      3,
		CollectorsFailed:   1,
		DocumentsCollected: 4,
		DocumentsRejected:  1,
		RacesMerged:        2,
		RacesScored:        2,
	}, res.Stats)

	assert.Len(t, memory.Results(), 2)

	var rejected, failed bool
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "Race document rejected":
			rejected = true
			assert.Equal(t, "alpha", e.Data["source"])
		case "Collector failed, continuing without it":
			failed = true
			assert.Equal(t, "down", e.Data["collector"])
		}
	}
	assert.True(t, rejected)
	assert.True(t, failed)
}

func TestRun_FiltersByFieldSize(t *testing.T) {
	p, _ := newTestPipeline(scenario(), nil, Filters{MinRunners: 2, MaxRunners: 10})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Results, 1)
	assert.Equal(t, "ascot::r1430", res.Results[0].Race.RaceKey)
	assert.Equal(t, 1, res.Stats.RacesFiltered)
}

func TestRun_NoCollectors(t *testing.T) {
	memory := report.NewMemorySink()
	p, _ := newTestPipeline(nil, []report.Sink{memory}, Filters{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, Stats{}, res.Stats)
	assert.False(t, memory.UpdatedAt().IsZero(), "sinks still receive the empty result")
}

func TestRun_EmptyAndNilBatches(t *testing.T) {
	collectors := []datasource.Collector{
		&stubCollector{name: "empty", batch: &datasource.Batch{}},
		&stubCollector{name: "nil"},
	}
	p, _ := newTestPipeline(collectors, nil, Filters{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, 2, res.Stats.CollectorsRun)
	assert.Zero(t, res.Stats.CollectorsFailed)
}

func TestRun_AcceptsNormalizedRaces(t *testing.T) {
	price := func(v float64) *float64 { return &v }
	live := &stubCollector{name: "live", batch: &datasource.Batch{Races: []models.NormalizedRace{
		{
			RaceKey:  "york::r1600",
			TrackKey: "york",
			Runners: []models.NormalizedRunner{
				{Name: "A", OddsDecimal: price(3.5)},
				{Name: "B", OddsDecimal: price(4.0)},
				{Name: "C", OddsDecimal: price(5.0)},
				{Name: "D", OddsDecimal: price(6.0)},
			},
		},
		{Runners: []models.NormalizedRunner{{Name: "Keyless"}}},
	}}}
	p, _ := newTestPipeline([]datasource.Collector{live}, nil, Filters{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Results, 1)
	assert.Equal(t, 75.0, res.Results[0].Score)
	assert.Equal(t, []string{"live"}, res.Results[0].Race.SourceIDs)
	assert.Equal(t, 2, res.Stats.RacesCollected)
	assert.Equal(t, 1, res.Stats.DocumentsRejected)
}

func TestRun_CleansNormalizedRaces(t *testing.T) {
	price := func(v float64) *float64 { return &v }
	live := &stubCollector{name: "live", batch: &datasource.Batch{Races: []models.NormalizedRace{
		{
			RaceKey:  "not a key",
			TrackKey: "york",
			Runners: []models.NormalizedRunner{
				{Name: "A", OddsDecimal: price(3.5)},
				{Name: "B", OddsDecimal: price(4.0)},
			},
		},
		{
			RaceKey:  "york::r1700",
			TrackKey: "york",
			Runners: []models.NormalizedRunner{
				{Name: "Half", OddsDecimal: price(0.5)},
				{Name: "Zero", OddsDecimal: price(0)},
				{Name: "Negative", OddsDecimal: price(-3)},
				{Name: "Fair", OddsDecimal: price(4.0)},
			},
		},
		{
			RaceKey:  "york::r1800",
			TrackKey: "york",
			Runners: []models.NormalizedRunner{
				{Name: "Frankel", OddsDecimal: price(3.5)},
				{Name: "frankel ", OddsDecimal: price(3.5)},
				{Name: "Shergar", OddsDecimal: price(4.0)},
			},
		},
	}}}
	p, _ := newTestPipeline([]datasource.Collector{live}, nil, Filters{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.RacesCollected)
	assert.Equal(t, 1, res.Stats.DocumentsRejected)
	require.Len(t, res.Results, 2)

	byKey := make(map[string]models.ScoreResult, len(res.Results))
	for _, r := range res.Results {
		byKey[r.Race.RaceKey] = r
		for _, runner := range r.Race.Runners {
			if runner.OddsDecimal != nil {
				assert.Greater(t, *runner.OddsDecimal, 1.0, runner.Name)
			}
		}
	}

	unpriced := byKey["york::r1700"]
	assert.Len(t, unpriced.Race.RunnersWithOdds(), 1)
	assert.Equal(t, 0.0, unpriced.Score)
	assert.Equal(t, "insufficient odds data", unpriced.Reason)

	deduped := byKey["york::r1800"]
	require.Len(t, deduped.Race.Runners, 2)
	assert.Equal(t, "Frankel", deduped.Race.Runners[0].Name)
	assert.Equal(t, "Shergar", deduped.Race.Runners[1].Name)
}

func TestRun_CollectorPanicIsIsolated(t *testing.T) {
	collectors := append(scenario(), &stubCollector{name: "wild", panics: true})
	p, _ := newTestPipeline(collectors, nil, Filters{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.CollectorsFailed)
	assert.Len(t, res.Results, 2)
}

func TestRun_SinkFailureIsNotFatal(t *testing.T) {
	memory := report.NewMemorySink()
	p, hook := newTestPipeline(scenario(), []report.Sink{failingSink{}, memory}, Filters{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.SinkFailures)
	assert.Len(t, memory.Results(), 2, "later sinks still run")

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Report sink failed" {
			logged = true
			assert.Equal(t, logrus.ErrorLevel, e.Level)
			assert.Equal(t, "broken", e.Data["sink"])
		}
	}
	assert.True(t, logged)
}

func TestRun_Cancelled(t *testing.T) {
	memory := report.NewMemorySink()
	p, _ := newTestPipeline(scenario(), []report.Sink{memory}, Filters{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Results)
	assert.True(t, memory.UpdatedAt().IsZero(), "aborted runs are not reported")
	assert.False(t, p.Running())
}

func TestRun_NotReentrant(t *testing.T) {
	blocker := &stubCollector{
		name:    "slow",
		batch:   &datasource.Batch{},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	p, _ := newTestPipeline([]datasource.Collector{blocker}, nil, Filters{})

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background())
		done <- err
	}()

	select {
	case <-blocker.started:
	case <-time.After(2 * time.Second):
		t.Fatal("collector never started")
	}
	assert.True(t, p.Running())

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(blocker.release)
	require.NoError(t, <-done)
	assert.False(t, p.Running())
}

func TestStageString(t *testing.T) {
	names := make([]string, len(Stages))
	for i, s := range Stages {
		names[i] = s.String()
	}
	assert.Equal(t, []string{"COLLECT", "COALESCE", "NORMALIZE_MERGE", "FILTER", "SCORE", "REPORT"}, names)
	assert.Equal(t, "UNKNOWN", Stage(42).String())
}

func TestFilters(t *testing.T) {
	race := func(n int) models.NormalizedRace {
		return models.NormalizedRace{Runners: make([]models.NormalizedRunner, n)}
	}

	tests := []struct {
		name    string
		filters Filters
		size    int
		want    bool
	}{
		{"unrestricted", Filters{}, 0, true},
		{"at minimum", Filters{MinRunners: 4, MaxRunners: 8}, 4, true},
		{"at maximum", Filters{MinRunners: 4, MaxRunners: 8}, 8, true},
		{"below minimum", Filters{MinRunners: 4, MaxRunners: 8}, 3, false},
		{"above maximum", Filters{MinRunners: 4, MaxRunners: 8}, 9, false},
		{"open ended", Filters{MinRunners: 4}, 40, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := race(tt.size)
			assert.Equal(t, tt.want, tt.filters.Allows(&r))
		})
	}

	kept, dropped := Filters{MinRunners: 2}.Apply([]models.NormalizedRace{race(1), race(2), race(3)})
	assert.Len(t, kept, 2)
	assert.Equal(t, 1, dropped)
}

func TestStatsMap(t *testing.T) {
	s := Stats{CollectorsRun: 2, RacesScored: 5}
	m := s.Map()
	assert.Equal(t, 2, m["collectors_run"])
	assert.Equal(t, 5, m["races_scored"])
	assert.Len(t, m, 9)
	assert.Contains(t, s.String(), "Scored=5")
}
