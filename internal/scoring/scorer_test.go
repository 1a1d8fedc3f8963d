package scoring

import (
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/paddock-parser/internal/models"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func raceWithOdds(key string, prices ...float64) *models.NormalizedRace {
	race := &models.NormalizedRace{RaceKey: key, TrackKey: "ascot"}
	for i, p := range prices {
		price := p
		race.Runners = append(race.Runners, models.NormalizedRunner{
			RunnerID:    fmt.Sprintf("%d", i+1),
			Name:        fmt.Sprintf("Runner %d", i+1),
			SaddleCloth: fmt.Sprintf("%d", i+1),
			OddsDecimal: &price,
		})
	}
	return race
}

func TestScoreWorkedExample(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	result := s.Score(raceWithOdds("ascot::r1430", 3.5, 4.0, 5.0, 6.0))

	assert.Equal(t, 75.0, result.Score)
	assert.Equal(t, "Field: 4 (60), Fav Odds: 3.50 (80), Spread: 0.50 (50), FavRatio: 0.76(90)", result.Reason)
	require.NotNil(t, result.BestValueScore)
	assert.Equal(t, 100.0, *result.BestValueScore)
	require.NotNil(t, result.BestValueReason)
	assert.Equal(t, "Value Pick: Runner 3 (5.00)", *result.BestValueReason)
}

func TestScoreShortFavorite(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	result := s.Score(raceWithOdds("ascot::r1430", 2.0, 3.5, 5.0, 6.0))

	assert.Equal(t, 73.0, result.Score)
	assert.Equal(t, "Field: 4 (60), Fav Odds: 2.00 (100), Spread: 1.50 (80), FavRatio: 0.48(50)", result.Reason)
}

func TestScoreSortsRunnersByOdds(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	ordered := s.Score(raceWithOdds("a::r1", 3.5, 4.0, 5.0, 6.0))
	shuffled := s.Score(raceWithOdds("a::r1", 6.0, 5.0, 3.5, 4.0))

	assert.Equal(t, ordered.Score, shuffled.Score)
	assert.Equal(t, ordered.Reason, shuffled.Reason)
}

func TestScoreInsufficientOdds(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	race := raceWithOdds("ascot::r1430", 3.0)
	race.Runners = append(race.Runners, models.NormalizedRunner{Name: "Unpriced"})

	result := s.Score(race)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, reasonInsufficientOdds, result.Reason)
	assert.Nil(t, result.BestValueScore)

	empty := s.Score(&models.NormalizedRace{RaceKey: "ascot::r1500"})
	assert.Equal(t, 0.0, empty.Score)
	assert.Equal(t, reasonInsufficientOdds, empty.Reason)
}

func TestScoreCountsUnpricedRunnersInFieldSize(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	race := raceWithOdds("ascot::r1430", 3.5, 4.0, 5.0, 6.0)
	race.Runners = append(race.Runners, models.NormalizedRunner{Name: "Non Runner"})

	result := s.Score(race)
	assert.Contains(t, result.Reason, "Field: 5 (100)")
	assert.Equal(t, 85.0, result.Score)
}

func TestScoreTwoRunners(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	result := s.Score(raceWithOdds("a::r1", 2.0, 3.0))
	assert.Equal(t, "Field: 2 (20), Fav Odds: 2.00 (100), Spread: 1.00 (50), FavRatio: 0.00(20)", result.Reason)
	assert.Equal(t, 51.0, result.Score)
	require.NotNil(t, result.BestValueReason)
	assert.Equal(t, reasonNoValuePick, *result.BestValueReason)
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())
	fields := [][]float64{
		{1.01, 1.02},
		{1.2, 50, 100},
		{2.5, 2.5, 2.5, 2.5},
		{1.5, 2.5, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26},
		{3.0, 3.75, 11, 17, 21},
	}

	for _, prices := range fields {
		first := s.Score(raceWithOdds("a::r1", prices...))
		second := s.Score(raceWithOdds("a::r1", prices...))
		assert.Equal(t, first, second)
		assert.GreaterOrEqual(t, first.Score, 0.0)
		assert.LessOrEqual(t, first.Score, 100.0)
		assert.Equal(t, first.Score, float64(int64(first.Score*100+0.5))/100)
	}
}

func TestBestValueTiers(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"mid price close to favorite", []float64{2, 3, 5}, 100},
		{"long price, moderate gap", []float64{4, 6, 11}, 0.6*80 + 0.4*70},
		{"short third favorite", []float64{2, 2.5, 3}, 0.6*50 + 0.4*100},
		{"outsider, wide gap", []float64{2, 5, 16}, 0.6*20 + 0.4*30},
		{"tightly bunched odds-on", []float64{1.2, 1.5, 2}, 0.4 * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Score(raceWithOdds("a::r1", tt.prices...))
			require.NotNil(t, result.BestValueScore)
			assert.InDelta(t, tt.want, *result.BestValueScore, 0.001)
		})
	}
}

func TestCustomWeights(t *testing.T) {
	s := NewScorer(map[string]float64{
		"field_size":    1,
		"favorite_odds": 0,
		"odds_spread":   0,
		"value_vs_sp":   0,
	}, nil, quietLogger())

	result := s.Score(raceWithOdds("a::r1", 3.5, 4.0, 5.0, 6.0))
	assert.Equal(t, 60.0, result.Score)
}

func TestWeightsAreNormalized(t *testing.T) {
	s := NewScorer(map[string]float64{
		"FIELD_SIZE": 2.5, "FAVORITE_ODDS": 3.5, "ODDS_SPREAD": 1, "VALUE_VS_SP": 3,
	}, nil, quietLogger())

	result := s.Score(raceWithOdds("a::r1", 3.5, 4.0, 5.0, 6.0))
	assert.Equal(t, 75.0, result.Score)
}

func TestNegativeWeightsAreClamped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewScorer(map[string]float64{
		"FIELD_SIZE": 1, "FAVORITE_ODDS": -1, "ODDS_SPREAD": 0, "VALUE_VS_SP": 0.5,
	}, nil, logger)

	weights := s.Weights()
	assert.Zero(t, weights[WeightFavoriteOdds])
	assert.InDelta(t, 2.0/3.0, weights[WeightFieldSize], 1e-9)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Negative weight clamped to zero", hook.LastEntry().Message)

	for _, prices := range [][]float64{{1.2, 50, 100}, {3.5, 4.0, 5.0, 6.0}, {1.01, 1.02}} {
		result := s.Score(raceWithOdds("a::r1", prices...))
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 100.0)
	}
}

func TestZeroWeightsFallBackToDefaults(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewScorer(map[string]float64{
		"FIELD_SIZE": 0, "FAVORITE_ODDS": 0, "ODDS_SPREAD": 0, "VALUE_VS_SP": 0,
	}, nil, logger)

	assert.InDeltaMapValues(t, DefaultScorerWeights(), s.Weights(), 1e-9)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Configured weights sum to zero, using defaults", hook.LastEntry().Message)
}

func TestMissingWeightKeysUseDefaults(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewScorer(map[string]float64{"FIELD_SIZE": 0.25}, nil, logger)

	assert.InDeltaMapValues(t, DefaultScorerWeights(), s.Weights(), 1e-9)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
	assert.Equal(t, []string{WeightFavoriteOdds, WeightOddsSpread, WeightValueVsSP}, hook.Entries[0].Data["keys"])
}

func TestScoreAllSortsDescending(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())

	races := []models.NormalizedRace{
		*raceWithOdds("a::r1", 3.0),
		*raceWithOdds("b::r1", 3.5, 4.0, 5.0, 6.0),
		*raceWithOdds("c::r1", 2.0, 3.5, 5.0, 6.0),
		*raceWithOdds("d::r1"),
	}

	results := s.ScoreAll(races)

	require.Len(t, results, 4)
	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = r.Race.RaceKey
	}
	assert.Equal(t, []string{"b::r1", "c::r1", "a::r1", "d::r1"}, keys)
	assert.Empty(t, s.ScoreAll(nil))
}

func TestScoreResultRecord(t *testing.T) {
	s := NewScorer(nil, nil, quietLogger())
	result := s.Score(raceWithOdds("ascot::r1430", 3.5, 4.0, 5.0, 6.0))

	record := result.Record()
	assert.Equal(t, "ascot::r1430", record.RaceKey)
	assert.Equal(t, result.Score, record.Score)
	assert.Equal(t, result.Reason, record.Reason)
	assert.Equal(t, result.BestValueScore, record.BestValueScore)
	assert.Equal(t, result.Race, record.Race)
}
