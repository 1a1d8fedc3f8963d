// Package scoring rates normalized races by how bettable they look.
package scoring

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/models"
)

const (
	reasonInsufficientOdds = "insufficient odds data"
	reasonNoValuePick      = "not enough runners for value score"
)

// Scorer computes the composite bettability score and the best value pick.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	weights          map[string]float64
	bestValueWeights map[string]float64
}

// NewScorer resolves the configured weight sets. Either map may be nil;
// negative weights are treated as zero.
func NewScorer(scorerWeights, bestValueWeights map[string]float64, logger logrus.FieldLogger) *Scorer {
	return &Scorer{
		weights:          resolveWeights("scorer_weights", scorerWeights, DefaultScorerWeights(), logger),
		bestValueWeights: resolveWeights("best_value_weights", bestValueWeights, DefaultBestValueWeights(), logger),
	}
}

// Weights returns a copy of the normalized composite weights.
func (s *Scorer) Weights() map[string]float64 {
	out := make(map[string]float64, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// Score rates a single race. Races with fewer than two priced runners score 0.
func (s *Scorer) Score(race *models.NormalizedRace) models.ScoreResult {
	result := models.ScoreResult{Race: *race}

	priced := race.RunnersWithOdds()
	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].GetOdds() < priced[j].GetOdds()
	})
	result.BestValueScore, result.BestValueReason = s.bestValue(priced)

	if len(priced) < 2 {
		result.Score = 0
		result.Reason = reasonInsufficientOdds
		return result
	}

	odds := make([]float64, len(priced))
	for i, r := range priced {
		odds[i] = r.GetOdds()
	}

	fieldSize := race.FieldSize()
	fav := odds[0]
	spreadDec := decimal.NewFromFloat(odds[1]).Sub(decimal.NewFromFloat(fav))
	spread, _ := spreadDec.Float64()

	fieldScore := fieldSizeScore(fieldSize)
	favScore := favoriteOddsScore(fav)
	sprScore := spreadScore(&spread)
	ratioScore, ratio := favoriteRatioScore(odds)

	composite := decimal.NewFromFloat(fieldScore * s.weights[WeightFieldSize]).
		Add(decimal.NewFromFloat(favScore * s.weights[WeightFavoriteOdds])).
		Add(decimal.NewFromFloat(sprScore * s.weights[WeightOddsSpread])).
		Add(decimal.NewFromFloat(ratioScore * s.weights[WeightValueVsSP]))

	result.Score, _ = composite.Round(2).Float64()
	result.Reason = fmt.Sprintf("Field: %d (%.0f), Fav Odds: %.2f (%.0f), Spread: %.2f (%.0f), FavRatio: %.2f(%.0f)",
		fieldSize, fieldScore, fav, favScore, spread, sprScore, ratio, ratioScore)

	return result
}

// bestValue rates the third favorite on its price and its gap to the
// favorite. priced must already be sorted by odds.
func (s *Scorer) bestValue(priced []models.NormalizedRunner) (*float64, *string) {
	if len(priced) < 3 {
		reason := reasonNoValuePick
		return nil, &reason
	}

	fav := priced[0].GetOdds()
	pick := priced[2]
	pickOdds := pick.GetOdds()
	gap, _ := decimal.NewFromFloat(pickOdds).Sub(decimal.NewFromFloat(fav)).Float64()

	score := decimal.NewFromFloat(valueOddsScore(pickOdds) * s.bestValueWeights[WeightValueOdds]).
		Add(decimal.NewFromFloat(valueCompetitivenessScore(gap) * s.bestValueWeights[WeightValueCompetitiveness]))
	rounded, _ := score.Round(2).Float64()

	reason := fmt.Sprintf("Value Pick: %s (%.2f)", pick.Name, pickOdds)
	return &rounded, &reason
}

// ScoreAll scores every race and returns the results sorted by score,
// highest first. Equal scores keep input order.
func (s *Scorer) ScoreAll(races []models.NormalizedRace) []models.ScoreResult {
	results := make([]models.ScoreResult, 0, len(races))
	for i := range races {
		results = append(results, s.Score(&races[i]))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
