package scoring

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Composite score weight keys.
const (
	WeightFieldSize    = "FIELD_SIZE"
	WeightFavoriteOdds = "FAVORITE_ODDS"
	WeightOddsSpread   = "ODDS_SPREAD"
	WeightValueVsSP    = "VALUE_VS_SP"
)

// Best value weight keys.
const (
	WeightValueOdds            = "VALUE_ODDS_WEIGHT"
	WeightValueCompetitiveness = "VALUE_COMPETITIVENESS_WEIGHT"
)

// DefaultScorerWeights returns the composite weights used when none are
// configured.
func DefaultScorerWeights() map[string]float64 {
	return map[string]float64{
		WeightFieldSize:    0.25,
		WeightFavoriteOdds: 0.35,
		WeightOddsSpread:   0.10,
		WeightValueVsSP:    0.30,
	}
}

// DefaultBestValueWeights returns the best value weights used when none are
// configured.
func DefaultBestValueWeights() map[string]float64 {
	return map[string]float64{
		WeightValueOdds:            0.6,
		WeightValueCompetitiveness: 0.4,
	}
}

// resolveWeights merges supplied over defaults and scales the result so it
// sums to 1. Keys are matched case-insensitively because config loaders
// lower-case map keys. Negative weights count as zero, and a zero total
// falls back to the defaults outright.
func resolveWeights(kind string, supplied, defaults map[string]float64, logger logrus.FieldLogger) map[string]float64 {
	upper := make(map[string]float64, len(supplied))
	for k, v := range supplied {
		upper[strings.ToUpper(strings.TrimSpace(k))] = v
	}

	resolved := make(map[string]float64, len(defaults))
	var missing []string
	for key, def := range defaults {
		if v, ok := upper[key]; ok {
			if v < 0 {
				if logger != nil {
					logger.WithFields(logrus.Fields{"weights": kind, "key": key, "value": v}).Warn("Negative weight clamped to zero")
				}
				v = 0
			}
			resolved[key] = v
			delete(upper, key)
			continue
		}
		resolved[key] = def
		missing = append(missing, key)
	}

	if logger != nil && len(supplied) > 0 {
		if len(missing) > 0 {
			sort.Strings(missing)
			logger.WithFields(logrus.Fields{"weights": kind, "keys": missing}).Warn("Weight keys not configured, using defaults")
		}
		for key := range upper {
			logger.WithFields(logrus.Fields{"weights": kind, "key": key}).Warn("Ignoring unknown weight key")
		}
	}

	total := sumWeights(resolved)
	if !total.IsPositive() {
		if logger != nil {
			logger.WithField("weights", kind).Warn("Configured weights sum to zero, using defaults")
		}
		resolved = make(map[string]float64, len(defaults))
		for k, v := range defaults {
			resolved[k] = v
		}
		total = sumWeights(resolved)
	}

	for k, v := range resolved {
		resolved[k], _ = decimal.NewFromFloat(v).Div(total).Float64()
	}
	return resolved
}

func sumWeights(weights map[string]float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range weights {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}
