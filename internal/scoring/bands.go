package scoring

import "github.com/shopspring/decimal"

func fieldSizeScore(runners int) float64 {
	switch {
	case runners >= 5 && runners <= 7:
		return 100
	case runners >= 8 && runners <= 10:
		return 80
	case runners >= 3 && runners <= 4:
		return 60
	case runners >= 11 && runners <= 12:
		return 40
	default:
		return 20
	}
}

// Odds-on favorites score below modest ones.
func favoriteOddsScore(odds float64) float64 {
	switch {
	case odds < 1.5:
		return 60
	case odds < 2.5:
		return 100
	case odds < 4.0:
		return 80
	case odds < 6.0:
		return 50
	default:
		return 30
	}
}

// spreadScore bands the gap between the two shortest prices. A nil spread
// means one of them is missing.
func spreadScore(spread *float64) float64 {
	if spread == nil {
		return 20
	}
	switch s := *spread; {
	case s > 2.0:
		return 100
	case s > 1.0:
		return 80
	case s >= 0.5:
		return 50
	default:
		return 30
	}
}

// favoriteRatioScore compares the favorite's price with the mean price of
// the priced field and returns the band score and the ratio.
func favoriteRatioScore(sortedOdds []float64) (float64, float64) {
	if len(sortedOdds) < 3 {
		return 20, 0
	}
	sum := decimal.Zero
	for _, o := range sortedOdds {
		sum = sum.Add(decimal.NewFromFloat(o))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(sortedOdds))))
	if mean.IsZero() {
		return 0, 0
	}
	ratio, _ := decimal.NewFromFloat(sortedOdds[0]).Div(mean).Float64()

	switch {
	case ratio >= 0.8:
		return 100, ratio
	case ratio >= 0.7:
		return 90, ratio
	case ratio >= 0.5:
		return 70, ratio
	case ratio >= 0.3:
		return 50, ratio
	default:
		return 40, ratio
	}
}

func valueOddsScore(odds float64) float64 {
	switch {
	case odds >= 5 && odds < 10:
		return 100
	case odds >= 10 && odds < 15:
		return 80
	case odds >= 3 && odds < 5:
		return 50
	case odds >= 15:
		return 20
	default:
		return 0
	}
}

func valueCompetitivenessScore(gap float64) float64 {
	switch {
	case gap < 4:
		return 100
	case gap < 8:
		return 70
	default:
		return 30
	}
}
