package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	oddsNonPrices = map[string]struct{}{"SP": {}, "NR": {}, "SCR": {}, "VOID": {}}
	oddsEvens     = map[string]struct{}{"EVS": {}, "EVENS": {}}
)

// ConvertOddsToDecimal parses fractional ("5/2", "5-2"), decimal ("3.5") and
// evens notation into decimal odds. Anything that does not produce a price
// above 1.0 yields nil.
func ConvertOddsToDecimal(text string) *float64 {
	s := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(text)), "-", "/")
	if s == "" {
		return nil
	}
	if _, ok := oddsNonPrices[s]; ok {
		return nil
	}
	if _, ok := oddsEvens[s]; ok {
		return floatPtr(decimal.NewFromInt(2))
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := decimal.NewFromString(strings.TrimSpace(num))
		if err != nil {
			return nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(den))
		if err != nil || !d.IsPositive() {
			return nil
		}
		return floatPtr(n.Div(d).Add(decimal.NewFromInt(1)))
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return floatPtr(v)
}

func floatPtr(d decimal.Decimal) *float64 {
	if !d.GreaterThan(decimal.NewFromInt(1)) {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// FormatFractional renders decimal odds as a fractional price for display,
// e.g. 3.5 -> "5/2". Prices that do not reduce to a small denominator are
// shown to two decimals.
func FormatFractional(odds float64) string {
	if odds <= 1 {
		return "-"
	}
	if odds == 2 {
		return "EVS"
	}
	profit := decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1))
	for den := int64(1); den <= 20; den++ {
		num := profit.Mul(decimal.NewFromInt(den))
		if num.Equal(num.Truncate(0)) {
			return num.String() + "/" + decimal.NewFromInt(den).String()
		}
	}
	return profit.Add(decimal.NewFromInt(1)).StringFixed(2)
}
