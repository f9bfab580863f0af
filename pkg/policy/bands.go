package policy

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Band is one step of a marginal schedule: Rate (percent) applies to the part
// of the base above Threshold and below the next band's Threshold.
type Band struct {
	Threshold float64
	Rate      float64
}

// Schedule is a progressive schedule ordered by ascending threshold.
type Schedule []Band

// Apply accumulates min(remaining, bandWidth) * rate over every band the base
// reaches. Bands above the base contribute nothing. A NaN or infinite base is
// returned unchanged since decimal cannot represent it.
func (s Schedule) Apply(base float64) float64 {
	if math.IsNaN(base) || math.IsInf(base, 1) {
		return base
	}
	if base <= 0 || len(s) == 0 {
		return 0
	}

	amount := decimal.NewFromFloat(base)
	total := decimal.Zero
	for i, band := range s {
		lower := decimal.NewFromFloat(band.Threshold)
		if amount.LessThanOrEqual(lower) {
			break
		}
		portion := amount.Sub(lower)
		if i+1 < len(s) {
			width := decimal.NewFromFloat(s[i+1].Threshold).Sub(lower)
			portion = decimal.Min(portion, width)
		}
		total = total.Add(portion.Mul(decimal.NewFromFloat(band.Rate)).Div(hundred))
	}
	return total.InexactFloat64()
}

// MarginalRate returns the rate of the band the base falls into.
func (s Schedule) MarginalRate(base float64) float64 {
	if len(s) == 0 {
		return 0
	}
	rate := s[0].Rate
	for _, band := range s[1:] {
		if base <= band.Threshold {
			break
		}
		rate = band.Rate
	}
	return rate
}
