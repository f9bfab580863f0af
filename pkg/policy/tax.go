package policy

import (
	"fmt"
	"math"
)

var ownerOccupiedSchedule = Schedule{
	{Threshold: 0, Rate: 0},
	{Threshold: 8000, Rate: 4},
	{Threshold: 30000, Rate: 6},
	{Threshold: 40000, Rate: 10},
	{Threshold: 55000, Rate: 14},
	{Threshold: 70000, Rate: 20},
	{Threshold: 85000, Rate: 26},
	{Threshold: 100000, Rate: 32},
}

var nonOwnerOccupiedSchedule = Schedule{
	{Threshold: 0, Rate: 12},
	{Threshold: 30000, Rate: 20},
	{Threshold: 45000, Rate: 28},
	{Threshold: 60000, Rate: 36},
}

// PropertyTax is the annual property tax on an annual value. Owner-occupied
// homes use the concessionary table.
func PropertyTax(annualValue float64, ownerOccupied bool) float64 {
	if ownerOccupied {
		return ownerOccupiedSchedule.Apply(annualValue)
	}
	return nonOwnerOccupiedSchedule.Apply(annualValue)
}

// IncomeTaxBracket is a resident income tax bracket. UpperBound is zero for
// the top bracket.
type IncomeTaxBracket struct {
	LowerBound float64 `json:"lowerBound"`
	UpperBound float64 `json:"upperBound,omitempty"`
	Rate       float64 `json:"rate"`
}

var incomeTaxSchedule = Schedule{
	{Threshold: 0, Rate: 0},
	{Threshold: 20000, Rate: 2},
	{Threshold: 30000, Rate: 3.5},
	{Threshold: 40000, Rate: 7},
	{Threshold: 80000, Rate: 11.5},
	{Threshold: 120000, Rate: 15},
	{Threshold: 160000, Rate: 18},
	{Threshold: 200000, Rate: 19},
	{Threshold: 240000, Rate: 19.5},
	{Threshold: 280000, Rate: 20},
	{Threshold: 320000, Rate: 22},
	{Threshold: 500000, Rate: 23},
	{Threshold: 1000000, Rate: 24},
}

// IncomeTaxBrackets enumerates the resident brackets for the marginal rate
// selector.
func IncomeTaxBrackets() []IncomeTaxBracket {
	brackets := make([]IncomeTaxBracket, 0, len(incomeTaxSchedule))
	for i, band := range incomeTaxSchedule {
		bracket := IncomeTaxBracket{LowerBound: band.Threshold, Rate: band.Rate}
		if i+1 < len(incomeTaxSchedule) {
			bracket.UpperBound = incomeTaxSchedule[i+1].Threshold
		}
		brackets = append(brackets, bracket)
	}
	return brackets
}

// MarginalTaxRates lists the selectable marginal rates in ascending order.
func MarginalTaxRates() []float64 {
	rates := make([]float64, 0, len(incomeTaxSchedule))
	for _, band := range incomeTaxSchedule {
		rates = append(rates, band.Rate)
	}
	return rates
}

// ValidateMarginalRate checks that rate is one of the enumerated bracket rates.
func ValidateMarginalRate(rate float64) error {
	for _, band := range incomeTaxSchedule {
		if math.Abs(band.Rate-rate) < 1e-9 {
			return nil
		}
	}
	return fmt.Errorf("%w: marginal tax rate %g%% is not a resident bracket rate", ErrInvalidCategory, rate)
}

// MarginalRateForIncome returns the bracket rate an annual chargeable income
// falls into. Used to pre-select a rate; the engine itself takes the rate as
// an input.
func MarginalRateForIncome(annualIncome float64) float64 {
	if annualIncome <= 0 {
		return 0
	}
	return incomeTaxSchedule.MarginalRate(annualIncome)
}
