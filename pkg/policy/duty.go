package policy

import (
	"fmt"
)

// Fixed transaction fees and rates.
const (
	ValuationFee          = 500.0
	MortgageDutyRate      = 0.4 // percent of loan amount
	FireInsuranceAnnual   = 100.0
	HomeInsuranceAnnual   = 300.0
	SellingLegalFee       = 2500.0
	EarlyRepaymentPenalty = 1.5 // percent of outstanding balance
)

var buyersDutySchedule = Schedule{
	{Threshold: 0, Rate: 1},
	{Threshold: 180000, Rate: 2},
	{Threshold: 360000, Rate: 3},
	{Threshold: 1000000, Rate: 4},
	{Threshold: 1500000, Rate: 5},
	{Threshold: 3000000, Rate: 6},
}

// BuyersDuty is the marginal buyer's stamp duty payable on price.
func BuyersDuty(price float64) float64 {
	return buyersDutySchedule.Apply(price)
}

// additionalDutyRates is indexed by property count minus one, with the last
// entry covering the third and subsequent properties.
var additionalDutyRates = map[Residency][3]float64{
	Citizen:           {0, 20, 30},
	PermanentResident: {5, 30, 35},
	Foreigner:         {60, 60, 60},
}

// AdditionalBuyersDutyRate returns the additional levy rate in percent.
func AdditionalBuyersDutyRate(residency Residency, propertyCount int) (float64, error) {
	rates, ok := additionalDutyRates[residency]
	if !ok {
		return 0, fmt.Errorf("%w: unknown residency %q", ErrInvalidCategory, string(residency))
	}
	if err := ValidatePropertyCount(propertyCount); err != nil {
		return 0, err
	}
	idx := propertyCount - 1
	if idx > len(rates)-1 {
		idx = len(rates) - 1
	}
	return rates[idx], nil
}

// AdditionalDuty carries the levy amount together with the rate it was
// charged at.
type AdditionalDuty struct {
	Amount float64
	Rate   float64
}

// AdditionalBuyersDuty computes the additional levy on price.
func AdditionalBuyersDuty(price float64, residency Residency, propertyCount int) (AdditionalDuty, error) {
	rate, err := AdditionalBuyersDutyRate(residency, propertyCount)
	if err != nil {
		return AdditionalDuty{}, err
	}
	return AdditionalDuty{
		Amount: Schedule{{Threshold: 0, Rate: rate}}.Apply(price),
		Rate:   rate,
	}, nil
}

// SellersDutyRate returns the seller's stamp duty rate in percent for a sale
// after yearsHeld years. Exactly 1, 2 or 3 years fall into the lower band.
func SellersDutyRate(yearsHeld float64) float64 {
	switch {
	case yearsHeld < 1:
		return 12
	case yearsHeld < 2:
		return 8
	case yearsHeld < 3:
		return 4
	default:
		return 0
	}
}

// SellersDuty is the seller's stamp duty payable on salePrice.
func SellersDuty(salePrice, yearsHeld float64) float64 {
	return Schedule{{Threshold: 0, Rate: SellersDutyRate(yearsHeld)}}.Apply(salePrice)
}

// LegalFee is the conveyancing fee for a purchase at price.
func LegalFee(price float64) float64 {
	switch {
	case price <= 1000000:
		return 2500
	case price <= 2000000:
		return 3000
	case price <= 3000000:
		return 3500
	default:
		return 5000
	}
}

// MortgageDuty is the stamp duty on the mortgage deed.
func MortgageDuty(loanAmount float64) float64 {
	return Schedule{{Threshold: 0, Rate: MortgageDutyRate}}.Apply(loanAmount)
}

// AnnualInsurance is the combined fire and home insurance allowance.
func AnnualInsurance() float64 {
	return FireInsuranceAnnual + HomeInsuranceAnnual
}
