package valuation

import (
	"math"

	"github.com/iwvelando/property-valuation/pkg/mathutil"
	"github.com/iwvelando/property-valuation/pkg/policy"
)

// calculateDisposition values the sale at the end of the holding period.
func calculateDisposition(in PropertyInputs, loan LoanFigures) Disposition {
	years := float64(in.HoldingPeriodYears)

	var d Disposition
	d.FuturePrice = FuturePrice(in.Price, in.AnnualAppreciation, years)
	d.CapitalGain = d.FuturePrice - in.Price
	d.SellersDutyRate = policy.SellersDutyRate(years)
	d.SellersDuty = policy.SellersDuty(d.FuturePrice, years)
	d.AgentCommission = mathutil.ApplyPercentage(d.FuturePrice, in.AgentCommission)
	d.SellingLegalFee = policy.SellingLegalFee
	d.RemainingLoan = loan.RemainingBalance

	d.PenaltyApplies = in.HoldingPeriodYears < in.LockInYears && d.RemainingLoan > 0
	if d.PenaltyApplies {
		d.EarlyRepaymentPenalty = mathutil.ApplyPercentage(d.RemainingLoan, policy.EarlyRepaymentPenalty)
	}

	d.TotalSellingCosts = d.SellersDuty + d.AgentCommission + d.SellingLegalFee + d.EarlyRepaymentPenalty
	d.NetSaleProceeds = d.FuturePrice - d.TotalSellingCosts - d.RemainingLoan
	return d
}

// FuturePrice compounds price at appreciation percent per year.
func FuturePrice(price, appreciation, years float64) float64 {
	return price * math.Pow(1+mathutil.PercentToDecimal(appreciation), years)
}
