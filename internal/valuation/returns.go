package valuation

import (
	"math"

	"github.com/iwvelando/property-valuation/pkg/constants"
	"github.com/iwvelando/property-valuation/pkg/cpf"
	"github.com/iwvelando/property-valuation/pkg/mathutil"
	"github.com/iwvelando/property-valuation/pkg/policy"
)

// BenchmarkRate is an alternative asset compounding at a fixed annual rate.
type BenchmarkRate struct {
	Name string  `json:"name" yaml:"name" mapstructure:"name"`
	Rate float64 `json:"rate" yaml:"rate" mapstructure:"rate"`
}

// DefaultBenchmarks returns the comparison assets used unless overridden.
func DefaultBenchmarks() []BenchmarkRate {
	return []BenchmarkRate{
		{Name: "Equity index", Rate: 7.0},
		{Name: "REIT", Rate: 5.5},
		{Name: "Bonds", Rate: 3.5},
		{Name: "Fixed deposit", Rate: 2.5},
	}
}

// returnsContext carries the stage outputs the aggregator folds together.
type returnsContext struct {
	inputs        PropertyInputs
	acquisition   AcquisitionCosts
	loan          LoanFigures
	affordability Affordability
	cashflow      Cashflow
	stream        []YearCashflow
	disposition   Disposition
}

// calculateReturns aggregates investment, return and profit. Negative years
// are discounted into the capital committed; positive years are compounded
// into the proceeds.
func calculateReturns(ctx returnsContext, preciseCpf bool) Returns {
	in := ctx.inputs
	years := float64(in.HoldingPeriodYears)

	var r Returns
	for _, year := range ctx.stream {
		r.PresentValueOfCashflows += year.PresentValue
		r.FutureValueOfCashflows += year.FutureValue
		if year.PresentValue < 0 {
			r.NegativeCashflowPV += year.PresentValue
		}
		if year.FutureValue > 0 {
			r.PositiveCashflowFV += year.FutureValue
		}
	}

	if !in.RentOut {
		r.TotalSavedRent = ctx.cashflow.SavedRentAnnual * years
	}

	r.TotalInvestment = ctx.acquisition.TotalUpfront + ctx.loan.DownPayment - r.NegativeCashflowPV
	r.TotalReturn = ctx.disposition.NetSaleProceeds + r.PositiveCashflowFV + r.TotalSavedRent

	r.CpfDownpaymentInterest = cpf.AccruedInterest(ctx.affordability.CpfDownpayment, years)
	r.CpfInstalmentInterest = instalmentInterest(in, ctx.loan, preciseCpf)
	r.CpfOpportunityCost = r.CpfDownpaymentInterest + r.CpfInstalmentInterest
	r.CpfRefundDue = ctx.affordability.CpfDownpayment + ctx.loan.CpfUsedForInstalments + r.CpfOpportunityCost

	r.NetProfit = r.TotalReturn - r.TotalInvestment - r.CpfOpportunityCost
	if r.TotalInvestment > 0 {
		r.ROI = r.NetProfit / r.TotalInvestment * constants.PercentageMultiplier
	}
	r.AnnualizedROI = annualizedROI(r.NetProfit, r.TotalInvestment, years)

	r.BreakEvenPrice = breakEvenPrice(in, ctx)
	if r.BreakEvenPrice > 0 {
		r.BreakEvenAppreciation = (math.Pow(r.BreakEvenPrice/in.Price, 1/years) - 1) * constants.PercentageMultiplier
	}
	return r
}

// instalmentInterest is the CPF interest owed on money withdrawn for
// monthly instalments during the holding period.
func instalmentInterest(in PropertyInputs, loan LoanFigures, precise bool) float64 {
	if loan.CpfUsedForInstalments <= 0 {
		return 0
	}
	years := float64(in.HoldingPeriodYears)
	if !precise {
		return cpf.InstalmentAccruedInterest(loan.CpfUsedForInstalments, years)
	}

	loanYears := loanYearsWithin(in)
	months := int(loanYears * constants.MonthsPerYear)
	accrued := cpf.InstalmentAccruedInterestMonthly(loan.MonthlyPayment, months)
	if idle := years - loanYears; idle > 0 {
		// Withdrawals stopped when the loan was repaid but interest keeps
		// accruing on them until the sale.
		accrued += cpf.AccruedInterest(loan.CpfUsedForInstalments+accrued, idle)
	}
	return accrued
}

func annualizedROI(netProfit, totalInvestment, years float64) float64 {
	if totalInvestment <= 0 || years <= 0 {
		return 0
	}
	growth := 1 + netProfit/totalInvestment
	if growth <= 0 {
		return -100
	}
	return (math.Pow(growth, 1/years) - 1) * constants.PercentageMultiplier
}

// breakEvenPrice solves for the sale price at which the owner recovers every
// dollar spent. Commission and seller's duty scale with the sale price so
// they are moved to the denominator.
func breakEvenPrice(in PropertyInputs, ctx returnsContext) float64 {
	years := float64(in.HoldingPeriodYears)
	cf := ctx.cashflow

	holdingCosts := (cf.PropertyTax + cf.IncomeTax + cf.AnnualMaintenance) * years
	incomeReceived := cf.AnnualIncome * years
	fixedSellingCosts := ctx.disposition.SellingLegalFee + ctx.disposition.EarlyRepaymentPenalty

	numerator := in.Price + ctx.acquisition.TotalUpfront + holdingCosts +
		ctx.loan.InterestDuringHolding - incomeReceived + fixedSellingCosts
	denominator := 1 - mathutil.PercentToDecimal(in.AgentCommission) -
		mathutil.PercentToDecimal(policy.SellersDutyRate(years))
	if denominator <= 0 || numerator <= 0 {
		return 0
	}
	return numerator / denominator
}

// compareBenchmarks compounds the capital committed at each benchmark rate
// over the holding period.
func compareBenchmarks(benchmarks []BenchmarkRate, returns Returns, years int) []Benchmark {
	results := make([]Benchmark, 0, len(benchmarks))
	for _, b := range benchmarks {
		final := returns.TotalInvestment * math.Pow(1+mathutil.PercentToDecimal(b.Rate), float64(years))
		profit := final - returns.TotalInvestment
		results = append(results, Benchmark{
			Name:                b.Name,
			Rate:                b.Rate,
			FinalValue:          final,
			Profit:              profit,
			PropertyOutperforms: returns.NetProfit > profit,
		})
	}
	return results
}
