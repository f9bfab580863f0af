package valuation

import (
	"github.com/iwvelando/property-valuation/pkg/constants"
	"github.com/iwvelando/property-valuation/pkg/loans"
	"github.com/iwvelando/property-valuation/pkg/mathutil"
)

const (
	// TDSRLimit is the total debt servicing ratio ceiling, percent of income.
	TDSRLimit = 55.0

	// MinimumCashPercentage of the price must be paid in cash on bank loans.
	MinimumCashPercentage = 5.0

	// cpfUsableFraction of the CPF balance counts toward the purchase when
	// solving for the maximum price.
	cpfUsableFraction = 0.95

	// upfrontCostAllowance approximates duties and fees as a share of price
	// when solving for the maximum price.
	upfrontCostAllowance = 0.05
)

const (
	ConstraintCash = "cash"
	ConstraintTDSR = "tdsr"
)

// calculateAffordability checks cash, CPF and debt servicing, and solves for
// the highest price the buyer can support.
func calculateAffordability(in PropertyInputs, acquisition AcquisitionCosts, loan LoanFigures) Affordability {
	var result Affordability

	if loan.LoanAmount > 0 {
		result.MinimumCashDownpayment = mathutil.ApplyPercentage(in.Price, MinimumCashPercentage)
	}
	if in.UseCpfForDownpayment {
		cpfEligible := mathutil.Max(0, loan.DownPayment-result.MinimumCashDownpayment)
		result.CpfDownpayment = mathutil.Min(in.CpfOaBalance, cpfEligible)
	}
	result.CashDownpayment = loan.DownPayment - result.CpfDownpayment
	result.CashNeeded = result.CashDownpayment + acquisition.TotalUpfront
	result.CashSurplus = in.CashAvailable - result.CashNeeded
	result.CpfRemaining = in.CpfOaBalance - result.CpfDownpayment

	debtService := loan.MonthlyPayment + in.ExistingMonthlyDebt
	result.TDSRLimit = TDSRLimit
	if in.MonthlyIncome > 0 {
		result.TDSR = debtService / in.MonthlyIncome * 100
		result.TDSRWithinLimit = result.TDSR <= TDSRLimit
	} else {
		// Without income the ratio is undefined; only a debt-free buyer passes.
		result.TDSRWithinLimit = debtService == 0
	}
	result.TDSRHeadroom = TDSRLimit - result.TDSR

	result.CashSufficient = in.CashAvailable >= result.CashNeeded
	result.CpfSufficient = !in.UseCpfForDownpayment || in.CpfOaBalance >= result.CpfDownpayment
	result.CanAfford = result.CashSufficient && result.TDSRWithinLimit && result.CpfSufficient

	result.MaxPriceByCash, result.MaxPriceByTDSR = maxPriceBounds(in)
	result.BindingConstraint = ConstraintCash
	maxPrice := result.MaxPriceByCash
	if result.MaxPriceByTDSR < maxPrice {
		maxPrice = result.MaxPriceByTDSR
		result.BindingConstraint = ConstraintTDSR
	}
	result.MaxAffordablePrice = mathutil.FloorToMultiple(maxPrice, constants.AffordablePriceStep)

	return result
}

// maxPriceBounds inverts the cash and debt-servicing constraints into prices.
// Without a loan the debt-servicing bound does not bind and mirrors the cash bound.
func maxPriceBounds(in PropertyInputs) (byCash, byTDSR float64) {
	downPaymentFraction := 1 - mathutil.PercentToDecimal(in.LoanPercentage)
	byCash = (in.CashAvailable + in.CpfOaBalance*cpfUsableFraction) / (downPaymentFraction + upfrontCostAllowance)

	loanFraction := mathutil.PercentToDecimal(in.LoanPercentage)
	if loanFraction <= 0 {
		return byCash, byCash
	}

	maxInstalment := in.MonthlyIncome*TDSRLimit/100 - in.ExistingMonthlyDebt
	maxLoan := loans.MaxPrincipalForPayment(maxInstalment, in.InterestRate, in.LoanTenureYears)
	return byCash, maxLoan / loanFraction
}
