// Package cpf models the accrued interest owed back to the CPF ordinary
// account when a property bought with CPF savings is sold.
package cpf

import (
	"math"

	"github.com/iwvelando/property-valuation/pkg/constants"
	"github.com/iwvelando/property-valuation/pkg/mathutil"
)

// OrdinaryAccountRate is the ordinary account interest rate, percent per year.
const OrdinaryAccountRate = 2.5

// AccruedInterest is the interest amount would have earned had it stayed in
// the ordinary account for years, compounded annually.
func AccruedInterest(amount, years float64) float64 {
	if amount <= 0 || years <= 0 {
		return 0
	}
	return amount * (math.Pow(1+mathutil.PercentToDecimal(OrdinaryAccountRate), years) - 1)
}

// InstalmentAccruedInterest approximates the interest on CPF withdrawn
// month by month for loan instalments: half of the total used, compounded
// over half of the holding period. This understates the per-month accrual
// of InstalmentAccruedInterestMonthly and is kept as the default figure.
func InstalmentAccruedInterest(totalUsed, years float64) float64 {
	return AccruedInterest(totalUsed/2, years/2)
}

// InstalmentAccruedInterestMonthly accrues interest on each monthly
// withdrawal separately from the month it was used until the end of months.
func InstalmentAccruedInterestMonthly(monthlyAmount float64, months int) float64 {
	if monthlyAmount <= 0 || months <= 0 {
		return 0
	}
	total := 0.0
	for k := 1; k <= months; k++ {
		total += AccruedInterest(monthlyAmount, float64(months-k)/constants.MonthsPerYear)
	}
	return total
}
