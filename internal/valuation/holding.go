package valuation

import (
	"math"

	"github.com/iwvelando/property-valuation/pkg/constants"
	"github.com/iwvelando/property-valuation/pkg/mathutil"
	"github.com/iwvelando/property-valuation/pkg/policy"
)

const (
	// DeemedExpensePercentage of gross rent is deductible without receipts.
	DeemedExpensePercentage = 15.0

	// RepairsAllowancePercentage of the price is set aside each year.
	RepairsAllowancePercentage = 1.0
)

// calculateCashflow derives one year of holding income and costs. Exactly one
// income path is active: rental when renting out, saved rent plus optional
// room income when staying.
func calculateCashflow(in PropertyInputs, loan LoanFigures) Cashflow {
	var cf Cashflow
	taxRate := mathutil.PercentToDecimal(in.MarginalTaxRate)

	if in.LoanPercentage > 0 && in.HoldingPeriodYears > 0 {
		cf.AnnualMortgageInterest = loan.InterestDuringHolding / float64(in.HoldingPeriodYears)
	}

	if in.RentOut {
		cf.GrossAnnualRental = in.ExpectedMonthlyRental * constants.MonthsPerYear
		cf.VacancyLoss = in.ExpectedMonthlyRental * (in.VacancyWeeks / constants.WeeksPerMonth)
		cf.EffectiveRental = cf.GrossAnnualRental - cf.VacancyLoss
		deemed := mathutil.ApplyPercentage(cf.EffectiveRental, DeemedExpensePercentage)
		cf.TaxableRentalIncome = mathutil.Max(0, cf.EffectiveRental-deemed-cf.AnnualMortgageInterest)
		cf.RentalIncomeTax = cf.TaxableRentalIncome * taxRate
		cf.AnnualIncome = cf.EffectiveRental
	} else {
		cf.SavedRentAnnual = in.CurrentMarketRent * constants.MonthsPerYear
		if in.RentRoom {
			cf.RoomIncomeAnnual = in.RoomRentalIncome * constants.MonthsPerYear
			deemed := mathutil.ApplyPercentage(cf.RoomIncomeAnnual, DeemedExpensePercentage)
			cf.RoomIncomeTax = (cf.RoomIncomeAnnual - deemed) * taxRate
		}
		cf.AnnualIncome = cf.SavedRentAnnual + cf.RoomIncomeAnnual
	}
	cf.IncomeTax = cf.RentalIncomeTax + cf.RoomIncomeTax

	// Annual value reflects potential rent even when the owner lives in the unit.
	cf.AnnualValue = in.ExpectedMonthlyRental * constants.MonthsPerYear
	cf.PropertyTax = policy.PropertyTax(cf.AnnualValue, !in.RentOut)

	cf.CondoFeesAnnual = in.MonthlyCondoFee * constants.MonthsPerYear
	cf.RepairsAllowance = mathutil.ApplyPercentage(in.Price, RepairsAllowancePercentage)
	cf.InsuranceAnnual = policy.AnnualInsurance()
	cf.AnnualMaintenance = cf.CondoFeesAnnual + cf.RepairsAllowance + cf.InsuranceAnnual

	cf.AnnualLoanService = loan.AnnualPayment
	cf.NetAnnualCashflow = cf.AnnualIncome - cf.PropertyTax - cf.IncomeTax - cf.AnnualLoanService - cf.AnnualMaintenance
	cf.NetMonthlyCashflow = cf.NetAnnualCashflow / constants.MonthsPerYear
	return cf
}

// buildStream lays the annual cashflow out over the holding period, dropping
// loan service once the tenure has run out, and values each year at the
// discount rate both today and at the sale date.
func buildStream(in PropertyInputs, cf Cashflow) []YearCashflow {
	years := in.HoldingPeriodYears
	rate := mathutil.PercentToDecimal(in.DiscountRate)
	stream := make([]YearCashflow, 0, years)

	for year := 1; year <= years; year++ {
		amount := cf.NetAnnualCashflow
		if year > in.LoanTenureYears {
			amount += cf.AnnualLoanService
		}
		stream = append(stream, YearCashflow{
			Year:         year,
			Cashflow:     amount,
			PresentValue: amount / math.Pow(1+rate, float64(year)),
			FutureValue:  amount * math.Pow(1+rate, float64(years-year)),
		})
	}
	return stream
}
