package valuation

import (
	"github.com/iwvelando/property-valuation/pkg/loans"
	"github.com/iwvelando/property-valuation/pkg/mathutil"
	"github.com/iwvelando/property-valuation/pkg/policy"
)

// calculateAcquisition sums the duties and fees payable on purchase.
func calculateAcquisition(in PropertyInputs) (AcquisitionCosts, error) {
	additional, err := policy.AdditionalBuyersDuty(in.Price, in.Residency, in.PropertyCount)
	if err != nil {
		return AcquisitionCosts{}, err
	}

	costs := AcquisitionCosts{
		BuyersDuty:         policy.BuyersDuty(in.Price),
		AdditionalDuty:     additional.Amount,
		AdditionalDutyRate: additional.Rate,
		LegalFee:           policy.LegalFee(in.Price),
		ValuationFee:       policy.ValuationFee,
		MortgageDuty:       policy.MortgageDuty(in.LoanAmount()),
		FireInsurance:      policy.FireInsuranceAnnual,
		HomeInsurance:      policy.HomeInsuranceAnnual,
	}
	if in.IncludeRenovation {
		costs.RenovationCost = in.RenovationCost
	}

	// Insurance is recurring and is carried in maintenance, not here.
	costs.TotalUpfront = costs.BuyersDuty + costs.AdditionalDuty + costs.LegalFee +
		costs.ValuationFee + costs.MortgageDuty + costs.RenovationCost
	return costs, nil
}

// loanYearsWithin is the part of the holding period during which instalments
// are still due.
func loanYearsWithin(in PropertyInputs) float64 {
	return mathutil.Min(float64(in.HoldingPeriodYears), float64(in.LoanTenureYears))
}

// calculateLoan derives the mortgage figures for the tenure and the holding period.
func calculateLoan(in PropertyInputs) LoanFigures {
	amount := in.LoanAmount()
	held := float64(in.HoldingPeriodYears)

	figures := LoanFigures{
		LoanAmount:     amount,
		DownPayment:    in.DownPayment(),
		MonthlyPayment: loans.CalculateMonthlyPayment(amount, in.InterestRate, in.LoanTenureYears),
		TotalInterest:  loans.TotalInterest(amount, in.InterestRate, in.LoanTenureYears),
	}
	figures.AnnualPayment = figures.MonthlyPayment * 12
	figures.TotalRepayment = amount + figures.TotalInterest
	figures.RemainingBalance = loans.RemainingBalance(amount, in.InterestRate, in.LoanTenureYears, held)
	figures.InterestDuringHolding = loans.InterestPaid(amount, in.InterestRate, in.LoanTenureYears, held)
	figures.PrincipalRepaid = amount - figures.RemainingBalance
	figures.PaymentsDuringHolding = figures.AnnualPayment * loanYearsWithin(in)

	if in.UseCpfForMonthly {
		figures.CpfUsedForInstalments = figures.PaymentsDuringHolding
	}
	figures.CashUsedForInstalments = figures.PaymentsDuringHolding - figures.CpfUsedForInstalments
	return figures
}
