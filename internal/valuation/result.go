package valuation

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-valuation/pkg/loans"
)

// AcquisitionCosts are the one-time costs of buying.
type AcquisitionCosts struct {
	BuyersDuty         float64 `json:"buyersDuty"`
	AdditionalDuty     float64 `json:"additionalDuty"`
	AdditionalDutyRate float64 `json:"additionalDutyRate"`
	LegalFee           float64 `json:"legalFee"`
	ValuationFee       float64 `json:"valuationFee"`
	MortgageDuty       float64 `json:"mortgageDuty"`
	FireInsurance      float64 `json:"fireInsurance"`
	HomeInsurance      float64 `json:"homeInsurance"`
	RenovationCost     float64 `json:"renovationCost"`
	TotalUpfront       float64 `json:"totalUpfront"`
}

// LoanFigures summarizes the mortgage over its tenure and over the holding period.
type LoanFigures struct {
	LoanAmount             float64 `json:"loanAmount"`
	DownPayment            float64 `json:"downPayment"`
	MonthlyPayment         float64 `json:"monthlyPayment"`
	AnnualPayment          float64 `json:"annualPayment"`
	TotalInterest          float64 `json:"totalInterest"`
	TotalRepayment         float64 `json:"totalRepayment"`
	InterestDuringHolding  float64 `json:"interestDuringHolding"`
	PrincipalRepaid        float64 `json:"principalRepaid"`
	RemainingBalance       float64 `json:"remainingBalance"`
	PaymentsDuringHolding  float64 `json:"paymentsDuringHolding"`
	CpfUsedForInstalments  float64 `json:"cpfUsedForInstalments"`
	CashUsedForInstalments float64 `json:"cashUsedForInstalments"`
}

// Affordability holds the cash, CPF and debt-servicing checks.
type Affordability struct {
	MinimumCashDownpayment float64 `json:"minimumCashDownpayment"`
	CpfDownpayment         float64 `json:"cpfDownpayment"`
	CashDownpayment        float64 `json:"cashDownpayment"`
	CashNeeded             float64 `json:"cashNeeded"`
	CashSurplus            float64 `json:"cashSurplus"`
	CpfRemaining           float64 `json:"cpfRemaining"`
	TDSR                   float64 `json:"tdsr"`
	TDSRLimit              float64 `json:"tdsrLimit"`
	TDSRHeadroom           float64 `json:"tdsrHeadroom"`
	TDSRWithinLimit        bool    `json:"tdsrWithinLimit"`
	CashSufficient         bool    `json:"cashSufficient"`
	CpfSufficient          bool    `json:"cpfSufficient"`
	CanAfford              bool    `json:"canAfford"`
	MaxPriceByCash         float64 `json:"maxPriceByCash"`
	MaxPriceByTDSR         float64 `json:"maxPriceByTdsr"`
	MaxAffordablePrice     float64 `json:"maxAffordablePrice"`
	BindingConstraint      string  `json:"bindingConstraint"`
}

// Cashflow holds the recurring income and costs of one holding year.
type Cashflow struct {
	GrossAnnualRental      float64 `json:"grossAnnualRental"`
	VacancyLoss            float64 `json:"vacancyLoss"`
	EffectiveRental        float64 `json:"effectiveRental"`
	SavedRentAnnual        float64 `json:"savedRentAnnual"`
	RoomIncomeAnnual       float64 `json:"roomIncomeAnnual"`
	AnnualIncome           float64 `json:"annualIncome"`
	AnnualValue            float64 `json:"annualValue"`
	PropertyTax            float64 `json:"propertyTax"`
	AnnualMortgageInterest float64 `json:"annualMortgageInterest"`
	TaxableRentalIncome    float64 `json:"taxableRentalIncome"`
	RentalIncomeTax        float64 `json:"rentalIncomeTax"`
	RoomIncomeTax          float64 `json:"roomIncomeTax"`
	IncomeTax              float64 `json:"incomeTax"`
	AnnualLoanService      float64 `json:"annualLoanService"`
	CondoFeesAnnual        float64 `json:"condoFeesAnnual"`
	RepairsAllowance       float64 `json:"repairsAllowance"`
	InsuranceAnnual        float64 `json:"insuranceAnnual"`
	AnnualMaintenance      float64 `json:"annualMaintenance"`
	NetAnnualCashflow      float64 `json:"netAnnualCashflow"`
	NetMonthlyCashflow     float64 `json:"netMonthlyCashflow"`
}

// YearCashflow is one year of the holding-period stream with its value
// discounted to today and compounded to the sale date.
type YearCashflow struct {
	Year         int     `json:"year"`
	Cashflow     float64 `json:"cashflow"`
	PresentValue float64 `json:"presentValue"`
	FutureValue  float64 `json:"futureValue"`
}

// Disposition holds the sale economics at the end of the holding period.
type Disposition struct {
	FuturePrice           float64 `json:"futurePrice"`
	CapitalGain           float64 `json:"capitalGain"`
	SellersDutyRate       float64 `json:"sellersDutyRate"`
	SellersDuty           float64 `json:"sellersDuty"`
	AgentCommission       float64 `json:"agentCommission"`
	SellingLegalFee       float64 `json:"sellingLegalFee"`
	PenaltyApplies        bool    `json:"penaltyApplies"`
	EarlyRepaymentPenalty float64 `json:"earlyRepaymentPenalty"`
	TotalSellingCosts     float64 `json:"totalSellingCosts"`
	RemainingLoan         float64 `json:"remainingLoan"`
	NetSaleProceeds       float64 `json:"netSaleProceeds"`
}

// Returns holds the aggregated investment, return and profit figures.
type Returns struct {
	PresentValueOfCashflows float64 `json:"presentValueOfCashflows"`
	FutureValueOfCashflows  float64 `json:"futureValueOfCashflows"`
	NegativeCashflowPV      float64 `json:"negativeCashflowPv"`
	PositiveCashflowFV      float64 `json:"positiveCashflowFv"`
	TotalSavedRent          float64 `json:"totalSavedRent"`
	TotalInvestment         float64 `json:"totalInvestment"`
	TotalReturn             float64 `json:"totalReturn"`
	CpfDownpaymentInterest  float64 `json:"cpfDownpaymentInterest"`
	CpfInstalmentInterest   float64 `json:"cpfInstalmentInterest"`
	CpfOpportunityCost      float64 `json:"cpfOpportunityCost"`
	CpfRefundDue            float64 `json:"cpfRefundDue"`
	NetProfit               float64 `json:"netProfit"`
	ROI                     float64 `json:"roi"`
	AnnualizedROI           float64 `json:"annualizedRoi"`
	BreakEvenPrice          float64 `json:"breakEvenPrice"`
	BreakEvenAppreciation   float64 `json:"breakEvenAppreciation"`
}

// Benchmark compares the property against an alternative asset compounding
// the same capital over the same holding period.
type Benchmark struct {
	Name                string  `json:"name"`
	Rate                float64 `json:"rate"`
	FinalValue          float64 `json:"finalValue"`
	Profit              float64 `json:"profit"`
	PropertyOutperforms bool    `json:"propertyOutperforms"`
}

// CalculationResult is every figure derived from one PropertyInputs.
type CalculationResult struct {
	Acquisition   AcquisitionCosts    `json:"acquisition"`
	Loan          LoanFigures         `json:"loan"`
	Affordability Affordability       `json:"affordability"`
	Cashflow      Cashflow            `json:"cashflow"`
	Stream        []YearCashflow      `json:"stream"`
	Disposition   Disposition         `json:"disposition"`
	Returns       Returns             `json:"returns"`
	Benchmarks    []Benchmark         `json:"benchmarks"`
	LoanSchedule  []loans.YearSummary `json:"loanSchedule,omitempty"`
}

// checkFinite catches finite inputs large enough to overflow a headline
// figure, which JSON encoding and the solver cannot handle.
func (r *CalculationResult) checkFinite() error {
	figures := []struct {
		name  string
		value float64
	}{
		{"total upfront", r.Acquisition.TotalUpfront},
		{"monthly payment", r.Loan.MonthlyPayment},
		{"max affordable price", r.Affordability.MaxAffordablePrice},
		{"net annual cashflow", r.Cashflow.NetAnnualCashflow},
		{"future price", r.Disposition.FuturePrice},
		{"net sale proceeds", r.Disposition.NetSaleProceeds},
		{"total investment", r.Returns.TotalInvestment},
		{"net profit", r.Returns.NetProfit},
		{"annualized ROI", r.Returns.AnnualizedROI},
		{"break-even price", r.Returns.BreakEvenPrice},
		{"break-even appreciation", r.Returns.BreakEvenAppreciation},
	}
	for _, figure := range figures {
		if math.IsNaN(figure.value) || math.IsInf(figure.value, 0) {
			return fmt.Errorf("%w: %s overflows to %v", ErrInvalidInput, figure.name, figure.value)
		}
	}
	return nil
}
