// Package valuation computes the upfront, holding and exit economics of a
// Singapore residential purchase from a single set of inputs.
package valuation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/property-valuation/pkg/policy"
)

// ErrInvalidInput is returned when an input violates a range invariant.
var ErrInvalidInput = errors.New("invalid input")

const (
	// MaxLoanPercentage is the regulatory loan-to-value ceiling.
	MaxLoanPercentage = 75.0

	// MaxLoanTenureYears is the longest tenure banks offer on private property.
	MaxLoanTenureYears = 35

	// MaxHoldingPeriodYears bounds the yearly breakdown and schedule sizes.
	MaxHoldingPeriodYears = 50
)

// PropertyInputs holds every buyer, property, loan and market parameter of
// one evaluation. Rates and percentages are expressed in percent.
type PropertyInputs struct {
	Price              float64          `json:"price" yaml:"price" mapstructure:"price"`
	Residency          policy.Residency `json:"residency" yaml:"residency" mapstructure:"residency"`
	PropertyCount      int              `json:"propertyCount" yaml:"propertyCount" mapstructure:"propertyCount"`
	HoldingPeriodYears int              `json:"holdingPeriodYears" yaml:"holdingPeriodYears" mapstructure:"holdingPeriodYears"`
	AnnualAppreciation float64          `json:"annualAppreciation" yaml:"annualAppreciation" mapstructure:"annualAppreciation"`

	LoanPercentage      float64 `json:"loanPercentage" yaml:"loanPercentage" mapstructure:"loanPercentage"`
	InterestRate        float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"`
	LoanTenureYears     int     `json:"loanTenureYears" yaml:"loanTenureYears" mapstructure:"loanTenureYears"`
	LockInYears         int     `json:"lockInYears" yaml:"lockInYears" mapstructure:"lockInYears"`
	MonthlyIncome       float64 `json:"monthlyIncome" yaml:"monthlyIncome" mapstructure:"monthlyIncome"`
	ExistingMonthlyDebt float64 `json:"existingMonthlyDebt" yaml:"existingMonthlyDebt" mapstructure:"existingMonthlyDebt"`
	MarginalTaxRate     float64 `json:"marginalTaxRate" yaml:"marginalTaxRate" mapstructure:"marginalTaxRate"`

	MonthlyCondoFee       float64 `json:"monthlyCondoFee" yaml:"monthlyCondoFee" mapstructure:"monthlyCondoFee"`
	RentOut               bool    `json:"rentOut" yaml:"rentOut" mapstructure:"rentOut"`
	ExpectedMonthlyRental float64 `json:"expectedMonthlyRental" yaml:"expectedMonthlyRental" mapstructure:"expectedMonthlyRental"`
	CurrentMarketRent     float64 `json:"currentMarketRent" yaml:"currentMarketRent" mapstructure:"currentMarketRent"`
	RentRoom              bool    `json:"rentRoom" yaml:"rentRoom" mapstructure:"rentRoom"`
	RoomRentalIncome      float64 `json:"roomRentalIncome" yaml:"roomRentalIncome" mapstructure:"roomRentalIncome"`
	VacancyWeeks          float64 `json:"vacancyWeeks" yaml:"vacancyWeeks" mapstructure:"vacancyWeeks"`

	CashAvailable        float64 `json:"cashAvailable" yaml:"cashAvailable" mapstructure:"cashAvailable"`
	CpfOaBalance         float64 `json:"cpfOaBalance" yaml:"cpfOaBalance" mapstructure:"cpfOaBalance"`
	UseCpfForDownpayment bool    `json:"useCpfForDownpayment" yaml:"useCpfForDownpayment" mapstructure:"useCpfForDownpayment"`
	UseCpfForMonthly     bool    `json:"useCpfForMonthly" yaml:"useCpfForMonthly" mapstructure:"useCpfForMonthly"`

	AgentCommission   float64 `json:"agentCommission" yaml:"agentCommission" mapstructure:"agentCommission"`
	DiscountRate      float64 `json:"discountRate" yaml:"discountRate" mapstructure:"discountRate"`
	IncludeRenovation bool    `json:"includeRenovation" yaml:"includeRenovation" mapstructure:"includeRenovation"`
	RenovationCost    float64 `json:"renovationCost" yaml:"renovationCost" mapstructure:"renovationCost"`
}

// DefaultInputs returns the inputs used whenever a field is not supplied.
func DefaultInputs() PropertyInputs {
	return PropertyInputs{
		Price:                 1500000,
		Residency:             policy.Citizen,
		PropertyCount:         1,
		HoldingPeriodYears:    5,
		AnnualAppreciation:    3,
		LoanPercentage:        75,
		InterestRate:          2.6,
		LoanTenureYears:       30,
		LockInYears:           3,
		MonthlyIncome:         15000,
		ExistingMonthlyDebt:   0,
		MarginalTaxRate:       11.5,
		MonthlyCondoFee:       350,
		RentOut:               false,
		ExpectedMonthlyRental: 4500,
		CurrentMarketRent:     4000,
		RentRoom:              false,
		RoomRentalIncome:      1000,
		VacancyWeeks:          4,
		CashAvailable:         500000,
		CpfOaBalance:          150000,
		UseCpfForDownpayment:  true,
		UseCpfForMonthly:      false,
		AgentCommission:       2,
		DiscountRate:          3,
		IncludeRenovation:     false,
		RenovationCost:        50000,
	}
}

// Validate checks every invariant before any figure is computed. Category
// violations wrap policy.ErrInvalidCategory; range violations wrap
// ErrInvalidInput.
func (in PropertyInputs) Validate() error {
	if err := in.validateFinite(); err != nil {
		return err
	}
	if err := in.Residency.Validate(); err != nil {
		return err
	}
	if err := policy.ValidatePropertyCount(in.PropertyCount); err != nil {
		return err
	}
	if err := policy.ValidateMarginalRate(in.MarginalTaxRate); err != nil {
		return err
	}

	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %.2f", ErrInvalidInput, in.Price)
	}
	if in.HoldingPeriodYears < 1 || in.HoldingPeriodYears > MaxHoldingPeriodYears {
		return fmt.Errorf("%w: holding period must be between 1 and %d years, got %d", ErrInvalidInput, MaxHoldingPeriodYears, in.HoldingPeriodYears)
	}
	if in.LoanPercentage < 0 || in.LoanPercentage > MaxLoanPercentage {
		return fmt.Errorf("%w: loan percentage must be between 0 and %.0f, got %.2f", ErrInvalidInput, MaxLoanPercentage, in.LoanPercentage)
	}
	if in.LoanPercentage > 0 && in.LoanTenureYears < 1 {
		return fmt.Errorf("%w: loan tenure must be at least 1 year, got %d", ErrInvalidInput, in.LoanTenureYears)
	}
	if in.LoanTenureYears < 0 || in.LockInYears < 0 {
		return fmt.Errorf("%w: loan tenure and lock-in cannot be negative", ErrInvalidInput)
	}
	if in.LoanTenureYears > MaxLoanTenureYears {
		return fmt.Errorf("%w: loan tenure cannot exceed %d years, got %d", ErrInvalidInput, MaxLoanTenureYears, in.LoanTenureYears)
	}
	if in.InterestRate < 0 {
		return fmt.Errorf("%w: interest rate cannot be negative, got %.2f", ErrInvalidInput, in.InterestRate)
	}
	if in.VacancyWeeks < 0 || in.VacancyWeeks > 52 {
		return fmt.Errorf("%w: vacancy must be between 0 and 52 weeks, got %.2f", ErrInvalidInput, in.VacancyWeeks)
	}
	if in.AgentCommission < 0 || in.AgentCommission >= 100 {
		return fmt.Errorf("%w: agent commission must be between 0 and 100, got %.2f", ErrInvalidInput, in.AgentCommission)
	}
	if in.AnnualAppreciation <= -100 || in.DiscountRate <= -100 {
		return fmt.Errorf("%w: appreciation and discount rates must be above -100%%", ErrInvalidInput)
	}

	monetary := []struct {
		name  string
		value float64
	}{
		{"monthly income", in.MonthlyIncome},
		{"existing monthly debt", in.ExistingMonthlyDebt},
		{"monthly condo fee", in.MonthlyCondoFee},
		{"expected monthly rental", in.ExpectedMonthlyRental},
		{"current market rent", in.CurrentMarketRent},
		{"room rental income", in.RoomRentalIncome},
		{"cash available", in.CashAvailable},
		{"CPF ordinary account balance", in.CpfOaBalance},
		{"renovation cost", in.RenovationCost},
	}
	for _, field := range monetary {
		if field.value < 0 {
			return fmt.Errorf("%w: %s cannot be negative, got %.2f", ErrInvalidInput, field.name, field.value)
		}
	}

	return nil
}

// validateFinite rejects NaN and infinite values, which would pass every
// range comparison below.
func (in PropertyInputs) validateFinite() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"price", in.Price},
		{"annual appreciation", in.AnnualAppreciation},
		{"loan percentage", in.LoanPercentage},
		{"interest rate", in.InterestRate},
		{"monthly income", in.MonthlyIncome},
		{"existing monthly debt", in.ExistingMonthlyDebt},
		{"marginal tax rate", in.MarginalTaxRate},
		{"monthly condo fee", in.MonthlyCondoFee},
		{"expected monthly rental", in.ExpectedMonthlyRental},
		{"current market rent", in.CurrentMarketRent},
		{"room rental income", in.RoomRentalIncome},
		{"vacancy weeks", in.VacancyWeeks},
		{"cash available", in.CashAvailable},
		{"CPF ordinary account balance", in.CpfOaBalance},
		{"agent commission", in.AgentCommission},
		{"discount rate", in.DiscountRate},
		{"renovation cost", in.RenovationCost},
	}
	for _, field := range fields {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidInput, field.name, field.value)
		}
	}
	return nil
}

// LoanAmount is the bank loan implied by price and loan percentage.
func (in PropertyInputs) LoanAmount() float64 {
	return in.Price * in.LoanPercentage / 100
}

// DownPayment is the part of the price not covered by the loan.
func (in PropertyInputs) DownPayment() float64 {
	return in.Price - in.LoanAmount()
}
