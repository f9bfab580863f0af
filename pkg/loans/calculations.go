// Package loans provides fixed-rate loan amortization utilities.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-valuation/pkg/constants"
	"github.com/iwvelando/property-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given monthly payment.
type Payment struct {
	Month              int
	Payment            float64
	Principal          float64
	Interest           float64
	RemainingPrincipal float64
}

// YearSummary aggregates the payments made in one loan year.
type YearSummary struct {
	Year               int     `json:"year"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Terms describes a fixed-rate loan.
type Terms struct {
	Principal    float64
	InterestRate float64 // annual, percent
	TenureYears  int
}

func monthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard annuity formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, tenureYears int) float64 {
	termMonths := tenureYears * constants.MonthsPerYear
	if principal <= 0 || termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := monthlyRate(annualInterestRate)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	return principal * periodicInterestRate * power / (power - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * monthlyRate(annualInterestRate)
}

// RemainingBalance returns the outstanding principal after elapsedYears as
// the present value of the payments still due. Zero-rate loans fall back to a
// straight-line balance.
func RemainingBalance(principal, annualInterestRate float64, tenureYears int, elapsedYears float64) float64 {
	termMonths := float64(tenureYears * constants.MonthsPerYear)
	paymentsRemaining := termMonths - elapsedYears*constants.MonthsPerYear
	if principal <= 0 || termMonths <= 0 || paymentsRemaining <= 0 {
		return 0
	}
	if elapsedYears <= 0 {
		return principal
	}
	if annualInterestRate == 0 {
		return principal * paymentsRemaining / termMonths
	}

	periodicInterestRate := monthlyRate(annualInterestRate)
	payment := CalculateMonthlyPayment(principal, annualInterestRate, tenureYears)
	return payment * (1 - math.Pow(1+periodicInterestRate, -paymentsRemaining)) / periodicInterestRate
}

// TotalInterest is the interest paid over the full tenure.
func TotalInterest(principal, annualInterestRate float64, tenureYears int) float64 {
	payment := CalculateMonthlyPayment(principal, annualInterestRate, tenureYears)
	return mathutil.Max(0, payment*float64(tenureYears*constants.MonthsPerYear)-principal)
}

// InterestPaid is the interest paid during the first elapsedYears of the loan:
// payments made less the principal they retired.
func InterestPaid(principal, annualInterestRate float64, tenureYears int, elapsedYears float64) float64 {
	if elapsedYears <= 0 {
		return 0
	}
	termMonths := float64(tenureYears * constants.MonthsPerYear)
	monthsPaid := mathutil.Min(elapsedYears*constants.MonthsPerYear, termMonths)
	payment := CalculateMonthlyPayment(principal, annualInterestRate, tenureYears)
	principalRepaid := principal - RemainingBalance(principal, annualInterestRate, tenureYears, elapsedYears)
	return mathutil.Max(0, payment*monthsPaid-principalRepaid)
}

// MaxPrincipalForPayment inverts the annuity formula: the largest loan a
// monthly payment can service over the tenure.
func MaxPrincipalForPayment(monthlyPayment, annualInterestRate float64, tenureYears int) float64 {
	termMonths := float64(tenureYears * constants.MonthsPerYear)
	if monthlyPayment <= 0 || termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		return monthlyPayment * termMonths
	}
	periodicInterestRate := monthlyRate(annualInterestRate)
	return monthlyPayment * (1 - math.Pow(1+periodicInterestRate, -termMonths)) / periodicInterestRate
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates the month-by-month schedule for the full tenure.
func (g *AmortizationScheduleGenerator) GenerateSchedule(terms Terms) ([]Payment, error) {
	return g.generate(terms, 0)
}

// generate builds the schedule up to maxMonths payments, or the whole tenure
// when maxMonths <= 0. The allocation never exceeds the months returned.
func (g *AmortizationScheduleGenerator) generate(terms Terms, maxMonths int) ([]Payment, error) {
	if terms.Principal < 0 {
		return nil, fmt.Errorf("loan principal cannot be negative: %.2f", terms.Principal)
	}
	if terms.InterestRate < 0 {
		return nil, fmt.Errorf("loan interest rate cannot be negative: %.2f", terms.InterestRate)
	}

	termMonths := terms.TenureYears * constants.MonthsPerYear
	if terms.Principal == 0 || termMonths <= 0 {
		return nil, nil
	}
	limit := termMonths
	if maxMonths > 0 && maxMonths < limit {
		limit = maxMonths
	}

	monthlyPayment := CalculateMonthlyPayment(terms.Principal, terms.InterestRate, terms.TenureYears)
	schedule := make([]Payment, 0, limit)
	balance := terms.Principal
	for month := 1; month <= limit; month++ {
		var current Payment
		current.Month = month
		current.Interest = CalculateInterestPayment(balance, terms.InterestRate)
		current.Principal = monthlyPayment - current.Interest
		current.Payment = monthlyPayment

		if month == termMonths || mathutil.Round(balance-current.Principal) <= 0 {
			// We will get machine error otherwise so just retire the balance.
			current.Principal = balance
			current.Payment = balance + current.Interest
			current.RemainingPrincipal = 0
			schedule = append(schedule, current)
			if month != termMonths {
				g.logger.Debug(fmt.Sprintf("loan retired early at month %d of %d", month, termMonths),
					zap.String("op", "loans.GenerateSchedule"),
				)
			}
			break
		}

		current.RemainingPrincipal = balance - current.Principal
		balance = current.RemainingPrincipal
		schedule = append(schedule, current)
	}

	return schedule, nil
}

// GenerateYearlySummary rolls the monthly schedule up into loan years,
// stopping after maxYears (the whole tenure when maxYears <= 0).
func (g *AmortizationScheduleGenerator) GenerateYearlySummary(terms Terms, maxYears int) ([]YearSummary, error) {
	schedule, err := g.generate(terms, maxYears*constants.MonthsPerYear)
	if err != nil {
		return nil, err
	}

	var summaries []YearSummary
	for _, payment := range schedule {
		year := (payment.Month-1)/constants.MonthsPerYear + 1
		if len(summaries) < year {
			summaries = append(summaries, YearSummary{Year: year})
		}
		summary := &summaries[year-1]
		summary.Payment += payment.Payment
		summary.Principal += payment.Principal
		summary.Interest += payment.Interest
		summary.RemainingPrincipal = payment.RemainingPrincipal
	}

	g.logger.Debug(fmt.Sprintf("generated %d yearly summaries for %.2f over %d years",
		len(summaries), terms.Principal, terms.TenureYears),
		zap.String("op", "loans.GenerateYearlySummary"),
	)
	return summaries, nil
}
