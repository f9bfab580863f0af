package valuation

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/property-valuation/pkg/policy"
	"go.uber.org/zap"
)

const tolerance = 0.05

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %.4f, want %.4f", name, got, want)
	}
}

func evaluate(t *testing.T, in PropertyInputs) *CalculationResult {
	t.Helper()
	result, err := New(zap.NewNop()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	return result
}

func TestEvaluateDefaultScenario(t *testing.T) {
	result := evaluate(t, DefaultInputs())

	assertClose(t, "BuyersDuty", result.Acquisition.BuyersDuty, 44600)
	assertClose(t, "AdditionalDuty", result.Acquisition.AdditionalDuty, 0)
	assertClose(t, "MortgageDuty", result.Acquisition.MortgageDuty, 4500)
	assertClose(t, "TotalUpfront", result.Acquisition.TotalUpfront, 52600)

	assertClose(t, "MonthlyPayment", result.Loan.MonthlyPayment, 4503.8218)
	assertClose(t, "RemainingBalance", result.Loan.RemainingBalance, 992753.9064)
	assertClose(t, "InterestDuringHolding", result.Loan.InterestDuringHolding, 137983.2117)

	assertClose(t, "CpfDownpayment", result.Affordability.CpfDownpayment, 150000)
	assertClose(t, "CashNeeded", result.Affordability.CashNeeded, 277600)
	assertClose(t, "TDSR", result.Affordability.TDSR, 30.0255)
	if !result.Affordability.CanAfford {
		t.Error("CanAfford = false, want true")
	}
	if result.Affordability.MaxAffordablePrice != 2100000 {
		t.Errorf("MaxAffordablePrice = %.2f, want 2100000", result.Affordability.MaxAffordablePrice)
	}
	if result.Affordability.BindingConstraint != ConstraintCash {
		t.Errorf("BindingConstraint = %s, want %s", result.Affordability.BindingConstraint, ConstraintCash)
	}

	assertClose(t, "PropertyTax", result.Cashflow.PropertyTax, 2880)
	assertClose(t, "AnnualMaintenance", result.Cashflow.AnnualMaintenance, 19600)
	assertClose(t, "NetAnnualCashflow", result.Cashflow.NetAnnualCashflow, -28525.8611)

	assertClose(t, "FuturePrice", result.Disposition.FuturePrice, 1738911.1115)
	assertClose(t, "NetSaleProceeds", result.Disposition.NetSaleProceeds, 708878.9828)
	if result.Disposition.PenaltyApplies {
		t.Error("PenaltyApplies = true for a holding period past lock-in")
	}

	assertClose(t, "TotalInvestment", result.Returns.TotalInvestment, 558240.0909)
	assertClose(t, "TotalReturn", result.Returns.TotalReturn, 948878.9828)
	assertClose(t, "CpfOpportunityCost", result.Returns.CpfOpportunityCost, 19711.2319)
	assertClose(t, "NetProfit", result.Returns.NetProfit, 370927.66)
	assertClose(t, "AnnualizedROI", result.Returns.AnnualizedROI, 10.7273)
	assertClose(t, "BreakEvenPrice", result.Returns.BreakEvenPrice, 1597431.8486)

	if len(result.Stream) != 5 {
		t.Errorf("len(Stream) = %d, want 5", len(result.Stream))
	}
	if len(result.LoanSchedule) != 5 {
		t.Errorf("len(LoanSchedule) = %d, want 5", len(result.LoanSchedule))
	}
	if len(result.Benchmarks) != len(DefaultBenchmarks()) {
		t.Errorf("len(Benchmarks) = %d, want %d", len(result.Benchmarks), len(DefaultBenchmarks()))
	}
}

func TestEvaluateRentOutScenario(t *testing.T) {
	in := DefaultInputs()
	in.RentOut = true
	result := evaluate(t, in)

	assertClose(t, "EffectiveRental", result.Cashflow.EffectiveRental, 49842.9561)
	assertClose(t, "PropertyTax", result.Cashflow.PropertyTax, 9120)
	assertClose(t, "IncomeTax", result.Cashflow.IncomeTax, 1698.5351)
	assertClose(t, "NetAnnualCashflow", result.Cashflow.NetAnnualCashflow, -34621.44)
	assertClose(t, "TotalSavedRent", result.Returns.TotalSavedRent, 0)
	assertClose(t, "NetProfit", result.Returns.NetProfit, 103011.6932)
	if result.Cashflow.SavedRentAnnual != 0 {
		t.Errorf("SavedRentAnnual = %.2f, want 0 when renting out", result.Cashflow.SavedRentAnnual)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	in := DefaultInputs()
	in.UseCpfForMonthly = true
	first := evaluate(t, in)
	second := evaluate(t, in)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different results")
	}
}

func TestEvaluateRejectsInvalidCategory(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PropertyInputs)
	}{
		{"unknown residency", func(in *PropertyInputs) { in.Residency = "tourist" }},
		{"zero property count", func(in *PropertyInputs) { in.PropertyCount = 0 }},
		{"unknown tax bracket", func(in *PropertyInputs) { in.MarginalTaxRate = 12 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInputs()
			tt.modify(&in)
			result, err := Evaluate(in)
			if !errors.Is(err, policy.ErrInvalidCategory) {
				t.Errorf("Evaluate() error = %v, want ErrInvalidCategory", err)
			}
			if result != nil {
				t.Error("Evaluate() returned a partial result")
			}
		})
	}
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PropertyInputs)
	}{
		{"zero price", func(in *PropertyInputs) { in.Price = 0 }},
		{"zero holding period", func(in *PropertyInputs) { in.HoldingPeriodYears = 0 }},
		{"loan above ceiling", func(in *PropertyInputs) { in.LoanPercentage = 80 }},
		{"loan without tenure", func(in *PropertyInputs) { in.LoanTenureYears = 0 }},
		{"negative rate", func(in *PropertyInputs) { in.InterestRate = -1 }},
		{"negative cash", func(in *PropertyInputs) { in.CashAvailable = -1 }},
		{"vacancy beyond a year", func(in *PropertyInputs) { in.VacancyWeeks = 53 }},
		{"NaN price", func(in *PropertyInputs) { in.Price = math.NaN() }},
		{"infinite price", func(in *PropertyInputs) { in.Price = math.Inf(1) }},
		{"NaN interest rate", func(in *PropertyInputs) { in.InterestRate = math.NaN() }},
		{"infinite rental", func(in *PropertyInputs) { in.ExpectedMonthlyRental = math.Inf(1) }},
		{"NaN appreciation", func(in *PropertyInputs) { in.AnnualAppreciation = math.NaN() }},
		{"negative infinite discount", func(in *PropertyInputs) { in.DiscountRate = math.Inf(-1) }},
		{"NaN tax rate", func(in *PropertyInputs) { in.MarginalTaxRate = math.NaN() }},
		{"tenure beyond bank maximum", func(in *PropertyInputs) { in.LoanTenureYears = MaxLoanTenureYears + 1 }},
		{"huge tenure", func(in *PropertyInputs) { in.LoanTenureYears = 1 << 30 }},
		{"holding period beyond maximum", func(in *PropertyInputs) { in.HoldingPeriodYears = MaxHoldingPeriodYears + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInputs()
			tt.modify(&in)
			if _, err := Evaluate(in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Evaluate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestEvaluateRejectsOverflowingInputs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PropertyInputs)
	}{
		{"price at float limit", func(in *PropertyInputs) { in.Price = math.MaxFloat64 }},
		{"runaway appreciation", func(in *PropertyInputs) {
			in.AnnualAppreciation = 1e300
			in.HoldingPeriodYears = MaxHoldingPeriodYears
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInputs()
			tt.modify(&in)
			result, err := Evaluate(in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Evaluate() error = %v, want ErrInvalidInput", err)
			}
			if result != nil {
				t.Error("Evaluate() returned a result with non-finite figures")
			}
		})
	}
}

func TestEvaluateAcceptsUpperBounds(t *testing.T) {
	in := DefaultInputs()
	in.LoanTenureYears = MaxLoanTenureYears
	in.HoldingPeriodYears = MaxHoldingPeriodYears
	result := evaluate(t, in)
	if len(result.LoanSchedule) != MaxLoanTenureYears {
		t.Errorf("expected %d schedule years, got %d", MaxLoanTenureYears, len(result.LoanSchedule))
	}
}

func TestAppreciationMonotonicity(t *testing.T) {
	previous := evaluate(t, func() PropertyInputs {
		in := DefaultInputs()
		in.AnnualAppreciation = -5
		return in
	}())

	for _, g := range []float64{-2, 0, 1, 3, 5, 8} {
		in := DefaultInputs()
		in.AnnualAppreciation = g
		current := evaluate(t, in)
		if current.Disposition.FuturePrice <= previous.Disposition.FuturePrice {
			t.Errorf("appreciation %.1f: future price %.2f did not increase from %.2f",
				g, current.Disposition.FuturePrice, previous.Disposition.FuturePrice)
		}
		if current.Returns.NetProfit < previous.Returns.NetProfit {
			t.Errorf("appreciation %.1f: net profit %.2f decreased from %.2f",
				g, current.Returns.NetProfit, previous.Returns.NetProfit)
		}
		previous = current
	}
}

func TestZeroInterestRate(t *testing.T) {
	in := DefaultInputs()
	in.InterestRate = 0
	in.LoanTenureYears = 25
	result := evaluate(t, in)

	loan := in.LoanAmount()
	assertClose(t, "MonthlyPayment", result.Loan.MonthlyPayment, loan/300)
	assertClose(t, "RemainingBalance", result.Loan.RemainingBalance, loan*240/300)
	assertClose(t, "InterestDuringHolding", result.Loan.InterestDuringHolding, 0)
	for _, v := range []float64{result.Returns.NetProfit, result.Returns.AnnualizedROI, result.Affordability.MaxPriceByTDSR} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("zero-rate evaluation produced %v", v)
		}
	}
}

func TestNoLoan(t *testing.T) {
	in := DefaultInputs()
	in.LoanPercentage = 0
	in.CashAvailable = 2000000
	result := evaluate(t, in)

	if result.Loan.MonthlyPayment != 0 || result.Acquisition.MortgageDuty != 0 {
		t.Errorf("cash purchase carried loan costs: payment %.2f, duty %.2f",
			result.Loan.MonthlyPayment, result.Acquisition.MortgageDuty)
	}
	if result.Affordability.MinimumCashDownpayment != 0 {
		t.Errorf("MinimumCashDownpayment = %.2f, want 0 without a loan", result.Affordability.MinimumCashDownpayment)
	}
	if result.Affordability.MaxPriceByTDSR != result.Affordability.MaxPriceByCash {
		t.Error("debt-servicing bound should mirror the cash bound without a loan")
	}
	if result.LoanSchedule != nil {
		t.Errorf("LoanSchedule = %v, want nil", result.LoanSchedule)
	}
}

func TestZeroIncomeTDSR(t *testing.T) {
	in := DefaultInputs()
	in.MonthlyIncome = 0
	result := evaluate(t, in)
	if result.Affordability.TDSR != 0 {
		t.Errorf("TDSR = %.2f, want 0", result.Affordability.TDSR)
	}
	if result.Affordability.TDSRWithinLimit || result.Affordability.CanAfford {
		t.Error("a buyer without income but with a loan must not pass")
	}

	in.LoanPercentage = 0
	in.CashAvailable = 2000000
	result = evaluate(t, in)
	if !result.Affordability.TDSRWithinLimit {
		t.Error("a debt-free cash buyer should pass the debt-servicing check")
	}
}

func TestLockInPenaltyAndSellersDuty(t *testing.T) {
	in := DefaultInputs()
	in.HoldingPeriodYears = 2
	result := evaluate(t, in)

	if !result.Disposition.PenaltyApplies {
		t.Fatal("PenaltyApplies = false within lock-in")
	}
	assertClose(t, "EarlyRepaymentPenalty", result.Disposition.EarlyRepaymentPenalty,
		result.Disposition.RemainingLoan*0.015)
	if result.Disposition.SellersDutyRate != 4 {
		t.Errorf("SellersDutyRate = %.1f, want 4", result.Disposition.SellersDutyRate)
	}
	assertClose(t, "SellersDuty", result.Disposition.SellersDuty, result.Disposition.FuturePrice*0.04)
}

func TestStreamDropsLoanServiceAfterTenure(t *testing.T) {
	in := DefaultInputs()
	in.LoanTenureYears = 5
	in.HoldingPeriodYears = 8
	in.LockInYears = 0
	result := evaluate(t, in)

	annual := result.Cashflow.AnnualLoanService
	if got := result.Stream[5].Cashflow - result.Stream[4].Cashflow; math.Abs(got-annual) > tolerance {
		t.Errorf("year 6 cashflow rose by %.2f, want %.2f", got, annual)
	}
	assertClose(t, "RemainingBalance", result.Loan.RemainingBalance, 0)
	assertClose(t, "PaymentsDuringHolding", result.Loan.PaymentsDuringHolding, annual*5)
}

func TestCpfForMonthly(t *testing.T) {
	in := DefaultInputs()
	in.UseCpfForMonthly = true

	approx := evaluate(t, in)
	precise, err := New(nil, WithPreciseCpfAccrual()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	assertClose(t, "CpfUsedForInstalments", approx.Loan.CpfUsedForInstalments, approx.Loan.MonthlyPayment*60)
	if approx.Returns.CpfInstalmentInterest <= 0 || precise.Returns.CpfInstalmentInterest <= 0 {
		t.Fatal("instalment interest should be positive when CPF pays instalments")
	}
	// Half of the CPF used, compounded over half the holding period.
	assertClose(t, "CpfInstalmentInterest", approx.Returns.CpfInstalmentInterest, 8603.66)
	assertClose(t, "precise CpfInstalmentInterest", precise.Returns.CpfInstalmentInterest, 17094.10)
	assertClose(t, "CpfOpportunityCost", approx.Returns.CpfOpportunityCost,
		approx.Returns.CpfDownpaymentInterest+approx.Returns.CpfInstalmentInterest)
}

func TestWithBenchmarks(t *testing.T) {
	custom := []BenchmarkRate{{Name: "Cash", Rate: 0}}
	result, err := New(nil, WithBenchmarks(custom)).Evaluate(DefaultInputs())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Benchmarks) != 1 {
		t.Fatalf("len(Benchmarks) = %d, want 1", len(result.Benchmarks))
	}
	b := result.Benchmarks[0]
	assertClose(t, "FinalValue", b.FinalValue, result.Returns.TotalInvestment)
	if b.Profit != 0 || !b.PropertyOutperforms {
		t.Errorf("benchmark = %+v, want zero profit outperformed by the property", b)
	}
}

func TestBreakEvenPriceZeroesProfit(t *testing.T) {
	// With no CPF, no stream discounting and no saved rent the break-even
	// sale price should leave the owner with nothing.
	in := DefaultInputs()
	in.UseCpfForDownpayment = false
	in.CpfOaBalance = 0
	in.DiscountRate = 0
	in.RentOut = true
	in.LoanPercentage = 0
	in.CashAvailable = 2000000
	result := evaluate(t, in)

	in.AnnualAppreciation = result.Returns.BreakEvenAppreciation
	atBreakEven := evaluate(t, in)
	if math.Abs(atBreakEven.Returns.NetProfit) > 1 {
		t.Errorf("net profit at break-even appreciation = %.2f, want 0", atBreakEven.Returns.NetProfit)
	}
}

func TestAnnualizedROI(t *testing.T) {
	tests := []struct {
		name       string
		profit     float64
		investment float64
		years      float64
		want       float64
	}{
		{"no investment", 1000, 0, 5, 0},
		{"doubling over one year", 100, 100, 1, 100},
		{"total loss", -200, 100, 5, -100},
		{"flat", 0, 100, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertClose(t, "annualizedROI", annualizedROI(tt.profit, tt.investment, tt.years), tt.want)
		})
	}
}
