package valuation

import (
	"fmt"

	"github.com/iwvelando/property-valuation/pkg/loans"
	"go.uber.org/zap"
)

// Engine evaluates PropertyInputs. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	logger     *zap.Logger
	schedule   *loans.AmortizationScheduleGenerator
	benchmarks []BenchmarkRate
	preciseCpf bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPreciseCpfAccrual accrues CPF interest on each monthly instalment
// separately instead of the half-period approximation.
func WithPreciseCpfAccrual() Option {
	return func(e *Engine) {
		e.preciseCpf = true
	}
}

// WithBenchmarks replaces the default comparison assets.
func WithBenchmarks(benchmarks []BenchmarkRate) Option {
	return func(e *Engine) {
		e.benchmarks = append([]BenchmarkRate(nil), benchmarks...)
	}
}

// New creates an Engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:     logger,
		schedule:   loans.NewAmortizationScheduleGenerator(logger),
		benchmarks: DefaultBenchmarks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate validates in and computes every figure. Either the full result is
// returned or an error is returned before anything is computed.
func (e *Engine) Evaluate(in PropertyInputs) (*CalculationResult, error) {
	if err := in.Validate(); err != nil {
		e.logger.Debug("rejected inputs",
			zap.String("op", "valuation.Evaluate"),
			zap.Error(err),
		)
		return nil, err
	}

	acquisition, err := calculateAcquisition(in)
	if err != nil {
		return nil, err
	}
	loan := calculateLoan(in)
	affordability := calculateAffordability(in, acquisition, loan)
	cashflow := calculateCashflow(in, loan)
	stream := buildStream(in, cashflow)
	disposition := calculateDisposition(in, loan)
	returns := calculateReturns(returnsContext{
		inputs:        in,
		acquisition:   acquisition,
		loan:          loan,
		affordability: affordability,
		cashflow:      cashflow,
		stream:        stream,
		disposition:   disposition,
	}, e.preciseCpf)

	schedule, err := e.schedule.GenerateYearlySummary(loans.Terms{
		Principal:    loan.LoanAmount,
		InterestRate: in.InterestRate,
		TenureYears:  in.LoanTenureYears,
	}, in.HoldingPeriodYears)
	if err != nil {
		return nil, fmt.Errorf("failed to build loan schedule: %w", err)
	}

	result := &CalculationResult{
		Acquisition:   acquisition,
		Loan:          loan,
		Affordability: affordability,
		Cashflow:      cashflow,
		Stream:        stream,
		Disposition:   disposition,
		Returns:       returns,
		Benchmarks:    compareBenchmarks(e.benchmarks, returns, in.HoldingPeriodYears),
		LoanSchedule:  schedule,
	}

	if err := result.checkFinite(); err != nil {
		e.logger.Debug("inputs overflowed",
			zap.String("op", "valuation.Evaluate"),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Debug(fmt.Sprintf("evaluated %.0f purchase held for %d years", in.Price, in.HoldingPeriodYears),
		zap.String("op", "valuation.Evaluate"),
		zap.Bool("canAfford", affordability.CanAfford),
		zap.Float64("netProfit", returns.NetProfit),
	)
	return result, nil
}

// Evaluate runs a default Engine without logging.
func Evaluate(in PropertyInputs) (*CalculationResult, error) {
	return New(nil).Evaluate(in)
}
