// Package optimizer searches a scenario input for the value at which a
// valuation result metric reaches a target, such as the break-even rental.
package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-valuation/internal/config"
	"github.com/iwvelando/property-valuation/internal/valuation"
	"github.com/iwvelando/property-valuation/pkg/format"
	"github.com/iwvelando/property-valuation/pkg/optimization"
	"go.uber.org/zap"
)

type Runner struct {
	logger *zap.Logger
	conf   *config.Configuration
	engine *valuation.Engine
}

type solverTarget struct {
	scenarioName string
	inputs       valuation.PropertyInputs
	solver       config.SolverConfig
	original     float64
}

type evaluation struct {
	value    float64
	achieved float64
	target   float64
}

// gap is positive when the metric is above its target.
func (e evaluation) gap() float64 {
	return e.achieved - e.target
}

// Result summarizes solver outcomes keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any solver outcomes were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// For returns the outcomes for one scenario.
func (r Result) For(scenario string) []optimization.Summary {
	return r.Summaries[scenario]
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	runner := NewSolver(logger, valuation.New(logger, conf.EngineOptions()...))
	runner.conf = conf
	return runner, nil
}

// NewSolver constructs a Runner that only answers Solve calls with engine.
// Run on it finds no scenarios. A nil engine uses the default engine.
func NewSolver(logger *zap.Logger, engine *valuation.Engine) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = valuation.New(logger)
	}
	return &Runner{
		logger: logger,
		conf:   &config.Configuration{},
		engine: engine,
	}
}

// Run executes every solver directive on the active scenarios. The
// configuration is left untouched.
func (r *Runner) Run() (*Result, error) {
	targets, err := r.collectTargets()
	if err != nil {
		return nil, err
	}

	summaries := make(map[string][]optimization.Summary)
	for _, target := range targets {
		summary, err := r.solve(target)
		if err != nil {
			return nil, err
		}
		summaries[target.scenarioName] = append(summaries[target.scenarioName], summary)

		r.logger.Info("solver finished",
			zap.String("op", "optimizer.Run"),
			zap.String("scenario", target.scenarioName),
			zap.String("field", summary.Field),
			zap.String("metric", summary.Metric),
			zap.Float64("target", summary.Target),
			zap.Float64("original", summary.Original),
			zap.Float64("value", summary.Value),
			zap.Float64("achieved", summary.Achieved),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) collectTargets() ([]solverTarget, error) {
	var targets []solverTarget

	for _, scenario := range r.conf.Scenarios {
		if !scenario.Active {
			continue
		}
		for i := range scenario.Solvers {
			solver := scenario.Solvers[i]
			if err := solver.Validate(); err != nil {
				return nil, fmt.Errorf("scenario %s solver %d: %w", scenario.Name, i+1, err)
			}
			original, err := getField(scenario.Inputs, solver.Field)
			if err != nil {
				return nil, fmt.Errorf("scenario %s solver %d: %w", scenario.Name, i+1, err)
			}
			targets = append(targets, solverTarget{
				scenarioName: scenario.Name,
				inputs:       scenario.Inputs,
				solver:       solver,
				original:     original,
			})
		}
	}

	return targets, nil
}

// Solve runs a single solver directive against inputs.
func (r *Runner) Solve(scenarioName string, inputs valuation.PropertyInputs, solver config.SolverConfig) (optimization.Summary, error) {
	if err := solver.Validate(); err != nil {
		return optimization.Summary{}, err
	}
	original, err := getField(inputs, solver.Field)
	if err != nil {
		return optimization.Summary{}, err
	}
	return r.solve(solverTarget{scenarioName: scenarioName, inputs: inputs, solver: solver, original: original})
}

// solve bisects the bounds for a sign change in the gap between metric and
// target. When the bounds do not bracket the target the closer bound is
// reported as not converged.
func (r *Runner) solve(target solverTarget) (optimization.Summary, error) {
	cfg := target.solver
	lower := *cfg.Min
	upper := *cfg.Max

	lowerEval, err := r.evaluate(target, lower)
	if err != nil {
		return optimization.Summary{}, err
	}
	upperEval, err := r.evaluate(target, upper)
	if err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		Scenario:        target.scenarioName,
		Field:           cfg.Field,
		Metric:          cfg.Metric,
		Target:          cfg.Target,
		Original:        target.original,
		OriginalDisplay: formatFieldDisplay(cfg.Field, target.original),
	}

	finish := func(eval evaluation, iterations int, converged bool, notes ...string) optimization.Summary {
		summary.Value = eval.value
		summary.ValueDisplay = formatFieldDisplay(cfg.Field, eval.value)
		summary.Achieved = eval.achieved
		summary.Iterations = iterations
		summary.Converged = converged
		summary.Notes = notes
		return summary
	}

	if lowerEval.gap() == 0 {
		return finish(lowerEval, 0, true), nil
	}
	if upperEval.gap() == 0 {
		return finish(upperEval, 0, true), nil
	}
	if sameSign(lowerEval.gap(), upperEval.gap()) {
		closest := upperEval
		if math.Abs(lowerEval.gap()) < math.Abs(upperEval.gap()) {
			closest = lowerEval
		}
		note := fmt.Sprintf(
			"%s never reaches %.2f for %s between %s and %s",
			cfg.Metric,
			cfg.Target,
			cfg.Field,
			formatFieldDisplay(cfg.Field, lower),
			formatFieldDisplay(cfg.Field, upper),
		)
		return finish(closest, 0, false, note), nil
	}

	best := lowerEval
	if math.Abs(upperEval.gap()) < math.Abs(lowerEval.gap()) {
		best = upperEval
	}

	iterations := 0
	for iterations < cfg.MaxIterations && math.Abs(upper-lower) > cfg.Tolerance {
		mid := lower + (upper-lower)/2
		evalMid, err := r.evaluate(target, mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++

		if math.Abs(evalMid.gap()) < math.Abs(best.gap()) {
			best = evalMid
		}
		if evalMid.gap() == 0 {
			break
		}
		if sameSign(evalMid.gap(), lowerEval.gap()) {
			lower = mid
			lowerEval = evalMid
		} else {
			upper = mid
		}
	}

	converged := best.gap() == 0 || math.Abs(upper-lower) <= cfg.Tolerance
	if !converged {
		note := fmt.Sprintf("stopped after %d iterations without reaching tolerance %g", iterations, cfg.Tolerance)
		return finish(best, iterations, false, note), nil
	}
	return finish(best, iterations, true), nil
}

func (r *Runner) evaluate(target solverTarget, value float64) (evaluation, error) {
	inputs, err := setField(target.inputs, target.solver.Field, value)
	if err != nil {
		return evaluation{}, err
	}

	result, err := r.engine.Evaluate(inputs)
	if err != nil {
		return evaluation{}, fmt.Errorf("solver evaluation of %s at %.4f failed: %w", target.solver.Field, value, err)
	}

	achieved, err := metricValue(result, target.solver.Metric)
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{value: value, achieved: achieved, target: target.solver.Target}, nil
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func getField(in valuation.PropertyInputs, field string) (float64, error) {
	switch field {
	case config.SolverFieldAppreciation:
		return in.AnnualAppreciation, nil
	case config.SolverFieldRental:
		return in.ExpectedMonthlyRental, nil
	case config.SolverFieldPrice:
		return in.Price, nil
	case config.SolverFieldInterestRate:
		return in.InterestRate, nil
	}
	return 0, fmt.Errorf("solver field %q is not supported", field)
}

// setField returns a copy of in with field set to value.
func setField(in valuation.PropertyInputs, field string, value float64) (valuation.PropertyInputs, error) {
	switch field {
	case config.SolverFieldAppreciation:
		in.AnnualAppreciation = value
	case config.SolverFieldRental:
		in.ExpectedMonthlyRental = value
	case config.SolverFieldPrice:
		in.Price = value
	case config.SolverFieldInterestRate:
		in.InterestRate = value
	default:
		return in, fmt.Errorf("solver field %q is not supported", field)
	}
	return in, nil
}

func metricValue(result *valuation.CalculationResult, metric string) (float64, error) {
	switch metric {
	case config.SolverMetricNetProfit:
		return result.Returns.NetProfit, nil
	case config.SolverMetricAnnualizedROI:
		return result.Returns.AnnualizedROI, nil
	case config.SolverMetricNetCashflow:
		return result.Cashflow.NetAnnualCashflow, nil
	}
	return 0, fmt.Errorf("solver metric %q is not supported", metric)
}

func formatFieldDisplay(field string, value float64) string {
	switch field {
	case config.SolverFieldPrice, config.SolverFieldRental:
		return format.Currency(value)
	default:
		return format.Percent(value)
	}
}
