package config

import (
	"fmt"
	"math"
	"strings"
)

const (
	SolverFieldAppreciation = "annualAppreciation"
	SolverFieldRental       = "expectedMonthlyRental"
	SolverFieldPrice        = "price"
	SolverFieldInterestRate = "interestRate"

	SolverMetricNetProfit     = "netProfit"
	SolverMetricAnnualizedROI = "annualizedRoi"
	SolverMetricNetCashflow   = "netAnnualCashflow"

	defaultToleranceRate     = 0.0001
	defaultToleranceCurrency = 1
	defaultMaxIterations     = 60
)

// SolverConfig asks for the value of one input, searched between Min and
// Max, at which a result metric reaches Target.
type SolverConfig struct {
	Field         string   `json:"field,omitempty" yaml:"field,omitempty" mapstructure:"field"`
	Metric        string   `json:"metric,omitempty" yaml:"metric,omitempty" mapstructure:"metric"`
	Target        float64  `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Min           *float64 `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `json:"tolerance,omitempty" yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalSolverField returns the canonical identifier for a solver field.
func CanonicalSolverField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SolverFieldAppreciation
	}
	switch strings.ToLower(trimmed) {
	case "annualappreciation", "appreciation":
		return SolverFieldAppreciation
	case "expectedmonthlyrental", "rental", "rent":
		return SolverFieldRental
	case "price":
		return SolverFieldPrice
	case "interestrate", "rate":
		return SolverFieldInterestRate
	default:
		return trimmed
	}
}

// CanonicalSolverMetric returns the canonical identifier for a solver metric.
func CanonicalSolverMetric(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SolverMetricNetProfit
	}
	switch strings.ToLower(trimmed) {
	case "netprofit", "profit":
		return SolverMetricNetProfit
	case "annualizedroi", "roi":
		return SolverMetricAnnualizedROI
	case "netannualcashflow", "cashflow":
		return SolverMetricNetCashflow
	default:
		return trimmed
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (s *SolverConfig) Normalize() {
	if s == nil {
		return
	}
	s.Field = CanonicalSolverField(s.Field)
	s.Metric = CanonicalSolverMetric(s.Metric)

	if s.Tolerance <= 0 {
		switch s.Field {
		case SolverFieldPrice, SolverFieldRental:
			s.Tolerance = defaultToleranceCurrency
		default:
			s.Tolerance = defaultToleranceRate
		}
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the solver configuration is unsupported.
func (s *SolverConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("solver configuration cannot be nil")
	}

	s.Normalize()

	switch s.Metric {
	case SolverMetricNetProfit, SolverMetricAnnualizedROI, SolverMetricNetCashflow:
	default:
		return fmt.Errorf("solver metric %q is not supported", s.Metric)
	}

	if s.Min == nil {
		return fmt.Errorf("solver requires a minimum bound")
	}
	if s.Max == nil {
		return fmt.Errorf("solver requires a maximum bound")
	}
	for name, value := range map[string]float64{"minimum": *s.Min, "maximum": *s.Max, "target": s.Target, "tolerance": s.Tolerance} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("solver %s must be a finite number, got %v", name, value)
		}
	}
	if *s.Min >= *s.Max {
		return fmt.Errorf("solver minimum %.4f must be less than maximum %.4f", *s.Min, *s.Max)
	}

	switch s.Field {
	case SolverFieldAppreciation:
		if *s.Min <= -100 {
			return fmt.Errorf("solver appreciation minimum %.2f must be above -100", *s.Min)
		}
	case SolverFieldPrice:
		if *s.Min <= 0 {
			return fmt.Errorf("solver price minimum %.2f must be positive", *s.Min)
		}
	case SolverFieldRental, SolverFieldInterestRate:
		if *s.Min < 0 {
			return fmt.Errorf("solver %s minimum %.2f cannot be negative", s.Field, *s.Min)
		}
	default:
		return fmt.Errorf("solver field %q is not supported", s.Field)
	}
	return nil
}
