package integration

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/property-valuation/internal/config"
	"github.com/iwvelando/property-valuation/internal/optimizer"
	"github.com/iwvelando/property-valuation/internal/share"
	"github.com/iwvelando/property-valuation/internal/valuation"
	"github.com/iwvelando/property-valuation/pkg/output"
	"github.com/iwvelando/property-valuation/pkg/testutil"
	"go.uber.org/zap"
)

const fixturePath = "../test_config.yaml"

// loadReports runs the fixture through the same steps as the CLI.
func loadReports(t testing.TB) []output.Report {
	t.Helper()
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration(fixturePath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	runner, err := optimizer.NewRunner(logger, conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	solved, err := runner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	engine := valuation.New(logger, conf.EngineOptions()...)
	var reports []output.Report
	for _, scenario := range conf.ActiveScenarios("") {
		result, err := engine.Evaluate(scenario.Inputs)
		if err != nil {
			t.Fatalf("Evaluate(%s) error = %v", scenario.Name, err)
		}
		reports = append(reports, output.Report{
			Name:      scenario.Name,
			Inputs:    scenario.Inputs,
			Result:    result,
			Solutions: solved.For(scenario.Name),
		})
	}
	return reports
}

func TestFixtureBaseline(t *testing.T) {
	reports := loadReports(t)

	expectedScenarios := []string{"own stay", "investment unit"}
	if len(reports) != len(expectedScenarios) {
		t.Fatalf("Expected %d scenarios, got %d", len(expectedScenarios), len(reports))
	}
	for i, expected := range expectedScenarios {
		if reports[i].Name != expected {
			t.Errorf("Expected scenario %d to be %q, got %q", i, expected, reports[i].Name)
		}
	}

	tests := []struct {
		scenario string
		figure   string
		got      func(r *valuation.CalculationResult) float64
		want     float64
	}{
		{"own stay", "total upfront", func(r *valuation.CalculationResult) float64 { return r.Acquisition.TotalUpfront }, 52600},
		{"own stay", "monthly payment", func(r *valuation.CalculationResult) float64 { return r.Loan.MonthlyPayment }, 4503.8218},
		{"own stay", "cash needed", func(r *valuation.CalculationResult) float64 { return r.Affordability.CashNeeded }, 277600},
		{"own stay", "net profit", func(r *valuation.CalculationResult) float64 { return r.Returns.NetProfit }, 370927.66},
		{"own stay", "break-even price", func(r *valuation.CalculationResult) float64 { return r.Returns.BreakEvenPrice }, 1597431.8486},
		{"investment unit", "buyer's duty", func(r *valuation.CalculationResult) float64 { return r.Acquisition.BuyersDuty }, 32600},
		{"investment unit", "additional duty", func(r *valuation.CalculationResult) float64 { return r.Acquisition.AdditionalDuty }, 360000},
		{"investment unit", "total upfront", func(r *valuation.CalculationResult) float64 { return r.Acquisition.TotalUpfront }, 398260},
		{"investment unit", "monthly payment", func(r *valuation.CalculationResult) float64 { return r.Loan.MonthlyPayment }, 2617.2665},
		{"investment unit", "remaining balance", func(r *valuation.CalculationResult) float64 { return r.Loan.RemainingBalance }, 429323.0785},
		{"investment unit", "cash needed", func(r *valuation.CalculationResult) float64 { return r.Affordability.CashNeeded }, 978260},
		{"investment unit", "max affordable price", func(r *valuation.CalculationResult) float64 { return r.Affordability.MaxAffordablePrice }, 1600000},
		{"investment unit", "property tax", func(r *valuation.CalculationResult) float64 { return r.Cashflow.PropertyTax }, 8112},
		{"investment unit", "net annual cashflow", func(r *valuation.CalculationResult) float64 { return r.Cashflow.NetAnnualCashflow }, -14883.5957},
		{"investment unit", "future price", func(r *valuation.CalculationResult) float64 { return r.Disposition.FuturePrice }, 1475848.6385},
		{"investment unit", "net profit", func(r *valuation.CalculationResult) float64 { return r.Returns.NetProfit }, -151575.2859},
	}

	for _, tt := range tests {
		t.Run(tt.scenario+"/"+tt.figure, func(t *testing.T) {
			report := testutil.FindReport(reports, tt.scenario)
			if report == nil {
				t.Fatalf("scenario %q not found", tt.scenario)
			}
			if got := tt.got(report.Result); !testutil.WithinTolerance(got, tt.want, 0.05) {
				t.Errorf("%s = %.4f, want %.4f", tt.figure, got, tt.want)
			}
		})
	}

	investment := testutil.FindReport(reports, "investment unit")
	if investment.Result.Affordability.CanAfford {
		t.Error("investment unit needs more cash than is available and should not be affordable")
	}
	if investment.Result.Affordability.BindingConstraint != valuation.ConstraintCash {
		t.Errorf("expected cash to bind, got %q", investment.Result.Affordability.BindingConstraint)
	}
	if len(investment.Result.Stream) != 7 {
		t.Errorf("expected 7 years of cashflow, got %d", len(investment.Result.Stream))
	}
}

func TestFixtureSolver(t *testing.T) {
	reports := loadReports(t)
	own := testutil.FindReport(reports, "own stay")
	if own == nil || len(own.Solutions) != 1 {
		t.Fatalf("expected one solution on own stay")
	}

	solution := own.Solutions[0]
	if !solution.Converged {
		t.Fatalf("expected convergence, notes: %v", solution.Notes)
	}
	if solution.Value >= own.Inputs.AnnualAppreciation {
		t.Errorf("break-even appreciation %.4f should be below %.2f", solution.Value, own.Inputs.AnnualAppreciation)
	}

	// Re-evaluating at the solved appreciation leaves no profit.
	in := own.Inputs
	in.AnnualAppreciation = solution.Value
	result, err := valuation.Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !testutil.WithinTolerance(result.Returns.NetProfit, 0, 100) {
		t.Errorf("net profit at solved appreciation = %.2f, want about 0", result.Returns.NetProfit)
	}
}

func TestOutputFormats(t *testing.T) {
	reports := loadReports(t)

	var pretty bytes.Buffer
	output.PrettyFormat(&pretty, reports)
	for _, want := range []string{
		"--- Results for scenario own stay ---",
		"--- Results for scenario investment unit ---",
		"Equity index",
		"Solver\n",
	} {
		if !strings.Contains(pretty.String(), want) {
			t.Errorf("pretty output missing %q", want)
		}
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, reports); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	records, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	for i, record := range records {
		if len(record) != 2+len(reports) {
			t.Fatalf("CSV row %d has %d columns, want %d", i, len(record), 2+len(reports))
		}
	}

	var jsonBuf bytes.Buffer
	if err := output.JSONFormat(&jsonBuf, reports); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}
	var decoded []output.Report
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON output: %v", err)
	}
	if len(decoded) != len(reports) || decoded[1].Inputs != reports[1].Inputs {
		t.Error("JSON output did not preserve the scenario inputs")
	}
}

func TestShareLinkReproducesScenario(t *testing.T) {
	for _, report := range loadReports(t) {
		t.Run(report.Name, func(t *testing.T) {
			in, err := share.DecodeQuery(share.EncodeQuery(report.Inputs))
			if err != nil {
				t.Fatalf("DecodeQuery() error = %v", err)
			}
			result, err := valuation.Evaluate(in)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if !testutil.WithinTolerance(result.Returns.NetProfit, report.Result.Returns.NetProfit, 0.01) {
				t.Errorf("net profit from share link = %.2f, want %.2f", result.Returns.NetProfit, report.Result.Returns.NetProfit)
			}
		})
	}
}

func TestConfigurationWarnings(t *testing.T) {
	conf, err := config.LoadConfiguration(fixturePath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	// The quick flip would sell inside the seller's duty window but is
	// inactive, so the fixture is clean.
	if warnings := conf.ValidateConfiguration(); warnings != nil {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	conf.Scenarios[2].Active = true
	warnings := conf.ValidateConfiguration()
	found := false
	for _, warning := range warnings {
		if strings.Contains(warning, "quick flip") && strings.Contains(warning, "seller's stamp duty") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a seller's duty warning for quick flip, got %v", warnings)
	}
}
