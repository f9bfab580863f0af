// Package output provides utilities for formatting and displaying valuation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/property-valuation/internal/valuation"
	"github.com/iwvelando/property-valuation/pkg/optimization"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is one evaluated scenario.
type Report struct {
	Name   string                       `json:"name"`
	Inputs valuation.PropertyInputs     `json:"inputs"`
	Result *valuation.CalculationResult `json:"result"`

	Solutions []optimization.Summary `json:"solutions,omitempty"`
}

type kind int

const (
	money kind = iota
	percent
	flag
)

// line is one row of the summary shared by the pretty and CSV formats.
type line struct {
	section string
	label   string
	kind    kind
	value   func(r *valuation.CalculationResult) float64
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var lines = []line{
	{"Acquisition", "Buyer's stamp duty", money, func(r *valuation.CalculationResult) float64 { return r.Acquisition.BuyersDuty }},
	{"Acquisition", "Additional buyer's stamp duty", money, func(r *valuation.CalculationResult) float64 { return r.Acquisition.AdditionalDuty }},
	{"Acquisition", "Legal fee", money, func(r *valuation.CalculationResult) float64 { return r.Acquisition.LegalFee }},
	{"Acquisition", "Mortgage duty", money, func(r *valuation.CalculationResult) float64 { return r.Acquisition.MortgageDuty }},
	{"Acquisition", "Total upfront", money, func(r *valuation.CalculationResult) float64 { return r.Acquisition.TotalUpfront }},
	{"Loan", "Loan amount", money, func(r *valuation.CalculationResult) float64 { return r.Loan.LoanAmount }},
	{"Loan", "Monthly payment", money, func(r *valuation.CalculationResult) float64 { return r.Loan.MonthlyPayment }},
	{"Loan", "Interest during holding", money, func(r *valuation.CalculationResult) float64 { return r.Loan.InterestDuringHolding }},
	{"Loan", "Remaining balance", money, func(r *valuation.CalculationResult) float64 { return r.Loan.RemainingBalance }},
	{"Affordability", "Cash needed", money, func(r *valuation.CalculationResult) float64 { return r.Affordability.CashNeeded }},
	{"Affordability", "CPF downpayment", money, func(r *valuation.CalculationResult) float64 { return r.Affordability.CpfDownpayment }},
	{"Affordability", "TDSR", percent, func(r *valuation.CalculationResult) float64 { return r.Affordability.TDSR }},
	{"Affordability", "Can afford", flag, func(r *valuation.CalculationResult) float64 { return boolValue(r.Affordability.CanAfford) }},
	{"Affordability", "Max affordable price", money, func(r *valuation.CalculationResult) float64 { return r.Affordability.MaxAffordablePrice }},
	{"Holding", "Annual income", money, func(r *valuation.CalculationResult) float64 { return r.Cashflow.AnnualIncome }},
	{"Holding", "Property tax", money, func(r *valuation.CalculationResult) float64 { return r.Cashflow.PropertyTax }},
	{"Holding", "Income tax", money, func(r *valuation.CalculationResult) float64 { return r.Cashflow.IncomeTax }},
	{"Holding", "Maintenance", money, func(r *valuation.CalculationResult) float64 { return r.Cashflow.AnnualMaintenance }},
	{"Holding", "Net annual cashflow", money, func(r *valuation.CalculationResult) float64 { return r.Cashflow.NetAnnualCashflow }},
	{"Disposition", "Future price", money, func(r *valuation.CalculationResult) float64 { return r.Disposition.FuturePrice }},
	{"Disposition", "Selling costs", money, func(r *valuation.CalculationResult) float64 { return r.Disposition.TotalSellingCosts }},
	{"Disposition", "Net sale proceeds", money, func(r *valuation.CalculationResult) float64 { return r.Disposition.NetSaleProceeds }},
	{"Returns", "Total investment", money, func(r *valuation.CalculationResult) float64 { return r.Returns.TotalInvestment }},
	{"Returns", "Total return", money, func(r *valuation.CalculationResult) float64 { return r.Returns.TotalReturn }},
	{"Returns", "CPF opportunity cost", money, func(r *valuation.CalculationResult) float64 { return r.Returns.CpfOpportunityCost }},
	{"Returns", "Net profit", money, func(r *valuation.CalculationResult) float64 { return r.Returns.NetProfit }},
	{"Returns", "ROI", percent, func(r *valuation.CalculationResult) float64 { return r.Returns.ROI }},
	{"Returns", "Annualized ROI", percent, func(r *valuation.CalculationResult) float64 { return r.Returns.AnnualizedROI }},
	{"Returns", "Break-even price", money, func(r *valuation.CalculationResult) float64 { return r.Returns.BreakEvenPrice }},
}

// PrettyFormat writes a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, reports []Report) {
	p := message.NewPrinter(language.English)
	for i, report := range reports {
		_, _ = fmt.Fprintf(w, "--- Results for scenario %s ---\n", report.Name)
		section := ""
		for _, l := range lines {
			if l.section != section {
				section = l.section
				_, _ = fmt.Fprintf(w, "%s\n", section)
			}
			_, _ = p.Fprintf(w, "  %-30s %s\n", l.label, prettyValue(p, l.kind, l.value(report.Result)))
		}

		if len(report.Result.Benchmarks) > 0 {
			_, _ = fmt.Fprintf(w, "Benchmarks\n")
			for _, b := range report.Result.Benchmarks {
				verdict := "underperforms"
				if b.PropertyOutperforms {
					verdict = "outperforms"
				}
				_, _ = p.Fprintf(w, "  %-30s $%.2f profit at %.2f%% (property %s)\n", b.Name, b.Profit, b.Rate, verdict)
			}
		}
		if len(report.Solutions) > 0 {
			_, _ = fmt.Fprintf(w, "Solver\n")
			for _, s := range report.Solutions {
				_, _ = p.Fprintf(w, "  %-30s %s (from %s, %s %.2f)\n",
					s.Field, s.ValueDisplay, s.OriginalDisplay, s.Metric, s.Achieved)
				for _, note := range s.Notes {
					_, _ = fmt.Fprintf(w, "    note: %s\n", note)
				}
			}
		}
		if i < len(reports)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

func prettyValue(p *message.Printer, k kind, v float64) string {
	switch k {
	case percent:
		return p.Sprintf("%.2f%%", v)
	case flag:
		if v != 0 {
			return "yes"
		}
		return "no"
	}
	return p.Sprintf("$%.2f", v)
}

// CsvFormat writes one row per figure with a column per scenario.
func CsvFormat(w io.Writer, reports []Report) error {
	writer := csv.NewWriter(w)
	header := []string{"section", "figure"}
	for _, report := range reports {
		header = append(header, report.Name)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, l := range lines {
		row := []string{l.section, l.label}
		for _, report := range reports {
			row = append(row, strconv.FormatFloat(l.value(report.Result), 'f', 2, 64))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", l.label, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// JSONFormat writes the complete reports as indented JSON.
func JSONFormat(w io.Writer, reports []Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return nil
}
