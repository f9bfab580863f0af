// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import "fmt"

// ScenarioInfo represents the scenario settings the processor inspects.
type ScenarioInfo struct {
	Name               string
	Active             bool
	HoldingPeriodYears int
	LockInYears        int
	LoanPercentage     float64
	LoanTenureYears    int
	RentOut            bool
	RentRoom           bool
}

// SellersDutyFreeYears is the holding period after which no seller's duty is due.
const SellersDutyFreeYears = 3

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateScenarios returns warnings for settings that are valid but likely
// unintended. It never rejects a configuration.
func (p *Processor) ValidateScenarios(scenarios []ScenarioInfo) []string {
	var warnings []string

	seen := make(map[string]bool)
	active := 0
	for _, scenario := range scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue // Skip inactive scenarios
		}
		active++

		if scenario.HoldingPeriodYears < SellersDutyFreeYears {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' sells after %d years and pays seller's stamp duty",
				scenario.Name, scenario.HoldingPeriodYears))
		}
		if scenario.LoanPercentage > 0 && scenario.HoldingPeriodYears < scenario.LockInYears {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' sells within the %d year lock-in and pays an early repayment penalty",
				scenario.Name, scenario.LockInYears))
		}
		if scenario.LoanPercentage > 0 && scenario.LoanTenureYears < scenario.HoldingPeriodYears {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' loan is fully repaid %d years before the sale",
				scenario.Name, scenario.HoldingPeriodYears-scenario.LoanTenureYears))
		}
		if scenario.RentOut && scenario.RentRoom {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' rents out the whole unit so room rental is ignored", scenario.Name))
		}
	}

	if len(scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No scenario is active")
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}
