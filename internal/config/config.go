// Package config defines the data structures related to configuration and
// includes functions for loading, resolving and validating scenario files.
package config

import (
	"fmt"
	"io"
	"reflect"

	"github.com/iwvelando/property-valuation/internal/valuation"
	"github.com/iwvelando/property-valuation/pkg/configprocessor"
	"github.com/iwvelando/property-valuation/pkg/policy"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for property-valuation.
type Configuration struct {
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
	Engine    EngineConfig  `yaml:"engine,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// EngineConfig holds valuation engine options shared by all scenarios.
type EngineConfig struct {
	PreciseCpfAccrual bool                      `yaml:"preciseCpfAccrual,omitempty"`
	Benchmarks        []valuation.BenchmarkRate `yaml:"benchmarks,omitempty"`
}

// Scenario holds one named purchase to evaluate. Property lists only the
// inputs that differ from valuation.DefaultInputs; Inputs is filled by
// ResolveScenarios.
type Scenario struct {
	Name     string
	Active   bool
	Property map[string]interface{}  `yaml:"property,omitempty"`
	Solvers  []SolverConfig           `yaml:"solvers,omitempty"`
	Inputs   valuation.PropertyInputs `yaml:"-" mapstructure:"-"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return unmarshal(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := configuration.ResolveScenarios(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// ResolveScenarios decodes each scenario's property block on top of the
// default inputs and validates the result along with its solvers.
func (c *Configuration) ResolveScenarios() error {
	for i := range c.Scenarios {
		inputs, err := DecodeInputs(c.Scenarios[i].Property)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", c.Scenarios[i].Name, err)
		}
		if err := inputs.Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", c.Scenarios[i].Name, err)
		}
		c.Scenarios[i].Inputs = inputs

		for j := range c.Scenarios[i].Solvers {
			if err := c.Scenarios[i].Solvers[j].Validate(); err != nil {
				return fmt.Errorf("scenario %q solver %d: %w", c.Scenarios[i].Name, j+1, err)
			}
		}
	}
	return nil
}

// DecodeInputs overlays property onto valuation.DefaultInputs. Keys match
// field names case-insensitively and unknown keys are rejected.
func DecodeInputs(property map[string]interface{}) (valuation.PropertyInputs, error) {
	inputs := valuation.DefaultInputs()
	if len(property) == 0 {
		return inputs, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  residencyHook,
		ErrorUnused: true,
		Result:      &inputs,
	})
	if err != nil {
		return inputs, fmt.Errorf("unable to create property decoder: %w", err)
	}
	if err := decoder.Decode(property); err != nil {
		return inputs, fmt.Errorf("unable to decode property: %w", err)
	}
	return inputs, nil
}

// residencyHook accepts the spellings understood by policy.ParseResidency.
// Unrecognised values pass through so Validate reports them as invalid
// categories.
func residencyHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(policy.Residency("")) {
		return data, nil
	}
	raw := data.(string)
	residency, err := policy.ParseResidency(raw)
	if err != nil {
		return policy.Residency(raw), nil
	}
	return residency, nil
}

// EngineOptions converts the engine configuration into valuation options.
func (c *Configuration) EngineOptions() []valuation.Option {
	var opts []valuation.Option
	if c.Engine.PreciseCpfAccrual {
		opts = append(opts, valuation.WithPreciseCpfAccrual())
	}
	if len(c.Engine.Benchmarks) > 0 {
		opts = append(opts, valuation.WithBenchmarks(c.Engine.Benchmarks))
	}
	return opts
}

// ActiveScenarios returns the active scenarios, optionally only the one
// called name.
func (c *Configuration) ActiveScenarios(name string) []Scenario {
	var scenarios []Scenario
	for _, scenario := range c.Scenarios {
		if !scenario.Active {
			continue
		}
		if name != "" && scenario.Name != name {
			continue
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	scenarios := make([]configprocessor.ScenarioInfo, 0, len(c.Scenarios))
	for _, scenario := range c.Scenarios {
		scenarios = append(scenarios, configprocessor.ScenarioInfo{
			Name:               scenario.Name,
			Active:             scenario.Active,
			HoldingPeriodYears: scenario.Inputs.HoldingPeriodYears,
			LockInYears:        scenario.Inputs.LockInYears,
			LoanPercentage:     scenario.Inputs.LoanPercentage,
			LoanTenureYears:    scenario.Inputs.LoanTenureYears,
			RentOut:            scenario.Inputs.RentOut,
			RentRoom:           scenario.Inputs.RentRoom,
		})
	}

	processor := configprocessor.NewProcessor()
	return processor.ValidateScenarios(scenarios)
}

// resolvedScenario is a scenario with every input spelled out.
type resolvedScenario struct {
	Name     string                   `yaml:"name"`
	Active   bool                     `yaml:"active"`
	Property valuation.PropertyInputs `yaml:"property"`
	Solvers  []SolverConfig           `yaml:"solvers,omitempty"`
}

// WriteResolved writes the scenarios to w as YAML with defaults filled in,
// in a form LoadConfiguration accepts.
func (c *Configuration) WriteResolved(w io.Writer) error {
	resolved := struct {
		Scenarios []resolvedScenario `yaml:"scenarios"`
	}{}
	for _, scenario := range c.Scenarios {
		resolved.Scenarios = append(resolved.Scenarios, resolvedScenario{
			Name:     scenario.Name,
			Active:   scenario.Active,
			Property: scenario.Inputs,
			Solvers:  scenario.Solvers,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(resolved); err != nil {
		return fmt.Errorf("failed to encode resolved scenarios: %w", err)
	}
	return encoder.Close()
}
