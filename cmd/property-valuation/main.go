package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/property-valuation/internal/config"
	"github.com/iwvelando/property-valuation/internal/optimizer"
	"github.com/iwvelando/property-valuation/internal/share"
	"github.com/iwvelando/property-valuation/internal/valuation"
	"github.com/iwvelando/property-valuation/pkg/constants"
	"github.com/iwvelando/property-valuation/pkg/output"
	"github.com/iwvelando/property-valuation/pkg/validation"
	"go.uber.org/zap"
)

// evaluateScenarios runs every selected scenario through the engine and
// attaches the outcome of its solver directives.
func evaluateScenarios(logger *zap.Logger, conf *config.Configuration, scenarioName string) ([]output.Report, error) {
	scenarios := conf.ActiveScenarios(scenarioName)
	if len(scenarios) == 0 {
		if scenarioName != "" {
			return nil, fmt.Errorf("no active scenario named %q", scenarioName)
		}
		return nil, fmt.Errorf("no active scenarios")
	}

	runner, err := optimizer.NewRunner(logger, conf)
	if err != nil {
		return nil, err
	}
	solved, err := runner.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run solvers: %w", err)
	}

	engine := valuation.New(logger, conf.EngineOptions()...)
	reports := make([]output.Report, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := engine.Evaluate(scenario.Inputs)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		logger.Info(fmt.Sprintf("evaluated scenario %s", scenario.Name),
			zap.String("op", "main.evaluateScenarios"),
			zap.String("share", share.EncodeQuery(scenario.Inputs)),
		)
		reports = append(reports, output.Report{
			Name:      scenario.Name,
			Inputs:    scenario.Inputs,
			Result:    result,
			Solutions: solved.For(scenario.Name),
		})
	}
	return reports, nil
}

// writeReports renders reports in the requested format.
func writeReports(w io.Writer, format string, reports []output.Report) error {
	switch format {
	case constants.OutputFormatPretty:
		output.PrettyFormat(w, reports)
		return nil
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, reports)
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, reports)
	}
	return validation.ValidateOutputFormat(format)
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	scenarioName := flag.String("scenario", "", "evaluate only the named active scenario")
	printResolved := flag.Bool("print-resolved", false, "print the scenarios with every default filled in and exit")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *printResolved {
		if err := conf.WriteResolved(os.Stdout); err != nil {
			logger.Fatal("failed to print resolved scenarios",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	reports, err := evaluateScenarios(logger, conf, *scenarioName)
	if err != nil {
		logger.Fatal("failed to evaluate scenarios",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := writeReports(os.Stdout, outputFormat, reports); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
