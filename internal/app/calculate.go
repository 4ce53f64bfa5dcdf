package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/cli"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/metrics"
	"github.com/agbru/karacalc/internal/orchestration"
	"github.com/agbru/karacalc/internal/ui"
)

// runCalculate orchestrates the execution of the CLI calculation command.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	x, y, err := a.Config.Operands()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculatorsToRun := orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory)

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(calculatorsToRun, out)
	}

	var progressReporter orchestration.ProgressReporter
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	gc := metrics.NewGCController(a.Config.GCMode, max(x.DigitLength(), y.DigitLength()))
	gc.SetLogger(log.Logger)
	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	gc.Begin()
	results := orchestration.ExecuteCalculations(ctx, calculatorsToRun, x, y, a.Config.ToOptions(), progressReporter, progressOut)
	gc.End()
	delta := metrics.Delta(before, collector.Snapshot())

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
		ShowValue:  a.Config.ShowValue,
	}

	exitCode := a.analyzeResultsWithOutput(results, x, y, outputCfg, out)
	if exitCode == apperrors.ExitSuccess && a.Config.Details && !a.Config.Quiet {
		cli.DisplayMemoryStats(delta, out)
	}
	return exitCode
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.CalculationResult, x, y bigint.Int, outputCfg cli.OutputConfig, out io.Writer) int {
	if outputCfg.Quiet {
		best, err := orchestration.CompareResults(results)
		if err != nil {
			return apperrors.HandleCalculationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
		}
		if err := cli.DisplayResultWithConfig(out, best, x, y, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	presOpts := orchestration.PresentationOptions{
		X:         x,
		Y:         y,
		Verbose:   outputCfg.Verbose,
		Details:   outputCfg.Details,
		ShowValue: outputCfg.ShowValue,
	}
	exitCode := orchestration.AnalyzeComparisonResults(results, presOpts, cli.CLIResultPresenter{}, out)
	if exitCode != apperrors.ExitSuccess || outputCfg.OutputFile == "" {
		return exitCode
	}

	// AnalyzeComparisonResults sorted the results: the first one is the
	// fastest successful run.
	best := results[0]
	if err := cli.WriteResultToFile(x, y, best.Product, best.Duration, best.Name, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
		ui.ColorGreen(), ui.ColorCyan(), outputCfg.OutputFile, ui.ColorReset())
	return exitCode
}
