package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/karacalc/internal/calibration"
	"github.com/agbru/karacalc/internal/cli"
	"github.com/agbru/karacalc/internal/config"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/logging"
	"github.com/agbru/karacalc/internal/orchestration"
	"github.com/agbru/karacalc/internal/server"
	"github.com/agbru/karacalc/internal/tui"
	"github.com/agbru/karacalc/internal/ui"
)

// Application represents the karacalc application instance.
type Application struct {
	Config    config.AppConfig
	Factory   karatsuba.CalculatorFactory
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom CalculatorFactory for the application.
func WithFactory(f karatsuba.CalculatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// New creates a new Application instance by parsing command-line arguments.
// A .env file in the working directory is loaded first so its KARACALC_*
// variables take part in the configuration.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = karatsuba.NewDefaultFactory()
	}

	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		fmt.Fprintf(errWriter, "Warning: %v\n", err)
	}

	programName := "karacalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}

	if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
		cfg = cfgWithProfile
	} else {
		cfg = config.ApplyAdaptiveThresholds(cfg)
	}

	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	logging.SetLevel(a.Config.Verbose, a.Config.Quiet)
	ui.InitTheme(a.Config.NoColor)

	if a.Config.Calibrate {
		return a.runCalibration(ctx, out)
	}

	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)

	switch {
	case a.Config.Serve != "":
		return a.runServer(ctx)
	case a.Config.TUI:
		return a.runTUI(ctx, out)
	case a.Config.Interactive:
		return a.runREPL(out)
	case a.Config.Demo:
		return a.runDemo(ctx, out)
	case a.Config.Random > 0:
		return a.runStress(ctx, out)
	}
	return a.runCalculate(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	return calibration.RunCalibration(ctx, out, a.Factory.GetAll(), cli.DisplayProgress, cli.CLIColorProvider{},
		calibration.Options{ProfilePath: a.Config.CalibrationProfile})
}

// runAutoCalibrationIfEnabled runs auto-calibration if enabled.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if a.Config.AutoCalibrate {
		if updated, ok := calibration.AutoCalibrate(ctx, a.Config, out, a.Factory.GetAll()); ok {
			return updated
		}
	}
	return a.Config
}

// runServer serves the HTTP API until SIGINT or SIGTERM.
func (a *Application) runServer(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	cfg := server.DefaultConfig(a.Config.Serve)
	cfg.Options = a.Config.ToOptions()
	if a.Config.Algo != "all" {
		cfg.DefaultAlgo = a.Config.Algo
	}
	if a.Config.Timeout < cfg.RequestTimeout {
		cfg.RequestTimeout = a.Config.Timeout
	}

	logger := logging.NewDefaultLogger()
	srv := server.NewServer(a.Factory, cfg, server.WithLogger(logger))
	logger.Info("karacalc server starting",
		logging.String("addr", cfg.Addr),
		logging.String("algorithm", cfg.DefaultAlgo),
		logging.String("version", Version))
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive TUI dashboard. Each run started from the
// dashboard carries its own timeout.
func (a *Application) runTUI(ctx context.Context, _ io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculatorsToRun := orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory)
	return tui.Run(ctx, calculatorsToRun, a.Config, Version)
}

// runREPL starts the interactive prompt.
func (a *Application) runREPL(out io.Writer) int {
	algo := a.Config.Algo
	if algo == "all" {
		algo = config.DefaultAlgo
	}
	repl := cli.NewREPL(a.Factory.GetAll(), cli.REPLConfig{
		DefaultAlgo: algo,
		Timeout:     a.Config.Timeout,
		Options:     a.Config.ToOptions(),
	})
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// runDemo multiplies the demonstration pairs with every selected
// calculator.
func (a *Application) runDemo(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	opts := a.Config.ToOptions()
	for _, calc := range orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory) {
		if err := cli.RunDemo(ctx, calc, opts, out); err != nil {
			return apperrors.HandleCalculationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
		}
	}
	return apperrors.ExitSuccess
}

// runStress multiplies random operand pairs and checks every product.
func (a *Application) runStress(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	opts := a.Config.ToOptions()
	stressCfg := cli.StressConfig{
		Digits: a.Config.Random,
		Count:  a.Config.Count,
		Seed:   a.Config.Seed,
		Quiet:  a.Config.Quiet,
	}
	for _, calc := range orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory) {
		if _, err := cli.RunStress(ctx, calc, opts, stressCfg, out); err != nil {
			return apperrors.HandleCalculationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
		}
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
