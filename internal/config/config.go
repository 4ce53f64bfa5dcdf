// Package config parses the karacalc command line. Values come from flags
// first, then KARACALC_* environment variables (optionally loaded from a
// .env file), then the defaults below.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/agbru/karacalc/internal/bigint"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/karatsuba"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "KARACALC_"
	// DefaultAlgo is the calculator used when -algo is not given.
	DefaultAlgo = "karatsuba"
	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 5 * time.Minute
	// MaxRandomDigits bounds the operand size of -random.
	MaxRandomDigits = 10_000_000
	// DefaultEnvFile is read at startup when present.
	DefaultEnvFile = ".env"
	// DefaultGCMode lets large runs suspend the garbage collector.
	DefaultGCMode = "auto"
)

// ParallelDisabled turns parallel recursion off when passed as
// -parallel-threshold. Zero means "pick a value for this machine".
const ParallelDisabled = -1

// AppConfig aggregates the application's configuration.
type AppConfig struct {
	// X and Y are the operand literals.
	X, Y string
	// Algo selects the calculator, or "all" to compare every one.
	Algo string
	// Cutoff is the Karatsuba base-case threshold.
	Cutoff uint64
	// ParallelThreshold is the digit count at which sub-products run
	// concurrently. 0 is adaptive and ParallelDisabled turns it off.
	ParallelThreshold int
	Timeout           time.Duration

	// Random generates operands of this many digits instead of reading X
	// and Y. Count pairs are multiplied, reproducibly when Seed is set.
	Random int
	Count  int
	Seed   int64

	Demo        bool
	Interactive bool
	TUI         bool
	// Serve is the listen address of the HTTP service.
	Serve string

	Calibrate          bool
	AutoCalibrate      bool
	CalibrationProfile string

	// GCMode controls the garbage collector during a CLI multiplication:
	// "auto", "aggressive" or "disabled".
	GCMode string

	ShowValue  bool
	Verbose    bool
	Details    bool
	Quiet      bool
	OutputFile string
	NoColor    bool
	Completion string
}

// ToOptions converts the configuration into engine options.
func (c AppConfig) ToOptions() karatsuba.Options {
	opts := karatsuba.Options{ParallelThreshold: c.ParallelThreshold}
	if c.Cutoff > karatsuba.MaxCutoff {
		opts.Cutoff = karatsuba.MaxCutoff
	} else {
		opts.Cutoff = uint32(c.Cutoff)
	}
	if opts.ParallelThreshold < 0 {
		opts.ParallelThreshold = 0
	}
	return opts
}

// Operands parses X and Y.
func (c AppConfig) Operands() (x, y bigint.Int, err error) {
	if x, err = bigint.Parse(c.X); err != nil {
		return bigint.Int{}, bigint.Int{}, apperrors.OperandError{Operand: "x", Cause: err}
	}
	if y, err = bigint.Parse(c.Y); err != nil {
		return bigint.Int{}, bigint.Int{}, apperrors.OperandError{Operand: "y", Cause: err}
	}
	return x, y, nil
}

// NeedsOperands reports whether the selected mode reads X and Y.
func (c AppConfig) NeedsOperands() bool {
	return c.Random == 0 && !c.Demo && !c.Interactive && !c.TUI && c.Serve == "" &&
		!c.Calibrate && c.Completion == ""
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Cutoff > karatsuba.MaxCutoff {
		return apperrors.NewConfigError("cutoff must not exceed %d", karatsuba.MaxCutoff)
	}
	if c.ParallelThreshold < ParallelDisabled {
		return apperrors.NewConfigError("parallel threshold must be >= %d", ParallelDisabled)
	}
	if c.Random < 0 || c.Random > MaxRandomDigits {
		return apperrors.NewConfigError("random digit count must be between 1 and %d", MaxRandomDigits)
	}
	if c.Count < 1 {
		return apperrors.NewConfigError("count must be at least 1")
	}
	if c.Algo != "all" && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or one of [%s]",
			c.Algo, strings.Join(availableAlgos, ", "))
	}
	if !slices.Contains(gcModes, c.GCMode) {
		return apperrors.NewConfigError("unsupported GC mode %q (want one of %s)",
			c.GCMode, strings.Join(gcModes, ", "))
	}
	if c.Completion != "" && !slices.Contains(completionShells, c.Completion) {
		return apperrors.NewConfigError("unsupported completion shell %q (want one of %s)",
			c.Completion, strings.Join(completionShells, ", "))
	}
	if c.NeedsOperands() {
		if c.X == "" || c.Y == "" {
			return apperrors.NewConfigError("two operands are required (use -x/-y, positional X Y, -random, -demo or -interactive)")
		}
		if _, _, err := c.Operands(); err != nil {
			return err
		}
	}
	return nil
}

var (
	completionShells = []string{"bash", "zsh", "fish", "powershell"}
	gcModes          = []string{"auto", "aggressive", "disabled"}
)

// LoadEnvFile loads KARACALC_* variables from a dotenv file without
// overriding variables already present in the environment. A missing file
// is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ParseConfig parses command-line arguments, applies environment
// overrides and validates the result.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [options] [X Y]\n\n", programName)
		fmt.Fprintln(errorWriter, "Multiplies two non-negative integers with the Karatsuba algorithm.")
		fmt.Fprintln(errorWriter, "\nOptions:")
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEvery option can also be set with %s<NAME>, e.g. %sALGO=all.\n", EnvPrefix, EnvPrefix)
	}

	config := AppConfig{}
	fs.StringVar(&config.X, "x", "", "First operand.")
	fs.StringVar(&config.Y, "y", "", "Second operand.")
	algoHelp := fmt.Sprintf("Algorithm to use: 'all' or one of [%s].", strings.Join(availableAlgos, ", "))
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.Uint64Var(&config.Cutoff, "cutoff", uint64(karatsuba.DefaultCutoff), "Base-case threshold: operands below it are multiplied directly.")
	fs.IntVar(&config.ParallelThreshold, "parallel-threshold", 0, "Operand digits at which sub-products run concurrently (0=adaptive, -1=off).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.IntVar(&config.Random, "random", 0, "Multiply random operands with this many digits.")
	fs.IntVar(&config.Count, "count", 1, "Number of random pairs to multiply with -random.")
	fs.Int64Var(&config.Seed, "seed", 0, "Random seed (0 = time based).")
	fs.BoolVar(&config.Demo, "demo", false, "Run the demonstration suite.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start the interactive prompt.")
	fs.BoolVar(&config.TUI, "tui", false, "Start the interactive dashboard.")
	fs.StringVar(&config.Serve, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Benchmark thresholds and save a calibration profile.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Run a quick calibration before multiplying.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path of the calibration profile.")
	fs.StringVar(&config.GCMode, "gc-mode", DefaultGCMode, "Garbage collector control: auto, aggressive or disabled.")
	fs.BoolVar(&config.ShowValue, "calculate", false, "Display the product value.")
	fs.BoolVar(&config.ShowValue, "c", false, "Display the product value (shorthand).")
	fs.BoolVar(&config.Verbose, "verbose", false, "Display the full product without truncation.")
	fs.BoolVar(&config.Verbose, "v", false, "Display the full product (shorthand).")
	fs.BoolVar(&config.Details, "details", false, "Display engine statistics.")
	fs.BoolVar(&config.Details, "d", false, "Display engine statistics (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the product.")
	fs.BoolVar(&config.Quiet, "q", false, "Print only the product (shorthand).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the product to a file.")
	fs.StringVar(&config.OutputFile, "o", "", "Write the product to a file (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script (bash, zsh, fish, powershell).")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 2:
		if config.X != "" || config.Y != "" {
			return AppConfig{}, apperrors.NewConfigError("operands given both as flags and as arguments")
		}
		config.X, config.Y = rest[0], rest[1]
	default:
		return AppConfig{}, apperrors.NewConfigError("expected two operands, got %d argument(s): %s", len(rest), strings.Join(rest, " "))
	}

	config.Algo = strings.ToLower(config.Algo)
	config.GCMode = strings.ToLower(config.GCMode)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	return config, nil
}
