// Package calibration benchmarks the Karatsuba engine's base-case cutoff
// and parallel threshold on the current machine and caches the fastest
// values in a profile file.
package calibration

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/config"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/format"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/progress"
	"github.com/agbru/karacalc/internal/ui"
)

const (
	// QuickCalibrationDigits is the operand size used by auto-calibration.
	QuickCalibrationDigits = 2_000
	// DefaultRuns is the number of timed runs per candidate; the fastest
	// one is kept.
	DefaultRuns = 3

	calibrationSeed = 0x6b617261
)

// ProgressDisplayFunc renders calibration progress. cli.DisplayProgress
// satisfies it.
type ProgressDisplayFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer)

// Options configures RunCalibration. Zero fields take defaults.
type Options struct {
	// ProfilePath is where the profile is saved (default: home directory).
	ProfilePath string
	// Digits is the operand size (default karatsuba.CalibrationDigits).
	Digits int
	// Runs is the number of timed runs per candidate (default DefaultRuns).
	Runs int
}

type calibrationResult struct {
	Label    string
	Cutoff   uint32
	Parallel int
	Duration time.Duration
	Err      error
}

// sweep benchmarks a list of engine options on fixed operands.
type sweep struct {
	calc karatsuba.Calculator
	x, y bigint.Int
	runs int
	step func()
}

func (s *sweep) measure(ctx context.Context, opts karatsuba.Options) (time.Duration, error) {
	best := time.Duration(0)
	for i := 0; i < s.runs; i++ {
		start := time.Now()
		if _, err := s.calc.Calculate(ctx, nil, 0, s.x, s.y, opts); err != nil {
			return 0, err
		}
		if d := time.Since(start); i == 0 || d < best {
			best = d
		}
	}
	return best, nil
}

// cutoffs times each cutoff with sequential recursion.
func (s *sweep) cutoffs(ctx context.Context, candidates []uint32) []calibrationResult {
	results := make([]calibrationResult, 0, len(candidates))
	for _, c := range candidates {
		d, err := s.measure(ctx, karatsuba.Options{Cutoff: c})
		results = append(results, calibrationResult{Label: fmt.Sprintf("cutoff %d", c), Cutoff: c, Duration: d, Err: err})
		s.step()
		if err != nil && apperrors.IsContextError(err) {
			break
		}
	}
	return results
}

// thresholds times each parallel threshold with the given cutoff.
func (s *sweep) thresholds(ctx context.Context, cutoff uint32, candidates []int) []calibrationResult {
	results := make([]calibrationResult, 0, len(candidates))
	for _, th := range candidates {
		d, err := s.measure(ctx, karatsuba.Options{Cutoff: cutoff, ParallelThreshold: th})
		label := "Sequential"
		if th > 0 {
			label = fmt.Sprintf("%d digits", th)
		}
		results = append(results, calibrationResult{Label: label, Cutoff: cutoff, Parallel: th, Duration: d, Err: err})
		s.step()
		if err != nil && apperrors.IsContextError(err) {
			break
		}
	}
	return results
}

// fastest returns the index of the fastest successful result, or -1 and
// the first error when none succeeded.
func fastest(results []calibrationResult) (int, error) {
	best := -1
	var firstErr error
	for i, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		if best < 0 || r.Duration < results[best].Duration {
			best = i
		}
	}
	if best < 0 && firstErr == nil {
		firstErr = fmt.Errorf("no calibration candidate")
	}
	return best, firstErr
}

func newSweep(calculators map[string]karatsuba.Calculator, digits, runs int) (*sweep, error) {
	calc, ok := calculators["karatsuba"]
	if !ok {
		return nil, errNoKaratsuba
	}
	rng := rand.New(rand.NewSource(calibrationSeed))
	return &sweep{
		calc: calc,
		x:    bigint.Random(rng, digits),
		y:    bigint.Random(rng, digits),
		runs: runs,
		step: func() {},
	}, nil
}

// RunCalibration benchmarks every cutoff, then every parallel threshold
// with the fastest cutoff, prints both tables and saves the winning pair
// to a profile. It returns a process exit code.
func RunCalibration(ctx context.Context, out io.Writer, calculators map[string]karatsuba.Calculator, display ProgressDisplayFunc, colors apperrors.ColorProvider, opts Options) int {
	if opts.Digits <= 0 {
		opts.Digits = karatsuba.CalibrationDigits
	}
	if opts.Runs <= 0 {
		opts.Runs = DefaultRuns
	}
	path := resolveProfilePath(opts.ProfilePath)

	s, err := newSweep(calculators, opts.Digits, opts.Runs)
	if err != nil {
		fmt.Fprintf(out, "%sCalibration failed: %v%s\n", colors.Red(), err, colors.Reset())
		return apperrors.ExitErrorConfig
	}

	fmt.Fprintf(out, "--- Calibration ---\n")
	fmt.Fprintf(out, "Benchmarking %s%d%s-digit operands, best of %d runs per candidate.\n",
		ui.ColorCyan(), opts.Digits, ui.ColorReset(), opts.Runs)

	cutoffs := GenerateCutoffs()
	thresholds := GenerateParallelThresholds()
	total := len(cutoffs) + len(thresholds)
	progressChan := make(chan progress.ProgressUpdate, total)
	var wg sync.WaitGroup
	wg.Add(1)
	go display(&wg, progressChan, 1, out)
	done := 0
	s.step = func() {
		done++
		progressChan <- progress.ProgressUpdate{CalculatorIndex: 0, Value: float64(done) / float64(total)}
	}

	start := time.Now()
	cutoffResults := s.cutoffs(ctx, cutoffs)
	bestCutoff, err := fastest(cutoffResults)
	var thresholdResults []calibrationResult
	bestThreshold := -1
	if bestCutoff >= 0 {
		thresholdResults = s.thresholds(ctx, cutoffResults[bestCutoff].Cutoff, thresholds)
		bestThreshold, err = fastest(thresholdResults)
	}
	close(progressChan)
	wg.Wait()
	fmt.Fprintln(out)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperrors.HandleCalculationError(ctxErr, time.Since(start), out, colors)
	}
	if bestCutoff < 0 || bestThreshold < 0 {
		return apperrors.HandleCalculationError(apperrors.CalculationError{Algorithm: "calibration", Cause: err}, time.Since(start), out, colors)
	}

	printCalibrationResults(out, "Cutoff Calibration", cutoffResults, bestCutoff)
	printCalibrationResults(out, "Parallel Threshold Calibration", thresholdResults, bestThreshold)

	profile := NewProfile()
	profile.OptimalCutoff = cutoffResults[bestCutoff].Cutoff
	profile.OptimalParallelThreshold = thresholdResults[bestThreshold].Parallel
	profile.CalibrationDigits = opts.Digits
	profile.CalibrationTime = time.Since(start).Round(time.Millisecond).String()

	fmt.Fprintf(out, "\n%sOptimal configuration%s: -cutoff %s%d%s -parallel-threshold %s%d%s (calibrated in %s)\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), profile.OptimalCutoff, ui.ColorReset(),
		ui.ColorYellow(), parallelFlagValue(profile.OptimalParallelThreshold), ui.ColorReset(),
		format.FormatExecutionDuration(time.Since(start)))

	if err := profile.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "%sWarning: %v%s\n", colors.Yellow(), err, colors.Reset())
		return apperrors.ExitSuccess
	}
	fmt.Fprintf(out, "Profile saved to %s%s%s\n", ui.ColorCyan(), path, ui.ColorReset())
	return apperrors.ExitSuccess
}

// parallelFlagValue converts a profile threshold to the -parallel-threshold
// value with the same meaning.
func parallelFlagValue(threshold int) int {
	if threshold <= 0 {
		return config.ParallelDisabled
	}
	return threshold
}

// AutoCalibrate runs a reduced calibration on small operands and returns
// cfg with the fastest cutoff and parallel threshold. The result is also
// cached in cfg.CalibrationProfile. It reports false, leaving cfg
// unchanged, when calibration could not complete.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer, calculators map[string]karatsuba.Calculator) (config.AppConfig, bool) {
	s, err := newSweep(calculators, QuickCalibrationDigits, 1)
	if err != nil {
		log.Warn().Err(err).Msg("auto-calibration skipped")
		return cfg, false
	}

	cutoffResults := s.cutoffs(ctx, GenerateQuickCutoffs())
	bestCutoff, err := fastest(cutoffResults)
	if bestCutoff < 0 {
		log.Warn().Err(err).Msg("auto-calibration failed")
		return cfg, false
	}
	cutoff := cutoffResults[bestCutoff].Cutoff
	thresholdResults := s.thresholds(ctx, cutoff, GenerateQuickParallelThresholds())
	bestThreshold, err := fastest(thresholdResults)
	if bestThreshold < 0 {
		log.Warn().Err(err).Msg("auto-calibration failed")
		return cfg, false
	}

	cfg.Cutoff = uint64(cutoff)
	cfg.ParallelThreshold = parallelFlagValue(thresholdResults[bestThreshold].Parallel)

	profile := NewProfile()
	profile.OptimalCutoff = cutoff
	profile.OptimalParallelThreshold = thresholdResults[bestThreshold].Parallel
	profile.CalibrationDigits = QuickCalibrationDigits
	if err := profile.SaveProfile(resolveProfilePath(cfg.CalibrationProfile)); err != nil {
		log.Debug().Err(err).Msg("auto-calibration profile not saved")
	}

	if !cfg.Quiet {
		printCalibrationOutput(cfg, out)
	}
	return cfg, true
}

// LoadCachedCalibration applies a valid, fresh profile from path (the
// default path when empty) to the thresholds left at their defaults. It
// reports whether a profile was applied.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	profile, loaded := LoadOrCreateProfile(resolveProfilePath(path))
	if !loaded || profile.IsStale(MaxProfileAge) {
		return cfg, false
	}
	if cfg.ParallelThreshold == 0 {
		cfg.ParallelThreshold = parallelFlagValue(profile.OptimalParallelThreshold)
	}
	if cfg.Cutoff == karatsuba.DefaultCutoff && profile.OptimalCutoff != 0 {
		cfg.Cutoff = uint64(profile.OptimalCutoff)
	}
	log.Debug().Str("profile", profile.String()).Msg("calibration profile applied")
	return cfg, true
}
