package cli

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"math/rand"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/format"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/ui"
)

// StressConfig configures RunStress.
type StressConfig struct {
	// Digits is the length of every generated operand.
	Digits int
	// Count is the number of pairs to multiply.
	Count int
	// Seed seeds the generator; 0 picks a time-based seed.
	Seed int64
	// Quiet suppresses the per-pair lines.
	Quiet bool
}

// StressReport summarizes a stress run.
type StressReport struct {
	Seed     int64
	Pairs    int
	Failures int
	Total    time.Duration
	Slowest  time.Duration
}

// RunStress multiplies cfg.Count pairs of random cfg.Digits-digit operands
// with calc and checks each product against math/big. The seed is always
// printed so a failing run can be replayed with -seed.
func RunStress(ctx context.Context, calc karatsuba.Calculator, opts karatsuba.Options, cfg StressConfig, out io.Writer) (StressReport, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	report := StressReport{Seed: seed}

	fmt.Fprintf(out, "Stress test: %s%d%s pairs of %s%d%s-digit operands with %s%s%s (seed %d)\n",
		ui.ColorCyan(), cfg.Count, ui.ColorReset(), ui.ColorCyan(), cfg.Digits, ui.ColorReset(),
		ui.ColorGreen(), calc.Name(), ui.ColorReset(), seed)

	for i := range cfg.Count {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		x := bigint.Random(rng, cfg.Digits)
		y := bigint.Random(rng, cfg.Digits)

		start := time.Now()
		product, err := calc.Calculate(ctx, nil, 0, x, y, opts)
		duration := time.Since(start)
		if err != nil {
			return report, apperrors.CalculationError{Algorithm: calc.Name(), Cause: err}
		}
		report.Pairs++
		report.Total += duration
		report.Slowest = max(report.Slowest, duration)

		ok := product.Big().Cmp(new(big.Int).Mul(x.Big(), y.Big())) == 0
		if !ok {
			report.Failures++
		}
		if !cfg.Quiet || !ok {
			status := ui.ColorGreen() + "✓" + ui.ColorReset()
			if !ok {
				status = ui.ColorRed() + "✗ MISMATCH" + ui.ColorReset()
			}
			fmt.Fprintf(out, "  #%-4d %s %10s  %d digits\n", i+1, status,
				format.FormatExecutionDuration(duration), product.DigitLength())
		}
	}

	avg := time.Duration(0)
	if report.Pairs > 0 {
		avg = report.Total / time.Duration(report.Pairs)
	}
	fmt.Fprintf(out, "Done: %d pairs, %d failures, average %s, slowest %s\n",
		report.Pairs, report.Failures, format.FormatExecutionDuration(avg), format.FormatExecutionDuration(report.Slowest))

	if report.Failures > 0 {
		return report, apperrors.MismatchError{Algorithms: []string{calc.Name(), "math/big"}}
	}
	return report, nil
}
