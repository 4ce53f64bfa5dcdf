package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/karacalc/internal/bigint"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/progress"
)

// ProgressBufferMultiplier sizes the progress channel per calculator so
// slow displays rarely cause dropped updates.
const ProgressBufferMultiplier = 5

var tracer = otel.Tracer("github.com/agbru/karacalc/internal/orchestration")

// ExecuteCalculations runs every calculator on x and y concurrently and
// returns one result per calculator, in input order. A failing calculator
// does not cancel the others; its error is recorded in its result.
func ExecuteCalculations(ctx context.Context, calculators []karatsuba.Calculator, x, y bigint.Int, opts karatsuba.Options, progressReporter ProgressReporter, out io.Writer) []CalculationResult {
	ctx, span := tracer.Start(ctx, "ExecuteCalculations")
	defer span.End()
	span.SetAttributes(
		attribute.Int("karacalc.calculators", len(calculators)),
		attribute.Int("karacalc.x_digits", x.DigitLength()),
		attribute.Int("karacalc.y_digits", y.DigitLength()),
	)

	g, ctx := errgroup.WithContext(ctx)
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan progress.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	for i, calc := range calculators {
		g.Go(func() error {
			results[i] = runCalculator(ctx, calc, progressChan, i, x, y, opts)
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

func runCalculator(ctx context.Context, calc karatsuba.Calculator, progressChan chan<- progress.ProgressUpdate, idx int, x, y bigint.Int, opts karatsuba.Options) CalculationResult {
	ctx, span := tracer.Start(ctx, "Calculate")
	defer span.End()
	span.SetAttributes(attribute.String("karacalc.algorithm", calc.Name()))

	res := CalculationResult{Name: calc.Name()}
	start := time.Now()
	if sc, ok := calc.(karatsuba.StatsCalculator); ok {
		res.Product, res.Stats, res.Err = sc.CalculateWithStats(ctx, progressChan, idx, x, y, opts)
		res.HasStats = res.Err == nil && res.Stats != (karatsuba.Stats{})
	} else {
		res.Product, res.Err = calc.Calculate(ctx, progressChan, idx, x, y, opts)
	}
	res.Duration = time.Since(start)
	settleLane(progressChan, idx, res.Err)

	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	} else {
		span.SetAttributes(attribute.Int("karacalc.product_digits", res.Product.DigitLength()))
	}
	return res
}

// settleLane sends the final update of a calculator. Intermediate updates
// may be dropped when the channel is full; this one blocks, as the reporter
// drains the channel until it is closed.
func settleLane(progressChan chan<- progress.ProgressUpdate, idx int, err error) {
	update := progress.ProgressUpdate{CalculatorIndex: idx, Value: 1, Done: true}
	if err != nil {
		update.Value, update.Failed = 0, true
	}
	progressChan <- update
}

// CompareResults checks that every successful result carries the same
// product. It returns the first successful result, or an error: the first
// calculator error when none succeeded, or a MismatchError.
func CompareResults(results []CalculationResult) (CalculationResult, error) {
	var (
		first    *CalculationResult
		firstErr error
	)
	for i := range results {
		if results[i].Err != nil {
			if firstErr == nil {
				firstErr = results[i].Err
			}
			continue
		}
		if first == nil {
			first = &results[i]
		}
	}
	if first == nil {
		if firstErr == nil {
			firstErr = errors.New("no calculator was run")
		}
		return CalculationResult{}, firstErr
	}

	for _, res := range results {
		if res.Err == nil && !res.Product.Equal(first.Product) {
			names := make([]string, 0, len(results))
			for _, r := range results {
				if r.Err == nil {
					names = append(names, r.Name)
				}
			}
			return *first, apperrors.MismatchError{Algorithms: names}
		}
	}
	return *first, nil
}

// SortResults orders results with successes first, fastest first.
func SortResults(results []CalculationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})
}

// AnalyzeComparisonResults sorts the results, prints the comparison table
// and a global status, presents the fastest valid product and returns the
// process exit code.
func AnalyzeComparisonResults(results []CalculationResult, opts PresentationOptions, presenter ResultPresenter, out io.Writer) int {
	SortResults(results)
	presenter.PresentComparisonTable(results, out)

	best, err := CompareResults(results)
	if err != nil {
		var mismatch apperrors.MismatchError
		if errors.As(err, &mismatch) {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the products of %s.\n",
				strings.Join(mismatch.Algorithms, ", "))
			return apperrors.ExitErrorMismatch
		}
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the multiplication.\n")
		return presenter.HandleError(err, 0, out)
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid products are consistent.\n")
	presenter.PresentResult(best, opts, out)
	return apperrors.ExitSuccess
}
