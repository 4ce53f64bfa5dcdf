package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/progress"
)

// CalculationResult is the outcome of one calculator run. It is the type
// shared by orchestration and the presentation layers.
type CalculationResult struct {
	// Name is the display name of the algorithm (e.g. "Karatsuba").
	Name string
	// Product is x*y. It is the zero value if Err is set.
	Product bigint.Int
	// Stats describes the recursion when the calculator reports it.
	Stats    karatsuba.Stats
	HasStats bool
	Duration time.Duration
	Err      error
}

// PresentationOptions configures how the final result is displayed.
type PresentationOptions struct {
	X, Y      bigint.Int
	Verbose   bool
	Details   bool
	ShowValue bool
}

// ProgressReporter displays progress updates. DisplayProgress runs in its
// own goroutine until progressChan is closed and must call wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	f(wg, progressChan, numCalculators, out)
}

// NullProgressReporter drains the progress channel without output. It is
// used in quiet mode and by the HTTP service.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders comparison tables, final results and errors.
type ResultPresenter interface {
	PresentComparisonTable(results []CalculationResult, out io.Writer)
	PresentResult(result CalculationResult, opts PresentationOptions, out io.Writer)
	HandleError(err error, duration time.Duration, out io.Writer) int
}
