//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/karacalc/internal/format"
	"github.com/agbru/karacalc/internal/orchestration"
	"github.com/agbru/karacalc/internal/progress"
	"github.com/agbru/karacalc/internal/ui"
)

const (
	// TruncationLimit is the digit count above which products are
	// truncated in standard output.
	TruncationLimit = 100
	// DisplayEdges is the number of digits shown at each end of a
	// truncated product.
	DisplayEdges = 25
	// ProgressRefreshRate is the refresh period of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner followed by a progress bar with an ETA
// until progressChan is closed. It calls wg.Done when it returns.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	label := "Multiplying"
	if agg.IsMultiCalculator() {
		label = fmt.Sprintf("Multiplying with %d algorithms", agg.NumCalculators())
	}
	suffix := func(avg float64, eta time.Duration) string {
		s := fmt.Sprintf(" %s%s%s %s", ui.ColorCyan(), label, ui.ColorReset(),
			format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth))
		if failed := agg.Failed(); failed > 0 {
			s += fmt.Sprintf(" %s(%d failed)%s", ui.ColorRed(), failed, ui.ColorReset())
		}
		return s
	}
	s.UpdateSuffix(suffix(0, 0))
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(suffix(agg.CalculateAverage(), 0))
				return
			}
			agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(suffix(agg.CalculateAverage(), agg.GetETA()))
		}
	}
}
