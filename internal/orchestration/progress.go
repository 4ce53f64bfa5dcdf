package orchestration

import (
	"sync"
	"time"

	"github.com/agbru/karacalc/internal/progress"
)

const (
	// maxETA caps estimates so a stalled lane does not print absurd values.
	maxETA = 24 * time.Hour
	// rateSmoothing is the weight of the newest sample in the moving
	// average of the progress rate.
	rateSmoothing = 0.3
)

// LaneState is the lifecycle of one calculator in a race.
type LaneState uint8

const (
	LaneRunning LaneState = iota
	LaneDone
	LaneFailed
)

func (s LaneState) String() string {
	switch s {
	case LaneDone:
		return "done"
	case LaneFailed:
		return "failed"
	}
	return "running"
}

// ProgressAggregator merges the progress lanes of calculators racing on the
// same operands. A failed lane leaves the average and the ETA, since its
// progress will never reach 1; the remaining lanes decide when the race
// ends. The CLI progress bar and the dashboard both use it.
type ProgressAggregator struct {
	mu     sync.Mutex
	values []float64
	states []LaneState
	now    func() time.Time

	lastAt  time.Time
	lastAvg float64
	rate    float64 // average progress per second
}

// NewProgressAggregator returns nil if numCalculators <= 0.
func NewProgressAggregator(numCalculators int) *ProgressAggregator {
	if numCalculators <= 0 {
		return nil
	}
	a := &ProgressAggregator{
		values: make([]float64, numCalculators),
		states: make([]LaneState, numCalculators),
		now:    time.Now,
	}
	a.lastAt = a.now()
	return a
}

// AggregatedProgress is the result of processing one update.
type AggregatedProgress struct {
	CalculatorIndex int
	Value           float64
	State           LaneState
	AverageProgress float64
	ETA             time.Duration
}

// Update records one update and returns the lane and race state after it.
// Updates for unknown lanes or for lanes already settled only refresh the
// race state.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := update.CalculatorIndex
	known := i >= 0 && i < len(a.values)
	if known && a.states[i] == LaneRunning {
		switch {
		case update.Failed:
			a.states[i] = LaneFailed
			// The average jumps once the lane leaves it; restart the rate
			// baseline so the jump is not taken as speed.
			a.lastAvg = a.averageLocked()
			a.lastAt = a.now()
		case update.Done:
			a.values[i] = 1
			a.states[i] = LaneDone
			a.sampleLocked()
		default:
			a.values[i] = max(a.values[i], clamp01(update.Value))
			a.sampleLocked()
		}
	}

	ap := AggregatedProgress{
		CalculatorIndex: i,
		Value:           update.Value,
		AverageProgress: a.averageLocked(),
		ETA:             a.etaLocked(),
	}
	if known {
		ap.Value = a.values[i]
		ap.State = a.states[i]
	}
	return ap
}

func (a *ProgressAggregator) sampleLocked() {
	avg := a.averageLocked()
	now := a.now()
	dt := now.Sub(a.lastAt).Seconds()
	if dt <= 0 || avg <= a.lastAvg {
		return
	}
	sample := (avg - a.lastAvg) / dt
	if a.rate == 0 {
		a.rate = sample
	} else {
		a.rate = rateSmoothing*sample + (1-rateSmoothing)*a.rate
	}
	a.lastAt = now
	a.lastAvg = avg
}

// averageLocked is the mean progress of the lanes that have not failed.
func (a *ProgressAggregator) averageLocked() float64 {
	var sum float64
	var n int
	for i, v := range a.values {
		if a.states[i] == LaneFailed {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (a *ProgressAggregator) etaLocked() time.Duration {
	avg := a.averageLocked()
	if a.rate <= 0 || avg <= 0 || avg >= 1 {
		return 0
	}
	eta := time.Duration((1 - avg) / a.rate * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// CalculateAverage returns the current average without updating, for
// periodic refresh between updates.
func (a *ProgressAggregator) CalculateAverage() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.averageLocked()
}

// GetETA returns the current ETA without updating. It is 0 while no rate
// is known and once the race is over.
func (a *ProgressAggregator) GetETA() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.etaLocked()
}

// Lanes returns a copy of the lane states, in calculator order.
func (a *ProgressAggregator) Lanes() []LaneState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]LaneState(nil), a.states...)
}

// Failed returns the number of lanes whose calculator returned an error.
func (a *ProgressAggregator) Failed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, s := range a.states {
		if s == LaneFailed {
			n++
		}
	}
	return n
}

// Settled reports whether every lane is done or failed.
func (a *ProgressAggregator) Settled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.states {
		if s == LaneRunning {
			return false
		}
	}
	return true
}

func (a *ProgressAggregator) NumCalculators() int { return len(a.values) }

// IsMultiCalculator reports whether more than one calculator is tracked.
func (a *ProgressAggregator) IsMultiCalculator() bool {
	return len(a.values) > 1
}

// DrainChannel discards updates until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
