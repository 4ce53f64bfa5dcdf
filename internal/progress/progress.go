// Package progress carries fractional progress from running calculators to
// whoever displays it: a channel read by the CLI/TUI, a logger, or nothing.
package progress

import (
	"sync"

	"github.com/rs/zerolog"
)

// ProgressUpdate is a progress report from one calculator.
type ProgressUpdate struct {
	// CalculatorIndex identifies the calculator among those running
	// concurrently.
	CalculatorIndex int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
	// Done marks the last update of a calculator run. Failed is set with
	// it when the run returned an error.
	Done   bool
	Failed bool
}

// ProgressCallback receives the completed fraction of a running
// multiplication. Values are non-decreasing and the last one is 1.0 when
// the multiplication succeeds.
type ProgressCallback func(progress float64)

// ProgressObserver is notified of progress for a calculator.
type ProgressObserver interface {
	Update(calcIndex int, progress float64)
}

// ProgressSubject fans progress out to registered observers.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

// NewProgressSubject creates a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *ProgressSubject) Register(o ProgressObserver) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes the first occurrence of o.
func (s *ProgressSubject) Unregister(o ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obs := range s.observers {
		if obs == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify sends progress to every registered observer.
func (s *ProgressSubject) Notify(calcIndex int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.Update(calcIndex, progress)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Freeze returns a callback bound to calcIndex that notifies the observers
// registered at the time of the call. Observers registered later are not
// notified, and the callback takes no lock on the hot path.
func (s *ProgressSubject) Freeze(calcIndex int) ProgressCallback {
	s.mu.RLock()
	snapshot := make([]ProgressObserver, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()

	return func(progress float64) {
		for _, o := range snapshot {
			o.Update(calcIndex, progress)
		}
	}
}

// ChannelObserver forwards progress onto a channel without blocking: when
// the channel is full the update is dropped.
type ChannelObserver struct {
	ch chan<- ProgressUpdate
}

// NewChannelObserver creates an observer writing to ch. A nil channel
// yields an observer that drops everything.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update implements ProgressObserver.
func (o *ChannelObserver) Update(calcIndex int, progress float64) {
	if o.ch == nil {
		return
	}
	select {
	case o.ch <- ProgressUpdate{CalculatorIndex: calcIndex, Value: clamp(progress)}:
	default:
	}
}

// LoggingObserver logs progress every time it advances by at least the
// configured threshold, and always logs completion.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64

	mu   sync.Mutex
	last map[int]float64
}

// NewLoggingObserver creates a logging observer. A threshold <= 0 defaults
// to 0.1 (every 10%).
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{logger: logger, threshold: threshold, last: make(map[int]float64)}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(calcIndex int, progress float64) {
	o.mu.Lock()
	prev, seen := o.last[calcIndex]
	emit := !seen || progress-prev >= o.threshold || (progress >= 1 && prev < 1)
	if emit {
		o.last[calcIndex] = progress
	}
	o.mu.Unlock()

	if emit {
		o.logger.Debug().
			Int("calculator", calcIndex).
			Float64("progress", progress).
			Msg("multiplication progress")
	}
}

// NoOpObserver ignores every update.
type NoOpObserver struct{}

// NewNoOpObserver returns a NoOpObserver.
func NewNoOpObserver() NoOpObserver { return NoOpObserver{} }

// Update implements ProgressObserver.
func (NoOpObserver) Update(int, float64) {}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
