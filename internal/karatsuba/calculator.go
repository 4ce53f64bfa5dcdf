package karatsuba

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/progress"
)

// Calculator is the interface through which front ends run a
// multiplication algorithm.
type Calculator interface {
	// Calculate returns x*y. Progress is sent to progressChan, tagged with
	// calcIndex, without blocking; progressChan may be nil.
	Calculate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, calcIndex int, x, y bigint.Int, opts Options) (bigint.Int, error)

	// Name returns a short human-readable name of the algorithm.
	Name() string
}

// StatsCalculator is implemented by calculators that can report the
// shape of their recursion.
type StatsCalculator interface {
	Calculator
	CalculateWithStats(ctx context.Context, progressChan chan<- progress.ProgressUpdate, calcIndex int, x, y bigint.Int, opts Options) (bigint.Int, Stats, error)
}

// CoreCalculator is an algorithm without the progress plumbing. The
// reporter passed to it may be nil.
type CoreCalculator interface {
	CalculateCore(ctx context.Context, reporter progress.ProgressCallback, x, y bigint.Int, opts Options) (bigint.Int, error)
	Name() string
}

// statsCore is implemented by cores that produce Stats.
type statsCore interface {
	CalculateCoreWithStats(ctx context.Context, reporter progress.ProgressCallback, x, y bigint.Int, opts Options) (bigint.Int, Stats, error)
}

// MultiplyCalculator adapts a core algorithm to Calculator, routing its
// progress callback to observers.
type MultiplyCalculator struct {
	core CoreCalculator
}

// NewCalculator wraps core. It panics if core is nil.
func NewCalculator(core CoreCalculator) *MultiplyCalculator {
	if core == nil {
		panic("karatsuba: NewCalculator called with nil core")
	}
	return &MultiplyCalculator{core: core}
}

// Name implements Calculator.
func (c *MultiplyCalculator) Name() string { return c.core.Name() }

// Calculate implements Calculator.
func (c *MultiplyCalculator) Calculate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, calcIndex int, x, y bigint.Int, opts Options) (bigint.Int, error) {
	z, _, err := c.CalculateWithStats(ctx, progressChan, calcIndex, x, y, opts)
	return z, err
}

// CalculateWithStats implements StatsCalculator. Cores that do not
// produce statistics return the zero Stats.
func (c *MultiplyCalculator) CalculateWithStats(ctx context.Context, progressChan chan<- progress.ProgressUpdate, calcIndex int, x, y bigint.Int, opts Options) (bigint.Int, Stats, error) {
	subject := progress.NewProgressSubject()
	if progressChan != nil {
		subject.Register(progress.NewChannelObserver(progressChan))
	}
	return c.calculate(ctx, subject, calcIndex, x, y, opts)
}

// CalculateWithObservers runs the algorithm and notifies every observer
// registered on subject. subject may be nil.
func (c *MultiplyCalculator) CalculateWithObservers(ctx context.Context, subject *progress.ProgressSubject, calcIndex int, x, y bigint.Int, opts Options) (bigint.Int, error) {
	z, _, err := c.calculate(ctx, subject, calcIndex, x, y, opts)
	return z, err
}

func (c *MultiplyCalculator) calculate(ctx context.Context, subject *progress.ProgressSubject, calcIndex int, x, y bigint.Int, opts Options) (bigint.Int, Stats, error) {
	var reporter progress.ProgressCallback
	if subject != nil && subject.ObserverCount() > 0 {
		reporter = subject.Freeze(calcIndex)
	}

	var (
		z     bigint.Int
		stats Stats
		err   error
	)
	if sc, ok := c.core.(statsCore); ok {
		z, stats, err = sc.CalculateCoreWithStats(ctx, reporter, x, y, opts)
	} else {
		z, err = c.core.CalculateCore(ctx, reporter, x, y, opts)
	}
	if err != nil {
		return bigint.Int{}, stats, fmt.Errorf("%s: %w", c.core.Name(), err)
	}
	return z, stats, nil
}

// karatsubaCore runs the Karatsuba engine.
type karatsubaCore struct{}

func (karatsubaCore) Name() string { return "Karatsuba" }

func (k karatsubaCore) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, x, y bigint.Int, opts Options) (bigint.Int, error) {
	z, _, err := k.CalculateCoreWithStats(ctx, reporter, x, y, opts)
	return z, err
}

func (karatsubaCore) CalculateCoreWithStats(ctx context.Context, reporter progress.ProgressCallback, x, y bigint.Int, opts Options) (bigint.Int, Stats, error) {
	engine := NewEngine(opts, reporter)
	engine.SetLogger(log.With().Str("component", "karatsuba").Logger())
	return engine.MultiplyWithStats(ctx, x, y)
}

// report calls reporter if it is set.
func report(reporter progress.ProgressCallback, value float64) {
	if reporter != nil {
		reporter(value)
	}
}
