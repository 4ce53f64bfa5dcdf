package karatsuba

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/progress"
)

// Multiply returns x*y computed with Karatsuba's algorithm, using the
// default base-case threshold and no parallelism.
//
// The recursion is:
//
//	x = a·10^m + b, y = c·10^m + d, m = max(len(x), len(y)) / 2
//	x·y = ac·10^(2m) + ((a+b)(c+d) - ac - bd)·10^m + bd
//
// where len is the decimal digit length. When either operand is below the
// threshold the product is computed directly.
func Multiply(x, y bigint.Int) bigint.Int {
	return multiply(x, y, DefaultCutoff)
}

func multiply(x, y bigint.Int, cutoff uint32) bigint.Int {
	if x.LessThan(cutoff) || y.LessThan(cutoff) {
		return bigint.MulSmall(x, y)
	}
	m := splitPoint(x, y)
	a, b := x.SplitAt(m)
	c, d := y.SplitAt(m)

	ac := multiply(a, c, cutoff)
	bd := multiply(b, d, cutoff)
	abcd := multiply(bigint.Add(a, b), bigint.Add(c, d), cutoff)
	return combine(ac, abcd, bd, m)
}

// splitPoint returns half the digit length of the longer operand.
func splitPoint(x, y bigint.Int) int {
	return max(x.DigitLength(), y.DigitLength()) / 2
}

// combine recombines the three sub-products of a split at m.
// abcd is (a+b)(c+d), which is never below ac+bd.
func combine(ac, abcd, bd bigint.Int, m int) bigint.Int {
	adbc := bigint.Sub(bigint.Sub(abcd, ac), bd)
	return bigint.Add(bigint.Add(ac.Scale(2*m), adbc.Scale(m)), bd)
}

// Stats describes the recursion tree of one multiplication.
type Stats struct {
	// SplitNodes is the number of nodes that divided their operands.
	SplitNodes int64
	// BaseCases is the number of direct multiplications.
	BaseCases int64
	// MaxDepth is the deepest level reached; the root is at depth 0.
	MaxDepth int
	// ParallelSpawns is the number of sub-products run on a new goroutine.
	ParallelSpawns int64
}

// Engine multiplies with a fixed configuration. It holds no per-call state
// and is safe for concurrent use once configured.
type Engine struct {
	opts     Options
	progress progress.ProgressCallback
	logger   zerolog.Logger
}

// NewEngine creates an engine. cb may be nil; otherwise it receives the
// completed fraction of every multiplication the engine runs.
func NewEngine(opts Options, cb progress.ProgressCallback) *Engine {
	return &Engine{
		opts:     normalizeOptions(opts),
		progress: cb,
		logger:   zerolog.Nop(),
	}
}

// SetLogger sets the logger used for debug events. It must be called
// before the engine is shared between goroutines.
func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.logger = logger
}

// Options returns the normalized configuration of the engine.
func (e *Engine) Options() Options { return e.opts }

// Multiply returns x*y. It is equivalent to the package-level Multiply
// with the engine's options, and stops early with an error wrapping
// ctx.Err() when ctx is done.
func (e *Engine) Multiply(ctx context.Context, x, y bigint.Int) (bigint.Int, error) {
	z, _, err := e.MultiplyWithStats(ctx, x, y)
	return z, err
}

// MultiplyWithStats is like Multiply and also returns the statistics of
// the recursion tree.
func (e *Engine) MultiplyWithStats(ctx context.Context, x, y bigint.Int) (bigint.Int, Stats, error) {
	r := &run{
		ctx:               ctx,
		cutoff:            e.opts.Cutoff,
		parallelThreshold: e.opts.ParallelThreshold,
		tracker:           newTracker(e.progress),
	}

	start := time.Now()
	z, err := r.mul(x, y, 0)
	stats := r.stats()
	if err != nil {
		e.logger.Debug().Err(err).Int("split_nodes", int(stats.SplitNodes)).Msg("karatsuba multiplication aborted")
		return bigint.Int{}, stats, err
	}
	e.logger.Debug().
		Int("x_digits", x.DigitLength()).
		Int("y_digits", y.DigitLength()).
		Int64("split_nodes", stats.SplitNodes).
		Int64("base_cases", stats.BaseCases).
		Int("max_depth", stats.MaxDepth).
		Dur("duration", time.Since(start)).
		Msg("karatsuba multiplication finished")
	return z, stats, nil
}

// run is the state of a single multiplication.
type run struct {
	ctx               context.Context
	cutoff            uint32
	parallelThreshold int
	tracker           *tracker

	splitNodes atomic.Int64
	baseCases  atomic.Int64
	spawns     atomic.Int64
	maxDepth   atomic.Int32
}

func (r *run) mul(x, y bigint.Int, depth int) (bigint.Int, error) {
	r.observeDepth(depth)
	if x.LessThan(r.cutoff) || y.LessThan(r.cutoff) {
		r.baseCases.Add(1)
		r.tracker.leaf(depth)
		return bigint.MulSmall(x, y), nil
	}
	if err := r.ctx.Err(); err != nil {
		return bigint.Int{}, fmt.Errorf("karatsuba: multiplication canceled at depth %d: %w", depth, err)
	}
	r.splitNodes.Add(1)

	digits := max(x.DigitLength(), y.DigitLength())
	m := digits / 2
	a, b := x.SplitAt(m)
	c, d := y.SplitAt(m)

	var ac, bd, abcd bigint.Int
	tasks := [3]func() error{
		func() (err error) { ac, err = r.mul(a, c, depth+1); return err },
		func() (err error) { bd, err = r.mul(b, d, depth+1); return err },
		func() (err error) { abcd, err = r.mul(bigint.Add(a, b), bigint.Add(c, d), depth+1); return err },
	}

	var err error
	if r.parallelThreshold > 0 && digits >= r.parallelThreshold {
		err = r.executeParallel(tasks)
	} else {
		err = executeSequential(tasks)
	}
	if err != nil {
		return bigint.Int{}, err
	}

	r.tracker.split(depth)
	return combine(ac, abcd, bd, m), nil
}

func executeSequential(tasks [3]func() error) error {
	for _, task := range tasks {
		if err := task(); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) observeDepth(depth int) {
	d := int32(depth)
	for {
		cur := r.maxDepth.Load()
		if d <= cur || r.maxDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

func (r *run) stats() Stats {
	return Stats{
		SplitNodes:     r.splitNodes.Load(),
		BaseCases:      r.baseCases.Load(),
		MaxDepth:       int(r.maxDepth.Load()),
		ParallelSpawns: r.spawns.Load(),
	}
}

// tracker turns completed recursion nodes into a progress fraction.
// The work is divided into 3^ProgressDepth units; see ProgressDepth.
type tracker struct {
	cb    progress.ProgressCallback
	total int64

	mu   sync.Mutex
	done int64
}

// unitsAt[d] is the number of progress units covered by a node at depth d.
var unitsAt = func() [ProgressDepth + 1]int64 {
	var u [ProgressDepth + 1]int64
	u[ProgressDepth] = 1
	for d := ProgressDepth - 1; d >= 0; d-- {
		u[d] = 3 * u[d+1]
	}
	return u
}()

func newTracker(cb progress.ProgressCallback) *tracker {
	if cb == nil {
		return nil
	}
	return &tracker{cb: cb, total: unitsAt[0]}
}

// leaf accounts for a base case.
func (t *tracker) leaf(depth int) {
	if t == nil || depth > ProgressDepth {
		return
	}
	t.add(unitsAt[depth])
}

// split accounts for a completed split node. Only nodes at ProgressDepth
// count; shallower ones are covered by their children.
func (t *tracker) split(depth int) {
	if t == nil || depth != ProgressDepth {
		return
	}
	t.add(1)
}

func (t *tracker) add(units int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done += units
	t.cb(float64(t.done) / float64(t.total))
}
