package karatsuba

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/karacalc/internal/bigint"
)

const (
	regressionX       = "123456789012345678998979797979"
	regressionY       = "987654321098765432197897897897897"
	regressionProduct = "121932631137021795333590365412101381960421977229675913828950163"
)

func operands(seed int64, dx, dy int) (bigint.Int, bigint.Int) {
	r := rand.New(rand.NewSource(seed))
	return bigint.RandomBelow(r, dx), bigint.RandomBelow(r, dy)
}

func bigProduct(x, y bigint.Int) *big.Int {
	return new(big.Int).Mul(x.Big(), y.Big())
}

func TestMultiply_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x, y string
		want string
	}{
		{"demo 3x3", "123", "456", "56088"},
		{"demo 4x4", "1234", "5678", "7006652"},
		{"demo 5x5", "12345", "67890", "838102050"},
		{"demo 9x9", "123456789", "987654321", "121932631112635269"},
		{"literal regression", regressionX, regressionY, regressionProduct},
		{"base boundary", "7", regressionX, "864197523086419752992858585853"},
		{"nine times wide", "9", "99", "891"},
		{"ten is not small", "10", regressionX, regressionX + "0"},
		{"zero left", "0", regressionX, "0"},
		{"zero right", regressionY, "0", "0"},
		{"one", "1", regressionY, regressionY},
		{"two digits", "99", "99", "9801"},
		{"powers of ten", "1" + strings.Repeat("0", 40), "1" + strings.Repeat("0", 25), "1" + strings.Repeat("0", 65)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Multiply(bigint.MustParse(tt.x), bigint.MustParse(tt.y))
			if got.String() != tt.want {
				t.Errorf("Multiply(%s, %s) = %s, want %s", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestMultiply_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	properties.Property("Multiply matches math/big", prop.ForAll(
		func(seed int64, dx, dy int) bool {
			x, y := operands(seed, dx, dy)
			return Multiply(x, y).Big().Cmp(bigProduct(x, y)) == 0
		},
		gen.Int64(), gen.IntRange(0, 400), gen.IntRange(0, 400),
	))

	properties.Property("Multiply is commutative", prop.ForAll(
		func(seed int64, dx, dy int) bool {
			x, y := operands(seed, dx, dy)
			return Multiply(x, y).Equal(Multiply(y, x))
		},
		gen.Int64(), gen.IntRange(0, 200), gen.IntRange(0, 200),
	))

	properties.Property("zero and one are absorbing and neutral", prop.ForAll(
		func(seed int64, d int) bool {
			x, _ := operands(seed, d, 0)
			return Multiply(x, bigint.Zero).IsZero() &&
				Multiply(bigint.Zero, x).IsZero() &&
				Multiply(x, bigint.One).Equal(x) &&
				Multiply(bigint.One, x).Equal(x)
		},
		gen.Int64(), gen.IntRange(0, 300),
	))

	properties.Property("cross term is non-negative", prop.ForAll(
		func(seed int64, dx, dy int) bool {
			x, y := operands(seed, dx, dy)
			if x.IsSmall() || y.IsSmall() {
				return true
			}
			m := splitPoint(x, y)
			a, b := x.SplitAt(m)
			c, d := y.SplitAt(m)
			abcd := Multiply(bigint.Add(a, b), bigint.Add(c, d))
			sum := bigint.Add(Multiply(a, c), Multiply(b, d))
			return bigint.Cmp(abcd, sum) >= 0
		},
		gen.Int64(), gen.IntRange(2, 200), gen.IntRange(2, 200),
	))

	properties.Property("any cutoff gives the same product", prop.ForAll(
		func(seed int64, dx, dy int, cutoff uint32) bool {
			x, y := operands(seed, dx, dy)
			z, err := NewEngine(Options{Cutoff: cutoff}, nil).Multiply(context.Background(), x, y)
			return err == nil && z.Big().Cmp(bigProduct(x, y)) == 0
		},
		gen.Int64(), gen.IntRange(0, 300), gen.IntRange(0, 300), gen.UInt32(),
	))

	properties.TestingRun(t)
}

// TestMultiply_LargeRandom multiplies 1000-digit operands and checks the
// result against the naive algorithm.
func TestMultiply_LargeRandom(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1000-digit stress test in short mode")
	}
	t.Parallel()

	r := rand.New(rand.NewSource(20240601))
	for i := 0; i < 10; i++ {
		x, y := bigint.Random(r, 1000), bigint.Random(r, 1000)
		got := Multiply(x, y)
		want := bigint.MulSchoolbook(x, y)
		if !got.Equal(want) {
			t.Fatalf("pair %d: Karatsuba and schoolbook differ", i)
		}
		if d := got.DigitLength(); d < 1999 || d > 2000 {
			t.Errorf("pair %d: product has %d digits", i, d)
		}
	}
}

func TestEngine_OptionsNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{"zero value", Options{}, Options{Cutoff: DefaultCutoff}},
		{"below minimum", Options{Cutoff: 2}, Options{Cutoff: DefaultCutoff}},
		{"above maximum", Options{Cutoff: 4_000_000_000}, Options{Cutoff: MaxCutoff}},
		{"negative parallel", Options{Cutoff: 100, ParallelThreshold: -5}, Options{Cutoff: 100}},
		{"kept", Options{Cutoff: 1000, ParallelThreshold: 64}, Options{Cutoff: 1000, ParallelThreshold: 64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewEngine(tt.in, nil).Options(); got != tt.want {
				t.Errorf("Options() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEngine_Stats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x, y string
		want Stats
	}{
		{"base case at root", "7", "123", Stats{BaseCases: 1}},
		{"one split", "12", "34", Stats{SplitNodes: 1, BaseCases: 3, MaxDepth: 1}},
		{"carry into cross term", "99", "99", Stats{SplitNodes: 2, BaseCases: 5, MaxDepth: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, stats, err := NewEngine(Options{}, nil).MultiplyWithStats(context.Background(),
				bigint.MustParse(tt.x), bigint.MustParse(tt.y))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stats != tt.want {
				t.Errorf("stats = %+v, want %+v", stats, tt.want)
			}
		})
	}
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	x, y := bigint.Random(r, 3000), bigint.Random(r, 2500)

	seq := NewEngine(Options{}, nil)
	par := NewEngine(Options{ParallelThreshold: 100}, nil)

	want, seqStats, err := seq.MultiplyWithStats(context.Background(), x, y)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	got, parStats, err := par.MultiplyWithStats(context.Background(), x, y)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !got.Equal(want) {
		t.Fatal("parallel product differs from sequential product")
	}
	if seqStats.ParallelSpawns != 0 {
		t.Errorf("sequential run spawned %d goroutines", seqStats.ParallelSpawns)
	}
	parStats.ParallelSpawns = 0
	if parStats != seqStats {
		t.Errorf("recursion tree differs: parallel %+v, sequential %+v", parStats, seqStats)
	}
}

func TestEngine_ConcurrentUse(t *testing.T) {
	t.Parallel()

	engine := NewEngine(Options{Cutoff: 1000, ParallelThreshold: 200}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			x, y := operands(seed, 800, 600)
			z, err := engine.Multiply(context.Background(), x, y)
			if err != nil {
				t.Errorf("seed %d: %v", seed, err)
				return
			}
			if z.Big().Cmp(bigProduct(x, y)) != 0 {
				t.Errorf("seed %d: wrong product", seed)
			}
		}(int64(i))
	}
	wg.Wait()
}

func TestEngine_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x, y := bigint.MustParse(regressionX), bigint.MustParse(regressionY)
	_, err := NewEngine(Options{}, nil).Multiply(ctx, x, y)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if !strings.Contains(err.Error(), "depth 0") {
		t.Errorf("error %q does not name the depth", err)
	}

	// A base case never splits, so it completes even on a done context.
	z, err := NewEngine(Options{}, nil).Multiply(ctx, bigint.FromUint64(7), y)
	if err != nil || z.String() != "6913580247691358025385285285285279" {
		t.Errorf("base case on canceled context = %s, %v", z, err)
	}
}

func TestEngine_Progress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		x, y bigint.Int
	}{
		{"base case", Options{}, bigint.FromUint64(3), bigint.MustParse(regressionX)},
		{"shallow", Options{}, bigint.MustParse("1234"), bigint.MustParse("5678")},
		{"regression pair", Options{}, bigint.MustParse(regressionX), bigint.MustParse(regressionY)},
		{"deep parallel", Options{ParallelThreshold: 50}, bigint.Random(rand.New(rand.NewSource(3)), 1500), bigint.Random(rand.New(rand.NewSource(4)), 1500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var mu sync.Mutex
			var values []float64
			engine := NewEngine(tt.opts, func(p float64) {
				mu.Lock()
				values = append(values, p)
				mu.Unlock()
			})

			if _, err := engine.Multiply(context.Background(), tt.x, tt.y); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(values) == 0 {
				t.Fatal("no progress reported")
			}
			for i, v := range values {
				if v < 0 || v > 1 {
					t.Fatalf("value %d out of range: %v", i, v)
				}
				if i > 0 && v < values[i-1] {
					t.Fatalf("progress decreased at %d: %v -> %v", i, values[i-1], v)
				}
			}
			if last := values[len(values)-1]; last != 1 {
				t.Errorf("final progress = %v, want 1", last)
			}
		})
	}
}

func TestTracker_UnitsCoverTree(t *testing.T) {
	t.Parallel()
	if unitsAt[0] != 81 || unitsAt[ProgressDepth] != 1 {
		t.Errorf("unitsAt = %v", unitsAt)
	}
	var nilTracker *tracker
	nilTracker.leaf(0)
	nilTracker.split(ProgressDepth)
}

func TestSemaphoreCapacity(t *testing.T) {
	t.Parallel()
	sem := getTaskSemaphore()
	if cap(sem) < 2 {
		t.Errorf("semaphore capacity = %d, want >= 2", cap(sem))
	}
	if getTaskSemaphore() != sem {
		t.Error("semaphore is not a singleton")
	}
}

// Not parallel: it holds every token of the shared semaphore.
func TestExecuteParallel_StopsAfterInlineFailure(t *testing.T) {
	sem := getTaskSemaphore()
	held := 0
	for len(sem) < cap(sem) {
		sem <- struct{}{}
		held++
	}
	defer func() {
		for range held {
			<-sem
		}
	}()

	boom := errors.New("boom")
	var ran []int
	r := &run{ctx: context.Background()}
	err := r.executeParallel([3]func() error{
		func() error { ran = append(ran, 0); return boom },
		func() error { ran = append(ran, 1); return nil },
		func() error { ran = append(ran, 2); return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if len(ran) != 1 {
		t.Errorf("tasks run = %v, want only the failing one", ran)
	}
	if r.spawns.Load() != 0 {
		t.Errorf("spawned %d goroutines with no free token", r.spawns.Load())
	}
}

func TestExecuteParallel_CanceledRunSpawnsNothing(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	task := func() error { calls.Add(1); return nil }
	r := &run{ctx: ctx}
	if err := r.executeParallel([3]func() error{task, task, task}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 || r.spawns.Load() != 0 {
		t.Errorf("canceled run started %d tasks, %d goroutines", calls.Load(), r.spawns.Load())
	}
}

func BenchmarkMultiply(b *testing.B) {
	for _, digits := range []int{100, 1000, 5000} {
		r := rand.New(rand.NewSource(1))
		x, y := bigint.Random(r, digits), bigint.Random(r, digits)
		b.Run(fmt.Sprintf("%d-digits", digits), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Multiply(x, y)
			}
		})
	}
}
