package karatsuba

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/progress"
)

type goldenCase struct {
	Name    string     `json:"name"`
	X       bigint.Int `json:"x"`
	Y       bigint.Int `json:"y"`
	Product bigint.Int `json:"product"`
}

func loadGolden(t *testing.T) []goldenCase {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "golden.json"))
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}
	var file struct {
		Version int          `json:"version"`
		Cases   []goldenCase `json:"cases"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("decoding golden file: %v", err)
	}
	if file.Version != 1 || len(file.Cases) == 0 {
		t.Fatalf("unexpected golden file: version %d, %d cases", file.Version, len(file.Cases))
	}
	return file.Cases
}

// TestGolden runs every registered calculator on the golden vectors.
func TestGolden(t *testing.T) {
	t.Parallel()
	cases := loadGolden(t)

	for name, calc := range NewDefaultFactory().GetAll() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, c := range cases {
				got, err := calc.Calculate(context.Background(), nil, 0, c.X, c.Y, Options{ParallelThreshold: 64})
				if err != nil {
					t.Fatalf("%s: %v", c.Name, err)
				}
				if !got.Equal(c.Product) {
					t.Errorf("%s: got %s, want %s", c.Name, got, c.Product)
				}
			}
		})
	}

	t.Run("package Multiply", func(t *testing.T) {
		t.Parallel()
		for _, c := range cases {
			if got := Multiply(c.X, c.Y); !got.Equal(c.Product) {
				t.Errorf("%s: got %s, want %s", c.Name, got, c.Product)
			}
		}
	})
}

func TestFactory(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()

	names := f.List()
	for _, want := range []string{"karatsuba", "mathbig", "schoolbook"} {
		if !slices.Contains(names, want) {
			t.Errorf("List() = %v, missing %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("List() not sorted: %v", names)
	}

	a, err := f.Get("Karatsuba")
	if err != nil {
		t.Fatalf("Get is not case-insensitive: %v", err)
	}
	b, _ := f.Get("karatsuba")
	if a != b {
		t.Error("Get should cache calculators")
	}

	_, err = f.Get("toom-cook")
	if err == nil || !strings.Contains(err.Error(), "available") {
		t.Errorf("Get(unknown) error = %v", err)
	}

	if len(f.GetAll()) != len(names) {
		t.Errorf("GetAll() has %d entries, want %d", len(f.GetAll()), len(names))
	}
}

type fixedCore struct{ z bigint.Int }

func (fixedCore) Name() string { return "fixed" }

func (c fixedCore) CalculateCore(context.Context, progress.ProgressCallback, bigint.Int, bigint.Int, Options) (bigint.Int, error) {
	return c.z, nil
}

func TestFactory_Register(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()

	if err := f.Register("all", fixedCore{}); err == nil {
		t.Error("registering the reserved name \"all\" should fail")
	}
	if err := f.Register("  ", fixedCore{}); err == nil {
		t.Error("registering an empty name should fail")
	}
	if err := f.Register("fixed", nil); err == nil {
		t.Error("registering a nil core should fail")
	}

	if err := f.Register("fixed", fixedCore{z: bigint.FromUint64(42)}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	calc, err := f.Get("fixed")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	z, err := calc.Calculate(context.Background(), nil, 0, bigint.One, bigint.One, Options{})
	if err != nil || z.String() != "42" {
		t.Errorf("custom calculator = %s, %v", z, err)
	}

	// Replacing a core invalidates the cached calculator.
	if err := f.Register("fixed", fixedCore{z: bigint.FromUint64(7)}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	calc, _ = f.Get("fixed")
	if z, _ := calc.Calculate(context.Background(), nil, 0, bigint.One, bigint.One, Options{}); z.String() != "7" {
		t.Errorf("replaced calculator = %s, want 7", z)
	}
}

func TestGlobalFactory_Singleton(t *testing.T) {
	t.Parallel()
	if GlobalFactory() != GlobalFactory() {
		t.Error("GlobalFactory must return the same instance")
	}
}

func TestCalculator_ProgressChannel(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(11))
	x, y := bigint.Random(r, 400), bigint.Random(r, 400)

	for name, calc := range NewDefaultFactory().GetAll() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ch := make(chan progress.ProgressUpdate, 256)
			if _, err := calc.Calculate(context.Background(), ch, 3, x, y, Options{}); err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			close(ch)

			var last progress.ProgressUpdate
			n := 0
			for u := range ch {
				if u.CalculatorIndex != 3 {
					t.Errorf("update tagged with index %d, want 3", u.CalculatorIndex)
				}
				last = u
				n++
			}
			if n == 0 || last.Value != 1 {
				t.Errorf("received %d updates, last %v; want final 1", n, last.Value)
			}
		})
	}
}

func TestCalculator_StatsOnlyForKaratsuba(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()
	x, y := bigint.MustParse(regressionX), bigint.MustParse(regressionY)

	for _, tc := range []struct {
		name      string
		wantStats bool
	}{
		{"karatsuba", true},
		{"schoolbook", false},
		{"mathbig", false},
	} {
		calc, err := f.Get(tc.name)
		if err != nil {
			t.Fatalf("Get(%s): %v", tc.name, err)
		}
		sc, ok := calc.(StatsCalculator)
		if !ok {
			t.Fatalf("%s does not implement StatsCalculator", tc.name)
		}
		_, stats, err := sc.CalculateWithStats(context.Background(), nil, 0, x, y, Options{})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := stats.SplitNodes > 0; got != tc.wantStats {
			t.Errorf("%s: stats %+v, want populated=%v", tc.name, stats, tc.wantStats)
		}
	}
}

func TestCalculator_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x, y := bigint.MustParse(regressionX), bigint.MustParse(regressionY)

	for name, calc := range NewDefaultFactory().GetAll() {
		_, err := calc.Calculate(ctx, nil, 0, x, y, Options{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: error = %v, want context.Canceled", name, err)
			continue
		}
		if !strings.HasPrefix(err.Error(), calc.Name()+":") {
			t.Errorf("%s: error %q not prefixed with calculator name", name, err)
		}
	}
}

func TestSchoolbook_DeadlineDuringRun(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(11))
	x, y := bigint.Random(r, 200_000), bigint.Random(r, 200_000)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := NewCalculator(schoolbookCore{}).Calculate(ctx, nil, 0, x, y, Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("schoolbook returned %v after its deadline", elapsed)
	}
}

func TestCalculateWithObservers_ConcurrentSubjects(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(karatsubaCore{})
	x, y := bigint.MustParse(regressionX), bigint.MustParse(regressionY)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			subject := progress.NewProgressSubject()
			subject.Register(progress.NewNoOpObserver())
			z, err := calc.CalculateWithObservers(context.Background(), subject, idx, x, y, Options{})
			if err != nil || z.String() != regressionProduct {
				t.Errorf("calculator %d: %s, %v", idx, z, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewCalculator_NilPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("NewCalculator(nil) did not panic")
		}
	}()
	NewCalculator(nil)
}

func FuzzMultiply(f *testing.F) {
	f.Add("7", regressionX)
	f.Add(regressionX, regressionY)
	f.Add("0", "1")
	f.Add("99", "99")

	f.Fuzz(func(t *testing.T, xs, ys string) {
		x, errX := bigint.Parse(xs)
		y, errY := bigint.Parse(ys)
		if errX != nil || errY != nil {
			return
		}
		if x.DigitLength() > 2000 || y.DigitLength() > 2000 {
			return
		}
		got := Multiply(x, y)
		if want := bigint.MulSchoolbook(x, y); !got.Equal(want) {
			t.Fatalf("Multiply(%s, %s) = %s, want %s", x, y, got, want)
		}
	})
}
