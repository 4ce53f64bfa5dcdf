package calibration

import (
	"runtime"
	"slices"
	"testing"

	"github.com/agbru/karacalc/internal/config"
	"github.com/agbru/karacalc/internal/karatsuba"
)

func TestGenerateParallelThresholds(t *testing.T) {
	t.Parallel()
	thresholds := GenerateParallelThresholds()

	if len(thresholds) == 0 || thresholds[0] != 0 {
		t.Fatal("expected thresholds to start with 0 (sequential)")
	}
	if !slices.IsSorted(thresholds) {
		t.Errorf("thresholds should be ascending: %v", thresholds)
	}

	numCPU := runtime.NumCPU()
	switch {
	case numCPU == 1:
		if len(thresholds) != 1 {
			t.Errorf("for 1 CPU, expected 1 threshold, got %d", len(thresholds))
		}
	case numCPU <= 4:
		for _, exp := range []int{0, 1024, 2048, 4096, 8192} {
			if !slices.Contains(thresholds, exp) {
				t.Errorf("expected threshold %d not found in %v", exp, thresholds)
			}
		}
	default:
		if len(thresholds) < 6 {
			t.Errorf("for %d CPUs, expected at least 6 thresholds, got %d", numCPU, len(thresholds))
		}
	}

	t.Logf("Generated %d parallel thresholds for %d CPUs: %v", len(thresholds), numCPU, thresholds)
}

func TestGenerateQuickParallelThresholds(t *testing.T) {
	t.Parallel()
	thresholds := GenerateQuickParallelThresholds()

	if len(thresholds) > len(GenerateParallelThresholds()) {
		t.Error("quick thresholds should not be longer than full thresholds")
	}

	numCPU := runtime.NumCPU()
	switch {
	case numCPU == 1:
		if len(thresholds) != 1 || thresholds[0] != 0 {
			t.Errorf("for 1 CPU, expected [0], got %v", thresholds)
		}
	case numCPU <= 4:
		if len(thresholds) != 3 {
			t.Errorf("for %d CPUs, expected 3 thresholds, got %d", numCPU, len(thresholds))
		}
	case numCPU <= 8:
		if len(thresholds) != 4 {
			t.Errorf("for %d CPUs, expected 4 thresholds, got %d", numCPU, len(thresholds))
		}
	default:
		if len(thresholds) != 5 {
			t.Errorf("for %d CPUs, expected 5 thresholds, got %d", numCPU, len(thresholds))
		}
	}
}

func TestGenerateCutoffs(t *testing.T) {
	t.Parallel()
	for name, cutoffs := range map[string][]uint32{"full": GenerateCutoffs(), "quick": GenerateQuickCutoffs()} {
		if len(cutoffs) < 2 {
			t.Errorf("%s: expected several cutoffs, got %v", name, cutoffs)
		}
		for _, c := range cutoffs {
			if c < karatsuba.DefaultCutoff || c > karatsuba.MaxCutoff {
				t.Errorf("%s: cutoff %d outside [%d, %d]", name, c, karatsuba.DefaultCutoff, karatsuba.MaxCutoff)
			}
		}
	}
}

func TestEstimateOptimalParallelThreshold(t *testing.T) {
	t.Parallel()
	threshold := EstimateOptimalParallelThreshold()

	if runtime.NumCPU() == 1 {
		if threshold != config.ParallelDisabled {
			t.Errorf("single CPU should disable parallelism, got %d", threshold)
		}
		return
	}
	if threshold <= 0 || threshold > 65536 {
		t.Errorf("estimated parallel threshold out of range: %d", threshold)
	}
}

func BenchmarkGenerateParallelThresholds(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = GenerateParallelThresholds()
	}
}
