// This file generates the candidate thresholds benchmarked by calibration.

package calibration

import (
	"runtime"

	"github.com/agbru/karacalc/internal/config"
)

// ─────────────────────────────────────────────────────────────────────────────
// Adaptive Parallel Threshold Generation
// ─────────────────────────────────────────────────────────────────────────────

// GenerateParallelThresholds returns the parallel thresholds, in digits,
// to benchmark on this machine. 0 stands for sequential recursion and is
// always first. More cores make smaller sub-products worth a goroutine,
// so lower thresholds are added as the core count grows.
func GenerateParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	thresholds := []int{0}

	switch {
	case numCPU == 1:
		return thresholds
	case numCPU <= 4:
		thresholds = append(thresholds, 1024, 2048, 4096, 8192)
	case numCPU <= 8:
		thresholds = append(thresholds, 512, 1024, 2048, 4096, 8192)
	case numCPU <= 16:
		thresholds = append(thresholds, 256, 512, 1024, 2048, 4096, 8192)
	default:
		thresholds = append(thresholds, 128, 256, 512, 1024, 2048, 4096, 8192)
	}

	return thresholds
}

// GenerateQuickParallelThresholds returns a reduced set for
// auto-calibration at startup.
func GenerateQuickParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		return []int{0}
	case numCPU <= 4:
		return []int{0, 2048, 4096}
	case numCPU <= 8:
		return []int{0, 1024, 2048, 4096}
	default:
		return []int{0, 512, 1024, 2048, 4096}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Cutoff Generation
// ─────────────────────────────────────────────────────────────────────────────

// GenerateCutoffs returns the base-case thresholds to benchmark, from the
// textbook single-digit cutoff to a full limb.
func GenerateCutoffs() []uint32 {
	return []uint32{10, 100, 10_000, 1_000_000, 1_000_000_000}
}

// GenerateQuickCutoffs returns a reduced set for auto-calibration.
func GenerateQuickCutoffs() []uint32 {
	return []uint32{10, 1_000_000, 1_000_000_000}
}

// EstimateOptimalParallelThreshold delegates to config.EstimateOptimalParallelThreshold.
func EstimateOptimalParallelThreshold() int { return config.EstimateOptimalParallelThreshold() }
