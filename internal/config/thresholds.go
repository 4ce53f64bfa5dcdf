package config

import "runtime"

// Parallel threshold resolution chain (highest priority first):
//   1. -parallel-threshold
//   2. KARACALC_PARALLEL_THRESHOLD
//   3. Cached calibration profile (~/.karacalc_calibration.json)
//   4. Adaptive hardware estimation (this file)

// ApplyAdaptiveThresholds fills a zero (adaptive) parallel threshold with
// an estimate for this machine. Explicit values are preserved.
func ApplyAdaptiveThresholds(cfg AppConfig) AppConfig {
	if cfg.ParallelThreshold == 0 {
		cfg.ParallelThreshold = EstimateOptimalParallelThreshold()
	}
	return cfg
}

// EstimateOptimalParallelThreshold estimates, without benchmarking, the
// operand size in digits from which concurrent sub-products pay off.
func EstimateOptimalParallelThreshold() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		return ParallelDisabled
	case numCPU <= 2:
		return 8192
	case numCPU <= 4:
		return 4096
	case numCPU <= 8:
		return 2048
	case numCPU <= 16:
		return 1024
	default:
		return 512
	}
}
