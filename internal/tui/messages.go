package tui

import (
	"time"

	"github.com/agbru/karacalc/internal/orchestration"
)

// ProgressMsg carries one progress update of a running calculation.
// CalculatorIndex is the position in the race, not in the algorithm list.
type ProgressMsg struct {
	Generation      uint64
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	// Failed is set once the calculator of this lane returned an error.
	Failed bool
}

// CalculationDoneMsg reports the end of a run. Lanes maps each result to
// its algorithm row.
type CalculationDoneMsg struct {
	Generation uint64
	Lanes      []int
	Results    []orchestration.CalculationResult
	Elapsed    time.Duration
}

// TickMsg drives the periodic resource sampling.
type TickMsg time.Time

// MemStatsMsg is a Go runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapSys      uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg is a host CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}
