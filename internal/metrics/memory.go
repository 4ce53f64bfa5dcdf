package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	HeapSys      uint64 // bytes obtained from OS for heap
	Sys          uint64 // total bytes obtained from OS
	TotalAlloc   uint64 // cumulative bytes allocated
	Mallocs      uint64 // cumulative heap allocations
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	HeapObjects  uint64 // number of allocated heap objects
}

// MemoryDelta is the allocation activity between two snapshots, used for
// the per-multiplication details output.
type MemoryDelta struct {
	Allocated   uint64
	Allocations uint64
	GCCycles    uint32
	PauseNs     uint64
	PeakHeap    uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		Sys:          m.Sys,
		TotalAlloc:   m.TotalAlloc,
		Mallocs:      m.Mallocs,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
	}
}

// Delta returns the activity between before and after. PeakHeap is the
// larger of the two heap readings.
func Delta(before, after MemorySnapshot) MemoryDelta {
	d := MemoryDelta{
		Allocated:   after.TotalAlloc - before.TotalAlloc,
		Allocations: after.Mallocs - before.Mallocs,
		GCCycles:    after.NumGC - before.NumGC,
		PauseNs:     after.PauseTotalNs - before.PauseTotalNs,
		PeakHeap:    max(before.HeapAlloc, after.HeapAlloc),
	}
	return d
}
