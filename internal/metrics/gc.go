package metrics

import (
	"math"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// GCMode controls the garbage collector during a multiplication.
type GCMode string

const (
	GCModeAuto       GCMode = "auto"
	GCModeAggressive GCMode = "aggressive"
	GCModeDisabled   GCMode = "disabled"
)

// GCAutoDigits is the operand size from which GCModeAuto suspends the
// collector.
const GCAutoDigits = 1_000_000

// gcMemoryLimitFactor bounds the heap while the collector is off, as a
// multiple of the memory obtained from the OS at Begin.
const gcMemoryLimitFactor = 3

// GCController suspends the garbage collector around a large
// multiplication and restores it afterwards. The recursion allocates many
// short-lived intermediate products; collecting them mid-run costs more
// than it frees.
type GCController struct {
	mode              GCMode
	originalGCPercent int
	active            bool
	logger            zerolog.Logger
	start             MemorySnapshot
	end               MemorySnapshot
}

// NewGCController creates a controller for mode and an operand of digits
// decimal digits. Unknown modes behave like GCModeDisabled.
func NewGCController(mode string, digits int) *GCController {
	gc := &GCController{mode: GCMode(mode), logger: zerolog.Nop()}
	switch gc.mode {
	case GCModeAggressive:
		gc.active = true
	case GCModeAuto:
		gc.active = digits >= GCAutoDigits
	}
	return gc
}

// SetLogger configures the logger for GC control events.
func (gc *GCController) SetLogger(l zerolog.Logger) {
	gc.logger = l
}

// Active reports whether Begin will suspend the collector.
func (gc *GCController) Active() bool { return gc.active }

// Begin disables the collector if the controller is active. A soft memory
// limit keeps the heap from growing without bound meanwhile.
func (gc *GCController) Begin() {
	if !gc.active {
		return
	}
	gc.start = NewMemoryCollector().Snapshot()
	gc.originalGCPercent = debug.SetGCPercent(-1)
	if limit := int64(gc.start.Sys) * gcMemoryLimitFactor; limit > 0 {
		debug.SetMemoryLimit(limit)
	}
	gc.logger.Debug().
		Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.start.HeapAlloc).
		Msg("gc disabled")
}

// End restores the collector settings and triggers a collection.
func (gc *GCController) End() {
	if !gc.active {
		return
	}
	gc.end = NewMemoryCollector().Snapshot()
	debug.SetGCPercent(gc.originalGCPercent)
	debug.SetMemoryLimit(math.MaxInt64)
	runtime.GC()
	d := gc.Delta()
	gc.logger.Debug().
		Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.end.HeapAlloc).
		Uint64("total_alloc_bytes", d.Allocated).
		Uint32("gc_cycles", d.GCCycles).
		Msg("gc re-enabled")
}

// Delta returns the allocation activity between Begin and End. It is the
// zero value when the controller was inactive.
func (gc *GCController) Delta() MemoryDelta {
	if !gc.active {
		return MemoryDelta{}
	}
	return Delta(gc.start, gc.end)
}
