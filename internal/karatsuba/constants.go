package karatsuba

// ─────────────────────────────────────────────────────────────────────────────
// Recursion Tuning Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultCutoff is the base-case threshold of the recursion: when either
	// operand is below it the product is computed directly.
	//
	// 10 reproduces the textbook single-digit base case. It is also the
	// lowest accepted value: with both operands >= 10 each has at least two
	// digits, so the split point is >= 1 and the recursion shrinks.
	DefaultCutoff = 10

	// MaxCutoff is the largest accepted cutoff. Operands below it fit a
	// single limb and are multiplied in one linear pass.
	MaxCutoff = 1_000_000_000

	// DefaultParallelThreshold is the operand size, in decimal digits, at
	// which the three sub-products are computed concurrently. Below it the
	// goroutine overhead outweighs the gain.
	DefaultParallelThreshold = 4096

	// CalibrationDigits is the operand size used by calibration runs.
	CalibrationDigits = 20_000
)

// ─────────────────────────────────────────────────────────────────────────────
// Progress Reporting Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// ProgressDepth is the recursion depth at which progress is accounted.
	// A run is divided into 3^ProgressDepth equal units: a node at depth
	// ProgressDepth counts as one unit when its subtree completes, and a
	// base case reached earlier accounts for all the units below it.
	ProgressDepth = 4
)
