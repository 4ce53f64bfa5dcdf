package karatsuba

// Options configures a multiplication run.
type Options struct {
	// Cutoff is the base-case threshold. Operand values below it are
	// multiplied directly. Zero selects DefaultCutoff; values are clamped
	// to [DefaultCutoff, MaxCutoff].
	Cutoff uint32
	// ParallelThreshold is the operand size in decimal digits at or above
	// which the three sub-products run concurrently. Zero or a negative
	// value disables parallel recursion.
	ParallelThreshold int
}

// normalizeOptions returns opts with defaults applied and values clamped
// to their valid ranges.
func normalizeOptions(opts Options) Options {
	switch {
	case opts.Cutoff < DefaultCutoff:
		opts.Cutoff = DefaultCutoff
	case opts.Cutoff > MaxCutoff:
		opts.Cutoff = MaxCutoff
	}
	if opts.ParallelThreshold < 0 {
		opts.ParallelThreshold = 0
	}
	return opts
}
