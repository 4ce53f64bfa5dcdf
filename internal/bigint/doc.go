// Package bigint implements the immutable arbitrary-precision non-negative
// integer used by the Karatsuba engine.
//
// Values are stored as little-endian limbs in radix 10^9 so that every
// decimal-digit operation the engine needs (digit length, splitting at a
// digit boundary, scaling by a power of ten) is a limb shuffle plus at most
// one small division, with no conversion between binary and decimal.
//
// An Int is never modified after construction. Every operation allocates
// its result, so values can be shared freely between goroutines.
package bigint
