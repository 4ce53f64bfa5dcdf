package bigint

import "math/rand"

// Random returns a uniformly distributed value with exactly digits decimal
// digits (the leading digit is never zero). digits <= 0 yields 0.
func Random(r *rand.Rand, digits int) Int {
	if digits <= 0 {
		return Int{}
	}
	d := make([]byte, digits)
	d[0] = byte('1' + r.Intn(9))
	for i := 1; i < digits; i++ {
		d[i] = byte('0' + r.Intn(10))
	}
	return fromDigits(d)
}

// RandomBelow returns a value with at most digits decimal digits, leading
// zeros allowed, so small values and zero are produced too.
func RandomBelow(r *rand.Rand, digits int) Int {
	if digits <= 0 {
		return Int{}
	}
	d := make([]byte, digits)
	for i := range d {
		d[i] = byte('0' + r.Intn(10))
	}
	return fromDigits(d)
}
