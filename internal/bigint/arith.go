package bigint

import "context"

// Add returns x + y.
func Add(x, y Int) Int {
	a, b := x.limbs, y.limbs
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return Int{limbs: clone(a)}
	}

	z := make([]uint32, len(a)+1)
	var carry uint32
	for i := range a {
		s := a[i] + carry
		if i < len(b) {
			s += b[i]
		}
		// a[i], b[i] < 10^9, so s < 2*10^9+1 fits a uint32.
		if s >= limbBase {
			s -= limbBase
			carry = 1
		} else {
			carry = 0
		}
		z[i] = s
	}
	z[len(a)] = carry
	return Int{limbs: norm(z)}
}

// Sub returns x - y. The result of subtracting a larger value is not
// representable, so Sub panics if x < y.
func Sub(x, y Int) Int {
	if Cmp(x, y) < 0 {
		panic("bigint: subtraction underflow")
	}
	a, b := x.limbs, y.limbs
	z := make([]uint32, len(a))
	var borrow uint32
	for i := range a {
		sub := borrow
		if i < len(b) {
			sub += b[i]
		}
		if a[i] >= sub {
			z[i] = a[i] - sub
			borrow = 0
		} else {
			z[i] = a[i] + limbBase - sub
			borrow = 1
		}
	}
	return Int{limbs: norm(z)}
}

// Scale returns x * 10^k. It panics if k is negative.
func (x Int) Scale(k int) Int {
	if k < 0 {
		panic("bigint: negative scale")
	}
	if x.IsZero() || k == 0 {
		return x
	}
	q, r := k/limbDigits, k%limbDigits

	src := x.limbs
	if r > 0 {
		src = mulWord(src, pow10[r])
	}
	z := make([]uint32, q+len(src))
	copy(z[q:], src)
	return Int{limbs: z}
}

// SplitAt divides x at the decimal digit boundary m and returns
// high = x div 10^m and low = x mod 10^m, so that x == high*10^m + low and
// 0 <= low < 10^m. For m <= 0 the whole value is high.
func (x Int) SplitAt(m int) (high, low Int) {
	if m <= 0 {
		return x, Int{}
	}
	if m >= x.DigitLength() {
		return Int{}, x
	}
	q, r := m/limbDigits, m%limbDigits
	n := len(x.limbs)

	lo := make([]uint32, q, q+1)
	copy(lo, x.limbs[:q])
	if r > 0 {
		lo = append(lo, x.limbs[q]%pow10[r])
	}

	hi := make([]uint32, n-q)
	if r == 0 {
		copy(hi, x.limbs[q:])
	} else {
		div, mul := pow10[r], pow10[limbDigits-r]
		for i := range hi {
			w := x.limbs[q+i] / div
			if q+i+1 < n {
				w += (x.limbs[q+i+1] % div) * mul
			}
			hi[i] = w
		}
	}
	return Int{limbs: norm(hi)}, Int{limbs: norm(lo)}
}

// MulSmall multiplies directly, without recursion. It is the base case of
// the Karatsuba recursion and is exact for operands of any width: when
// one operand fits a single limb the product is a single linear pass,
// otherwise it falls back to MulSchoolbook.
func MulSmall(x, y Int) Int {
	switch {
	case x.IsZero() || y.IsZero():
		return Int{}
	case y.FitsLimb():
		return Int{limbs: mulWord(x.limbs, y.limbs[0])}
	case x.FitsLimb():
		return Int{limbs: mulWord(y.limbs, x.limbs[0])}
	}
	return MulSchoolbook(x, y)
}

// mulWord returns a * w for w < 10^9 as a fresh normalized limb slice.
func mulWord(a []uint32, w uint32) []uint32 {
	if w == 0 || len(a) == 0 {
		return nil
	}
	z := make([]uint32, len(a)+1)
	var carry uint64
	for i, l := range a {
		p := uint64(l)*uint64(w) + carry
		z[i] = uint32(p % limbBase)
		carry = p / limbBase
	}
	z[len(a)] = uint32(carry)
	return norm(z)
}

// schoolbookCheckRows is the number of outer rows MulSchoolbookContext
// multiplies between two context checks.
const schoolbookCheckRows = 256

// MulSchoolbook returns x * y computed with the quadratic long
// multiplication algorithm. It is the reference the Karatsuba engine is
// checked against.
func MulSchoolbook(x, y Int) Int {
	z, _ := MulSchoolbookContext(context.Background(), x, y)
	return z
}

// MulSchoolbookContext is MulSchoolbook with cancellation: ctx is checked
// every schoolbookCheckRows limbs of x, and its error is returned as is.
func MulSchoolbookContext(ctx context.Context, x, y Int) (Int, error) {
	a, b := x.limbs, y.limbs
	if len(a) == 0 || len(b) == 0 {
		return Int{}, ctx.Err()
	}
	z := make([]uint32, len(a)+len(b))
	for i, ai := range a {
		if i%schoolbookCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return Int{}, err
			}
		}
		if ai == 0 {
			continue
		}
		var carry uint64
		for j, bj := range b {
			// Bounded by (10^9-1) + (10^9-1)^2 + carry < 2^64.
			t := uint64(z[i+j]) + uint64(ai)*uint64(bj) + carry
			z[i+j] = uint32(t % limbBase)
			carry = t / limbBase
		}
		for k := i + len(b); carry > 0; k++ {
			t := uint64(z[k]) + carry
			z[k] = uint32(t % limbBase)
			carry = t / limbBase
		}
	}
	return Int{limbs: norm(z)}, nil
}

func clone(a []uint32) []uint32 {
	if len(a) == 0 {
		return nil
	}
	z := make([]uint32, len(a))
	copy(z, a)
	return z
}
