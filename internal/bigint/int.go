package bigint

import (
	"math/big"
	"math/bits"
	"strconv"
)

const (
	// limbDigits is the number of decimal digits held by one limb.
	limbDigits = 9
	// limbBase is the radix of the limb representation, 10^limbDigits.
	limbBase = 1_000_000_000
)

// pow10 holds 10^i for every i that fits a limb.
var pow10 = [limbDigits + 1]uint32{
	1, 10, 100, 1_000, 10_000, 100_000,
	1_000_000, 10_000_000, 100_000_000, 1_000_000_000,
}

// Int is an immutable arbitrary-precision non-negative integer.
// The zero value is 0 and is ready to use.
type Int struct {
	// limbs holds base-10^9 digits, least significant first, with no
	// high zero limbs. Zero is the empty slice.
	limbs []uint32
}

// Zero and One are convenience values.
var (
	Zero = Int{}
	One  = FromUint64(1)
)

// FromUint64 returns the Int with value v.
func FromUint64(v uint64) Int {
	if v == 0 {
		return Int{}
	}
	limbs := make([]uint32, 0, 3)
	for v > 0 {
		limbs = append(limbs, uint32(v%limbBase))
		v /= limbBase
	}
	return Int{limbs: limbs}
}

// FromInt64 returns the Int with value v. Negative values fail with
// ErrUnsupportedOperand.
func FromInt64(v int64) (Int, error) {
	if v < 0 {
		return Int{}, &LiteralError{Input: strconv.FormatInt(v, 10), Offset: 0, Err: ErrUnsupportedOperand}
	}
	return FromUint64(uint64(v)), nil
}

// FromBig converts a math/big integer. Negative values fail with
// ErrUnsupportedOperand; nil is treated as 0.
func FromBig(b *big.Int) (Int, error) {
	if b == nil {
		return Int{}, nil
	}
	if b.Sign() < 0 {
		return Int{}, &LiteralError{Input: b.String(), Offset: 0, Err: ErrUnsupportedOperand}
	}
	return Parse(b.String())
}

// Pow10 returns 10^k. It panics if k is negative.
func Pow10(k int) Int {
	return One.Scale(k)
}

// IsZero reports whether x == 0.
func (x Int) IsZero() bool { return len(x.limbs) == 0 }

// IsSmall reports whether x < 10, the default base-case threshold of the
// Karatsuba recursion.
func (x Int) IsSmall() bool { return x.LessThan(10) }

// LessThan reports whether x < w.
func (x Int) LessThan(w uint32) bool {
	v, ok := x.Uint64()
	return ok && v < uint64(w)
}

// FitsLimb reports whether x < 10^9, i.e. whether x can be used as the
// single-word factor of a direct multiplication.
func (x Int) FitsLimb() bool { return len(x.limbs) <= 1 }

// DigitLength returns the number of decimal digits of the canonical
// representation of x. Zero has one digit.
func (x Int) DigitLength() int {
	n := len(x.limbs)
	if n == 0 {
		return 1
	}
	return (n-1)*limbDigits + wordDigits(x.limbs[n-1])
}

// wordDigits returns the number of decimal digits of a non-zero limb.
func wordDigits(w uint32) int {
	d := 1
	for d < limbDigits && w >= pow10[d] {
		d++
	}
	return d
}

// Uint64 returns the value of x and true if it fits in a uint64.
func (x Int) Uint64() (uint64, bool) {
	var v uint64
	for i := len(x.limbs) - 1; i >= 0; i-- {
		hi, lo := bits.Mul64(v, limbBase)
		if hi != 0 {
			return 0, false
		}
		lo, carry := bits.Add64(lo, uint64(x.limbs[i]), 0)
		if carry != 0 {
			return 0, false
		}
		v = lo
	}
	return v, true
}

// Big returns x as a newly allocated math/big integer.
func (x Int) Big() *big.Int {
	z := new(big.Int)
	if x.IsZero() {
		return z
	}
	z.SetString(x.String(), 10)
	return z
}

// Cmp compares x and y and returns -1, 0 or +1.
func Cmp(x, y Int) int {
	if len(x.limbs) != len(y.limbs) {
		if len(x.limbs) < len(y.limbs) {
			return -1
		}
		return 1
	}
	for i := len(x.limbs) - 1; i >= 0; i-- {
		switch {
		case x.limbs[i] < y.limbs[i]:
			return -1
		case x.limbs[i] > y.limbs[i]:
			return 1
		}
	}
	return 0
}

// Equal reports whether x and y have the same value.
func (x Int) Equal(y Int) bool { return Cmp(x, y) == 0 }

// String returns the canonical decimal representation of x.
func (x Int) String() string {
	return string(x.appendDecimal(nil))
}

func (x Int) appendDecimal(buf []byte) []byte {
	n := len(x.limbs)
	if n == 0 {
		return append(buf, '0')
	}
	if buf == nil {
		buf = make([]byte, 0, x.DigitLength())
	}
	buf = strconv.AppendUint(buf, uint64(x.limbs[n-1]), 10)
	var tmp [limbDigits]byte
	for i := n - 2; i >= 0; i-- {
		w := x.limbs[i]
		for j := limbDigits - 1; j >= 0; j-- {
			tmp[j] = byte('0' + w%10)
			w /= 10
		}
		buf = append(buf, tmp[:]...)
	}
	return buf
}

// MarshalText implements encoding.TextMarshaler.
func (x Int) MarshalText() ([]byte, error) {
	return x.appendDecimal(nil), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *Int) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*x = v
	return nil
}

// MarshalJSON encodes x as a JSON string so that no precision is lost in
// consumers that decode numbers as float64.
func (x Int) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, x.DigitLength()+2)
	buf = append(buf, '"')
	buf = x.appendDecimal(buf)
	return append(buf, '"'), nil
}

// UnmarshalJSON accepts a JSON string or a bare JSON number.
func (x *Int) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	return x.UnmarshalText(data)
}

// norm strips high zero limbs.
func norm(z []uint32) []uint32 {
	i := len(z)
	for i > 0 && z[i-1] == 0 {
		i--
	}
	return z[:i]
}
