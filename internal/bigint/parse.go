package bigint

// Parse converts a decimal literal to an Int.
//
// The accepted syntax is an optional sign followed by one or more decimal
// digits. Underscores may separate digits, as in Go integer literals.
// Leading zeros are allowed and dropped. Surrounding whitespace is not
// accepted; callers reading user input trim it first.
//
// Malformed input yields a *LiteralError wrapping ErrInvalidLiteral. A
// negative magnitude yields a *LiteralError wrapping ErrUnsupportedOperand;
// "-0" is accepted and equals 0.
func Parse(s string) (Int, error) {
	if s == "" {
		return Int{}, &LiteralError{Input: s, Offset: -1, Err: ErrInvalidLiteral}
	}

	start, neg := 0, false
	switch s[0] {
	case '+':
		start = 1
	case '-':
		start, neg = 1, true
	}
	if start == len(s) {
		return Int{}, invalidAt(s, start)
	}

	digits := make([]byte, 0, len(s)-start)
	prevDigit := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case '0' <= c && c <= '9':
			digits = append(digits, c)
			prevDigit = true
		case c == '_':
			if !prevDigit || i+1 == len(s) {
				return Int{}, invalidAt(s, i)
			}
			prevDigit = false
		default:
			return Int{}, invalidAt(s, i)
		}
	}

	z := fromDigits(digits)
	if neg && !z.IsZero() {
		return Int{}, &LiteralError{Input: s, Offset: 0, Err: ErrUnsupportedOperand}
	}
	return z, nil
}

// MustParse is like Parse but panics on error. It is intended for
// constants in tests and examples.
func MustParse(s string) Int {
	z, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return z
}

// fromDigits builds an Int from ASCII decimal digits, most significant
// first.
func fromDigits(d []byte) Int {
	i := 0
	for i < len(d) && d[i] == '0' {
		i++
	}
	d = d[i:]
	if len(d) == 0 {
		return Int{}
	}

	limbs := make([]uint32, (len(d)+limbDigits-1)/limbDigits)
	end := len(d)
	for k := range limbs {
		start := max(end-limbDigits, 0)
		var w uint32
		for _, c := range d[start:end] {
			w = w*10 + uint32(c-'0')
		}
		limbs[k] = w
		end = start
	}
	return Int{limbs: limbs}
}
