package bigint

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the constructors. Test for them with errors.Is.
var (
	// ErrInvalidLiteral reports text that is not a decimal integer literal.
	ErrInvalidLiteral = errors.New("invalid integer literal")
	// ErrUnsupportedOperand reports a negative value. Int only represents
	// non-negative integers.
	ErrUnsupportedOperand = errors.New("unsupported operand: negative values are not supported")
)

// maxQuotedInput bounds how much of a rejected literal is echoed back in
// error messages.
const maxQuotedInput = 40

// LiteralError records a failed conversion of text to an Int.
type LiteralError struct {
	// Input is the text that failed to convert.
	Input string
	// Offset is the byte offset of the first offending character, or -1
	// when the whole input is at fault (for example an empty string).
	Offset int
	// Err is ErrInvalidLiteral or ErrUnsupportedOperand.
	Err error
}

func (e *LiteralError) Error() string {
	in := e.Input
	if len(in) > maxQuotedInput {
		in = in[:maxQuotedInput] + "..."
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("bigint: parsing %q: %v at offset %d", in, e.Err, e.Offset)
	}
	return fmt.Sprintf("bigint: parsing %q: %v", in, e.Err)
}

func (e *LiteralError) Unwrap() error { return e.Err }

func invalidAt(s string, offset int) error {
	return &LiteralError{Input: s, Offset: offset, Err: ErrInvalidLiteral}
}
