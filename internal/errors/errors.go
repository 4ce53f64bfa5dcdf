package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Application exit codes, returned to the OS by the karacalc binary.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a product mismatch between algorithms.
	ExitErrorConfig   = 4   // Indicates a configuration or input error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as an invalid
// flag value.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError records the failure of one multiplication algorithm
// while preserving the original cause.
type CalculationError struct {
	// Algorithm is the name of the calculator that failed. It may be empty.
	Algorithm string
	// Cause is the underlying error.
	Cause error
}

func (e CalculationError) Error() string {
	if e.Algorithm == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Algorithm, e.Cause)
}

// Unwrap returns the underlying cause so errors.Is and errors.As see
// through CalculationError.
func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError represents a multiplication that exceeded its time budget.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was abandoned.
	Limit time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure on a named field.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// OperandError reports an operand that could not be turned into an
// integer, for example because it is malformed or negative. The cause is
// typically a *bigint.LiteralError.
type OperandError struct {
	// Operand names the rejected operand ("x" or "y").
	Operand string
	// Cause is the parsing error.
	Cause error
}

func (e OperandError) Error() string {
	return fmt.Sprintf("invalid operand %s: %v", e.Operand, e.Cause)
}

// Unwrap returns the parsing error.
func (e OperandError) Unwrap() error { return e.Cause }

// MismatchError reports that algorithms disagreed on the product of the
// same operands.
type MismatchError struct {
	// Algorithms lists the calculators whose products were compared.
	Algorithms []string
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("inconsistent products between algorithms: %s", strings.Join(e.Algorithms, ", "))
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError reports whether err is a context cancellation or deadline
// error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsInputError reports whether err was caused by user input rather than by
// a failing computation.
func IsInputError(err error) bool {
	var (
		cfgErr     ConfigError
		valErr     ValidationError
		operandErr OperandError
	)
	return errors.As(err, &cfgErr) || errors.As(err, &valErr) || errors.As(err, &operandErr)
}
