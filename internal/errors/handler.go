package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the ANSI sequences used to highlight error
// output. Implementations return empty strings when colors are disabled.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// ExitCode maps an error to the process exit code without printing
// anything.
func ExitCode(err error) int {
	var mismatch MismatchError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.As(err, new(TimeoutError)):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &mismatch):
		return ExitErrorMismatch
	case IsInputError(err):
		return ExitErrorConfig
	}
	return ExitErrorGeneric
}

// HandleCalculationError prints a user-facing description of err to out
// and returns the matching exit code. A nil err prints nothing and yields
// ExitSuccess. duration is the time spent before the failure.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCode(err)
	if code == ExitSuccess {
		return code
	}

	elapsed := ""
	if duration > 0 {
		elapsed = fmt.Sprintf(" after %s", duration.Round(time.Microsecond))
	}

	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sTimeout: the multiplication did not finish%s.%s\n", colors.Yellow(), elapsed, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sCanceled: the multiplication was interrupted%s.%s\n", colors.Yellow(), elapsed, colors.Reset())
	case ExitErrorMismatch:
		fmt.Fprintf(out, "%sCRITICAL: %v%s\n", colors.Red(), err, colors.Reset())
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sInput error: %v%s\n", colors.Red(), err, colors.Reset())
	default:
		fmt.Fprintf(out, "%sError%s: %v%s\n", colors.Red(), elapsed, err, colors.Reset())
	}
	return code
}
