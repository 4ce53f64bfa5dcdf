package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/format"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/ui"
)

// DemoPair is one canned multiplication of the demonstration suite.
type DemoPair struct {
	X, Y string
}

// DemoPairs are the operands multiplied by RunDemo.
var DemoPairs = []DemoPair{
	{"123", "456"},
	{"1234", "5678"},
	{"12345", "67890"},
	{"123456789", "987654321"},
	{"123456789012345678998979797979", "987654321098765432197897897897897"},
}

// RunDemo multiplies every DemoPairs entry with calc, timing each one and
// checking it against schoolbook multiplication. It returns a
// MismatchError if any product is wrong.
func RunDemo(ctx context.Context, calc karatsuba.Calculator, opts karatsuba.Options, out io.Writer) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorCyan(), rule, ui.ColorReset())
	fmt.Fprintf(out, "%s%s ALGORITHM TEST%s\n", ui.ColorBold(), strings.ToUpper(calc.Name()), ui.ColorReset())
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorCyan(), rule, ui.ColorReset())

	failures := 0
	for i, pair := range DemoPairs {
		x, y := bigint.MustParse(pair.X), bigint.MustParse(pair.Y)
		fmt.Fprintf(out, "\nTest %d: %s × %s\n", i+1, pair.X, pair.Y)
		fmt.Fprintln(out, strings.Repeat("-", 40))

		start := time.Now()
		product, err := calc.Calculate(ctx, nil, 0, x, y, opts)
		duration := time.Since(start)
		if err != nil {
			return apperrors.CalculationError{Algorithm: calc.Name(), Cause: err}
		}

		if expected := bigint.MulSchoolbook(x, y); product.Equal(expected) {
			fmt.Fprintf(out, "%s✓ Result: %s%s\n", ui.ColorGreen(), product, ui.ColorReset())
		} else {
			failures++
			fmt.Fprintf(out, "%s✗ ERROR: incorrect result!%s\n", ui.ColorRed(), ui.ColorReset())
			fmt.Fprintf(out, "  %s: %s\n", calc.Name(), product)
			fmt.Fprintf(out, "  Expected: %s\n", expected)
		}
		fmt.Fprintf(out, "Execution time: %s\n", format.FormatExecutionDuration(duration))
	}

	if failures > 0 {
		return apperrors.MismatchError{Algorithms: []string{calc.Name(), "Schoolbook"}}
	}
	return nil
}
