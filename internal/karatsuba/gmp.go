//go:build gmp

package karatsuba

import (
	"context"
	"fmt"

	"github.com/ncw/gmp"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/progress"
)

func init() {
	registerExtra("gmp", gmpCore{})
}

// gmpCore multiplies with the GNU Multiple Precision library.
type gmpCore struct{}

func (gmpCore) Name() string { return "GMP" }

func (gmpCore) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, x, y bigint.Int, _ Options) (bigint.Int, error) {
	if err := ctx.Err(); err != nil {
		return bigint.Int{}, fmt.Errorf("gmp multiplication canceled: %w", err)
	}
	report(reporter, 0)
	gx, ok := new(gmp.Int).SetString(x.String(), 10)
	if !ok {
		return bigint.Int{}, fmt.Errorf("gmp: cannot convert %d-digit operand", x.DigitLength())
	}
	gy, ok := new(gmp.Int).SetString(y.String(), 10)
	if !ok {
		return bigint.Int{}, fmt.Errorf("gmp: cannot convert %d-digit operand", y.DigitLength())
	}
	z, err := bigint.Parse(new(gmp.Int).Mul(gx, gy).String())
	if err != nil {
		return bigint.Int{}, fmt.Errorf("gmp: converting product: %w", err)
	}
	report(reporter, 1)
	return z, nil
}
