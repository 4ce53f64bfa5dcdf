package karatsuba

import (
	"context"
	"fmt"
	"math/big"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/progress"
)

// schoolbookCore multiplies with quadratic long multiplication. It is the
// naive reference the Karatsuba result is compared against.
type schoolbookCore struct{}

func (schoolbookCore) Name() string { return "Schoolbook" }

func (schoolbookCore) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, x, y bigint.Int, _ Options) (bigint.Int, error) {
	report(reporter, 0)
	z, err := bigint.MulSchoolbookContext(ctx, x, y)
	if err != nil {
		return bigint.Int{}, fmt.Errorf("schoolbook multiplication canceled: %w", err)
	}
	report(reporter, 1)
	return z, nil
}

// mathBigCore delegates to math/big, whose multiplication switches to its
// own Karatsuba implementation for large operands. big.Int.Mul cannot be
// interrupted, so it runs on its own goroutine and an expired ctx returns
// without waiting for it.
type mathBigCore struct{}

func (mathBigCore) Name() string { return "math/big" }

func (mathBigCore) CalculateCore(ctx context.Context, reporter progress.ProgressCallback, x, y bigint.Int, _ Options) (bigint.Int, error) {
	if err := ctx.Err(); err != nil {
		return bigint.Int{}, fmt.Errorf("math/big multiplication canceled: %w", err)
	}
	report(reporter, 0)
	bx, by := x.Big(), y.Big()
	report(reporter, 0.5)

	done := make(chan *big.Int, 1)
	go func() { done <- new(big.Int).Mul(bx, by) }()

	select {
	case <-ctx.Done():
		return bigint.Int{}, fmt.Errorf("math/big multiplication canceled: %w", ctx.Err())
	case p := <-done:
		z, err := bigint.FromBig(p)
		if err != nil {
			return bigint.Int{}, err
		}
		report(reporter, 1)
		return z, nil
	}
}
