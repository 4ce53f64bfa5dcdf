package karatsuba

import (
	"context"
	"fmt"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/progress"
)

func ExampleMultiply() {
	x := bigint.MustParse("123456789012345678998979797979")
	y := bigint.MustParse("987654321098765432197897897897897")

	fmt.Println(Multiply(x, y))
	// Output:
	// 121932631137021795333590365412101381960421977229675913828950163
}

// ExampleEngine_MultiplyWithStats shows the shape of the recursion for a
// small product.
func ExampleEngine_MultiplyWithStats() {
	engine := NewEngine(Options{}, nil)

	z, stats, err := engine.MultiplyWithStats(context.Background(), bigint.FromUint64(1234), bigint.FromUint64(5678))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(z)
	fmt.Println(stats.SplitNodes > 0, stats.BaseCases > stats.SplitNodes)
	// Output:
	// 7006652
	// true true
}

// ExampleDefaultFactory obtains a registered calculator by name.
func ExampleDefaultFactory() {
	factory := NewDefaultFactory()

	calc, err := factory.Get("karatsuba")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	z, err := calc.Calculate(context.Background(), nil, 0, bigint.FromUint64(12345), bigint.FromUint64(67890), Options{})
	if err != nil {
		fmt.Printf("Calculation error: %v\n", err)
		return
	}

	fmt.Println(calc.Name())
	fmt.Println(z)
	// Output:
	// Karatsuba
	// 838102050
}

// ExampleMultiplyCalculator_CalculateWithObservers tracks progress through
// a channel observer.
func ExampleMultiplyCalculator_CalculateWithObservers() {
	calc := NewCalculator(karatsubaCore{})

	subject := progress.NewProgressSubject()
	progressChan := make(chan progress.ProgressUpdate, 100)
	subject.Register(progress.NewChannelObserver(progressChan))

	z, err := calc.CalculateWithObservers(context.Background(), subject, 0,
		bigint.MustParse("123456789"), bigint.MustParse("987654321"), Options{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	close(progressChan)
	var last float64
	for update := range progressChan {
		last = update.Value
	}

	fmt.Println(z)
	fmt.Println(last)
	// Output:
	// 121932631112635269
	// 1
}
