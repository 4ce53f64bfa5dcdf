// Package karatsuba implements Karatsuba multiplication of bigint.Int
// values, and the calculator abstraction through which the CLI, the
// dashboard and the HTTP service run it.
//
// Multiply is the plain entry point: sequential, exact, with the textbook
// base case of single-digit operands. An Engine adds a configurable
// base-case cutoff, optional parallel recursion above a digit threshold,
// cancellation through a context and progress reporting.
//
// Calculators wrap a core algorithm (the engine, or one of the reference
// implementations used for comparison) behind a common interface and are
// looked up by name in a CalculatorFactory.
package karatsuba
