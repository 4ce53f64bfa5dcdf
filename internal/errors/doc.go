// Package apperrors defines the application error types of karacalc
// (configuration, operand, calculation, timeout, mismatch) and maps them
// to process exit codes.
//
// Error Wrapping Guidelines:
// Errors are wrapped with fmt.Errorf and %w. Types carrying a cause
// implement Unwrap so errors.Is and errors.As reach the sentinels of the
// bigint package and of context.
package apperrors
