// Package orchestration runs several multiplication calculators on the same
// operands concurrently and compares their products. Presentation stays
// behind the ProgressReporter and ResultPresenter interfaces.
package orchestration
