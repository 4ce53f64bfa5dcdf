package orchestration

import "github.com/agbru/karacalc/internal/karatsuba"

// GetCalculatorsToRun resolves an algorithm name to calculators. "all"
// yields every registered calculator in sorted name order; an unknown name
// yields nil.
func GetCalculatorsToRun(algo string, factory karatsuba.CalculatorFactory) []karatsuba.Calculator {
	if algo == "all" {
		keys := factory.List()
		calculators := make([]karatsuba.Calculator, 0, len(keys))
		for _, k := range keys {
			if calc, err := factory.Get(k); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(algo); err == nil {
		return []karatsuba.Calculator{calc}
	}
	return nil
}
