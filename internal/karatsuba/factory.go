package karatsuba

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CalculatorFactory creates and caches calculators by algorithm name.
type CalculatorFactory interface {
	// Get returns the calculator registered under name.
	Get(name string) (Calculator, error)
	// List returns the registered names in sorted order.
	List() []string
	// GetAll returns every registered calculator keyed by name.
	GetAll() map[string]Calculator
	// Register adds or replaces an algorithm.
	Register(name string, core CoreCalculator) error
}

// DefaultFactory is the standard CalculatorFactory. It is safe for
// concurrent use.
type DefaultFactory struct {
	mu          sync.RWMutex
	cores       map[string]CoreCalculator
	calculators map[string]Calculator
}

var (
	extraMu    sync.Mutex
	extraCores = map[string]CoreCalculator{}
)

// registerExtra records an algorithm compiled in behind a build tag so
// every factory created afterwards includes it.
func registerExtra(name string, core CoreCalculator) {
	extraMu.Lock()
	extraCores[name] = core
	extraMu.Unlock()
}

// NewDefaultFactory returns a factory with the built-in algorithms:
// "karatsuba", "schoolbook", "mathbig", plus any compiled in with build
// tags (such as "gmp").
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		cores: map[string]CoreCalculator{
			"karatsuba":  karatsubaCore{},
			"schoolbook": schoolbookCore{},
			"mathbig":    mathBigCore{},
		},
		calculators: make(map[string]Calculator),
	}
	extraMu.Lock()
	for name, core := range extraCores {
		f.cores[name] = core
	}
	extraMu.Unlock()
	return f
}

// Get implements CalculatorFactory. Names are case-insensitive.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	f.mu.RLock()
	calc, ok := f.calculators[key]
	f.mu.RUnlock()
	if ok {
		return calc, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if calc, ok := f.calculators[key]; ok {
		return calc, nil
	}
	core, ok := f.cores[key]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (available: %s)", name, strings.Join(f.listLocked(), ", "))
	}
	calc = NewCalculator(core)
	f.calculators[key] = calc
	return calc, nil
}

// List implements CalculatorFactory.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listLocked()
}

func (f *DefaultFactory) listLocked() []string {
	keys := make([]string, 0, len(f.cores))
	for k := range f.cores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetAll implements CalculatorFactory.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	all := make(map[string]Calculator)
	for _, name := range f.List() {
		if calc, err := f.Get(name); err == nil {
			all[name] = calc
		}
	}
	return all
}

// Register implements CalculatorFactory.
func (f *DefaultFactory) Register(name string, core CoreCalculator) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "all" {
		return fmt.Errorf("invalid algorithm name %q", name)
	}
	if core == nil {
		return fmt.Errorf("algorithm %q: nil calculator", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cores[key] = core
	delete(f.calculators, key)
	return nil
}

var (
	globalFactory     *DefaultFactory
	globalFactoryOnce sync.Once
)

// GlobalFactory returns a process-wide DefaultFactory.
func GlobalFactory() *DefaultFactory {
	globalFactoryOnce.Do(func() {
		globalFactory = NewDefaultFactory()
	})
	return globalFactory
}
