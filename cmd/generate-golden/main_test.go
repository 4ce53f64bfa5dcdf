package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/agbru/karacalc/internal/bigint"
)

// TestGoldenCases_ProductsAreConsistent cross-checks every math/big
// product against the naive bigint multiplication.
func TestGoldenCases_ProductsAreConsistent(t *testing.T) {
	for _, c := range goldenCases() {
		t.Run(c.Name, func(t *testing.T) {
			x := bigint.MustParse(c.X)
			y := bigint.MustParse(c.Y)
			if got := bigint.MulSchoolbook(x, y).String(); got != c.Product {
				t.Errorf("%s: schoolbook = %s, golden = %s", c.Name, got, c.Product)
			}
		})
	}
}

func TestGoldenCases_KnownValues(t *testing.T) {
	byName := make(map[string]goldenCase)
	for _, c := range goldenCases() {
		if _, dup := byName[c.Name]; dup {
			t.Fatalf("duplicate case name %q", c.Name)
		}
		byName[c.Name] = c
	}

	tests := []struct {
		name    string
		product string
	}{
		{"literal-regression", "121932631137021795333590365412101381960421977229675913828950163"},
		{"zero", "0"},
		{"one", "98765432109876543210"},
		{"base-boundary", "864197523086419752992858585853"},
		{"repdigit-2", "9801"},
		{"repunit-3", "12321"},
	}
	for _, tt := range tests {
		c, ok := byName[tt.name]
		if !ok {
			t.Errorf("missing case %q", tt.name)
			continue
		}
		if c.Product != tt.product {
			t.Errorf("%s product = %s, want %s", tt.name, c.Product, tt.product)
		}
	}

	if got := factorial(20).String(); got != "2432902008176640000" {
		t.Errorf("factorial(20) = %s", got)
	}
	if got := repunit(5); got.Cmp(big.NewInt(11111)) != 0 {
		t.Errorf("repunit(5) = %s", got)
	}
}

func TestWriteGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "golden.json")
	if err := writeGolden(path); err != nil {
		t.Fatalf("writeGolden: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var f goldenFile
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if f.Version != 1 || len(f.Cases) != len(goldenCases()) {
		t.Errorf("version=%d cases=%d", f.Version, len(f.Cases))
	}
}

// TestCommittedGoldenIsUpToDate fails when testdata was edited by hand or
// the case list changed without regenerating the file.
func TestCommittedGoldenIsUpToDate(t *testing.T) {
	committed, err := os.ReadFile(filepath.Join("..", "..", "internal", "karatsuba", "testdata", "golden.json"))
	if err != nil {
		t.Skipf("golden file not available: %v", err)
	}

	path := filepath.Join(t.TempDir(), "golden.json")
	if err := writeGolden(path); err != nil {
		t.Fatalf("writeGolden: %v", err)
	}
	fresh, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(committed, fresh) {
		t.Error("internal/karatsuba/testdata/golden.json is stale; run go run ./cmd/generate-golden")
	}
}
