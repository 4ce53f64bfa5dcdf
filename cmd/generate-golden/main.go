// Command generate-golden writes the golden product vectors used by the
// multiplication tests. Products are computed with math/big, which is
// independent of the code under test.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

type goldenCase struct {
	Name    string `json:"name"`
	X       string `json:"x"`
	Y       string `json:"y"`
	Product string `json:"product"`
}

type goldenFile struct {
	Version int          `json:"version"`
	Cases   []goldenCase `json:"cases"`
}

func main() {
	out := flag.String("out", filepath.Join("internal", "karatsuba", "testdata", "golden.json"), "output path")
	flag.Parse()

	if err := writeGolden(*out); err != nil {
		fmt.Fprintf(os.Stderr, "generate-golden: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

func writeGolden(path string) error {
	data, err := json.MarshalIndent(goldenFile{Version: 1, Cases: goldenCases()}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func goldenCases() []goldenCase {
	var cases []goldenCase
	add := func(name string, x, y *big.Int) {
		cases = append(cases, goldenCase{
			Name:    name,
			X:       x.String(),
			Y:       y.String(),
			Product: new(big.Int).Mul(x, y).String(),
		})
	}

	add("literal-regression", mustBig("123456789012345678998979797979"), mustBig("987654321098765432197897897897897"))
	add("zero", big.NewInt(0), big.NewInt(123456789))
	add("one", big.NewInt(1), mustBig("98765432109876543210"))
	add("base-boundary", big.NewInt(7), mustBig("123456789012345678998979797979"))

	for _, k := range []int64{1, 2, 5, 9, 10, 18, 19, 27, 50, 100} {
		r := repdigit(k)
		add(fmt.Sprintf("repdigit-%d", k), r, r)
	}
	for _, k := range []int64{3, 17, 40, 81} {
		r := repunit(k)
		add(fmt.Sprintf("repunit-%d", k), r, r)
	}
	for _, k := range []int64{9, 30, 64} {
		y := new(big.Int).Add(pow10(k+3), big.NewInt(7))
		add(fmt.Sprintf("power-of-ten-%d", k), pow10(k), y)
	}
	for _, pq := range [][2]uint{{61, 89}, {127, 107}, {521, 607}} {
		x := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), pq[0]), big.NewInt(1))
		y := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), pq[1]), big.NewInt(1))
		add(fmt.Sprintf("mersenne-%d-%d", pq[0], pq[1]), x, y)
	}
	for _, n := range []int64{20, 50, 100} {
		add(fmt.Sprintf("factorial-%d", n), factorial(n), factorial(n+1))
	}
	add("mixed-length", big.NewInt(12345), new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

	return cases
}

func mustBig(s string) *big.Int {
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("generate-golden: bad literal " + s)
	}
	return z
}

func pow10(k int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(k), nil)
}

// repdigit returns 10^k - 1, the k-digit number made of nines.
func repdigit(k int64) *big.Int {
	return new(big.Int).Sub(pow10(k), big.NewInt(1))
}

// repunit returns the k-digit number made of ones.
func repunit(k int64) *big.Int {
	return new(big.Int).Div(repdigit(k), big.NewInt(9))
}

func factorial(n int64) *big.Int {
	return new(big.Int).MulRange(1, n)
}
