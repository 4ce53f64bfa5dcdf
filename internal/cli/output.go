// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatProduct].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/format"
	"github.com/agbru/karacalc/internal/orchestration"
	"github.com/agbru/karacalc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the product (empty for no file output).
	OutputFile string
	// Quiet prints only the product.
	Quiet bool
	// Verbose shows the full product without truncation.
	Verbose bool
	// Details shows engine statistics.
	Details bool
	// ShowValue enables the product display.
	ShowValue bool
}

// FormatProduct renders a product for the terminal: truncated to its
// first and last DisplayEdges digits unless verbose is set.
func FormatProduct(product bigint.Int, verbose bool) (string, bool) {
	s := product.String()
	if verbose {
		return s, false
	}
	short := format.TruncateDigits(s, TruncationLimit, DisplayEdges)
	return short, short != s
}

// DisplayResult prints the product of x and y with its timing, and
// optionally the value and the engine statistics.
func DisplayResult(res orchestration.CalculationResult, x, y bigint.Int, verbose, details, showValue bool, out io.Writer) {
	fmt.Fprintf(out, "\n--- Result ---\n")
	fmt.Fprintf(out, "Algorithm:        %s%s%s\n", ui.ColorBlue(), res.Name, ui.ColorReset())
	fmt.Fprintf(out, "Multiplication time: %s%s%s\n", ui.ColorGreen(), format.FormatExecutionDuration(res.Duration), ui.ColorReset())
	fmt.Fprintf(out, "Number of digits: %s%s%s (x: %s, y: %s)\n",
		ui.ColorCyan(), format.FormatNumberString(fmt.Sprint(res.Product.DigitLength())), ui.ColorReset(),
		format.FormatNumberString(fmt.Sprint(x.DigitLength())), format.FormatNumberString(fmt.Sprint(y.DigitLength())))

	if details {
		fmt.Fprintf(out, "\n%sDetailed result analysis%s\n", ui.ColorBold(), ui.ColorReset())
		if res.HasStats {
			fmt.Fprintf(out, "  Split nodes:     %s%d%s\n", ui.ColorYellow(), res.Stats.SplitNodes, ui.ColorReset())
			fmt.Fprintf(out, "  Base cases:      %s%d%s\n", ui.ColorYellow(), res.Stats.BaseCases, ui.ColorReset())
			fmt.Fprintf(out, "  Recursion depth: %s%d%s\n", ui.ColorYellow(), res.Stats.MaxDepth, ui.ColorReset())
			fmt.Fprintf(out, "  Parallel spawns: %s%d%s\n", ui.ColorYellow(), res.Stats.ParallelSpawns, ui.ColorReset())
		} else {
			fmt.Fprintf(out, "  No recursion statistics for %s.\n", res.Name)
		}
	}

	if showValue {
		value, truncated := FormatProduct(res.Product, verbose)
		fmt.Fprintf(out, "\nCalculated value:\n")
		xs, _ := FormatProduct(x, verbose)
		ys, _ := FormatProduct(y, verbose)
		fmt.Fprintf(out, "%s * %s =\n%s%s%s\n", xs, ys, ui.ColorGreen(), value, ui.ColorReset())
		if truncated {
			fmt.Fprintf(out, "(truncated) Tip: use %s-v%s to display the full product.\n", ui.ColorYellow(), ui.ColorReset())
		}
	}
}

// WriteResultToFile writes the product to config.OutputFile with a header
// block describing the run. It does nothing when no file is configured.
func WriteResultToFile(x, y, product bigint.Int, duration time.Duration, algo string, config OutputConfig) (err error) {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# Karatsuba Multiplication Result\n")
	fmt.Fprintf(w, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# Algorithm: %s\n", algo)
	fmt.Fprintf(w, "# Duration: %s\n", duration)
	fmt.Fprintf(w, "# X digits: %d\n", x.DigitLength())
	fmt.Fprintf(w, "# Y digits: %d\n", y.DigitLength())
	fmt.Fprintf(w, "# Product digits: %d\n", product.DigitLength())
	fmt.Fprintf(w, "\n%s * %s =\n%s\n", x, y, product)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// FormatQuietResult returns the product alone, for scripting.
func FormatQuietResult(product bigint.Int) string {
	return product.String()
}

// DisplayQuietResult prints the product alone.
func DisplayQuietResult(out io.Writer, product bigint.Int) {
	fmt.Fprintln(out, FormatQuietResult(product))
}

// DisplayResultWithConfig displays a result according to config and saves
// it to a file when requested.
func DisplayResultWithConfig(out io.Writer, res orchestration.CalculationResult, x, y bigint.Int, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, res.Product)
	} else {
		DisplayResult(res, x, y, config.Verbose, config.Details, config.ShowValue, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(x, y, res.Product, res.Duration, res.Name, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
