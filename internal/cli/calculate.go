package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/agbru/karacalc/internal/config"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/ui"
)

// PrintExecutionConfig displays the operands, timeout, environment and
// engine thresholds of the run.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	opts := cfg.ToOptions()
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Multiplying %s%d%s-digit by %s%d%s-digit operands with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), digitCount(cfg.X), ui.ColorReset(),
		ui.ColorMagenta(), digitCount(cfg.Y), ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, CPU features: %s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset(),
		CPUFeatures())

	parallel := "off"
	if opts.ParallelThreshold > 0 {
		parallel = fmt.Sprintf("%d digits", opts.ParallelThreshold)
	}
	fmt.Fprintf(out, "Engine thresholds: Cutoff=%s%d%s, Parallelism=%s%s%s.\n",
		ui.ColorCyan(), opts.Cutoff, ui.ColorReset(), ui.ColorCyan(), parallel, ui.ColorReset())
}

// digitCount counts the digits of an operand literal, ignoring leading
// zeros and surrounding whitespace.
func digitCount(literal string) int {
	s := strings.TrimLeft(strings.TrimSpace(literal), "+0")
	if s == "" {
		return 1
	}
	return len(s)
}

// CPUFeatures lists the SIMD extensions of the host that the Go runtime
// and math/big make use of.
func CPUFeatures() string {
	var features []string
	switch runtime.GOARCH {
	case "amd64", "386":
		for _, f := range []struct {
			name string
			ok   bool
		}{
			{"SSE4.1", cpu.X86.HasSSE41},
			{"AVX", cpu.X86.HasAVX},
			{"AVX2", cpu.X86.HasAVX2},
			{"BMI2", cpu.X86.HasBMI2},
			{"ADX", cpu.X86.HasADX},
			{"AVX512F", cpu.X86.HasAVX512F},
		} {
			if f.ok {
				features = append(features, f.name)
			}
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			features = append(features, "ASIMD")
		}
		if cpu.ARM64.HasSVE {
			features = append(features, "SVE")
		}
	}
	if len(features) == 0 {
		return "none detected"
	}
	return strings.Join(features, " ")
}

// PrintExecutionMode displays whether a single algorithm runs or all of
// them are compared.
func PrintExecutionMode(calculators []karatsuba.Calculator, out io.Writer) {
	var modeDesc string
	switch {
	case len(calculators) == 0:
		modeDesc = "No algorithm selected"
	case len(calculators) > 1:
		modeDesc = fmt.Sprintf("Parallel comparison of %d algorithms", len(calculators))
	default:
		modeDesc = fmt.Sprintf("Single calculation with the %s%s%s algorithm",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
