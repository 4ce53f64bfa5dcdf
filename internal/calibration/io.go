package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/karacalc/internal/config"
	"github.com/agbru/karacalc/internal/format"
	"github.com/agbru/karacalc/internal/ui"
)

// printCalibrationResults formats and prints one calibration table.
func printCalibrationResults(out io.Writer, title string, results []calibrationResult, best int) {
	fmt.Fprintf(out, "\n--- %s ---\n", title)
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sValue%s           │ %sExecution Time%s\n", ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s\n", strings.Repeat("─", 16), strings.Repeat("─", 25))
	for i, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Duration)
			if res.Duration == 0 {
				durationStr = "< 1µs"
			}
		}
		highlight := ""
		if i == best && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-14s%s │ %s%s%s%s\n", ui.ColorCyan(), res.Label, ui.ColorReset(), ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints the thresholds chosen by auto-calibration.
func printCalibrationOutput(cfg config.AppConfig, out io.Writer) {
	parallel := "off"
	if cfg.ParallelThreshold > 0 {
		parallel = fmt.Sprintf("%d digits", cfg.ParallelThreshold)
	}
	fmt.Fprintf(out, "%sAuto-calibration%s: cutoff=%s%d%s, parallelism=%s%s%s\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), cfg.Cutoff, ui.ColorReset(),
		ui.ColorYellow(), parallel, ui.ColorReset())
}
