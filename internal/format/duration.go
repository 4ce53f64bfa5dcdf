// Package format holds the text formatting helpers shared by the CLI and
// the TUI: durations, digit strings, progress bars and ETAs.
package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration formats a time.Duration for display.
// Sub-millisecond durations are shown in microseconds and sub-second ones
// in milliseconds, since most products of a few hundred digits finish in
// that range.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}
