package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/karacalc/internal/format"
)

// HeaderModel renders the top bar: title, version and the time spent in
// the current run.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	width     int
}

// NewHeaderModel creates a header with a stopped timer.
func NewHeaderModel(version string) HeaderModel {
	now := time.Now()
	return HeaderModel{startTime: now, endTime: now, version: version}
}

// Start restarts the timer.
func (h *HeaderModel) Start() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetDone freezes the timer.
func (h *HeaderModel) SetDone() {
	if h.endTime.IsZero() {
		h.endTime = time.Now()
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) { h.width = w }

// Elapsed returns the duration of the current or last run.
func (h HeaderModel) Elapsed() time.Duration {
	if h.endTime.IsZero() {
		return time.Since(h.startTime)
	}
	return h.endTime.Sub(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	title := "karacalc dashboard"
	if h.version != "" && h.version != "dev" {
		title += " " + h.version
	}
	left := titleStyle.Render(title) + dimStyle.Render(" | ") +
		elapsedStyle.Render(fmt.Sprintf("Run time: %s", format.FormatExecutionDuration(h.Elapsed())))

	gap := max(h.width-2-lipgloss.Width(left), 0)
	return headerStyle.Render(left + strings.Repeat(" ", gap))
}
