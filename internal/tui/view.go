package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/karacalc/internal/format"
)

// Column widths of the algorithm table.
const (
	colWidthRank     = 3
	colWidthName     = 14
	colWidthProgress = 28
	colWidthPct      = 7
	colWidthDur      = 12
	colWidthStatus   = 6
)

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.renderInputSection(),
		m.renderAlgorithmTable(),
		m.renderResultSection(),
		m.metrics.View(),
		m.renderFooter(),
	)
}

func (m Model) renderInputSection() string {
	fieldWidth := max(m.width-30, 16)
	var b strings.Builder
	b.WriteString(sectionTitle("OPERANDS", m.focus < focusAlgorithms))
	b.WriteString("\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View(m.focus == focus(i), fieldWidth))
		b.WriteString("\n")
	}
	if m.inputErr != nil {
		b.WriteString(errorStyle.Render("  " + m.inputErr.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderAlgorithmTable() string {
	var b strings.Builder
	b.WriteString(sectionTitle("ALGORITHMS", m.focus == focusAlgorithms))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-*s %-*s %-*s %*s %*s %-*s",
		colWidthRank, "#", colWidthName, "Algorithm", colWidthProgress, "Progress",
		colWidthPct, "%", colWidthDur, "Duration", colWidthStatus, "Status")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")

	for i, l := range m.lanes {
		row := m.renderLane(l)
		if i == m.cursor {
			row = selectedRowStyle.Render("▸") + row[1:]
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLane(l lane) string {
	rank := "-"
	if l.rank > 0 {
		rank = fmt.Sprint(l.rank)
	}
	dur := "-"
	switch l.status {
	case laneDone, laneFailed:
		dur = format.FormatExecutionDuration(l.duration)
	case laneRunning:
		dur = "..."
	}

	var status string
	switch l.status {
	case laneIdle:
		status = dimStyle.Render("IDLE")
	case laneRunning:
		status = infoStyle.Render("RUN")
	case laneDone:
		status = successStyle.Render("OK")
	case laneFailed:
		status = errorStyle.Render("ERR")
	}

	name := l.name
	if len(name) > colWidthName {
		name = name[:colWidthName-1] + "…"
	}
	if l.rank == 1 && m.raced > 1 {
		rank = successStyle.Render(fmt.Sprintf("%-*s", colWidthRank, rank))
	} else {
		rank = fmt.Sprintf("%-*s", colWidthRank, rank)
	}

	return fmt.Sprintf("  %s %-*s %s %*s %*s %s",
		rank, colWidthName, name, progressBar(l.progress, colWidthProgress),
		colWidthPct, fmt.Sprintf("%.1f%%", l.progress*100), colWidthDur, dur, status)
}

// progressBar renders a bar of exactly width cells.
func progressBar(progress float64, width int) string {
	filled := int(min(max(progress, 0), 1) * float64(width))
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderResultSection() string {
	var b strings.Builder
	b.WriteString(sectionTitle("PRODUCT", false))
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString(infoStyle.Render(fmt.Sprintf("  Multiplying %s-digit by %s-digit operands...",
			format.FormatNumberString(fmt.Sprint(m.x.DigitLength())),
			format.FormatNumberString(fmt.Sprint(m.y.DigitLength())))))
	case m.resultErr != nil:
		b.WriteString(errorStyle.Render("  " + m.resultErr.Error()))
	case !m.hasResult:
		b.WriteString(dimStyle.Render("  No product yet. Press enter for the selected algorithm or m to race them all."))
	default:
		digits := m.result.Product.DigitLength()
		b.WriteString(fmt.Sprintf("  %s digits by %s in %s",
			valueStyle.Render(format.FormatNumberString(fmt.Sprint(digits))),
			successStyle.Render(m.result.Name),
			valueStyle.Render(format.FormatExecutionDuration(m.result.Duration))))
		if m.raced > 1 {
			b.WriteString(successStyle.Render(fmt.Sprintf("   [OK] %d results consistent", m.raced)))
		}
		b.WriteString("\n  ")
		b.WriteString(valueStyle.Render(m.productText()))
	}
	b.WriteString("\n")
	return b.String()
}

// productText is the product, elided to the terminal width unless the full
// view is on.
func (m Model) productText() string {
	s := m.result.Product.String()
	if m.showFull {
		return s
	}
	limit := max(m.width-4, 20)
	return format.TruncateDigits(s, limit, max((limit-24)/2, 1))
}

func (m Model) renderFooter() string {
	parts := make([]string, 0, len(m.keymap.ShortHelp()))
	for _, kb := range m.keymap.ShortHelp() {
		h := kb.Help()
		parts = append(parts, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, dimStyle.Render("  •  "))
}

func (m Model) renderHelpOverlay() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("KARACALC DASHBOARD - HELP"))
	b.WriteString("\n\n")
	for _, group := range m.keymap.FullHelp() {
		for _, kb := range group {
			b.WriteString(helpLine(kb))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("Operand fields accept digits only. ctrl+u clears a field."))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press ? or esc to close this help."))

	overlay := overlayStyle.Width(min(64, max(m.width-4, 20))).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}

func helpLine(kb key.Binding) string {
	h := kb.Help()
	return fmt.Sprintf("  %s %s\n", footerKeyStyle.Render(fmt.Sprintf("%-12s", h.Key)), footerDescStyle.Render(h.Desc))
}

func sectionTitle(title string, focused bool) string {
	if focused {
		return titleStyle.Render(title)
	}
	return sectionTitleStyle.Render(title)
}
