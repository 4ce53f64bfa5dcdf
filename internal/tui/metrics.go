package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/karacalc/internal/format"
)

// historySize is the number of host samples kept for the sparklines.
const historySize = 120

// MetricsModel displays Go runtime memory, host load and the speed of the
// running multiplication.
type MetricsModel struct {
	alloc        uint64
	heapSys      uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int

	cpu *History
	mem *History

	active       bool
	speed        float64 // progress per second
	lastProgress float64
	lastUpdate   time.Time

	width int
}

// NewMetricsModel creates an empty metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		cpu:        NewHistory(historySize),
		mem:        NewHistory(historySize),
		lastUpdate: time.Now(),
	}
}

// SetWidth updates the panel width.
func (m *MetricsModel) SetWidth(w int) { m.width = w }

// UpdateMemStats stores a runtime memory sample.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapSys = msg.HeapSys
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.NumGoroutine
}

// UpdateSysStats appends a host sample to the sparklines.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) {
	m.cpu.Push(msg.CPUPercent)
	m.mem.Push(msg.MemPercent)
}

// StartRun clears the speed estimate at the start of a run.
func (m *MetricsModel) StartRun() {
	m.active = true
	m.speed = 0
	m.lastProgress = 0
	m.lastUpdate = time.Now()
}

// FinishRun stops the ETA display.
func (m *MetricsModel) FinishRun() { m.active = false }

// UpdateProgress smooths the progress rate with an exponential average.
func (m *MetricsModel) UpdateProgress(progress float64) {
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt < 0.05 {
		return
	}
	if dp := progress - m.lastProgress; dp > 0 {
		instant := dp / dt
		if m.speed > 0 {
			m.speed = 0.7*m.speed + 0.3*instant
		} else {
			m.speed = instant
		}
	}
	m.lastProgress = progress
	m.lastUpdate = now
}

// ETA estimates the remaining time from the smoothed speed.
func (m MetricsModel) ETA() time.Duration {
	if m.speed <= 0 {
		return -1
	}
	return time.Duration((1 - m.lastProgress) / m.speed * float64(time.Second))
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var b strings.Builder
	b.WriteString(sectionTitleStyle.Render("RESOURCES"))
	b.WriteString("\n")

	pipe := dimStyle.Render(" | ")
	b.WriteString(labelStyle.Render("Heap: ") + valueStyle.Render(format.FormatBytes(m.alloc)+" / "+format.FormatBytes(m.heapSys)))
	b.WriteString(pipe)
	b.WriteString(labelStyle.Render("GC: ") + valueStyle.Render(fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6)))
	b.WriteString(pipe)
	b.WriteString(labelStyle.Render("Goroutines: ") + valueStyle.Render(fmt.Sprint(m.numGoroutine)))
	b.WriteString(pipe)
	eta := "-"
	if m.active {
		eta = format.FormatETA(m.ETA())
	}
	b.WriteString(labelStyle.Render("ETA: ") + valueStyle.Render(eta))
	b.WriteString("\n")

	lineWidth := max(m.width-24, 10)
	b.WriteString(labelStyle.Render(fmt.Sprintf("CPU %5.1f%% ", m.cpu.Last())))
	b.WriteString(cpuSparklineStyle.Render(Sparkline(m.cpu.Values(), lineWidth)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("MEM %5.1f%% ", m.mem.Last())))
	b.WriteString(memSparklineStyle.Render(Sparkline(m.mem.Values(), lineWidth)))

	return panelStyle.Width(max(m.width-2, lipgloss.Width("RESOURCES"))).Render(b.String())
}
