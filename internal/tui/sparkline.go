package tui

// sparkBlocks maps levels 0..7 to Unicode block elements.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// History keeps the last samples of a percentage in arrival order.
type History struct {
	samples []float64
	limit   int
}

// NewHistory returns a history holding at most limit samples.
func NewHistory(limit int) *History {
	return &History{limit: max(limit, 1)}
}

// Push records v, evicting the oldest sample when full.
func (h *History) Push(v float64) {
	if len(h.samples) == h.limit {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.limit-1]
	}
	h.samples = append(h.samples, v)
}

// Values returns the samples, oldest first. The slice is shared.
func (h *History) Values() []float64 { return h.samples }

// Last returns the newest sample, or 0 when empty.
func (h *History) Last() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1]
}

// Sparkline renders the newest width values (0..100) as block characters,
// left-padded with spaces to exactly width runes.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	out := make([]rune, 0, width)
	for range width - len(values) {
		out = append(out, ' ')
	}
	for _, v := range values {
		level := int(min(max(v, 0), 100) / 100 * 7)
		out = append(out, sparkBlocks[level])
	}
	return string(out)
}
