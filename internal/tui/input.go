package tui

import (
	"fmt"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/karacalc/internal/format"
)

// operandInput is a single-line editor that accepts decimal digits only.
type operandInput struct {
	label  string
	value  []rune
	cursor int
}

func newOperandInput(label, initial string) operandInput {
	in := operandInput{label: label}
	in.SetValue(initial)
	return in
}

// Value returns the digits entered so far.
func (in operandInput) Value() string { return string(in.value) }

// SetValue replaces the content, dropping non-digits, and moves the cursor
// to the end.
func (in *operandInput) SetValue(s string) {
	in.value = in.value[:0]
	for _, r := range s {
		if unicode.IsDigit(r) {
			in.value = append(in.value, r)
		}
	}
	in.cursor = len(in.value)
}

// HandleKey applies an editing key. It reports whether the key was used.
func (in *operandInput) HandleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyBackspace:
		if in.cursor > 0 {
			in.value = append(in.value[:in.cursor-1], in.value[in.cursor:]...)
			in.cursor--
		}
	case tea.KeyDelete:
		if in.cursor < len(in.value) {
			in.value = append(in.value[:in.cursor], in.value[in.cursor+1:]...)
		}
	case tea.KeyLeft:
		if in.cursor > 0 {
			in.cursor--
		}
	case tea.KeyRight:
		if in.cursor < len(in.value) {
			in.cursor++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		in.cursor = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		in.cursor = len(in.value)
	case tea.KeyCtrlU:
		in.value = in.value[:0]
		in.cursor = 0
	case tea.KeyRunes:
		used := false
		for _, r := range msg.Runes {
			if !unicode.IsDigit(r) {
				continue
			}
			in.value = append(in.value[:in.cursor], append([]rune{r}, in.value[in.cursor:]...)...)
			in.cursor++
			used = true
		}
		return used
	default:
		return false
	}
	return true
}

// View renders the field in width columns, scrolling around the cursor
// when focused and eliding the middle otherwise.
func (in operandInput) View(focused bool, width int) string {
	width = max(width, 8)
	style := inputStyle
	if focused {
		style = inputFocusedStyle
	}

	var text string
	switch {
	case len(in.value) == 0 && !focused:
		text = dimStyle.Render("enter digits...")
	case focused:
		s := string(in.value[:in.cursor]) + "|" + string(in.value[in.cursor:])
		runes := []rune(s)
		if len(runes) > width {
			start := min(max(in.cursor-width/2, 0), len(runes)-width)
			runes = runes[start : start+width]
		}
		text = string(runes)
	default:
		text = format.TruncateDigits(string(in.value), width, max((width-24)/2, 1))
		if r := []rune(text); len(r) > width {
			text = string(r[:width-1]) + "…"
		}
	}

	digits := dimStyle.Render(fmt.Sprintf(" %s digits", format.FormatNumberString(fmt.Sprint(len(in.value)))))
	return labelStyle.Render(in.label+":") + " " + style.Width(width+2).Render(text) + digits
}
