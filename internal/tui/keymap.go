package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	Quit       key.Binding
	Help       key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Calculate  key.Binding
	Compare    key.Binding
	Random     key.Binding
	Cancel     key.Binding
	ToggleFull key.Binding
	Up         key.Binding
	Down       key.Binding
}

// DefaultKeyMap returns the default bindings. Operand fields only accept
// digits, so letter keys stay available while typing.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Calculate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "multiply"),
		),
		Compare: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "race all"),
		),
		Random: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "random operands"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		ToggleFull: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "full product"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous algorithm"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next algorithm"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Calculate, k.Compare, k.NextField, k.Random, k.Cancel, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Up, k.Down},
		{k.Calculate, k.Compare, k.Random, k.Cancel},
		{k.ToggleFull, k.Help, k.Quit},
	}
}
