package tui

import (
	"slices"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Help", km.Help},
		{"NextField", km.NextField},
		{"PrevField", km.PrevField},
		{"Calculate", km.Calculate},
		{"Compare", km.Compare},
		{"Random", km.Random},
		{"Cancel", km.Cancel},
		{"ToggleFull", km.ToggleFull},
		{"Up", km.Up},
		{"Down", km.Down},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			if !b.binding.Enabled() {
				t.Errorf("expected %s binding to be enabled", b.name)
			}
			if len(b.binding.Keys()) == 0 {
				t.Errorf("expected %s binding to have at least one key", b.name)
			}
			if b.binding.Help().Desc == "" {
				t.Errorf("expected %s binding to have a help text", b.name)
			}
		})
	}
}

func TestDefaultKeyMap_QuitKeys(t *testing.T) {
	keys := DefaultKeyMap().Quit.Keys()
	if !slices.Contains(keys, "q") || !slices.Contains(keys, "ctrl+c") {
		t.Errorf("Quit keys = %v, want q and ctrl+c", keys)
	}
}

// Operand fields accept digits, so no binding may use one.
func TestDefaultKeyMap_NoDigitKeys(t *testing.T) {
	km := DefaultKeyMap()
	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
					t.Errorf("binding %q uses digit key %q", b.Help().Desc, k)
				}
			}
		}
	}
}

func TestKeyMap_ShortHelpIsSubsetOfFullHelp(t *testing.T) {
	km := DefaultKeyMap()
	var full []string
	for _, group := range km.FullHelp() {
		for _, b := range group {
			full = append(full, b.Help().Key)
		}
	}
	for _, b := range km.ShortHelp() {
		if !slices.Contains(full, b.Help().Key) {
			t.Errorf("short help key %q missing from full help", b.Help().Key)
		}
	}
}
