// Package ui holds the color themes shared by the CLI presenters and the
// dashboard. ANSI codes come from the active Theme; the dashboard uses the
// lipgloss palette returned by GetCurrentTUITheme.
package ui
