package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard key bindings with built-in help text.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	NextCategory key.Binding
	PrevCategory key.Binding

	Open    key.Binding
	Refresh key.Binding
	Jump    key.Binding
	Help    key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "K", "w", "W"),
			key.WithHelp("↑/k/w", "select previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "J", "s", "S"),
			key.WithHelp("↓/j/s", "select next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("shift+up", "pgup"),
			key.WithHelp("shift+↑/pgup", "jump up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("shift+down", "pgdown"),
			key.WithHelp("shift+↓/pgdn", "jump down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),

		NextCategory: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev category"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter", "o", "O", " "),
			key.WithHelp("enter/o", "open or summarize"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "R"),
			key.WithHelp("r", "refresh"),
		),
		Jump: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "select by number"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "H", "?"),
			key.WithHelp("h/?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
