package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the chat screen.
type KeyMap struct {
	Quit       key.Binding
	Send       key.Binding
	Stop       key.Binding
	Listen     key.Binding
	ToggleMute key.Binding
	ToggleMode key.Binding
	Clear      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop"),
		),
		Listen: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "speak"),
		),
		ToggleMute: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "mute"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "cloud/local"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "page down"),
		),
	}
}

// ShortHelp returns key bindings for the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Stop, k.Listen, k.ToggleMute, k.ToggleMode, k.Quit}
}
