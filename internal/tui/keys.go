package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	// User roster
	Verify key.Binding

	// Signal desk
	ToggleFlag  key.Binding
	CyclePair   key.Binding
	CycleExpiry key.Binding
	Suggest     key.Binding

	// Chat
	Reset key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	Verify: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "verify selected")),

	ToggleFlag:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle auto-suggestions")),
	CyclePair:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle pair")),
	CycleExpiry: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "cycle expiry")),
	Suggest:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),

	Reset: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset conversation")),
}
