package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the keys handled before the configurable bindings see them.
type keyMap struct {
	CtrlC key.Binding
}

var hardKeys = keyMap{
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}
