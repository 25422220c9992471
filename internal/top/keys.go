package top

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit key.Binding
	Sort key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Sort: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by usage/name")),
}
