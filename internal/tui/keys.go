package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Next    key.Binding
	Prev    key.Binding
	First   key.Binding
	Last    key.Binding
	Filter  key.Binding
	Mark    key.Binding
	Refresh key.Binding
	Open    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	Next:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "down")),
	Prev:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "up")),
	First:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
	Last:    key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
	Filter:  key.NewBinding(key.WithKeys("f", "F"), key.WithHelp("f", "history/missed")),
	Mark:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "mark user dismissed")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
}
