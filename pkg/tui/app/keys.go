package app

import (
	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
)

type keyMap struct {
	ForceQuit  key.Binding
	Quit       key.Binding
	Open       key.Binding
	Close      key.Binding
	Edit       key.Binding
	Block      key.Binding
	KillSwitch key.Binding
	ActiveOnly key.Binding
	Events     key.Binding
	Settings   key.Binding
	Help       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Open:       key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter", "inspect")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "schedule")),
		Block:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "block")),
		KillSwitch: key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "kill switch")),
		ActiveOnly: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "active only")),
		Events:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "events")),
		Settings:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// hints returns the bindings worth advertising in the status bar for mode.
func (k keyMap) hints(m mode) []key.Binding {
	switch m {
	case modeDetail:
		return []key.Binding{k.Close, k.Edit, k.Block, k.Help}
	case modeSettings, modeHelp:
		return []key.Binding{k.Close}
	}
	return []key.Binding{k.Open, k.Block, k.KillSwitch, k.ActiveOnly, k.Help, k.Quit}
}

func newHint() help.Model {
	h := help.New()
	h.ShortSeparator = "  "
	return h
}
