package ui

import tea "github.com/charmbracelet/bubbletea/v2"

// Component defines the contract for the panes composed by the root model.
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Focusable is implemented by components that capture keystrokes while
// focused, such as forms with text inputs.
type Focusable interface {
	Focus() tea.Cmd
	Blur()
	Focused() bool
}
