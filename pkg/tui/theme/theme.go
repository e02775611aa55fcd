package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	Table  TableTheme
	Detail DetailTheme
	Status StatusTheme
	Modal  ModalTheme
	Events EventsTheme
}

// HeaderTheme styles the title bar.
type HeaderTheme struct {
	Title  lipgloss.Style
	Server lipgloss.Style
}

// TableTheme styles the device list.
type TableTheme struct {
	Heading   lipgloss.Style
	Row       lipgloss.Style
	Cursor    lipgloss.Style
	Stale     lipgloss.Style
	Blocked   lipgloss.Style
	Scheduled lipgloss.Style
	Empty     lipgloss.Style
}

// DetailTheme styles the device inspector.
type DetailTheme struct {
	Frame   lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Domain  lipgloss.Style
	Input   lipgloss.Style
	Focused lipgloss.Style
	// UpFrom/UpTo and DownFrom/DownTo are the sparkline gradient ends.
	UpFrom, UpTo     string
	DownFrom, DownTo string
}

// StatusTheme styles the bottom status bar.
type StatusTheme struct {
	Bar        lipgloss.Style
	Live       lipgloss.Style
	Connecting lipgloss.Style
	Offline    lipgloss.Style
	Notice     lipgloss.Style
	Error      lipgloss.Style
	Kill       lipgloss.Style
	Muted      lipgloss.Style
}

// ModalTheme styles centered modal overlays (settings).
type ModalTheme struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Body     lipgloss.Style
	Selected lipgloss.Style
}

// EventsTheme styles the event log strip.
type EventsTheme struct {
	Frame     lipgloss.Style
	Header    lipgloss.Style
	Info      lipgloss.Style
	Warn      lipgloss.Style
	Error     lipgloss.Style
	Timestamp lipgloss.Style
	Source    lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("42")
	alert := lipgloss.Color("#FF5F5F")
	muted := lipgloss.Color("244")

	return Theme{
		Header: HeaderTheme{
			Title:  lipgloss.NewStyle().Bold(true).Foreground(accent),
			Server: lipgloss.NewStyle().Foreground(muted),
		},
		Table: TableTheme{
			Heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("248")),
			Row:       lipgloss.NewStyle(),
			Cursor:    lipgloss.NewStyle().Reverse(true),
			Stale:     lipgloss.NewStyle().Faint(true),
			Blocked:   lipgloss.NewStyle().Foreground(alert).Bold(true),
			Scheduled: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
			Empty:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		},
		Detail: DetailTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1),
			Title:    lipgloss.NewStyle().Bold(true),
			Label:    lipgloss.NewStyle().Foreground(muted),
			Value:    lipgloss.NewStyle(),
			Domain:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			Input:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			Focused:  lipgloss.NewStyle().Foreground(accent).Bold(true),
			UpFrom:   "#1D6F42",
			UpTo:     "#5AF78E",
			DownFrom: "#1B4F8A",
			DownTo:   "#57C7FF",
		},
		Status: StatusTheme{
			Bar:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
			Live:       lipgloss.NewStyle().Foreground(accent).Bold(true),
			Connecting: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
			Offline:    lipgloss.NewStyle().Foreground(alert).Bold(true),
			Notice:     lipgloss.NewStyle().Foreground(accent).Reverse(true),
			Error:      lipgloss.NewStyle().Foreground(alert).Reverse(true),
			Kill:       lipgloss.NewStyle().Foreground(alert).Bold(true).Blink(true),
			Muted:      lipgloss.NewStyle().Foreground(muted),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title:    lipgloss.NewStyle().Bold(true),
			Body:     lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		},
		Events: EventsTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")),
			Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("248")),
			Info:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			Warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
			Error:     lipgloss.NewStyle().Foreground(alert),
			Timestamp: lipgloss.NewStyle().Foreground(muted),
			Source:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}
