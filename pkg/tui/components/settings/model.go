package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/tui/events"
	"tableflip.dev/nodewatch/pkg/tui/theme"
	"tableflip.dev/nodewatch/pkg/tui/ui"
)

// Scan interval bounds, in seconds.
const (
	MinScanInterval  = control.MinScanInterval
	MaxScanInterval  = control.MaxScanInterval
	ScanIntervalStep = 5
)

type row int

const (
	rowInterface row = iota
	rowInterval
	rowParanoid
	rowCount
)

// Model edits the backend settings. The values are only sent on enter.
type Model struct {
	id     events.ComponentID
	styles theme.ModalTheme

	loaded     bool
	settings   control.Settings
	interfaces []string
	cursor     row

	width  int
	height int
}

// New returns a settings editor waiting for Load.
func New(styles theme.ModalTheme) *Model {
	return &Model{id: events.ComponentID("settings"), styles: styles}
}

// ID returns the component identifier used in emitted events.
func (m *Model) ID() events.ComponentID { return m.id }

// Reset marks the editor as loading; it ignores keys until Load.
func (m *Model) Reset() {
	m.loaded = false
	m.cursor = rowInterface
}

// Load fills the editor from the backend's current settings.
func (m *Model) Load(view control.SettingsView) {
	m.settings = view.Settings
	m.interfaces = append([]string(nil), view.Interfaces...)
	if m.settings.Interface != "" && !contains(m.interfaces, m.settings.Interface) {
		m.interfaces = append([]string{m.settings.Interface}, m.interfaces...)
	}
	m.settings.ScanInterval = clampInterval(m.settings.ScanInterval)
	m.loaded = true
}

// Loaded reports whether settings have arrived.
func (m *Model) Loaded() bool { return m.loaded }

// Settings returns the edited values.
func (m *Model) Settings() control.Settings { return m.settings }

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "s", "q":
		return m, events.CloseCmd(m.id)
	}
	if !m.loaded {
		return m, nil
	}

	switch key.String() {
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor + rowCount - 1) % rowCount
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % rowCount
	case "left", "h", "-":
		m.adjust(-1)
	case "right", "l", "+", "=":
		m.adjust(1)
	case "space", " ", "p":
		if key.String() != "p" || m.cursor == rowParanoid {
			m.adjust(1)
		}
	case "enter":
		return m, events.SettingsSubmitCmd(m.id, m.settings)
	}
	return m, nil
}

func (m *Model) adjust(dir int) {
	switch m.cursor {
	case rowInterface:
		if len(m.interfaces) == 0 {
			return
		}
		i := indexOf(m.interfaces, m.settings.Interface)
		i = (i + dir + len(m.interfaces)) % len(m.interfaces)
		m.settings.Interface = m.interfaces[i]
	case rowInterval:
		m.settings.ScanInterval = clampInterval(m.settings.ScanInterval + dir*ScanIntervalStep)
	case rowParanoid:
		m.settings.ParanoidMode = !m.settings.ParanoidMode
	}
}

// SetSize implements ui.Component.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View implements ui.Component.
func (m *Model) View() string {
	lines := []string{m.styles.Title.Render("SYSTEM CONFIG"), ""}
	if !m.loaded {
		lines = append(lines, m.styles.Body.Render("loading…"))
	} else {
		iface := m.settings.Interface
		if iface == "" {
			iface = "(none)"
		}
		paranoid := "OFF"
		if m.settings.ParanoidMode {
			paranoid = "ON"
		}
		lines = append(lines,
			m.line(rowInterface, "Interface", "‹ "+iface+" ›"),
			m.line(rowInterval, "Scan interval", fmt.Sprintf("‹ %ds ›", m.settings.ScanInterval)),
			m.line(rowParanoid, "Paranoid mode", paranoid),
		)
	}
	lines = append(lines, "", m.styles.Body.Render("←/→ change · enter save · esc close"))
	frame := m.styles.Frame
	if m.width > 0 {
		frame = frame.Width(m.width)
	}
	return frame.Render(strings.Join(lines, "\n"))
}

func (m *Model) line(r row, label, value string) string {
	text := fmt.Sprintf("%-14s %s", label, value)
	if r == m.cursor {
		return m.styles.Selected.Render("> " + text)
	}
	return m.styles.Body.Render("  " + text)
}

func clampInterval(v int) int {
	return max(MinScanInterval, min(v, MaxScanInterval))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
