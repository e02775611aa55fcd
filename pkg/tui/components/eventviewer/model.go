package eventviewer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"tableflip.dev/nodewatch/pkg/logging"
	"tableflip.dev/nodewatch/pkg/tui/theme"
	"tableflip.dev/nodewatch/pkg/tui/ui"
)

// Level indicates the severity of a logged event.
type Level int

const (
	// LevelInfo is the default severity.
	LevelInfo Level = iota
	// LevelWarn highlights potential issues.
	LevelWarn
	// LevelError highlights failures.
	LevelError
)

// Entry captures a rendered event.
type Entry struct {
	Timestamp time.Time
	Source    string
	Summary   string
	Detail    string
	Level     Level
}

// FromLog converts a captured log line into an entry.
func FromLog(e logging.Entry) Entry {
	level := LevelInfo
	switch {
	case e.Level <= logrus.ErrorLevel:
		level = LevelError
	case e.Level == logrus.WarnLevel:
		level = LevelWarn
	}
	source := "log"
	if c, ok := e.Fields["component"].(string); ok && c != "" {
		source = c
	}
	detail := ""
	if err, ok := e.Fields[logrus.ErrorKey]; ok {
		detail = fmt.Sprint(err)
	}
	return Entry{Timestamp: e.Time, Source: source, Summary: e.Message, Detail: detail, Level: level}
}

// Model renders a streaming event log, newest first.
type Model struct {
	viewport viewport.Model
	entries  []Entry

	maxEntries int
	followTop  bool
	warnings   int
	errors     int

	width  int
	height int

	styles theme.EventsTheme
}

// NewModel constructs an event viewer capped at maxEntries.
func NewModel(maxEntries int, styles theme.EventsTheme) *Model {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &Model{
		viewport:   viewport.New(viewport.WithWidth(1), viewport.WithHeight(1)),
		maxEntries: maxEntries,
		followTop:  true,
		styles:     styles,
	}
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component. Scrolling away from the top stops the log
// from jumping back to the newest entry until it is scrolled back up.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	m.followTop = m.viewport.AtTop()
	return m, cmd
}

// Len returns the number of retained entries.
func (m *Model) Len() int { return len(m.entries) }

// SetSize resizes the viewport while keeping the header + border intact.
func (m *Model) SetSize(width, height int) {
	if width < 4 {
		width = 4
	}
	if height < 3 {
		height = 3
	}
	if m.width == width && m.height == height {
		return
	}
	m.width = width
	m.height = height

	innerWidth := max(1, width-2)
	innerHeight := max(1, height-2)
	headerRows := 1
	m.viewport.SetWidth(innerWidth)
	m.viewport.SetHeight(max(1, innerHeight-headerRows))
	m.refreshContent()
}

// View renders the bordered viewport.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.styles.Header.Render(m.title())
	body := lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
	return m.styles.Frame.Width(m.width).Height(m.height).Render(body)
}

// Append inserts a new entry at the top of the log.
func (m *Model) Append(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Source == "" {
		entry.Source = "ui"
	}
	if entry.Summary == "" {
		entry.Summary = "event"
	}
	m.entries = append([]Entry{entry}, m.entries...)
	m.count(entry, 1)
	if len(m.entries) > m.maxEntries {
		for _, dropped := range m.entries[m.maxEntries:] {
			m.count(dropped, -1)
		}
		m.entries = m.entries[:m.maxEntries]
	}
	m.refreshContent()
	if m.followTop {
		m.viewport.SetYOffset(0)
	}
}

// Problems returns how many retained entries are warnings and errors.
func (m *Model) Problems() (warnings, errors int) { return m.warnings, m.errors }

func (m *Model) count(e Entry, delta int) {
	switch e.Level {
	case LevelWarn:
		m.warnings += delta
	case LevelError:
		m.errors += delta
	}
}

func (m *Model) title() string {
	title := fmt.Sprintf("Events (%d)", len(m.entries))
	if m.errors > 0 {
		title += fmt.Sprintf("  %d failed", m.errors)
	}
	if m.warnings > 0 {
		title += fmt.Sprintf("  %d warnings", m.warnings)
	}
	return title
}

func (m *Model) refreshContent() {
	lines := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		lines = append(lines, m.renderEntry(entry))
	}
	content := strings.Join(lines, "\n")
	if content == "" {
		content = m.styles.Timestamp.Render("No events yet")
	}
	m.viewport.SetContent(content)
}

func (m *Model) renderEntry(entry Entry) string {
	ts := m.styles.Timestamp.Render(entry.Timestamp.Format("15:04:05.000"))
	source := m.styles.Source.Render(fmt.Sprintf("[%s]", entry.Source))
	msg := entry.Summary
	if entry.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, entry.Detail)
	}
	switch entry.Level {
	case LevelWarn:
		msg = m.styles.Warn.Render(msg)
	case LevelError:
		msg = m.styles.Error.Render(msg)
	default:
		msg = m.styles.Info.Render(msg)
	}
	return fmt.Sprintf("%s %s %s", ts, source, msg)
}
