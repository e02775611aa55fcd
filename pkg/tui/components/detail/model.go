// Package detail renders the inspector for the selected device: its
// attributes, bandwidth sparklines, recent domains and the schedule form.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/history"
	"tableflip.dev/nodewatch/pkg/timeutil"
	"tableflip.dev/nodewatch/pkg/tui/events"
	"tableflip.dev/nodewatch/pkg/tui/theme"
	"tableflip.dev/nodewatch/pkg/tui/ui"
)

type field int

const (
	fieldStart field = iota
	fieldEnd
)

// Model is the detail pane.
type Model struct {
	id     events.ComponentID
	styles theme.DetailTheme

	record   device.Record
	present  bool
	activity []string
	series   []history.Point

	editing bool
	focus   field
	start   textinput.Model
	end     textinput.Model
	formErr string

	upRamp   []lipgloss.Style
	downRamp []lipgloss.Style

	width  int
	height int
}

// New returns an empty detail pane.
func New(styles theme.DetailTheme) *Model {
	newInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Prompt = ""
		in.CharLimit = 5
		in.SetWidth(6)
		return in
	}
	return &Model{
		id:       events.ComponentID("detail"),
		styles:   styles,
		start:    newInput("HH:MM"),
		end:      newInput("HH:MM"),
		upRamp:   gradient(styles.UpFrom, styles.UpTo),
		downRamp: gradient(styles.DownFrom, styles.DownTo),
	}
}

// ID returns the component identifier used in emitted events.
func (m *Model) ID() events.ComponentID { return m.id }

// Show replaces what the pane displays. present is false once the device has
// dropped out of the authoritative set.
func (m *Model) Show(rec device.Record, present bool, activity []string, series []history.Point) {
	m.record = rec
	m.present = present
	m.activity = activity
	m.series = series
}

// Record returns the device being shown.
func (m *Model) Record() device.Record { return m.record }

// Editing reports whether the schedule form has the keyboard.
func (m *Model) Editing() bool { return m.editing }

// BeginEdit opens the schedule form prefilled with the current window.
func (m *Model) BeginEdit() tea.Cmd {
	m.editing = true
	m.formErr = ""
	m.start.SetValue(m.record.ScheduleStart)
	m.end.SetValue(m.record.ScheduleEnd)
	m.focus = fieldStart
	m.end.Blur()
	return m.start.Focus()
}

// CancelEdit closes the schedule form without submitting.
func (m *Model) CancelEdit() {
	m.editing = false
	m.formErr = ""
	m.start.Blur()
	m.end.Blur()
}

// Focus implements ui.Focusable.
func (m *Model) Focus() tea.Cmd { return m.BeginEdit() }

// Blur implements ui.Focusable.
func (m *Model) Blur() { m.CancelEdit() }

// Focused implements ui.Focusable.
func (m *Model) Focused() bool { return m.editing }

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component. Only the schedule form consumes keys.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !m.editing {
		return m, nil
	}

	switch key.String() {
	case "tab", "shift+tab":
		return m, m.toggleField()
	case "esc":
		m.CancelEdit()
		return m, nil
	case "enter":
		return m, m.submit()
	}

	var cmd tea.Cmd
	if m.focus == fieldStart {
		m.start, cmd = m.start.Update(msg)
	} else {
		m.end, cmd = m.end.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleField() tea.Cmd {
	if m.focus == fieldStart {
		m.focus = fieldEnd
		m.start.Blur()
		return m.end.Focus()
	}
	m.focus = fieldStart
	m.end.Blur()
	return m.start.Focus()
}

func (m *Model) submit() tea.Cmd {
	start, end, err := timeutil.NormalizeWindow(m.start.Value(), m.end.Value())
	if err != nil {
		m.formErr = err.Error()
		return nil
	}
	mac := m.record.MAC
	m.CancelEdit()
	return events.ScheduleSubmitCmd(m.id, mac, start, end)
}

// SetSize implements ui.Component.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 20)
	m.height = max(height, 8)
}

// View implements ui.Component.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	inner := max(m.width-m.styles.Frame.GetHorizontalFrameSize(), 1)
	innerHeight := max(m.height-m.styles.Frame.GetVerticalFrameSize(), 1)

	rec := m.record
	title := rec.Vendor
	if title == "" {
		title = rec.MAC
	}
	if !m.present {
		title += " (gone)"
	}

	lines := []string{
		m.styles.Title.Render(clip(title, inner)),
		m.pair("MAC", rec.MAC, inner),
		m.pair("IP", rec.Address(), inner),
		m.pair("Type", rec.Status(), inner),
		m.pair("Rule", scheduleLabel(rec), inner),
		"",
	}

	up, down := make([]float64, len(m.series)), make([]float64, len(m.series))
	for i, p := range m.series {
		up[i], down[i] = p.Up, p.Down
	}
	sparkWidth := max(inner-16, 4)
	lines = append(lines,
		m.styles.Label.Render(fmt.Sprintf("UP   %7.1f ", rec.UpRate))+colorSparkline(up, sparkWidth, m.upRamp),
		m.styles.Label.Render(fmt.Sprintf("DOWN %7.1f ", rec.DownRate))+colorSparkline(down, sparkWidth, m.downRamp),
	)
	if n := len(m.series); n > 0 {
		lines = append(lines, m.styles.Label.Render(clip(fmt.Sprintf("%s … %s", m.series[0].Label, m.series[n-1].Label), inner)))
	}
	lines = append(lines, "")

	if m.editing {
		lines = append(lines, m.form(inner)...)
	}

	lines = append(lines, m.styles.Label.Render("Recent activity"))
	if len(m.activity) == 0 {
		lines = append(lines, m.styles.Label.Render("  none yet"))
	}
	for _, domain := range m.activity {
		if len(lines) >= innerHeight {
			break
		}
		lines = append(lines, m.styles.Domain.Render(clip("  "+domain, inner)))
	}
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}

	body := strings.Join(lines, "\n")
	return m.styles.Frame.Width(m.width).Height(m.height).Render(body)
}

func (m *Model) form(width int) []string {
	startLabel, endLabel := m.styles.Label, m.styles.Label
	if m.focus == fieldStart {
		startLabel = m.styles.Focused
	} else {
		endLabel = m.styles.Focused
	}
	lines := []string{
		startLabel.Render("Start ") + m.styles.Input.Render(m.start.View()),
		endLabel.Render("End   ") + m.styles.Input.Render(m.end.View()),
		m.styles.Label.Render(clip("tab switch · enter save · blank both to clear · esc cancel", width)),
	}
	if m.formErr != "" {
		lines = append(lines, m.styles.Focused.Render(clip(m.formErr, width)))
	}
	return append(lines, "")
}

func (m *Model) pair(label, value string, width int) string {
	l := m.styles.Label.Render(fmt.Sprintf("%-5s ", label))
	return l + m.styles.Value.Render(clip(value, max(width-6, 1)))
}

func scheduleLabel(rec device.Record) string {
	if !rec.HasSchedule() {
		return "none"
	}
	return fmt.Sprintf("blocked %s-%s", rec.ScheduleStart, rec.ScheduleEnd)
}

func clip(s string, width int) string {
	return truncate.StringWithTail(s, uint(max(width, 1)), "…")
}
