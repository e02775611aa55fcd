package detail

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/history"
	"tableflip.dev/nodewatch/pkg/tui/events"
	"tableflip.dev/nodewatch/pkg/tui/theme"
)

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(press(string(r)))
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 7}, 10); got != "▁█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}, 10); got != "▄▄▄" {
		t.Fatalf("flat series should render mid blocks, got %q", got)
	}
	if got := Sparkline([]float64{0, 1, 2, 3}, 2); len([]rune(got)) != 2 {
		t.Fatalf("expected sampling down to width, got %q", got)
	}
	if Sparkline(nil, 10) != "" {
		t.Fatalf("empty series renders nothing")
	}
}

func TestScheduleFormSubmits(t *testing.T) {
	m := New(theme.Default().Detail)
	m.SetSize(60, 30)
	m.Show(device.Record{MAC: "aa", Vendor: "Apple"}, true, nil, nil)

	m.BeginEdit()
	typeText(m, "22:00")
	m.Update(press("tab"))
	typeText(m, "6:30")

	_, cmd := m.Update(press("enter"))
	if cmd == nil {
		t.Fatalf("expected submit command")
	}
	msg, ok := cmd().(events.ScheduleSubmitMsg)
	if !ok {
		t.Fatalf("unexpected message %#v", msg)
	}
	if msg.MAC != "aa" || msg.Start != "22:00" || msg.End != "06:30" {
		t.Fatalf("unexpected schedule %+v", msg)
	}
	if m.Editing() {
		t.Fatalf("form should close after submit")
	}
}

func TestScheduleFormRejectsBadClock(t *testing.T) {
	m := New(theme.Default().Detail)
	m.SetSize(60, 30)
	m.Show(device.Record{MAC: "aa"}, true, nil, nil)

	m.BeginEdit()
	typeText(m, "25:00")
	_, cmd := m.Update(press("enter"))
	if cmd != nil {
		t.Fatalf("invalid clock should not submit")
	}
	if !m.Editing() {
		t.Fatalf("form should stay open on error")
	}
	if !strings.Contains(m.View(), "start:") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}

	m.Update(press("esc"))
	if m.Editing() {
		t.Fatalf("esc should cancel the form")
	}
}

func erase(m *Model, n int) {
	for i := 0; i < n; i++ {
		m.Update(press("backspace"))
	}
}

func TestScheduleFormClearsWindow(t *testing.T) {
	m := New(theme.Default().Detail)
	m.SetSize(60, 30)
	m.Show(device.Record{MAC: "aa", ScheduleStart: "22:00", ScheduleEnd: "06:00"}, true, nil, nil)

	m.BeginEdit()
	erase(m, 5)
	m.Update(press("tab"))
	erase(m, 5)

	_, cmd := m.Update(press("enter"))
	if cmd == nil {
		t.Fatalf("blank window should submit a clear")
	}
	msg, ok := cmd().(events.ScheduleSubmitMsg)
	if !ok {
		t.Fatalf("unexpected message %#v", msg)
	}
	if msg.MAC != "aa" || msg.Start != "" || msg.End != "" {
		t.Fatalf("expected an empty window, got %+v", msg)
	}
}

func TestScheduleFormRejectsHalfWindow(t *testing.T) {
	m := New(theme.Default().Detail)
	m.SetSize(60, 30)
	m.Show(device.Record{MAC: "aa", ScheduleStart: "22:00", ScheduleEnd: "06:00"}, true, nil, nil)

	m.BeginEdit()
	m.Update(press("tab"))
	erase(m, 5)

	_, cmd := m.Update(press("enter"))
	if cmd != nil {
		t.Fatalf("a window with one blank end should not submit")
	}
	if !strings.Contains(m.View(), "end:") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
}

func TestViewShowsActivityAndGoneState(t *testing.T) {
	m := New(theme.Default().Detail)
	m.SetSize(60, 30)
	m.Show(device.Record{MAC: "aa", Vendor: "Apple", ScheduleStart: "22:00", ScheduleEnd: "06:00"}, false,
		[]string{"example.com", "api.test"},
		[]history.Point{{Label: "10:00:00", Up: 1, Down: 2}, {Label: "10:00:01", Up: 3, Down: 1}})

	view := m.View()
	for _, want := range []string{"Apple (gone)", "example.com", "api.test", "22:00-06:00", "10:00:00"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}
