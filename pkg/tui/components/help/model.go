// Package help renders the key map overlay.
package help

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"

	"tableflip.dev/nodewatch/pkg/tui/ui"
)

//go:embed help.md
var keyMap string

// Model shows the key map inside a scrollable, bordered viewport.
type Model struct {
	viewport viewport.Model
	frame    lipgloss.Style

	server string
	width  int
	height int
	wrap   int
	err    error
}

// New builds the overlay. server is shown in the footer so it is clear which
// backend the dashboard is talking to.
func New(width, height int, server string) *Model {
	vp := viewport.New(viewport.WithWidth(1), viewport.WithHeight(1))
	vp.MouseWheelEnabled = true
	m := &Model{
		viewport: vp,
		frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
		server:   server,
	}
	m.SetSize(width, height)
	return m
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update forwards scrolling to the viewport.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

func (m *Model) View() string {
	body := m.viewport.View()
	if body == "" && m.err != nil {
		body = "help unavailable: " + m.err.Error()
	}
	return m.frame.Width(m.width).Height(m.height).Render(body)
}

// SetSize clamps to a usable minimum and re-renders only when the wrap width
// changes.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 32)
	m.height = max(height, 8)

	innerWidth := max(m.width-m.frame.GetHorizontalFrameSize(), 1)
	innerHeight := max(m.height-m.frame.GetVerticalFrameSize(), 1)
	m.viewport.SetWidth(innerWidth)
	m.viewport.SetHeight(innerHeight)

	if innerWidth != m.wrap {
		m.wrap = innerWidth
		m.render()
	}
}

func (m *Model) render() {
	content, err := Render(m.server, max(m.wrap, 10))
	if err != nil {
		m.err = err
		m.viewport.SetContent("help unavailable: " + err.Error())
		return
	}
	m.err = nil
	m.viewport.SetContent(content)
	m.viewport.SetYOffset(0)
}

// Render returns the key map as plain text wrapped to width.
func Render(server string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	doc := strings.TrimSpace(keyMap)
	if server != "" {
		doc += fmt.Sprintf("\n\n---\n\nBackend: `%s`\n", server)
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return "", err
	}
	// The frame and the viewport measure cells; escape codes would throw off both.
	return stripANSI(out), nil
}

func stripANSI(s string) string {
	var b strings.Builder
	inSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			inSeq = true
			continue
		}
		if inSeq {
			if ansi.IsTerminator(r) {
				inSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
