// Package devicetable renders the reconciled device list. Rows are cached per
// entry revision so an update only re-renders the rows it touched.
package devicetable

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/nodewatch/pkg/reconcile"
	"tableflip.dev/nodewatch/pkg/timeutil"
	"tableflip.dev/nodewatch/pkg/tui/events"
	"tableflip.dev/nodewatch/pkg/tui/theme"
	"tableflip.dev/nodewatch/pkg/tui/ui"
)

// ScheduledLabel flags a device whose access window is currently closed.
const ScheduledLabel = "SCHED"

type cachedRow struct {
	revision  int
	width     int
	cursor    bool
	scheduled bool
	line      string
}

// Model is the device list pane.
type Model struct {
	id     events.ComponentID
	styles theme.TableTheme

	entries []reconcile.Entry
	cache   map[string]cachedRow

	cursor int
	offset int
	width  int
	height int

	now     func() time.Time
	renders int
}

// New returns an empty table.
func New(styles theme.TableTheme) *Model {
	return &Model{
		id:     events.ComponentID("devices"),
		styles: styles,
		cache:  make(map[string]cachedRow),
		now:    time.Now,
	}
}

// SetClock overrides the clock used for the schedule indicator.
func (m *Model) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// ID returns the component identifier used in emitted events.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.Component. It handles cursor movement.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	before := m.selectedKey()
	switch key.String() {
	case "j", "down":
		m.Move(1)
	case "k", "up":
		m.Move(-1)
	case "g", "home":
		m.Move(-len(m.entries))
	case "G", "end":
		m.Move(len(m.entries))
	case "pgdown":
		m.Move(m.pageRows())
	case "pgup":
		m.Move(-m.pageRows())
	default:
		return m, nil
	}
	if after := m.selectedKey(); after != "" && after != before {
		return m, events.DeviceHighlightCmd(m.id, after)
	}
	return m, nil
}

// SetSize implements ui.Component.
func (m *Model) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = max(width, 1)
	m.height = max(height, 2)
	m.ensureVisible()
}

// SetEntries replaces the visible rows with entries, which are expected in
// rendered order. Cached lines for removed or hidden keys are dropped; every
// other row is re-rendered only if its revision moved.
func (m *Model) SetEntries(entries []reconcile.Entry, diff reconcile.Diff) {
	selected := m.selectedKey()

	for _, key := range diff.Removed {
		delete(m.cache, key)
	}
	for _, key := range diff.Hidden {
		delete(m.cache, key)
	}

	// A vanished selection keeps its row index.
	m.entries = entries
	if selected != "" {
		for i, e := range entries {
			if e.Key == selected {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
	m.ensureVisible()
}

// Selected returns the entry under the cursor.
func (m *Model) Selected() (reconcile.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return reconcile.Entry{}, false
	}
	return m.entries[m.cursor], true
}

// Len returns the number of visible rows.
func (m *Model) Len() int { return len(m.entries) }

// Renders returns how many row lines have been rendered so far.
func (m *Model) Renders() int { return m.renders }

// Move shifts the cursor by delta rows, clamped to the list.
func (m *Model) Move(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.ensureVisible()
}

// View implements ui.Component.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	lines := make([]string, 0, m.height)
	lines = append(lines, m.styles.Heading.Render(m.layout().heading(m.width)))

	if len(m.entries) == 0 {
		lines = append(lines, m.styles.Empty.Render(fit("waiting for devices…", m.width)))
	}

	now := m.now()
	end := min(len(m.entries), m.offset+m.pageRows())
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.row(m.entries[i], i == m.cursor, now))
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) row(e reconcile.Entry, cursor bool, now time.Time) string {
	rec := e.Record
	scheduled := false
	if !rec.Blocked && rec.HasSchedule() {
		if in, err := timeutil.InWindow(rec.ScheduleStart, rec.ScheduleEnd, now); err == nil {
			scheduled = in
		}
	}

	if c, ok := m.cache[e.Key]; ok && c.revision == e.Revision && c.width == m.width && c.cursor == cursor && c.scheduled == scheduled {
		return c.line
	}

	cols := m.layout()
	status := fit(rec.Status(), cols.category)
	if rec.Blocked {
		status = m.styles.Blocked.Render(status)
	}
	flags := fit("", cols.flags)
	if scheduled {
		flags = m.styles.Scheduled.Render(fit(ScheduledLabel, cols.flags))
	}

	text := strings.Join([]string{
		fit(rec.Address(), cols.ip),
		fit(rec.MAC, cols.mac),
		fit(rec.Vendor, cols.vendor),
		status,
		fitRight(rate(rec.UpRate), cols.rate),
		fitRight(rate(rec.DownRate), cols.rate),
		flags,
	}, " ")

	style := m.styles.Row
	if rec.Stale {
		style = m.styles.Stale
	}
	if cursor {
		style = style.Inherit(m.styles.Cursor)
	}
	line := style.Render(text)

	m.renders++
	m.cache[e.Key] = cachedRow{revision: e.Revision, width: m.width, cursor: cursor, scheduled: scheduled, line: line}
	return line
}

func (m *Model) selectedKey() string {
	if e, ok := m.Selected(); ok {
		return e.Key
	}
	return ""
}

func (m *Model) pageRows() int {
	return max(m.height-1, 1)
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) ensureVisible() {
	rows := m.pageRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if maxOffset := max(len(m.entries)-rows, 0); m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

type columns struct {
	ip, mac, vendor, category, rate, flags int
}

func (m *Model) layout() columns {
	c := columns{ip: 15, mac: 17, rate: 9, flags: len(ScheduledLabel)}
	fixed := c.ip + c.mac + 2*c.rate + c.flags + 6
	rest := max(m.width-fixed, 16)
	c.category = max(rest*2/5, len("TERMINATED"))
	c.vendor = max(rest-c.category, 6)
	return c
}

func (c columns) heading(width int) string {
	text := strings.Join([]string{
		fit("IP", c.ip),
		fit("MAC", c.mac),
		fit("VENDOR", c.vendor),
		fit("CATEGORY", c.category),
		fitRight("UP KB/s", c.rate),
		fitRight("DOWN KB/s", c.rate),
		fit("", c.flags),
	}, " ")
	return fit(text, width)
}

func rate(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return padding.String(truncate.StringWithTail(s, uint(width), "…"), uint(width))
}

func fitRight(s string, width int) string {
	s = truncate.StringWithTail(s, uint(width), "…")
	if pad := width - len([]rune(s)); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}
