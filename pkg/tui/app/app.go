// Package app is the root Bubble Tea model. It owns the reconciler, the
// history tracker and the dispatcher, and routes every message through a
// single Update so none of them need locking against the UI.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/dispatch"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/history"
	"tableflip.dev/nodewatch/pkg/reconcile"
	"tableflip.dev/nodewatch/pkg/store"
	"tableflip.dev/nodewatch/pkg/tui/components/detail"
	"tableflip.dev/nodewatch/pkg/tui/components/devicetable"
	"tableflip.dev/nodewatch/pkg/tui/components/eventviewer"
	helpview "tableflip.dev/nodewatch/pkg/tui/components/help"
	"tableflip.dev/nodewatch/pkg/tui/components/settings"
	"tableflip.dev/nodewatch/pkg/tui/events"
	"tableflip.dev/nodewatch/pkg/tui/theme"
	"tableflip.dev/nodewatch/pkg/tui/ui/overlay"
)

type mode int

const (
	modeList mode = iota
	modeDetail
	modeSettings
	modeHelp
)

type prefsSavedMsg struct {
	err error
}

// Options wire the model to its collaborators.
type Options struct {
	Dispatcher  *dispatch.Dispatcher
	Persistence store.Persistence
	Preferences store.Preferences
	Server      string
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

// Model composes the device table, detail pane, settings editor, help and
// event log.
type Model struct {
	width  int
	height int

	mode     mode
	underlay mode

	recon    *reconcile.Reconciler
	tracker  *history.Tracker
	dispatch *dispatch.Dispatcher

	table    *devicetable.Model
	detail   *detail.Model
	settings *settings.Model
	help     *helpview.Model
	events   *eventviewer.Model

	link   feed.State
	prefs  store.Preferences
	store  store.Persistence
	server string

	keys  keyMap
	hint  help.Model
	theme theme.Theme
	log   logrus.FieldLogger
	now   func() time.Time
}

// New constructs the root model.
func New(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	th := theme.Default()

	tracker := history.NewTracker()
	tracker.Now = now

	table := devicetable.New(th.Table)
	table.SetClock(now)

	m := &Model{
		recon:    reconcile.New(reconcile.Filter{ActiveOnly: opts.Preferences.ActiveOnly}),
		tracker:  tracker,
		dispatch: opts.Dispatcher,
		table:    table,
		detail:   detail.New(th.Detail),
		settings: settings.New(th.Modal),
		link:     feed.StateConnecting,
		prefs:    opts.Preferences,
		store:    opts.Persistence,
		server:   opts.Server,
		keys:     defaultKeys(),
		hint:     newHint(),
		theme:    th,
		log:      log.WithField("component", "ui"),
		now:      now,
	}
	if m.prefs.ShowEvents {
		m.events = eventviewer.NewModel(400, m.theme.Events)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update routes Bubble Tea messages to composed components.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.noteEvent(msg)

	var cmds []tea.Cmd

	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.layoutContent()
	case tea.KeyPressMsg:
		m.handleKeyPress(v, &cmds)
	case events.FeedMsg:
		m.applyUpdate(v)
	case events.LinkMsg:
		m.link = v.State
	case events.LogMsg:
		if m.events != nil {
			m.events.Append(eventviewer.FromLog(v.Entry))
		}
	case events.PrefsMsg:
		m.applyPreferences(v.Prefs)
	case events.DeviceHighlightMsg:
		// cursor moved; the detail pane keeps the device it was opened on
	case events.ScheduleSubmitMsg:
		cmds = appendCmd(cmds, m.dispatch.SetSchedule(v.MAC, v.Start, v.End))
	case events.SettingsSubmitMsg:
		cmds = appendCmd(cmds, m.dispatch.SaveSettings(v.Settings))
		m.closeOverlay()
	case events.CloseMsg:
		if v.Component == m.settings.ID() {
			m.closeOverlay()
		}
	case dispatch.ResultMsg:
		if v.Command == dispatch.CommandLoadSettings && v.Settings != nil {
			m.settings.Load(*v.Settings)
		}
		cmds = appendCmd(cmds, m.dispatch.Complete(v))
	case dispatch.ExpiredMsg:
		m.dispatch.Feedback().Expire(v)
	case prefsSavedMsg:
		if v.err != nil {
			m.log.WithError(v.err).Warn("saving preferences failed")
		}
	}

	return m, batch(cmds)
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	k := m.keys
	if key.Matches(msg, k.ForceQuit) {
		*cmds = append(*cmds, tea.Quit)
		return
	}

	switch m.mode {
	case modeSettings:
		_, cmd := m.settings.Update(msg)
		*cmds = appendCmd(*cmds, cmd)
		return
	case modeHelp:
		if key.Matches(msg, k.Close, k.Quit, k.Help) {
			m.closeOverlay()
			return
		}
		_, cmd := m.help.Update(msg)
		*cmds = appendCmd(*cmds, cmd)
		return
	case modeDetail:
		if m.detail.Editing() {
			_, cmd := m.detail.Update(msg)
			*cmds = appendCmd(*cmds, cmd)
			return
		}
		switch {
		case key.Matches(msg, k.Close):
			m.closeDetail()
			return
		case key.Matches(msg, k.Edit):
			*cmds = appendCmd(*cmds, m.detail.BeginEdit())
			return
		}
	}

	switch {
	case key.Matches(msg, k.Quit):
		*cmds = append(*cmds, tea.Quit)
	case key.Matches(msg, k.Open):
		m.openDetail()
	case key.Matches(msg, k.Block):
		*cmds = appendCmd(*cmds, m.toggleBlock())
	case key.Matches(msg, k.KillSwitch):
		stats := m.recon.Stats()
		*cmds = appendCmd(*cmds, m.dispatch.SetKillSwitch(!stats.KillSwitch))
	case key.Matches(msg, k.ActiveOnly):
		m.prefs.ActiveOnly = !m.prefs.ActiveOnly
		m.applyFilter()
		*cmds = appendCmd(*cmds, m.savePreferences())
	case key.Matches(msg, k.Events):
		m.prefs.ShowEvents = !m.prefs.ShowEvents
		m.toggleEvents()
		*cmds = appendCmd(*cmds, m.savePreferences())
	case key.Matches(msg, k.Settings):
		m.openOverlay(modeSettings)
		m.settings.Reset()
		*cmds = appendCmd(*cmds, m.dispatch.LoadSettings())
	case key.Matches(msg, k.Help):
		m.openOverlay(modeHelp)
	default:
		_, cmd := m.table.Update(msg)
		*cmds = appendCmd(*cmds, cmd)
	}
}

func (m *Model) applyUpdate(msg events.FeedMsg) {
	diff, err := m.recon.Apply(msg.Update)
	if err != nil {
		m.log.WithError(err).Warn("device update discarded")
		return
	}
	m.table.SetEntries(m.recon.Visible(), diff)
	m.tracker.Observe(msg.Update)
	m.refreshDetail()
}

func (m *Model) applyPreferences(p store.Preferences) {
	if p == m.prefs {
		return
	}
	filterChanged := p.ActiveOnly != m.prefs.ActiveOnly
	eventsChanged := p.ShowEvents != m.prefs.ShowEvents
	m.prefs = p
	if filterChanged {
		m.applyFilter()
	}
	if eventsChanged {
		m.toggleEvents()
	}
}

func (m *Model) applyFilter() {
	diff := m.recon.SetFilter(reconcile.Filter{ActiveOnly: m.prefs.ActiveOnly})
	m.table.SetEntries(m.recon.Visible(), diff)
}

func (m *Model) toggleEvents() {
	if m.prefs.ShowEvents {
		if m.events == nil {
			m.events = eventviewer.NewModel(400, m.theme.Events)
		}
		m.appendEvent(eventviewer.Entry{Summary: "events", Detail: "event log enabled"})
	} else {
		m.events = nil
	}
	m.layoutContent()
}

func (m *Model) savePreferences() tea.Cmd {
	if m.store == nil {
		return nil
	}
	st, prefs := m.store, m.prefs
	return func() tea.Msg {
		return prefsSavedMsg{err: st.Save(prefs)}
	}
}

func (m *Model) openDetail() {
	entry, ok := m.table.Selected()
	if !ok {
		return
	}
	rec, ok := m.recon.Lookup(entry.Key)
	if !ok {
		return
	}
	m.tracker.Select(rec)
	m.mode = modeDetail
	m.refreshDetail()
	m.layoutContent()
}

func (m *Model) closeDetail() {
	m.tracker.Clear()
	m.detail.CancelEdit()
	m.mode = modeList
	m.layoutContent()
}

func (m *Model) refreshDetail() {
	mac, ok := m.tracker.Selected()
	if !ok {
		return
	}
	rec, present := m.recon.Lookup(mac)
	if !present {
		rec = m.detailRecord(mac)
	}
	m.detail.Show(rec, present, m.tracker.Activity(), m.tracker.Series())
}

// detailRecord keeps showing the last known attributes of a device that has
// dropped out of the feed.
func (m *Model) detailRecord(mac string) device.Record {
	if rec := m.detail.Record(); rec.MAC == mac {
		return rec
	}
	return device.Record{MAC: mac}
}

func (m *Model) detailVisible() bool {
	_, ok := m.tracker.Selected()
	return ok
}

func (m *Model) toggleBlock() tea.Cmd {
	mac := ""
	if m.mode == modeDetail {
		mac, _ = m.tracker.Selected()
	} else if entry, ok := m.table.Selected(); ok {
		mac = entry.Key
	}
	if mac == "" {
		return nil
	}
	rec, ok := m.recon.Lookup(mac)
	if !ok {
		return nil
	}
	return m.dispatch.ToggleBlock(mac, !rec.Blocked)
}

func (m *Model) openOverlay(next mode) {
	if m.mode != modeSettings && m.mode != modeHelp {
		m.underlay = m.mode
	}
	m.mode = next
	if next == modeHelp && m.help == nil {
		w, h := m.overlaySize()
		m.help = helpview.New(w, h, m.server)
	}
	m.layoutContent()
}

func (m *Model) closeOverlay() {
	if m.mode != modeSettings && m.mode != modeHelp {
		return
	}
	m.mode = modeList
	if m.underlay == modeDetail && m.detailVisible() {
		m.mode = modeDetail
	}
}

// View renders the composed UI.
func (m *Model) View() (string, *tea.Cursor) {
	if m.width <= 0 || m.height <= 0 {
		return "initializing…", nil
	}

	rows := []string{m.headerView()}
	rows = append(rows, m.bodyView())
	if m.events != nil {
		rows = append(rows, m.events.View())
	}
	rows = append(rows, m.statusView())
	base := lipgloss.JoinVertical(lipgloss.Left, rows...)

	var fg string
	switch m.mode {
	case modeSettings:
		fg = m.settings.View()
	case modeHelp:
		if m.help != nil {
			fg = m.help.View()
		}
	}
	if fg == "" {
		return base, nil
	}
	return overlay.Compose(base, m.width, m.height, fg, overlay.Placement{
		Horizontal: lipgloss.Center,
		Vertical:   lipgloss.Center,
	}), nil
}

func (m *Model) headerView() string {
	title := m.theme.Header.Title.Render("NODEWATCH")
	server := m.theme.Header.Server.Render(" " + m.server)
	return clipLine(title+server, m.width)
}

func (m *Model) bodyView() string {
	if !m.detailVisible() {
		return m.table.View()
	}
	if m.width < 80 {
		return m.detail.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.table.View(), m.detail.View())
}

func (m *Model) statusView() string {
	st := m.theme.Status
	var link string
	switch m.link {
	case feed.StateConnected:
		link = st.Live.Render("● LIVE")
	case feed.StateConnecting:
		link = st.Connecting.Render("◌ CONNECTING")
	default:
		link = st.Offline.Render("✕ OFFLINE")
	}

	stats := m.recon.Stats()
	parts := []string{
		link,
		st.Bar.Render(fmt.Sprintf("%d/%d active", m.recon.ActiveCount(), m.recon.Len())),
		st.Bar.Render(fmt.Sprintf("↑ %.1f ↓ %.1f KB/s", stats.TotalUp, stats.TotalDown)),
	}
	if m.prefs.ActiveOnly {
		parts = append(parts, st.Muted.Render("[active only]"))
	}
	if stats.KillSwitch {
		parts = append(parts, st.Kill.Render("KILL SWITCH"))
	}
	if n, ok := m.dispatch.Feedback().Latest(); ok {
		style := st.Notice
		if n.Level == dispatch.LevelError {
			style = st.Error
		}
		parts = append(parts, style.Render(" "+n.Text+" "))
	} else {
		parts = append(parts, m.hint.ShortHelpView(m.keys.hints(m.mode)))
	}
	return clipLine(strings.Join(parts, "  "), m.width)
}

func (m *Model) layoutContent() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	totalRows := maxInt(1, m.height-2)
	debugRows := 0
	if m.events != nil {
		debugRows = m.computeDebugHeight(totalRows)
		if debugRows > 0 {
			m.events.SetSize(m.width, debugRows)
		} else {
			m.events = nil
		}
	}
	bodyRows := maxInt(1, totalRows-debugRows)

	tableWidth := m.width
	if m.detailVisible() {
		detailWidth := m.width
		if m.width >= 80 {
			detailWidth = clamp(m.width*2/5, 36, 60)
			tableWidth = m.width - detailWidth
		}
		m.detail.SetSize(detailWidth, bodyRows)
	}
	m.table.SetSize(tableWidth, bodyRows)

	w, h := m.overlaySize()
	m.settings.SetSize(minInt(w, 56), 0)
	if m.help != nil {
		m.help.SetSize(w, h)
	}
}

func (m *Model) overlaySize() (int, int) {
	return maxInt(m.width*4/5, 32), maxInt(m.height*4/5, 8)
}

func (m *Model) computeDebugHeight(totalRows int) int {
	if totalRows <= 4 {
		return 0
	}
	minHeight := 5
	maxHeight := totalRows - 1
	if maxHeight < minHeight {
		return maxHeight
	}
	return clamp(totalRows/3, minHeight, minInt(12, maxHeight))
}

func (m *Model) noteEvent(msg tea.Msg) {
	if m.events == nil {
		return
	}
	switch msg.(type) {
	case events.LogMsg, tea.WindowSizeMsg:
		return
	}
	source := "tea"
	if s, ok := eventSource(msg); ok && s != "" {
		source = s
	}
	entry := eventviewer.Entry{
		Timestamp: m.now(),
		Source:    source,
		Summary:   fmt.Sprintf("%T", msg),
		Detail:    describeMsg(msg),
		Level:     eventviewer.LevelInfo,
	}
	if r, ok := msg.(dispatch.ResultMsg); ok && r.Err != nil {
		entry.Level = eventviewer.LevelError
	}
	m.events.Append(entry)
}

func (m *Model) appendEvent(entry eventviewer.Entry) {
	if m.events == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = m.now()
	}
	if entry.Source == "" {
		entry.Source = "ui"
	}
	m.events.Append(entry)
}

func describeMsg(msg tea.Msg) string {
	if d, ok := msg.(interface{ Describe() string }); ok {
		return d.Describe()
	}
	switch v := msg.(type) {
	case tea.KeyPressMsg:
		return fmt.Sprintf("key=%q", v.String())
	default:
		return ""
	}
}

func eventSource(msg tea.Msg) (string, bool) {
	switch v := msg.(type) {
	case events.FeedMsg, events.LinkMsg:
		return "feed", true
	case events.PrefsMsg:
		return "prefs", true
	case events.DeviceHighlightMsg:
		return string(v.Component), true
	case events.ScheduleSubmitMsg:
		return string(v.Component), true
	case events.SettingsSubmitMsg:
		return string(v.Component), true
	case events.CloseMsg:
		return string(v.Component), true
	case events.DebugMsg:
		return string(v.Component), true
	case dispatch.ResultMsg, dispatch.ExpiredMsg:
		return "dispatch", true
	default:
		return "", false
	}
}

func appendCmd(cmds []tea.Cmd, cmd tea.Cmd) []tea.Cmd {
	if cmd == nil {
		return cmds
	}
	return append(cmds, cmd)
}

func batch(cmds []tea.Cmd) tea.Cmd {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

func clipLine(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(text)
}

func clamp(value, lower, upper int) int {
	if upper <= 0 {
		return lower
	}
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
