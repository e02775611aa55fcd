package app

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/dispatch"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/store"
	"tableflip.dev/nodewatch/pkg/tui/events"
)

type fakeController struct {
	blocked map[string]bool
	kill    []bool
}

func (f *fakeController) SetBlock(_ context.Context, mac string, blocked bool) (control.BlockResult, error) {
	f.blocked[mac] = blocked
	return control.BlockResult{Status: "ok", MAC: mac, Blocked: blocked}, nil
}

func (f *fakeController) SetKillSwitch(_ context.Context, enabled bool) (control.KillSwitchResult, error) {
	f.kill = append(f.kill, enabled)
	return control.KillSwitchResult{Status: "ok", KillSwitch: enabled}, nil
}

func (f *fakeController) SetSchedule(context.Context, string, string, string) (control.ScheduleResult, error) {
	return control.ScheduleResult{Status: "ok"}, nil
}

func (f *fakeController) GetSettings(context.Context) (control.SettingsView, error) {
	return control.SettingsView{Settings: control.Settings{Interface: "eth0", ScanInterval: 30}, Interfaces: []string{"eth0"}}, nil
}

func (f *fakeController) SetSettings(context.Context, control.SettingsUpdate) (control.Settings, error) {
	return control.Settings{}, nil
}

type memoryStore struct {
	saved []store.Preferences
}

func (s *memoryStore) Load() (store.Preferences, error) { return store.Preferences{}, store.ErrNoPreferences }
func (s *memoryStore) LoadOrDefault() store.Preferences { return store.Preferences{} }
func (s *memoryStore) Save(p store.Preferences) error {
	s.saved = append(s.saved, p)
	return nil
}
func (s *memoryStore) Path() string { return "" }
func (s *memoryStore) Watch(context.Context) (<-chan store.Preferences, error) {
	return nil, nil
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func newModel(t *testing.T) (*Model, *fakeController, *memoryStore) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	ctrl := &fakeController{blocked: map[string]bool{}}
	st := &memoryStore{}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := New(Options{
		Dispatcher:  dispatch.New(context.Background(), ctrl, log),
		Persistence: st,
		Server:      "http://test",
		Logger:      log,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m, ctrl, st
}

func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func view(m *Model) string {
	v, _ := m.View()
	return v
}

func update(recs ...device.Record) events.FeedMsg {
	return events.FeedMsg{Update: device.Update{Devices: recs, Stats: device.GlobalStats{TotalUp: 1, TotalDown: 2}}}
}

func TestFeedUpdatesRenderAndRemoveByAbsence(t *testing.T) {
	m, _, _ := newModel(t)
	send(m, events.LinkMsg{State: feed.StateConnected})
	send(m, update(
		device.Record{MAC: "aa:aa", Vendor: "Apple"},
		device.Record{MAC: "bb:bb", Vendor: "Dell"},
	))
	out := view(m)
	if !strings.Contains(out, "Apple") || !strings.Contains(out, "Dell") || !strings.Contains(out, "LIVE") {
		t.Fatalf("expected both devices and live link:\n%s", out)
	}

	send(m, update(device.Record{MAC: "bb:bb", Vendor: "Dell"}))
	if strings.Contains(view(m), "Apple") {
		t.Fatalf("absent device should be removed:\n%s", view(m))
	}
}

func TestMalformedUpdateKeepsPriorState(t *testing.T) {
	m, _, _ := newModel(t)
	send(m, update(device.Record{MAC: "aa", Vendor: "Apple"}))
	send(m, update(device.Record{MAC: "bb", Vendor: "Dell"}, device.Record{MAC: "bb", Vendor: "Dup"}))
	out := view(m)
	if !strings.Contains(out, "Apple") || strings.Contains(out, "Dell") {
		t.Fatalf("duplicate-key update should be discarded:\n%s", out)
	}
}

func TestDetailRoutesUpdatesOnlyWhileOpen(t *testing.T) {
	m, _, _ := newModel(t)
	send(m, update(device.Record{MAC: "aa", Vendor: "Apple", Domains: []string{"one.test"}}))
	send(m, press("enter"))

	if mac, ok := m.tracker.Selected(); !ok || mac != "aa" {
		t.Fatalf("expected aa selected, got %q", mac)
	}
	if m.tracker.SeriesLen() != 1 {
		t.Fatalf("selection should seed one point, got %d", m.tracker.SeriesLen())
	}

	send(m, update(device.Record{MAC: "aa", Vendor: "Apple", UpRate: 4, Domains: []string{"two.test"}}))
	if m.tracker.SeriesLen() != 2 {
		t.Fatalf("expected series to grow, got %d", m.tracker.SeriesLen())
	}
	if !strings.Contains(view(m), "two.test") {
		t.Fatalf("expected activity in detail:\n%s", view(m))
	}

	send(m, press("esc"))
	if _, ok := m.tracker.Selected(); ok {
		t.Fatalf("esc should clear the selection")
	}
	send(m, update(device.Record{MAC: "aa", Vendor: "Apple"}))
	if m.tracker.SeriesLen() != 2 {
		t.Fatalf("closed detail should not collect history, got %d points", m.tracker.SeriesLen())
	}
}

func TestActiveOnlyToggleIsPersistedAndReversible(t *testing.T) {
	m, _, st := newModel(t)
	send(m, update(
		device.Record{MAC: "aa", Vendor: "Apple"},
		device.Record{MAC: "bb", Vendor: "Dell", Stale: true},
	))

	cmd := send(m, press("a"))
	if strings.Contains(view(m), "Dell") {
		t.Fatalf("stale device should be hidden")
	}
	if cmd == nil {
		t.Fatalf("expected a save command")
	}
	cmd()
	if len(st.saved) != 1 || !st.saved[0].ActiveOnly {
		t.Fatalf("expected preferences saved, got %+v", st.saved)
	}

	send(m, update(
		device.Record{MAC: "aa", Vendor: "Apple"},
		device.Record{MAC: "bb", Vendor: "Dell Inc", Stale: true},
	))
	send(m, press("a"))
	if !strings.Contains(view(m), "Dell Inc") {
		t.Fatalf("re-disabling the filter should reveal the latest attributes:\n%s", view(m))
	}
}

func TestPreferencesFromWatcherApplyFilter(t *testing.T) {
	m, _, _ := newModel(t)
	send(m, update(device.Record{MAC: "bb", Vendor: "Dell", Stale: true}))
	send(m, events.PrefsMsg{Prefs: store.Preferences{ActiveOnly: true}})
	if strings.Contains(view(m), "Dell") {
		t.Fatalf("watched preferences should apply the filter")
	}
}

func TestBlockShowsConfirmation(t *testing.T) {
	m, ctrl, _ := newModel(t)
	send(m, update(device.Record{MAC: "aa", Vendor: "Apple"}))

	cmd := send(m, press("x"))
	if cmd == nil {
		t.Fatalf("expected block command")
	}
	if again := send(m, press("x")); again != nil {
		t.Fatalf("duplicate block should be suppressed while in flight")
	}
	result := cmd()
	if !ctrl.blocked["aa"] {
		t.Fatalf("expected block request for aa")
	}
	tick := send(m, result)
	if tick == nil {
		t.Fatalf("expected confirmation expiry")
	}
	if !strings.Contains(view(m), "BLOCK REQUESTED") {
		t.Fatalf("expected confirmation in status:\n%s", view(m))
	}
	send(m, dispatch.ExpiredMsg{Command: dispatch.CommandBlock, Seq: 1})
	if strings.Contains(view(m), "BLOCK REQUESTED") {
		t.Fatalf("confirmation should expire")
	}
}

func TestKillSwitchTogglesAgainstAuthoritativeState(t *testing.T) {
	m, ctrl, _ := newModel(t)
	send(m, events.FeedMsg{Update: device.Update{Stats: device.GlobalStats{KillSwitch: true}}})
	cmd := send(m, press("K"))
	if cmd == nil {
		t.Fatalf("expected kill switch command")
	}
	cmd()
	if len(ctrl.kill) != 1 || ctrl.kill[0] {
		t.Fatalf("expected release request, got %v", ctrl.kill)
	}
}

func TestSettingsOverlayLoadsAndSubmits(t *testing.T) {
	m, _, _ := newModel(t)
	cmd := send(m, press("s"))
	if m.mode != modeSettings {
		t.Fatalf("expected settings mode")
	}
	send(m, cmd())
	if !m.settings.Loaded() || !strings.Contains(view(m), "eth0") {
		t.Fatalf("expected loaded settings:\n%s", view(m))
	}

	submit := send(m, press("enter"))
	msg := submit()
	save := send(m, msg)
	if m.mode != modeList {
		t.Fatalf("submitting should close settings")
	}
	if save == nil {
		t.Fatalf("expected save command")
	}
	if r, ok := save().(dispatch.ResultMsg); !ok || r.Command != dispatch.CommandSaveSettings {
		t.Fatalf("unexpected result %#v", r)
	}
}

func TestKeyHintsFollowMode(t *testing.T) {
	k := defaultKeys()
	var detail []string
	for _, b := range k.hints(modeDetail) {
		detail = append(detail, b.Help().Key)
	}
	if strings.Join(detail, " ") != "esc e x ?" {
		t.Fatalf("unexpected detail hints %v", detail)
	}
	if got := k.hints(modeHelp); len(got) != 1 || got[0].Help().Desc != "close" {
		t.Fatalf("unexpected overlay hints %v", got)
	}
}

func TestActiveCountIncludesHiddenDevices(t *testing.T) {
	m, _, _ := newModel(t)
	send(m, press("a"))
	send(m, update(
		device.Record{MAC: "aa", Vendor: "Apple"},
		device.Record{MAC: "bb", Vendor: "Dell", Stale: true},
		device.Record{MAC: "cc", Vendor: "Sonos", Stale: true},
	))
	if out := view(m); !strings.Contains(out, "1/3 active") {
		t.Fatalf("expected hidden devices in the total:\n%s", out)
	}
}
