package settings

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
)

type fakeClient struct {
	view  control.SettingsView
	sent  *control.SettingsUpdate
	saves int
}

func (f *fakeClient) GetSettings(context.Context) (control.SettingsView, error) {
	return f.view, nil
}

func (f *fakeClient) SetSettings(_ context.Context, u control.SettingsUpdate) (control.Settings, error) {
	f.saves++
	f.sent = &u
	next := f.view.Settings
	if u.Interface != nil {
		next.Interface = *u.Interface
	}
	if u.ScanInterval != nil {
		next.ScanInterval = *u.ScanInterval
	}
	if u.ParanoidMode != nil {
		next.ParanoidMode = *u.ParanoidMode
	}
	return next, nil
}

func newFake() *fakeClient {
	return &fakeClient{view: control.SettingsView{
		Settings:   control.Settings{Interface: "eth0", ScanInterval: 30},
		Interfaces: []string{"eth0", "wlan0"},
	}}
}

func TestSetSendsOnlyChangedFields(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	f := newFake()
	interval := 60
	s := Set{Client: f, Update: control.SettingsUpdate{ScanInterval: &interval}, Printer: &printers.PrettyPrint{Out: &buf}}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if f.sent == nil || f.sent.Interface != nil || f.sent.ParanoidMode != nil || *f.sent.ScanInterval != 60 {
		t.Fatalf("unexpected update %+v", f.sent)
	}
	if !strings.Contains(buf.String(), "60s") || !strings.Contains(buf.String(), "restart recommended") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestSetRejectsUnknownInterface(t *testing.T) {
	f := newFake()
	iface := "ppp0"
	s := Set{Client: f, Update: control.SettingsUpdate{Interface: &iface}}
	if err := s.Do(context.Background()); err == nil || !strings.Contains(err.Error(), "ppp0") {
		t.Fatalf("expected unknown interface error, got %v", err)
	}
	if f.saves != 0 {
		t.Fatalf("nothing should be saved")
	}
}

func TestSetRequiresAChange(t *testing.T) {
	s := Set{Client: newFake()}
	if err := s.Do(context.Background()); err == nil {
		t.Fatalf("expected an error for an empty update")
	}
}

func TestShowJSON(t *testing.T) {
	var buf bytes.Buffer
	s := Show{Client: newFake(), JSON: true, Printer: &printers.PrettyPrint{Out: &buf}}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if !strings.Contains(buf.String(), `"available_interfaces"`) {
		t.Fatalf("unexpected output %s", buf.String())
	}
}
