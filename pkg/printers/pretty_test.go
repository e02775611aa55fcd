package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/device"
)

func init() {
	color.NoColor = true
}

func TestDevicesTable(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{
		Out: &buf,
		Now: func() time.Time { return time.Date(2024, 1, 1, 23, 0, 0, 0, time.Local) },
	}
	pp.Devices(
		device.Record{MAC: "aa:aa", IP: "10.0.0.2", Vendor: "Acme", Category: "Phone", UpRate: 1.5},
		device.Record{MAC: "bb:bb", Vendor: "Other", Category: "TV", Blocked: true},
		device.Record{MAC: "cc:cc", IP: "10.0.0.4", ScheduleStart: "22:00", ScheduleEnd: "06:00"},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected heading and three rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "DOWN KB/s") {
		t.Fatalf("missing heading: %q", lines[0])
	}
	if !strings.Contains(lines[1], "10.0.0.2") || !strings.Contains(lines[1], "1.5") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], device.BlockedLabel) || !strings.HasPrefix(strings.TrimSpace(lines[2]), "-") {
		t.Fatalf("blocked row should show %s and no address: %q", device.BlockedLabel, lines[2])
	}
	if !strings.Contains(lines[3], "22:00-06:00 SCHED") {
		t.Fatalf("expected active schedule marker: %q", lines[3])
	}
}

func TestDevicesEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Devices()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected placeholder, got %q", buf.String())
	}
}

func TestSettingsAndCount(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.TitleWithCount("Devices", 1)
	pp.Settings(control.SettingsView{
		Settings:   control.Settings{Interface: "eth0", ScanInterval: 30, ParanoidMode: true},
		Interfaces: []string{"eth0", "wlan0"},
	})
	out := buf.String()
	for _, want := range []string{"Devices - 1 device\n", "30s", "eth0, wlan0", "Paranoid mode  on"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
