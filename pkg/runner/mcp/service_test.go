package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/feed"
)

type fakeControl struct {
	stored    []control.DeviceInfo
	stats     control.Stats
	schedules [][3]string
	updates   []control.SettingsUpdate
	devCalls  int
}

func (f *fakeControl) SetBlock(_ context.Context, mac string, blocked bool) (control.BlockResult, error) {
	return control.BlockResult{Status: "ok", MAC: mac, Blocked: blocked}, nil
}

func (f *fakeControl) SetKillSwitch(_ context.Context, enabled bool) (control.KillSwitchResult, error) {
	return control.KillSwitchResult{Status: "ok", KillSwitch: enabled}, nil
}

func (f *fakeControl) SetSchedule(_ context.Context, mac, start, end string) (control.ScheduleResult, error) {
	f.schedules = append(f.schedules, [3]string{mac, start, end})
	return control.ScheduleResult{Status: "ok", MAC: mac, ScheduleStart: start, ScheduleEnd: end}, nil
}

func (f *fakeControl) GetSettings(context.Context) (control.SettingsView, error) {
	return control.SettingsView{Settings: control.Settings{Interface: "eth0", ScanInterval: 30}}, nil
}

func (f *fakeControl) SetSettings(_ context.Context, u control.SettingsUpdate) (control.Settings, error) {
	f.updates = append(f.updates, u)
	return control.Settings{}, nil
}

func (f *fakeControl) Stats(context.Context) (control.Stats, error) {
	return f.stats, nil
}

func (f *fakeControl) Devices(context.Context) ([]control.DeviceInfo, error) {
	f.devCalls++
	return f.stored, nil
}

func TestServiceFallsBackToStoredDevices(t *testing.T) {
	ctx := context.Background()
	ctrl := &fakeControl{stored: []control.DeviceInfo{
		{MAC: "aa", IP: "10.0.0.2"},
		{MAC: "bb", LastKnownIP: "10.0.0.3"},
	}}
	svc := NewService(ctrl)

	all, err := svc.ListDevices(ctx, false)
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(all) != 2 || ctrl.devCalls != 1 {
		t.Fatalf("expected stored list, got %d devices after %d calls", len(all), ctrl.devCalls)
	}
	active, _ := svc.ListDevices(ctx, true)
	if len(active) != 1 || active[0].MAC != "aa" {
		t.Fatalf("expected only the active device, got %+v", active)
	}
}

func TestServiceUsesLiveViewOnceSeen(t *testing.T) {
	ctx := context.Background()
	ctrl := &fakeControl{}
	svc := NewService(ctrl)
	svc.Now = func() time.Time { return time.Date(2024, 1, 1, 23, 0, 0, 0, time.Local) }
	svc.SetLink(feed.StateConnected)

	err := svc.Observe(device.Update{
		Devices: []device.Record{
			{MAC: "aa", IP: "10.0.0.2", UpRate: 4, ScheduleStart: "22:00", ScheduleEnd: "06:00"},
			{MAC: "bb", IP: "10.0.0.3", Blocked: true, Category: "TV"},
		},
		Stats: device.GlobalStats{TotalUp: 4, KillSwitch: true},
	})
	if err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	dto, err := svc.Device(ctx, "aa")
	if err != nil {
		t.Fatalf("Device failed: %v", err)
	}
	if !dto.ScheduleActive || dto.UpRate != 4 {
		t.Fatalf("unexpected device %+v", dto)
	}
	blocked, _ := svc.Device(ctx, "bb")
	if blocked.Status != device.BlockedLabel || blocked.ScheduleActive {
		t.Fatalf("unexpected blocked device %+v", blocked)
	}
	if _, err := svc.Device(ctx, "zz"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
	if ctrl.devCalls != 0 {
		t.Fatalf("stored list should not be read once live")
	}

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !sum.Live || sum.Link != "connected" || sum.Devices != 2 || sum.Active != 2 || !sum.KillSwitch {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestServiceRejectsInvalidUpdate(t *testing.T) {
	svc := NewService(&fakeControl{})
	err := svc.Observe(device.Update{Devices: []device.Record{{MAC: "aa"}, {MAC: "aa"}}})
	if err == nil {
		t.Fatalf("expected duplicate keys to be rejected")
	}
	if sum, _ := svc.Summary(context.Background()); sum.Live {
		t.Fatalf("rejected update must not mark the view live")
	}
}

func TestServiceScheduleNormalizes(t *testing.T) {
	ctrl := &fakeControl{}
	svc := NewService(ctrl)
	if _, err := svc.SetSchedule(context.Background(), "aa", "7:05", "19:00"); err != nil {
		t.Fatalf("SetSchedule failed: %v", err)
	}
	if got := ctrl.schedules[0]; got != [3]string{"aa", "07:05", "19:00"} {
		t.Fatalf("unexpected call %v", got)
	}
	if _, err := svc.SetSchedule(context.Background(), "aa", "nope", "19:00"); err == nil {
		t.Fatalf("expected invalid start to be rejected")
	}
	if len(ctrl.schedules) != 1 {
		t.Fatalf("invalid window must not reach the backend")
	}
}

func TestServiceScheduleClears(t *testing.T) {
	ctrl := &fakeControl{}
	svc := NewService(ctrl)
	if _, err := svc.SetSchedule(context.Background(), "aa", "", ""); err != nil {
		t.Fatalf("clearing failed: %v", err)
	}
	if got := ctrl.schedules[0]; got != [3]string{"aa", "", ""} {
		t.Fatalf("unexpected call %v", got)
	}
	if _, err := svc.SetSchedule(context.Background(), "aa", "", "06:00"); err == nil {
		t.Fatalf("expected a half window to be rejected")
	}
	if len(ctrl.schedules) != 1 {
		t.Fatalf("half window must not reach the backend")
	}
}

func TestSettingsUpdateFromArguments(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"scan_interval": float64(45)}
	u := settingsUpdateFrom(req)
	if u.Interface != nil || u.ParanoidMode != nil || u.ScanInterval == nil || *u.ScanInterval != 45 {
		t.Fatalf("unexpected update %+v", u)
	}

	ctrl := &fakeControl{}
	svc := NewService(ctrl)
	if _, err := svc.UpdateSettings(context.Background(), control.SettingsUpdate{}); err == nil {
		t.Fatalf("expected empty update to be rejected")
	}
	if _, err := svc.UpdateSettings(context.Background(), u); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if len(ctrl.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(ctrl.updates))
	}
}
