// Package mcp provides the Model Context Protocol server integration for nodewatch.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/dispatch"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/reconcile"
	"tableflip.dev/nodewatch/pkg/timeutil"
)

// ErrDeviceNotFound is returned when a MAC is neither in the live view nor
// in the backend's stored list.
var ErrDeviceNotFound = errors.New("device not found")

// Controller is the control API the service forwards mutations to.
type Controller interface {
	dispatch.Controller
	Stats(ctx context.Context) (control.Stats, error)
	Devices(ctx context.Context) ([]control.DeviceInfo, error)
}

// Service answers MCP requests from a live reconciled view of the push
// channel, falling back to the stored device list until the first update.
type Service struct {
	Control Controller
	Now     func() time.Time

	recon *reconcile.Reconciler

	mu   sync.RWMutex
	link feed.State
}

// DeviceDTO is a transport-friendly projection of a device.
type DeviceDTO struct {
	device.Record
	Status         string `json:"status"`
	ScheduleActive bool   `json:"schedule_active"`
}

// Summary describes the live view as a whole.
type Summary struct {
	Link       string             `json:"link"`
	Live       bool               `json:"live"`
	Devices    int                `json:"devices"`
	Active     int                `json:"active_devices"`
	Stats      device.GlobalStats `json:"global_stats"`
	KillSwitch bool               `json:"kill_switch"`
}

// NewService builds a service that forwards control calls to ctrl.
func NewService(ctrl Controller) *Service {
	return &Service{
		Control: ctrl,
		recon:   reconcile.New(reconcile.Filter{}),
		link:    feed.StateConnecting,
	}
}

// Observe applies one push-channel update to the live view.
func (s *Service) Observe(u device.Update) error {
	_, err := s.recon.Apply(u)
	return err
}

// SetLink records the push channel's state.
func (s *Service) SetLink(state feed.State) {
	s.mu.Lock()
	s.link = state
	s.mu.Unlock()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ListDevices returns the devices in feed order. Before the first update it
// reads the stored list, which carries no rates.
func (s *Service) ListDevices(ctx context.Context, activeOnly bool) ([]DeviceDTO, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	filter := reconcile.Filter{ActiveOnly: activeOnly}
	now := s.now()
	out := make([]DeviceDTO, 0, len(records))
	for _, r := range records {
		if filter.Hides(r) {
			continue
		}
		out = append(out, toDTO(r, now))
	}
	return out, nil
}

// Device returns one device by MAC.
func (s *Service) Device(ctx context.Context, mac string) (*DeviceDTO, error) {
	mac = strings.TrimSpace(mac)
	if mac == "" {
		return nil, errors.New("mac is required")
	}
	if rec, ok := s.recon.Lookup(mac); ok {
		dto := toDTO(rec, s.now())
		return &dto, nil
	}
	if s.recon.Seen() {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, mac)
	}
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if strings.EqualFold(r.MAC, mac) {
			dto := toDTO(r, s.now())
			return &dto, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, mac)
}

// Summary reports link state and network totals. Before the first update
// the totals come from the backend's stats endpoint.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	s.mu.RLock()
	link := s.link
	s.mu.RUnlock()

	sum := Summary{Link: link.String(), Live: s.recon.Seen()}
	if sum.Live {
		sum.Devices = len(s.recon.Records())
		sum.Active = s.recon.ActiveCount()
		sum.Stats = s.recon.Stats()
		sum.KillSwitch = sum.Stats.KillSwitch
		return sum, nil
	}
	if s.Control == nil {
		return sum, nil
	}
	st, err := s.Control.Stats(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum.Active = st.ActiveDevices
	sum.Stats = device.GlobalStats{TotalUp: st.TotalUp, TotalDown: st.TotalDown, KillSwitch: st.KillSwitch}
	sum.KillSwitch = st.KillSwitch
	return sum, nil
}

// SetBlock blocks or unblocks a device.
func (s *Service) SetBlock(ctx context.Context, mac string, blocked bool) (control.BlockResult, error) {
	if err := s.ready(); err != nil {
		return control.BlockResult{}, err
	}
	mac = strings.TrimSpace(mac)
	if mac == "" {
		return control.BlockResult{}, errors.New("mac is required")
	}
	return s.Control.SetBlock(ctx, mac, blocked)
}

// SetKillSwitch toggles the network-wide kill switch.
func (s *Service) SetKillSwitch(ctx context.Context, enabled bool) (control.KillSwitchResult, error) {
	if err := s.ready(); err != nil {
		return control.KillSwitchResult{}, err
	}
	return s.Control.SetKillSwitch(ctx, enabled)
}

// SetSchedule validates and stores a daily block window. Blank start and end
// clear it.
func (s *Service) SetSchedule(ctx context.Context, mac, start, end string) (control.ScheduleResult, error) {
	if err := s.ready(); err != nil {
		return control.ScheduleResult{}, err
	}
	mac = strings.TrimSpace(mac)
	if mac == "" {
		return control.ScheduleResult{}, errors.New("mac is required")
	}
	start, end, err := timeutil.NormalizeWindow(start, end)
	if err != nil {
		return control.ScheduleResult{}, err
	}
	return s.Control.SetSchedule(ctx, mac, start, end)
}

// Settings returns the backend's scan settings.
func (s *Service) Settings(ctx context.Context) (control.SettingsView, error) {
	if err := s.ready(); err != nil {
		return control.SettingsView{}, err
	}
	return s.Control.GetSettings(ctx)
}

// UpdateSettings applies a partial settings change.
func (s *Service) UpdateSettings(ctx context.Context, u control.SettingsUpdate) (control.Settings, error) {
	if err := s.ready(); err != nil {
		return control.Settings{}, err
	}
	if u.Empty() {
		return control.Settings{}, errors.New("no settings to change")
	}
	if err := u.Validate(); err != nil {
		return control.Settings{}, err
	}
	return s.Control.SetSettings(ctx, u)
}

func (s *Service) ready() error {
	if s.Control == nil {
		return errors.New("control client is not configured")
	}
	return nil
}

func (s *Service) records(ctx context.Context) ([]device.Record, error) {
	if s.recon.Seen() {
		return s.recon.Records(), nil
	}
	if s.Control == nil {
		return nil, nil
	}
	infos, err := s.Control.Devices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]device.Record, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Record())
	}
	return out, nil
}

func toDTO(r device.Record, now time.Time) DeviceDTO {
	dto := DeviceDTO{Record: r, Status: r.Status()}
	if !r.Blocked && r.HasSchedule() {
		if in, err := timeutil.InWindow(r.ScheduleStart, r.ScheduleEnd, now); err == nil {
			dto.ScheduleActive = in
		}
	}
	return dto
}
