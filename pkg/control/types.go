package control

import (
	"fmt"
	"strings"

	"tableflip.dev/nodewatch/pkg/device"
)

// Scan interval bounds accepted by the backend, in seconds.
const (
	MinScanInterval = 5
	MaxScanInterval = 300
)

// BlockResult is the backend's answer to a block toggle.
type BlockResult struct {
	Status  string `json:"status"`
	MAC     string `json:"mac"`
	Blocked bool   `json:"is_blocked"`
}

// KillSwitchResult is the backend's answer to a kill switch change.
type KillSwitchResult struct {
	Status     string `json:"status"`
	KillSwitch bool   `json:"global_kill_switch"`
}

// ScheduleResult echoes the stored access window.
type ScheduleResult struct {
	Status        string `json:"status"`
	MAC           string `json:"mac"`
	ScheduleStart string `json:"schedule_start"`
	ScheduleEnd   string `json:"schedule_end"`
}

// Settings are the backend's scan settings.
type Settings struct {
	Interface      string `json:"interface"`
	ScanInterval   int    `json:"scan_interval"`
	ParanoidMode   bool   `json:"paranoid_mode"`
	DomainLogLimit int    `json:"domain_log_limit,omitempty"`
}

// SettingsView is what GET /api/settings returns.
type SettingsView struct {
	Settings   Settings `json:"settings"`
	Interfaces []string `json:"available_interfaces"`
}

// SettingsUpdate is a partial settings change; nil fields are left alone.
type SettingsUpdate struct {
	Interface    *string `json:"interface,omitempty"`
	ScanInterval *int    `json:"scan_interval,omitempty"`
	ParanoidMode *bool   `json:"paranoid_mode,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u SettingsUpdate) Empty() bool {
	return u.Interface == nil && u.ScanInterval == nil && u.ParanoidMode == nil
}

// Validate rejects an update the backend would store but could not use.
func (u SettingsUpdate) Validate() error {
	if u.Interface != nil && strings.TrimSpace(*u.Interface) == "" {
		return fmt.Errorf("interface must not be empty")
	}
	if u.ScanInterval != nil && (*u.ScanInterval < MinScanInterval || *u.ScanInterval > MaxScanInterval) {
		return fmt.Errorf("scan interval %ds out of range [%d, %d]", *u.ScanInterval, MinScanInterval, MaxScanInterval)
	}
	return nil
}

// UpdateFrom returns the update that turns the current settings into next.
func UpdateFrom(next Settings) SettingsUpdate {
	iface := next.Interface
	interval := next.ScanInterval
	paranoid := next.ParanoidMode
	return SettingsUpdate{Interface: &iface, ScanInterval: &interval, ParanoidMode: &paranoid}
}

// Stats is the summary served by GET /api/stats.
type Stats struct {
	ActiveDevices int     `json:"active_devices"`
	TotalUp       float64 `json:"total_up_kbps"`
	TotalDown     float64 `json:"total_down_kbps"`
	KillSwitch    bool    `json:"global_kill_switch"`
}

// DeviceInfo is a device as stored by the backend, served by GET /api/devices.
// It carries no rates; those only exist on the push channel.
type DeviceInfo struct {
	MAC           string   `json:"mac"`
	IP            string   `json:"ip"`
	Vendor        string   `json:"vendor"`
	Hostname      string   `json:"hostname"`
	Category      string   `json:"category"`
	OSGuess       string   `json:"os_guess"`
	Domains       []string `json:"domains"`
	Blocked       bool     `json:"is_blocked"`
	ScheduleStart string   `json:"schedule_start"`
	ScheduleEnd   string   `json:"schedule_end"`
	LastKnownIP   string   `json:"last_known_ip"`
	LastSeen      float64  `json:"last_seen"`
}

// Record converts the stored form into the push-channel form. A device
// without a current IP is stale.
func (d DeviceInfo) Record() device.Record {
	ip := d.IP
	if ip == "" && d.LastKnownIP != "" {
		ip = "(" + d.LastKnownIP + ")"
	}
	return device.Record{
		MAC:           d.MAC,
		IP:            ip,
		Vendor:        d.Vendor,
		Category:      d.Category,
		Blocked:       d.Blocked,
		Stale:         d.IP == "",
		Domains:       d.Domains,
		ScheduleStart: d.ScheduleStart,
		ScheduleEnd:   d.ScheduleEnd,
	}
}
