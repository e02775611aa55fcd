package device

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyKey is returned when a record arrives without a MAC address.
	ErrEmptyKey = errors.New("device: record has no mac")
	// ErrDuplicateKey is returned when one update names the same MAC twice.
	ErrDuplicateKey = errors.New("device: duplicate mac in update")
)

// BlockedLabel replaces the category of a blocked device when rendered.
const BlockedLabel = "TERMINATED"

// Record is one device as reported by the backend. MAC is the identity key.
type Record struct {
	MAC           string   `json:"mac"`
	IP            string   `json:"ip"`
	Vendor        string   `json:"vendor"`
	Category      string   `json:"category"`
	Blocked       bool     `json:"is_blocked"`
	Stale         bool     `json:"is_stale"`
	UpRate        float64  `json:"up_rate"`
	DownRate      float64  `json:"down_rate"`
	Domains       []string `json:"domains,omitempty"`
	ScheduleStart string   `json:"schedule_start,omitempty"`
	ScheduleEnd   string   `json:"schedule_end,omitempty"`
}

// GlobalStats is the network-wide summary carried by every update.
type GlobalStats struct {
	TotalUp    float64 `json:"total_up"`
	TotalDown  float64 `json:"total_down"`
	KillSwitch bool    `json:"kill_switch"`
}

// Update is a complete snapshot of the device list. Devices absent from an
// update are considered gone.
type Update struct {
	Devices []Record    `json:"devices"`
	Stats   GlobalStats `json:"global_stats"`
}

// Validate rejects updates whose device keys are missing or not unique.
func (u Update) Validate() error {
	seen := make(map[string]struct{}, len(u.Devices))
	for i, d := range u.Devices {
		key := strings.TrimSpace(d.MAC)
		if key == "" {
			return fmt.Errorf("devices[%d]: %w", i, ErrEmptyKey)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("devices[%d] %s: %w", i, key, ErrDuplicateKey)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ActiveCount returns the number of devices that are not stale.
func (u Update) ActiveCount() int {
	n := 0
	for _, d := range u.Devices {
		if !d.Stale {
			n++
		}
	}
	return n
}

// Find returns the record keyed by mac.
func (u Update) Find(mac string) (Record, bool) {
	for _, d := range u.Devices {
		if d.MAC == mac {
			return d, true
		}
	}
	return Record{}, false
}

// Clone returns a copy that shares no slices with r.
func (r Record) Clone() Record {
	out := r
	if r.Domains != nil {
		out.Domains = slices.Clone(r.Domains)
	}
	return out
}

// Equal reports whether every attribute of r and o match.
func (r Record) Equal(o Record) bool {
	return r.MAC == o.MAC &&
		r.IP == o.IP &&
		r.Vendor == o.Vendor &&
		r.Category == o.Category &&
		r.Blocked == o.Blocked &&
		r.Stale == o.Stale &&
		r.UpRate == o.UpRate &&
		r.DownRate == o.DownRate &&
		r.ScheduleStart == o.ScheduleStart &&
		r.ScheduleEnd == o.ScheduleEnd &&
		slices.Equal(r.Domains, o.Domains)
}

// HasSchedule reports whether both ends of an access window are set.
func (r Record) HasSchedule() bool {
	return r.ScheduleStart != "" && r.ScheduleEnd != ""
}

// Status is the label shown in the category column.
func (r Record) Status() string {
	if r.Blocked {
		return BlockedLabel
	}
	return r.Category
}

// Address returns the IP, or "-" when the backend has none.
func (r Record) Address() string {
	if r.IP == "" {
		return "-"
	}
	return r.IP
}
