package events

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/logging"
	"tableflip.dev/nodewatch/pkg/store"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// FeedMsg carries one device update from the push channel into the update
// loop.
type FeedMsg struct {
	Update device.Update
}

// Describe renders the update in a human-friendly format for logs.
func (m FeedMsg) Describe() string {
	return fmt.Sprintf(`devices:%d active:%d up:%.1f down:%.1f`,
		len(m.Update.Devices), m.Update.ActiveCount(), m.Update.Stats.TotalUp, m.Update.Stats.TotalDown)
}

// LinkMsg reports a push channel state change.
type LinkMsg struct {
	State feed.State
}

// Describe renders the link state for logs.
func (m LinkMsg) Describe() string {
	return fmt.Sprintf(`link:%q`, m.State)
}

// LogMsg carries a log line captured by the logging hook.
type LogMsg struct {
	Entry logging.Entry
}

// PrefsMsg announces preferences written by another process.
type PrefsMsg struct {
	Prefs store.Preferences
}

// Describe renders the preferences for logs.
func (m PrefsMsg) Describe() string {
	return fmt.Sprintf(`active_only:%t show_events:%t`, m.Prefs.ActiveOnly, m.Prefs.ShowEvents)
}

// DeviceHighlightMsg is emitted when the cursor lands on a device.
type DeviceHighlightMsg struct {
	Component ComponentID
	MAC       string
}

// Describe renders the highlight for logs.
func (m DeviceHighlightMsg) Describe() string {
	return fmt.Sprintf(`mac:%q`, m.MAC)
}

// DeviceHighlightCmd emits a DeviceHighlightMsg.
func DeviceHighlightCmd(component ComponentID, mac string) tea.Cmd {
	return func() tea.Msg {
		return DeviceHighlightMsg{Component: component, MAC: mac}
	}
}

// ScheduleSubmitMsg requests an access window for a device.
type ScheduleSubmitMsg struct {
	Component ComponentID
	MAC       string
	Start     string
	End       string
}

// Describe renders the schedule for logs.
func (m ScheduleSubmitMsg) Describe() string {
	return fmt.Sprintf(`mac:%q window:%s-%s`, m.MAC, m.Start, m.End)
}

// ScheduleSubmitCmd emits a ScheduleSubmitMsg.
func ScheduleSubmitCmd(component ComponentID, mac, start, end string) tea.Cmd {
	return func() tea.Msg {
		return ScheduleSubmitMsg{Component: component, MAC: mac, Start: start, End: end}
	}
}

// SettingsSubmitMsg requests new backend settings.
type SettingsSubmitMsg struct {
	Component ComponentID
	Settings  control.Settings
}

// Describe renders the settings for logs.
func (m SettingsSubmitMsg) Describe() string {
	return fmt.Sprintf(`interface:%q scan_interval:%d paranoid:%t`,
		m.Settings.Interface, m.Settings.ScanInterval, m.Settings.ParanoidMode)
}

// SettingsSubmitCmd emits a SettingsSubmitMsg.
func SettingsSubmitCmd(component ComponentID, s control.Settings) tea.Cmd {
	return func() tea.Msg {
		return SettingsSubmitMsg{Component: component, Settings: s}
	}
}

// CloseMsg asks the parent to dismiss a component.
type CloseMsg struct {
	Component ComponentID
}

// Describe renders the close request for logs.
func (m CloseMsg) Describe() string {
	return fmt.Sprintf(`component:%q`, m.Component)
}

// CloseCmd emits a CloseMsg.
func CloseCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg {
		return CloseMsg{Component: component}
	}
}

// DebugMsg carries free-form diagnostic details for the event viewer.
type DebugMsg struct {
	Component ComponentID
	Context   string
	Detail    string
}

// Describe renders the debug message for logs.
func (m DebugMsg) Describe() string {
	parts := []string{}
	if m.Context != "" {
		parts = append(parts, fmt.Sprintf(`context:%q`, m.Context))
	}
	if m.Detail != "" {
		parts = append(parts, fmt.Sprintf(`detail:%q`, m.Detail))
	}
	return strings.Join(parts, " ")
}

// DebugCmd emits a DebugMsg.
func DebugCmd(component ComponentID, context, detail string) tea.Cmd {
	return func() tea.Msg {
		return DebugMsg{Component: component, Context: context, Detail: detail}
	}
}
