package dispatch

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"tableflip.dev/nodewatch/pkg/control"
)

// Command names a kind of control request.
type Command string

const (
	CommandBlock        Command = "block"
	CommandKillSwitch   Command = "killswitch"
	CommandSchedule     Command = "schedule"
	CommandLoadSettings Command = "settings/load"
	CommandSaveSettings Command = "settings/save"
)

// Controller is the control boundary the dispatcher talks to.
type Controller interface {
	SetBlock(ctx context.Context, mac string, blocked bool) (control.BlockResult, error)
	SetKillSwitch(ctx context.Context, enabled bool) (control.KillSwitchResult, error)
	SetSchedule(ctx context.Context, mac, start, end string) (control.ScheduleResult, error)
	GetSettings(ctx context.Context) (control.SettingsView, error)
	SetSettings(ctx context.Context, update control.SettingsUpdate) (control.Settings, error)
}

// ResultMsg reports the outcome of one round trip.
type ResultMsg struct {
	Command  Command
	Key      string
	Target   string
	On       bool
	Err      error
	Settings *control.SettingsView
	Elapsed  time.Duration
}

// Describe renders the result for the event log.
func (m ResultMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf(`command:%q target:%q err:%q`, m.Command, m.Target, m.Err.Error())
	}
	return fmt.Sprintf(`command:%q target:%q elapsed:%s`, m.Command, m.Target, m.Elapsed.Round(time.Millisecond))
}

// Dispatcher issues control requests as tea.Cmds. It never touches device
// state; confirmed changes arrive through the next feed update. In-flight
// bookkeeping is only accessed from the Bubble Tea update loop.
type Dispatcher struct {
	ctx      context.Context
	ctrl     Controller
	log      logrus.FieldLogger
	inflight map[string]struct{}
	feedback *Feedback
}

// New returns a dispatcher issuing requests through ctrl. Requests inherit
// ctx, normally the program's lifetime.
func New(ctx context.Context, ctrl Controller, log logrus.FieldLogger) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		ctx:      ctx,
		ctrl:     ctrl,
		log:      log.WithField("component", "dispatch"),
		inflight: make(map[string]struct{}),
		feedback: NewFeedback(),
	}
}

// Feedback exposes the transient confirmation state.
func (d *Dispatcher) Feedback() *Feedback { return d.feedback }

// InFlight reports whether a request with key is awaiting its result.
func (d *Dispatcher) InFlight(key string) bool {
	_, ok := d.inflight[key]
	return ok
}

// ToggleBlock sets the blocked flag on mac.
func (d *Dispatcher) ToggleBlock(mac string, blocked bool) tea.Cmd {
	return d.issue(CommandBlock, mac, blocked, func(ctx context.Context) ResultMsg {
		_, err := d.ctrl.SetBlock(ctx, mac, blocked)
		return ResultMsg{Err: err}
	})
}

// SetKillSwitch turns the network-wide kill switch on or off.
func (d *Dispatcher) SetKillSwitch(on bool) tea.Cmd {
	return d.issue(CommandKillSwitch, "", on, func(ctx context.Context) ResultMsg {
		_, err := d.ctrl.SetKillSwitch(ctx, on)
		return ResultMsg{Err: err}
	})
}

// SetSchedule stores an access window for mac.
func (d *Dispatcher) SetSchedule(mac, start, end string) tea.Cmd {
	return d.issue(CommandSchedule, mac, true, func(ctx context.Context) ResultMsg {
		_, err := d.ctrl.SetSchedule(ctx, mac, start, end)
		return ResultMsg{Err: err}
	})
}

// LoadSettings fetches the backend settings.
func (d *Dispatcher) LoadSettings() tea.Cmd {
	return d.issue(CommandLoadSettings, "", false, func(ctx context.Context) ResultMsg {
		view, err := d.ctrl.GetSettings(ctx)
		if err != nil {
			return ResultMsg{Err: err}
		}
		return ResultMsg{Settings: &view}
	})
}

// SaveSettings applies s as the backend settings.
func (d *Dispatcher) SaveSettings(s control.Settings) tea.Cmd {
	return d.issue(CommandSaveSettings, "", false, func(ctx context.Context) ResultMsg {
		_, err := d.ctrl.SetSettings(ctx, control.UpdateFrom(s))
		return ResultMsg{Err: err}
	})
}

// Key returns the in-flight key for a command and target.
func Key(cmd Command, target string) string {
	if target == "" {
		return string(cmd)
	}
	return string(cmd) + "/" + target
}

func (d *Dispatcher) issue(cmd Command, target string, on bool, call func(context.Context) ResultMsg) tea.Cmd {
	key := Key(cmd, target)
	if _, busy := d.inflight[key]; busy {
		d.log.WithField("key", key).Debug("request already in flight")
		return nil
	}
	d.inflight[key] = struct{}{}
	ctx := d.ctx
	return func() tea.Msg {
		start := time.Now()
		res := call(ctx)
		res.Command = cmd
		res.Key = key
		res.Target = target
		res.On = on
		res.Elapsed = time.Since(start)
		return res
	}
}

// Complete releases the in-flight key for msg, logs failures and returns
// the command that expires any confirmation it shows.
func (d *Dispatcher) Complete(msg ResultMsg) tea.Cmd {
	delete(d.inflight, msg.Key)

	log := d.log.WithFields(logrus.Fields{"command": msg.Command, "target": msg.Target})
	if msg.Err != nil {
		log.WithError(msg.Err).Error("request failed")
	} else {
		log.WithField("elapsed", msg.Elapsed).Debug("request done")
	}

	text, level, delay, ok := noticeFor(msg)
	if !ok {
		return nil
	}
	return d.feedback.Confirm(msg.Command, level, text, delay)
}

const (
	confirmDelay  = 2 * time.Second
	settingsDelay = 3 * time.Second
)

// noticeFor maps a result to the confirmation shown for it. Failures other
// than a settings save are only logged.
func noticeFor(msg ResultMsg) (string, Level, time.Duration, bool) {
	switch msg.Command {
	case CommandBlock:
		if msg.Err != nil {
			return "", LevelOK, 0, false
		}
		if msg.On {
			return "BLOCK REQUESTED", LevelOK, confirmDelay, true
		}
		return "UNBLOCK REQUESTED", LevelOK, confirmDelay, true
	case CommandKillSwitch:
		if msg.Err != nil {
			return "", LevelOK, 0, false
		}
		if msg.On {
			return "KILL SWITCH ENGAGED", LevelOK, confirmDelay, true
		}
		return "KILL SWITCH RELEASED", LevelOK, confirmDelay, true
	case CommandSchedule:
		if msg.Err != nil {
			return "", LevelOK, 0, false
		}
		return "ACCESS RULES UPDATED", LevelOK, confirmDelay, true
	case CommandSaveSettings:
		if msg.Err != nil {
			return "ERROR SAVING CONFIG", LevelError, confirmDelay, true
		}
		return "SYSTEM UPDATED - RESTART RECOMMENDED", LevelOK, settingsDelay, true
	default:
		return "", LevelOK, 0, false
	}
}
