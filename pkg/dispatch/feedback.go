package dispatch

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// Level distinguishes confirmations from error indicators.
type Level int

const (
	LevelOK Level = iota
	LevelError
)

// Notice is a transient confirmation.
type Notice struct {
	Command Command
	Text    string
	Level   Level
	seq     uint64
}

// ExpiredMsg asks the model to revert a notice.
type ExpiredMsg struct {
	Command Command
	Seq     uint64
}

// Describe renders the expiry for the event log.
func (m ExpiredMsg) Describe() string {
	return fmt.Sprintf(`command:%q seq:%d`, m.Command, m.Seq)
}

// Feedback holds at most one notice per command. A newer notice for the same
// command supersedes the older one, and the older one's expiry is ignored.
type Feedback struct {
	seq     uint64
	notices map[Command]Notice
}

// NewFeedback returns empty feedback state.
func NewFeedback() *Feedback {
	return &Feedback{notices: make(map[Command]Notice)}
}

// Confirm shows text for cmd and returns a tick that expires it after delay.
func (f *Feedback) Confirm(cmd Command, level Level, text string, delay time.Duration) tea.Cmd {
	f.seq++
	seq := f.seq
	f.notices[cmd] = Notice{Command: cmd, Text: text, Level: level, seq: seq}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ExpiredMsg{Command: cmd, Seq: seq}
	})
}

// Expire reverts the notice named by msg if it is still current.
func (f *Feedback) Expire(msg ExpiredMsg) bool {
	n, ok := f.notices[msg.Command]
	if !ok || n.seq != msg.Seq {
		return false
	}
	delete(f.notices, msg.Command)
	return true
}

// Notice returns the current notice for cmd.
func (f *Feedback) Notice(cmd Command) (Notice, bool) {
	n, ok := f.notices[cmd]
	return n, ok
}

// Latest returns the most recently shown notice still active.
func (f *Feedback) Latest() (Notice, bool) {
	var (
		best  Notice
		found bool
	)
	for _, n := range f.notices {
		if !found || n.seq > best.seq {
			best, found = n, true
		}
	}
	return best, found
}
