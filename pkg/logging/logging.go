// Package logging configures the logrus logger shared by the CLI and the UI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Options select the level and sink for New.
type Options struct {
	Level string
	// File, when set, receives log lines instead of Output.
	File   string
	Output io.Writer
}

// New returns a configured logger and a closer for its file sink.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		level = lvl
	}
	log.SetLevel(level)

	var closer io.Closer = nopCloser{}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		out = f
		closer = f
	}
	log.SetOutput(out)

	formatter := &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		formatter.DisableColors = true
	}
	log.SetFormatter(formatter)

	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Entry is a log line captured for display.
type Entry struct {
	Time    time.Time
	Level   logrus.Level
	Message string
	Fields  logrus.Fields
}

// UIHook forwards log entries to a channel drained by the UI. While the UI
// owns the terminal the logger's own output should be discarded.
type UIHook struct {
	ch      chan<- Entry
	dropped atomic.Uint64
}

// NewUIHook returns a hook sending to ch. Entries that do not fit are dropped
// and counted; the count rides on the next entry that gets through as the
// "dropped" field.
func NewUIHook(ch chan<- Entry) *UIHook {
	return &UIHook{ch: ch}
}

// Dropped returns how many entries were lost since the last one delivered.
func (h *UIHook) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *UIHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *UIHook) Fire(entry *logrus.Entry) error {
	fields := make(logrus.Fields, len(entry.Data)+1)
	for k, v := range entry.Data {
		fields[k] = v
	}
	lost := h.dropped.Swap(0)
	if lost > 0 {
		fields["dropped"] = lost
	}
	select {
	case h.ch <- Entry{Time: entry.Time, Level: entry.Level, Message: entry.Message, Fields: fields}:
	default:
		h.dropped.Add(lost + 1)
	}
	return nil
}
