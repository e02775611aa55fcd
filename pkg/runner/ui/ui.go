// Package ui runs the live terminal dashboard.
package ui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/dispatch"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/logging"
	"tableflip.dev/nodewatch/pkg/store"
	"tableflip.dev/nodewatch/pkg/tui/app"
	"tableflip.dev/nodewatch/pkg/tui/events"
)

const logBuffer = 256

type UI struct {
	Config      store.Config
	Persistence store.Persistence
	Logger      *logrus.Logger
	// Input and Output override the terminal, mostly for tests.
	Input  io.Reader
	Output io.Writer
}

func (u *UI) Do(ctx context.Context) error {
	if u.Config == nil {
		return errors.New("ui: config required")
	}
	log := u.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := control.New(u.Config.Server())
	if err != nil {
		return err
	}
	client = client.WithTimeout(u.Config.RequestTimeout()).WithLogger(log)

	feedURL, err := feed.URLFromServer(u.Config.Server())
	if err != nil {
		return err
	}

	var prefs store.Preferences
	if u.Persistence != nil {
		prefs = u.Persistence.LoadOrDefault()
	}

	model := app.New(app.Options{
		Dispatcher:  dispatch.New(ctx, client, log),
		Persistence: u.Persistence,
		Preferences: prefs,
		Server:      client.BaseURL(),
		Logger:      log,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if u.Input != nil {
		opts = append(opts, tea.WithInput(u.Input))
	}
	if u.Output != nil {
		opts = append(opts, tea.WithOutput(u.Output))
	}
	p := tea.NewProgram(model, opts...)

	// Log lines reach the event viewer through the hook; the terminal
	// itself never sees them.
	entries := make(chan logging.Entry, logBuffer)
	log.AddHook(logging.NewUIHook(entries))
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-entries:
				p.Send(events.LogMsg{Entry: e})
			}
		}
	}()

	manager := feed.New(feed.Options{
		URL:            feedURL,
		ReconnectDelay: u.Config.ReconnectDelay(),
		Logger:         log,
		Handler: func(msg feed.Message) {
			switch m := msg.(type) {
			case feed.DeviceUpdate:
				p.Send(events.FeedMsg{Update: m.Update})
			case feed.Unrecognized:
				log.WithField("component", "feed").Debugf("ignoring %q message", m.Type)
			}
		},
		OnState: func(s feed.State) {
			p.Send(events.LinkMsg{State: s})
		},
	})
	go func() {
		if err := manager.Run(ctx); err != nil {
			log.WithError(err).Error("feed stopped")
		}
	}()

	if u.Persistence != nil {
		changes, err := u.Persistence.Watch(ctx)
		if err != nil {
			log.WithError(err).Warn("preferences will not follow external changes")
		} else {
			go func() {
				for prefs := range changes {
					p.Send(events.PrefsMsg{Prefs: prefs})
				}
			}()
		}
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
