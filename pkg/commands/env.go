package commands

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/logging"
	"tableflip.dev/nodewatch/pkg/store"
)

// environment is what most commands need: resolved config, a logger and a
// control client for the configured backend.
type environment struct {
	Config store.Config
	Log    *logrus.Logger
	Client *control.Client
	closer io.Closer
}

func (e *environment) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// loadEnvironment resolves config and builds the logger. When out is nil
// and no log file is configured, log lines go to stderr.
func loadEnvironment(out io.Writer) (*environment, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel(),
		File:   cfg.LogFile(),
		Output: out,
	})
	if err != nil {
		return nil, err
	}
	client, err := control.New(cfg.Server())
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return &environment{
		Config: cfg,
		Log:    log,
		Client: client.WithTimeout(cfg.RequestTimeout()).WithLogger(log),
		closer: closer,
	}, nil
}

// contextOf returns the command's context. Commands run from an interactive
// prompt are invoked directly and carry none.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
