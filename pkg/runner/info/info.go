package info

import (
	"context"
	"fmt"
	"os"

	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/printers"
	"tableflip.dev/nodewatch/pkg/store"
)

type Info struct {
	Config      store.Config
	Persistence store.Persistence
	Printer     *printers.PrettyPrint
}

func (n *Info) Do(ctx context.Context) error {
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	if override := os.Getenv("NODEWATCH_CONFIG_PATH"); override != "" {
		pp.Printf("NODEWATCH_CONFIG_PATH found on env, using %s\n", override)
	} else {
		pp.Printf("NODEWATCH_CONFIG_PATH env var not set\n")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	if file := store.ConfigFile(n.Config); file != "" {
		pp.Printf("Config file: %s\n", file)
	} else {
		pp.Printf("Config file: none, using defaults\n")
	}
	pp.Printf("Server: %s\n", n.Config.Server())

	feedURL, err := feed.URLFromServer(n.Config.Server())
	if err != nil {
		pp.Printf("Feed: %v\n", err)
	} else {
		pp.Printf("Feed: %s\n", feedURL)
	}
	pp.Printf("Reconnect delay: %s\n", n.Config.ReconnectDelay())
	pp.Printf("Request timeout: %s\n", n.Config.RequestTimeout())
	if n.Config.LogFile() != "" {
		pp.Printf("Log file: %s (%s)\n", n.Config.LogFile(), n.Config.LogLevel())
	}

	if n.Persistence == nil {
		return fmt.Errorf("Failed to create persistence object.")
	}

	prefs := n.Persistence.LoadOrDefault()
	pp.NewLine()
	pp.Preferences(prefs, n.Persistence.Path())

	return nil
}
