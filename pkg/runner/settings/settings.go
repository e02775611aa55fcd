// Package settings shows and changes the backend's scan settings.
package settings

import (
	"context"
	"errors"
	"slices"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
)

// Client is the part of the control API these runners use.
type Client interface {
	GetSettings(ctx context.Context) (control.SettingsView, error)
	SetSettings(ctx context.Context, update control.SettingsUpdate) (control.Settings, error)
}

// Show prints the current settings and the interfaces the backend can scan.
type Show struct {
	Client  Client
	JSON    bool
	Printer *printers.PrettyPrint
}

func (s *Show) Do(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("can not read settings, no control client")
	}
	view, err := s.Client.GetSettings(ctx)
	if err != nil {
		return err
	}
	pp := printer(s.Printer)
	if s.JSON {
		return pp.JSON(view)
	}
	pp.Settings(view)
	return nil
}

// Set applies a partial change. Fields left nil in Update are not sent.
type Set struct {
	Client  Client
	Update  control.SettingsUpdate
	JSON    bool
	Printer *printers.PrettyPrint
}

func (s *Set) Do(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("can not save settings, no control client")
	}
	if s.Update.Empty() {
		return errors.New("nothing to change; pass --interface, --scan-interval or --paranoid")
	}
	if err := s.Update.Validate(); err != nil {
		return err
	}
	if s.Update.Interface != nil {
		view, err := s.Client.GetSettings(ctx)
		if err != nil {
			return err
		}
		if len(view.Interfaces) > 0 && !slices.Contains(view.Interfaces, *s.Update.Interface) {
			return errors.New("unknown interface " + *s.Update.Interface)
		}
	}

	saved, err := s.Client.SetSettings(ctx, s.Update)
	if err != nil {
		return err
	}
	pp := printer(s.Printer)
	if s.JSON {
		return pp.JSON(saved)
	}
	pp.Settings(control.SettingsView{Settings: saved})
	pp.Printf("%s\n", color.New(color.FgYellow).Sprint("system updated, restart recommended"))
	return nil
}

func printer(pp *printers.PrettyPrint) *printers.PrettyPrint {
	if pp == nil {
		return &printers.PrettyPrint{}
	}
	return pp
}
