// Package prefs shows and edits the client-side view preferences.
package prefs

import (
	"context"
	"errors"

	"tableflip.dev/nodewatch/pkg/printers"
	"tableflip.dev/nodewatch/pkg/store"
)

type Show struct {
	Persistence store.Persistence
	JSON        bool
	Printer     *printers.PrettyPrint
}

func (s *Show) Do(_ context.Context) error {
	if s.Persistence == nil {
		return errors.New("can not read preferences, no persistence")
	}
	p, err := s.Persistence.Load()
	if err != nil && !errors.Is(err, store.ErrNoPreferences) {
		return err
	}
	return show(s.Printer, p, s.Persistence.Path(), s.JSON)
}

// Set changes the given preferences. A running dashboard picks the change up
// through its watch on the store.
type Set struct {
	Persistence store.Persistence
	ActiveOnly  *bool
	ShowEvents  *bool
	JSON        bool
	Printer     *printers.PrettyPrint
}

func (s *Set) Do(_ context.Context) error {
	if s.Persistence == nil {
		return errors.New("can not save preferences, no persistence")
	}
	if s.ActiveOnly == nil && s.ShowEvents == nil {
		return errors.New("nothing to change; pass --active-only or --events")
	}
	p, err := s.Persistence.Load()
	if err != nil && !errors.Is(err, store.ErrNoPreferences) {
		return err
	}
	if s.ActiveOnly != nil {
		p.ActiveOnly = *s.ActiveOnly
	}
	if s.ShowEvents != nil {
		p.ShowEvents = *s.ShowEvents
	}
	if err := s.Persistence.Save(p); err != nil {
		return err
	}
	return show(s.Printer, p, s.Persistence.Path(), s.JSON)
}

func show(pp *printers.PrettyPrint, p store.Preferences, path string, asJSON bool) error {
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if asJSON {
		return pp.JSON(p)
	}
	pp.Preferences(p, path)
	return nil
}
