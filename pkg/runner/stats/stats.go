// Package stats prints the backend's network summary.
package stats

import (
	"context"
	"errors"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
)

type Fetcher interface {
	Stats(ctx context.Context) (control.Stats, error)
}

type Stats struct {
	Client  Fetcher
	JSON    bool
	Printer *printers.PrettyPrint
}

func (s *Stats) Do(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("can not read stats, no control client")
	}
	st, err := s.Client.Stats(ctx)
	if err != nil {
		return err
	}
	pp := s.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if s.JSON {
		return pp.JSON(st)
	}
	pp.Stats(st)
	return nil
}
