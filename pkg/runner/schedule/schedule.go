// Package schedule provides the runner logic for setting a device's access window.
package schedule

import (
	"context"
	"errors"
	"strings"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
	"tableflip.dev/nodewatch/pkg/timeutil"
)

// Scheduler is the control call this runner makes.
type Scheduler interface {
	SetSchedule(ctx context.Context, mac, start, end string) (control.ScheduleResult, error)
}

// Schedule stores a daily window during which the backend blocks a device.
type Schedule struct {
	MAC   string
	Start string
	End   string

	Client  Scheduler
	JSON    bool
	Printer *printers.PrettyPrint
}

// Do validates both clocks before making the call; the backend is never asked
// to store a malformed window. Blank Start and End clear the window.
func (s *Schedule) Do(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("can not schedule, no control client")
	}
	mac := strings.TrimSpace(s.MAC)
	if mac == "" {
		return errors.New("mac address required")
	}
	start, end, err := timeutil.NormalizeWindow(s.Start, s.End)
	if err != nil {
		return err
	}

	res, err := s.Client.SetSchedule(ctx, mac, start, end)
	if err != nil {
		return err
	}

	pp := s.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if s.JSON {
		return pp.JSON(res)
	}
	if start == "" {
		pp.Printf("%s schedule cleared\n", mac)
		return nil
	}
	pp.Printf("%s blocked daily from %s to %s\n", mac, start, end)
	return nil
}
