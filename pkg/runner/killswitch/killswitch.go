// Package killswitch provides the runner logic for the network-wide kill switch.
package killswitch

import (
	"context"
	"errors"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
)

// Switcher is the control call this runner makes.
type Switcher interface {
	SetKillSwitch(ctx context.Context, enabled bool) (control.KillSwitchResult, error)
}

type KillSwitch struct {
	Enabled bool
	Client  Switcher
	JSON    bool
	Printer *printers.PrettyPrint
}

func (k *KillSwitch) Do(ctx context.Context) error {
	if k.Client == nil {
		return errors.New("can not set kill switch, no control client")
	}
	res, err := k.Client.SetKillSwitch(ctx, k.Enabled)
	if err != nil {
		return err
	}

	pp := k.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if k.JSON {
		return pp.JSON(res)
	}
	if res.KillSwitch {
		pp.Printf("kill switch %s\n", color.New(color.FgRed, color.Bold).Sprint("ENGAGED"))
	} else {
		pp.Printf("kill switch %s\n", color.New(color.FgGreen).Sprint("released"))
	}
	return nil
}
