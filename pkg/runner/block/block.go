// Package block provides the runner logic for blocking and unblocking a device.
package block

import (
	"context"
	"errors"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
)

// Blocker is the control call this runner makes.
type Blocker interface {
	SetBlock(ctx context.Context, mac string, blocked bool) (control.BlockResult, error)
}

// Block sets the blocked state of one device.
type Block struct {
	MAC     string
	Blocked bool
	Client  Blocker
	JSON    bool
	Printer *printers.PrettyPrint
}

// Do issues a single block or unblock request.
func (b *Block) Do(ctx context.Context) error {
	if b.Client == nil {
		return errors.New("can not block, no control client")
	}
	mac := strings.TrimSpace(b.MAC)
	if mac == "" {
		return errors.New("mac address required")
	}

	res, err := b.Client.SetBlock(ctx, mac, b.Blocked)
	if err != nil {
		return err
	}

	pp := b.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if b.JSON {
		return pp.JSON(res)
	}
	state := color.New(color.FgGreen).Sprint("allowed")
	if res.Blocked {
		state = color.New(color.FgRed, color.Bold).Sprint("blocked")
	}
	pp.Printf("%s is now %s\n", res.MAC, state)
	return nil
}
