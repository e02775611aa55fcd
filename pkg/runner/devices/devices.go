// Package devices prints a one-shot snapshot of the device list.
package devices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/printers"
	"tableflip.dev/nodewatch/pkg/reconcile"
)

// ErrNoSnapshot is returned when the feed delivers nothing before Wait ends.
var ErrNoSnapshot = errors.New("devices: no update received")

// Lister fetches the stored device list.
type Lister interface {
	Devices(ctx context.Context) ([]control.DeviceInfo, error)
}

// Snapshot is the JSON form of the output.
type Snapshot struct {
	Devices []device.Record    `json:"devices"`
	Stats   device.GlobalStats `json:"global_stats"`
	Active  int                `json:"active_devices"`
}

type Devices struct {
	// Poll reads the stored list through Lister instead of waiting for the
	// push channel. Stored devices carry no rates.
	Poll   bool
	Lister Lister

	FeedURL string
	Wait    time.Duration
	Logger  logrus.FieldLogger

	ActiveOnly bool
	JSON       bool
	Printer    *printers.PrettyPrint
}

func (d *Devices) Do(ctx context.Context) error {
	update, err := d.fetch(ctx)
	if err != nil {
		return err
	}

	recon := reconcile.New(reconcile.Filter{ActiveOnly: d.ActiveOnly})
	if _, err := recon.Apply(update); err != nil {
		return err
	}
	visible := recon.Visible()
	snap := Snapshot{
		Devices: make([]device.Record, 0, len(visible)),
		Stats:   recon.Stats(),
		Active:  recon.ActiveCount(),
	}
	for _, e := range visible {
		snap.Devices = append(snap.Devices, e.Record)
	}

	pp := d.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if d.JSON {
		return pp.JSON(snap)
	}
	pp.TitleWithCount("Devices", len(snap.Devices))
	pp.Devices(snap.Devices...)
	if !d.Poll {
		pp.Totals(snap.Stats, snap.Active)
	}
	return nil
}

func (d *Devices) fetch(ctx context.Context) (device.Update, error) {
	if d.Poll {
		if d.Lister == nil {
			return device.Update{}, errors.New("devices: no control client")
		}
		infos, err := d.Lister.Devices(ctx)
		if err != nil {
			return device.Update{}, err
		}
		u := device.Update{Devices: make([]device.Record, 0, len(infos))}
		for _, info := range infos {
			u.Devices = append(u.Devices, info.Record())
		}
		return u, nil
	}
	return d.firstUpdate(ctx)
}

func (d *Devices) firstUpdate(ctx context.Context) (device.Update, error) {
	wait := d.Wait
	if wait <= 0 {
		wait = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	got := make(chan device.Update, 1)
	m := feed.New(feed.Options{
		URL:    d.FeedURL,
		Logger: d.Logger,
		Handler: func(msg feed.Message) {
			u, ok := msg.(feed.DeviceUpdate)
			if !ok || u.Validate() != nil {
				return
			}
			select {
			case got <- u.Update:
			default:
			}
		},
	})
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case u := <-got:
		cancel()
		<-done
		return u, nil
	case <-ctx.Done():
		<-done
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return device.Update{}, fmt.Errorf("%w within %s from %s", ErrNoSnapshot, wait, d.FeedURL)
		}
		return device.Update{}, ctx.Err()
	}
}
