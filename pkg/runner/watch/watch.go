// Package watch streams reconciliation diffs from the push channel as text.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"

	"tableflip.dev/nodewatch/pkg/device"
	"tableflip.dev/nodewatch/pkg/feed"
	"tableflip.dev/nodewatch/pkg/reconcile"
)

type Watch struct {
	FeedURL        string
	ReconnectDelay time.Duration
	ActiveOnly     bool
	Logger         logrus.FieldLogger

	// Out defaults to stdout; color follows the terminal it points at.
	Out     io.Writer
	Profile *termenv.Profile
}

// Do prints one line per created (+), updated (~) or removed (-) device
// until ctx is cancelled. Link changes are printed as comments.
func (w *Watch) Do(ctx context.Context) error {
	out := w.Out
	if out == nil {
		out = os.Stdout
	}
	var opts []termenv.OutputOption
	if w.Profile != nil {
		opts = append(opts, termenv.WithProfile(*w.Profile))
	}
	p := &printer{out: termenv.NewOutput(out, opts...)}

	recon := reconcile.New(reconcile.Filter{ActiveOnly: w.ActiveOnly})
	m := feed.New(feed.Options{
		URL:            w.FeedURL,
		ReconnectDelay: w.ReconnectDelay,
		Logger:         w.Logger,
		Handler: func(msg feed.Message) {
			u, ok := msg.(feed.DeviceUpdate)
			if !ok {
				return
			}
			diff, err := recon.Apply(u.Update)
			if err != nil {
				p.comment("skipped update: " + err.Error())
				return
			}
			p.diff(recon, diff)
		},
		OnState: func(s feed.State) {
			p.comment(s.String())
		},
	})
	return m.Run(ctx)
}

type printer struct {
	out *termenv.Output
}

func (p *printer) comment(text string) {
	_, _ = fmt.Fprintln(p.out, p.out.String("# "+text).Faint())
}

func (p *printer) diff(recon *reconcile.Reconciler, d reconcile.Diff) {
	for _, key := range d.Created {
		if e, ok := recon.Entry(key); ok {
			p.line("+", p.out.Color("2"), describe(e.Record))
		}
	}
	for _, key := range d.Updated {
		if e, ok := recon.Entry(key); ok {
			p.line("~", p.out.Color("3"), describe(e.Record))
		}
	}
	for _, key := range d.Hidden {
		p.line("-", p.out.Color("1"), key+" (stale)")
	}
	for _, key := range d.Removed {
		p.line("-", p.out.Color("1"), key)
	}
}

func (p *printer) line(mark string, c termenv.Color, text string) {
	_, _ = fmt.Fprintln(p.out, p.out.String(mark).Foreground(c).Bold().String()+" "+text)
}

func describe(r device.Record) string {
	parts := []string{r.MAC, r.Address()}
	if r.Vendor != "" {
		parts = append(parts, r.Vendor)
	}
	if s := r.Status(); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts,
		"up="+strconv.FormatFloat(r.UpRate, 'f', 1, 64),
		"down="+strconv.FormatFloat(r.DownRate, 'f', 1, 64))
	if r.Stale {
		parts = append(parts, "stale")
	}
	return strings.Join(parts, " ")
}
