package killswitch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
)

type fakeSwitcher struct {
	err error
}

func (f fakeSwitcher) SetKillSwitch(_ context.Context, enabled bool) (control.KillSwitchResult, error) {
	return control.KillSwitchResult{Status: "ok", KillSwitch: enabled}, f.err
}

func TestKillSwitch(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	k := KillSwitch{Enabled: true, Client: fakeSwitcher{}, Printer: &printers.PrettyPrint{Out: &buf}}
	if err := k.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if buf.String() != "kill switch ENGAGED\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestKillSwitchError(t *testing.T) {
	boom := &control.RequestError{StatusCode: 500, Detail: "boom"}
	k := KillSwitch{Client: fakeSwitcher{err: boom}}
	var reqErr *control.RequestError
	if err := k.Do(context.Background()); !errors.As(err, &reqErr) {
		t.Fatalf("expected request error, got %v", err)
	}
}
