package stats

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/control"
	"tableflip.dev/nodewatch/pkg/printers"
)

type fakeFetcher control.Stats

func (f fakeFetcher) Stats(context.Context) (control.Stats, error) {
	return control.Stats(f), nil
}

func TestStats(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	s := Stats{
		Client:  fakeFetcher{ActiveDevices: 3, TotalUp: 12.5, TotalDown: 40},
		Printer: &printers.PrettyPrint{Out: &buf},
	}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Network", "12.5 KB/s", "40.0 KB/s", "off"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
