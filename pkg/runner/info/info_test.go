package info

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/nodewatch/pkg/printers"
	"tableflip.dev/nodewatch/pkg/store"
)

type testConfig struct {
	path string
}

func (c testConfig) Server() string                { return "https://inspector.local:8443" }
func (c testConfig) ReconnectDelay() time.Duration { return store.DefaultReconnectDelay }
func (c testConfig) RequestTimeout() time.Duration { return store.DefaultRequestTimeout }
func (c testConfig) LogFile() string               { return "" }
func (c testConfig) LogLevel() string              { return "info" }
func (c testConfig) PrefsPath() string             { return c.path }

func TestInfo(t *testing.T) {
	color.NoColor = true
	t.Setenv("NODEWATCH_CONFIG_PATH", "")
	cfg := testConfig{path: t.TempDir()}
	p, err := store.Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var buf bytes.Buffer
	i := Info{Config: cfg, Persistence: p, Printer: &printers.PrettyPrint{Out: &buf}}
	if err := i.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Config file: none",
		"Feed: wss://inspector.local:8443/ws/updates",
		cfg.path,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
