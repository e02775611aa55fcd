package help

import (
	"strings"
	"testing"
)

func TestRendersKeyMap(t *testing.T) {
	m := New(70, 60, "")
	view := m.View()
	if strings.Contains(view, "help unavailable") {
		t.Fatalf("help failed to render:\n%s", view)
	}
	for _, want := range []string{"kill switch", "schedule"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in help:\n%s", want, view)
		}
	}
}

func TestRenderNamesBackend(t *testing.T) {
	out, err := Render("http://inspector.local:8000", 80)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "inspector.local:8000") {
		t.Fatalf("expected backend in footer:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected escape codes to be stripped")
	}
}

func TestStripANSI(t *testing.T) {
	if got := stripANSI("\x1b[1mbold\x1b[0m plain"); got != "bold plain" {
		t.Fatalf("got %q", got)
	}
}
