package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
)

// Placement controls overlay alignment and sizing.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	Width      int
	Height     int
}

// Compose draws foreground over background inside a width x height canvas.
// Background rows covered by the overlay keep their left part only; every
// returned row is exactly width cells wide.
func Compose(background string, width, height int, foreground string, placement Placement) string {
	bg := normalize(background, width, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return strings.Join(bg, "\n")
	}
	fg := strings.Split(foreground, "\n")

	ow := placement.Width
	if ow <= 0 {
		for _, line := range fg {
			ow = max(ow, lipgloss.Width(line))
		}
	}
	ow = min(ow, width)
	oh := placement.Height
	if oh <= 0 {
		oh = len(fg)
	}
	oh = min(oh, height)

	x := offset(placement.Horizontal, width, ow)
	y := offset(placement.Vertical, height, oh)

	for row := 0; row < oh; row++ {
		line := ""
		if row < len(fg) {
			line = fg[row]
		}
		prefix := padding.String(truncate.String(bg[y+row], uint(x)), uint(x))
		bg[y+row] = fit(prefix+fit(line, ow), width)
	}
	return strings.Join(bg, "\n")
}

func normalize(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = fit(lines[i], width)
	}
	return lines
}

func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return padding.String(truncate.String(s, uint(width)), uint(width))
}

func offset(pos lipgloss.Position, total, size int) int {
	var off int
	switch pos {
	case lipgloss.Left: // also Top
		off = 0
	case lipgloss.Right: // also Bottom
		off = total - size
	default:
		off = (total - size) / 2
	}
	return max(0, min(off, total-size))
}
