package detail

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkLevels scales data into sparkChars indexes, sampling down to width
// points when there are more values than cells.
func sparkLevels(data []float64, width int) []int {
	if len(data) == 0 || width <= 0 {
		return nil
	}
	n := min(width, len(data))
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	levels := make([]int, n)
	for i := range levels {
		idx := i * len(data) / n
		if hi == lo {
			levels[i] = 3
			continue
		}
		levels[i] = min(int((data[idx]-lo)/(hi-lo)*7), 7)
	}
	return levels
}

// Sparkline renders data as block characters.
func Sparkline(data []float64, width int) string {
	var b strings.Builder
	for _, lvl := range sparkLevels(data, width) {
		b.WriteRune(sparkChars[lvl])
	}
	return b.String()
}

// gradient returns one foreground style per spark level, blended from one
// hex color to another.
func gradient(from, to string) []lipgloss.Style {
	styles := make([]lipgloss.Style, len(sparkChars))
	a, errA := colorful.Hex(from)
	b, errB := colorful.Hex(to)
	for i := range styles {
		if errA != nil || errB != nil {
			styles[i] = lipgloss.NewStyle()
			continue
		}
		c := a.BlendLuv(b, float64(i)/float64(len(sparkChars)-1)).Clamped()
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	}
	return styles
}

func colorSparkline(data []float64, width int, ramp []lipgloss.Style) string {
	var b strings.Builder
	for _, lvl := range sparkLevels(data, width) {
		b.WriteString(ramp[lvl].Render(string(sparkChars[lvl])))
	}
	return b.String()
}
