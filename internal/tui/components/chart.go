package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fitrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders values as unicode blocks scaled between their min and max.
// A flat series renders as the lowest block.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}
	return style.Render(buf.String())
}

// ShareBar renders a horizontal bar for a fraction of a whole (0 to 1),
// followed by the percentage.
func ShareBar(frac float64, width int, color lipgloss.Color) string {
	t := theme.Active
	if width < 1 {
		width = 1
	}
	if frac < 0 || frac != frac {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)

	fill := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	return fill.Render(strings.Repeat("━", filled)) +
		empty.Render(strings.Repeat("─", width-filled)) +
		label.Render(fmt.Sprintf(" %5.1f%%", frac*100))
}
