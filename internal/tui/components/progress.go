package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fitrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForPct colors goal progress: the closer to the goal, the greener.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 75:
		return t.Gain
	case pct >= 25:
		return t.Goal
	default:
		return t.Warn
	}
}

// GoalBar renders goal progress (0 to 100) with the percentage after it.
func GoalBar(pct float64, width int) string {
	t := theme.Active
	pct = clampPct(pct)
	if width < 4 {
		width = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(ColorForPct(pct))),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(ColorForPct(pct)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct/100) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%6.2f%%", pct))
}

// MilestoneRuler renders one marker per 5% band under a GoalBar of the
// same width. Bands at or below the watermark are lit.
func MilestoneRuler(watermark float64, width int) string {
	t := theme.Active
	if width < 4 {
		width = 4
	}
	lit := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pad := lipgloss.NewStyle().Background(t.Surface)

	cells := make([]string, width)
	for i := range cells {
		cells[i] = pad.Render(" ")
	}
	for band := 5.0; band < 100; band += 5 {
		i := int(band * float64(width) / 100)
		if i <= 0 || i >= width {
			continue
		}
		if band <= watermark {
			cells[i] = lit.Render("▴")
		} else {
			cells[i] = dim.Render("·")
		}
	}
	return strings.Join(cells, "")
}

func clampPct(pct float64) float64 {
	if pct < 0 || pct != pct {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
