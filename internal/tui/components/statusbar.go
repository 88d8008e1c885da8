package components

import (
	"strings"

	"github.com/theirongolddev/fitrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar shows.
type Status struct {
	ReadOnly bool   // consent not given
	Running  bool   // engine ticking
	Saved    string // last save summary, e.g. "saved 12:04:05"
	SaveErr  bool
	Flash    string // transient message from the last action
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).Bold(true)
	lossStyle := lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface)
	gainStyle := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)

	left := base.Render(" ") + keyStyle.Render("?") + base.Render("help  ") +
		keyStyle.Render("q") + base.Render("uit")

	var mid []string
	if s.ReadOnly {
		mid = append(mid, warnStyle.Render("READ-ONLY"))
	}
	if s.Flash != "" {
		mid = append(mid, base.Render(s.Flash))
	}

	right := ""
	if s.Saved != "" {
		if s.SaveErr {
			right = lossStyle.Render(s.Saved)
		} else {
			right = base.Render(s.Saved)
		}
	}
	if s.Running {
		right += base.Render("  ") + gainStyle.Render("●") + base.Render(" live ")
	} else {
		right += base.Render("  ○ idle ")
	}

	if len(mid) > 0 {
		left += base.Render("  ") + strings.Join(mid, base.Render("  "))
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
