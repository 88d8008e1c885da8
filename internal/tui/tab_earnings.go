package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/tui/components"
	"github.com/theirongolddev/fitrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderEarningsTab(cw int) string {
	t := theme.Active
	s := a.snap
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	gain := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)

	line := func(b *strings.Builder, label, v string, style lipgloss.Style) {
		fmt.Fprintf(b, "%s%s\n", muted.Render(fmt.Sprintf("%-12s", label)), style.Render(v))
	}

	e := s.Earnings
	var earn strings.Builder
	line(&earn, "Second", cli.Rate(e.PerSecond, a.cur), value)
	line(&earn, "Minute", cli.Money(e.PerMinute, a.cur), value)
	line(&earn, "Hour", cli.Money(e.PerHour, a.cur), value)
	line(&earn, "Day", cli.Money(e.PerDay, a.cur), value)
	line(&earn, "Week", cli.Money(e.PerWeek, a.cur), value)
	line(&earn, "Month", cli.Money(e.PerMonth, a.cur), value)
	line(&earn, "Year", cli.Money(e.PerYear, a.cur), gain)

	var contrib strings.Builder
	line(&contrib, "Second", cli.Rate(s.ContributionPerSecond, a.cur), value)
	line(&contrib, "Month", cli.Money(s.Contributions.PerMonth, a.cur), value)
	line(&contrib, "Year", cli.Money(s.Contributions.PerYear, a.cur), gain)
	contrib.WriteString("\n")
	line(&contrib, "Inflation", finance.FormatPercent(s.Portfolio.InflationPct, 2), value)
	line(&contrib, "Today", cli.Money(s.EarnedToday, a.cur), gain)

	earnTitle := "Real earnings"
	contribTitle := "Contributions"
	if a.isCompactLayout() {
		return components.ContentCard(earnTitle, strings.TrimSuffix(earn.String(), "\n"), cw) + "\n" +
			components.ContentCard(contribTitle, strings.TrimSuffix(contrib.String(), "\n"), cw)
	}
	halves := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		components.ContentCard(earnTitle, strings.TrimSuffix(earn.String(), "\n"), halves[0]),
		components.ContentCard(contribTitle, strings.TrimSuffix(contrib.String(), "\n"), halves[1]),
	})
}

func (a App) renderMilestonesTab(cw int) string {
	t := theme.Active
	s := a.snap
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	gain := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface).Bold(true)

	var b strings.Builder
	b.WriteString(components.MilestoneRuler(s.Portfolio.Watermark, components.CardInnerWidth(cw)-8))
	b.WriteString("\n\n")

	if len(a.reached) == 0 {
		if s.Portfolio.Watermark > 0 {
			b.WriteString(muted.Render(fmt.Sprintf("Highest band reached: %s",
				finance.FormatPercent(s.Portfolio.Watermark, 0))))
		} else {
			b.WriteString(muted.Render("No milestones reached yet."))
		}
	} else {
		for i := len(a.reached) - 1; i >= 0; i-- {
			m := a.reached[i]
			fmt.Fprintf(&b, "%s  %s\n",
				gain.Render(fmt.Sprintf("%5s", finance.FormatPercent(m.Band, 0))),
				muted.Render(m.ReachedAt.Local().Format("2006-01-02 15:04")))
		}
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("Next milestone at %s of the goal.",
		finance.FormatPercent(s.NextMilestone, 0))))

	return components.ContentCard("Milestones", b.String(), cw)
}
