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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.snap
	p := s.Portfolio
	var b strings.Builder

	// Row 1: headline figures
	growth := s.Aggregate - p.TotalPrincipal
	growthTone := t.Gain
	if growth < 0 {
		growthTone = t.Loss
	}
	ttgDelta := "at the current pace"
	if s.TimeToGoalSec == nil {
		ttgDelta = "no growth at this pace"
	} else if *s.TimeToGoalSec == 0 {
		ttgDelta = "goal reached"
	}
	metrics := []components.Metric{
		{Label: "Aggregate", Value: cli.Money(s.Aggregate, a.cur), Delta: cli.FormatDelta(s.Aggregate, p.TotalPrincipal, a.cur) + " vs principal", Tone: growthTone},
		{Label: "Progress", Value: finance.FormatPercent(s.Progress, 2), Delta: "next milestone " + finance.FormatPercent(s.NextMilestone, 0), Tone: components.ColorForPct(s.Progress)},
		{Label: "Time to goal", Value: s.TimeToGoalStr, Delta: ttgDelta},
		{Label: "Earned today", Value: cli.Money(s.EarnedToday, a.cur), Delta: cli.Rate(s.EarningsPerSecond, a.cur) + "/s", Tone: t.Gain},
	}
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:2], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[2:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	// Row 2: goal bar with milestone ruler
	innerW := components.CardInnerWidth(cw)
	barW := innerW - 8 // room for " 100.00%"
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var goal strings.Builder
	goal.WriteString(components.GoalBar(s.Progress, barW))
	goal.WriteString("\n")
	goal.WriteString(components.MilestoneRuler(p.Watermark, barW))
	goal.WriteString("\n")
	goal.WriteString(muted.Render("goal ") + value.Render(cli.Money(p.Goal, a.cur)))
	goal.WriteString(muted.Render("   remaining "))
	remaining := p.Goal - s.Aggregate
	if remaining < 0 {
		remaining = 0
	}
	goal.WriteString(value.Render(cli.Money(remaining, a.cur)))
	if p.Watermark > 0 {
		goal.WriteString(muted.Render("   last milestone "))
		goal.WriteString(lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface).
			Render(finance.FormatPercent(p.Watermark, 0)))
	}
	b.WriteString(components.FocusedCard("Financial Independence", goal.String(), cw))
	b.WriteString("\n")

	// Row 3: growth rates + live sparkline
	halves := components.LayoutRow(cw, 2)

	var rates strings.Builder
	row := func(label, v string) {
		fmt.Fprintf(&rates, "%s%s\n",
			muted.Render(fmt.Sprintf("%-16s", label)),
			value.Render(v))
	}
	row("Earnings / s", cli.Rate(s.EarningsPerSecond, a.cur))
	row("Contribution / s", cli.Rate(s.ContributionPerSecond, a.cur))
	row("Earnings / month", cli.Money(s.Earnings.PerMonth, a.cur))
	row("Principal", cli.Money(p.TotalPrincipal, a.cur))
	row("Accounts", fmt.Sprintf("%d", len(p.Accounts)))
	ratesCard := components.ContentCard("Growth", strings.TrimSuffix(rates.String(), "\n"), halves[0])

	spark := muted.Render("collecting samples...")
	if len(a.history) > 1 {
		sparkW := components.CardInnerWidth(halves[1])
		samples := a.history
		if len(samples) > sparkW {
			samples = samples[len(samples)-sparkW:]
		}
		spark = components.Sparkline(samples, t.Accent) + "\n" +
			muted.Render(fmt.Sprintf("last %d samples, %s ticks", len(samples), cli.FormatNumber(int64(s.Ticks))))
	}
	liveCard := components.ContentCard("Live aggregate", spark, halves[1])

	if a.isCompactLayout() {
		b.WriteString(ratesCard)
		b.WriteString("\n")
		b.WriteString(liveCard)
	} else {
		b.WriteString(components.CardRow([]string{ratesCard, liveCard}))
	}
	return b.String()
}
