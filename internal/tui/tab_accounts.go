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

func (a App) renderAccountsTab(cw int) string {
	t := theme.Active
	s := a.snap
	accts := s.Portfolio.Accounts
	innerW := components.CardInnerWidth(cw)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(accts) == 0 {
		body := muted.Render("No accounts. ")
		if s.ConsentGiven {
			body += dim.Render("Press n to add one.")
		} else {
			body += dim.Render("Accept consent (c) to add one.")
		}
		return components.ContentCard("Accounts", body, cw)
	}

	// Fixed columns, the share bar takes what is left.
	const (
		idxW   = 4
		moneyW = 18
		rateW  = 8
		epsW   = 16
	)
	shareW := innerW - idxW - 2*moneyW - rateW - epsW - 5 - 8
	showShare := shareW >= 6 && !a.isCompactLayout()

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cols := []string{
		padR("#", idxW), padL("Principal", moneyW), padL("Balance", moneyW),
		padL("Rate", rateW), padL("Earnings/s", epsW),
	}
	if showShare {
		cols = append(cols, " Share")
	}

	var b strings.Builder
	b.WriteString(header.Render(strings.Join(cols, " ")))
	b.WriteString("\n")

	for i, acc := range accts {
		line := strings.Join([]string{
			padR(fmt.Sprintf("%d", i+1), idxW),
			padL(cli.Money(acc.Principal, a.cur), moneyW),
			padL(cli.Money(acc.Balance, a.cur), moneyW),
			padL(finance.FormatPercent(acc.RatePct, 2), rateW),
			padL(cli.Rate(acc.EarningsPerSecond, a.cur), epsW),
		}, " ")

		style := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
		if i == a.cursor {
			style = lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
		}
		b.WriteString(style.Render(line))
		if showShare {
			frac := 0.0
			if s.Aggregate > 0 {
				frac = acc.Balance / s.Aggregate
			}
			b.WriteString(muted.Render(" "))
			b.WriteString(components.ShareBar(frac, shareW, t.Accent))
		}
		b.WriteString("\n")
	}

	hint := "j/k select · enter edit · n add · d remove · w save"
	if !s.ConsentGiven {
		hint = "read-only until consent is accepted (c)"
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(hint))

	title := fmt.Sprintf("Accounts (%d)", len(accts))
	return components.ContentCard(title, b.String(), cw)
}

func padR(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padL(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
