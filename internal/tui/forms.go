package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/fitrack/internal/config"
	"github.com/theirongolddev/fitrack/internal/consent"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type formKind int

const (
	formNone formKind = iota
	formSetup
	formConsent
	formPortfolio
	formAccount
)

// formValues backs the fields of whichever form is open.
type formValues struct {
	agree bool

	index     int // account being edited, -1 for a new one
	principal string
	rate      string

	goal         string
	inflation    string
	contribution string

	theme    string
	currency string
	command  string
	reminder int
}

const maxFormWidth = 72

func (a App) formWidth() int {
	w := a.width - 4
	if w > maxFormWidth {
		w = maxFormWidth
	}
	return w
}

// nextForm opens the next queued form, skipping a consent form that is no
// longer needed.
func (a *App) nextForm() tea.Cmd {
	for len(a.pending) > 0 {
		kind := a.pending[0]
		a.pending = a.pending[1:]
		if kind == formConsent && a.snap.ConsentGiven {
			continue
		}
		return a.openForm(kind)
	}
	return nil
}

func (a *App) openForm(kind formKind) tea.Cmd {
	p := a.snap.Portfolio
	v := &formValues{index: -1}

	var form *huh.Form
	switch kind {
	case formSetup:
		v.theme = theme.ByName(a.cfg.Appearance.Theme).Name
		v.currency = finance.CurrencyByCode(a.cfg.Appearance.Currency).Code
		v.command = strings.Join(a.cfg.Notifications.Command, " ")
		v.reminder = a.cfg.Notifications.DailyReminderHour
		form = newSetupForm(v)
	case formConsent:
		v.agree = a.snap.ConsentGiven
		form = newConsentForm(v)
	case formPortfolio:
		v.goal = plainNumber(p.Goal)
		v.inflation = plainNumber(p.InflationPct)
		v.contribution = plainNumber(p.MonthlyContribution)
		form = newPortfolioForm(v)
	default:
		return nil
	}
	return a.showForm(kind, v, form)
}

// openAccountForm edits account i, or adds one when i is negative.
func (a *App) openAccountForm(i int) tea.Cmd {
	v := &formValues{index: i}
	title := "New account"
	if accts := a.snap.Portfolio.Accounts; i >= 0 && i < len(accts) {
		v.principal = plainNumber(accts[i].Principal)
		v.rate = plainNumber(accts[i].RatePct)
		title = fmt.Sprintf("Account %d", i+1)
	} else {
		v.index = -1
	}
	return a.showForm(formAccount, v, newAccountForm(title, v))
}

func (a *App) showForm(kind formKind, v *formValues, form *huh.Form) tea.Cmd {
	form = form.WithTheme(huh.ThemeCharm()).WithShowHelp(true)
	if a.width > 0 {
		form = form.WithWidth(a.formWidth()).WithHeight(a.height)
	}
	a.form = form
	a.formKind = kind
	a.vals = v
	return form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		done := a.completeForm()
		a.closeForm()
		next := a.nextForm()
		return a, tea.Batch(done, next, snapshotCmd(a.eng))
	case huh.StateAborted:
		if a.formKind == formConsent && !a.snap.ConsentGiven {
			a.setFlash("read-only: press c to review consent", nil)
		}
		a.closeForm()
		next := a.nextForm()
		return a, next
	}
	return a, cmd
}

func (a *App) closeForm() {
	a.form = nil
	a.formKind = formNone
	a.vals = nil
}

// completeForm applies the submitted values. Slow engine calls are returned
// as commands.
func (a *App) completeForm() tea.Cmd {
	v := a.vals
	switch a.formKind {
	case formSetup:
		a.applyPreferences(v)
	case formConsent:
		if v.agree {
			return acceptConsentCmd(a.eng)
		}
		if err := a.eng.RejectConsent(context.Background()); err != nil {
			a.setFlash("consent", err)
			return nil
		}
		a.setFlash("consent declined: read-only mode", nil)
	case formPortfolio:
		a.applyPortfolio(v)
	case formAccount:
		a.applyAccount(v)
	}
	return nil
}

func (a *App) applyPreferences(v *formValues) {
	a.cfg.Appearance.Theme = v.theme
	a.cfg.Appearance.Currency = v.currency
	a.cfg.Notifications.Command = strings.Fields(v.command)
	a.cfg.Notifications.DailyReminderHour = v.reminder
	theme.SetActive(v.theme)
	a.cur = finance.CurrencyByCode(v.currency)
	a.spinner.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	if err := config.Save(a.cfg); err != nil {
		a.setFlash("preferences apply to this session only", err)
		return
	}
	a.setFlash("preferences saved to "+config.ConfigPath(), nil)
}

func (a *App) applyPortfolio(v *formValues) {
	goal, _ := finance.ParseAmount(v.goal)
	inflation, _ := finance.ParseAmount(v.inflation)
	contribution, _ := finance.ParseAmount(v.contribution)

	for _, step := range []struct {
		name string
		fn   func() error
	}{
		{"goal", func() error { return a.eng.SetGoal(goal) }},
		{"inflation", func() error { return a.eng.SetInflation(inflation) }},
		{"contribution", func() error { return a.eng.SetContribution(contribution) }},
	} {
		if err := step.fn(); err != nil {
			a.setFlash(step.name, err)
			return
		}
	}
	a.setFlash("settings changed (w to save)", nil)
}

func (a *App) applyAccount(v *formValues) {
	principal, _ := finance.ParseAmount(v.principal)
	rate, _ := finance.ParseAmount(v.rate)

	i := v.index
	if i < 0 {
		added, err := a.eng.AddAccount()
		if err != nil {
			a.setFlash("add account", err)
			return
		}
		i = added
	}
	if err := a.eng.EditAccount(i, principal, rate); err != nil {
		a.setFlash("edit account", err)
		return
	}
	a.cursor = i
	a.setFlash(fmt.Sprintf("account %d updated (w to save)", i+1), nil)
}

func acceptConsentCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		res, err := eng.AcceptConsent(ctx)
		if err != nil {
			return actionMsg{flash: "consent", err: err}
		}
		if res.Err != nil {
			return actionMsg{flash: "consent recorded but not saved", err: res.Err}
		}
		return actionMsg{flash: "consent accepted"}
	}
}

func (a App) viewForm() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(a.form.View()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Form builders ──────────────────────────────────────────────

func newConsentForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Your data stays on this machine").
				Description(consent.Disclosure),
			huh.NewConfirm().
				Title("Do you accept these terms?").
				Description("Without consent the dashboard is read-only.").
				Affirmative("I accept").
				Negative("Not now").
				Value(&v.agree),
		),
	)
}

func newPortfolioForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Goal").
				Description("Target amount for financial independence.").
				Value(&v.goal).
				Validate(positiveAmount),
			huh.NewInput().
				Title("Annual inflation (%)").
				Value(&v.inflation).
				Validate(nonNegativeAmount),
			huh.NewInput().
				Title("Monthly contribution").
				Description("Split equally across all accounts.").
				Value(&v.contribution).
				Validate(nonNegativeAmount),
		).Title("Portfolio settings"),
	)
}

func newAccountForm(title string, v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Principal").
				Description("Saving resets this account's balance to the principal.").
				Value(&v.principal).
				Validate(positiveAmount),
			huh.NewInput().
				Title("Annual rate (%)").
				Placeholder("12").
				Value(&v.rate).
				Validate(positiveAmount),
		).Title(title),
	)
}

func newSetupForm(v *formValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}
	curOpts := make([]huh.Option[string], 0, len(finance.Currencies))
	for _, c := range finance.Currencies {
		curOpts = append(curOpts, huh.NewOption(strings.ToUpper(c.Code)+" ("+c.Symbol+")", c.Code))
	}
	hourOpts := []huh.Option[int]{huh.NewOption("Off", -1)}
	for h := 0; h < 24; h++ {
		hourOpts = append(hourOpts, huh.NewOption(fmt.Sprintf("%02d:00", h), h))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.theme),
			huh.NewSelect[string]().
				Title("Currency").
				Options(curOpts...).
				Value(&v.currency),
		).Title("Welcome to fitrack"),
		huh.NewGroup(
			huh.NewInput().
				Title("Desktop notifier command").
				Description("{title} and {body} are replaced, e.g. notify-send {title} {body}. Empty logs only.").
				Value(&v.command),
			huh.NewSelect[int]().
				Title("Daily reminder").
				Options(hourOpts...).
				Height(8).
				Value(&v.reminder),
		).Title("Notifications"),
	)
}

// ─── Validators ─────────────────────────────────────────────────

func positiveAmount(s string) error {
	v, err := finance.ParseAmount(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func nonNegativeAmount(s string) error {
	v, err := finance.ParseAmount(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// plainNumber prints v the way ParseAmount reads it back.
func plainNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}
