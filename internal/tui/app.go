// Package tui implements the interactive fitrack dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fitrack/internal/config"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/model"
	"github.com/theirongolddev/fitrack/internal/store"
	"github.com/theirongolddev/fitrack/internal/tui/components"
	"github.com/theirongolddev/fitrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

const (
	minTerminalWidth = 60
	compactWidth     = 90
	maxContentWidth  = 160
	minContentHeight = 5

	pollInterval  = time.Second
	actionTimeout = 5 * time.Second
	// Aggregate samples kept for the overview sparkline.
	historyLen = 120
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabAccounts
	tabEarnings
	tabMilestones
)

// MilestoneSource lists recorded milestone crossings.
type MilestoneSource interface {
	Milestones(ctx context.Context) ([]store.Milestone, error)
}

// Options configures the dashboard.
type Options struct {
	Engine     *engine.Engine
	Milestones MilestoneSource // optional
	Config     config.Config
	// FirstRun opens the preferences form before anything else.
	FirstRun bool
	Log      *logrus.Entry
}

// App is the root Bubble Tea model.
type App struct {
	eng        *engine.Engine
	milestones MilestoneSource
	cfg        config.Config
	cur        finance.Currency
	log        *logrus.Entry

	snap    engine.Snapshot
	loaded  bool
	history []float64
	reached []store.Milestone

	width     int
	height    int
	activeTab int
	showHelp  bool
	cursor    int // selected account

	form     *huh.Form
	formKind formKind
	vals     *formValues
	// Forms queued behind the one on screen (first-run setup, then consent).
	pending []formKind

	flash    string
	flashErr bool
	spinner  spinner.Model
}

// NewApp creates the dashboard for a loaded engine.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	a := App{
		eng:        opts.Engine,
		milestones: opts.Milestones,
		cfg:        opts.Config,
		cur:        finance.CurrencyByCode(opts.Config.Appearance.Currency),
		log:        log.WithField("component", "tui"),
		spinner:    sp,
	}
	if opts.FirstRun {
		a.pending = append(a.pending, formSetup)
	}
	if !opts.Engine.ConsentGiven() {
		a.pending = append(a.pending, formConsent)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		snapshotCmd(a.eng),
		milestonesCmd(a.milestones),
	)
}

type snapshotMsg struct{ snap engine.Snapshot }

type pollMsg struct{}

type milestonesMsg struct {
	list []store.Milestone
	err  error
}

// actionMsg reports the outcome of an engine call made off the update loop.
type actionMsg struct {
	flash string
	err   error
}

func snapshotCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{snap: eng.Snapshot()}
	}
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func milestonesCmd(src MilestoneSource) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		list, err := src.Milestones(ctx)
		return milestonesMsg{list: list, err: err}
	}
}

// quitCmd stops the engine (forced save) before leaving.
func quitCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		eng.Stop()
		return tea.Quit()
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth()).WithHeight(msg.Height)
		}
		return a, nil

	case snapshotMsg:
		first := !a.loaded
		a.applySnapshot(msg.snap)
		cmds := []tea.Cmd{pollCmd()}
		if first {
			cmds = append(cmds, a.nextForm())
		}
		if msg.snap.Portfolio.Watermark > a.lastReachedBand() {
			cmds = append(cmds, milestonesCmd(a.milestones))
		}
		return a, tea.Batch(cmds...)

	case pollMsg:
		return a, snapshotCmd(a.eng)

	case milestonesMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).Warn("milestone history unavailable")
			return a, nil
		}
		a.reached = msg.list
		return a, nil

	case actionMsg:
		a.setFlash(msg.flash, msg.err)
		return a, snapshotCmd(a.eng)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		if a.form != nil || a.showHelp || !a.loaded {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, quitCmd(a.eng)
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		if !a.loaded {
			return a, nil
		}
		return a.updateKeys(msg)
	}

	// Cursor blinks and other internal messages belong to the open form.
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a *App) applySnapshot(s engine.Snapshot) {
	a.snap = s
	a.loaded = true
	a.history = append(a.history, s.Aggregate)
	if len(a.history) > historyLen {
		a.history = a.history[len(a.history)-historyLen:]
	}
	a.clampCursor()
}

func (a *App) clampCursor() {
	n := len(a.snap.Portfolio.Accounts)
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) lastReachedBand() float64 {
	band := 0.0
	for _, m := range a.reached {
		if m.Band > band {
			band = m.Band
		}
	}
	return band
}

func (a *App) setFlash(msg string, err error) {
	a.flashErr = err != nil
	switch {
	case err != nil && msg != "":
		a.flash = msg + ": " + err.Error()
	case err != nil:
		a.flash = err.Error()
	default:
		a.flash = msg
	}
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabAccounts && a.cursor > 0 {
			a.cursor--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabAccounts {
			a.cursor++
			a.clampCursor()
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, quitCmd(a.eng)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "r":
		return a, tea.Batch(snapshotCmd(a.eng), milestonesCmd(a.milestones))
	case "c":
		cmd := a.openForm(formConsent)
		return a, cmd
	case "p":
		cmd := a.openForm(formSetup)
		return a, cmd
	case "esc":
		a.flash = ""
		return a, nil
	}

	if a.activeTab == tabAccounts {
		switch key {
		case "j", "down":
			a.cursor++
			a.clampCursor()
			return a, nil
		case "k", "up":
			if a.cursor > 0 {
				a.cursor--
			}
			return a, nil
		case "g":
			a.cursor = 0
			return a, nil
		case "G":
			a.cursor = len(a.snap.Portfolio.Accounts) - 1
			a.clampCursor()
			return a, nil
		}
	}

	// Everything below changes the portfolio.
	switch key {
	case "w", "s", "n", "enter", "d":
		if !a.snap.ConsentGiven {
			a.setFlash("read-only until consent is accepted (press c)", nil)
			a.flashErr = true
			return a, nil
		}
	}

	switch key {
	case "w":
		return a, saveCmd(a.eng)
	case "s":
		cmd := a.openForm(formPortfolio)
		return a, cmd
	case "n":
		a.activeTab = tabAccounts
		cmd := a.openAccountForm(-1)
		return a, cmd
	case "enter":
		if a.activeTab == tabAccounts && len(a.snap.Portfolio.Accounts) > 0 {
			cmd := a.openAccountForm(a.cursor)
			return a, cmd
		}
	case "d":
		if a.activeTab == tabAccounts && len(a.snap.Portfolio.Accounts) > 0 {
			i := a.cursor
			if err := a.eng.RemoveAccount(i); err != nil {
				a.setFlash("remove failed", err)
				return a, nil
			}
			a.setFlash(fmt.Sprintf("removed account %d (w to save)", i+1), nil)
			return a, snapshotCmd(a.eng)
		}
	}

	if idx := tabIndexForKey(key); idx >= 0 {
		a.activeTab = idx
	}
	return a, nil
}

func tabIndexForKey(key string) int {
	r := []rune(key)
	if len(r) != 1 {
		return -1
	}
	return components.TabIdxByKey(r[0])
}

func saveCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		res, err := eng.Save(ctx)
		if err != nil {
			return actionMsg{flash: "not saved", err: describeValidation(err)}
		}
		if res.Err != nil {
			return actionMsg{flash: "save failed", err: res.Err}
		}
		return actionMsg{flash: "saved " + res.At.Format("15:04:05")}
	}
}

// describeValidation flattens joined validation errors into one line.
func describeValidation(err error) error {
	verrs := model.ValidationErrors(err)
	if len(verrs) == 0 {
		return err
	}
	parts := make([]string, len(verrs))
	for i, v := range verrs {
		parts[i] = v.Error()
	}
	return errors.New(strings.Join(parts, "; "))
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fitrack needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logoStyle.Render("◈ fitrack") +
		subtitleStyle.Render(" · financial independence tracker") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Loading portfolio...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o a e m", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Select account"},
			{"r", "Refresh now"},
		}},
		{"Portfolio", []struct{ key, desc string }{
			{"n", "Add account"},
			{"Enter", "Edit selected account"},
			{"d", "Remove selected account"},
			{"s", "Goal, inflation, contribution"},
			{"w", "Validate and save"},
		}},
		{"Other", []struct{ key, desc string }{
			{"c", "Review data consent"},
			{"p", "Preferences"},
			{"?", "Toggle help"},
			{"q", "Save and quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	if !a.snap.ConsentGiven {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).
			Render("Portfolio keys are disabled until consent is accepted."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + goal summary line
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	p := a.snap.Portfolio
	summary := pillStyle.Render(" goal ") + pillAccent.Render(finance.FormatMoney(p.Goal, 0, a.cur)) +
		pillStyle.Render(" │ inflation ") + pillAccent.Render(finance.FormatPercent(p.InflationPct, 2)) +
		pillStyle.Render(" │ monthly ") + pillAccent.Render(finance.FormatMoney(p.MonthlyContribution, 0, a.cur)) +
		pillStyle.Render(" ")
	summaryRow := lipgloss.NewStyle().Background(t.Surface).Width(w).Render(summary)
	header := components.RenderTabBar(a.activeTab, w) + "\n" + summaryRow

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, a.status())

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabAccounts:
		content = a.renderAccountsTab(cw)
	case tabEarnings:
		content = a.renderEarningsTab(cw)
	case tabMilestones:
		content = a.renderMilestonesTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) status() components.Status {
	s := components.Status{
		ReadOnly: !a.snap.ConsentGiven,
		Running:  a.snap.Running,
		Flash:    a.flash,
	}
	last := a.snap.LastSave
	switch {
	case last.Err != nil || last.Error != "":
		s.Saved = "save failed"
		s.SaveErr = true
	case last.Written:
		s.Saved = "saved " + last.At.Format("15:04:05")
	}
	if a.flashErr {
		s.SaveErr = true
	}
	return s
}

// ─── Helpers ────────────────────────────────────────────────────

func (a App) tabAtX(x int) int {
	return components.TabAtX(x, a.activeTab)
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color
// so gaps between cards are not left unstyled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
