package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fitrack/internal/config"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/model"
	"github.com/theirongolddev/fitrack/internal/store"
	"github.com/theirongolddev/fitrack/internal/tui/components"
	"github.com/theirongolddev/fitrack/internal/tui/theme"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestEngine(t *testing.T, consented bool) *engine.Engine {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Store = store.NewMemory()
	cfg.Log = quietLog()
	eng := engine.New(cfg)
	require.NoError(t, eng.Load(context.Background()))
	if consented {
		_, err := eng.AcceptConsent(context.Background())
		require.NoError(t, err)
	}
	eng.Flush()
	return eng
}

// loadedApp returns an app that has seen its first snapshot, with any
// startup form dismissed.
func loadedApp(t *testing.T, eng *engine.Engine) App {
	t.Helper()
	a := NewApp(Options{Engine: eng, Config: config.DefaultConfig(), Log: quietLog()})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.(App).Update(snapshotMsg{snap: eng.Snapshot()})
	a = m.(App)
	a.closeForm()
	return a
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := a.Update(msg)
	return m.(App)
}

func TestNewApp_QueuesConsentForm(t *testing.T) {
	eng := newTestEngine(t, false)
	a := NewApp(Options{Engine: eng, Config: config.DefaultConfig(), Log: quietLog()})

	m, _ := a.Update(snapshotMsg{snap: eng.Snapshot()})
	a = m.(App)
	require.NotNil(t, a.form)
	assert.Equal(t, formConsent, a.formKind)
	assert.True(t, a.loaded)
}

func TestNewApp_SkipsConsentWhenGiven(t *testing.T) {
	eng := newTestEngine(t, true)
	a := NewApp(Options{Engine: eng, Config: config.DefaultConfig(), Log: quietLog()})

	m, _ := a.Update(snapshotMsg{snap: eng.Snapshot()})
	a = m.(App)
	assert.Nil(t, a.form)
}

func TestNewApp_FirstRunOpensSetupBeforeConsent(t *testing.T) {
	eng := newTestEngine(t, false)
	a := NewApp(Options{Engine: eng, Config: config.DefaultConfig(), FirstRun: true, Log: quietLog()})

	m, _ := a.Update(snapshotMsg{snap: eng.Snapshot()})
	a = m.(App)
	require.NotNil(t, a.form)
	assert.Equal(t, formSetup, a.formKind)

	a.closeForm()
	a.nextForm()
	assert.Equal(t, formConsent, a.formKind)
}

func TestMutationsDisabledWithoutConsent(t *testing.T) {
	eng := newTestEngine(t, false)
	a := loadedApp(t, eng)

	for _, key := range []string{"n", "s", "w"} {
		a = press(t, a, key)
		assert.Nil(t, a.form, "key %q opened a form", key)
		assert.Contains(t, a.flash, "read-only")
	}

	a.activeTab = tabAccounts
	a = press(t, a, "d")
	assert.Len(t, eng.Snapshot().Portfolio.Accounts, 2, "remove went through without consent")
}

func TestAddAccountThroughForm(t *testing.T) {
	eng := newTestEngine(t, true)
	a := loadedApp(t, eng)

	a = press(t, a, "n")
	require.NotNil(t, a.form)
	require.Equal(t, formAccount, a.formKind)
	assert.Equal(t, tabAccounts, a.activeTab)

	a.vals.principal = "10,000"
	a.vals.rate = "7.5"
	a.completeForm()

	accts := eng.Snapshot().Portfolio.Accounts
	require.Len(t, accts, 3)
	assert.Equal(t, 10_000.0, accts[2].Principal)
	assert.Equal(t, 10_000.0, accts[2].Balance)
	assert.Equal(t, 7.5, accts[2].RatePct)
	assert.Equal(t, 2, a.cursor)
}

func TestEditAndRemoveSelectedAccount(t *testing.T) {
	eng := newTestEngine(t, true)
	a := loadedApp(t, eng)
	a = press(t, a, "a")
	a = press(t, a, "j")
	assert.Equal(t, 1, a.cursor)

	a = press(t, a, "enter")
	require.Equal(t, formAccount, a.formKind)
	assert.Equal(t, 1, a.vals.index)
	assert.Equal(t, "30000", a.vals.principal)
	assert.Equal(t, "8.5", a.vals.rate)

	a.vals.principal = "35000"
	a.completeForm()
	a.closeForm()
	assert.Equal(t, 35_000.0, eng.Snapshot().Portfolio.Accounts[1].Principal)

	a = press(t, a, "d")
	accts := eng.Snapshot().Portfolio.Accounts
	require.Len(t, accts, 1)
	assert.Equal(t, 50_000.0, accts[0].Principal)
}

func TestPortfolioForm(t *testing.T) {
	eng := newTestEngine(t, true)
	a := loadedApp(t, eng)

	a = press(t, a, "s")
	require.Equal(t, formPortfolio, a.formKind)
	assert.Equal(t, "1000000", a.vals.goal)
	assert.Equal(t, "4.5", a.vals.inflation)

	a.vals.goal = "2,000,000"
	a.vals.contribution = "0"
	a.completeForm()

	p := eng.Snapshot().Portfolio
	assert.Equal(t, 2_000_000.0, p.Goal)
	assert.Equal(t, 0.0, p.MonthlyContribution)
}

func TestRejectConsentKeepsReadOnly(t *testing.T) {
	eng := newTestEngine(t, true)
	a := loadedApp(t, eng)

	a = press(t, a, "c")
	require.Equal(t, formConsent, a.formKind)
	assert.True(t, a.vals.agree)

	a.vals.agree = false
	a.completeForm()
	assert.False(t, eng.ConsentGiven())
	assert.Contains(t, a.flash, "read-only")
}

func TestAcceptConsentCmd(t *testing.T) {
	eng := newTestEngine(t, false)

	msg := acceptConsentCmd(eng)()
	am, ok := msg.(actionMsg)
	require.True(t, ok)
	assert.NoError(t, am.err)
	assert.True(t, eng.ConsentGiven())
}

func TestSaveCmd_ReportsValidation(t *testing.T) {
	eng := newTestEngine(t, true)
	require.NoError(t, eng.SetGoal(0))

	am := saveCmd(eng)().(actionMsg)
	require.Error(t, am.err)
	assert.Contains(t, am.err.Error(), "goal")

	require.NoError(t, eng.SetGoal(500_000))
	am = saveCmd(eng)().(actionMsg)
	assert.NoError(t, am.err)
	assert.True(t, strings.HasPrefix(am.flash, "saved "))
}

func TestTabKeysAndMouse(t *testing.T) {
	eng := newTestEngine(t, true)
	a := loadedApp(t, eng)

	a = press(t, a, "e")
	assert.Equal(t, tabEarnings, a.activeTab)
	a = press(t, a, "m")
	assert.Equal(t, tabMilestones, a.activeTab)

	x := components.TabWidth(0, a.activeTab) / 2
	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, tabOverview, m.(App).activeTab)
}

func TestViewRendersEveryTab(t *testing.T) {
	theme.SetActive("flexoki-dark")
	eng := newTestEngine(t, true)
	a := loadedApp(t, eng)

	want := map[int]string{
		tabOverview:   "Financial Independence",
		tabAccounts:   "Accounts (2)",
		tabEarnings:   "Real earnings",
		tabMilestones: "No milestones reached yet.",
	}
	for tab, text := range want {
		a.activeTab = tab
		view := ansi.Strip(a.View())
		assert.Contains(t, view, text, "tab %d", tab)
		assert.Len(t, strings.Split(view, "\n"), 40, "tab %d height", tab)
	}
}

func TestViewTooNarrow(t *testing.T) {
	eng := newTestEngine(t, true)
	a := loadedApp(t, eng)
	a.width = 40
	assert.Contains(t, a.View(), "too narrow")
}

func TestQuitStopsEngine(t *testing.T) {
	eng := newTestEngine(t, true)
	require.NoError(t, eng.Start(context.Background()))

	msg := quitCmd(eng)()
	_, ok := msg.(tea.QuitMsg)
	assert.True(t, ok)
	assert.False(t, eng.Running())
}

func TestDescribeValidation(t *testing.T) {
	err := errors.Join(
		&model.ValidationError{Field: "goal", Message: "must be greater than zero"},
		&model.ValidationError{Field: "inflation", Message: "must not be negative"},
	)
	got := describeValidation(err)
	assert.Equal(t, "goal: must be greater than zero; inflation: must not be negative", got.Error())

	plain := errors.New("boom")
	assert.Equal(t, plain, describeValidation(plain))
}

func TestValidatorsAndPlainNumber(t *testing.T) {
	assert.NoError(t, positiveAmount("1,000"))
	assert.Error(t, positiveAmount("0"))
	assert.Error(t, positiveAmount("abc"))
	assert.NoError(t, nonNegativeAmount("0"))
	assert.Error(t, nonNegativeAmount("-1"))

	assert.Equal(t, "12.5", plainNumber(12.5))
	assert.Equal(t, "50000", plainNumber(50_000))
}
