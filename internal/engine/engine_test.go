package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/milestone"
	"github.com/theirongolddev/fitrack/internal/model"
	"github.com/theirongolddev/fitrack/internal/notify"
	"github.com/theirongolddev/fitrack/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	eng   *Engine
	store *store.Memory
	sink  *notify.Recorder
	clock *fakeClock
}

func newHarness(t *testing.T, start time.Time, tweak ...func(*Config)) *harness {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		store: store.NewMemory(),
		sink:  &notify.Recorder{},
		clock: &fakeClock{t: start},
	}
	cfg := DefaultConfig()
	cfg.Store = h.store
	cfg.Sink = h.sink
	cfg.Clock = h.clock
	cfg.Log = log.NewEntry(logger)
	for _, f := range tweak {
		f(&cfg)
	}
	h.eng = New(cfg)
	return h
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	require.NoError(t, h.eng.Load(context.Background()))
	h.eng.Flush()
}

func (h *harness) titled(title string) []notify.Message {
	h.eng.Flush()
	var out []notify.Message
	for _, m := range h.sink.Messages() {
		if m.Title == title {
			out = append(out, m)
		}
	}
	return out
}

var noon = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func TestLoad_SeedsWritesAndWelcomes(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)

	assert.True(t, h.eng.Seeded())
	assert.Equal(t, 1, h.store.Writes())
	assert.Len(t, h.titled(welcomeTitle), 1)

	data, err := h.store.Get(context.Background(), store.StateKey)
	require.NoError(t, err)
	p, rep, err := model.Decode(data, finance.StartOfDay(noon))
	require.NoError(t, err)
	assert.False(t, rep.Changed())
	assert.Len(t, p.Accounts, 2)
	assert.True(t, p.DayStart.Equal(finance.StartOfDay(noon)))
}

func TestLoad_BackFillsStoredRecord(t *testing.T) {
	h := newHarness(t, noon)
	require.NoError(t, h.store.Set(context.Background(), store.StateKey, []byte(`{"goal": 500000}`)))
	h.load(t)

	assert.False(t, h.eng.Seeded())
	assert.Contains(t, h.eng.Repairs(), "accounts")
	assert.Empty(t, h.titled(welcomeTitle))

	s := h.eng.Snapshot()
	assert.Equal(t, 500_000.0, s.Portfolio.Goal)
	assert.Len(t, s.Portfolio.Accounts, 2)
	assert.Equal(t, 80_000.0, s.Portfolio.TotalPrincipal)
}

func TestLoad_StoreError(t *testing.T) {
	boom := errors.New("disk gone")
	h := newHarness(t, noon, func(c *Config) { c.Store = failingGet{Memory: store.NewMemory(), err: boom} })
	err := h.eng.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, h.eng.Loaded())
}

type failingGet struct {
	*store.Memory
	err error
}

func (f failingGet) Get(context.Context, string) ([]byte, error) { return nil, f.err }

func TestHandlers_RequireLoad(t *testing.T) {
	h := newHarness(t, noon)
	_, err := h.eng.AddAccount()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, h.eng.SetGoal(1), ErrNotLoaded)
	_, err = h.eng.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)

	h.eng.Tick()
	assert.Equal(t, uint64(0), h.eng.Snapshot().Ticks)
}

func TestTick_CompoundsFromCurrentBalance(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	require.NoError(t, h.eng.SetContribution(0))

	want := 50_000.0
	for i := 0; i < 3; i++ {
		want += finance.EarningsPerSecond(want, 12, 4.5)
		h.clock.Advance(time.Second)
		h.eng.Tick()
	}

	s := h.eng.Snapshot()
	assert.InDelta(t, want, s.Portfolio.Accounts[0].Balance, 1e-9)
	assert.InDelta(t, 0.000113, s.Portfolio.Accounts[0].EarningsPerSecond, 1e-6)
	assert.Equal(t, uint64(3), s.Ticks)
}

func TestTick_SplitsContributionEqually(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	// Rate equal to inflation: zero real growth, so only contributions move balances.
	require.NoError(t, h.eng.EditAccount(0, 50_000, 4.5))
	require.NoError(t, h.eng.EditAccount(1, 10_000, 4.5))

	h.eng.Tick()

	share := finance.ContributionPerSecond(5_000) / 2
	s := h.eng.Snapshot()
	assert.InDelta(t, 50_000+share, s.Portfolio.Accounts[0].Balance, 1e-9)
	assert.InDelta(t, 10_000+share, s.Portfolio.Accounts[1].Balance, 1e-9)
}

func TestTick_NoAccounts(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	require.NoError(t, h.eng.RemoveAccount(1))
	require.NoError(t, h.eng.RemoveAccount(0))
	assert.ErrorIs(t, h.eng.RemoveAccount(0), ErrNoSuchAccount)

	for i := 0; i < 3; i++ {
		h.eng.Tick()
	}
	s := h.eng.Snapshot()
	assert.Equal(t, 0.0, s.Aggregate)
	assert.Equal(t, 0.0, s.ContributionPerSecond)
	assert.Equal(t, 0.0, s.Portfolio.TotalPrincipal)
	assert.Equal(t, finance.Infinite, s.TimeToGoalStr)
	assert.Nil(t, s.TimeToGoalSec)
}

func TestTick_MilestoneFiresOncePerBand(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)

	var events []Event
	require.NoError(t, h.eng.Bus().Subscribe(TopicMilestone, func(ev Event) { events = append(events, ev) }))

	p := model.Seed(finance.StartOfDay(noon))
	p.Accounts = []model.Account{p.Accounts[0]}
	p.Accounts[0].Edit(24_900, 1)
	p.Goal = 100_000
	p.InflationPct = 0
	// 200 per second.
	p.MonthlyContribution = 200 * finance.SecondsPerMonth
	p.Watermark = 20
	_, err := h.eng.Replace(context.Background(), p)
	require.NoError(t, err)

	h.eng.Tick() // ~25.1%
	assert.InDelta(t, 25.1, h.eng.Snapshot().Progress, 0.01)
	h.eng.Tick() // ~25.3%
	h.eng.Tick() // ~25.5%

	msgs := h.titled(milestone.Title)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "25%")
	assert.Equal(t, 25.0, h.eng.Snapshot().Portfolio.Watermark)

	require.Len(t, events, 1)
	assert.Equal(t, 25.0, events[0].Band)

	history, err := h.store.Milestones(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 25.0, history[0].Band)
}

func TestTick_ZeroGoalNeverFires(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	require.NoError(t, h.eng.SetGoal(0))
	require.NoError(t, h.eng.SetContribution(1e12))

	for i := 0; i < 5; i++ {
		h.eng.Tick()
	}
	s := h.eng.Snapshot()
	assert.Equal(t, 0.0, s.Progress)
	assert.Equal(t, 0.0, s.Portfolio.Watermark)
	assert.Empty(t, h.titled(milestone.Title))
}

func TestPersistence_ThrottledAndForced(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	require.Equal(t, 1, h.store.Writes())

	h.eng.Tick()
	h.eng.Flush()
	assert.Equal(t, 1, h.store.Writes(), "inside the throttle window")

	h.clock.Advance(5 * time.Second)
	h.eng.Tick()
	h.eng.Flush()
	assert.Equal(t, 2, h.store.Writes())

	h.clock.Advance(time.Second)
	h.eng.Tick()
	h.eng.Flush()
	assert.Equal(t, 2, h.store.Writes())

	res, err := h.eng.ManualSave(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.True(t, res.Forced)
	assert.Equal(t, 3, h.store.Writes())
	assert.True(t, h.eng.Snapshot().LastSave.Written)
}

func TestPersistence_FailureIsNonFatal(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	h.store.FailWrites = errors.New("quota exceeded")

	res, err := h.eng.ManualSave(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.EqualError(t, res.Err, "quota exceeded")

	h.clock.Advance(10 * time.Second)
	h.eng.Tick()
	h.eng.Flush()
	assert.Equal(t, uint64(1), h.eng.Snapshot().Ticks)

	h.store.FailWrites = nil
	h.clock.Advance(10 * time.Second)
	h.eng.Tick()
	h.eng.Flush()
	assert.Equal(t, 2, h.store.Writes())
}

func TestSave_ValidationLeavesStoreUntouched(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	ctx := context.Background()
	before, err := h.store.Get(ctx, store.StateKey)
	require.NoError(t, err)

	require.NoError(t, h.eng.SetGoal(0))
	_, err = h.eng.AddAccount()
	require.NoError(t, err)

	_, err = h.eng.Save(ctx)
	require.Error(t, err)
	fields := map[string]bool{}
	for _, ve := range model.ValidationErrors(err) {
		fields[ve.Field] = true
	}
	assert.True(t, fields["goal"])
	assert.True(t, fields["account 3"])

	after, err := h.store.Get(ctx, store.StateKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, h.store.Writes())

	require.NoError(t, h.eng.SetGoal(2_000_000))
	require.NoError(t, h.eng.EditAccount(2, 1_000, 6))
	res, err := h.eng.Save(ctx)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 81_000.0, h.eng.Snapshot().Portfolio.TotalPrincipal)
}

func TestSetInflation_RejectsUndefined(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	assert.ErrorIs(t, h.eng.SetInflation(-100), finance.ErrUndefinedInflation)
	assert.Equal(t, 4.5, h.eng.Snapshot().Portfolio.InflationPct)
}

func TestEditAccount_ResetsOnlyThatAccount(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	for i := 0; i < 10; i++ {
		h.eng.Tick()
	}
	require.NoError(t, h.eng.EditAccount(0, 1_000, 5))
	assert.ErrorIs(t, h.eng.EditAccount(5, 1, 1), ErrNoSuchAccount)

	s := h.eng.Snapshot()
	assert.Equal(t, 1_000.0, s.Portfolio.Accounts[0].Balance)
	assert.Greater(t, s.Portfolio.Accounts[1].Balance, 30_000.0)
	assert.Equal(t, 31_000.0, s.Portfolio.TotalPrincipal)
}

func TestTick_DayRollover(t *testing.T) {
	late := time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)
	h := newHarness(t, late)
	h.load(t)
	assert.Greater(t, h.eng.Snapshot().EarnedToday, 0.0)

	h.clock.Advance(2 * time.Second)
	h.eng.Tick()

	s := h.eng.Snapshot()
	assert.True(t, s.Portfolio.DayStart.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, s.EarningsPerSecond, s.EarnedToday, 1e-9)
}

func TestLoad_RefreshesStaleDay(t *testing.T) {
	h := newHarness(t, noon)
	stale := `{"day_start": "2026-10-10T00:00:00Z"}`
	require.NoError(t, h.store.Set(context.Background(), store.StateKey, []byte(stale)))
	h.load(t)
	assert.True(t, h.eng.Snapshot().Portfolio.DayStart.Equal(finance.StartOfDay(noon)))
}

func TestDailyReminder(t *testing.T) {
	start := time.Date(2026, 10, 18, 8, 59, 59, 0, time.UTC)
	h := newHarness(t, start, func(c *Config) { c.ReminderHour = 9 })
	h.load(t)

	h.eng.Tick()
	assert.Empty(t, h.titled(reminderTitle))

	h.clock.Advance(2 * time.Second)
	h.eng.Tick()
	h.clock.Advance(time.Minute)
	h.eng.Tick()
	assert.Len(t, h.titled(reminderTitle), 1)

	h.clock.Advance(24 * time.Hour)
	h.eng.Tick()
	assert.Len(t, h.titled(reminderTitle), 2)
}

func TestConsent(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.eng.RequireConsent(), ErrConsentRequired)

	res, err := h.eng.AcceptConsent(ctx)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.NoError(t, h.eng.RequireConsent())

	data, err := h.store.Get(ctx, store.StateKey)
	require.NoError(t, err)
	p, _, err := model.Decode(data, noon)
	require.NoError(t, err)
	assert.True(t, p.Consent.Given)
	require.NotNil(t, p.Consent.At)
	assert.True(t, p.Consent.At.Equal(noon))

	require.NoError(t, h.eng.RejectConsent(ctx))
	assert.False(t, h.eng.ConsentGiven())
}

func TestReset(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)
	ctx := context.Background()
	require.NoError(t, h.eng.SetGoal(90_000))
	h.eng.Tick()
	require.Equal(t, 85.0, h.eng.Snapshot().Portfolio.Watermark)
	_, err := h.eng.AcceptConsent(ctx)
	require.NoError(t, err)

	require.NoError(t, h.eng.Reset(ctx))
	h.eng.Flush()

	s := h.eng.Snapshot()
	assert.Equal(t, 0.0, s.Portfolio.Watermark)
	assert.Equal(t, 1_000_000.0, s.Portfolio.Goal)
	assert.Equal(t, 50_000.0, s.Portfolio.Accounts[0].Balance)
	assert.False(t, s.ConsentGiven)

	q, err := h.eng.QuotaInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Quota{}, q)
}

func TestSnapshot_IsDetached(t *testing.T) {
	h := newHarness(t, noon)
	h.load(t)

	s := h.eng.Snapshot()
	s.Portfolio.Accounts[0].Balance = -1
	assert.Equal(t, 50_000.0, h.eng.Snapshot().Portfolio.Accounts[0].Balance)

	require.NotNil(t, s.TimeToGoalSec)
	assert.Regexp(t, `^14y `, s.TimeToGoalStr)
	assert.InDelta(t, 0.0019290, s.ContributionPerSecond, 1e-7)
	assert.Equal(t, 5.0, s.NextMilestone)
}

func TestStartStop(t *testing.T) {
	h := newHarness(t, noon, func(c *Config) { c.TickInterval = 5 * time.Millisecond })
	ctx := context.Background()

	assert.Equal(t, SaveResult{}, h.eng.Stop(), "stopping an idle engine is a no-op")

	require.NoError(t, h.eng.Start(ctx))
	require.NoError(t, h.eng.Start(ctx))
	assert.True(t, h.eng.Running())

	require.Eventually(t, func() bool { return h.eng.Snapshot().Ticks >= 3 }, time.Second, time.Millisecond)

	res := h.eng.Stop()
	assert.True(t, res.Forced)
	assert.True(t, res.Written)
	assert.False(t, h.eng.Running())

	ticks := h.eng.Snapshot().Ticks
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, ticks, h.eng.Snapshot().Ticks)
	assert.Equal(t, SaveResult{}, h.eng.Stop())
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(t, noon, func(c *Config) { c.TickInterval = 5 * time.Millisecond })
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.eng.Run(ctx) }()
	require.Eventually(t, h.eng.Running, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, h.eng.Running())
}

func TestSavePolicy(t *testing.T) {
	p := NewSavePolicy(5 * time.Second)
	assert.True(t, p.Allow(noon, false))
	assert.False(t, p.Allow(noon.Add(4*time.Second), false))
	assert.True(t, p.Allow(noon.Add(4*time.Second), true))
	assert.False(t, p.Allow(noon.Add(8*time.Second), false))
	assert.True(t, p.Allow(noon.Add(9*time.Second), false))
	p.Reset()
	assert.True(t, p.Allow(noon.Add(9*time.Second), false))
}
