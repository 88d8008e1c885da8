package engine

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/milestone"
	"github.com/theirongolddev/fitrack/internal/model"
)

const (
	welcomeTitle  = "Welcome to My Financial Independence!"
	welcomeBody   = "Set up your accounts and follow your progress in real time."
	reminderTitle = "Daily check-in"
)

// Tick advances the portfolio by one tick interval. The loop started by
// Start calls it; tests and one-shot commands may call it directly.
func (e *Engine) Tick() {
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return
	}
	now := e.clock.Now()
	e.ticks++

	e.rollDay(now)
	e.compound(e.cfg.TickInterval.Seconds())
	e.checkMilestone(now)
	e.checkReminder(now)
	e.persist(context.Background(), false)
	e.emit(TopicTick, "", 0)
}

// compound applies step seconds of growth: each account's earnings rate is
// recomputed from its current balance and added, then the monthly
// contribution is split equally across accounts. Caller must hold e.mu.
func (e *Engine) compound(step float64) {
	p := &e.state
	inflation := p.InflationPct
	if finance.CheckInflation(inflation) != nil {
		inflation = 0
	}
	for i := range p.Accounts {
		a := &p.Accounts[i]
		a.EarningsPerSecond = finance.EarningsPerSecond(a.Balance, a.RatePct, inflation)
		a.Balance += a.EarningsPerSecond * step
	}

	share := contributionShare(p.MonthlyContribution, len(p.Accounts))
	for i := range p.Accounts {
		p.Accounts[i].Balance += share * step
	}
}

// contributionShare is the per-account contribution per second. With no
// accounts there is nothing to split and the share is zero.
func contributionShare(monthly float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return finance.ContributionPerSecond(monthly) / float64(n)
}

// checkMilestone raises the watermark and notifies when progress enters a
// new band. Caller must hold e.mu.
func (e *Engine) checkMilestone(now time.Time) {
	pct := finance.ProgressPercent(aggregateOf(&e.state), e.state.Goal)
	r := milestone.Detect(pct, e.state.Watermark)
	if !r.Fired {
		return
	}
	e.state.Watermark = r.Watermark
	band := r.Watermark
	e.log.WithFields(log.Fields{"band": band, "progress": pct}).Info("milestone reached")

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		_ = milestone.Dispatch(e.sink, band)
		if err := e.cfg.Store.AppendMilestone(context.Background(), band, now); err != nil {
			e.log.WithError(err).WithField("band", band).Warn("recording milestone")
		}
	}()
	e.emit(TopicMilestone, fmt.Sprintf("reached %.0f%%", band), band)
}

// rollDay refreshes DayStart when the calendar day has changed, which resets
// the earnings-today baseline. Caller must hold e.mu.
func (e *Engine) rollDay(now time.Time) {
	today := finance.StartOfDay(now)
	if !e.state.DayStart.Equal(today) {
		if !e.state.DayStart.IsZero() {
			e.log.WithField("day", today.Format(time.DateOnly)).Debug("new day")
		}
		e.state.DayStart = today
	}
}

// scheduleReminder sets the next reminder to the first occurrence of the
// configured hour after now. Caller must hold e.mu.
func (e *Engine) scheduleReminder(now time.Time) {
	if e.cfg.ReminderHour < 0 || e.cfg.ReminderHour > 23 {
		e.nextReminder = time.Time{}
		return
	}
	next := finance.StartOfDay(now).Add(time.Duration(e.cfg.ReminderHour) * time.Hour)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	e.nextReminder = next
}

// checkReminder sends the daily reminder once its time has come. Caller
// must hold e.mu.
func (e *Engine) checkReminder(now time.Time) {
	if e.nextReminder.IsZero() || now.Before(e.nextReminder) {
		return
	}
	agg := aggregateOf(&e.state)
	body := fmt.Sprintf("You are at %s of your goal. Keep going!",
		finance.FormatPercent(finance.ProgressPercent(agg, e.state.Goal), 1))
	e.sendAsync(reminderTitle, body)
	e.scheduleReminder(now)
}

func aggregateOf(p *model.Portfolio) float64 {
	return finance.AggregateBalance(p.Balances())
}
