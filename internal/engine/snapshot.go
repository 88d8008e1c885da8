package engine

import (
	"math"
	"time"

	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/model"
)

// Snapshot is a derived, detached view of the portfolio.
type Snapshot struct {
	At        time.Time       `json:"at" yaml:"at"`
	Portfolio model.Portfolio `json:"portfolio" yaml:"portfolio"`

	Aggregate             float64 `json:"aggregate" yaml:"aggregate"`
	Progress              float64 `json:"progress" yaml:"progress"`
	EarningsPerSecond     float64 `json:"earnings_per_second" yaml:"earnings_per_second"`
	ContributionPerSecond float64 `json:"contribution_per_second" yaml:"contribution_per_second"`
	// TimeToGoal is +Inf when growth is not positive.
	TimeToGoal    float64  `json:"-" yaml:"-"`
	TimeToGoalSec *float64 `json:"time_to_goal_sec" yaml:"time_to_goal_sec"`
	TimeToGoalStr string   `json:"time_to_goal" yaml:"time_to_goal"`
	EarnedToday   float64  `json:"earned_today" yaml:"earned_today"`

	Earnings      finance.Periods             `json:"earnings" yaml:"earnings"`
	Contributions finance.ContributionPeriods `json:"contributions" yaml:"contributions"`

	ConsentGiven  bool       `json:"consent_given" yaml:"consent_given"`
	Running       bool       `json:"running" yaml:"running"`
	Ticks         uint64     `json:"ticks" yaml:"ticks"`
	LastSave      SaveResult `json:"last_save" yaml:"-"`
	NextMilestone float64    `json:"next_milestone" yaml:"next_milestone"`
}

// Snapshot computes the derived figures from the live state. Nothing in the
// result aliases engine memory.
func (e *Engine) Snapshot() Snapshot {
	running := e.Running()
	consentOK := e.ConsentGiven()

	e.lock()
	defer e.unlock()

	now := e.clock.Now()
	p := e.state.Clone()
	agg := finance.AggregateBalance(p.Balances())
	eps := liveEarnings(&p)
	cps := finance.ContributionPerSecond(p.MonthlyContribution)
	if len(p.Accounts) == 0 {
		cps = 0
	}
	ttg := finance.TimeToGoal(p.Goal, agg, eps, cps)
	if ttg < 0 {
		// Goal already passed.
		ttg = 0
	}

	s := Snapshot{
		At:                    now,
		Portfolio:             p,
		Aggregate:             agg,
		Progress:              finance.ProgressPercent(agg, p.Goal),
		EarningsPerSecond:     eps,
		ContributionPerSecond: cps,
		TimeToGoal:            ttg,
		TimeToGoalStr:         finance.FormatDuration(ttg),
		EarnedToday:           finance.EarningsSinceDayStart(eps, p.DayStart, now),
		Earnings:              finance.EarningsByPeriod(eps),
		Contributions:         finance.ContributionByPeriod(p.MonthlyContribution),
		ConsentGiven:          consentOK,
		Running:               running,
		Ticks:                 e.ticks,
		LastSave:              e.lastSaveResult(),
		NextMilestone:         math.Min(p.Watermark+finance.MilestoneStep, 100),
	}
	if !math.IsInf(ttg, 0) && !math.IsNaN(ttg) {
		v := ttg
		s.TimeToGoalSec = &v
	}
	return s
}

// liveEarnings returns the total earnings rate. Before the first tick the
// cached per-account rates are zero, so they are computed from the current
// balances instead.
func liveEarnings(p *model.Portfolio) float64 {
	inflation := p.InflationPct
	if finance.CheckInflation(inflation) != nil {
		inflation = 0
	}
	total := 0.0
	for i := range p.Accounts {
		a := &p.Accounts[i]
		if a.EarningsPerSecond == 0 {
			a.EarningsPerSecond = finance.EarningsPerSecond(a.Balance, a.RatePct, inflation)
		}
		total += a.EarningsPerSecond
	}
	return total
}
