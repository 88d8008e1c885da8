// Package finance holds the pure math behind the tracker: inflation-adjusted
// growth rates, goal progress, time-to-goal and their human-readable forms.
package finance

import (
	"errors"
	"math"
	"time"
)

// Time constants. A year is the Julian year so leap days average out; a
// month is a flat 30 days.
const (
	SecondsPerMinute = 60.0
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour
	SecondsPerYear   = 365.25 * SecondsPerDay
	DaysPerMonth     = 30.0
	SecondsPerMonth  = DaysPerMonth * SecondsPerDay
)

// MilestoneStep is the width of one progress band in percentage points.
const MilestoneStep = 5.0

// ErrUndefinedInflation is returned for an inflation rate of -100% or lower,
// where the real rate divides by zero or flips sign.
var ErrUndefinedInflation = errors.New("inflation rate must be greater than -100%")

// CheckInflation reports whether inflationPct can be fed to RealRate.
func CheckInflation(inflationPct float64) error {
	if inflationPct <= -100 || math.IsNaN(inflationPct) {
		return ErrUndefinedInflation
	}
	return nil
}

// RealRate converts a nominal annual rate into a real one with the Fisher
// relation: (1+nominal)/(1+inflation) - 1. Both inputs are percentages
// (12.0 means 12%); the result is a decimal fraction.
func RealRate(nominalPct, inflationPct float64) float64 {
	nominal := nominalPct / 100
	inflation := inflationPct / 100
	return (1+nominal)/(1+inflation) - 1
}

// EarningsPerSecond is the instantaneous real growth of balance. A negative
// real rate yields a negative value and the balance shrinks.
func EarningsPerSecond(balance, nominalPct, inflationPct float64) float64 {
	return balance * RealRate(nominalPct, inflationPct) / SecondsPerYear
}

// ContributionPerSecond spreads a monthly contribution over a 30-day month.
func ContributionPerSecond(monthly float64) float64 {
	return monthly / SecondsPerMonth
}

// AggregateBalance sums current balances.
func AggregateBalance(balances []float64) float64 {
	total := 0.0
	for _, b := range balances {
		total += b
	}
	return total
}

// ProgressPercent returns aggregate/goal as a percentage capped at 100.
// A non-positive goal yields 0.
func ProgressPercent(aggregate, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(aggregate/goal*100, 100)
}

// TimeToGoal returns the seconds needed to close the gap between aggregate
// and goal at the current growth rate, or +Inf when growth is stalled or
// negative.
func TimeToGoal(goal, aggregate, earningsPerSecond, contributionPerSecond float64) float64 {
	growth := earningsPerSecond + contributionPerSecond
	if growth <= 0 {
		return math.Inf(1)
	}
	return (goal - aggregate) / growth
}

// EarningsSinceDayStart extrapolates the current instantaneous rate linearly
// over the time elapsed since dayStart. It does not integrate the rate's
// change during the day.
func EarningsSinceDayStart(totalEarningsPerSecond float64, dayStart, now time.Time) float64 {
	elapsed := now.Sub(dayStart).Seconds()
	return totalEarningsPerSecond * elapsed
}

// StartOfDay returns local midnight of the calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
