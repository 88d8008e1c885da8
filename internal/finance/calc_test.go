package finance

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRate_FisherRelation(t *testing.T) {
	assert.InDelta(t, 0.0717703, RealRate(12, 4.5), 1e-6)
	assert.InDelta(t, 0.0, RealRate(4.5, 4.5), 1e-12)
	assert.Less(t, RealRate(3, 4.5), 0.0, "nominal below inflation must be negative")
}

func TestRealRate_Monotonic(t *testing.T) {
	for inflation := 0.0; inflation <= 20; inflation += 2.5 {
		prev := RealRate(0, inflation)
		for nominal := 0.5; nominal <= 30; nominal += 0.5 {
			cur := RealRate(nominal, inflation)
			require.Greater(t, cur, prev, "increasing in nominal at inflation=%v", inflation)
			prev = cur
		}
	}
	for nominal := 0.0; nominal <= 20; nominal += 2.5 {
		prev := RealRate(nominal, 0)
		for inflation := 0.5; inflation <= 30; inflation += 0.5 {
			cur := RealRate(nominal, inflation)
			require.Less(t, cur, prev, "decreasing in inflation at nominal=%v", nominal)
			prev = cur
		}
	}
}

func TestCheckInflation(t *testing.T) {
	assert.NoError(t, CheckInflation(0))
	assert.NoError(t, CheckInflation(-50))
	assert.ErrorIs(t, CheckInflation(-100), ErrUndefinedInflation)
	assert.ErrorIs(t, CheckInflation(-150), ErrUndefinedInflation)
}

func TestEarningsPerSecond_SeededAccount(t *testing.T) {
	// 50000 at 12% with 4.5% inflation earns ~3588/year in real terms.
	eps := EarningsPerSecond(50000, 12, 4.5)
	assert.InDelta(t, 0.00011371, eps, 1e-8)
	assert.InDelta(t, 3588.52, eps*SecondsPerYear, 0.01)
}

func TestEarningsPerSecond_NegativeRealRateShrinks(t *testing.T) {
	assert.Less(t, EarningsPerSecond(1000, 2, 10), 0.0)
}

func TestContributionPerSecond_ThirtyDayMonth(t *testing.T) {
	assert.InDelta(t, 5000.0/2_592_000, ContributionPerSecond(5000), 1e-15)
	assert.Equal(t, 0.0, ContributionPerSecond(0))
}

func TestAggregateBalance(t *testing.T) {
	assert.Equal(t, 0.0, AggregateBalance(nil))
	assert.InDelta(t, 80000.5, AggregateBalance([]float64{50000.25, 30000.25}), 1e-9)
}

func TestProgressPercent_Clamped(t *testing.T) {
	for _, x := range []float64{0, 1, 500_000, 999_999, 1_000_000, 5_000_000} {
		p := ProgressPercent(x, 1_000_000)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
	assert.Equal(t, 100.0, ProgressPercent(2_000_000, 1_000_000))
	assert.InDelta(t, 8.0, ProgressPercent(80_000, 1_000_000), 1e-12)
}

func TestProgressPercent_NonPositiveGoal(t *testing.T) {
	assert.Equal(t, 0.0, ProgressPercent(80_000, 0))
	assert.Equal(t, 0.0, ProgressPercent(80_000, -10))
}

func TestTimeToGoal_SeededPortfolio(t *testing.T) {
	eps := EarningsPerSecond(50000, 12, 4.5) + EarningsPerSecond(30000, 8.5, 4.5)
	secs := TimeToGoal(1_000_000, 80_000, eps, ContributionPerSecond(5000))

	require.False(t, math.IsInf(secs, 0))
	assert.InDelta(t, 14.02, secs/SecondsPerYear, 0.01)
	assert.Regexp(t, regexp.MustCompile(`^14y 7d`), FormatDuration(secs))
}

func TestTimeToGoal_StalledGrowthIsInfinite(t *testing.T) {
	assert.True(t, math.IsInf(TimeToGoal(1000, 0, 0, 0), 1))
	assert.True(t, math.IsInf(TimeToGoal(1000, 0, -0.5, 0.1), 1))
	assert.Equal(t, Infinite, FormatDuration(TimeToGoal(1000, 0, 0, 0)))
}

func TestEarningsSinceDayStart_LinearExtrapolation(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Hour)
	assert.InDelta(t, 0.5*7200, EarningsSinceDayStart(0.5, start, now), 1e-9)
	assert.Equal(t, 0.0, EarningsSinceDayStart(0.5, start, start))
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	ts := time.Date(2026, 7, 4, 23, 59, 59, 999, loc)
	got := StartOfDay(ts)
	assert.Equal(t, time.Date(2026, 7, 4, 0, 0, 0, 0, loc), got)
	assert.Equal(t, got, StartOfDay(got))
}

func TestEarningsByPeriod(t *testing.T) {
	p := EarningsByPeriod(1)
	assert.Equal(t, 60.0, p.PerMinute)
	assert.Equal(t, 3600.0, p.PerHour)
	assert.Equal(t, 86400.0, p.PerDay)
	assert.Equal(t, 604800.0, p.PerWeek)
	assert.Equal(t, 2_592_000.0, p.PerMonth)
	assert.Equal(t, 31_557_600.0, p.PerYear)

	c := ContributionByPeriod(5000)
	assert.Equal(t, 5000.0, c.PerMonth)
	assert.Equal(t, 60000.0, c.PerYear)
}
