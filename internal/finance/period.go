package finance

// Periods is an earnings rate expressed over common horizons.
type Periods struct {
	PerSecond float64 `json:"per_second" yaml:"per_second"`
	PerMinute float64 `json:"per_minute" yaml:"per_minute"`
	PerHour   float64 `json:"per_hour" yaml:"per_hour"`
	PerDay    float64 `json:"per_day" yaml:"per_day"`
	PerWeek   float64 `json:"per_week" yaml:"per_week"`
	PerMonth  float64 `json:"per_month" yaml:"per_month"`
	PerYear   float64 `json:"per_year" yaml:"per_year"`
}

// ContributionPeriods is the monthly contribution expressed per month and per year.
type ContributionPeriods struct {
	PerMonth float64 `json:"per_month" yaml:"per_month"`
	PerYear  float64 `json:"per_year" yaml:"per_year"`
}

// EarningsByPeriod scales a per-second rate. Months are 30 days and years
// are Julian, matching the rest of the package.
func EarningsByPeriod(perSecond float64) Periods {
	return Periods{
		PerSecond: perSecond,
		PerMinute: perSecond * SecondsPerMinute,
		PerHour:   perSecond * SecondsPerHour,
		PerDay:    perSecond * SecondsPerDay,
		PerWeek:   perSecond * SecondsPerDay * 7,
		PerMonth:  perSecond * SecondsPerMonth,
		PerYear:   perSecond * SecondsPerYear,
	}
}

// ContributionByPeriod returns the monthly contribution and its 12-month total.
func ContributionByPeriod(monthly float64) ContributionPeriods {
	return ContributionPeriods{
		PerMonth: monthly,
		PerYear:  monthly * 12,
	}
}
