// Package model defines the tracked portfolio state and its persisted form.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Account is one interest-bearing holding (an "investment" in the UI).
// EarningsPerSecond is a cache recomputed every tick.
type Account struct {
	ID                uuid.UUID `json:"id" yaml:"id" csv:"id"`
	Principal         float64   `json:"principal" yaml:"principal" csv:"principal"`
	Balance           float64   `json:"balance" yaml:"balance" csv:"balance"`
	RatePct           float64   `json:"rate_pct" yaml:"rate_pct" csv:"rate_pct"`
	EarningsPerSecond float64   `json:"earnings_per_second" yaml:"earnings_per_second" csv:"earnings_per_second"`
}

// NewAccount returns the empty account created by an "add" action.
func NewAccount() Account {
	return Account{ID: uuid.New()}
}

// Edit sets principal and rate and restarts compounding from the new principal.
func (a *Account) Edit(principal, ratePct float64) {
	a.Principal = principal
	a.RatePct = ratePct
	a.Balance = principal
	a.EarningsPerSecond = 0
}

// Consent records acceptance of the disclosure text.
type Consent struct {
	Given       bool       `json:"given" yaml:"given"`
	At          *time.Time `json:"at" yaml:"at"`
	Fingerprint *string    `json:"fingerprint" yaml:"fingerprint"`
}

// Portfolio is the whole application state.
type Portfolio struct {
	Accounts            []Account `json:"accounts" yaml:"accounts"`
	Goal                float64   `json:"goal" yaml:"goal"`
	InflationPct        float64   `json:"inflation_pct" yaml:"inflation_pct"`
	MonthlyContribution float64   `json:"monthly_contribution" yaml:"monthly_contribution"`
	TotalPrincipal      float64   `json:"total_principal" yaml:"total_principal"`
	DayStart            time.Time `json:"day_start" yaml:"day_start"`
	Watermark           float64   `json:"last_milestone" yaml:"last_milestone"`
	Consent             Consent   `json:"consent" yaml:"consent"`
}

// Seed defaults.
const (
	DefaultGoal                = 1_000_000
	DefaultInflationPct        = 4.5
	DefaultMonthlyContribution = 5_000
)

// Seed returns the initial state shown on first run: two example accounts
// and a 1,000,000 goal.
func Seed(dayStart time.Time) Portfolio {
	p := Portfolio{
		Accounts: []Account{
			seedAccount(50_000, 12.0),
			seedAccount(30_000, 8.5),
		},
		Goal:                DefaultGoal,
		InflationPct:        DefaultInflationPct,
		MonthlyContribution: DefaultMonthlyContribution,
		DayStart:            dayStart,
	}
	p.RecomputePrincipal()
	return p
}

func seedAccount(principal, rate float64) Account {
	a := NewAccount()
	a.Edit(principal, rate)
	return a
}

// RecomputePrincipal re-sums account principals into TotalPrincipal.
func (p *Portfolio) RecomputePrincipal() {
	total := 0.0
	for _, a := range p.Accounts {
		total += a.Principal
	}
	p.TotalPrincipal = total
}

// Balances returns the current balances in account order.
func (p *Portfolio) Balances() []float64 {
	out := make([]float64, len(p.Accounts))
	for i, a := range p.Accounts {
		out[i] = a.Balance
	}
	return out
}

// TotalEarningsPerSecond sums the cached per-account rates.
func (p *Portfolio) TotalEarningsPerSecond() float64 {
	total := 0.0
	for _, a := range p.Accounts {
		total += a.EarningsPerSecond
	}
	return total
}

// Clone returns a deep copy that shares no memory with p.
func (p Portfolio) Clone() Portfolio {
	out := p
	out.Accounts = append([]Account(nil), p.Accounts...)
	if p.Consent.At != nil {
		at := *p.Consent.At
		out.Consent.At = &at
	}
	if p.Consent.Fingerprint != nil {
		fp := *p.Consent.Fingerprint
		out.Consent.Fingerprint = &fp
	}
	return out
}
