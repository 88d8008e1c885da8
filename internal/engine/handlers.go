package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/theirongolddev/fitrack/internal/consent"
	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/model"
)

// Handlers mutate the live state in memory. The next throttled write picks
// the change up; Save persists it immediately after validation.

// AddAccount appends an empty account and returns its index.
func (e *Engine) AddAccount() (int, error) {
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return 0, ErrNotLoaded
	}
	e.state.Accounts = append(e.state.Accounts, model.NewAccount())
	e.state.RecomputePrincipal()
	e.emit(TopicChanged, "account added", 0)
	return len(e.state.Accounts) - 1, nil
}

// EditAccount sets principal and rate of account i (zero-based) and resets
// its balance to the new principal. Other accounts keep their growth.
func (e *Engine) EditAccount(i int, principal, ratePct float64) error {
	e.lock()
	defer e.unlock()
	if err := e.checkIndex(i); err != nil {
		return err
	}
	if err := finite(principal, ratePct); err != nil {
		return err
	}
	e.state.Accounts[i].Edit(principal, ratePct)
	e.state.RecomputePrincipal()
	e.emit(TopicChanged, fmt.Sprintf("account %d edited", i+1), 0)
	return nil
}

// RemoveAccount deletes account i and its accrued growth.
func (e *Engine) RemoveAccount(i int) error {
	e.lock()
	defer e.unlock()
	if err := e.checkIndex(i); err != nil {
		return err
	}
	e.state.Accounts = append(e.state.Accounts[:i], e.state.Accounts[i+1:]...)
	e.state.RecomputePrincipal()
	e.emit(TopicChanged, fmt.Sprintf("account %d removed", i+1), 0)
	return nil
}

// SetGoal changes the goal amount.
func (e *Engine) SetGoal(goal float64) error {
	return e.setValue("goal", goal, func(p *model.Portfolio) { p.Goal = goal })
}

// SetInflation changes the annual inflation rate. -100% and below are
// rejected because the real rate is undefined there.
func (e *Engine) SetInflation(pct float64) error {
	if err := finance.CheckInflation(pct); err != nil {
		return err
	}
	return e.setValue("inflation", pct, func(p *model.Portfolio) { p.InflationPct = pct })
}

// SetContribution changes the monthly contribution.
func (e *Engine) SetContribution(monthly float64) error {
	return e.setValue("contribution", monthly, func(p *model.Portfolio) { p.MonthlyContribution = monthly })
}

func (e *Engine) setValue(name string, v float64, apply func(*model.Portfolio)) error {
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return ErrNotLoaded
	}
	if err := finite(v); err != nil {
		return err
	}
	apply(&e.state)
	e.emit(TopicChanged, name+" changed", 0)
	return nil
}

// Save validates the live state and writes it immediately. A validation
// failure aborts the save and leaves the stored record untouched; the
// returned error then carries *model.ValidationError values. Store failures
// are reported in the SaveResult, not as an error.
func (e *Engine) Save(ctx context.Context) (SaveResult, error) {
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return SaveResult{}, ErrNotLoaded
	}
	if err := model.Validate(e.state); err != nil {
		return SaveResult{}, err
	}
	e.state.RecomputePrincipal()
	return e.persist(ctx, true), nil
}

// AcceptConsent records acceptance of the current disclosure and saves.
func (e *Engine) AcceptConsent(ctx context.Context) (SaveResult, error) {
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return SaveResult{}, ErrNotLoaded
	}
	at := e.clock.Now()
	fp := consent.Fingerprint()
	e.state.Consent = model.Consent{Given: true, At: &at, Fingerprint: &fp}
	e.emit(TopicChanged, "consent accepted", 0)
	return e.persist(ctx, true), nil
}

// RejectConsent clears any recorded consent. The change goes out with the
// next throttled write.
func (e *Engine) RejectConsent(ctx context.Context) error {
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return ErrNotLoaded
	}
	e.state.Consent = model.Consent{}
	e.emit(TopicChanged, "consent rejected", 0)
	e.persist(ctx, false)
	return nil
}

// ConsentGiven reports whether the recorded consent matches the current
// disclosure text.
func (e *Engine) ConsentGiven() bool {
	e.lock()
	defer e.unlock()
	c := e.state.Consent
	return c.Given && c.Fingerprint != nil && consent.Verify(*c.Fingerprint)
}

// RequireConsent returns ErrConsentRequired unless consent is on record.
func (e *Engine) RequireConsent() error {
	if !e.ConsentGiven() {
		return ErrConsentRequired
	}
	return nil
}

// Replace swaps in an imported portfolio. It is validated first and saved
// immediately. Balances are kept; earnings rates are recomputed next tick.
func (e *Engine) Replace(ctx context.Context, p model.Portfolio) (SaveResult, error) {
	if err := model.Validate(p); err != nil {
		return SaveResult{}, err
	}
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return SaveResult{}, ErrNotLoaded
	}
	next := p.Clone()
	next.Consent = e.state.Consent
	next.RecomputePrincipal()
	e.state = next
	e.rollDay(e.clock.Now())
	e.emit(TopicChanged, "imported", 0)
	return e.persist(ctx, true), nil
}

// checkIndex reports whether i names an account. Caller must hold e.mu.
func (e *Engine) checkIndex(i int) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	if i < 0 || i >= len(e.state.Accounts) {
		return fmt.Errorf("%w: %d", ErrNoSuchAccount, i+1)
	}
	return nil
}

func finite(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value %v is not a finite number", v)
		}
	}
	return nil
}
