package engine

import (
	"context"
	"fmt"

	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/model"
	"github.com/theirongolddev/fitrack/internal/store"
)

// Administrative operations used by `fitrack admin` and tests.

// Reset wipes the store and reseeds the live state. The watermark returns
// to zero and the throttle window is cleared. Consent is wiped too.
func (e *Engine) Reset(ctx context.Context) error {
	e.lock()
	defer e.unlock()

	// Anything queued before the reset must not resurrect the old record.
	// Background work never takes e.mu, so waiting here is safe.
	e.bg.Wait()
	e.writeMu.Lock()
	err := e.cfg.Store.Clear(ctx)
	e.writtenSeq = e.seq
	e.lastSave = SaveResult{}
	e.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}

	now := e.clock.Now()
	e.state = model.Seed(finance.StartOfDay(now))
	e.repair = model.Repair{}
	e.seeded = true
	e.loaded = true
	e.policy.Reset()
	e.log.Info("state reset to defaults")
	e.emit(TopicChanged, "reset", 0)
	return nil
}

// QuotaInfo reports how much the store holds.
func (e *Engine) QuotaInfo(ctx context.Context) (store.Quota, error) {
	q, err := e.cfg.Store.BytesInUse(ctx)
	if err != nil {
		return store.Quota{}, fmt.Errorf("quota info: %w", err)
	}
	return q, nil
}

// ManualSave writes the live state immediately without validation.
func (e *Engine) ManualSave(ctx context.Context) (SaveResult, error) {
	e.lock()
	defer e.unlock()
	if !e.loaded {
		return SaveResult{}, ErrNotLoaded
	}
	return e.persist(ctx, true), nil
}
