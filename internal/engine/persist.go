package engine

import (
	"context"
	"time"

	"github.com/theirongolddev/fitrack/internal/model"
	"github.com/theirongolddev/fitrack/internal/store"
)

// SavePolicy throttles state writes to one per Interval. A forced request
// always passes. The window starts when a write is attempted, so a failed
// write is retried by the next window rather than the next tick.
type SavePolicy struct {
	Interval  time.Duration
	lastWrite time.Time
}

// NewSavePolicy returns a policy with the given throttle interval.
func NewSavePolicy(interval time.Duration) *SavePolicy {
	return &SavePolicy{Interval: interval}
}

// Allow reports whether a write may happen at now, and if so records it.
func (p *SavePolicy) Allow(now time.Time, force bool) bool {
	if !force && !p.lastWrite.IsZero() && now.Sub(p.lastWrite) < p.Interval {
		return false
	}
	p.lastWrite = now
	return true
}

// LastWrite returns the time of the last allowed write.
func (p *SavePolicy) LastWrite() time.Time { return p.lastWrite }

// Reset forgets the last write so the next request passes.
func (p *SavePolicy) Reset() { p.lastWrite = time.Time{} }

// SaveResult is the outcome of a persistence request. Throttled requests
// report Throttled; asynchronous requests report Pending and their outcome
// shows up later in Snapshot.LastSave.
type SaveResult struct {
	Forced    bool      `json:"forced"`
	Throttled bool      `json:"throttled"`
	Pending   bool      `json:"pending"`
	Written   bool      `json:"written"`
	Stale     bool      `json:"stale"`
	At        time.Time `json:"at"`
	Bytes     int       `json:"bytes"`
	Err       error     `json:"-"`
	Error     string    `json:"error,omitempty"`
}

// persist requests a write of the current state. Forced writes run
// synchronously; throttled writes run in the background and are dropped if a
// newer write has already landed. Caller must hold e.mu.
func (e *Engine) persist(ctx context.Context, force bool) SaveResult {
	now := e.clock.Now()
	if !e.policy.Allow(now, force) {
		return SaveResult{Throttled: true}
	}

	data, err := model.Encode(e.state)
	if err != nil {
		res := SaveResult{Forced: force, At: now, Err: err, Error: err.Error()}
		e.log.WithError(err).Error("encoding state")
		return res
	}
	e.seq++
	seq := e.seq

	if force {
		res := e.write(ctx, seq, data, now, true)
		if res.Written {
			e.emit(TopicSaved, "forced", 0)
		}
		return res
	}

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		// Detached: the tick does not wait, and a cancelled caller must not
		// abort the write.
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = e.write(wctx, seq, data, now, false)
	}()
	return SaveResult{Pending: true, At: now, Bytes: len(data)}
}

func (e *Engine) write(ctx context.Context, seq uint64, data []byte, at time.Time, force bool) SaveResult {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	res := SaveResult{Forced: force, At: at, Bytes: len(data)}
	if seq <= e.writtenSeq {
		res.Stale = true
		return res
	}
	if err := e.cfg.Store.Set(ctx, store.StateKey, data); err != nil {
		res.Err = err
		res.Error = err.Error()
		e.log.WithError(err).WithField("key", store.StateKey).Warn("state write failed")
	} else {
		res.Written = true
		e.writtenSeq = seq
		e.log.WithField("bytes", len(data)).Debug("state saved")
	}
	e.lastSave = res
	return res
}

// lastSaveResult returns the outcome of the most recent write.
func (e *Engine) lastSaveResult() SaveResult {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.lastSave
}
