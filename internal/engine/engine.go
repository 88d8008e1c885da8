// Package engine owns the live portfolio and advances it once per tick.
//
// A single mutex serializes the tick and every handler, so each runs to
// completion before the next starts. Nothing returned by the engine aliases
// the live accounts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/model"
	"github.com/theirongolddev/fitrack/internal/notify"
	"github.com/theirongolddev/fitrack/internal/store"
)

// Sentinel errors.
var (
	ErrNotLoaded       = errors.New("engine: state not loaded")
	ErrNoSuchAccount   = errors.New("engine: no such account")
	ErrConsentRequired = errors.New("consent required: run `fitrack consent accept` first")
)

// Store is the persistence the engine needs. *store.DB and *store.Memory
// both satisfy it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
	BytesInUse(ctx context.Context) (store.Quota, error)
	AppendMilestone(ctx context.Context, band float64, at time.Time) error
}

// Config holds engine settings.
type Config struct {
	Store        Store
	Sink         notify.Sink
	Clock        Clock
	Bus          EventBus.Bus
	Log          *log.Entry
	TickInterval time.Duration
	SaveThrottle time.Duration
	// ReminderHour is the local hour of the daily reminder; negative disables it.
	ReminderHour int
}

// DefaultConfig returns the default engine settings (no store).
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		SaveThrottle: 5 * time.Second,
		ReminderHour: -1,
	}
}

// Engine is the recompute engine.
type Engine struct {
	cfg   Config
	clock Clock
	sink  notify.Sink
	bus   EventBus.Bus
	log   *log.Entry

	mu           sync.Mutex
	state        model.Portfolio
	loaded       bool
	seeded       bool
	repair       model.Repair
	ticks        uint64
	nextReminder time.Time
	policy       *SavePolicy
	seq          uint64
	outbox       []outgoing

	// writeMu serializes store writes. Lock order is mu then writeMu.
	writeMu    sync.Mutex
	writtenSeq uint64
	lastSave   SaveResult

	bg sync.WaitGroup

	lifeMu  sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an Idle engine. Call Load before Start.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.SaveThrottle <= 0 {
		cfg.SaveThrottle = def.SaveThrottle
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Sink == nil {
		cfg.Sink = notify.Discard
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Bus == nil {
		cfg.Bus = EventBus.New()
	}
	if cfg.Log == nil {
		cfg.Log = log.NewEntry(log.StandardLogger())
	}
	return &Engine{
		cfg:    cfg,
		clock:  cfg.Clock,
		sink:   cfg.Sink,
		bus:    cfg.Bus,
		log:    cfg.Log.WithField("component", "engine"),
		policy: NewSavePolicy(cfg.SaveThrottle),
	}
}

// Load reads the durable record. An absent record is replaced by the seeded
// default, announced with a welcome notification and written immediately.
// Missing fields in a stored record are back-filled.
func (e *Engine) Load(ctx context.Context) error {
	e.lock()
	defer e.unlock()

	now := e.clock.Now()
	today := finance.StartOfDay(now)

	data, err := e.cfg.Store.Get(ctx, store.StateKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.state = model.Seed(today)
		e.seeded = true
		e.log.Info("no saved state found, starting from example accounts")
	case err != nil:
		return fmt.Errorf("loading state: %w", err)
	default:
		p, rep, derr := model.Decode(data, today)
		if derr != nil {
			e.log.WithError(derr).Warn("stored state unreadable, starting from example accounts")
			p = model.Seed(today)
			e.seeded = true
		} else if rep.Changed() {
			e.log.WithField("fields", rep.SortedRepairs()).Info("back-filled missing fields in stored state")
		}
		e.state = p
		e.repair = rep
	}

	e.rollDay(now)
	e.policy.Reset()
	e.loaded = true
	e.scheduleReminder(now)

	if e.seeded {
		e.sendAsync(welcomeTitle, welcomeBody)
		e.persist(ctx, true)
	}
	e.emit(TopicChanged, "loaded", 0)
	return nil
}

// Loaded reports whether Load has succeeded.
func (e *Engine) Loaded() bool {
	e.lock()
	defer e.unlock()
	return e.loaded
}

// Seeded reports whether the last Load started from the seeded default.
func (e *Engine) Seeded() bool {
	e.lock()
	defer e.unlock()
	return e.seeded
}

// Repairs returns the fields back-filled by the last Load.
func (e *Engine) Repairs() []string {
	e.lock()
	defer e.unlock()
	return e.repair.SortedRepairs()
}

// Start moves the engine from Idle to Running. It loads state first if
// needed. Starting a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	if e.running {
		return nil
	}
	if !e.Loaded() {
		if err := e.Load(ctx); err != nil {
			return err
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.running = true
	go e.loop(loopCtx, e.done)

	e.log.WithField("interval", e.cfg.TickInterval).Debug("tick loop started")
	return nil
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Stop moves the engine back to Idle and forces a save. Stopping an idle
// engine is a no-op.
func (e *Engine) Stop() SaveResult {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	if !e.running {
		return SaveResult{}
	}
	e.cancel()
	<-e.done
	e.running = false
	e.cancel = nil
	e.done = nil

	// The caller's context may already be cancelled; teardown still writes.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e.lock()
	res := e.persist(ctx, true)
	e.unlock()
	e.Flush()

	e.log.Debug("tick loop stopped")
	return res
}

// Running reports whether the tick loop is active.
func (e *Engine) Running() bool {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	return e.running
}

// Run starts the engine, blocks until ctx is done, then stops it.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	res := e.Stop()
	if res.Err != nil {
		return fmt.Errorf("final save: %w", res.Err)
	}
	return nil
}

// Flush waits for background writes and notifications to finish.
func (e *Engine) Flush() {
	e.bg.Wait()
}

// sendAsync delivers a notification off the engine lock. Caller must hold e.mu.
func (e *Engine) sendAsync(title, body string) {
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		_ = notify.Send(e.sink, title, body)
	}()
}
