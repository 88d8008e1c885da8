package engine

import (
	"time"

	"github.com/asaskevich/EventBus"

	"github.com/theirongolddev/fitrack/internal/finance"
)

// Event bus topics.
const (
	TopicTick      = "portfolio:tick"
	TopicMilestone = "portfolio:milestone"
	TopicChanged   = "portfolio:changed"
	TopicSaved     = "portfolio:saved"
)

// Topics lists every topic the engine publishes.
var Topics = []string{TopicTick, TopicMilestone, TopicChanged, TopicSaved}

// Event is the payload published on every topic. Handlers receive it by
// value and must not call back into the engine synchronously.
type Event struct {
	Topic     string    `json:"topic"`
	At        time.Time `json:"at"`
	Message   string    `json:"message,omitempty"`
	Band      float64   `json:"band,omitempty"`
	Aggregate float64   `json:"aggregate"`
	Progress  float64   `json:"progress"`
	Tick      uint64    `json:"tick"`
}

type outgoing struct {
	topic string
	ev    Event
}

// Bus returns the event bus so callers can subscribe.
func (e *Engine) Bus() EventBus.Bus { return e.bus }

// emit queues an event for publication once the engine lock is released.
// Caller must hold e.mu.
func (e *Engine) emit(topic, msg string, band float64) {
	agg := aggregateOf(&e.state)
	e.outbox = append(e.outbox, outgoing{topic: topic, ev: Event{
		Topic:     topic,
		At:        e.clock.Now(),
		Message:   msg,
		Band:      band,
		Aggregate: agg,
		Progress:  finance.ProgressPercent(agg, e.state.Goal),
		Tick:      e.ticks,
	}})
}

func (e *Engine) lock() { e.mu.Lock() }

// unlock releases e.mu and then publishes whatever was queued while held.
func (e *Engine) unlock() {
	out := e.outbox
	e.outbox = nil
	e.mu.Unlock()
	for _, o := range out {
		e.bus.Publish(o.topic, o.ev)
	}
}
