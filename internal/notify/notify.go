// Package notify delivers user-facing notifications. Delivery is
// best-effort: callers get a Result and are free to ignore it.
package notify

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// Sink delivers one notification.
type Sink interface {
	Notify(title, body string) error
}

// Result is the outcome of a best-effort delivery.
type Result struct {
	Delivered bool
	Err       error
}

// Send delivers through s and turns the error into a Result. Failures are
// logged and never retried.
func Send(s Sink, title, body string) Result {
	if s == nil {
		return Result{}
	}
	if err := s.Notify(title, body); err != nil {
		log.WithField("component", "notify").WithError(err).Warnf("notification %q not delivered", title)
		return Result{Err: err}
	}
	return Result{Delivered: true}
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(title, body string) error

// Notify calls f.
func (f SinkFunc) Notify(title, body string) error { return f(title, body) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(string, string) error { return nil })

// LogSink writes notifications to a logrus entry.
type LogSink struct {
	Entry *log.Entry
}

func (s LogSink) Notify(title, body string) error {
	e := s.Entry
	if e == nil {
		e = log.NewEntry(log.StandardLogger())
	}
	e.WithField("title", title).Info(body)
	return nil
}

// Multi fans out to every sink. All sinks are tried; the errors are joined.
type Multi []Sink

func (m Multi) Notify(title, body string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
