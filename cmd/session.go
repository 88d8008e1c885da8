package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fitrack/internal/cli"
	"github.com/theirongolddev/fitrack/internal/config"
	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/model"
	"github.com/theirongolddev/fitrack/internal/notify"
	"github.com/theirongolddev/fitrack/internal/store"

	log "github.com/sirupsen/logrus"
)

// stateStore is what commands need from either store implementation.
type stateStore interface {
	engine.Store
	Milestones(ctx context.Context) ([]store.Milestone, error)
	Close() error
}

// session is an opened store plus a loaded, idle engine.
type session struct {
	eng   *engine.Engine
	store stateStore
	path  string
}

// openSession opens the configured store and loads the engine from it.
func openSession(ctx context.Context) (*session, error) {
	st, path, err := openStore()
	if err != nil {
		return nil, err
	}

	ecfg := engine.DefaultConfig()
	ecfg.Store = st
	ecfg.Sink = buildSink(appCfg)
	ecfg.Log = log.NewEntry(log.StandardLogger())
	ecfg.TickInterval = appCfg.TickInterval()
	ecfg.SaveThrottle = appCfg.SaveThrottle()
	ecfg.ReminderHour = appCfg.Notifications.DailyReminderHour

	eng := engine.New(ecfg)
	if err := eng.Load(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return &session{eng: eng, store: st, path: path}, nil
}

func openStore() (stateStore, string, error) {
	if flagEphemeral {
		return store.NewMemory(), ":memory:", nil
	}
	path := appCfg.ResolvedStatePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, "", fmt.Errorf("create state directory: %w", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, "", err
	}
	return db, path, nil
}

// Close stops the engine if it is running, waits for pending writes and
// closes the store.
func (s *session) Close() error {
	s.eng.Stop()
	s.eng.Flush()
	return s.store.Close()
}

// buildSink assembles the notification sinks from config. Notifications
// always go to the log; a configured command gets them too.
func buildSink(cfg config.Config) notify.Sink {
	if !cfg.Notifications.Enabled {
		return notify.Discard
	}
	sinks := notify.Multi{notify.LogSink{Entry: log.WithField("component", "notify")}}
	if cs := notify.NewCommandSink(cfg.Notifications.Command); cs != nil {
		sinks = append(sinks, cs)
	}
	return sinks
}

func currency() finance.Currency {
	return finance.CurrencyByCode(appCfg.Appearance.Currency)
}

// mutate applies fn to a consented, loaded engine and saves the result with
// validation. Nothing is written when consent is missing or validation fails.
func mutate(ctx context.Context, fn func(*engine.Engine) error) (*session, error) {
	s, err := openSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.eng.RequireConsent(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: run `fitrack consent accept` first", err)
	}
	if err := fn(s.eng); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := saveValidated(ctx, s.eng); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

var errNotSaved = errors.New("not saved")

// saveValidated runs a validated save and prints every validation problem.
func saveValidated(ctx context.Context, eng *engine.Engine) error {
	res, err := eng.Save(ctx)
	if err != nil {
		verrs := model.ValidationErrors(err)
		if len(verrs) == 0 {
			return err
		}
		for _, v := range verrs {
			fmt.Fprintln(os.Stderr, cli.RenderWarning(v.Error()))
		}
		return fmt.Errorf("%w: %d invalid value(s)", errNotSaved, len(verrs))
	}
	if res.Err != nil {
		return fmt.Errorf("save: %w", res.Err)
	}
	return nil
}
