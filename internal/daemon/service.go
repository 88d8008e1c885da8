// Package daemon runs the engine in the background and serves its state
// over HTTP and server-sent events.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/fitrack/internal/engine"
	"github.com/theirongolddev/fitrack/internal/model"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr           string
	EventsBuffer   int
	StatePath      string
	AllowedOrigins []string
}

// Summary is a compact portfolio state for status and event payloads.
type Summary struct {
	At                time.Time `json:"at"`
	Accounts          int       `json:"accounts"`
	Aggregate         float64   `json:"aggregate"`
	Goal              float64   `json:"goal"`
	Progress          float64   `json:"progress"`
	EarningsPerSecond float64   `json:"earnings_per_second"`
	EarnedToday       float64   `json:"earned_today"`
	TimeToGoal        string    `json:"time_to_goal"`
	Watermark         float64   `json:"last_milestone"`
	ConsentGiven      bool      `json:"consent_given"`
}

// Event is one entry of the event log and the SSE stream.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Band      float64   `json:"band,omitempty"`
	Aggregate float64   `json:"aggregate"`
	Progress  float64   `json:"progress"`
	Tick      uint64    `json:"tick"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time         `json:"started_at"`
	Running         bool              `json:"running"`
	Ticks           uint64            `json:"ticks"`
	StatePath       string            `json:"state_path,omitempty"`
	Repairs         []string          `json:"repairs,omitempty"`
	LastSave        engine.SaveResult `json:"last_save"`
	Summary         Summary           `json:"summary"`
	EventCount      int               `json:"event_count"`
	SubscriberCount int               `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	eng *engine.Engine
	log *log.Entry

	mu          sync.RWMutex
	startedAt   time.Time
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event

	onEngineEvent func(engine.Event)
}

// New returns a daemon service around eng.
func New(cfg Config, eng *engine.Engine) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}

	s := &Service{
		cfg:       cfg,
		eng:       eng,
		log:       log.WithField("component", "daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.onEngineEvent = func(ev engine.Event) {
		s.publishEvent(eventFromEngine(ev), ev.Topic != engine.TopicTick)
	}
	return s
}

// Run starts the engine and the HTTP API and blocks until ctx is canceled.
// The engine is stopped (with a final save) before Run returns.
func (s *Service) Run(ctx context.Context) error {
	if err := s.subscribe(); err != nil {
		return err
	}
	defer s.unsubscribe()

	if err := s.eng.Start(ctx); err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}
	defer s.eng.Stop()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.WithField("addr", s.cfg.Addr).Info("daemon listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) subscribe() error {
	bus := s.eng.Bus()
	for _, topic := range engine.Topics {
		if err := bus.Subscribe(topic, s.onEngineEvent); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	return nil
}

func (s *Service) unsubscribe() {
	bus := s.eng.Bus()
	for _, topic := range engine.Topics {
		_ = bus.Unsubscribe(topic, s.onEngineEvent)
	}
}

// Handler returns the HTTP API wrapped in CORS handling.
func (s *Service) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)
	v1 := router.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/portfolio", s.handlePortfolio)
	v1.GET("/events", s.handleEvents)
	v1.GET("/stream", s.handleStream)
	v1.POST("/save", s.handleSave)
	v1.POST("/flush", s.handleFlush)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost", "http://127.0.0.1"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(router)
}

func (s *Service) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("request")
	}
}

func eventFromEngine(ev engine.Event) Event {
	return Event{
		Type:      ev.Topic,
		Timestamp: ev.At,
		Message:   ev.Message,
		Band:      ev.Band,
		Aggregate: ev.Aggregate,
		Progress:  ev.Progress,
		Tick:      ev.Tick,
	}
}

// publishEvent fans ev out to stream subscribers. Kept events also go into
// the ring buffer served at /v1/events.
func (s *Service) publishEvent(ev Event, keep bool) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	if keep {
		s.events = append(s.events, ev)
		if len(s.events) > s.cfg.EventsBuffer {
			s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
		}
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func summarize(snap engine.Snapshot) Summary {
	return Summary{
		At:                snap.At,
		Accounts:          len(snap.Portfolio.Accounts),
		Aggregate:         snap.Aggregate,
		Goal:              snap.Portfolio.Goal,
		Progress:          snap.Progress,
		EarningsPerSecond: snap.EarningsPerSecond,
		EarnedToday:       snap.EarnedToday,
		TimeToGoal:        snap.TimeToGoalStr,
		Watermark:         snap.Portfolio.Watermark,
		ConsentGiven:      snap.ConsentGiven,
	}
}

func (s *Service) snapshotStatus() Status {
	snap := s.eng.Snapshot()
	repairs := s.eng.Repairs()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Running:         snap.Running,
		Ticks:           snap.Ticks,
		StatePath:       s.cfg.StatePath,
		Repairs:         repairs,
		LastSave:        snap.LastSave,
		Summary:         summarize(snap),
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handlePortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Snapshot())
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (s *Service) handleSave(c *gin.Context) {
	res, err := s.eng.Save(c.Request.Context())
	if err != nil {
		if errors.Is(err, engine.ErrNotLoaded) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		var fields []fieldError
		for _, ve := range model.ValidationErrors(err) {
			fields = append(fields, fieldError{Field: ve.Field, Message: ve.Message})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	s.writeSaveResult(c, res)
}

func (s *Service) handleFlush(c *gin.Context) {
	res, err := s.eng.ManualSave(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	s.writeSaveResult(c, res)
}

func (s *Service) writeSaveResult(c *gin.Context, res engine.SaveResult) {
	status := http.StatusOK
	if res.Err != nil {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

func (s *Service) handleStream(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current summary immediately.
	c.SSEvent("snapshot", summarize(s.eng.Snapshot()))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-ch:
			c.SSEvent(ev.Type, ev)
			return true
		}
	})
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
