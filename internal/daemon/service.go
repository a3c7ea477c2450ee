// Package daemon serves the dashboard KPIs over a local read-only HTTP API
// and keeps them fresh as the workbook changes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/store"
	"github.com/theirongolddev/salesdash/internal/watch"
)

// Config controls the daemon runtime behavior.
type Config struct {
	File         string
	Load         pipeline.Options
	Query        pipeline.Query // default filters, overridable per request
	Goals        config.GoalsConfig
	Investment   float64 // default for /v1/simulate
	UseCache     bool
	Watch        bool
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *zap.Logger
}

// Snapshot is a compact KPI state for status/event payloads.
type Snapshot struct {
	At         time.Time `json:"at"`
	Rows       int       `json:"rows"`
	Months     int       `json:"months"`
	Revenue    float64   `json:"revenue"`
	Customers  float64   `json:"customers"`
	Investment float64   `json:"investment"`
	ROAS       float64   `json:"roas"`
	CAC        float64   `json:"cac"`
	Profit     float64   `json:"profit"`
}

// Delta captures snapshot deltas between reloads.
type Delta struct {
	Rows       int     `json:"rows"`
	Revenue    float64 `json:"revenue"`
	Customers  float64 `json:"customers"`
	Investment float64 `json:"investment"`
}

func (d Delta) isZero() bool {
	return d.Rows == 0 &&
		d.Revenue == 0 &&
		d.Customers == 0 &&
		d.Investment == 0
}

// Event types published on /v1/events and /v1/stream.
const (
	EventSnapshot    = "snapshot"
	EventDataChanged = "data_changed"
	EventLoadError   = "load_error"
)

// Event is emitted whenever the KPI snapshot updates.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Error     string    `json:"error,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastLoadAt      time.Time `json:"last_load_at"`
	IntervalSec     int       `json:"interval_sec"`
	LoadCount       int64     `json:"load_count"`
	File            string    `json:"file"`
	Sheet           string    `json:"sheet,omitempty"`
	Watching        bool      `json:"watching"`
	Channels        []string  `json:"channels"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastLoadAt  time.Time
	loadCount   int64
	lastError   string
	data        *pipeline.LoadResult
	hasSnapshot bool
	snapshot    Snapshot
	watching    bool
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8765"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		log:       cfg.Logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts the HTTP endpoints and reloads the workbook on change or on
// every interval until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var changes <-chan struct{}
	if s.cfg.Watch {
		fw, err := watch.New(s.cfg.File, watch.DefaultDebounce, s.log)
		if err == nil {
			err = fw.Start(ctx)
		}
		if err != nil {
			s.log.Warn("file watch unavailable, relying on interval", zap.Error(err))
		} else {
			defer fw.Stop()
			changes = fw.Changes()
			s.mu.Lock()
			s.watching = true
			s.mu.Unlock()
		}
	}

	// Seed initial snapshot so status is useful immediately.
	s.reload()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.reload()
		case <-changes:
			s.log.Debug("workbook changed on disk")
			s.reload()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// reload re-reads the workbook and publishes an event when KPIs moved.
func (s *Service) reload() {
	result, err := s.loadData()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastLoadAt = now
		s.loadCount++
		s.nextEventID++
		ev := Event{ID: s.nextEventID, Type: EventLoadError, Timestamp: now, Snapshot: s.snapshot, Error: err.Error()}
		s.mu.Unlock()
		s.log.Warn("reload failed", zap.String("file", s.cfg.File), zap.Error(err))
		s.publishEvent(ev)
		return
	}

	snap := s.snapshotFor(result, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.data = result
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastLoadAt = now
	s.loadCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventDataChanged, Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Info("kpis updated", zap.String("event", ev.Type), zap.Int("rows", snap.Rows), zap.Float64("revenue", snap.Revenue))
		s.publishEvent(ev)
	}
}

func (s *Service) loadData() (*pipeline.LoadResult, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.File, s.cfg.Load, cache, nil)
			if loadErr == nil {
				if cr.CacheErr != nil {
					s.log.Warn("cache not updated", zap.Error(cr.CacheErr))
				}
				return &cr.LoadResult, nil
			}
			s.log.Debug("cached load failed, reparsing", zap.Error(loadErr))
		}
	}
	return pipeline.Load(s.cfg.File, s.cfg.Load, nil)
}

// snapshotFor summarises result under the default query. A query that no
// longer applies (a channel was renamed) falls back to all channels.
func (s *Service) snapshotFor(result *pipeline.LoadResult, at time.Time) Snapshot {
	view, err := pipeline.Apply(result, s.cfg.Query)
	if err != nil {
		s.log.Warn("default filters do not match the workbook", zap.Error(err))
		view, _ = pipeline.Apply(result, pipeline.Query{})
	}
	stats := pipeline.Aggregate(view.Rows, view.Channels)
	snap := snapshotFromSummary(stats, at)
	snap.Rows = len(view.Rows)
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Rows:       curr.Rows - prev.Rows,
		Revenue:    curr.Revenue - prev.Revenue,
		Customers:  curr.Customers - prev.Customers,
		Investment: curr.Investment - prev.Investment,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastLoadAt:      s.lastLoadAt,
		IntervalSec:     int(s.cfg.Interval.Seconds()),
		LoadCount:       s.loadCount,
		File:            s.cfg.File,
		Watching:        s.watching,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.data != nil {
		st.Sheet = s.data.Sheet
		st.Channels = channelNames(s.data)
	}
	return st
}

// current returns the last successfully loaded workbook, or nil.
func (s *Service) current() *pipeline.LoadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
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
