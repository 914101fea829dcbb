// Package service wires the panic buttons, location simulators, alert
// pipeline and fixtures into the operations served by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/safetravel/internal/adapters/mq/queue"
	"github.com/okian/safetravel/internal/adapters/mq/worker"
	"github.com/okian/safetravel/internal/adapters/notify"
	"github.com/okian/safetravel/internal/adapters/repository"
	"github.com/okian/safetravel/internal/clock"
	"github.com/okian/safetravel/internal/domain/dedupe"
	"github.com/okian/safetravel/internal/domain/fixtures"
	"github.com/okian/safetravel/internal/domain/hold"
	"github.com/okian/safetravel/internal/domain/jitter"
	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
	"github.com/okian/safetravel/pkg/metrics"
)

// Message attached to every alert raised from the panic button.
const alertMessage = "Emergency alert raised from the panic button"

// panel is the live state kept for one tourist.
type panel struct {
	tourist model.Tourist
	hold    *hold.Control
	sim     *jitter.Simulator
	release func()
}

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.MemoryStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	feed    *notify.Feed

	sched  clock.Scheduler
	loop   *clock.Loop
	panels map[string]*panel
	screen model.Screen

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	feedSize       int
	alertRetention int
	holdDuration   time.Duration
	holdTick       time.Duration
	holdCooldown   time.Duration
	jitterInterval time.Duration
	maxDrift       float64
	dispatchMin    time.Duration
	dispatchMax    time.Duration
	seed           uint64
	seeded         bool

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    4,
		queueSize:      1024,
		dedupeSize:     dedupe.DefaultMaxSize,
		feedSize:       100,
		holdDuration:   hold.DefaultDuration,
		holdTick:       hold.DefaultTick,
		holdCooldown:   hold.DefaultCooldown,
		jitterInterval: jitter.DefaultInterval,
		maxDrift:       jitter.DefaultMaxDrift,
		dispatchMin:    50 * time.Millisecond,
		dispatchMax:    120 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and starts the loop, the dispatch workers and
// one location simulator per tourist.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting safetravel service...")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.sched == nil {
		s.loop = clock.NewLoop()
		go s.loop.Run(runCtx)
	}
	sched := s.scheduler()

	s.store = repository.NewMemoryStore(repository.WithRetention(s.alertRetention))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.feed = notify.NewFeed(
		notify.WithCapacity(s.feedSize),
		notify.WithLatency(s.dispatchMin, s.dispatchMax),
		notify.WithNow(sched.Now),
	)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.feed, s.store)
	s.pool.Start(runCtx)

	s.panels = make(map[string]*panel)
	for i, t := range fixtures.Roster() {
		p := &panel{tourist: t}
		p.hold = hold.New(sched,
			hold.WithDuration(s.holdDuration),
			hold.WithTick(s.holdTick),
			hold.WithCooldown(s.holdCooldown),
			hold.WithName("panic-"+t.ID),
			hold.WithOnCommit(func(session model.HoldSession) { s.raiseAlert(p, session) }),
		)
		p.sim = jitter.New(sched,
			jitter.WithMaxDrift(s.maxDrift),
			jitter.WithRand(s.rand(uint64(i))),
			jitter.WithName("location-"+t.ID),
		)
		initial := model.PositionSample{
			Latitude:  t.Latitude,
			Longitude: t.Longitude,
			Label:     t.CurrentLocation,
		}
		p.release = p.sim.Watch(runCtx, initial, s.jitterInterval)
		s.panels[t.ID] = p
	}
	s.screen, _ = fixtures.Screen("home")

	s.started = true
	s.logger.Info(ctx, "safetravel service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("tourists", len(s.panels)),
		logger.Duration("hold", s.holdDuration),
	)
	return nil
}

// Stop releases every timer and shuts the pipeline down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping safetravel service...")

	for _, p := range s.panels {
		p.release()
		p.hold.Close()
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if s.loop != nil {
		s.loop.Close()
		s.loop = nil
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "safetravel service stopped")
}

// raiseAlert turns a committed hold into a queued alert. A session raises at
// most one alert.
func (s *Service) raiseAlert(p *panel, session model.HoldSession) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	if !s.started {
		return
	}
	if s.deduper.SeenAndRecord(ctx, session.ID) {
		metrics.RecordAlertDuplicate()
		return
	}

	a := model.Alert{
		ID:          uuid.NewString(),
		TouristID:   p.tourist.ID,
		TouristName: p.tourist.Name,
		SessionID:   session.ID,
		Position:    p.sim.Current(),
		Message:     alertMessage,
		RaisedAt:    s.scheduler().Now(),
	}
	if !s.queue.Enqueue(ctx, a) {
		s.deduper.Unrecord(ctx, session.ID)
		metrics.RecordAlertDropped()
		s.logger.Warn(ctx, "alert dropped: queue rejected it",
			logger.String("tourist", a.TouristID),
			logger.String("session", session.ID),
		)
		return
	}
	metrics.RecordAlertRaised()
	s.logger.Info(ctx, "alert raised",
		logger.String("alert", a.ID),
		logger.String("tourist", a.TouristID),
		logger.Float64("lat", a.Position.Latitude),
		logger.Float64("lng", a.Position.Longitude),
	)
}

// PressStart begins a panic button hold. The bool reports whether a new hold
// started.
func (s *Service) PressStart(_ context.Context, touristID string) (hold.Snapshot, bool, error) {
	p, err := s.panel(touristID)
	if err != nil {
		return hold.Snapshot{}, false, err
	}
	changed := p.hold.Start()
	return p.hold.Snapshot(), changed, nil
}

// PressEnd releases the panic button. The bool reports whether an active hold
// was cancelled.
func (s *Service) PressEnd(_ context.Context, touristID string) (hold.Snapshot, bool, error) {
	p, err := s.panel(touristID)
	if err != nil {
		return hold.Snapshot{}, false, err
	}
	changed := p.hold.Stop()
	return p.hold.Snapshot(), changed, nil
}

// PanicStatus returns the panic button state of a tourist.
func (s *Service) PanicStatus(_ context.Context, touristID string) (hold.Snapshot, error) {
	p, err := s.panel(touristID)
	if err != nil {
		return hold.Snapshot{}, err
	}
	return p.hold.Snapshot(), nil
}

// Position returns the latest simulated location of a tourist.
func (s *Service) Position(_ context.Context, touristID string) (model.PositionSample, error) {
	p, err := s.panel(touristID)
	if err != nil {
		return model.PositionSample{}, err
	}
	return p.sim.Current(), nil
}

// Roster searches the tourists shown on the police dashboard.
func (s *Service) Roster(ctx context.Context, query string) ([]model.Tourist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	all := fixtures.Roster()
	for i := range all {
		s.overlayLocked(ctx, &all[i])
	}
	return fixtures.Rank(all, query), nil
}

// Tourist returns one tourist with live status and position.
func (s *Service) Tourist(ctx context.Context, touristID string) (model.Tourist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Tourist{}, ErrNotStarted
	}
	t, ok := fixtures.Tourist(touristID)
	if !ok {
		return model.Tourist{}, fmt.Errorf("tourist %q: %w", touristID, ErrTouristNotFound)
	}
	s.overlayLocked(ctx, &t)
	return t, nil
}

// Itinerary returns a tourist's trip plan.
func (s *Service) Itinerary(_ context.Context, touristID string) ([]model.ItineraryStop, error) {
	t, ok := fixtures.Tourist(touristID)
	if !ok {
		return nil, fmt.Errorf("tourist %q: %w", touristID, ErrTouristNotFound)
	}
	return t.Itinerary, nil
}

// SafeZones returns the zones drawn on the police map.
func (s *Service) SafeZones(_ context.Context) []model.SafeZone {
	return fixtures.SafeZones()
}

// Alerts returns up to limit alerts, newest first.
func (s *Service) Alerts(ctx context.Context, limit int) ([]model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.List(ctx, limit), nil
}

// Alert returns one dispatched alert.
func (s *Service) Alert(ctx context.Context, id string) (model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Alert{}, ErrNotStarted
	}
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Alert{}, fmt.Errorf("%w: %w", ErrAlertNotFound, err)
	}
	return a, nil
}

// Notifications returns up to limit toasts, newest first.
func (s *Service) Notifications(_ context.Context, limit int) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.feed.Recent(limit), nil
}

// Screens returns the navigation destinations.
func (s *Service) Screens(_ context.Context) []model.Screen {
	return fixtures.Screens()
}

// Navigate records a move to the screen with the given id.
func (s *Service) Navigate(ctx context.Context, screenID string) (model.Screen, error) {
	screen, ok := fixtures.Screen(screenID)
	if !ok {
		return model.Screen{}, fmt.Errorf("screen %q: %w", screenID, ErrUnknownScreen)
	}
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return model.Screen{}, ErrNotStarted
	}
	s.screen = screen
	s.mu.Unlock()
	s.logger.Debug(ctx, "navigate", logger.String("screen", screen.ID), logger.String("path", screen.Path))
	return screen, nil
}

// CurrentScreen returns the last screen navigated to.
func (s *Service) CurrentScreen() model.Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	holding, running := 0, 0
	for _, p := range s.panels {
		if p.hold.State() == model.HoldHolding {
			holding++
		}
		if p.sim.Running() {
			running++
		}
	}
	stats["tourists"] = len(s.panels)
	stats["activeHolds"] = holding
	stats["runningSimulators"] = running
	stats["queueLength"] = s.queue.Len(ctx)
	stats["alertsStored"] = s.store.Count(ctx)
	stats["alertsDispatched"] = s.pool.Processed()
	stats["notifications"] = s.feed.Len()
	stats["dedupeEntries"] = s.deduper.Size()
	stats["screen"] = s.screen.ID
	return stats
}

func (s *Service) panel(touristID string) (*panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	p, ok := s.panels[touristID]
	if !ok {
		return nil, fmt.Errorf("tourist %q: %w", touristID, ErrTouristNotFound)
	}
	return p, nil
}

// overlayLocked applies live state to a fixture tourist.
func (s *Service) overlayLocked(ctx context.Context, t *model.Tourist) {
	if len(s.store.ForTourist(ctx, t.ID)) > 0 {
		t.Status = model.StatusAlert
	}
	if p, ok := s.panels[t.ID]; ok {
		pos := p.sim.Current()
		t.Latitude, t.Longitude = pos.Latitude, pos.Longitude
	}
}

func (s *Service) scheduler() clock.Scheduler {
	if s.loop != nil {
		return s.loop
	}
	return s.sched
}

// rand returns the random source for the i-th simulator.
func (s *Service) rand(i uint64) *rand.Rand {
	if s.seeded {
		return rand.New(rand.NewPCG(s.seed, i))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
