// Package jitter simulates a drifting location fix: starting from a known
// position, every interval each coordinate moves by a bounded random offset.
package jitter

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/safetravel/internal/clock"
	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
	"github.com/okian/safetravel/pkg/metrics"
)

// Defaults match the tourist dashboard: a new fix every 5s drifting by at
// most 0.0005 degrees per axis.
const (
	DefaultInterval = 5 * time.Second
	DefaultMaxDrift = 0.0005
)

// Simulator owns one periodic timer while running. End releases it.
type Simulator struct {
	mu sync.Mutex

	sched    clock.Scheduler
	rng      *rand.Rand
	maxDrift float64
	publish  func(model.PositionSample)

	running bool
	gen     uint64
	timer   clock.Handle
	current model.PositionSample

	name   string
	logger logger.Logger
}

// New creates a stopped Simulator driven by sched.
func New(sched clock.Scheduler, opts ...Option) *Simulator {
	s := &Simulator{
		sched:    sched,
		maxDrift: DefaultMaxDrift,
		name:     "location",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("jitter")
	}
	return s
}

// Begin seeds the simulator with initial and starts drifting every interval.
// It returns false, changing nothing, when already running.
func (s *Simulator) Begin(initial model.PositionSample, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	s.gen++
	gen := s.gen
	s.running = true
	s.current = initial
	if s.current.CapturedAt.IsZero() {
		s.current.CapturedAt = s.sched.Now()
	}
	s.timer = s.sched.Every(interval, func() { s.step(gen) })
	s.mu.Unlock()

	metrics.RecordSimulatorStarted()
	s.logger.Debug(context.Background(), "location simulation started",
		logger.String("simulator", s.name),
		logger.Duration("interval", interval),
	)
	return true
}

// End stops the simulator. No sample is produced after End returns.
// Calling End on a stopped simulator is a no-op that returns false.
func (s *Simulator) End() bool {
	return s.end(0)
}

// end stops the run started as generation gen, or any run when gen is 0.
func (s *Simulator) end(gen uint64) bool {
	s.mu.Lock()
	if !s.running || (gen != 0 && s.gen != gen) {
		s.mu.Unlock()
		return false
	}
	s.running = false
	s.gen++
	s.sched.Cancel(s.timer)
	s.timer = 0
	s.mu.Unlock()

	metrics.RecordSimulatorStopped()
	s.logger.Debug(context.Background(), "location simulation stopped",
		logger.String("simulator", s.name),
	)
	return true
}

// Watch runs the simulator for the lifetime of ctx. The returned release
// function ends it early and is safe to call more than once. Neither the
// release nor ctx ends a later run started by another Begin.
func (s *Simulator) Watch(ctx context.Context, initial model.PositionSample, interval time.Duration) func() {
	if !s.Begin(initial, interval) {
		return func() {}
	}
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.end(gen) })
	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			s.end(gen)
		})
	}
}

// Current returns the latest sample.
func (s *Simulator) Current() model.PositionSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Running reports whether the simulator is producing samples.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulator) step(gen uint64) {
	s.mu.Lock()
	if !s.running || s.gen != gen {
		s.mu.Unlock()
		return
	}
	next := s.current
	next.Latitude += s.offset()
	next.Longitude += s.offset()
	next.Seq++
	next.CapturedAt = s.sched.Now()
	next.Simulated = true
	s.current = next
	fn := s.publish
	s.mu.Unlock()

	metrics.RecordJitterTick()
	if fn != nil {
		fn(next)
	}
}

// offset returns a uniform value in [-maxDrift, maxDrift).
func (s *Simulator) offset() float64 {
	return (s.rng.Float64()*2 - 1) * s.maxDrift
}
