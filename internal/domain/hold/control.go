// Package hold implements the hold-to-confirm interaction behind the panic
// button: an action commits only after an uninterrupted hold of a fixed
// duration, followed by a cool-down during which new holds are ignored.
package hold

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/safetravel/internal/clock"
	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
	"github.com/okian/safetravel/pkg/metrics"
)

// Defaults match the panic button: hold 3s, redraw every 100ms, show the
// committed state for 2s.
const (
	DefaultDuration = 3 * time.Second
	DefaultTick     = 100 * time.Millisecond
	DefaultCooldown = 2 * time.Second
)

// Snapshot is a point-in-time view of a Control.
type Snapshot struct {
	State            model.HoldState `json:"state"`
	Progress         float64         `json:"progress"`
	SessionID        string          `json:"session_id,omitempty"`
	StartedAt        time.Time       `json:"started_at,omitzero"`
	RemainingSeconds int             `json:"remaining_seconds"`
}

// Control is one hold-to-confirm button. Every timer it schedules is owned by
// the instance and released by Stop, by the cool-down reset, or by Close.
type Control struct {
	mu sync.Mutex

	sched    clock.Scheduler
	duration time.Duration
	tick     time.Duration
	cooldown time.Duration

	state   model.HoldState
	session *model.HoldSession
	ticks   int

	completeTimer clock.Handle
	tickTimer     clock.Handle
	cooldownTimer clock.Handle

	onCommit   func(model.HoldSession)
	onProgress func(float64)

	name   string
	logger logger.Logger
}

// New creates an idle Control driven by sched.
func New(sched clock.Scheduler, opts ...Option) *Control {
	c := &Control{
		sched:    sched,
		duration: DefaultDuration,
		tick:     DefaultTick,
		cooldown: DefaultCooldown,
		state:    model.HoldIdle,
		name:     "panic-button",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tick > c.duration {
		c.tick = c.duration
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("hold")
	}
	return c
}

// Start begins a hold. It returns false, changing nothing, unless the control
// is idle.
func (c *Control) Start() bool {
	c.mu.Lock()
	if c.state != model.HoldIdle {
		c.mu.Unlock()
		return false
	}
	s := &model.HoldSession{
		ID:        uuid.NewString(),
		StartedAt: c.sched.Now(),
	}
	c.session = s
	c.ticks = 0
	c.state = model.HoldHolding
	// Registered before the tick so that, on a shared deadline, completion runs
	// first and the final tick is cancelled with it.
	c.completeTimer = c.sched.After(c.duration, func() { c.complete(s) })
	c.tickTimer = c.sched.Every(c.tick, func() { c.advance(s) })
	c.mu.Unlock()

	metrics.RecordHoldStarted()
	c.logger.Debug(context.Background(), "hold started",
		logger.String("control", c.name),
		logger.String("session", s.ID),
	)
	return true
}

// Stop releases an active hold before it completes, resetting progress to 0.
// It returns false, changing nothing, unless the control is holding.
func (c *Control) Stop() bool {
	c.mu.Lock()
	if c.state != model.HoldHolding {
		c.mu.Unlock()
		return false
	}
	s := c.session
	c.sched.Cancel(c.completeTimer)
	c.sched.Cancel(c.tickTimer)
	c.completeTimer, c.tickTimer = 0, 0
	s.Cancelled = true
	s.ElapsedFraction = 0
	held := c.sched.Now().Sub(s.StartedAt)
	c.resetLocked()
	c.mu.Unlock()

	metrics.RecordHoldCancelled(float64(held.Milliseconds()))
	c.logger.Debug(context.Background(), "hold released early",
		logger.String("control", c.name),
		logger.String("session", s.ID),
		logger.Duration("held", held),
	)
	return true
}

// Close tears the control down: every outstanding timer is cancelled and the
// control returns to idle without firing.
func (c *Control) Close() {
	c.mu.Lock()
	wasHolding := c.state == model.HoldHolding
	var held time.Duration
	if wasHolding {
		c.session.Cancelled = true
		held = c.sched.Now().Sub(c.session.StartedAt)
	}
	c.sched.Cancel(c.completeTimer)
	c.sched.Cancel(c.tickTimer)
	c.sched.Cancel(c.cooldownTimer)
	c.completeTimer, c.tickTimer, c.cooldownTimer = 0, 0, 0
	c.resetLocked()
	c.mu.Unlock()

	if wasHolding {
		metrics.RecordHoldCancelled(float64(held.Milliseconds()))
	}
}

// State returns the current state.
func (c *Control) State() model.HoldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current state, progress and countdown.
func (c *Control) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{State: c.state}
	if c.session == nil {
		return snap
	}
	snap.SessionID = c.session.ID
	snap.StartedAt = c.session.StartedAt
	snap.Progress = c.session.ElapsedFraction
	if c.state == model.HoldHolding {
		left := c.duration.Seconds() * (1 - snap.Progress)
		snap.RemainingSeconds = int(math.Ceil(left - 1e-9))
	}
	return snap
}

// advance is the cosmetic progress tick.
func (c *Control) advance(s *model.HoldSession) {
	c.mu.Lock()
	if c.session != s || c.state != model.HoldHolding {
		c.mu.Unlock()
		return
	}
	c.ticks++
	p := float64(time.Duration(c.ticks)*c.tick) / float64(c.duration)
	s.ElapsedFraction = math.Min(p, 1)
	fn := c.onProgress
	progress := s.ElapsedFraction
	c.mu.Unlock()

	if fn != nil {
		fn(progress)
	}
}

// complete fires the commit. It is the only path that sets Completed.
func (c *Control) complete(s *model.HoldSession) {
	c.mu.Lock()
	if c.session != s || c.state != model.HoldHolding {
		c.mu.Unlock()
		return
	}
	c.sched.Cancel(c.tickTimer)
	c.completeTimer, c.tickTimer = 0, 0
	s.ElapsedFraction = 1
	s.Completed = true
	c.state = model.HoldCommitted
	c.cooldownTimer = c.sched.After(c.cooldown, func() { c.release(s) })
	held := c.sched.Now().Sub(s.StartedAt)
	committed := *s
	fn := c.onCommit
	c.mu.Unlock()

	metrics.RecordHoldCommitted(float64(held.Milliseconds()))
	c.logger.Info(context.Background(), "hold committed",
		logger.String("control", c.name),
		logger.String("session", s.ID),
	)
	if fn != nil {
		fn(committed)
	}
}

// release ends the cool-down of s.
func (c *Control) release(s *model.HoldSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s || c.state != model.HoldCommitted {
		return
	}
	c.cooldownTimer = 0
	c.resetLocked()
}

func (c *Control) resetLocked() {
	c.session = nil
	c.ticks = 0
	c.state = model.HoldIdle
}
