package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-time Scheduler. Time only moves through Advance, which
// runs due callbacks synchronously on the caller's goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	next   Handle
	timers map[Handle]*manualTimer
}

type manualTimer struct {
	id     Handle
	at     time.Time
	period time.Duration
	fn     func()
}

var _ Scheduler = (*Manual)(nil)

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:    start,
		timers: make(map[Handle]*manualTimer),
	}
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

// Every implements Scheduler. Non-positive periods are treated as one nanosecond.
func (m *Manual) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.timers[m.next] = &manualTimer{id: m.next, at: m.now.Add(d), period: period, fn: fn}
	return m.next
}

// Cancel implements Scheduler.
func (m *Manual) Cancel(h Handle) {
	m.mu.Lock()
	delete(m.timers, h)
	m.mu.Unlock()
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d, running every callback that falls due
// on the way in time order. Callbacks due at the same instant run in the
// order they were registered.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.earliestLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.at
		if t.period > 0 {
			t.at = t.at.Add(t.period)
		} else {
			delete(m.timers, t.id)
		}
		fn := t.fn
		m.mu.Unlock()

		fn()
	}
}

// AdvanceTo moves the clock to at. Times in the past are ignored.
func (m *Manual) AdvanceTo(at time.Time) {
	m.mu.Lock()
	d := at.Sub(m.now)
	m.mu.Unlock()
	if d > 0 {
		m.Advance(d)
	}
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) earliestLocked(limit time.Time) *manualTimer {
	due := make([]*manualTimer, 0, len(m.timers))
	for _, t := range m.timers {
		if !t.at.After(limit) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].id < due[j].id
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}
