package clock

import (
	"context"
	"sync"
	"time"
)

const defaultLoopBacklog = 256

// Loop is a real-time Scheduler. Timers fire on runtime goroutines but their
// callbacks are handed to a single goroutine started by Run, so callbacks
// never run concurrently with one another.
type Loop struct {
	mu     sync.Mutex
	next   Handle
	live   map[Handle]func() // handle -> stop function of the backing timer
	tasks  chan task
	done   chan struct{}
	closed bool
	once   sync.Once
}

type task struct {
	id      Handle
	oneShot bool
	fn      func()
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a Loop. Callbacks only run once Run is called.
func NewLoop() *Loop {
	return &Loop{
		live:  make(map[Handle]func()),
		tasks: make(chan task, defaultLoopBacklog),
		done:  make(chan struct{}),
	}
}

// Run executes callbacks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		case t := <-l.tasks:
			if l.claim(t) {
				t.fn()
			}
		}
	}
}

// claim reports whether t is still live, retiring one-shot handles.
func (l *Loop) claim(t task) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.live[t.id]; !ok {
		return false
	}
	if t.oneShot {
		delete(l.live, t.id)
	}
	return true
}

// post hands t to the Run goroutine. It gives up once the loop closes or,
// for periodic timers, once stop is closed by Cancel. A nil stop never fires.
func (l *Loop) post(t task, stop <-chan struct{}) {
	select {
	case l.tasks <- t:
	case <-l.done:
	case <-stop:
	}
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	if l.closed {
		return id
	}
	timer := time.AfterFunc(d, func() { l.post(task{id: id, oneShot: true, fn: fn}, nil) })
	l.live[id] = func() { timer.Stop() }
	return id
}

// Every implements Scheduler.
func (l *Loop) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		d = time.Millisecond
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	if l.closed {
		return id
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				l.post(task{id: id, fn: fn}, stop)
			}
		}
	}()
	var once sync.Once
	l.live[id] = func() { once.Do(func() { close(stop) }) }
	return id
}

// Cancel implements Scheduler.
func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	stop, ok := l.live[h]
	delete(l.live, h)
	l.mu.Unlock()
	if ok {
		stop()
	}
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Pending returns the number of live timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// Close stops every timer and the Run loop. It is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		stops := make([]func(), 0, len(l.live))
		for id, stop := range l.live {
			stops = append(stops, stop)
			delete(l.live, id)
		}
		l.mu.Unlock()
		for _, stop := range stops {
			stop()
		}
		close(l.done)
	})
}
