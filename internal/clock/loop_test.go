package clock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/safetravel/internal/clock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoop(t *testing.T) {
	Convey("Given a running loop", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		l := clock.NewLoop()
		go l.Run(ctx)
		defer l.Close()

		Convey("When a one-shot timer is registered", func() {
			done := make(chan struct{})
			l.After(10*time.Millisecond, func() { close(done) })

			Convey("Then it fires and is retired", func() {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					t.Fatal("timer did not fire")
				}
				So(l.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When a timer is cancelled before its deadline", func() {
			var fired atomic.Bool
			h := l.After(30*time.Millisecond, func() { fired.Store(true) })
			l.Cancel(h)
			time.Sleep(80 * time.Millisecond)

			Convey("Then it never runs", func() {
				So(fired.Load(), ShouldBeFalse)
				So(l.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When a periodic timer runs alongside others", func() {
			var (
				mu      sync.Mutex
				running int
				overlap bool
				ticks   atomic.Int32
			)
			body := func() {
				mu.Lock()
				running++
				if running > 1 {
					overlap = true
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				ticks.Add(1)
			}
			h1 := l.Every(2*time.Millisecond, body)
			h2 := l.Every(3*time.Millisecond, body)
			time.Sleep(60 * time.Millisecond)
			l.Cancel(h1)
			l.Cancel(h2)

			Convey("Then callbacks never overlap", func() {
				So(ticks.Load(), ShouldBeGreaterThan, 0)
				mu.Lock()
				defer mu.Unlock()
				So(overlap, ShouldBeFalse)
			})

			Convey("Then cancellation stops further ticks", func() {
				time.Sleep(10 * time.Millisecond)
				before := ticks.Load()
				time.Sleep(30 * time.Millisecond)
				So(ticks.Load(), ShouldEqual, before)
			})
		})
	})
}

func TestLoopClose(t *testing.T) {
	Convey("Given a loop with pending timers", t, func() {
		l := clock.NewLoop()
		go l.Run(context.Background())
		var fired atomic.Bool
		l.After(20*time.Millisecond, func() { fired.Store(true) })
		l.Every(5*time.Millisecond, func() { fired.Store(true) })

		Convey("When it is closed", func() {
			l.Close()
			l.Close()
			time.Sleep(50 * time.Millisecond)

			Convey("Then nothing fires and new timers are inert", func() {
				So(fired.Load(), ShouldBeFalse)
				So(l.Pending(), ShouldEqual, 0)
				l.After(time.Millisecond, func() { fired.Store(true) })
				time.Sleep(10 * time.Millisecond)
				So(fired.Load(), ShouldBeFalse)
			})
		})
	})
}
