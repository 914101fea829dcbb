package jitter

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/safetravel/internal/clock"
	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
)

func init() {
	_ = logger.Init()
}

var epoch = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

var tawang = model.PositionSample{Latitude: 27.5858, Longitude: 91.8656, Label: "Tawang Monastery"}

type sink struct {
	mu      sync.Mutex
	samples []model.PositionSample
}

func (k *sink) add(p model.PositionSample) {
	k.mu.Lock()
	k.samples = append(k.samples, p)
	k.mu.Unlock()
}

func (k *sink) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.samples)
}

func newSim(m *clock.Manual, k *sink) *Simulator {
	return New(m,
		WithMaxDrift(0.0005),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithPublisher(k.add),
	)
}

func TestSimulator_BoundedDrift(t *testing.T) {
	Convey("Given a running simulator", t, func() {
		m := clock.NewManual(epoch)
		k := &sink{}
		s := newSim(m, k)
		So(s.Begin(tawang, 5*time.Second), ShouldBeTrue)

		Convey("When 200 intervals pass", func() {
			m.Advance(200 * 5 * time.Second)

			Convey("Then each sample moves at most the drift bound from the previous one", func() {
				So(k.samples, ShouldHaveLength, 200)
				prev := tawang
				for i, p := range k.samples {
					So(math.Abs(p.Latitude-prev.Latitude), ShouldBeLessThanOrEqualTo, 0.0005)
					So(math.Abs(p.Longitude-prev.Longitude), ShouldBeLessThanOrEqualTo, 0.0005)
					So(p.Seq, ShouldEqual, uint64(i+1))
					So(p.Simulated, ShouldBeTrue)
					So(p.Label, ShouldEqual, "Tawang Monastery")
					prev = p
				}
			})

			Convey("Then Current is the last published sample", func() {
				So(s.Current(), ShouldResemble, k.samples[len(k.samples)-1])
			})
		})

		Convey("When less than one interval passes", func() {
			m.Advance(4999 * time.Millisecond)

			Convey("Then the initial fix is unchanged", func() {
				So(k.len(), ShouldEqual, 0)
				So(s.Current().Latitude, ShouldEqual, tawang.Latitude)
				So(s.Current().CapturedAt.Equal(epoch), ShouldBeTrue)
			})
		})
	})
}

func TestSimulator_End(t *testing.T) {
	Convey("Given a running simulator", t, func() {
		m := clock.NewManual(epoch)
		k := &sink{}
		s := newSim(m, k)
		So(s.Begin(tawang, 5*time.Second), ShouldBeTrue)
		m.Advance(15 * time.Second)

		Convey("When it is ended", func() {
			So(s.End(), ShouldBeTrue)
			last := s.Current()
			m.Advance(time.Minute)

			Convey("Then no further samples are produced", func() {
				So(k.len(), ShouldEqual, 3)
				So(s.Current(), ShouldResemble, last)
				So(s.Running(), ShouldBeFalse)
				So(m.Pending(), ShouldEqual, 0)
			})

			Convey("Then ending again is a no-op", func() {
				So(s.End(), ShouldBeFalse)
			})

			Convey("Then it can begin again from a new fix", func() {
				So(s.Begin(tawang, 5*time.Second), ShouldBeTrue)
				m.Advance(5 * time.Second)
				So(s.Current().Seq, ShouldEqual, 1)
			})
		})

		Convey("When Begin is called while running", func() {
			So(s.Begin(model.PositionSample{Latitude: 1, Longitude: 1}, time.Second), ShouldBeFalse)

			Convey("Then the running simulation is kept", func() {
				So(m.Pending(), ShouldEqual, 1)
				So(math.Abs(s.Current().Latitude-tawang.Latitude), ShouldBeLessThan, 0.01)
			})
		})
	})
}

func TestSimulator_Watch(t *testing.T) {
	Convey("Given a simulator bound to a context", t, func() {
		m := clock.NewManual(epoch)
		k := &sink{}
		s := newSim(m, k)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		release := s.Watch(ctx, tawang, 5*time.Second)
		m.Advance(5 * time.Second)
		So(k.len(), ShouldEqual, 1)

		Convey("When the context is cancelled", func() {
			cancel()
			So(waitFor(func() bool { return !s.Running() }), ShouldBeTrue)
			m.Advance(time.Minute)

			Convey("Then the simulation stops", func() {
				So(k.len(), ShouldEqual, 1)
				So(m.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When the context ends and a new run begins", func() {
			cancel()
			So(waitFor(func() bool { return !s.Running() }), ShouldBeTrue)
			So(s.Begin(tawang, 5*time.Second), ShouldBeTrue)
			release()

			Convey("Then the stale release leaves the new run alone", func() {
				So(s.Running(), ShouldBeTrue)
				m.Advance(5 * time.Second)
				So(k.len(), ShouldEqual, 2)
			})
		})

		Convey("When the simulator is restarted before release", func() {
			So(s.End(), ShouldBeTrue)
			So(s.Begin(tawang, 5*time.Second), ShouldBeTrue)
			release()
			cancel()
			m.Advance(5 * time.Second)

			Convey("Then neither the release nor the context stops it", func() {
				So(s.Running(), ShouldBeTrue)
				So(k.len(), ShouldEqual, 2)
			})
		})

		Convey("When released directly", func() {
			release()
			release()
			m.Advance(time.Minute)

			Convey("Then the simulation stops once", func() {
				So(k.len(), ShouldEqual, 1)
				So(s.Running(), ShouldBeFalse)
			})
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
