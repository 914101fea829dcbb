package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/safetravel/internal/app"
	"github.com/okian/safetravel/internal/clock"
	"github.com/okian/safetravel/internal/domain/model"
)

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func at(m *clock.Manual, ms int) {
	m.AdvanceTo(epoch.Add(time.Duration(ms) * time.Millisecond))
}

func alertCount(svc *service.Service) int {
	alerts, err := svc.Alerts(context.Background(), 0)
	if err != nil {
		return -1
	}
	return len(alerts)
}

func TestServiceIntegration_PanicTimeline(t *testing.T) {
	Convey("Given a service on virtual time with a 3s hold and 2s cool-down", t, func() {
		m := clock.NewManual(epoch)
		svc := newManualService(m, service.WithHoldTimings(3*time.Second, 100*time.Millisecond, 2*time.Second))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, changed, err := svc.PressStart(ctx, "2")
		So(err, ShouldBeNil)
		So(changed, ShouldBeTrue)

		Convey("When the button is released at 1500ms", func() {
			at(m, 1500)
			snap, changed, err := svc.PressEnd(ctx, "2")
			So(err, ShouldBeNil)

			Convey("Then no alert is raised and progress resets", func() {
				So(changed, ShouldBeTrue)
				So(snap.State, ShouldEqual, model.HoldIdle)
				So(snap.Progress, ShouldEqual, 0)
				at(m, 4500)
				So(alertCount(svc), ShouldEqual, 0)
			})

			Convey("And held again from 2000ms", func() {
				at(m, 2000)
				held, changed, err := svc.PressStart(ctx, "2")
				So(err, ShouldBeNil)
				So(changed, ShouldBeTrue)
				at(m, 5000)

				Convey("Then exactly one alert is dispatched for that hold", func() {
					So(eventually(func() bool { return alertCount(svc) == 1 }), ShouldBeTrue)
					alerts, err := svc.Alerts(ctx, 10)
					So(err, ShouldBeNil)
					a := alerts[0]
					So(a.TouristID, ShouldEqual, "2")
					So(a.TouristName, ShouldEqual, "Alice Smith")
					So(a.SessionID, ShouldEqual, held.SessionID)
					So(a.RaisedAt.Equal(epoch.Add(5*time.Second)), ShouldBeTrue)
					So(a.Position.Label, ShouldEqual, "Tawang Monastery")
					So(a.Unit, ShouldNotBeEmpty)

					got, err := svc.Alert(ctx, a.ID)
					So(err, ShouldBeNil)
					So(got.ID, ShouldEqual, a.ID)

					notes, err := svc.Notifications(ctx, 5)
					So(err, ShouldBeNil)
					So(notes, ShouldHaveLength, 1)
					So(notes[0].Title, ShouldEqual, "Emergency Alert Sent!")
					So(notes[0].AlertID, ShouldEqual, a.ID)
				})

				Convey("Then the tourist shows as on alert", func() {
					So(eventually(func() bool { return alertCount(svc) == 1 }), ShouldBeTrue)
					alice, err := svc.Tourist(ctx, "2")
					So(err, ShouldBeNil)
					So(alice.Status, ShouldEqual, model.StatusAlert)
					roster, err := svc.Roster(ctx, "")
					So(err, ShouldBeNil)
					So(roster[0].Name, ShouldEqual, "John Doe")
					So(roster[1].Name, ShouldEqual, "Alice Smith")
				})

				Convey("Then a press during the cool-down is ignored", func() {
					at(m, 6000)
					snap, changed, err := svc.PressStart(ctx, "2")
					So(err, ShouldBeNil)
					So(changed, ShouldBeFalse)
					So(snap.State, ShouldEqual, model.HoldCommitted)
					So(snap.SessionID, ShouldEqual, held.SessionID)
				})

				Convey("Then a press after the cool-down starts a new hold", func() {
					at(m, 7000)
					snap, changed, err := svc.PressStart(ctx, "2")
					So(err, ShouldBeNil)
					So(changed, ShouldBeTrue)
					So(snap.State, ShouldEqual, model.HoldHolding)
					So(snap.SessionID, ShouldNotEqual, held.SessionID)
				})
			})
		})
	})
}

func TestServiceIntegration_ManyTourists(t *testing.T) {
	Convey("Given every tourist pressing at once", t, func() {
		m := clock.NewManual(epoch)
		svc := newManualService(m)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		for _, id := range []string{"1", "2", "3", "4"} {
			_, changed, err := svc.PressStart(ctx, id)
			So(err, ShouldBeNil)
			So(changed, ShouldBeTrue)
		}

		Convey("When the holds complete", func() {
			m.Advance(3 * time.Second)

			Convey("Then one alert per tourist is dispatched", func() {
				So(eventually(func() bool { return alertCount(svc) == 4 }), ShouldBeTrue)
				stats := svc.GetStats()
				So(stats["alertsStored"], ShouldEqual, 4)
				So(stats["dedupeEntries"], ShouldEqual, int64(4))
				So(eventually(func() bool { return svc.GetStats()["notifications"] == 4 }), ShouldBeTrue)
			})
		})

		Convey("When the service stops mid-hold", func() {
			m.Advance(time.Second)
			svc.Stop()
			m.Advance(10 * time.Second)

			Convey("Then no timer is left behind and nothing fires", func() {
				So(m.Pending(), ShouldEqual, 0)
			})
		})
	})
}
