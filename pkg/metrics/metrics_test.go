package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("panic"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.holdsStarted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_panic_holds_started_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "safetravel")
				So(manager.subsystem, ShouldEqual, "demo")
				So(manager.histogramBuckets, ShouldResemble, latencyBuckets)
			})
		})
	})
}

func TestHoldMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		started := testutil.ToFloat64(globalManager.holdsStarted)
		committed := testutil.ToFloat64(globalManager.holdsCommitted)
		cancelled := testutil.ToFloat64(globalManager.holdsCancelled)
		active := testutil.ToFloat64(globalManager.holdsActive)

		Convey("When two holds start and one commits while the other is released", func() {
			RecordHoldStarted()
			RecordHoldStarted()
			RecordHoldCommitted(3000)
			RecordHoldCancelled(1500)

			Convey("Then the counters move and the active gauge returns", func() {
				So(testutil.ToFloat64(globalManager.holdsStarted), ShouldEqual, started+2)
				So(testutil.ToFloat64(globalManager.holdsCommitted), ShouldEqual, committed+1)
				So(testutil.ToFloat64(globalManager.holdsCancelled), ShouldEqual, cancelled+1)
				So(testutil.ToFloat64(globalManager.holdsActive), ShouldEqual, active)
			})
		})
	})
}

func TestAlertAndQueueMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		raised := testutil.ToFloat64(globalManager.alertsRaised)
		dispatched := testutil.ToFloat64(globalManager.alertsDispatched)
		dropped := testutil.ToFloat64(globalManager.alertsDropped)

		Convey("When alert events are recorded", func() {
			RecordAlertRaised()
			RecordAlertDispatched(42)
			RecordAlertDropped()
			UpdateAlertsStored(7)
			UpdateQueueCapacity(10)
			UpdateQueueSize(5)
			UpdateQueueUtilization(0.5)

			Convey("Then they are visible", func() {
				So(testutil.ToFloat64(globalManager.alertsRaised), ShouldEqual, raised+1)
				So(testutil.ToFloat64(globalManager.alertsDispatched), ShouldEqual, dispatched+1)
				So(testutil.ToFloat64(globalManager.alertsDropped), ShouldEqual, dropped+1)
				So(testutil.ToFloat64(globalManager.alertsStored), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.5)
			})
		})
	})
}

func TestHTTPMetrics(t *testing.T) {
	Convey("Given HTTP request metrics", t, func() {
		Convey("When a request and an error are recorded", func() {
			RecordHTTPRequest("tourists", "GET", "200")
			RecordHTTPRequestDuration("tourists", "GET", "200", 3)
			RecordErrorByEndpoint("panic", "POST", "not_found")

			Convey("Then the registry exposes them", func() {
				expected := `
# HELP safetravel_demo_errors_by_endpoint_total HTTP errors by endpoint, method and error type
# TYPE safetravel_demo_errors_by_endpoint_total counter
safetravel_demo_errors_by_endpoint_total{endpoint="panic",error_type="not_found",method="POST"} 1
`
				err := testutil.GatherAndCompare(GetRegistry(), strings.NewReader(expected),
					"safetravel_demo_errors_by_endpoint_total")
				So(err, ShouldBeNil)
				So(testutil.ToFloat64(globalManager.httpRequests.WithLabelValues("tourists", "GET", "200")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}
