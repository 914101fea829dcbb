package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/safetravel/internal/app"
	"github.com/okian/safetravel/internal/config"
	"github.com/okian/safetravel/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func setEnv(kv map[string]string) func() {
	for k, v := range kv {
		_ = os.Setenv(k, v)
	}
	return func() {
		for k := range kv {
			_ = os.Unsetenv(k)
		}
	}
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given SAFETRAVEL_ environment variables", t, func() {
		restore := setEnv(map[string]string{
			"SAFETRAVEL_ADDR":             ":8080",
			"SAFETRAVEL_ALERT_QUEUE_SIZE": "64",
			"SAFETRAVEL_WORKER_COUNT":     "2",
			"SAFETRAVEL_HOLD_DURATION_MS": "1500",
		})
		defer restore()

		convey.Convey("When configuration is loaded", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then env values override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AlertQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.HoldDuration(), convey.ShouldEqual, 1500*time.Millisecond)
			})

			convey.Convey("And the service reflects them", func() {
				svc := newService(cfg, logger.Get())
				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldBeFalse)
				convey.So(stats["workerCount"], convey.ShouldEqual, 2)
				convey.So(stats["queueSize"], convey.ShouldEqual, 64)
			})
		})
	})

	convey.Convey("Given an invalid environment", t, func() {
		restore := setEnv(map[string]string{"SAFETRAVEL_ADDR": ""})
		defer restore()

		convey.Convey("Then loading fails", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestMainRoutes(t *testing.T) {
	convey.Convey("Given a started service behind the full mux", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, cfg, svc)

		get := func(path string) int {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w.Code
		}

		convey.Convey("Then docs and API routes are both served", func() {
			convey.So(get("/api-docs"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/tourists"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/tourists/1/panic"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/tourists/nobody"), convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMainMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc := app.New()

		convey.Convey("Then one-shot updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loops return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, svc)
				close(done)
			}()
			returned := false
			select {
			case <-done:
				returned = true
			case <-time.After(time.Second):
			}
			convey.So(returned, convey.ShouldBeTrue)
		})
	})
}
