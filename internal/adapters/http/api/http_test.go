package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/safetravel/internal/adapters/http/api"
	service "github.com/okian/safetravel/internal/app"
	"github.com/okian/safetravel/internal/domain/fixtures"
	"github.com/okian/safetravel/internal/domain/hold"
	"github.com/okian/safetravel/internal/domain/model"
)

// mockDependencies keeps one fake panic button per tourist.
type mockDependencies struct {
	mu       sync.Mutex
	started  bool
	holding  map[string]bool
	alerts   []model.Alert
	notes    []model.Notification
	lastList int
	screen   string
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{started: true, holding: make(map[string]bool)}
}

func (m *mockDependencies) check(id string) error {
	if !m.started {
		return service.ErrNotStarted
	}
	if _, ok := fixtures.Tourist(id); !ok {
		return fmt.Errorf("tourist %q: %w", id, service.ErrTouristNotFound)
	}
	return nil
}

func (m *mockDependencies) snapshot(id string) hold.Snapshot {
	if m.holding[id] {
		return hold.Snapshot{State: model.HoldHolding, SessionID: "session-" + id, RemainingSeconds: 3}
	}
	return hold.Snapshot{State: model.HoldIdle}
}

func (m *mockDependencies) Roster(_ context.Context, q string) ([]model.Tourist, error) {
	if !m.started {
		return nil, service.ErrNotStarted
	}
	return fixtures.Search(q), nil
}

func (m *mockDependencies) Tourist(_ context.Context, id string) (model.Tourist, error) {
	if err := m.check(id); err != nil {
		return model.Tourist{}, err
	}
	t, _ := fixtures.Tourist(id)
	return t, nil
}

func (m *mockDependencies) Itinerary(_ context.Context, id string) ([]model.ItineraryStop, error) {
	if err := m.check(id); err != nil {
		return nil, err
	}
	t, _ := fixtures.Tourist(id)
	return t.Itinerary, nil
}

func (m *mockDependencies) Position(_ context.Context, id string) (model.PositionSample, error) {
	if err := m.check(id); err != nil {
		return model.PositionSample{}, err
	}
	t, _ := fixtures.Tourist(id)
	return model.PositionSample{Latitude: t.Latitude, Longitude: t.Longitude, Label: t.CurrentLocation}, nil
}

func (m *mockDependencies) SafeZones(_ context.Context) []model.SafeZone {
	return fixtures.SafeZones()
}

func (m *mockDependencies) PressStart(_ context.Context, id string) (hold.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(id); err != nil {
		return hold.Snapshot{}, false, err
	}
	changed := !m.holding[id]
	m.holding[id] = true
	return m.snapshot(id), changed, nil
}

func (m *mockDependencies) PressEnd(_ context.Context, id string) (hold.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(id); err != nil {
		return hold.Snapshot{}, false, err
	}
	changed := m.holding[id]
	m.holding[id] = false
	return m.snapshot(id), changed, nil
}

func (m *mockDependencies) PanicStatus(_ context.Context, id string) (hold.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(id); err != nil {
		return hold.Snapshot{}, err
	}
	return m.snapshot(id), nil
}

func (m *mockDependencies) Alerts(_ context.Context, limit int) ([]model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = limit
	if limit < len(m.alerts) {
		return m.alerts[:limit], nil
	}
	return m.alerts, nil
}

func (m *mockDependencies) Alert(_ context.Context, id string) (model.Alert, error) {
	for _, a := range m.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Alert{}, fmt.Errorf("%w: %q", service.ErrAlertNotFound, id)
}

func (m *mockDependencies) Notifications(_ context.Context, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = limit
	return m.notes, nil
}

func (m *mockDependencies) Screens(_ context.Context) []model.Screen {
	return fixtures.Screens()
}

func (m *mockDependencies) Navigate(_ context.Context, id string) (model.Screen, error) {
	s, ok := fixtures.Screen(id)
	if !ok {
		return model.Screen{}, fmt.Errorf("screen %q: %w", id, service.ErrUnknownScreen)
	}
	m.screen = id
	return s, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMux(deps *mockDependencies) *http.ServeMux {
	stats := &mockStatsProvider{stats: map[string]interface{}{"started": true, "tourists": 4}}
	server := api.NewServer(deps, stats, api.WithMaxListLimit(50))
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDependencies())

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			stats := decode[map[string]any](w)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("Then the dashboard serves the embedded page", func() {
			w := serve(mux, http.MethodGet, "/dashboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `id="panic"`)
			So(w.Body.String(), ShouldContainSubstring, `id="roster"`)
		})

		Convey("Then unknown paths are not found", func() {
			So(serve(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are rejected", func() {
			So(serve(mux, http.MethodGet, "/tourists/1/panic/press", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestTouristsHandler(t *testing.T) {
	Convey("Given the tourist routes", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When searching the roster", func() {
			w := serve(mux, http.MethodGet, "/tourists?q=smith", "")

			Convey("Then matching tourists are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				tourists := decode[[]model.Tourist](w)
				So(tourists, ShouldHaveLength, 1)
				So(tourists[0].Name, ShouldEqual, "Alice Smith")
			})
		})

		Convey("When fetching a tourist", func() {
			w := serve(mux, http.MethodGet, "/tourists/1", "")

			Convey("Then the details are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				john := decode[model.Tourist](w)
				So(john.BlockchainID, ShouldEqual, "BC1234567890ABC")
				So(john.EmergencyContacts, ShouldHaveLength, 2)
			})
		})

		Convey("When fetching an unknown tourist", func() {
			w := serve(mux, http.MethodGet, "/tourists/99", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decode[errorBody](w)
				So(body.Code, ShouldEqual, "not_found")
				So(body.Message, ShouldContainSubstring, "api.tourist")
			})
		})

		Convey("Then itinerary, location and zones are served", func() {
			w := serve(mux, http.MethodGet, "/tourists/1/itinerary", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[[]model.ItineraryStop](w), ShouldHaveLength, 5)

			w = serve(mux, http.MethodGet, "/tourists/3/location", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.PositionSample](w).Label, ShouldEqual, "Bomdila View Point")

			w = serve(mux, http.MethodGet, "/zones", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[[]model.SafeZone](w), ShouldHaveLength, 3)
		})

		Convey("When the service is not running", func() {
			deps.started = false
			w := serve(mux, http.MethodGet, "/tourists", "")

			Convey("Then it reports unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decode[errorBody](w).Code, ShouldEqual, "unavailable")
			})
		})
	})
}

func TestPanicHandler(t *testing.T) {
	Convey("Given the panic routes", t, func() {
		mux := newMux(newMockDependencies())

		Convey("When the button is pressed", func() {
			w := serve(mux, http.MethodPost, "/tourists/2/panic/press", "")

			Convey("Then the hold is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				body := decode[map[string]any](w)
				So(body["changed"], ShouldEqual, true)
				So(body["state"], ShouldEqual, "holding")
				So(body["remaining_seconds"], ShouldEqual, 3.0)
			})

			Convey("And pressed again", func() {
				w := serve(mux, http.MethodPost, "/tourists/2/panic/press", "")

				Convey("Then nothing changes", func() {
					So(w.Code, ShouldEqual, http.StatusOK)
					So(decode[map[string]any](w)["changed"], ShouldEqual, false)
				})
			})

			Convey("And released", func() {
				w := serve(mux, http.MethodPost, "/tourists/2/panic/release", "")

				Convey("Then the hold is cancelled", func() {
					So(w.Code, ShouldEqual, http.StatusOK)
					body := decode[map[string]any](w)
					So(body["changed"], ShouldEqual, true)
					So(body["state"], ShouldEqual, "idle")
					status := serve(mux, http.MethodGet, "/tourists/2/panic", "")
					So(decode[map[string]any](status)["state"], ShouldEqual, "idle")
				})
			})
		})

		Convey("When an unknown tourist presses", func() {
			w := serve(mux, http.MethodPost, "/tourists/99/panic/press", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAlertsHandler(t *testing.T) {
	Convey("Given stored alerts and notifications", t, func() {
		deps := newMockDependencies()
		raised := time.Date(2024, 1, 15, 14, 0, 5, 0, time.UTC)
		deps.alerts = []model.Alert{
			{ID: "a2", TouristID: "2", TouristName: "Alice Smith", RaisedAt: raised.Add(time.Minute)},
			{ID: "a1", TouristID: "1", TouristName: "John Doe", RaisedAt: raised},
		}
		deps.notes = []model.Notification{{Title: "Emergency Alert Sent!", AlertID: "a2"}}
		mux := newMux(deps)

		Convey("Then the list uses the default limit", func() {
			w := serve(mux, http.MethodGet, "/alerts", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[[]model.Alert](w), ShouldHaveLength, 2)
			So(deps.lastList, ShouldEqual, 20)
		})

		Convey("Then an explicit limit is honoured", func() {
			w := serve(mux, http.MethodGet, "/alerts?limit=1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			alerts := decode[[]model.Alert](w)
			So(alerts, ShouldHaveLength, 1)
			So(alerts[0].ID, ShouldEqual, "a2")
		})

		Convey("Then invalid limits are rejected", func() {
			for _, q := range []string{"0", "-1", "abc"} {
				w := serve(mux, http.MethodGet, "/alerts?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "bad_request")
			}
			w := serve(mux, http.MethodGet, "/notifications?limit=51", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[errorBody](w).Code, ShouldEqual, "limit_exceeded")
		})

		Convey("Then single alerts are looked up", func() {
			w := serve(mux, http.MethodGet, "/alerts/a1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[model.Alert](w).TouristName, ShouldEqual, "John Doe")
			So(serve(mux, http.MethodGet, "/alerts/zzz", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then notifications are served", func() {
			w := serve(mux, http.MethodGet, "/notifications?limit=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[[]model.Notification](w)[0].Title, ShouldEqual, "Emergency Alert Sent!")
			So(deps.lastList, ShouldEqual, 5)
		})
	})
}

func TestNavigationHandler(t *testing.T) {
	Convey("Given the navigation routes", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("Then every screen is listed", func() {
			w := serve(mux, http.MethodGet, "/screens", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[[]model.Screen](w), ShouldHaveLength, 6)
		})

		Convey("When navigating to a known screen", func() {
			w := serve(mux, http.MethodPost, "/navigate", `{"screen":"tourist-dashboard"}`)

			Convey("Then the route path is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.Screen](w).Path, ShouldEqual, "/tourist/dashboard")
				So(deps.screen, ShouldEqual, "tourist-dashboard")
			})
		})

		Convey("Then bad navigation requests are rejected", func() {
			So(serve(mux, http.MethodPost, "/navigate", `{`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPost, "/navigate", `{"screen":" "}`).Code, ShouldEqual, http.StatusBadRequest)
			w := serve(mux, http.MethodPost, "/navigate", `{"screen":"admin"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[errorBody](w).Message, ShouldContainSubstring, "unknown screen")
		})
	})
}
