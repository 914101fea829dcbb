// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/okian/safetravel/internal/domain/hold"
	"github.com/okian/safetravel/internal/domain/model"
)

const (
	defaultListLimit = 20
	defaultMaxLimit  = 100
)

// TouristDependencies serves roster, itinerary and location reads.
type TouristDependencies interface {
	Roster(ctx context.Context, query string) ([]model.Tourist, error)
	Tourist(ctx context.Context, touristID string) (model.Tourist, error)
	Itinerary(ctx context.Context, touristID string) ([]model.ItineraryStop, error)
	Position(ctx context.Context, touristID string) (model.PositionSample, error)
	SafeZones(ctx context.Context) []model.SafeZone
}

// PanicDependencies drives the per-tourist panic button.
type PanicDependencies interface {
	PressStart(ctx context.Context, touristID string) (hold.Snapshot, bool, error)
	PressEnd(ctx context.Context, touristID string) (hold.Snapshot, bool, error)
	PanicStatus(ctx context.Context, touristID string) (hold.Snapshot, error)
}

// AlertDependencies serves the police alert feed and tourist toasts.
type AlertDependencies interface {
	Alerts(ctx context.Context, limit int) ([]model.Alert, error)
	Alert(ctx context.Context, id string) (model.Alert, error)
	Notifications(ctx context.Context, limit int) ([]model.Notification, error)
}

// NavigationDependencies serves the front-end screens.
type NavigationDependencies interface {
	Screens(ctx context.Context) []model.Screen
	Navigate(ctx context.Context, screenID string) (model.Screen, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TouristDependencies
	PanicDependencies
	AlertDependencies
	NavigationDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	touristsHandler   *TouristsHandler
	panicHandler      *PanicHandler
	alertsHandler     *AlertsHandler
	navigationHandler *NavigationHandler
	dashboardHandler  *dashboardHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxLimit int
}

// WithMaxListLimit caps the limit accepted by list endpoints.
func WithMaxListLimit(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		touristsHandler:   NewTouristsHandler(deps),
		panicHandler:      NewPanicHandler(deps),
		alertsHandler:     NewAlertsHandler(deps, cfg.maxLimit),
		navigationHandler: NewNavigationHandler(deps),
		dashboardHandler:  newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /screens", MetricsMiddleware(s.navigationHandler.HandleListScreens, "screens"))
	mux.HandleFunc("POST /navigate", MetricsMiddleware(s.navigationHandler.HandleNavigate, "navigate"))
	mux.HandleFunc("GET /zones", MetricsMiddleware(s.touristsHandler.HandleSafeZones, "zones"))

	mux.HandleFunc("GET /tourists", MetricsMiddleware(s.touristsHandler.HandleRoster, "tourists"))
	mux.HandleFunc("GET /tourists/{id}", MetricsMiddleware(s.touristsHandler.HandleTourist, "tourist"))
	mux.HandleFunc("GET /tourists/{id}/itinerary", MetricsMiddleware(s.touristsHandler.HandleItinerary, "itinerary"))
	mux.HandleFunc("GET /tourists/{id}/location", MetricsMiddleware(s.touristsHandler.HandleLocation, "location"))

	mux.HandleFunc("GET /tourists/{id}/panic", MetricsMiddleware(s.panicHandler.HandleStatus, "panic"))
	mux.HandleFunc("POST /tourists/{id}/panic/press", MetricsMiddleware(s.panicHandler.HandlePress, "panic_press"))
	mux.HandleFunc("POST /tourists/{id}/panic/release", MetricsMiddleware(s.panicHandler.HandleRelease, "panic_release"))

	mux.HandleFunc("GET /alerts", MetricsMiddleware(s.alertsHandler.HandleListAlerts, "alerts"))
	mux.HandleFunc("GET /alerts/{id}", MetricsMiddleware(s.alertsHandler.HandleGetAlert, "alert"))
	mux.HandleFunc("GET /notifications", MetricsMiddleware(s.alertsHandler.HandleNotifications, "notifications"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

// parseLimit reads ?limit=N. A missing value yields the default; values
// below 1 or above maxLimit are rejected.
func parseLimit(r *http.Request, op string, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return min(defaultListLimit, maxLimit), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, NewKind(op, ErrBadRequest)
	}
	if n > maxLimit {
		return 0, WrapKind(op, ErrBadRequest, errLimitExceeded)
	}
	return n, nil
}
