package api

import (
	"net/http"
)

// AlertsHandler serves the alert feed for the police dashboard and the
// notification toasts for the tourist.
type AlertsHandler struct {
	deps     AlertDependencies
	maxLimit int
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertDependencies, maxLimit int) *AlertsHandler {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &AlertsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleListAlerts handles GET /alerts?limit=N requests.
func (h *AlertsHandler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_alerts"
	n, err := parseLimit(r, op, h.maxLimit)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	alerts, err := h.deps.Alerts(r.Context(), n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// HandleGetAlert handles GET /alerts/{id} requests.
func (h *AlertsHandler) HandleGetAlert(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_alert"
	a, err := h.deps.Alert(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleNotifications handles GET /notifications?limit=N requests.
func (h *AlertsHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	const op = "api.notifications"
	n, err := parseLimit(r, op, h.maxLimit)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	notes, err := h.deps.Notifications(r.Context(), n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}
