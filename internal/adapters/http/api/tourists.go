package api

import (
	"net/http"
	"strings"
)

// TouristsHandler serves the police roster and tourist dashboard reads.
type TouristsHandler struct {
	deps TouristDependencies
}

// NewTouristsHandler creates a new tourists handler.
func NewTouristsHandler(deps TouristDependencies) *TouristsHandler {
	return &TouristsHandler{deps: deps}
}

// HandleRoster handles GET /tourists?q=term requests.
func (h *TouristsHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.roster"
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	tourists, err := h.deps.Roster(r.Context(), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tourists)
}

// HandleTourist handles GET /tourists/{id} requests.
func (h *TouristsHandler) HandleTourist(w http.ResponseWriter, r *http.Request) {
	const op = "api.tourist"
	t, err := h.deps.Tourist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleItinerary handles GET /tourists/{id}/itinerary requests.
func (h *TouristsHandler) HandleItinerary(w http.ResponseWriter, r *http.Request) {
	const op = "api.itinerary"
	stops, err := h.deps.Itinerary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stops)
}

// HandleLocation handles GET /tourists/{id}/location requests.
func (h *TouristsHandler) HandleLocation(w http.ResponseWriter, r *http.Request) {
	const op = "api.location"
	pos, err := h.deps.Position(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// HandleSafeZones handles GET /zones requests.
func (h *TouristsHandler) HandleSafeZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.SafeZones(r.Context()))
}
