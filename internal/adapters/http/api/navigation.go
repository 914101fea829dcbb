package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type navigateRequest struct {
	Screen string `json:"screen"`
}

func (n navigateRequest) validate() error {
	if strings.TrimSpace(n.Screen) == "" {
		return errors.New("missing screen")
	}
	return nil
}

// NavigationHandler serves the navigation surface.
type NavigationHandler struct {
	deps NavigationDependencies
}

// NewNavigationHandler creates a new navigation handler.
func NewNavigationHandler(deps NavigationDependencies) *NavigationHandler {
	return &NavigationHandler{deps: deps}
}

// HandleListScreens handles GET /screens requests.
func (h *NavigationHandler) HandleListScreens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Screens(r.Context()))
}

// HandleNavigate handles POST /navigate requests.
func (h *NavigationHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	const op = "api.navigate"
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	screen, err := h.deps.Navigate(r.Context(), req.Screen)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, screen)
}
