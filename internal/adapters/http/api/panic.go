package api

import (
	"net/http"

	"github.com/okian/safetravel/internal/domain/hold"
)

// panicResponse is the panic button state plus whether the call changed it.
type panicResponse struct {
	Changed bool `json:"changed"`
	hold.Snapshot
}

// PanicHandler drives the hold-to-confirm panic button.
type PanicHandler struct {
	deps PanicDependencies
}

// NewPanicHandler creates a new panic handler.
func NewPanicHandler(deps PanicDependencies) *PanicHandler {
	return &PanicHandler{deps: deps}
}

// HandleStatus handles GET /tourists/{id}/panic requests.
func (h *PanicHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.panic_status"
	snap, err := h.deps.PanicStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandlePress handles POST /tourists/{id}/panic/press requests. Pressing an
// already held or cooling-down button answers 200 with changed=false.
func (h *PanicHandler) HandlePress(w http.ResponseWriter, r *http.Request) {
	const op = "api.panic_press"
	snap, changed, err := h.deps.PressStart(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	status := http.StatusOK
	if changed {
		status = http.StatusAccepted
	}
	writeJSON(w, status, panicResponse{Changed: changed, Snapshot: snap})
}

// HandleRelease handles POST /tourists/{id}/panic/release requests.
func (h *PanicHandler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	const op = "api.panic_release"
	snap, changed, err := h.deps.PressEnd(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, panicResponse{Changed: changed, Snapshot: snap})
}
