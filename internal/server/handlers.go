package server

import (
	"encoding/json"
	"net/http"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/listener"
)

// StateReporter reports the current state of the database listener.
type StateReporter interface {
	State() listener.State
}

// Handler serves the operational endpoints.
type Handler struct {
	reporter StateReporter
}

func NewHandler(reporter StateReporter) *Handler {
	return &Handler{reporter: reporter}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// Ready reports 200 only while the listener holds an active LISTEN session.
// During reconnection or after a fatal failure it reports 503 so that
// orchestrators stop routing to a relay that cannot observe changes.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	state := h.reporter.State()

	w.Header().Set("Content-Type", "application/json")
	if state != listener.StateListening {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status":     "not ready",
			"connection": state.String(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"status":     "ready",
		"connection": state.String(),
	})
}
