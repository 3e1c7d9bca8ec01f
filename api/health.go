package api

import (
	"net/http"

	"github.com/promptboard/promptboard/internal/log"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	creds  CredentialStore
	logger log.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(creds CredentialStore, logger log.Logger) *HealthHandler {
	return &HealthHandler{creds: creds, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness returns 200 OK if the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness returns 200 OK when the server can take generation traffic.
// The editor itself works without a credential, so a missing key degrades
// the response body, not the status.
func (h *HealthHandler) readiness(w http.ResponseWriter, _ *http.Request) {
	if h.creds != nil && h.creds.Configured() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready (no credential configured)"))
}
