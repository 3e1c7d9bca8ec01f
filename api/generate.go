package api

import (
	"context"
	"net/http"

	"github.com/promptboard/promptboard/internal/generate"
	"github.com/promptboard/promptboard/internal/log"
	"github.com/promptboard/promptboard/internal/session"
)

// MaxPromptLength bounds user prompts before template expansion.
const MaxPromptLength = 8192

// CredentialStore manages the API credential at runtime. Configured reports
// whether a working credential is installed; Set validates a key against the
// upstream service before persisting it.
type CredentialStore interface {
	Configured() bool
	Set(ctx context.Context, key string) error
}

// GenerateHandler handles generation, video, and credential endpoints.
type GenerateHandler struct {
	manager *session.Manager
	creds   CredentialStore
	logger  log.Logger
}

// NewGenerateHandler creates a new generation handler.
func NewGenerateHandler(manager *session.Manager, creds CredentialStore, logger log.Logger) *GenerateHandler {
	return &GenerateHandler{manager: manager, creds: creds, logger: logger}
}

// RegisterRoutes registers generation routes on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/key", h.keyStatus)
	mux.HandleFunc("PUT /api/key", h.setKey)
	mux.HandleFunc("POST /api/sessions/{id}/generate", h.generate)
	mux.HandleFunc("POST /api/sessions/{id}/video", h.video)
}

// KeyStatusResponse reports whether a credential is installed. The key
// itself is never returned.
type KeyStatusResponse struct {
	Configured bool `json:"configured"`
}

func (h *GenerateHandler) keyStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, KeyStatusResponse{Configured: h.creds.Configured()})
}

// SetKeyRequest installs a new API credential.
type SetKeyRequest struct {
	Key string `json:"key"`
}

func (h *GenerateHandler) setKey(w http.ResponseWriter, r *http.Request) {
	var req SetKeyRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.Key == "" {
		writeError(h.logger, w, http.StatusBadRequest, "invalid key", "key must not be empty")
		return
	}

	if err := h.creds.Set(r.Context(), req.Key); err != nil {
		kind := generate.Classify(err)
		h.logger.Warn("credential rejected", "kind", kind.String())
		writeError(h.logger, w, statusForKind(kind), "credential rejected", generate.SanitizeDetail(err.Error()))
		return
	}
	writeJSON(h.logger, w, http.StatusOK, KeyStatusResponse{Configured: true})
}

// GenerateRequest runs a generation against the current document state.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"` // "flash" (default) | "pro"
}

// GenerateResponse reports the applied generation and the resulting
// session state.
type GenerateResponse struct {
	Path     string        `json:"path"`
	Model    string        `json:"model"`
	Attempts int           `json:"attempts"`
	Session  session.State `json:"session"`
}

func (h *GenerateHandler) generate(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	var req GenerateRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if len(req.Prompt) > MaxPromptLength {
		writeError(h.logger, w, http.StatusBadRequest, "invalid prompt", "prompt too long")
		return
	}

	choice := generate.ModelFlash
	switch req.Model {
	case "", string(generate.ModelFlash):
	case string(generate.ModelPro):
		choice = generate.ModelPro
	default:
		writeError(h.logger, w, http.StatusBadRequest, "unknown model", req.Model)
		return
	}

	outcome, err := s.Generate(r.Context(), req.Prompt, choice)
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, GenerateResponse{
		Path:     string(outcome.Path),
		Model:    outcome.Model,
		Attempts: outcome.Attempts,
		Session:  s.Snapshot(),
	})
}

// VideoRequest animates an existing image object.
type VideoRequest struct {
	ImageID string `json:"imageId"`
	Prompt  string `json:"prompt"`
}

func (h *GenerateHandler) video(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	var req VideoRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.ImageID == "" {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request", "imageId required")
		return
	}
	if len(req.Prompt) > MaxPromptLength {
		writeError(h.logger, w, http.StatusBadRequest, "invalid prompt", "prompt too long")
		return
	}

	if err := s.GenerateVideo(r.Context(), req.ImageID, req.Prompt); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
