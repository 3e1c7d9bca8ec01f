package api

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/promptboard/promptboard/internal/archive"
	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/generate"
	"github.com/promptboard/promptboard/internal/log"
	"github.com/promptboard/promptboard/internal/raster"
	"github.com/promptboard/promptboard/internal/session"
)

// writeJSON writes a JSON response with the given status code. Encoding
// failures after WriteHeader cannot reach the client; they are only logged.
func writeJSON(logger log.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// writeError writes a JSON error response.
func writeError(logger log.Logger, w http.ResponseWriter, status int, err string, message string) {
	writeJSON(logger, w, status, ErrorResponse{Error: err, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses: classified
// generation failures carry their kind and sanitized detail, document
// lookups map to 404, concurrent submissions to 409.
func writeDomainError(logger log.Logger, w http.ResponseWriter, err error) {
	var genErr *generate.GenerationError
	switch {
	case errors.As(err, &genErr):
		writeJSON(logger, w, statusForKind(genErr.Kind), ErrorResponse{
			Error:   "generation failed",
			Message: genErr.Message,
			Kind:    genErr.Kind.String(),
			Detail:  generate.SanitizeDetail(genErr.Detail),
		})
	case errors.Is(err, generate.ErrGenerationInFlight):
		writeError(logger, w, http.StatusConflict, "generation in flight", "a generation is already running for this session")
	case errors.Is(err, generate.ErrEmptyPrompt):
		writeError(logger, w, http.StatusBadRequest, "empty prompt", "provide a non-empty prompt")
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, document.ErrNotFound):
		writeError(logger, w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, raster.ErrNotDataURL),
		errors.Is(err, raster.ErrUnsupportedImage):
		writeError(logger, w, http.StatusBadRequest, "invalid payload", err.Error())
	case errors.Is(err, archive.ErrMissingProject),
		errors.Is(err, archive.ErrUnsupportedVersion),
		errors.Is(err, zip.ErrFormat):
		writeError(logger, w, http.StatusBadRequest, "invalid archive", err.Error())
	case errors.Is(err, document.ErrDuplicateID),
		errors.Is(err, document.ErrEmptyID),
		errors.Is(err, document.ErrUnknownAspectRatio),
		errors.Is(err, document.ErrLayerMismatch):
		writeError(logger, w, http.StatusBadRequest, "invalid request", err.Error())
	default:
		logger.Error("internal error", "error", err)
		writeError(logger, w, http.StatusInternalServerError, "internal error", "see server logs")
	}
}

// statusForKind maps a generation error kind to an HTTP status.
func statusForKind(kind generate.ErrorKind) int {
	switch kind {
	case generate.KindSafety:
		return http.StatusUnprocessableEntity
	case generate.KindClientPayload, generate.KindFormat:
		return http.StatusBadRequest
	case generate.KindCredential:
		return http.StatusUnauthorized
	case generate.KindQuota:
		return http.StatusTooManyRequests
	case generate.KindOverload:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
