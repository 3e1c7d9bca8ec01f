package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/promptboard/promptboard/internal/log"
	"github.com/promptboard/promptboard/internal/session"
)

// ProjectHandler handles project archive export and import.
type ProjectHandler struct {
	manager *session.Manager
	logger  log.Logger
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(manager *session.Manager, logger log.Logger) *ProjectHandler {
	return &ProjectHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers project routes on the given mux.
func (h *ProjectHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions/{id}/project", h.export)
	mux.HandleFunc("PUT /api/sessions/{id}/project", h.importArchive)
}

func (h *ProjectHandler) export(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}

	data, err := s.ExportProject()
	if err != nil {
		h.logger.Error("project export failed", "session", s.ID(), "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "export failed", err.Error())
		return
	}

	name := s.Name()
	if name == "" {
		name = "project"
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".zip"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write archive", "error", err)
	}
}

func (h *ProjectHandler) importArchive(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(data) == 0 {
		writeError(h.logger, w, http.StatusBadRequest, "invalid archive", "empty body")
		return
	}

	if err := s.ImportProject(data); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, s.Snapshot())
}
