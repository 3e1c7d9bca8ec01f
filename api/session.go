package api

import (
	"encoding/json"
	"net/http"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/geometry"
	"github.com/promptboard/promptboard/internal/log"
	"github.com/promptboard/promptboard/internal/session"
)

// Input validation bounds.
const (
	MaxNameLength = 200
	MaxSrcLength  = 64 << 20 // data URLs for large images
)

// SessionHandler handles session lifecycle and interaction endpoints.
type SessionHandler struct {
	manager *session.Manager
	logger  log.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *session.Manager, logger log.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.create)
	mux.HandleFunc("GET /api/sessions", h.list)
	mux.HandleFunc("GET /api/sessions/{id}", h.get)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.delete)

	mux.HandleFunc("GET /api/sessions/{id}/document", h.document)
	mux.HandleFunc("POST /api/sessions/{id}/view", h.view)
	mux.HandleFunc("POST /api/sessions/{id}/tool", h.tool)
	mux.HandleFunc("POST /api/sessions/{id}/pointer", h.pointer)
	mux.HandleFunc("POST /api/sessions/{id}/images", h.importImage)
	mux.HandleFunc("POST /api/sessions/{id}/drawings", h.placeDrawing)
	mux.HandleFunc("PATCH /api/sessions/{id}/objects/{obj}", h.patchObject)
	mux.HandleFunc("POST /api/sessions/{id}/selection", h.selection)
	mux.HandleFunc("POST /api/sessions/{id}/aspect", h.aspect)
	mux.HandleFunc("POST /api/sessions/{id}/brush", h.brush)
}

// lookup resolves the {id} path value to a session, writing the error
// response itself on failure.
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(h.logger, w, err)
		return nil, false
	}
	return s, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger log.Logger, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(logger, w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// CreateSessionRequest is the request body for opening a session.
type CreateSessionRequest struct {
	Name string `json:"name"`
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength > 0 && !decodeBody(w, r, h.logger, &req) {
		return
	}
	if len(req.Name) > MaxNameLength {
		writeError(h.logger, w, http.StatusBadRequest, "invalid name", "name too long")
		return
	}

	s := h.manager.Create()
	if req.Name != "" {
		s.SetName(req.Name)
	}
	writeJSON(h.logger, w, http.StatusCreated, s.Snapshot())
}

func (h *SessionHandler) list(w http.ResponseWriter, _ *http.Request) {
	ids := h.manager.IDs()
	writeJSON(h.logger, w, http.StatusOK, map[string]any{
		"sessions": ids,
		"total":    len(ids),
	})
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(h.logger, w, http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.PathValue("id")); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) document(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(h.logger, w, http.StatusOK, s.DocumentSnapshot())
}

// ViewRequest drives pan, zoom, viewport, and trash-target updates.
type ViewRequest struct {
	Action string  `json:"action"` // "pan" | "zoom" | "viewport" | "trash"
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

func (h *SessionHandler) view(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req ViewRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	switch req.Action {
	case "pan":
		s.Pan(geometry.Point{X: req.DX, Y: req.DY})
	case "zoom":
		if req.Factor <= 0 {
			writeError(h.logger, w, http.StatusBadRequest, "invalid zoom", "factor must be positive")
			return
		}
		s.ZoomAt(geometry.Point{X: req.X, Y: req.Y}, req.Factor)
	case "viewport":
		s.SetViewport(req.Width, req.Height)
	case "trash":
		// A zero-size rect clears the drop target.
		if req.Width <= 0 || req.Height <= 0 {
			s.SetTrashTarget(nil)
		} else {
			s.SetTrashTarget(&geometry.Rect{
				X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
			})
		}
	default:
		writeError(h.logger, w, http.StatusBadRequest, "unknown action", req.Action)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]any{"transform": s.Transform()})
}

// ToolRequest switches tools, either directly or via keyboard shortcut.
type ToolRequest struct {
	Tool        string `json:"tool,omitempty"`
	Key         string `json:"key,omitempty"`
	InTextInput bool   `json:"inTextInput,omitempty"`
	Action      string `json:"action,omitempty"` // "holdPan" | "releasePan" | "deleteKey"
}

func (h *SessionHandler) tool(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req ToolRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	switch {
	case req.Action == "holdPan":
		s.HoldPan()
	case req.Action == "releasePan":
		s.ReleasePan()
	case req.Action == "deleteKey":
		removed := s.DeleteKey(req.InTextInput)
		writeJSON(h.logger, w, http.StatusOK, map[string]any{"removed": removed})
		return
	case req.Tool != "":
		if !s.SetTool(session.Tool(req.Tool)) {
			writeError(h.logger, w, http.StatusBadRequest, "unknown tool", req.Tool)
			return
		}
	case req.Key != "":
		s.HandleToolKey(req.Key, req.InTextInput)
	default:
		writeError(h.logger, w, http.StatusBadRequest, "invalid request", "tool, key, or action required")
		return
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]any{"tool": s.ActiveTool()})
}

// PointerRequest is one pointer protocol event in screen coordinates.
type PointerRequest struct {
	Phase    string  `json:"phase"` // "down" | "move" | "up"
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Additive bool    `json:"additive,omitempty"`
}

func (h *SessionHandler) pointer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req PointerRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	p := geometry.Point{X: req.X, Y: req.Y}
	switch req.Phase {
	case "down":
		s.PointerDown(p, session.PointerOptions{Additive: req.Additive})
	case "move":
		s.PointerMove(p)
	case "up":
		if err := s.PointerUp(p); err != nil {
			writeDomainError(h.logger, w, err)
			return
		}
	default:
		writeError(h.logger, w, http.StatusBadRequest, "unknown phase", req.Phase)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, s.Snapshot())
}

// ImportImageRequest uploads an image payload onto the canvas. When X and Y
// are both given the image is placed there; otherwise it is centered in the
// viewport.
type ImportImageRequest struct {
	Src            string   `json:"src"` // data URL
	Classification string   `json:"classification,omitempty"`
	Name           string   `json:"name,omitempty"`
	X              *float64 `json:"x,omitempty"`
	Y              *float64 `json:"y,omitempty"`
}

func (h *SessionHandler) importImage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req ImportImageRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if req.Src == "" || len(req.Src) > MaxSrcLength {
		writeError(h.logger, w, http.StatusBadRequest, "invalid src", "src must be a data URL within the size limit")
		return
	}
	if len(req.Name) > MaxNameLength {
		writeError(h.logger, w, http.StatusBadRequest, "invalid name", "name too long")
		return
	}

	var (
		id  string
		err error
	)
	if req.X != nil && req.Y != nil {
		id, err = s.ImportImageAt(req.Src, document.Classification(req.Classification), req.Name,
			geometry.Point{X: *req.X, Y: *req.Y})
	} else {
		id, err = s.ImportImage(req.Src, document.Classification(req.Classification), req.Name)
	}
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, map[string]string{"id": id})
}

// PlaceDrawingRequest places a blank drawing surface. Omitted dimensions
// size the surface from the session's aspect-ratio setting.
type PlaceDrawingRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (h *SessionHandler) placeDrawing(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req PlaceDrawingRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	id, err := s.PlaceDrawing(req.Width, req.Height)
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid drawing", err.Error())
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, map[string]string{"id": id})
}

// patchObject applies a partial update to any object kind. The body shape
// matches the object kind's patch type.
func (h *SessionHandler) patchObject(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	objID := r.PathValue("obj")
	kind, known := s.KindOf(objID)
	if !known {
		writeDomainError(h.logger, w, document.ErrNotFound)
		return
	}

	var err error
	switch kind {
	case document.KindImage:
		var patch document.ImagePatch
		if !decodeBody(w, r, h.logger, &patch) {
			return
		}
		err = s.UpdateImage(objID, patch)
	case document.KindText:
		var patch document.TextPatch
		if !decodeBody(w, r, h.logger, &patch) {
			return
		}
		err = s.UpdateText(objID, patch)
	case document.KindDrawing:
		var patch document.DrawingPatch
		if !decodeBody(w, r, h.logger, &patch) {
			return
		}
		err = s.UpdateDrawing(objID, patch)
	}
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectionRequest mutates the selection.
type SelectionRequest struct {
	Action string `json:"action"` // "select" | "selectOnly" | "deselect" | "clear" | "delete" | "front"
	ID     string `json:"id,omitempty"`
}

func (h *SessionHandler) selection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req SelectionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	var err error
	switch req.Action {
	case "select":
		err = s.Select(req.ID)
	case "selectOnly":
		err = s.SelectOnly(req.ID)
	case "deselect":
		s.Deselect(req.ID)
	case "clear":
		s.ClearSelection()
	case "delete":
		removed := s.DeleteKey(false)
		writeJSON(h.logger, w, http.StatusOK, map[string]any{"removed": removed})
		return
	case "front":
		err = s.ReorderToFront(req.ID)
	default:
		writeError(h.logger, w, http.StatusBadRequest, "unknown action", req.Action)
		return
	}
	if err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, s.Snapshot())
}

// AspectRequest sets the generation target aspect ratio.
type AspectRequest struct {
	AspectRatio string `json:"aspectRatio"`
}

func (h *SessionHandler) aspect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req AspectRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if err := s.SetAspectRatio(req.AspectRatio); err != nil {
		writeDomainError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BrushRequest sets the brush slider position in [0, 1].
type BrushRequest struct {
	Position float64 `json:"position"`
}

func (h *SessionHandler) brush(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req BrushRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	s.SetBrushSlider(req.Position)
	writeJSON(h.logger, w, http.StatusOK, map[string]float64{"brush": s.Brush()})
}
