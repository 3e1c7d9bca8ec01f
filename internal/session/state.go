package session

import (
	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/geometry"
)

// The document is owned by the session; these wrappers serialize outside
// mutation (the HTTP layer) with the same mutex the pointer pipeline uses.

// UpdateImage applies a partial image update.
func (s *Session) UpdateImage(id string, patch document.ImagePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.UpdateImage(id, patch)
}

// UpdateText applies a partial text update.
func (s *Session) UpdateText(id string, patch document.TextPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.UpdateText(id, patch)
}

// UpdateDrawing applies a partial drawing update.
func (s *Session) UpdateDrawing(id string, patch document.DrawingPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.UpdateDrawing(id, patch)
}

// Select adds an object to the selection.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Select(id)
}

// SelectOnly makes an object the sole selection.
func (s *Session) SelectOnly(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.SelectOnly(id)
}

// Deselect removes an object from the selection.
func (s *Session) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Deselect(id)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.ClearSelection()
}

// KindOf reports the object kind for an ID.
func (s *Session) KindOf(id string) (document.Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.KindOf(id)
}

// ReorderToFront raises an object to the top of the layer order.
func (s *Session) ReorderToFront(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ReorderToFront(id)
}

// State is a point-in-time snapshot of the interactive session state.
type State struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Tool       Tool                    `json:"tool"`
	Transform  geometry.Transform      `json:"transform"`
	Brush      float64                 `json:"brush"`
	Generating bool                    `json:"generating"`
	Selection  []document.SelectionRef `json:"selection"`
}

// Snapshot returns the session state for API consumers.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:         s.id,
		Name:       s.name,
		Tool:       s.tools.active(),
		Transform:  s.view,
		Brush:      s.brush,
		Generating: s.generating,
		Selection:  s.doc.SelectionOrder(),
	}
}

// DocumentState is the serializable document contents.
type DocumentState struct {
	AspectRatio string                   `json:"aspectRatio"`
	Images      []document.ImageObject   `json:"images"`
	Texts       []document.TextObject    `json:"texts"`
	Drawings    []document.DrawingObject `json:"drawings"`
	LayerOrder  []string                 `json:"layerOrder"`
	Selection   []document.SelectionRef  `json:"selection"`
}

// DocumentSnapshot returns the document contents for API consumers.
func (s *Session) DocumentSnapshot() DocumentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DocumentState{
		AspectRatio: s.doc.AspectRatio,
		Images:      s.doc.Images(),
		Texts:       s.doc.Texts(),
		Drawings:    s.doc.Drawings(),
		LayerOrder:  s.doc.LayerOrder(),
		Selection:   s.doc.SelectionOrder(),
	}
}
