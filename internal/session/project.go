package session

import (
	"time"

	"github.com/promptboard/promptboard/internal/archive"
	"github.com/promptboard/promptboard/internal/generate"
	"github.com/promptboard/promptboard/internal/geometry"
)

// ExportProject serializes the session's document into a project archive.
func (s *Session) ExportProject() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return archive.ExportBytes(s.doc, s.name, s.view)
}

// ImportProject replaces the session's document with a loaded archive.
// Failure leaves the current document, view, and name untouched; imports
// are rejected while a generation is running against the document.
func (s *Session) ImportProject(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generating {
		return generate.ErrGenerationInFlight
	}

	name, view, err := archive.ImportBytes(data, s.doc)
	if err != nil {
		return err
	}
	if view.Scale <= 0 {
		view = geometry.Identity()
	}
	s.name = name
	s.view = view
	s.pointer = pointerState{}
	s.touchedAt = time.Now()
	return nil
}
