// Package session owns the interactive state of one open canvas: the
// document, the view transform, the active tool, and any in-progress
// pointer interaction. All mutation of the document flows through a
// Session, which serializes access with a single mutex so the HTTP layer
// can call in from concurrent requests.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/geometry"
)

// Default brush diameter in canvas units, within [MinBrush, MaxBrush].
const (
	MinBrush     = 5.0
	MaxBrush     = 100.0
	DefaultBrush = 20.0
)

// Default viewport used until the client reports its real size.
const (
	defaultViewportW = 1280.0
	defaultViewportH = 800.0
)

// Session is one open canvas. Zero value is not usable; construct with New.
type Session struct {
	mu sync.Mutex

	id      string
	name    string
	doc     *document.Document
	view    geometry.Transform
	vpW     float64
	vpH     float64
	tools   toolState
	brush   float64
	trash   *geometry.Rect
	pointer pointerState

	generating bool
	gen        Generator
	video      VideoGenerator

	logger    *slog.Logger
	createdAt time.Time
	touchedAt time.Time
}

// New creates a session around a fresh document.
func New(id string, gen Generator, video VideoGenerator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()
	return &Session{
		id:        id,
		name:      "Untitled",
		doc:       document.New(),
		view:      geometry.Identity(),
		vpW:       defaultViewportW,
		vpH:       defaultViewportH,
		tools:     toolState{steady: ToolSelect},
		brush:     DefaultBrush,
		gen:       gen,
		video:     video,
		logger:    logger.With("session", id),
		createdAt: now,
		touchedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Name returns the project name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName sets the project name.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.touchedAt = time.Now()
}

// Document returns the session's document. Callers must treat it as owned
// by the session: reads are safe between calls, writes go through Session
// methods.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Transform returns the current view transform.
func (s *Session) Transform() geometry.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetViewport records the client's screen size, used to center generated
// results in the visible area.
func (s *Session) SetViewport(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.vpW = width
	}
	if height > 0 {
		s.vpH = height
	}
}

// Pan shifts the view by a screen-space delta.
func (s *Session) Pan(delta geometry.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = geometry.PanBy(delta, s.view)
	s.touchedAt = time.Now()
}

// ZoomAt rescales the view anchored at a screen point.
func (s *Session) ZoomAt(anchor geometry.Point, factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = geometry.ZoomAt(anchor, factor, s.view)
	s.touchedAt = time.Now()
}

// SetAspectRatio changes the generation target aspect ratio.
func (s *Session) SetAspectRatio(name string) error {
	if !document.ValidAspectRatio(name) {
		return document.ErrUnknownAspectRatio
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.AspectRatio = name
	return nil
}

// SetBrushSlider maps a slider position in [0, 1] linearly onto the brush
// diameter range.
func (s *Session) SetBrushSlider(pos float64) {
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brush = MinBrush + pos*(MaxBrush-MinBrush)
}

// Brush returns the current brush diameter in canvas units.
func (s *Session) Brush() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brush
}

// SetTrashTarget registers the screen rectangle of the trash drop zone.
// A nil rect disables trash hit-testing.
func (s *Session) SetTrashTarget(r *geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trash = r
}

// Generating reports whether a generation is in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// TouchedAt returns the time of the last mutating call, for idle pruning.
func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// viewportCenterCanvas returns the canvas point under the viewport center.
// Caller holds s.mu.
func (s *Session) viewportCenterCanvas() geometry.Point {
	center := geometry.Point{X: s.vpW / 2, Y: s.vpH / 2}
	return geometry.ScreenToCanvas(center, s.view)
}
