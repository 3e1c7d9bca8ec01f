package session

import (
	"log/slog"
	"math"
	"testing"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/geometry"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return New("test", nil, nil, slog.New(slog.DiscardHandler))
}

func addImageAt(t *testing.T, s *Session, x, y, w, h float64) string {
	t.Helper()
	obj := document.ImageObject{
		ID: document.NewID(), X: x, Y: y, Width: w, Height: h,
	}
	if err := s.Document().AddImage(obj); err != nil {
		t.Fatalf("add image: %v", err)
	}
	return obj.ID
}

func TestToolState_TransientPan(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SetTool(ToolPen)

	s.HoldPan()
	if got := s.ActiveTool(); got != ToolPan {
		t.Errorf("active tool during hold = %v, want pan", got)
	}
	s.ReleasePan()
	if got := s.ActiveTool(); got != ToolPen {
		t.Errorf("active tool after release = %v, want pen", got)
	}
}

func TestHandleToolKey(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	if !s.HandleToolKey("p", false) || s.ActiveTool() != ToolPen {
		t.Error("p should switch to pen")
	}
	if s.HandleToolKey("e", true) {
		t.Error("shortcuts must be ignored inside text inputs")
	}
	if s.ActiveTool() != ToolPen {
		t.Error("tool changed despite text input focus")
	}
	if s.HandleToolKey("x", false) {
		t.Error("unknown key accepted")
	}
}

func TestDrag_MovesSelectedByCanvasDelta(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id := addImageAt(t, s, 100, 100, 50, 50)

	// Zoom to 2x so the screen delta is halved in canvas units.
	s.ZoomAt(geometry.Point{}, 2)

	down := geometry.CanvasToScreen(geometry.Point{X: 110, Y: 110}, s.Transform())
	s.PointerDown(down, PointerOptions{})
	s.PointerMove(geometry.Point{X: down.X + 40, Y: down.Y + 20})
	if err := s.PointerUp(geometry.Point{X: down.X + 40, Y: down.Y + 20}); err != nil {
		t.Fatalf("pointer up: %v", err)
	}

	obj, _ := s.Document().Image(id)
	if math.Abs(obj.X-120) > 1e-9 || math.Abs(obj.Y-110) > 1e-9 {
		t.Errorf("object at (%g, %g), want (120, 110)", obj.X, obj.Y)
	}
	if !s.Document().IsSelected(id) {
		t.Error("dragged object should be selected")
	}
}

func TestResize_CornerPreservesAspect(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id := addImageAt(t, s, 0, 0, 100, 50)
	if err := s.Document().SelectOnly(id); err != nil {
		t.Fatal(err)
	}

	// Grab the south-east corner and pull it 50 to the right.
	s.PointerDown(geometry.Point{X: 100, Y: 50}, PointerOptions{})
	s.PointerMove(geometry.Point{X: 150, Y: 50})
	if err := s.PointerUp(geometry.Point{X: 150, Y: 50}); err != nil {
		t.Fatal(err)
	}

	obj, _ := s.Document().Image(id)
	if obj.Width != 150 {
		t.Errorf("width = %g, want 150", obj.Width)
	}
	if obj.Height != 75 {
		t.Errorf("height = %g, want 75 (aspect preserved)", obj.Height)
	}
}

func TestResize_EdgeSingleDimension(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id := addImageAt(t, s, 0, 0, 100, 50)
	if err := s.Document().SelectOnly(id); err != nil {
		t.Fatal(err)
	}

	// East edge midpoint, drag right.
	s.PointerDown(geometry.Point{X: 100, Y: 25}, PointerOptions{})
	s.PointerMove(geometry.Point{X: 130, Y: 25})
	if err := s.PointerUp(geometry.Point{X: 130, Y: 25}); err != nil {
		t.Fatal(err)
	}

	obj, _ := s.Document().Image(id)
	if obj.Width != 130 || obj.Height != 50 {
		t.Errorf("rect = %gx%g, want 130x50", obj.Width, obj.Height)
	}
}

func TestResize_FloorClampsOriginOnWestHandle(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id := addImageAt(t, s, 100, 0, 100, 100)
	if err := s.Document().SelectOnly(id); err != nil {
		t.Fatal(err)
	}

	// Drag the west edge far past the right edge. Width floors at the
	// minimum and the right edge at x=200 must not move.
	s.PointerDown(geometry.Point{X: 100, Y: 50}, PointerOptions{})
	s.PointerMove(geometry.Point{X: 400, Y: 50})
	if err := s.PointerUp(geometry.Point{X: 400, Y: 50}); err != nil {
		t.Fatal(err)
	}

	obj, _ := s.Document().Image(id)
	if obj.Width != MinObjectSize {
		t.Errorf("width = %g, want floor %g", obj.Width, MinObjectSize)
	}
	if got := obj.X + obj.Width; got != 200 {
		t.Errorf("right edge = %g, want 200 fixed", got)
	}
}

func TestMarquee_SelectsByOverlap(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	a := addImageAt(t, s, 0, 0, 50, 50)
	b := addImageAt(t, s, 200, 0, 50, 50)
	c := addImageAt(t, s, 40, 40, 50, 50) // overlaps the marquee only partially

	// Start on empty canvas so the gesture is a marquee, not a drag.
	s.PointerDown(geometry.Point{X: -20, Y: -20}, PointerOptions{})
	s.PointerMove(geometry.Point{X: 60, Y: 60})
	if err := s.PointerUp(geometry.Point{X: 60, Y: 60}); err != nil {
		t.Fatal(err)
	}

	doc := s.Document()
	if !doc.IsSelected(a) || !doc.IsSelected(c) {
		t.Error("overlapping objects should be selected, containment is not required")
	}
	if doc.IsSelected(b) {
		t.Error("object outside the marquee selected")
	}
}

func TestBackgroundClickWithPenResetsToPan(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SetTool(ToolPen)

	s.PointerDown(geometry.Point{X: 500, Y: 500}, PointerOptions{})
	if got := s.ActiveTool(); got != ToolPan {
		t.Errorf("tool = %v, want pan after background click with pen", got)
	}
}

func TestTextTool_PlacesAndResetsToSelect(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SetTool(ToolText)

	s.PointerDown(geometry.Point{X: 300, Y: 200}, PointerOptions{})

	texts := s.Document().Texts()
	if len(texts) != 1 {
		t.Fatalf("texts = %d, want 1", len(texts))
	}
	if got := s.ActiveTool(); got != ToolSelect {
		t.Errorf("tool = %v, want select after placement", got)
	}
	if !s.Document().IsSelected(texts[0].ID) {
		t.Error("placed text should be selected")
	}
}

func TestDeleteKey(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id := addImageAt(t, s, 0, 0, 50, 50)
	if err := s.Document().SelectOnly(id); err != nil {
		t.Fatal(err)
	}

	if got := s.DeleteKey(true); got != nil {
		t.Error("delete must be ignored inside text inputs")
	}
	removed := s.DeleteKey(false)
	if len(removed) != 1 || removed[0] != id {
		t.Fatalf("removed = %v, want [%s]", removed, id)
	}
	if _, ok := s.Document().Image(id); ok {
		t.Error("object still live after delete")
	}
}

func TestDragToTrashDeletes(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id := addImageAt(t, s, 0, 0, 50, 50)
	s.SetTrashTarget(&geometry.Rect{X: 900, Y: 700, Width: 100, Height: 100})

	s.PointerDown(geometry.Point{X: 25, Y: 25}, PointerOptions{})
	s.PointerMove(geometry.Point{X: 950, Y: 750})
	if err := s.PointerUp(geometry.Point{X: 950, Y: 750}); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Document().Image(id); ok {
		t.Error("object survived a drop on the trash target")
	}
}

func TestSetBrushSlider_LinearMapping(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	tests := []struct {
		pos  float64
		want float64
	}{
		{0, MinBrush},
		{1, MaxBrush},
		{0.5, (MinBrush + MaxBrush) / 2},
		{-1, MinBrush},
		{2, MaxBrush},
	}
	for _, tt := range tests {
		s.SetBrushSlider(tt.pos)
		if got := s.Brush(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("brush(%g) = %g, want %g", tt.pos, got, tt.want)
		}
	}
}

func TestSetAspectRatio(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if err := s.SetAspectRatio("16:9"); err != nil {
		t.Fatalf("SetAspectRatio: %v", err)
	}
	if got := s.Document().AspectRatio; got != "16:9" {
		t.Errorf("aspect = %q, want 16:9", got)
	}
	if err := s.SetAspectRatio("2:1"); err == nil {
		t.Error("unknown aspect ratio accepted")
	}
}

func TestPlaceDrawing_DefaultSizeFollowsAspectRatio(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if err := s.SetAspectRatio("16:9"); err != nil {
		t.Fatalf("SetAspectRatio: %v", err)
	}

	id, err := s.PlaceDrawing(0, 0)
	if err != nil {
		t.Fatalf("place drawing: %v", err)
	}
	obj, ok := s.Document().Drawing(id)
	if !ok {
		t.Fatal("drawing not found")
	}
	if obj.Width != 512 {
		t.Errorf("width = %g, want 512", obj.Width)
	}
	if want := 512 * 9.0 / 16.0; obj.Height != want {
		t.Errorf("height = %g, want %g", obj.Height, want)
	}
}

func TestStroke_CommitsToDrawingSurface(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id, err := s.PlaceDrawing(100, 100)
	if err != nil {
		t.Fatalf("place drawing: %v", err)
	}
	before, _ := s.Document().Drawing(id)

	s.SetTool(ToolPen)
	obj, _ := s.Document().Drawing(id)
	start := geometry.Point{X: obj.X + 20, Y: obj.Y + 20}

	s.PointerDown(start, PointerOptions{})
	s.PointerMove(geometry.Point{X: start.X + 30, Y: start.Y})
	if err := s.PointerUp(geometry.Point{X: start.X + 30, Y: start.Y}); err != nil {
		t.Fatalf("stroke commit: %v", err)
	}

	after, _ := s.Document().Drawing(id)
	if after.DrawingSrc == before.DrawingSrc {
		t.Error("drawing surface unchanged after a pen stroke")
	}
}

func TestStroke_IgnoredOnUnselectedTarget(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	id, err := s.PlaceDrawing(100, 100)
	if err != nil {
		t.Fatal(err)
	}
	s.Document().ClearSelection()
	before, _ := s.Document().Drawing(id)

	s.SetTool(ToolPen)
	obj, _ := s.Document().Drawing(id)
	s.PointerDown(geometry.Point{X: obj.X + 10, Y: obj.Y + 10}, PointerOptions{})
	s.PointerMove(geometry.Point{X: obj.X + 40, Y: obj.Y + 10})
	if err := s.PointerUp(geometry.Point{X: obj.X + 40, Y: obj.Y + 10}); err != nil {
		t.Fatal(err)
	}

	after, _ := s.Document().Drawing(id)
	if after.DrawingSrc != before.DrawingSrc {
		t.Error("paint landed on an unselected target")
	}
}
