package session

import (
	"fmt"
	"image/color"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/geometry"
	"github.com/promptboard/promptboard/internal/raster"
)

// MinObjectSize is the floor for resize, in canvas units.
const MinObjectSize = 20.0

// Handle identifies one of the eight resize handles.
type Handle string

const (
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
	HandleNW Handle = "nw"
)

// handleHitRadius is the pick radius around a handle, in screen pixels.
const handleHitRadius = 8.0

var (
	maskInk = color.NRGBA{R: 255, G: 0, B: 200, A: 160}
	penInk  = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
)

type pointerMode int

const (
	modeIdle pointerMode = iota
	modePanning
	modeDragging
	modeResizing
	modeMarquee
	modeStroking
)

type strokeTarget struct {
	kind   document.Kind
	id     string
	bufW   int
	bufH   int
	origin geometry.Point // canvas-space top-left of the target
	factor float64        // buffer px per canvas unit
}

type pointerState struct {
	mode pointerMode

	lastScreen geometry.Point

	startCanvas geometry.Point
	dragInitial map[string]geometry.Rect
	overTrash   bool

	resizeID    string
	resizeKind  document.Kind
	handle      Handle
	initialRect geometry.Rect

	marqueeEnd geometry.Point
	additive   bool

	stroke       strokeTarget
	strokePoints []geometry.Point
	strokeWidth  float64
	strokeErase  bool
}

// PointerOptions carries per-gesture modifiers.
type PointerOptions struct {
	// Additive extends the current selection instead of replacing it
	// (shift-click, shift-marquee).
	Additive bool
}

// PointerDown starts a pointer interaction at a screen point. The routing
// depends on the active tool and what the point hits.
func (s *Session) PointerDown(screen geometry.Point, opts PointerOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Tool interactions are frozen while a generation is in flight.
	if s.generating {
		return
	}

	canvas := geometry.ScreenToCanvas(screen, s.view)

	switch s.tools.active() {
	case ToolPan:
		s.pointer = pointerState{mode: modePanning, lastScreen: screen}

	case ToolSelect:
		s.selectDown(screen, canvas, opts)

	case ToolPen, ToolEraser:
		s.strokeDown(canvas, s.tools.active() == ToolEraser)

	case ToolText:
		s.textDown(canvas)
	}
}

// PointerMove advances the current interaction.
func (s *Session) PointerMove(screen geometry.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas := geometry.ScreenToCanvas(screen, s.view)

	switch s.pointer.mode {
	case modePanning:
		delta := screen.Sub(s.pointer.lastScreen)
		s.view = geometry.PanBy(delta, s.view)
		s.pointer.lastScreen = screen

	case modeDragging:
		delta := canvas.Sub(s.pointer.startCanvas)
		for id, initial := range s.pointer.dragInitial {
			s.moveObject(id, initial.X+delta.X, initial.Y+delta.Y)
		}
		s.pointer.overTrash = s.trash != nil && s.trash.Contains(screen)

	case modeResizing:
		s.applyResize(canvas)

	case modeMarquee:
		s.pointer.marqueeEnd = canvas

	case modeStroking:
		s.pointer.strokePoints = append(s.pointer.strokePoints, s.toBuffer(canvas))
	}
}

// PointerUp commits the current interaction. Stroke commits can fail on a
// corrupt raster buffer; every other interaction ends cleanly.
func (s *Session) PointerUp(screen geometry.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.pointer
	s.pointer = pointerState{}

	switch state.mode {
	case modeDragging:
		if state.overTrash {
			s.doc.DeleteSelected()
		}
		return nil

	case modeMarquee:
		s.commitMarquee(state)
		return nil

	case modeStroking:
		return s.commitStroke(state)
	}
	return nil
}

// Marquee returns the in-progress marquee rectangle in canvas space, if one
// is active.
func (s *Session) Marquee() (geometry.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pointer.mode != modeMarquee {
		return geometry.Rect{}, false
	}
	start, end := s.pointer.startCanvas, s.pointer.marqueeEnd
	r := geometry.Rect{X: start.X, Y: start.Y, Width: end.X - start.X, Height: end.Y - start.Y}
	return r.Normalized(), true
}

func (s *Session) selectDown(screen, canvas geometry.Point, opts PointerOptions) {
	// Handles take priority over object bodies and are only live when a
	// single object is selected.
	if s.doc.SelectionCount() == 1 {
		if kind, id, handle, ok := s.handleAt(screen); ok {
			rect, _ := s.rectOf(kind, id)
			s.pointer = pointerState{
				mode:        modeResizing,
				startCanvas: canvas,
				resizeID:    id,
				resizeKind:  kind,
				handle:      handle,
				initialRect: rect,
			}
			return
		}
	}

	if _, id, ok := s.topmostAt(canvas); ok {
		if !s.doc.IsSelected(id) {
			if opts.Additive {
				_ = s.doc.Select(id)
			} else {
				_ = s.doc.SelectOnly(id)
			}
		}
		initial := make(map[string]geometry.Rect)
		for _, ref := range s.doc.SelectionOrder() {
			if r, ok := s.rectOf(ref.Kind, ref.ID); ok {
				initial[ref.ID] = r
			}
		}
		s.pointer = pointerState{
			mode:        modeDragging,
			startCanvas: canvas,
			dragInitial: initial,
		}
		return
	}

	// Background: marquee.
	if !opts.Additive {
		s.doc.ClearSelection()
	}
	s.pointer = pointerState{
		mode:        modeMarquee,
		startCanvas: canvas,
		marqueeEnd:  canvas,
		additive:    opts.Additive,
	}
}

func (s *Session) strokeDown(canvas geometry.Point, erase bool) {
	kind, id, ok := s.topmostAt(canvas)
	if !ok {
		// Clicking empty canvas with a drawing tool drops back to pan.
		s.tools.steady = ToolPan
		s.pointer = pointerState{}
		return
	}
	// Paint only lands on an already-selected target.
	if !s.doc.IsSelected(id) {
		return
	}

	target, ok := s.strokeTargetFor(kind, id)
	if !ok {
		return
	}
	s.pointer = pointerState{
		mode:         modeStroking,
		stroke:       target,
		strokeWidth:  s.brush * target.factor,
		strokeErase:  erase,
		strokePoints: []geometry.Point{s.bufferPoint(target, canvas)},
	}
}

func (s *Session) textDown(canvas geometry.Point) {
	obj := document.TextObject{
		ID:     document.NewID(),
		X:      canvas.X,
		Y:      canvas.Y,
		Width:  200,
		Height: 48,
	}
	if err := s.doc.AddText(obj); err != nil {
		s.logger.Warn("text placement failed", "error", err)
		return
	}
	_ = s.doc.SelectOnly(obj.ID)
	s.resetToSelect()
	s.pointer = pointerState{}
}

// defaultDrawingSide is the longer side of a drawing surface created
// without explicit dimensions.
const defaultDrawingSide = 512.0

// PlaceDrawing adds a blank drawing surface centered on the viewport and
// selects it. Nonpositive dimensions size the surface from the current
// aspect-ratio setting. The active tool resets to select, same as text
// placement.
func (s *Session) PlaceDrawing(width, height float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width <= 0 || height <= 0 {
		ratio, ok := document.AspectRatioValue(s.doc.AspectRatio)
		if !ok {
			ratio = 1
		}
		if ratio >= 1 {
			width, height = defaultDrawingSide, defaultDrawingSide/ratio
		} else {
			width, height = defaultDrawingSide*ratio, defaultDrawingSide
		}
	}
	center := s.viewportCenterCanvas()
	blank, err := raster.NewBlank(int(width), int(height))
	if err != nil {
		return "", fmt.Errorf("blank drawing surface: %w", err)
	}
	obj := document.DrawingObject{
		ID:         document.NewID(),
		X:          center.X - width/2,
		Y:          center.Y - height/2,
		Width:      width,
		Height:     height,
		DrawingSrc: raster.EncodeDataURL(blank.MIME, blank.Data),
	}
	if err := s.doc.AddDrawing(obj); err != nil {
		return "", err
	}
	_ = s.doc.SelectOnly(obj.ID)
	s.resetToSelect()
	return obj.ID, nil
}

// topmostAt hit-tests the canvas point against object bodies, front first.
func (s *Session) topmostAt(canvas geometry.Point) (document.Kind, string, bool) {
	order := s.doc.LayerOrder()
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		kind, ok := s.doc.KindOf(id)
		if !ok {
			continue
		}
		if rect, ok := s.rectOf(kind, id); ok && rect.Contains(canvas) {
			return kind, id, true
		}
	}
	return "", "", false
}

// handleAt hit-tests the screen point against the resize handles of the
// solely selected object.
func (s *Session) handleAt(screen geometry.Point) (document.Kind, string, Handle, bool) {
	refs := s.doc.SelectionOrder()
	if len(refs) != 1 {
		return "", "", "", false
	}
	ref := refs[0]
	rect, ok := s.rectOf(ref.Kind, ref.ID)
	if !ok {
		return "", "", "", false
	}

	for handle, at := range handlePoints(rect) {
		sp := geometry.CanvasToScreen(at, s.view)
		dx, dy := screen.X-sp.X, screen.Y-sp.Y
		if dx*dx+dy*dy <= handleHitRadius*handleHitRadius {
			return ref.Kind, ref.ID, handle, true
		}
	}
	return "", "", "", false
}

func handlePoints(r geometry.Rect) map[Handle]geometry.Point {
	midX, midY := r.X+r.Width/2, r.Y+r.Height/2
	return map[Handle]geometry.Point{
		HandleNW: {X: r.X, Y: r.Y},
		HandleN:  {X: midX, Y: r.Y},
		HandleNE: {X: r.X + r.Width, Y: r.Y},
		HandleE:  {X: r.X + r.Width, Y: midY},
		HandleSE: {X: r.X + r.Width, Y: r.Y + r.Height},
		HandleS:  {X: midX, Y: r.Y + r.Height},
		HandleSW: {X: r.X, Y: r.Y + r.Height},
		HandleW:  {X: r.X, Y: midY},
	}
}

func (s *Session) rectOf(kind document.Kind, id string) (geometry.Rect, bool) {
	switch kind {
	case document.KindImage:
		if o, ok := s.doc.Image(id); ok {
			return o.Rect(), true
		}
	case document.KindText:
		if o, ok := s.doc.Text(id); ok {
			return o.Rect(), true
		}
	case document.KindDrawing:
		if o, ok := s.doc.Drawing(id); ok {
			return o.Rect(), true
		}
	}
	return geometry.Rect{}, false
}

func (s *Session) moveObject(id string, x, y float64) {
	kind, ok := s.doc.KindOf(id)
	if !ok {
		return
	}
	switch kind {
	case document.KindImage:
		_ = s.doc.UpdateImage(id, document.ImagePatch{X: &x, Y: &y})
	case document.KindText:
		_ = s.doc.UpdateText(id, document.TextPatch{X: &x, Y: &y})
	case document.KindDrawing:
		_ = s.doc.UpdateDrawing(id, document.DrawingPatch{X: &x, Y: &y})
	}
}

// applyResize recomputes the target rect from the initial rect, the handle,
// and the pointer delta. Corner handles preserve the original aspect ratio;
// edge handles move one dimension. The size floor clamps position on
// top/left handles so the opposite edge stays fixed.
func (s *Session) applyResize(canvas geometry.Point) {
	p := &s.pointer
	r0 := p.initialRect
	delta := canvas.Sub(p.startCanvas)

	x, y, w, h := r0.X, r0.Y, r0.Width, r0.Height

	switch p.handle {
	case HandleE:
		w = r0.Width + delta.X
	case HandleW:
		w = r0.Width - delta.X
	case HandleS:
		h = r0.Height + delta.Y
	case HandleN:
		h = r0.Height - delta.Y
	case HandleSE, HandleNE:
		w = r0.Width + delta.X
	case HandleSW, HandleNW:
		w = r0.Width - delta.X
	}

	corner := p.handle == HandleNE || p.handle == HandleNW ||
		p.handle == HandleSE || p.handle == HandleSW

	if w < MinObjectSize {
		w = MinObjectSize
	}
	if corner && r0.Width > 0 && r0.Height > 0 {
		h = w * r0.Height / r0.Width
	}
	if h < MinObjectSize {
		h = MinObjectSize
		if corner && r0.Height > 0 {
			w = h * r0.Width / r0.Height
			if w < MinObjectSize {
				w = MinObjectSize
			}
		}
	}

	// Left handles keep the right edge fixed; top handles the bottom edge.
	switch p.handle {
	case HandleW, HandleSW:
		x = r0.X + r0.Width - w
	case HandleNW:
		x = r0.X + r0.Width - w
		y = r0.Y + r0.Height - h
	case HandleN:
		y = r0.Y + r0.Height - h
	case HandleNE:
		y = r0.Y + r0.Height - h
	}

	switch p.resizeKind {
	case document.KindImage:
		_ = s.doc.UpdateImage(p.resizeID, document.ImagePatch{X: &x, Y: &y, Width: &w, Height: &h})
	case document.KindText:
		_ = s.doc.UpdateText(p.resizeID, document.TextPatch{X: &x, Y: &y, Width: &w, Height: &h})
	case document.KindDrawing:
		_ = s.doc.UpdateDrawing(p.resizeID, document.DrawingPatch{X: &x, Y: &y, Width: &w, Height: &h})
	}
}

func (s *Session) commitMarquee(state pointerState) {
	box := geometry.Rect{
		X:      state.startCanvas.X,
		Y:      state.startCanvas.Y,
		Width:  state.marqueeEnd.X - state.startCanvas.X,
		Height: state.marqueeEnd.Y - state.startCanvas.Y,
	}.Normalized()

	// Inclusion is bounding-box overlap, not containment.
	for _, id := range s.doc.LayerOrder() {
		kind, ok := s.doc.KindOf(id)
		if !ok {
			continue
		}
		if rect, ok := s.rectOf(kind, id); ok && rect.Intersects(box) {
			_ = s.doc.Select(id)
		}
	}
}

// strokeTargetFor resolves the raster buffer a paint stroke lands in: the
// mask of an image, or the surface of a drawing. Text never takes paint.
func (s *Session) strokeTargetFor(kind document.Kind, id string) (strokeTarget, bool) {
	switch kind {
	case document.KindImage:
		o, ok := s.doc.Image(id)
		if !ok || o.Width <= 0 {
			return strokeTarget{}, false
		}
		bufW, bufH := o.NaturalWidth, o.NaturalHeight
		if bufW <= 0 || bufH <= 0 {
			bufW, bufH = int(o.Width), int(o.Height)
		}
		return strokeTarget{
			kind:   kind,
			id:     id,
			bufW:   bufW,
			bufH:   bufH,
			origin: geometry.Point{X: o.X, Y: o.Y},
			factor: float64(bufW) / o.Width,
		}, true

	case document.KindDrawing:
		o, ok := s.doc.Drawing(id)
		if !ok || o.Width <= 0 {
			return strokeTarget{}, false
		}
		return strokeTarget{
			kind:   kind,
			id:     id,
			bufW:   int(o.Width),
			bufH:   int(o.Height),
			origin: geometry.Point{X: o.X, Y: o.Y},
			factor: float64(int(o.Width)) / o.Width,
		}, true
	}
	return strokeTarget{}, false
}

func (s *Session) bufferPoint(t strokeTarget, canvas geometry.Point) geometry.Point {
	return canvas.Sub(t.origin).Scale(t.factor)
}

func (s *Session) toBuffer(canvas geometry.Point) geometry.Point {
	return s.bufferPoint(s.pointer.stroke, canvas)
}

// commitStroke serializes the accumulated stroke back into the owning
// object. The buffer is only rewritten here, at gesture end, never
// per-move.
func (s *Session) commitStroke(state pointerState) error {
	if len(state.strokePoints) == 0 {
		return nil
	}

	ink := penInk
	if state.stroke.kind == document.KindImage {
		ink = maskInk
	}
	stroke := raster.Stroke{
		Points: state.strokePoints,
		Width:  state.strokeWidth,
		Color:  ink,
		Erase:  state.strokeErase,
	}

	var base raster.Payload
	var src string
	switch state.stroke.kind {
	case document.KindImage:
		o, ok := s.doc.Image(state.stroke.id)
		if !ok {
			return fmt.Errorf("stroke target: %w", document.ErrNotFound)
		}
		src = o.MaskSrc
	case document.KindDrawing:
		o, ok := s.doc.Drawing(state.stroke.id)
		if !ok {
			return fmt.Errorf("stroke target: %w", document.ErrNotFound)
		}
		src = o.DrawingSrc
	}
	if src != "" {
		p, err := raster.ParseDataURL(src)
		if err != nil {
			return fmt.Errorf("stroke base: %w", err)
		}
		base = p
	}

	out, err := raster.ApplyStroke(base, state.stroke.bufW, state.stroke.bufH, stroke)
	if err != nil {
		return fmt.Errorf("apply stroke: %w", err)
	}
	url := raster.EncodeDataURL(out.MIME, out.Data)

	switch state.stroke.kind {
	case document.KindImage:
		return s.doc.UpdateImage(state.stroke.id, document.ImagePatch{MaskSrc: &url})
	case document.KindDrawing:
		return s.doc.UpdateDrawing(state.stroke.id, document.DrawingPatch{DrawingSrc: &url})
	}
	return nil
}
