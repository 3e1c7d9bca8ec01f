// Package document holds the mutable scene model: image, text, and drawing
// objects, a single global layer order, and the three selection sets.
//
// Document is pure data with structural invariants; business logic lives in
// the session and generation packages. It is not safe for concurrent use;
// the owning session synchronizes access.
package document

import (
	"fmt"
	"sort"

	"github.com/promptboard/promptboard/internal/geometry"
)

// Kind discriminates the three object collections.
type Kind string

const (
	KindImage   Kind = "image"
	KindText    Kind = "text"
	KindDrawing Kind = "drawing"
)

// DefaultAspectRatio is the aspect-ratio setting of a fresh document.
const DefaultAspectRatio = "1:1"

// Document is the single source of truth for a scene. Every live object id
// appears exactly once in the layer order, which is the sole stacking
// authority. Selection sets only ever reference live objects.
type Document struct {
	Name        string
	AspectRatio string
	Transform   geometry.Transform

	images   map[string]*ImageObject
	texts    map[string]*TextObject
	drawings map[string]*DrawingObject

	layerOrder []string

	selectedImages   map[string]struct{}
	selectedTexts    map[string]struct{}
	selectedDrawings map[string]struct{}
}

// New creates an empty document with default settings.
func New() *Document {
	return &Document{
		Name:             "Untitled Project",
		AspectRatio:      DefaultAspectRatio,
		Transform:        geometry.Identity(),
		images:           make(map[string]*ImageObject),
		texts:            make(map[string]*TextObject),
		drawings:         make(map[string]*DrawingObject),
		selectedImages:   make(map[string]struct{}),
		selectedTexts:    make(map[string]struct{}),
		selectedDrawings: make(map[string]struct{}),
	}
}

func (d *Document) isLive(id string) bool {
	if _, ok := d.images[id]; ok {
		return true
	}
	if _, ok := d.texts[id]; ok {
		return true
	}
	_, ok := d.drawings[id]
	return ok
}

// AddImage inserts an image object and appends it to the layer order.
func (d *Document) AddImage(obj ImageObject) error {
	if obj.ID == "" {
		return ErrEmptyID
	}
	if d.isLive(obj.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
	}
	o := obj
	d.images[o.ID] = &o
	d.layerOrder = append(d.layerOrder, o.ID)
	return nil
}

// AddText inserts a text object and appends it to the layer order.
func (d *Document) AddText(obj TextObject) error {
	if obj.ID == "" {
		return ErrEmptyID
	}
	if d.isLive(obj.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
	}
	o := obj
	d.texts[o.ID] = &o
	d.layerOrder = append(d.layerOrder, o.ID)
	return nil
}

// AddDrawing inserts a drawing surface and appends it to the layer order.
func (d *Document) AddDrawing(obj DrawingObject) error {
	if obj.ID == "" {
		return ErrEmptyID
	}
	if d.isLive(obj.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
	}
	o := obj
	d.drawings[o.ID] = &o
	d.layerOrder = append(d.layerOrder, o.ID)
	return nil
}

// UpdateImage shallow-merges a partial patch into an image object.
func (d *Document) UpdateImage(id string, patch ImagePatch) error {
	o, ok := d.images[id]
	if !ok {
		return fmt.Errorf("%w: image %s", ErrNotFound, id)
	}
	patch.apply(o)
	return nil
}

// UpdateText shallow-merges a partial patch into a text object.
func (d *Document) UpdateText(id string, patch TextPatch) error {
	o, ok := d.texts[id]
	if !ok {
		return fmt.Errorf("%w: text %s", ErrNotFound, id)
	}
	patch.apply(o)
	return nil
}

// UpdateDrawing shallow-merges a partial patch into a drawing surface.
func (d *Document) UpdateDrawing(id string, patch DrawingPatch) error {
	o, ok := d.drawings[id]
	if !ok {
		return fmt.Errorf("%w: drawing %s", ErrNotFound, id)
	}
	patch.apply(o)
	return nil
}

// RemoveImage deletes an image object, pruning layer order and selection.
func (d *Document) RemoveImage(id string) error {
	if _, ok := d.images[id]; !ok {
		return fmt.Errorf("%w: image %s", ErrNotFound, id)
	}
	delete(d.images, id)
	delete(d.selectedImages, id)
	d.removeFromLayer(id)
	return nil
}

// RemoveText deletes a text object, pruning layer order and selection.
func (d *Document) RemoveText(id string) error {
	if _, ok := d.texts[id]; !ok {
		return fmt.Errorf("%w: text %s", ErrNotFound, id)
	}
	delete(d.texts, id)
	delete(d.selectedTexts, id)
	d.removeFromLayer(id)
	return nil
}

// RemoveDrawing deletes a drawing surface, pruning layer order and selection.
func (d *Document) RemoveDrawing(id string) error {
	if _, ok := d.drawings[id]; !ok {
		return fmt.Errorf("%w: drawing %s", ErrNotFound, id)
	}
	delete(d.drawings, id)
	delete(d.selectedDrawings, id)
	d.removeFromLayer(id)
	return nil
}

func (d *Document) removeFromLayer(id string) {
	for i, v := range d.layerOrder {
		if v == id {
			d.layerOrder = append(d.layerOrder[:i], d.layerOrder[i+1:]...)
			return
		}
	}
}

// ReorderToFront moves an object id to the end of the layer order (topmost).
// Idempotent: repeating the call leaves the order unchanged.
func (d *Document) ReorderToFront(id string) error {
	if !d.isLive(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	d.removeFromLayer(id)
	d.layerOrder = append(d.layerOrder, id)
	return nil
}

// ReplaceAll atomically swaps in a whole new document state, used by project
// load. The layer order must list every provided object id exactly once;
// otherwise the document is left untouched.
func (d *Document) ReplaceAll(images []ImageObject, texts []TextObject, drawings []DrawingObject, layerOrder []string) error {
	want := make(map[string]bool, len(images)+len(texts)+len(drawings))
	for _, o := range images {
		if o.ID == "" {
			return ErrEmptyID
		}
		if want[o.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
		}
		want[o.ID] = true
	}
	for _, o := range texts {
		if o.ID == "" {
			return ErrEmptyID
		}
		if want[o.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
		}
		want[o.ID] = true
	}
	for _, o := range drawings {
		if o.ID == "" {
			return ErrEmptyID
		}
		if want[o.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
		}
		want[o.ID] = true
	}

	if len(layerOrder) != len(want) {
		return fmt.Errorf("%w: %d ids in layer order, %d objects", ErrLayerMismatch, len(layerOrder), len(want))
	}
	seen := make(map[string]bool, len(layerOrder))
	for _, id := range layerOrder {
		if !want[id] || seen[id] {
			return fmt.Errorf("%w: %s", ErrLayerMismatch, id)
		}
		seen[id] = true
	}

	d.images = make(map[string]*ImageObject, len(images))
	for _, o := range images {
		obj := o
		d.images[obj.ID] = &obj
	}
	d.texts = make(map[string]*TextObject, len(texts))
	for _, o := range texts {
		obj := o
		d.texts[obj.ID] = &obj
	}
	d.drawings = make(map[string]*DrawingObject, len(drawings))
	for _, o := range drawings {
		obj := o
		d.drawings[obj.ID] = &obj
	}
	d.layerOrder = append([]string(nil), layerOrder...)
	d.selectedImages = make(map[string]struct{})
	d.selectedTexts = make(map[string]struct{})
	d.selectedDrawings = make(map[string]struct{})
	return nil
}

// Snapshot returns a deep copy of the document, detached from the
// receiver. Long-running readers work against a snapshot so the owning
// session can keep mutating the live document in the meantime.
func (d *Document) Snapshot() *Document {
	s := New()
	s.Name = d.Name
	s.AspectRatio = d.AspectRatio
	s.Transform = d.Transform
	for id, o := range d.images {
		c := o.clone()
		s.images[id] = &c
	}
	for id, o := range d.texts {
		c := *o
		s.texts[id] = &c
	}
	for id, o := range d.drawings {
		c := *o
		s.drawings[id] = &c
	}
	s.layerOrder = append([]string(nil), d.layerOrder...)
	for id := range d.selectedImages {
		s.selectedImages[id] = struct{}{}
	}
	for id := range d.selectedTexts {
		s.selectedTexts[id] = struct{}{}
	}
	for id := range d.selectedDrawings {
		s.selectedDrawings[id] = struct{}{}
	}
	return s
}

// Image returns a copy of the image object with the given id.
func (d *Document) Image(id string) (ImageObject, bool) {
	o, ok := d.images[id]
	if !ok {
		return ImageObject{}, false
	}
	return o.clone(), true
}

// Text returns a copy of the text object with the given id.
func (d *Document) Text(id string) (TextObject, bool) {
	o, ok := d.texts[id]
	if !ok {
		return TextObject{}, false
	}
	return *o, true
}

// Drawing returns a copy of the drawing surface with the given id.
func (d *Document) Drawing(id string) (DrawingObject, bool) {
	o, ok := d.drawings[id]
	if !ok {
		return DrawingObject{}, false
	}
	return *o, true
}

// Images returns all image objects in layer order (bottom to top).
func (d *Document) Images() []ImageObject {
	out := make([]ImageObject, 0, len(d.images))
	for _, id := range d.layerOrder {
		if o, ok := d.images[id]; ok {
			out = append(out, o.clone())
		}
	}
	return out
}

// Texts returns all text objects in layer order.
func (d *Document) Texts() []TextObject {
	out := make([]TextObject, 0, len(d.texts))
	for _, id := range d.layerOrder {
		if o, ok := d.texts[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

// Drawings returns all drawing surfaces in layer order.
func (d *Document) Drawings() []DrawingObject {
	out := make([]DrawingObject, 0, len(d.drawings))
	for _, id := range d.layerOrder {
		if o, ok := d.drawings[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

// LayerOrder returns a copy of the stacking order, bottom to top.
func (d *Document) LayerOrder() []string {
	return append([]string(nil), d.layerOrder...)
}

// KindOf reports which collection holds the id, if any.
func (d *Document) KindOf(id string) (Kind, bool) {
	if _, ok := d.images[id]; ok {
		return KindImage, true
	}
	if _, ok := d.texts[id]; ok {
		return KindText, true
	}
	if _, ok := d.drawings[id]; ok {
		return KindDrawing, true
	}
	return "", false
}

// Select adds an object to its kind's selection set.
func (d *Document) Select(id string) error {
	kind, ok := d.KindOf(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	switch kind {
	case KindImage:
		d.selectedImages[id] = struct{}{}
	case KindText:
		d.selectedTexts[id] = struct{}{}
	case KindDrawing:
		d.selectedDrawings[id] = struct{}{}
	}
	return nil
}

// SelectOnly clears every selection set and selects the single id.
func (d *Document) SelectOnly(id string) error {
	kind, ok := d.KindOf(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for sel := range d.selectedImages {
		if sel != id {
			d.dropMask(sel)
		}
	}
	clear(d.selectedImages)
	clear(d.selectedTexts)
	clear(d.selectedDrawings)
	switch kind {
	case KindImage:
		d.selectedImages[id] = struct{}{}
	case KindText:
		d.selectedTexts[id] = struct{}{}
	case KindDrawing:
		d.selectedDrawings[id] = struct{}{}
	}
	return nil
}

// Deselect removes an object from its selection set. Unknown ids are a
// no-op. An image leaving the selection loses its paint mask; the mask is
// transient inpainting input tied to the selection that produced it.
func (d *Document) Deselect(id string) {
	if _, ok := d.selectedImages[id]; ok {
		d.dropMask(id)
	}
	delete(d.selectedImages, id)
	delete(d.selectedTexts, id)
	delete(d.selectedDrawings, id)
}

// ClearSelection empties all three selection sets, dropping any paint masks
// on the deselected images.
func (d *Document) ClearSelection() {
	for id := range d.selectedImages {
		d.dropMask(id)
	}
	clear(d.selectedImages)
	clear(d.selectedTexts)
	clear(d.selectedDrawings)
}

func (d *Document) dropMask(id string) {
	if o, ok := d.images[id]; ok {
		o.MaskSrc = ""
	}
}

// IsSelected reports whether the id is in any selection set.
func (d *Document) IsSelected(id string) bool {
	if _, ok := d.selectedImages[id]; ok {
		return true
	}
	if _, ok := d.selectedTexts[id]; ok {
		return true
	}
	_, ok := d.selectedDrawings[id]
	return ok
}

// SelectedImageIDs returns the ids of selected images, unordered.
func (d *Document) SelectedImageIDs() []string {
	return keys(d.selectedImages)
}

// SelectedTextIDs returns the ids of selected texts, unordered.
func (d *Document) SelectedTextIDs() []string {
	return keys(d.selectedTexts)
}

// SelectedDrawingIDs returns the ids of selected drawing surfaces, unordered.
func (d *Document) SelectedDrawingIDs() []string {
	return keys(d.selectedDrawings)
}

// SelectionCount returns the total number of selected objects across kinds.
func (d *Document) SelectionCount() int {
	return len(d.selectedImages) + len(d.selectedTexts) + len(d.selectedDrawings)
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// SelectionRef identifies one selected object together with its 1-based
// left-to-right order badge.
type SelectionRef struct {
	Kind  Kind
	ID    string
	X     float64
	Order int
}

// SelectionOrder returns every selected object sorted by ascending
// x-coordinate, assigning 1-based order numbers. This ordering drives both
// the on-canvas badges and "Reference N" assignment for generation.
func (d *Document) SelectionOrder() []SelectionRef {
	refs := make([]SelectionRef, 0, d.SelectionCount())
	for id := range d.selectedImages {
		refs = append(refs, SelectionRef{Kind: KindImage, ID: id, X: d.images[id].X})
	}
	for id := range d.selectedTexts {
		refs = append(refs, SelectionRef{Kind: KindText, ID: id, X: d.texts[id].X})
	}
	for id := range d.selectedDrawings {
		refs = append(refs, SelectionRef{Kind: KindDrawing, ID: id, X: d.drawings[id].X})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].X != refs[j].X {
			return refs[i].X < refs[j].X
		}
		return refs[i].ID < refs[j].ID // stable tiebreak
	})
	for i := range refs {
		refs[i].Order = i + 1
	}
	return refs
}

// DeleteSelected removes every selected object across all three kinds and
// clears the selection sets. It returns the deleted ids.
func (d *Document) DeleteSelected() []string {
	var deleted []string
	for id := range d.selectedImages {
		delete(d.images, id)
		d.removeFromLayer(id)
		deleted = append(deleted, id)
	}
	for id := range d.selectedTexts {
		delete(d.texts, id)
		d.removeFromLayer(id)
		deleted = append(deleted, id)
	}
	for id := range d.selectedDrawings {
		delete(d.drawings, id)
		d.removeFromLayer(id)
		deleted = append(deleted, id)
	}
	d.ClearSelection()
	return deleted
}

// NamedImages returns live images of the given classification that carry a
// non-empty name, used by entity resolution.
func (d *Document) NamedImages(class Classification) []ImageObject {
	var out []ImageObject
	for _, id := range d.layerOrder {
		if o, ok := d.images[id]; ok && o.Classification == class && o.Name != "" {
			out = append(out, *o)
		}
	}
	return out
}
