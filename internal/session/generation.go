package session

import (
	"context"
	"fmt"
	"time"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/generate"
	"github.com/promptboard/promptboard/internal/geometry"
	"github.com/promptboard/promptboard/internal/raster"
)

// resultDisplaySize is the longer display side of a freshly generated
// image, in canvas units.
const resultDisplaySize = 400.0

// Generator runs one image generation submission. Satisfied by
// *generate.Orchestrator.
type Generator interface {
	Run(ctx context.Context, doc *document.Document, prompt string, choice generate.ModelChoice) (*generate.Outcome, error)
}

// VideoGenerator runs one video generation to completion. Satisfied by
// *generate.VideoGenerator.
type VideoGenerator interface {
	Generate(ctx context.Context, prompt string, source raster.Payload, aspectRatio string) ([]byte, error)
}

// Generate submits a prompt and, on success, applies the result to the
// document: a new result-classified image centered in the viewport, pushed
// to the front, made the sole selection, with masks on the previously
// selected images cleared and the tool reset to select. Exactly one
// generation may be in flight; concurrent submissions are rejected.
func (s *Session) Generate(ctx context.Context, prompt string, choice generate.ModelChoice) (*generate.Outcome, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, generate.ErrGenerationInFlight
	}
	if prompt == "" {
		s.mu.Unlock()
		return nil, generate.ErrEmptyPrompt
	}
	s.generating = true
	s.pointer = pointerState{}
	prevMasked := s.maskedSelectedImages()
	// The orchestrator works against a detached snapshot so endpoints that
	// mutate the live document while generation is in flight never race
	// with its reads.
	snap := s.doc.Snapshot()
	s.mu.Unlock()

	outcome, err := s.gen.Run(ctx, snap, prompt, choice)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	s.touchedAt = time.Now()

	if err != nil {
		return nil, err
	}
	if err := s.applyOutcome(outcome, prevMasked); err != nil {
		return nil, err
	}
	return outcome, nil
}

// maskedSelectedImages lists the selected images that carry a paint mask.
// Caller holds s.mu.
func (s *Session) maskedSelectedImages() []string {
	var ids []string
	for _, id := range s.doc.SelectedImageIDs() {
		if o, ok := s.doc.Image(id); ok && o.MaskSrc != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// applyOutcome inserts the generated image and runs the post-success
// resets. Caller holds s.mu.
func (s *Session) applyOutcome(outcome *generate.Outcome, prevMasked []string) error {
	natW, natH, err := raster.ProbeSize(outcome.Image.Data)
	if err != nil {
		return fmt.Errorf("probe generated image: %w", err)
	}

	w, h := displaySize(natW, natH)
	center := s.viewportCenterCanvas()

	obj := document.ImageObject{
		ID:                document.NewID(),
		Src:               raster.EncodeDataURL(outcome.Image.MIME, outcome.Image.Data),
		X:                 center.X - w/2,
		Y:                 center.Y - h/2,
		Width:             w,
		Height:            h,
		NaturalWidth:      natW,
		NaturalHeight:     natH,
		Classification:    document.ClassResult,
		Prompt:            outcome.Prompt,
		TargetAspectRatio: s.doc.AspectRatio,
	}
	if err := s.doc.AddImage(obj); err != nil {
		return fmt.Errorf("insert generated image: %w", err)
	}
	_ = s.doc.ReorderToFront(obj.ID)

	// Consumed masks are cleared so a stale mask never leaks into the
	// next submission.
	empty := ""
	for _, id := range prevMasked {
		_ = s.doc.UpdateImage(id, document.ImagePatch{MaskSrc: &empty})
	}

	_ = s.doc.SelectOnly(obj.ID)
	s.resetToSelect()

	s.logger.Info("generation applied",
		"object", obj.ID,
		"path", outcome.Path,
		"attempts", outcome.Attempts)
	return nil
}

// GenerateVideo animates an existing image. The resulting video bytes are
// attached to the source object's videoSrc.
func (s *Session) GenerateVideo(ctx context.Context, imageID, prompt string) error {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return generate.ErrGenerationInFlight
	}
	obj, ok := s.doc.Image(imageID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("video source: %w", document.ErrNotFound)
	}
	source, err := raster.ParseDataURL(obj.Src)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("video source: %w", err)
	}
	aspect := s.doc.AspectRatio
	s.generating = true
	s.mu.Unlock()

	video, err := s.video.Generate(ctx, prompt, source, aspect)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	s.touchedAt = time.Now()

	if err != nil {
		return err
	}
	url := raster.EncodeDataURL("video/mp4", video)
	return s.doc.UpdateImage(imageID, document.ImagePatch{VideoSrc: &url})
}

// ImportImage places an uploaded or pasted image on the canvas, centered in
// the viewport, scaled so its longer side shows at the default display
// size, and selects it.
func (s *Session) ImportImage(src string, class document.Classification, name string) (string, error) {
	return s.importImage(src, class, name, nil)
}

// ImportImageAt is ImportImage with an explicit top-left canvas position,
// used by frame-extraction flows that anchor a still next to its source.
func (s *Session) ImportImageAt(src string, class document.Classification, name string, pos geometry.Point) (string, error) {
	return s.importImage(src, class, name, &pos)
}

func (s *Session) importImage(src string, class document.Classification, name string, pos *geometry.Point) (string, error) {
	payload, err := raster.ParseDataURL(src)
	if err != nil {
		return "", fmt.Errorf("import image: %w", err)
	}
	natW, natH, err := raster.ProbeSize(payload.Data)
	if err != nil {
		return "", fmt.Errorf("import image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := displaySize(natW, natH)
	origin := geometry.Point{}
	if pos != nil {
		origin = *pos
	} else {
		center := s.viewportCenterCanvas()
		origin = geometry.Point{X: center.X - w/2, Y: center.Y - h/2}
	}
	if class == "" {
		class = document.ClassOriginal
	}

	obj := document.ImageObject{
		ID:             document.NewID(),
		Src:            raster.EncodeDataURL(payload.MIME, payload.Data),
		X:              origin.X,
		Y:              origin.Y,
		Width:          w,
		Height:         h,
		NaturalWidth:   natW,
		NaturalHeight:  natH,
		Classification: class,
		Name:           name,
	}
	if err := s.doc.AddImage(obj); err != nil {
		return "", err
	}
	_ = s.doc.ReorderToFront(obj.ID)
	_ = s.doc.SelectOnly(obj.ID)
	s.touchedAt = time.Now()
	return obj.ID, nil
}

// displaySize scales intrinsic dimensions so the longer side equals the
// default display size, never upscaling the aspect.
func displaySize(natW, natH int) (w, h float64) {
	if natW <= 0 || natH <= 0 {
		return resultDisplaySize, resultDisplaySize
	}
	fw, fh := float64(natW), float64(natH)
	if fw >= fh {
		return resultDisplaySize, resultDisplaySize * fh / fw
	}
	return resultDisplaySize * fw / fh, resultDisplaySize
}
