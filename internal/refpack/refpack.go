// Package refpack converts the current selection into the ordered,
// size-normalized reference payloads the generation service consumes.
//
// Selected images and drawing surfaces become references; text selections
// contribute nothing. Order is ascending x-coordinate, matching the user's
// left-to-right arrangement, so "Reference 1" is always the leftmost item.
package refpack

import (
	"fmt"
	"math"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/raster"
)

// RatioTolerance is the maximum |item ratio − target ratio| for the single
// selected item to count as matching the target aspect ratio.
const RatioTolerance = 0.01

// Reference is one packed reference payload in service order.
type Reference struct {
	ID      string
	Kind    document.Kind
	Order   int // 1-based, ascending x
	Payload raster.Payload
}

// Packed is the full input the orchestrator derives a generation path from.
type Packed struct {
	References []Reference

	// Mask is the single item's paint mask, present only on the
	// single-item matching-ratio path; masks are meaningless when the
	// service will composite multiple references or outpaint padding.
	Mask *raster.Payload

	IsSingleItem          bool
	IsMatchingAspectRatio bool
}

// Build packs the document's current selection against the target aspect
// ratio. A selection with no editable items yields an empty Packed, which
// the orchestrator treats as the pure text-to-image path.
func Build(doc *document.Document, targetAspect string) (Packed, error) {
	target, ok := document.AspectRatioValue(targetAspect)
	if !ok {
		return Packed{}, fmt.Errorf("unknown aspect ratio %q", targetAspect)
	}

	var packed Packed
	var singleImage *document.ImageObject
	var singleRatio float64

	for _, ref := range doc.SelectionOrder() {
		switch ref.Kind {
		case document.KindImage:
			obj, ok := doc.Image(ref.ID)
			if !ok {
				return Packed{}, fmt.Errorf("%w: %s", document.ErrNotFound, ref.ID)
			}
			payload, err := normalize(obj.Src, ref.ID)
			if err != nil {
				return Packed{}, err
			}
			packed.References = append(packed.References, Reference{
				ID: ref.ID, Kind: document.KindImage, Payload: payload,
			})
			o := obj
			singleImage = &o
			singleRatio = obj.Width / obj.Height

		case document.KindDrawing:
			obj, ok := doc.Drawing(ref.ID)
			if !ok {
				return Packed{}, fmt.Errorf("%w: %s", document.ErrNotFound, ref.ID)
			}
			if obj.DrawingSrc == "" {
				// Never-painted surface: nothing to reference.
				continue
			}
			payload, err := normalize(obj.DrawingSrc, ref.ID)
			if err != nil {
				return Packed{}, err
			}
			packed.References = append(packed.References, Reference{
				ID: ref.ID, Kind: document.KindDrawing, Payload: payload,
			})
			singleImage = nil
			singleRatio = obj.Width / obj.Height

		case document.KindText:
			// Text contributes nothing to generation.
		}
	}

	for i := range packed.References {
		packed.References[i].Order = i + 1
	}

	packed.IsSingleItem = len(packed.References) == 1
	if packed.IsSingleItem {
		packed.IsMatchingAspectRatio = math.Abs(singleRatio-target) < RatioTolerance
	}

	if packed.IsSingleItem && packed.IsMatchingAspectRatio &&
		singleImage != nil && singleImage.MaskSrc != "" {
		mask, err := normalize(singleImage.MaskSrc, singleImage.ID+"/mask")
		if err != nil {
			return Packed{}, err
		}
		packed.Mask = &mask
	}

	return packed, nil
}

// PackImageObjects normalizes the given images into service payloads in the
// order supplied. Used for the synthetic two-item selection of the
// entity-pairing path, which bypasses the real selection sets.
func PackImageObjects(objs []document.ImageObject) ([]raster.Payload, error) {
	out := make([]raster.Payload, 0, len(objs))
	for _, obj := range objs {
		payload, err := normalize(obj.Src, obj.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, nil
}

// normalize decodes a data URL and downscales it to the service size cap.
func normalize(src, id string) (raster.Payload, error) {
	payload, err := raster.ParseDataURL(src)
	if err != nil {
		return raster.Payload{}, fmt.Errorf("reference %s: %w", id, err)
	}
	payload.MIME = raster.NormalizeMIME(payload.MIME)
	payload, err = raster.DownscaleToCap(payload, raster.SizeCap)
	if err != nil {
		return raster.Payload{}, fmt.Errorf("reference %s: %w", id, err)
	}
	return payload, nil
}
