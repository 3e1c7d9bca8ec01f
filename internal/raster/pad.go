package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// ChromaKey is the solid padding color for the two-step outpainting path.
// The outpainting instruction tells the model to replace exactly this color,
// so padded canvases are PNG-encoded to keep it lossless. Known limitation:
// source content that legitimately contains this color can be mistaken for
// padding.
var ChromaKey = color.NRGBA{R: 0, G: 255, B: 0, A: 255}

// PadToAspect centers the payload's image on a chroma-key canvas whose
// dimensions satisfy targetRatio (width/height). If the padded canvas would
// exceed cap on its longer side it is downscaled first, image and padding
// together. The result is always PNG.
func PadToAspect(p Payload, targetRatio float64, cap int) (Payload, error) {
	img, err := decode(p.Data)
	if err != nil {
		return Payload{}, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	pw, ph := paddedDims(w, h, targetRatio)
	if pw > cap || ph > cap {
		// Shrink the whole padded canvas to the cap, then size the inner
		// image to keep its share of the canvas.
		spw, sph := fitWithin(pw, ph, cap)
		scale := float64(spw) / float64(pw)
		iw := max(1, int(math.Round(float64(w)*scale)))
		ih := max(1, int(math.Round(float64(h)*scale)))
		img = scaleImage(img, iw, ih)
		w, h = iw, ih
		pw, ph = spw, sph
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(ChromaKey), image.Point{}, draw.Src)

	offset := image.Pt((pw-w)/2, (ph-h)/2)
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))}, img, img.Bounds().Min, draw.Over)

	data, err := encodePNG(canvas)
	if err != nil {
		return Payload{}, err
	}
	return Payload{MIME: "image/png", Data: data}, nil
}

// paddedDims returns the smallest canvas at targetRatio that fully contains
// a w×h image. One dimension keeps the source size, the other grows.
func paddedDims(w, h int, targetRatio float64) (int, int) {
	current := float64(w) / float64(h)
	if current < targetRatio {
		// Source is too narrow: widen.
		return max(w, int(math.Round(float64(h)*targetRatio))), h
	}
	// Source is too wide (or exact): heighten.
	return w, max(h, int(math.Round(float64(w)/targetRatio)))
}
