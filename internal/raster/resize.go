package raster

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// DownscaleToCap downscales a payload so its longer side is at most cap
// pixels, re-encoding as JPEG at the fixed reference quality. Payloads
// already within the cap pass through unchanged (no upscaling, no
// re-encode).
func DownscaleToCap(p Payload, cap int) (Payload, error) {
	w, h, err := ProbeSize(p.Data)
	if err != nil {
		return Payload{}, err
	}
	if w <= cap && h <= cap {
		return p, nil
	}

	img, err := decode(p.Data)
	if err != nil {
		return Payload{}, err
	}

	nw, nh := fitWithin(w, h, cap)
	scaled := scaleImage(img, nw, nh)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Payload{}, err
	}
	return Payload{MIME: "image/jpeg", Data: buf.Bytes()}, nil
}

// fitWithin computes dimensions scaled down so the longer side equals cap,
// preserving aspect ratio. Assumes max(w, h) > cap.
func fitWithin(w, h, cap int) (int, int) {
	if w >= h {
		return cap, max(1, h*cap/w)
	}
	return max(1, w*cap/h), cap
}

// scaleImage resamples with Catmull-Rom interpolation for quality parity
// with browser-grade "high" smoothing.
func scaleImage(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// encodePNG serializes an image as PNG bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
