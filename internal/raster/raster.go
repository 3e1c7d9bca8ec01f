// Package raster provides the off-the-shelf 2D raster operations the editor
// and the generation pipeline depend on: data-URL encoding, dimension
// probing, capped high-quality downscaling, chroma-key padding, and paint
// stroke compositing.
//
// Payloads travel through the document as data URLs; this package is the
// only place that decodes them to pixels.
package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	// Decoders for the formats uploads and service responses arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// SizeCap is the maximum longer-side dimension, in pixels, for any payload
// sent to the generation service. References and padded canvases above the
// cap are downscaled, never upscaled.
const SizeCap = 1376

// JPEGQuality is the fixed re-encode quality for downscaled references.
const JPEGQuality = 92

// ErrNotDataURL indicates a payload string is not a data URL.
var ErrNotDataURL = errors.New("not a data URL")

// ErrUnsupportedImage indicates bytes that no registered decoder accepts.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Payload is a decoded raster payload: raw bytes plus their MIME type.
type Payload struct {
	MIME string
	Data []byte
}

// ParseDataURL splits a data URL into its MIME type and decoded bytes.
func ParseDataURL(src string) (Payload, error) {
	if !strings.HasPrefix(src, "data:") {
		return Payload{}, ErrNotDataURL
	}
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return Payload{}, fmt.Errorf("%w: missing separator", ErrNotDataURL)
	}
	meta := src[len("data:"):comma]
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == meta {
		return Payload{}, fmt.Errorf("%w: only base64 data URLs are supported", ErrNotDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(src[comma+1:])
	if err != nil {
		return Payload{}, fmt.Errorf("%w: decoding body: %v", ErrNotDataURL, err)
	}
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return Payload{MIME: mime, Data: data}, nil
}

// EncodeDataURL packs bytes and a MIME type into a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// NormalizeMIME maps generic or unspecified binary format tags onto an image
// format the generation service accepts. Anything already image/* passes
// through unchanged.
func NormalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case mime == "", mime == "application/octet-stream", mime == "binary/octet-stream":
		return "image/png"
	case strings.HasPrefix(mime, "image/"):
		return mime
	default:
		return "image/png"
	}
}

// ProbeSize returns the intrinsic pixel dimensions of an encoded image
// without decoding the full bitmap.
func ProbeSize(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return cfg.Width, cfg.Height, nil
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}
