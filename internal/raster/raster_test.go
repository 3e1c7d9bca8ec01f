package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/promptboard/promptboard/internal/geometry"
)

// makePNG returns PNG bytes of a solid-color w×h image.
func makePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestParseDataURL_RoundTrip(t *testing.T) {
	t.Parallel()

	data := makePNG(t, 4, 4, color.NRGBA{R: 255, A: 255})
	src := EncodeDataURL("image/png", data)

	p, err := ParseDataURL(src)
	if err != nil {
		t.Fatalf("ParseDataURL: %v", err)
	}
	if p.MIME != "image/png" {
		t.Errorf("MIME = %q", p.MIME)
	}
	if !bytes.Equal(p.Data, data) {
		t.Error("payload bytes differ after round trip")
	}
}

func TestParseDataURL_Rejections(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"", "http://example.com/x.png", "data:image/png_no_comma"} {
		if _, err := ParseDataURL(src); !errors.Is(err, ErrNotDataURL) {
			t.Errorf("ParseDataURL(%q) err = %v, want ErrNotDataURL", src, err)
		}
	}
}

func TestNormalizeMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"image/jpeg", "image/jpeg"},
		{"image/webp", "image/webp"},
		{"application/octet-stream", "image/png"},
		{"binary/octet-stream", "image/png"},
		{"", "image/png"},
		{"text/plain", "image/png"},
	}
	for _, tt := range tests {
		if got := NormalizeMIME(tt.in); got != tt.want {
			t.Errorf("NormalizeMIME(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProbeSize(t *testing.T) {
	t.Parallel()

	w, h, err := ProbeSize(makePNG(t, 31, 17, color.NRGBA{A: 255}))
	if err != nil {
		t.Fatalf("ProbeSize: %v", err)
	}
	if w != 31 || h != 17 {
		t.Errorf("ProbeSize = %dx%d, want 31x17", w, h)
	}

	if _, _, err := ProbeSize([]byte("not an image")); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestDownscaleToCap_PassThroughUnderCap(t *testing.T) {
	t.Parallel()

	in := Payload{MIME: "image/png", Data: makePNG(t, 100, 50, color.NRGBA{A: 255})}
	out, err := DownscaleToCap(in, SizeCap)
	if err != nil {
		t.Fatalf("DownscaleToCap: %v", err)
	}
	if !bytes.Equal(out.Data, in.Data) || out.MIME != "image/png" {
		t.Error("under-cap payload should pass through untouched")
	}
}

func TestDownscaleToCap_ShrinksLongSide(t *testing.T) {
	t.Parallel()

	in := Payload{MIME: "image/png", Data: makePNG(t, 400, 100, color.NRGBA{B: 255, A: 255})}
	out, err := DownscaleToCap(in, 200)
	if err != nil {
		t.Fatalf("DownscaleToCap: %v", err)
	}
	w, h, err := ProbeSize(out.Data)
	if err != nil {
		t.Fatalf("ProbeSize: %v", err)
	}
	if w != 200 || h != 50 {
		t.Errorf("downscaled to %dx%d, want 200x50", w, h)
	}
	if out.MIME != "image/jpeg" {
		t.Errorf("MIME = %q, want image/jpeg", out.MIME)
	}
}

func TestPadToAspect_WidensAndCenters(t *testing.T) {
	t.Parallel()

	// 100x100 source into a 2:1 target: expect 200x100 with key color at
	// the left and right borders and source content in the middle.
	in := Payload{MIME: "image/png", Data: makePNG(t, 100, 100, color.NRGBA{R: 10, G: 20, B: 30, A: 255})}
	out, err := PadToAspect(in, 2.0, SizeCap)
	if err != nil {
		t.Fatalf("PadToAspect: %v", err)
	}
	w, h, err := ProbeSize(out.Data)
	if err != nil {
		t.Fatal(err)
	}
	if w != 200 || h != 100 {
		t.Fatalf("padded to %dx%d, want 200x100", w, h)
	}

	img, _, err := image.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(5, 50).RGBA()
	if r != 0 || g != 0xffff || b != 0 {
		t.Errorf("left border not chroma key: r=%d g=%d b=%d", r, g, b)
	}
	r, g, b, _ = img.At(100, 50).RGBA()
	if g == 0xffff && r == 0 {
		t.Error("center should contain source pixels, found chroma key")
	}
}

func TestPadToAspect_RespectsCap(t *testing.T) {
	t.Parallel()

	in := Payload{MIME: "image/png", Data: makePNG(t, 1000, 1000, color.NRGBA{A: 255})}
	out, err := PadToAspect(in, 16.0/9.0, 800)
	if err != nil {
		t.Fatalf("PadToAspect: %v", err)
	}
	w, h, err := ProbeSize(out.Data)
	if err != nil {
		t.Fatal(err)
	}
	if w > 800 || h > 800 {
		t.Errorf("padded canvas exceeds cap: %dx%d", w, h)
	}
}

func TestApplyStroke_PenThenErase(t *testing.T) {
	t.Parallel()

	pen := Stroke{
		Points: []geometry.Point{{X: 10, Y: 10}, {X: 40, Y: 10}},
		Width:  8,
		Color:  color.NRGBA{R: 255, A: 255},
	}
	out, err := ApplyStroke(Payload{}, 64, 64, pen)
	if err != nil {
		t.Fatalf("ApplyStroke(pen): %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(25, 10).RGBA(); a == 0 {
		t.Error("pen stroke left no paint along the segment")
	}
	if _, _, _, a := img.At(60, 60).RGBA(); a != 0 {
		t.Error("paint appeared outside the stroke")
	}

	erase := Stroke{
		Points: []geometry.Point{{X: 10, Y: 10}, {X: 40, Y: 10}},
		Width:  12,
		Erase:  true,
	}
	out, err = ApplyStroke(out, 64, 64, erase)
	if err != nil {
		t.Fatalf("ApplyStroke(erase): %v", err)
	}
	img, _, err = image.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(25, 10).RGBA(); a != 0 {
		t.Error("eraser did not clear painted pixels")
	}
}

func TestNewBlank(t *testing.T) {
	t.Parallel()

	p, err := NewBlank(32, 16)
	if err != nil {
		t.Fatal(err)
	}
	w, h, err := ProbeSize(p.Data)
	if err != nil {
		t.Fatal(err)
	}
	if w != 32 || h != 16 {
		t.Errorf("blank is %dx%d, want 32x16", w, h)
	}
}
