package refpack

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/promptboard/promptboard/internal/document"
	"github.com/promptboard/promptboard/internal/raster"
)

func testSrc(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return raster.EncodeDataURL("image/png", buf.Bytes())
}

func addImage(t *testing.T, d *document.Document, id string, x, w, h float64, selected bool) {
	t.Helper()
	err := d.AddImage(document.ImageObject{
		ID: id, Src: testSrc(t, 8, 8),
		X: x, Width: w, Height: h,
		NaturalWidth: 8, NaturalHeight: 8,
		Classification: document.ClassOriginal,
	})
	if err != nil {
		t.Fatal(err)
	}
	if selected {
		if err := d.Select(id); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuild_OrdersByAscendingX(t *testing.T) {
	t.Parallel()

	d := document.New()
	addImage(t, d, "x50", 50, 100, 100, true)
	addImage(t, d, "x10", 10, 100, 100, true)
	addImage(t, d, "x30", 30, 100, 100, true)

	packed, err := Build(d, "1:1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantIDs := []string{"x10", "x30", "x50"}
	if len(packed.References) != 3 {
		t.Fatalf("got %d references, want 3", len(packed.References))
	}
	for i, ref := range packed.References {
		if ref.ID != wantIDs[i] {
			t.Errorf("reference %d = %s, want %s", i, ref.ID, wantIDs[i])
		}
		if ref.Order != i+1 {
			t.Errorf("reference %s order = %d, want %d", ref.ID, ref.Order, i+1)
		}
	}
	if packed.IsSingleItem {
		t.Error("three references flagged as single item")
	}
}

func TestBuild_TextSelectionContributesNothing(t *testing.T) {
	t.Parallel()

	d := document.New()
	if err := d.AddText(document.TextObject{ID: "t", Content: "hello", Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if err := d.Select("t"); err != nil {
		t.Fatal(err)
	}

	packed, err := Build(d, "1:1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(packed.References) != 0 {
		t.Errorf("text-only selection should pack nothing, got %d", len(packed.References))
	}
}

func TestBuild_AspectRatioMatchDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		w, h   float64
		want   bool
	}{
		{"900x1600 against 9:16 matches", "9:16", 900, 1600, true},
		{"900x1600 against 1:1 does not", "1:1", 900, 1600, false},
		{"square against 1:1 matches", "1:1", 512, 512, true},
		{"slightly off within tolerance", "1:1", 1000, 1005, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := document.New()
			addImage(t, d, "only", 0, tt.w, tt.h, true)

			packed, err := Build(d, tt.target)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !packed.IsSingleItem {
				t.Fatal("expected single item")
			}
			if packed.IsMatchingAspectRatio != tt.want {
				t.Errorf("IsMatchingAspectRatio = %v, want %v", packed.IsMatchingAspectRatio, tt.want)
			}
		})
	}
}

func TestBuild_MaskOnlyOnSingleMatchingPath(t *testing.T) {
	t.Parallel()

	mask := testSrc(t, 8, 8)

	// Single matching item with a mask: mask packed.
	d := document.New()
	addImage(t, d, "a", 0, 100, 100, true)
	if err := d.UpdateImage("a", document.ImagePatch{MaskSrc: &mask}); err != nil {
		t.Fatal(err)
	}
	packed, err := Build(d, "1:1")
	if err != nil {
		t.Fatal(err)
	}
	if packed.Mask == nil {
		t.Error("mask missing on single-item matching path")
	}

	// Ratio mismatch: mask dropped.
	d = document.New()
	addImage(t, d, "a", 0, 100, 200, true)
	if err := d.UpdateImage("a", document.ImagePatch{MaskSrc: &mask}); err != nil {
		t.Fatal(err)
	}
	packed, err = Build(d, "1:1")
	if err != nil {
		t.Fatal(err)
	}
	if packed.Mask != nil {
		t.Error("mask packed on mismatched-ratio path")
	}

	// Multi-item: mask dropped.
	d = document.New()
	addImage(t, d, "a", 0, 100, 100, true)
	addImage(t, d, "b", 10, 100, 100, true)
	if err := d.UpdateImage("a", document.ImagePatch{MaskSrc: &mask}); err != nil {
		t.Fatal(err)
	}
	packed, err = Build(d, "1:1")
	if err != nil {
		t.Fatal(err)
	}
	if packed.Mask != nil {
		t.Error("mask packed on multi-reference path")
	}
}

func TestBuild_EmptyDrawingSkipped(t *testing.T) {
	t.Parallel()

	d := document.New()
	if err := d.AddDrawing(document.DrawingObject{ID: "blank", Width: 100, Height: 100}); err != nil {
		t.Fatal(err)
	}
	if err := d.Select("blank"); err != nil {
		t.Fatal(err)
	}

	packed, err := Build(d, "1:1")
	if err != nil {
		t.Fatal(err)
	}
	if len(packed.References) != 0 {
		t.Errorf("empty drawing surface should pack nothing, got %d refs", len(packed.References))
	}
}

func TestBuild_UnknownAspectRatio(t *testing.T) {
	t.Parallel()

	if _, err := Build(document.New(), "7:5"); err == nil {
		t.Error("expected error for unknown aspect ratio")
	}
}
