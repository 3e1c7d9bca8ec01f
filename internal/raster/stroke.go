package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/promptboard/promptboard/internal/geometry"
)

// Stroke is one completed freehand gesture in buffer pixel coordinates.
// Width is the brush diameter in buffer pixels. Callers scale it by the
// ratio of the buffer's intrinsic resolution to its displayed size so the
// visual width matches intent at any zoom.
type Stroke struct {
	Points []geometry.Point
	Width  float64
	Color  color.NRGBA
	Erase  bool
}

// NewBlank returns a transparent PNG payload of the given dimensions, the
// starting state for drawing surfaces and paint masks.
func NewBlank(width, height int) (Payload, error) {
	data, err := encodePNG(image.NewNRGBA(image.Rect(0, 0, width, height)))
	if err != nil {
		return Payload{}, err
	}
	return Payload{MIME: "image/png", Data: data}, nil
}

// ApplyStroke composites a stroke into a raster buffer and returns the
// re-encoded PNG. Pen strokes paint with source-over compositing; eraser
// strokes punch out alpha (destination-out). An empty base payload starts
// from a transparent width×height buffer.
func ApplyStroke(base Payload, width, height int, s Stroke) (Payload, error) {
	var dst *image.NRGBA
	if len(base.Data) == 0 {
		dst = image.NewNRGBA(image.Rect(0, 0, width, height))
	} else {
		img, err := decode(base.Data)
		if err != nil {
			return Payload{}, err
		}
		dst = toNRGBA(img)
	}

	if len(s.Points) > 0 {
		radius := math.Max(s.Width/2, 0.5)
		prev := s.Points[0]
		stampDisc(dst, prev, radius, s.Color, s.Erase)
		for _, p := range s.Points[1:] {
			stampSegment(dst, prev, p, radius, s.Color, s.Erase)
			prev = p
		}
	}

	data, err := encodePNG(dst)
	if err != nil {
		return Payload{}, err
	}
	return Payload{MIME: "image/png", Data: data}, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return dst
}

// stampSegment lays discs along the segment at sub-radius spacing so fast
// pointer moves still produce connected lines.
func stampSegment(dst *image.NRGBA, a, b geometry.Point, radius float64, c color.NRGBA, erase bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	step := math.Max(radius/2, 1)
	n := int(math.Ceil(dist / step))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		stampDisc(dst, geometry.Point{X: a.X + dx*t, Y: a.Y + dy*t}, radius, c, erase)
	}
}

func stampDisc(dst *image.NRGBA, center geometry.Point, radius float64, c color.NRGBA, erase bool) {
	b := dst.Bounds()
	minX := max(b.Min.X, int(math.Floor(center.X-radius)))
	maxX := min(b.Max.X-1, int(math.Ceil(center.X+radius)))
	minY := max(b.Min.Y, int(math.Floor(center.Y-radius)))
	maxY := min(b.Max.Y-1, int(math.Ceil(center.Y+radius)))

	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			ddx := float64(x) + 0.5 - center.X
			ddy := float64(y) + 0.5 - center.Y
			if ddx*ddx+ddy*ddy > r2 {
				continue
			}
			if erase {
				dst.SetNRGBA(x, y, color.NRGBA{})
			} else {
				dst.SetNRGBA(x, y, c)
			}
		}
	}
}
