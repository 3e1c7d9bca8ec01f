// Package geometry provides the canvas-space coordinate model: points,
// rectangles, and the pan/zoom transform mapping canvas space to screen space.
package geometry

import "math"

// Scale limits for the canvas transform.
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// Point is a 2D point with floating-point coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Rect is an axis-aligned rectangle in canvas space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersects reports whether two rectangles overlap. Marquee selection uses
// overlap, not containment: touching the drag rectangle is enough.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Normalized returns an equivalent rectangle with non-negative width and
// height, flipping the origin as needed. Marquee drags can go in any
// direction, so hit tests normalize first.
func (r Rect) Normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Transform is the affine pan/zoom mapping from canvas space to screen space.
// Invariant: Scale > 0.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity returns the neutral transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ScreenToCanvas maps a screen-space point into canvas space.
func ScreenToCanvas(p Point, t Transform) Point {
	return Point{
		X: (p.X - t.X) / t.Scale,
		Y: (p.Y - t.Y) / t.Scale,
	}
}

// CanvasToScreen maps a canvas-space point into screen space.
func CanvasToScreen(p Point, t Transform) Point {
	return Point{
		X: p.X*t.Scale + t.X,
		Y: p.Y*t.Scale + t.Y,
	}
}

// PanBy translates the transform origin by a screen-space delta.
func PanBy(delta Point, t Transform) Transform {
	t.X += delta.X
	t.Y += delta.Y
	return t
}

// ZoomAt rescales the transform by factor, anchored at a screen point: the
// canvas-space point under the cursor stays under the cursor afterwards.
// The resulting scale is clamped to [MinScale, MaxScale].
func ZoomAt(anchor Point, factor float64, t Transform) Transform {
	newScale := clampScale(t.Scale * factor)
	ratio := newScale / t.Scale
	return Transform{
		X:     anchor.X - (anchor.X-t.X)*ratio,
		Y:     anchor.Y - (anchor.Y-t.Y)*ratio,
		Scale: newScale,
	}
}

func clampScale(s float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, s))
}
