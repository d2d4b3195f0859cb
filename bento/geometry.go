package bento

import "math"

// Point is an absolute position in layout units.
type Point struct {
	X, Y float64
}

// Rect is a layout box. Width and Height are never negative for real
// elements; a zero-area rect is treated as not rendered.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains is inclusive on every edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Local converts an absolute point into coordinates relative to the
// rect's top-left corner.
func (r Rect) Local(p Point) Point {
	return Point{X: p.X - r.Left, Y: p.Y - r.Top}
}

// FarthestCorner returns the distance from a local point to the corner
// of the rect that is farthest away from it.
func (r Rect) FarthestCorner(local Point) float64 {
	return math.Max(
		math.Max(math.Hypot(local.X, local.Y), math.Hypot(local.X-r.Width, local.Y)),
		math.Max(math.Hypot(local.X, local.Y-r.Height), math.Hypot(local.X-r.Width, local.Y-r.Height)),
	)
}
