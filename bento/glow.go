package bento

import "math"

const (
	DefaultSpotlightRadius = 300.0
	MaxSpotlightOpacity    = 0.8
)

// CardGlow is the published glow state of one card for one pointer
// sample. OriginX and OriginY are percentages of the card's width and
// height; they may fall outside 0..100 when the pointer is off the card.
type CardGlow struct {
	Intensity float64
	OriginX   float64
	OriginY   float64
}

// Field is the glow state of a whole grid for one pointer sample.
type Field struct {
	// Inside is false when the pointer is outside the grid or the grid
	// has no area. Every intensity and the opacity are then zero and the
	// origins are left unset.
	Inside bool
	Cards  []CardGlow
	// Opacity is the ambient spotlight opacity, 0..MaxSpotlightOpacity.
	Opacity float64
	// MinDistance is the smallest edge distance over all cards, +Inf
	// when there are none.
	MinDistance float64
}

// Thresholds returns the full-intensity and zero-intensity distances for
// a spotlight radius.
func Thresholds(radius float64) (proximity, fadeDistance float64) {
	return radius * 0.5, radius * 0.75
}

// EdgeDistance approximates the distance from p to the card's edge by
// subtracting half of the card's larger side from the center distance.
// It is clamped at zero.
func EdgeDistance(p Point, card Rect) float64 {
	c := card.Center()
	d := math.Hypot(p.X-c.X, p.Y-c.Y) - math.Max(card.Width, card.Height)/2
	return math.Max(0, d)
}

// Intensity maps an edge distance to 0..1: 1 inside proximity, a linear
// ramp down to 0 at the fade distance, 0 beyond.
func Intensity(distance, radius float64) float64 {
	proximity, fade := Thresholds(radius)
	switch {
	case distance <= proximity:
		return 1
	case distance <= fade && fade > proximity:
		return (fade - distance) / (fade - proximity)
	default:
		return 0
	}
}

// ComputeField evaluates the glow of every card for one pointer sample.
// cards are absolute rects in the same space as pointer and grid. The
// result has one entry per card, in the same order.
func ComputeField(pointer Point, grid Rect, cards []Rect, radius float64) Field {
	f := Field{Cards: make([]CardGlow, len(cards)), MinDistance: math.Inf(1)}
	if grid.Empty() || !grid.Contains(pointer) {
		return f
	}
	f.Inside = true

	for i, r := range cards {
		d := EdgeDistance(pointer, r)
		f.MinDistance = math.Min(f.MinDistance, d)
		f.Cards[i] = CardGlow{
			Intensity: Intensity(d, radius),
			OriginX:   percentOf(pointer.X-r.Left, r.Width),
			OriginY:   percentOf(pointer.Y-r.Top, r.Height),
		}
	}
	if len(cards) > 0 {
		f.Opacity = Intensity(f.MinDistance, radius) * MaxSpotlightOpacity
	}
	return f
}

func percentOf(offset, size float64) float64 {
	if size <= 0 {
		return 50
	}
	return offset / size * 100
}
