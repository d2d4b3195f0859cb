package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"hackpulse/bento"
)

var (
	colorBackground = colorful.Color{R: 0.02, G: 0.02, B: 0.04}
	colorCard       = colorful.Color{R: 0.05, G: 0.05, B: 0.08}
	colorBorder     = colorful.Color{R: 0.22, G: 0.22, B: 0.28}
	colorText       = colorful.Color{R: 0.85, G: 0.85, B: 0.9}
	colorMuted      = colorful.Color{R: 0.5, G: 0.5, B: 0.56}
)

// parseRGB reads a glow color written as "r, g, b".
func parseRGB(s string) colorful.Color {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return colorMuted
	}
	var c [3]float64
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return colorMuted
		}
		c[i] = float64(min(max(v, 0), 255)) / 255
	}
	return colorful.Color{R: c[0], G: c[1], B: c[2]}
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func style(fg, bg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(bg))
}

func propFloat(b *bento.Box, name string) float64 {
	v := strings.TrimSuffix(strings.TrimSuffix(b.Property(name), "%"), "px")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func clamp01(v float64) float64 { return math.Min(1, math.Max(0, v)) }

// canvas buffers one frame so layers can blend before hitting the screen.
type canvas struct {
	w, h  int
	runes []rune
	fg    []colorful.Color
	bg    []colorful.Color
}

func newCanvas(w, h int) *canvas {
	n := w * h
	c := &canvas{w: w, h: h, runes: make([]rune, n), fg: make([]colorful.Color, n), bg: make([]colorful.Color, n)}
	for i := range n {
		c.runes[i] = ' '
		c.fg[i] = colorText
		c.bg[i] = colorBackground
	}
	return c
}

func (c *canvas) in(x, y int) bool { return x >= 0 && y >= 0 && x < c.w && y < c.h }

func (c *canvas) set(x, y int, r rune, fg colorful.Color) {
	if c.in(x, y) {
		c.runes[y*c.w+x] = r
		c.fg[y*c.w+x] = fg
	}
}

func (c *canvas) fill(x, y int, bg colorful.Color) {
	if c.in(x, y) {
		c.bg[y*c.w+x] = bg
	}
}

func (c *canvas) text(x, y, width int, s string, fg colorful.Color) {
	s = runewidth.Truncate(s, width, "…")
	for _, r := range s {
		c.set(x, y, r, fg)
		x += runewidth.RuneWidth(r)
	}
}

func (c *canvas) flush(screen tcell.Screen) {
	for y := range c.h {
		for x := range c.w {
			i := y*c.w + x
			screen.SetContent(x, y, c.runes[i], nil, style(c.fg[i], c.bg[i]))
		}
	}
}

// render draws the scene: spotlights under everything, then cards with
// their glow borders and sprites.
func (s *scene) render(c *canvas) {
	for _, sec := range s.sections {
		s.renderSpotlight(c, sec)
	}
	for _, sec := range s.sections {
		c.text(1, sec.top, s.cols-2, sec.title, parseRGB(sec.color))
		for _, t := range sec.tiles {
			s.renderCard(c, sec, t)
		}
	}
}

func (s *scene) renderSpotlight(c *canvas, sec *section) {
	if sec.light == nil {
		return
	}
	opacity := propFloat(sec.light, bento.PropSpotlightOpacity)
	if opacity <= 0 {
		return
	}
	tint := parseRGB(sec.color)
	sx := propFloat(sec.light, bento.PropSpotlightX)
	sy := propFloat(sec.light, bento.PropSpotlightY)
	for y := range c.h {
		for x := range c.w {
			p := cellCenter(x, y)
			f := opacity * (1 - math.Hypot(p.X-sx, p.Y-sy)/s.opts.Radius)
			if f > 0 {
				i := y*c.w + x
				c.bg[i] = c.bg[i].BlendRgb(tint, 0.3*f)
			}
		}
	}
}

func (s *scene) renderCard(c *canvas, sec *section, t *tile) {
	r := t.box.Rect()
	tr := t.box.Transform()
	x0 := int(math.Round((r.Left + tr.TranslateX) / cellW))
	y0 := int(math.Round((r.Top + tr.TranslateY) / cellH))
	w := int(math.Round(r.Width / cellW))
	h := int(math.Round(r.Height / cellH))
	if w < 2 || h < 2 {
		return
	}
	tint := parseRGB(t.box.Property(bento.PropGlowColor))
	intensity := clamp01(propFloat(t.box, bento.PropGlowIntensity))
	gx := r.Left + propFloat(t.box, bento.PropGlowX)/100*r.Width
	gy := r.Top + propFloat(t.box, bento.PropGlowY)/100*r.Height

	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			c.fill(x, y, colorCard)
		}
	}

	edge := func(x, y int) colorful.Color {
		p := cellCenter(x-x0, y-y0)
		p.X += r.Left
		p.Y += r.Top
		local := clamp01(1 - math.Hypot(p.X-gx, p.Y-gy)/s.opts.Radius)
		// tilt lights the edge leaning towards the viewer
		lean := 0.0
		switch {
		case x == x0+w-1:
			lean = tr.RotateY / 10
		case x == x0:
			lean = -tr.RotateY / 10
		case y == y0:
			lean = tr.RotateX / 10
		case y == y0+h-1:
			lean = -tr.RotateX / 10
		}
		f := clamp01(intensity*(0.4+0.6*local) + 0.25*lean)
		if f == 0 {
			return colorBorder
		}
		return colorBorder.BlendLab(tint, f)
	}
	for x := x0 + 1; x < x0+w-1; x++ {
		c.set(x, y0, '─', edge(x, y0))
		c.set(x, y0+h-1, '─', edge(x, y0+h-1))
	}
	for y := y0 + 1; y < y0+h-1; y++ {
		c.set(x0, y, '│', edge(x0, y))
		c.set(x0+w-1, y, '│', edge(x0+w-1, y))
	}
	c.set(x0, y0, '╭', edge(x0, y0))
	c.set(x0+w-1, y0, '╮', edge(x0+w-1, y0))
	c.set(x0, y0+h-1, '╰', edge(x0, y0+h-1))
	c.set(x0+w-1, y0+h-1, '╯', edge(x0+w-1, y0+h-1))

	for i, line := range t.lines() {
		if i >= h-2 {
			break
		}
		fg := colorText
		if i > 0 {
			fg = colorMuted
		}
		c.text(x0+2, y0+1+i, w-4, line, fg)
	}

	for _, sp := range t.box.Sprites() {
		switch sp.Kind {
		case bento.SpriteParticle:
			px := int(math.Floor((r.Left + tr.TranslateX + sp.X + sp.OffsetX + sp.Size/2) / cellW))
			py := int(math.Floor((r.Top + tr.TranslateY + sp.Y + sp.OffsetY + sp.Size/2) / cellH))
			if px > x0 && px < x0+w-1 && py > y0 && py < y0+h-1 {
				c.set(px, py, '•', colorCard.BlendRgb(parseRGB(sp.Color), clamp01(sp.Opacity*sp.Scale)))
			}
		case bento.SpriteRipple:
			radius := sp.Size / 2 * sp.Scale
			cx, cy := r.Left+sp.X+sp.Size/2, r.Top+sp.Y+sp.Size/2
			for y := y0 + 1; y < y0+h-1; y++ {
				for x := x0 + 1; x < x0+w-1; x++ {
					p := cellCenter(x-x0, y-y0)
					d := math.Hypot(p.X+r.Left-cx, p.Y+r.Top-cy)
					if math.Abs(d-radius) < cellW {
						i := y*c.w + x
						if c.in(x, y) {
							c.bg[i] = c.bg[i].BlendRgb(parseRGB(sp.Color), 0.5*clamp01(sp.Opacity))
						}
					}
				}
			}
		}
	}
}
