package bento

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// MobileBreakpoint is the widest viewport treated as a touch device.
const MobileBreakpoint = 768

const (
	enterTilt       = 5
	maxTilt         = 10
	magnetism       = 0.05
	settleDuration  = 300 * time.Millisecond
	followDuration  = 100 * time.Millisecond
	fadeInDuration  = 200 * time.Millisecond
	fadeOutDuration = 500 * time.Millisecond
)

type Options struct {
	Radius            float64
	GlowColor         string
	ParticleCount     int
	EnableSpotlight   bool
	EnableStars       bool
	EnableTilt        bool
	EnableMagnetism   bool
	ClickEffect       bool
	DisableAnimations bool
	// Classes selects cards inside bound grids. Defaults to CardClasses.
	Classes []string
	// Rand seeds particle layouts. Nil uses a random seed per card.
	Rand *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		Radius:          DefaultSpotlightRadius,
		GlowColor:       DefaultGlowColor,
		ParticleCount:   DefaultParticleCount,
		EnableSpotlight: true,
		EnableStars:     true,
		EnableTilt:      true,
		EnableMagnetism: true,
		ClickEffect:     true,
		Classes:         CardClasses,
	}
}

// Binder wires the glow field and particle effects to grids and cards.
// Like Scheduler it must be driven from a single goroutine.
type Binder struct {
	doc      Document
	sched    *Scheduler
	opts     Options
	disabled bool
	effects  map[Card]*CardEffect
}

// NewBinder evaluates the device gate once: later viewport changes do not
// turn animations on or off.
func NewBinder(doc Document, sched *Scheduler, opts Options) *Binder {
	if opts.Radius <= 0 {
		opts.Radius = DefaultSpotlightRadius
	}
	if opts.GlowColor == "" {
		opts.GlowColor = DefaultGlowColor
	}
	if len(opts.Classes) == 0 {
		opts.Classes = CardClasses
	}
	return &Binder{
		doc:      doc,
		sched:    sched,
		opts:     opts,
		disabled: opts.DisableAnimations || doc.ViewportWidth() <= MobileBreakpoint,
		effects:  map[Card]*CardEffect{},
	}
}

// Disabled reports whether animations were gated off at bind time.
func (b *Binder) Disabled() bool { return b.disabled }

// Spotlight is the ambient glow bound to one grid.
type Spotlight struct {
	b      *Binder
	grid   Grid
	el     Element
	latest Point
	frame  *Timer
	field  Field

	x, y, opacity float64
	follow, fade  *Tween
	removers      []func()
}

// BindGrid registers the ambient pointer listeners for grid. color is the
// spotlight tint; empty uses the binder's glow color. The returned
// Spotlight is inert when animations are disabled or the spotlight is off.
func (b *Binder) BindGrid(grid Grid, color string) *Spotlight {
	s := &Spotlight{b: b, grid: grid}
	if b.disabled || !b.opts.EnableSpotlight || grid == nil {
		return s
	}
	if color == "" {
		color = b.opts.GlowColor
	}
	s.el = b.doc.Spotlight(color)
	s.el.SetProperty(PropSpotlightOpacity, "0")
	s.removers = append(s.removers,
		b.doc.AddListener(PointerMove, s.onMove),
		b.doc.AddListener(PointerLeave, func(Event) { s.onLeave() }),
	)
	return s
}

// Field returns the glow field of the last processed pointer sample.
func (s *Spotlight) Field() Field { return s.field }

// Opacity returns the spotlight's current animated opacity.
func (s *Spotlight) Opacity() float64 { return s.opacity }

// Close removes the ambient listeners and stops spotlight animations.
func (s *Spotlight) Close() {
	for _, rm := range s.removers {
		rm()
	}
	s.removers = nil
	s.frame.Stop()
	s.follow.Kill()
	s.fade.Kill()
}

// onMove keeps only the latest sample; the field is computed once per
// frame no matter how many moves arrive in between.
func (s *Spotlight) onMove(ev Event) {
	s.latest = ev.Point
	if !s.frame.Pending() {
		s.frame = s.b.sched.After(0, s.flush)
	}
}

func (s *Spotlight) flush() {
	cards := s.grid.Query(s.b.opts.Classes...)
	rects := make([]Rect, len(cards))
	for i, c := range cards {
		rects[i] = c.Rect()
	}
	s.field = ComputeField(s.latest, s.grid.Rect(), rects, s.b.opts.Radius)

	if !s.field.Inside {
		for _, c := range cards {
			c.SetProperty(PropGlowIntensity, "0")
		}
		s.fadeTo(0, settleDuration)
		return
	}

	radius := formatFloat(s.b.opts.Radius) + "px"
	for i, c := range cards {
		g := s.field.Cards[i]
		c.SetProperty(PropGlowX, formatFloat(g.OriginX)+"%")
		c.SetProperty(PropGlowY, formatFloat(g.OriginY)+"%")
		c.SetProperty(PropGlowIntensity, formatFloat(g.Intensity))
		c.SetProperty(PropGlowRadius, radius)
	}
	s.followTo(s.latest)
	if s.field.Opacity > 0 {
		s.fadeTo(s.field.Opacity, fadeInDuration)
	} else {
		s.fadeTo(0, fadeOutDuration)
	}
}

func (s *Spotlight) onLeave() {
	s.frame.Stop()
	for _, c := range s.grid.Query(s.b.opts.Classes...) {
		c.SetProperty(PropGlowIntensity, "0")
	}
	s.field = Field{}
	s.fadeTo(0, settleDuration)
}

func (s *Spotlight) followTo(p Point) {
	s.follow.Kill()
	fx, fy := s.x, s.y
	s.follow = s.b.sched.Tween(TweenSpec{
		Duration: followDuration,
		Ease:     PowerOut,
		Update: func(v float64) {
			s.x, s.y = lerp(fx, p.X, v), lerp(fy, p.Y, v)
			s.el.SetProperty(PropSpotlightX, formatFloat(s.x))
			s.el.SetProperty(PropSpotlightY, formatFloat(s.y))
		},
	})
}

func (s *Spotlight) fadeTo(target float64, d time.Duration) {
	s.fade.Kill()
	from := s.opacity
	s.fade = s.b.sched.Tween(TweenSpec{
		Duration: d,
		Ease:     PowerOut,
		Update: func(v float64) {
			s.opacity = lerp(from, target, v)
			s.el.SetProperty(PropSpotlightOpacity, formatFloat(s.opacity))
		},
	})
}

// CardOptions configures the per-card effects. Zero values fall back to
// the binder's options via Binder.CardOptions.
type CardOptions struct {
	Color           string
	ParticleCount   int
	EnableStars     bool
	EnableTilt      bool
	EnableMagnetism bool
	ClickEffect     bool
}

// CardOptions returns the binder defaults for cards tinted with color.
func (b *Binder) CardOptions(color string) CardOptions {
	if color == "" {
		color = b.opts.GlowColor
	}
	return CardOptions{
		Color:           color,
		ParticleCount:   b.opts.ParticleCount,
		EnableStars:     b.opts.EnableStars,
		EnableTilt:      b.opts.EnableTilt,
		EnableMagnetism: b.opts.EnableMagnetism,
		ClickEffect:     b.opts.ClickEffect,
	}
}

// CardEffect holds the listeners and animations attached to one card.
type CardEffect struct {
	b         *Binder
	card      Card
	grid      Grid
	opts      CardOptions
	particles *ParticleCard
	transform Transform
	tilt      *Tween
	magnet    *Tween
	removers  []func()
}

// Attach tints card and, unless animations are disabled, registers its
// enter, leave, move and click listeners. Attaching an already attached
// card returns the existing effect.
func (b *Binder) Attach(card Card, opts CardOptions) *CardEffect {
	return b.attach(card, nil, opts)
}

func (b *Binder) attach(card Card, grid Grid, opts CardOptions) *CardEffect {
	if e, ok := b.effects[card]; ok {
		return e
	}
	if opts.Color == "" {
		opts.Color = b.opts.GlowColor
	}
	e := &CardEffect{b: b, card: card, grid: grid, opts: opts}
	b.effects[card] = e
	card.SetProperty(PropGlowColor, opts.Color)
	if b.disabled || !opts.EnableStars {
		return e
	}

	e.particles = NewParticleCard(card, b.sched, ParticleOptions{
		Count: opts.ParticleCount,
		Color: opts.Color,
		Rand:  b.opts.Rand,
	})
	e.removers = append(e.removers,
		card.AddListener(PointerEnter, func(Event) { e.enter() }),
		card.AddListener(PointerLeave, func(Event) { e.leave() }),
		card.AddListener(PointerMove, e.move),
		card.AddListener(Click, e.click),
	)
	return e
}

// Sync attaches every card currently in grid and detaches effects of
// cards that a re-render removed from it.
func (b *Binder) Sync(grid Grid, opts CardOptions) {
	present := map[Card]bool{}
	for _, c := range grid.Query(b.opts.Classes...) {
		present[c] = true
		b.attach(c, grid, opts)
	}
	for c, e := range b.effects {
		if e.grid == grid && !present[c] {
			e.Detach()
		}
	}
}

// Effect returns the effect attached to card, if any.
func (b *Binder) Effect(card Card) (*CardEffect, bool) {
	e, ok := b.effects[card]
	return e, ok
}

// Particles is nil when the card has no particle effect.
func (e *CardEffect) Particles() *ParticleCard { return e.particles }

// Detach removes the card's listeners and stops everything it animates.
func (e *CardEffect) Detach() {
	for _, rm := range e.removers {
		rm()
	}
	e.removers = nil
	if e.particles != nil {
		e.particles.Close()
	}
	e.tilt.Kill()
	e.magnet.Kill()
	delete(e.b.effects, e.card)
}

func (e *CardEffect) enter() {
	e.particles.Enter()
	if e.opts.EnableTilt {
		e.tiltTo(enterTilt, enterTilt, settleDuration)
	}
}

func (e *CardEffect) leave() {
	e.particles.Leave()
	if e.opts.EnableTilt {
		e.tiltTo(0, 0, settleDuration)
	}
	if e.opts.EnableMagnetism {
		e.magnetTo(0, 0, settleDuration)
	}
}

func (e *CardEffect) move(ev Event) {
	if !e.opts.EnableTilt && !e.opts.EnableMagnetism {
		return
	}
	r := e.card.Rect()
	local := r.Local(ev.Point)
	cx, cy := r.Width/2, r.Height/2
	if cx <= 0 || cy <= 0 {
		return
	}
	if e.opts.EnableTilt {
		e.tiltTo(((local.Y-cy)/cy)*-maxTilt, ((local.X-cx)/cx)*maxTilt, followDuration)
	}
	if e.opts.EnableMagnetism {
		e.magnetTo((local.X-cx)*magnetism, (local.Y-cy)*magnetism, settleDuration)
	}
}

func (e *CardEffect) click(ev Event) {
	if e.opts.ClickEffect {
		e.particles.Ripple(ev.Point)
	}
}

func (e *CardEffect) tiltTo(rx, ry float64, d time.Duration) {
	e.tilt.Kill()
	from := e.transform
	e.tilt = e.b.sched.Tween(TweenSpec{
		Duration: d,
		Ease:     PowerOut,
		Update: func(v float64) {
			e.transform.RotateX = lerp(from.RotateX, rx, v)
			e.transform.RotateY = lerp(from.RotateY, ry, v)
			e.card.SetTransform(e.transform)
		},
	})
}

func (e *CardEffect) magnetTo(tx, ty float64, d time.Duration) {
	e.magnet.Kill()
	from := e.transform
	e.magnet = e.b.sched.Tween(TweenSpec{
		Duration: d,
		Ease:     PowerOut,
		Update: func(v float64) {
			e.transform.TranslateX = lerp(from.TranslateX, tx, v)
			e.transform.TranslateY = lerp(from.TranslateY, ty, v)
			e.card.SetTransform(e.transform)
		},
	})
}

// Transform returns the card's current tilt and magnetism.
func (e *CardEffect) Transform() Transform { return e.transform }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
