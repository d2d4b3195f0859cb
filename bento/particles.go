package bento

import (
	"math/rand/v2"
	"time"
)

const (
	DefaultParticleCount = 12
	DefaultGlowColor     = "132, 0, 255"
	ParticleStagger      = 100 * time.Millisecond
	particleSize         = 4
	rippleDuration       = 800 * time.Millisecond
)

type ParticleOptions struct {
	Count   int
	Color   string
	Stagger time.Duration
	// Rand drives particle placement and drift. Nil uses a random seed.
	Rand *rand.Rand
}

type particle struct {
	sprite *Sprite
	tweens []*Tween
}

// ParticleCard runs the hover particle effect of one card.
//
// States are idle and hovered. Enter starts a staggered introduction of
// the memoized pool; Leave stops every pending introduction, kills every
// loop and unmounts every particle before it returns.
type ParticleCard struct {
	card  Card
	sched *Scheduler
	opts  ParticleOptions

	pool    []Sprite
	hovered bool
	timers  []*Timer
	live    []*particle
	ripples map[*Sprite]*Tween
	spawned int
}

func NewParticleCard(card Card, sched *Scheduler, opts ParticleOptions) *ParticleCard {
	if opts.Count <= 0 {
		opts.Count = DefaultParticleCount
	}
	if opts.Color == "" {
		opts.Color = DefaultGlowColor
	}
	if opts.Stagger <= 0 {
		opts.Stagger = ParticleStagger
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ParticleCard{card: card, sched: sched, opts: opts, ripples: map[*Sprite]*Tween{}}
}

func (p *ParticleCard) Hovered() bool { return p.hovered }

// Live returns the number of particles currently mounted.
func (p *ParticleCard) Live() int { return len(p.live) }

// Spawned returns how many particles the current session introduced.
func (p *ParticleCard) Spawned() int { return p.spawned }

// Pool returns a copy of the memoized particle templates.
func (p *ParticleCard) Pool() []Sprite { return append([]Sprite(nil), p.pool...) }

func (p *ParticleCard) initPool() {
	if p.pool != nil {
		return
	}
	r := p.card.Rect()
	p.pool = make([]Sprite, p.opts.Count)
	for i := range p.pool {
		p.pool[i] = Sprite{
			Kind:    SpriteParticle,
			X:       p.opts.Rand.Float64() * r.Width,
			Y:       p.opts.Rand.Float64() * r.Height,
			Size:    particleSize,
			Color:   p.opts.Color,
			Scale:   1,
			Opacity: 1,
		}
	}
}

// Enter starts a hover session. Calling it while hovered does nothing.
func (p *ParticleCard) Enter() {
	if p.hovered {
		return
	}
	p.hovered = true
	p.spawned = 0
	p.initPool()
	for i := range p.pool {
		tmpl := p.pool[i]
		p.timers = append(p.timers, p.sched.After(time.Duration(i)*p.opts.Stagger, func() {
			p.spawn(tmpl)
		}))
	}
}

func (p *ParticleCard) spawn(tmpl Sprite) {
	if !p.hovered || p.spawned >= len(p.pool) {
		return
	}
	p.spawned++
	s := tmpl
	s.Scale = 0
	p.card.Mount(&s)

	rnd := p.opts.Rand
	dx := (rnd.Float64() - 0.5) * 100
	dy := (rnd.Float64() - 0.5) * 100
	rot := rnd.Float64() * 360
	drift := time.Duration((2 + rnd.Float64()*2) * float64(time.Second))

	pt := &particle{sprite: &s}
	pt.tweens = append(pt.tweens,
		p.sched.Tween(TweenSpec{
			Duration: 300 * time.Millisecond,
			Ease:     BackOut,
			Update:   func(v float64) { s.Scale = v },
		}),
		p.sched.Tween(TweenSpec{
			Duration: drift,
			Repeat:   Forever,
			Yoyo:     true,
			Update: func(v float64) {
				s.OffsetX = dx * v
				s.OffsetY = dy * v
				s.Rotation = rot * v
			},
		}),
		p.sched.Tween(TweenSpec{
			Duration: 1500 * time.Millisecond,
			Ease:     PowerInOut,
			Repeat:   Forever,
			Yoyo:     true,
			Update:   func(v float64) { s.Opacity = lerp(1, 0.3, v) },
		}),
	)
	p.live = append(p.live, pt)
}

// Leave ends the hover session. No particle is mounted and no particle
// timer or loop is alive when it returns.
func (p *ParticleCard) Leave() {
	p.hovered = false
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = nil
	for _, pt := range p.live {
		for _, tw := range pt.tweens {
			tw.Kill()
		}
		p.card.Unmount(pt.sprite)
	}
	p.live = nil
	p.spawned = 0
}

// Ripple mounts an expanding ring at an absolute point. The ring covers
// the card's farthest corner and removes itself when done.
func (p *ParticleCard) Ripple(at Point) {
	r := p.card.Rect()
	local := r.Local(at)
	radius := r.FarthestCorner(local)
	s := &Sprite{
		Kind:  SpriteRipple,
		X:     local.X - radius,
		Y:     local.Y - radius,
		Size:  radius * 2,
		Color: p.opts.Color,
	}
	p.card.Mount(s)
	p.ripples[s] = p.sched.Tween(TweenSpec{
		Duration: rippleDuration,
		Ease:     PowerOut,
		Update: func(v float64) {
			s.Scale = v
			s.Opacity = 1 - v
		},
		Complete: func() {
			delete(p.ripples, s)
			p.card.Unmount(s)
		},
	})
}

// Close ends the session and drops in-flight ripples. Used when the card
// is detached from its grid.
func (p *ParticleCard) Close() {
	p.Leave()
	for s, tw := range p.ripples {
		tw.Kill()
		p.card.Unmount(s)
	}
	clear(p.ripples)
}
