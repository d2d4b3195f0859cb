package bento

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"hackpulse/clock"
)

type binderFixture struct {
	page  *Page
	grid  *Box
	card  *Box
	far   *Box
	sched *Scheduler
	clock *clock.FakeClock
	b     *Binder
}

func newBinderFixture(t *testing.T, width float64, mutate ...func(*Options)) *binderFixture {
	t.Helper()
	s, c := newTestScheduler()
	page := NewPage(width, 800)
	grid := page.NewGrid(Rect{Width: 1000, Height: 600})
	card := grid.AddCard(Rect{Left: 100, Top: 100, Width: 200, Height: 100}, "hackathon-card")
	far := grid.AddCard(Rect{Left: 800, Top: 450, Width: 100, Height: 100}, "team-card")
	opts := DefaultOptions()
	opts.Rand = rand.New(rand.NewPCG(7, 11))
	for _, m := range mutate {
		m(&opts)
	}
	return &binderFixture{page: page, grid: grid, card: card, far: far, sched: s, clock: c, b: NewBinder(page, s, opts)}
}

func (f *binderFixture) settle(d time.Duration) {
	f.clock.Advance(d)
	f.sched.Tick()
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBinderDisabledOnNarrowViewport(t *testing.T) {
	f := newBinderFixture(t, MobileBreakpoint)
	if !f.b.Disabled() {
		t.Fatal("expected animations disabled at the breakpoint")
	}
	e := f.b.Attach(f.card, f.b.CardOptions(""))
	if got := f.card.Property(PropGlowColor); got != DefaultGlowColor {
		t.Errorf("expected glow color still applied, got %q", got)
	}
	if e.Particles() != nil || f.card.Listeners() != 0 {
		t.Errorf("expected no particle effect or listeners, got %d listeners", f.card.Listeners())
	}

	sp := f.b.BindGrid(f.grid, "")
	f.page.MovePointer(Point{X: 200, Y: 150})
	f.sched.Tick()
	if got := f.card.Property(PropGlowIntensity); got != "" {
		t.Errorf("expected no glow writes, got %q", got)
	}
	if len(f.page.Spotlights()) != 0 {
		t.Error("expected no spotlight element")
	}
	sp.Close()
}

func TestBinderRespectsDisableAnimations(t *testing.T) {
	f := newBinderFixture(t, 1280, func(o *Options) { o.DisableAnimations = true })
	if !f.b.Disabled() {
		t.Fatal("expected animations disabled")
	}
}

func TestBinderGateEvaluatedOnce(t *testing.T) {
	f := newBinderFixture(t, 1280)
	f.page.Resize(400, 800)
	f.b.Attach(f.card, f.b.CardOptions(""))
	if f.card.Listeners() != 4 {
		t.Errorf("expected card listeners after resize, got %d", f.card.Listeners())
	}
}

func TestSpotlightCoalescesPointerSamples(t *testing.T) {
	f := newBinderFixture(t, 1280)
	f.b.BindGrid(f.grid, "")

	f.page.MovePointer(Point{X: 900, Y: 500})
	f.page.MovePointer(Point{X: 600, Y: 300})
	f.page.MovePointer(Point{X: 200, Y: 150})
	if got := f.card.Property(PropGlowIntensity); got != "" {
		t.Fatalf("expected no writes before the frame, got %q", got)
	}
	if timers, _ := f.sched.Pending(); timers != 1 {
		t.Fatalf("expected one pending frame, got %d", timers)
	}

	f.sched.Tick()
	if got := f.card.Property(PropGlowIntensity); got != "1" {
		t.Errorf("expected intensity 1 from the last sample, got %q", got)
	}
	if x, y := f.card.Property(PropGlowX), f.card.Property(PropGlowY); x != "50%" || y != "50%" {
		t.Errorf("expected origin 50%%/50%%, got %s/%s", x, y)
	}
	if got := f.card.Property(PropGlowRadius); got != "300px" {
		t.Errorf("expected radius 300px, got %q", got)
	}
	if got := f.far.Property(PropGlowIntensity); got != "0" {
		t.Errorf("expected far card dark, got %q", got)
	}
}

func TestSpotlightFadesInAndFollows(t *testing.T) {
	f := newBinderFixture(t, 1280)
	sp := f.b.BindGrid(f.grid, "0, 255, 136")
	f.page.MovePointer(Point{X: 200, Y: 150})
	f.sched.Tick()
	f.settle(fadeInDuration)

	if !approx(sp.Opacity(), MaxSpotlightOpacity) {
		t.Errorf("expected opacity %v, got %v", MaxSpotlightOpacity, sp.Opacity())
	}
	el := f.page.Spotlights()[0]
	if got := el.Property(PropGlowColor); got != "0, 255, 136" {
		t.Errorf("expected spotlight tint, got %q", got)
	}
	if got := el.Property(PropSpotlightX); got != "200" {
		t.Errorf("expected spotlight x 200, got %q", got)
	}
	if got := el.Property(PropSpotlightOpacity); got != "0.8" {
		t.Errorf("expected opacity property 0.8, got %q", got)
	}
}

func TestSpotlightOutsideGridZeroesIntensity(t *testing.T) {
	f := newBinderFixture(t, 1280)
	sp := f.b.BindGrid(f.grid, "")
	f.page.MovePointer(Point{X: 200, Y: 150})
	f.sched.Tick()

	f.page.MovePointer(Point{X: 1200, Y: 700})
	f.sched.Tick()
	if sp.Field().Inside {
		t.Error("expected pointer outside grid")
	}
	for _, c := range []*Box{f.card, f.far} {
		if got := c.Property(PropGlowIntensity); got != "0" {
			t.Errorf("expected intensity 0, got %q", got)
		}
	}
	f.settle(time.Second)
	if sp.Opacity() != 0 {
		t.Errorf("expected spotlight hidden, got %v", sp.Opacity())
	}
}

func TestDocumentLeaveCancelsPendingFrame(t *testing.T) {
	f := newBinderFixture(t, 1280)
	f.b.BindGrid(f.grid, "")
	f.page.MovePointer(Point{X: 200, Y: 150})
	f.page.LeaveWindow()
	f.sched.Tick()
	if got := f.card.Property(PropGlowIntensity); got != "0" {
		t.Errorf("expected intensity 0 after leaving the window, got %q", got)
	}
}

func TestSpotlightCloseRemovesListeners(t *testing.T) {
	f := newBinderFixture(t, 1280)
	sp := f.b.BindGrid(f.grid, "")
	sp.Close()
	f.page.MovePointer(Point{X: 200, Y: 150})
	f.sched.Tick()
	if got := f.card.Property(PropGlowIntensity); got != "" {
		t.Errorf("expected no writes after close, got %q", got)
	}
}

func TestCardEffectHoverLifecycle(t *testing.T) {
	f := newBinderFixture(t, 1280)
	e := f.b.Attach(f.card, f.b.CardOptions(""))

	f.page.MovePointer(Point{X: 300, Y: 150})
	f.sched.Tick()
	if e.Particles().Live() != 1 {
		t.Fatalf("expected first particle on enter, got %d", e.Particles().Live())
	}
	f.settle(settleDuration)
	tr := e.Transform()
	if !approx(tr.RotateY, maxTilt) || !approx(tr.RotateX, 0) {
		t.Errorf("expected tilt (0, %d) at right edge, got (%v, %v)", maxTilt, tr.RotateX, tr.RotateY)
	}
	if !approx(tr.TranslateX, 100*magnetism) || !approx(tr.TranslateY, 0) {
		t.Errorf("expected magnetism (%v, 0), got (%v, %v)", 100*magnetism, tr.TranslateX, tr.TranslateY)
	}

	f.page.MovePointer(Point{X: 600, Y: 400})
	if n := len(f.card.Sprites()); n != 0 {
		t.Fatalf("expected particles removed on leave, got %d", n)
	}
	f.settle(settleDuration)
	if got := e.Transform(); got != (Transform{}) {
		t.Errorf("expected neutral transform after leave, got %+v", got)
	}
}

func TestCardEffectClickRipple(t *testing.T) {
	f := newBinderFixture(t, 1280)
	f.b.Attach(f.card, f.b.CardOptions(""))
	f.page.Click(Point{X: 150, Y: 120})
	sprites := f.card.Sprites()
	if len(sprites) != 1 || sprites[0].Kind != SpriteRipple {
		t.Fatalf("expected a ripple, got %+v", sprites)
	}
	f.settle(rippleDuration)
	if n := len(f.card.Sprites()); n != 0 {
		t.Errorf("expected ripple gone, got %d sprites", n)
	}
}

func TestCardEffectClickDisabled(t *testing.T) {
	f := newBinderFixture(t, 1280, func(o *Options) { o.ClickEffect = false })
	f.b.Attach(f.card, f.b.CardOptions(""))
	f.page.Click(Point{X: 150, Y: 120})
	if n := len(f.card.Sprites()); n != 0 {
		t.Errorf("expected no ripple, got %d sprites", n)
	}
}

func TestDetachStopsEverything(t *testing.T) {
	f := newBinderFixture(t, 1280)
	e := f.b.Attach(f.card, f.b.CardOptions(""))
	f.page.MovePointer(Point{X: 200, Y: 150})
	f.sched.Tick()
	f.settle(ParticleStagger)

	e.Detach()
	if f.card.Listeners() != 0 {
		t.Errorf("expected listeners removed, got %d", f.card.Listeners())
	}
	if timers, tweens := f.sched.Pending(); timers != 0 || tweens != 0 {
		t.Fatalf("expected nothing scheduled, got %d timers and %d tweens", timers, tweens)
	}
	mutations := f.card.Mutations()
	f.settle(5 * time.Second)
	if f.card.Mutations() != mutations {
		t.Error("card mutated after detach")
	}
	if _, ok := f.b.Effect(f.card); ok {
		t.Error("expected effect forgotten")
	}
}

func TestSyncFollowsGridRebuilds(t *testing.T) {
	f := newBinderFixture(t, 1280)
	opts := f.b.CardOptions("255, 215, 0")
	f.b.Sync(f.grid, opts)
	f.b.Sync(f.grid, opts)
	for _, c := range []*Box{f.card, f.far} {
		if c.Listeners() != 4 {
			t.Errorf("expected 4 listeners once, got %d", c.Listeners())
		}
		if got := c.Property(PropGlowColor); got != "255, 215, 0" {
			t.Errorf("expected winner tint, got %q", got)
		}
	}

	f.grid.Clear()
	fresh := f.grid.AddCard(Rect{Left: 10, Top: 10, Width: 50, Height: 50}, "winner-card")
	f.b.Sync(f.grid, opts)
	if _, ok := f.b.Effect(f.card); ok || f.card.Listeners() != 0 {
		t.Error("expected removed card detached")
	}
	if _, ok := f.b.Effect(fresh); !ok {
		t.Error("expected new card attached")
	}
}
