package main

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"hackpulse/bento"
	"hackpulse/clock"
	"hackpulse/connect"
	"hackpulse/listing"
)

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in   string
		want colorful.Color
	}{
		{"255, 0, 0", colorful.Color{R: 1}},
		{"0,255,0", colorful.Color{G: 1}},
		{" 0 , 0 , 300 ", colorful.Color{B: 1}},
		{"red", colorMuted},
		{"1, 2", colorMuted},
	}
	for _, tt := range tests {
		if got := parseRGB(tt.in); !got.AlmostEqualRgb(tt.want) {
			t.Errorf("parseRGB(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func testScene(t *testing.T, cols int) (*scene, *clock.FakeClock) {
	t.Helper()
	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	opts := bento.DefaultOptions()
	opts.Rand = rand.New(rand.NewPCG(1, 2))
	s := newScene(cols, 40, bento.NewScheduler(c), opts)
	return s, c
}

func textLines(lines ...string) func() []string { return func() []string { return lines } }

func TestSceneLayout(t *testing.T) {
	s, _ := testScene(t, 120)
	sec := s.addSection("Hackathons", listing.ColorHackathons, "hackathon-card")
	s.setTiles(sec, []string{"1", "2", "3", "4"}, []func() []string{textLines("a"), textLines("b"), textLines("c"), textLines("d")})

	if len(sec.grid.Children()) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(sec.grid.Children()))
	}
	// three per row at 120 columns; the fourth wraps
	r0, r3 := sec.tiles[0].box.Rect(), sec.tiles[3].box.Rect()
	if r3.Left != r0.Left || r3.Top <= r0.Bottom() {
		t.Errorf("expected fourth card below the first, got %+v and %+v", r0, r3)
	}
	for i := 0; i < len(sec.tiles); i++ {
		for j := i + 1; j < len(sec.tiles); j++ {
			a, b := sec.tiles[i].box.Rect(), sec.tiles[j].box.Rect()
			if a.Left < b.Right() && b.Left < a.Right() && a.Top < b.Bottom() && b.Top < a.Bottom() {
				t.Errorf("cards %d and %d overlap", i, j)
			}
		}
	}
	if tl := s.tileAt(3, 2); tl == nil || tl.id != "1" {
		t.Errorf("expected tile 1 under (3,2), got %+v", tl)
	}
	if tl := s.tileAt(0, 0); tl != nil {
		t.Errorf("expected no tile on the title row, got %+v", tl)
	}
}

func TestSetTilesKeepsEffectsWhenIDsUnchanged(t *testing.T) {
	s, _ := testScene(t, 120)
	sec := s.addSection("Members", listing.ColorMembers, "magic-bento-card")
	s.setTiles(sec, []string{"a", "b"}, []func() []string{textLines("A"), textLines("B")})
	box := sec.tiles[0].box
	e, ok := s.binder.Effect(box)
	if !ok {
		t.Fatal("expected an attached effect")
	}

	s.setTiles(sec, []string{"a", "b"}, []func() []string{textLines("A2"), textLines("B")})
	if sec.tiles[0].box != box {
		t.Fatal("expected the card to be kept")
	}
	if e2, _ := s.binder.Effect(box); e2 != e {
		t.Error("expected the effect to be kept")
	}
	if got := sec.tiles[0].lines()[0]; got != "A2" {
		t.Errorf("expected text replaced, got %q", got)
	}

	s.setTiles(sec, []string{"b"}, []func() []string{textLines("B")})
	if _, ok := s.binder.Effect(box); ok {
		t.Error("expected the removed card to be detached")
	}
}

func TestHoverLightsCardBorder(t *testing.T) {
	s, c := testScene(t, 120)
	sec := s.addSection("Hackathons", listing.ColorHackathons, "hackathon-card")
	s.setTiles(sec, []string{"1"}, []func() []string{textLines("InnovateX")})

	before := newCanvas(120, 40)
	s.render(before)

	s.page.MovePointer(cellCenter(5, 3))
	s.sched.Tick()
	c.Advance(400 * time.Millisecond)
	s.sched.Tick()

	if got := sec.tiles[0].box.Property(bento.PropGlowIntensity); got != "1" {
		t.Fatalf("expected full intensity inside the card, got %q", got)
	}
	after := newCanvas(120, 40)
	s.render(after)

	r := sec.tiles[0].box.Rect()
	x, y := int(r.Left/cellW)+1, int(r.Top/cellH)
	i := y*120 + x
	if before.fg[i] != colorBorder {
		t.Errorf("expected idle border color before hover, got %v", before.fg[i])
	}
	if after.fg[i] == before.fg[i] {
		t.Error("expected the border to glow on hover")
	}
	if after.bg[0] == colorBackground {
		t.Error("expected the spotlight to tint the background")
	}
}

func newTestApp(t *testing.T) (*app, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(120, 40)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	opts := bento.DefaultOptions()
	opts.Rand = rand.New(rand.NewPCG(3, 4))
	sched := bento.NewScheduler(clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	a := newApp(ctx, screen, sched, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.members = connect.NewView(sampleBackend(),
		connect.WithConfirmer(connect.ConfirmFunc(a.confirm)),
		connect.WithOnChange(a.changed),
	)
	return a, screen
}

func waitRefresh(t *testing.T, a *app) {
	t.Helper()
	select {
	case <-a.refresh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a refresh")
	}
}

func tileIDs(a *app) []string {
	var ids []string
	for _, tl := range a.scene.sections[0].tiles {
		ids = append(ids, tl.id)
	}
	return ids
}

func TestMembersViewAndSearch(t *testing.T) {
	a, _ := newTestApp(t)
	a.show(viewMembers)
	waitRefresh(t, a)
	a.renderMembers()

	ids := tileIDs(a)
	if len(ids) != 5 || strings.Contains(strings.Join(ids, ","), "me") {
		t.Fatalf("expected five members without the viewer, got %v", ids)
	}

	labels := map[string]string{}
	for _, tl := range a.scene.sections[0].tiles {
		lines := tl.lines()
		labels[tl.id] = lines[len(lines)-1]
	}
	if labels["mike"] != "[ Requested ]" || labels["ana"] != "[ Message ]" || labels["sarah"] != "[ Connect ]" {
		t.Errorf("unexpected controls %v", labels)
	}

	a.key(tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone))
	for _, r := range "ana" {
		a.key(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	if ids := tileIDs(a); len(ids) != 1 || ids[0] != "ana" {
		t.Errorf("expected search to keep ana, got %v", ids)
	}
	a.key(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if a.searching {
		t.Error("expected enter to end the search")
	}
}

func TestWithdrawAsksForConfirmation(t *testing.T) {
	a, _ := newTestApp(t)
	a.show(viewMembers)
	waitRefresh(t, a)

	a.press("mike")
	var req *confirmRequest
	select {
	case req = <-a.prompts:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a confirmation prompt")
	}
	if req.prompt != connect.WithdrawPrompt {
		t.Errorf("expected withdraw prompt, got %q", req.prompt)
	}
	a.prompt = req
	a.key(tcell.NewEventKey(tcell.KeyRune, 'y', tcell.ModNone))

	deadline := time.Now().Add(2 * time.Second)
	for a.members.Machine().Control("mike").Label != connect.LabelConnect {
		if time.Now().After(deadline) {
			t.Fatalf("expected mike to be withdrawn, control %+v", a.members.Machine().Control("mike"))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDrawShowsStatusLine(t *testing.T) {
	a, screen := newTestApp(t)
	a.show(viewHackathons)
	a.draw()

	cells, w, h := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteString(string(cells[(h-1)*w+x].Runes))
	}
	if !strings.Contains(b.String(), "f filter") {
		t.Errorf("expected help on the status line, got %q", b.String())
	}
	if len(a.scene.sections) != 3 || len(a.scene.sections[0].tiles) != 3 {
		t.Errorf("expected three listing sections, got %d", len(a.scene.sections))
	}

	a.key(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone))
	if got := len(a.scene.sections[0].tiles); got != 1 {
		t.Errorf("expected the Online filter to keep one hackathon, got %d", got)
	}
}
