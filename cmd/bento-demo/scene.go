package main

import (
	"slices"

	"hackpulse/bento"
)

// Page units per terminal cell. Cells are roughly twice as tall as wide.
const (
	cellW = 10.0
	cellH = 20.0
)

const (
	cardRows = 6
	cardGap  = 2
)

// tile is one rendered card.
type tile struct {
	id    string
	box   *bento.Box
	lines func() []string
}

type section struct {
	title string
	color string
	class string
	grid  *bento.Box
	spot  *bento.Spotlight
	light *bento.Box
	top   int
	tiles []*tile
}

// scene lays sections of cards out on a bento.Page in terminal cells.
type scene struct {
	page       *bento.Page
	sched      *bento.Scheduler
	binder     *bento.Binder
	opts       bento.Options
	cols, rows int
	sections   []*section
}

func newScene(cols, rows int, sched *bento.Scheduler, opts bento.Options) *scene {
	page := bento.NewPage(float64(cols)*cellW, float64(rows)*cellH)
	return &scene{
		page:   page,
		sched:  sched,
		binder: bento.NewBinder(page, sched, opts),
		opts:   opts,
		cols:   cols,
		rows:   rows,
	}
}

func cellRect(x, y, w, h int) bento.Rect {
	return bento.Rect{Left: float64(x) * cellW, Top: float64(y) * cellH, Width: float64(w) * cellW, Height: float64(h) * cellH}
}

func cellCenter(x, y int) bento.Point {
	return bento.Point{X: (float64(x) + 0.5) * cellW, Y: (float64(y) + 0.5) * cellH}
}

func (s *scene) addSection(title, color, class string) *section {
	sec := &section{title: title, color: color, class: class, grid: s.page.NewGrid(bento.Rect{}, "bento-section")}
	before := len(s.page.Spotlights())
	sec.spot = s.binder.BindGrid(sec.grid, color)
	if lights := s.page.Spotlights(); len(lights) > before {
		sec.light = lights[len(lights)-1]
	}
	s.sections = append(s.sections, sec)
	return sec
}

// setTiles re-renders a section. When the ids are unchanged only the
// text is replaced, so running effects survive.
func (s *scene) setTiles(sec *section, ids []string, lines []func() []string) {
	old := make([]string, len(sec.tiles))
	for i, t := range sec.tiles {
		old[i] = t.id
	}
	if slices.Equal(old, ids) {
		for i, t := range sec.tiles {
			t.lines = lines[i]
		}
		return
	}
	sec.grid.Clear()
	sec.tiles = sec.tiles[:0]
	for i, id := range ids {
		sec.tiles = append(sec.tiles, &tile{id: id, box: sec.grid.AddCard(bento.Rect{}, sec.class), lines: lines[i]})
	}
	s.layout()
	s.binder.Sync(sec.grid, s.binder.CardOptions(sec.color))
}

func (s *scene) perRow() int {
	switch {
	case s.cols >= 100:
		return 3
	case s.cols >= 60:
		return 2
	}
	return 1
}

func (s *scene) layout() {
	perRow := s.perRow()
	w := (s.cols - 2 - cardGap*(perRow-1)) / perRow
	top := 0
	for _, sec := range s.sections {
		sec.top = top
		top++
		rows := max(1, (len(sec.tiles)+perRow-1)/perRow)
		h := rows*(cardRows+1) - 1
		sec.grid.Move(cellRect(1, top, s.cols-2, h))
		for i, t := range sec.tiles {
			x := 1 + (i%perRow)*(w+cardGap)
			y := top + (i/perRow)*(cardRows+1)
			t.box.Move(cellRect(x, y, w, cardRows))
		}
		top += h + 1
	}
}

func (s *scene) resize(cols, rows int) {
	s.cols, s.rows = cols, rows
	s.page.Resize(float64(cols)*cellW, float64(rows)*cellH)
	s.layout()
}

func (s *scene) tileAt(x, y int) *tile {
	p := cellCenter(x, y)
	for _, sec := range s.sections {
		for _, t := range sec.tiles {
			if t.box.Rect().Contains(p) {
				return t
			}
		}
	}
	return nil
}

// close releases every listener and animation the scene registered.
func (s *scene) close() {
	for _, sec := range s.sections {
		sec.spot.Close()
		sec.grid.Clear()
		s.binder.Sync(sec.grid, s.binder.CardOptions(sec.color))
	}
	s.sections = nil
}
