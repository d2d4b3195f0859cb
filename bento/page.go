package bento

import "slices"

// Page is an in-memory document for hosts without a DOM, such as the
// terminal preview, and for tests. It hit-tests pointer input against
// its grids and dispatches card enter, leave, move and click events.
type Page struct {
	width, height float64
	listeners     listenerSet
	grids         []*Box
	spotlights    []*Box
	hovered       map[*Box]bool
}

func NewPage(width, height float64) *Page {
	return &Page{width: width, height: height, hovered: map[*Box]bool{}}
}

func (p *Page) AddListener(kind EventKind, fn Listener) func() {
	return p.listeners.add(kind, fn)
}

func (p *Page) ViewportWidth() float64 { return p.width }

// Resize changes the viewport. Binders already created keep the device
// class they saw at bind time.
func (p *Page) Resize(width, height float64) { p.width, p.height = width, height }

func (p *Page) Spotlight(color string) Element {
	b := &Box{page: p, props: map[string]string{PropGlowColor: color}}
	p.spotlights = append(p.spotlights, b)
	return b
}

// Spotlights returns the overlays created for grids, in creation order.
func (p *Page) Spotlights() []*Box { return p.spotlights }

// NewGrid adds a grid container occupying rect.
func (p *Page) NewGrid(rect Rect, classes ...string) *Box {
	g := &Box{page: p, rect: rect, classes: classes, props: map[string]string{}}
	p.grids = append(p.grids, g)
	return g
}

func (p *Page) Grids() []*Box { return p.grids }

// MovePointer dispatches a document move, then enter, move and leave on
// the cards whose hover state changed.
func (p *Page) MovePointer(pt Point) {
	p.listeners.dispatch(Event{Kind: PointerMove, Point: pt})
	for _, g := range p.grids {
		for _, c := range g.children {
			inside := c.rect.Contains(pt)
			switch {
			case inside && !p.hovered[c]:
				p.hovered[c] = true
				c.listeners.dispatch(Event{Kind: PointerEnter, Point: pt})
				c.listeners.dispatch(Event{Kind: PointerMove, Point: pt})
			case inside:
				c.listeners.dispatch(Event{Kind: PointerMove, Point: pt})
			case p.hovered[c]:
				delete(p.hovered, c)
				c.listeners.dispatch(Event{Kind: PointerLeave, Point: pt})
			}
		}
	}
}

// LeaveWindow dispatches a document leave and leaves every hovered card.
func (p *Page) LeaveWindow() {
	p.listeners.dispatch(Event{Kind: PointerLeave})
	for c := range p.hovered {
		delete(p.hovered, c)
		c.listeners.dispatch(Event{Kind: PointerLeave})
	}
}

// Click dispatches a click on every card under pt.
func (p *Page) Click(pt Point) {
	for _, g := range p.grids {
		for _, c := range g.children {
			if c.rect.Contains(pt) {
				c.listeners.dispatch(Event{Kind: Click, Point: pt})
			}
		}
	}
}

// Box is a grid, a card or a spotlight overlay.
type Box struct {
	page      *Page
	rect      Rect
	classes   []string
	props     map[string]string
	sprites   []*Sprite
	transform Transform
	listeners listenerSet
	children  []*Box
	mutations int
}

// AddCard appends a card to a grid.
func (b *Box) AddCard(rect Rect, classes ...string) *Box {
	c := &Box{page: b.page, rect: rect, classes: classes, props: map[string]string{}}
	b.children = append(b.children, c)
	return c
}

// Clear removes every card, as a grid re-render does.
func (b *Box) Clear() {
	for _, c := range b.children {
		delete(b.page.hovered, c)
	}
	b.children = nil
}

func (b *Box) Children() []*Box { return b.children }

func (b *Box) Rect() Rect { return b.rect }

// Move relocates the box, as a layout change would.
func (b *Box) Move(r Rect) { b.rect = r }

func (b *Box) HasClass(name string) bool { return slices.Contains(b.classes, name) }

func (b *Box) Query(classes ...string) []Card {
	var out []Card
	for _, c := range b.children {
		if len(classes) == 0 || slices.ContainsFunc(classes, c.HasClass) {
			out = append(out, c)
		}
	}
	return out
}

func (b *Box) SetProperty(name, value string) {
	b.props[name] = value
	b.mutations++
}

func (b *Box) Property(name string) string { return b.props[name] }

func (b *Box) AddListener(kind EventKind, fn Listener) func() {
	return b.listeners.add(kind, fn)
}

// Listeners returns the number of registered listeners.
func (b *Box) Listeners() int { return b.listeners.len() }

func (b *Box) Mount(s *Sprite) {
	b.sprites = append(b.sprites, s)
	b.mutations++
}

func (b *Box) Unmount(s *Sprite) {
	if i := slices.Index(b.sprites, s); i >= 0 {
		b.sprites = slices.Delete(b.sprites, i, i+1)
		b.mutations++
	}
}

func (b *Box) Sprites() []*Sprite { return b.sprites }

func (b *Box) SetTransform(t Transform) {
	b.transform = t
	b.mutations++
}

func (b *Box) Transform() Transform { return b.transform }

// Mutations counts every property, sprite and transform write.
func (b *Box) Mutations() int { return b.mutations }

type listenerEntry struct {
	id int
	fn Listener
}

type listenerSet struct {
	next   int
	byKind map[EventKind][]listenerEntry
}

func (l *listenerSet) add(kind EventKind, fn Listener) func() {
	if l.byKind == nil {
		l.byKind = map[EventKind][]listenerEntry{}
	}
	l.next++
	id := l.next
	l.byKind[kind] = append(l.byKind[kind], listenerEntry{id: id, fn: fn})
	return func() {
		l.byKind[kind] = slices.DeleteFunc(l.byKind[kind], func(e listenerEntry) bool { return e.id == id })
	}
}

func (l *listenerSet) dispatch(ev Event) {
	// listeners may remove themselves while running
	for _, e := range slices.Clone(l.byKind[ev.Kind]) {
		e.fn(ev)
	}
}

func (l *listenerSet) len() int {
	n := 0
	for _, es := range l.byKind {
		n += len(es)
	}
	return n
}
