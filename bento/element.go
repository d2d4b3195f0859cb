package bento

// Custom properties published on every card. They are the only surface
// through which glow state reaches the styling layer.
const (
	PropGlowX         = "--glow-x"
	PropGlowY         = "--glow-y"
	PropGlowIntensity = "--glow-intensity"
	PropGlowRadius    = "--glow-radius"
	PropGlowColor     = "--glow-color"
)

// Properties written on the ambient spotlight element.
const (
	PropSpotlightX       = "--spotlight-x"
	PropSpotlightY       = "--spotlight-y"
	PropSpotlightOpacity = "opacity"
)

// CardClasses selects every card kind rendered by the site's grids.
var CardClasses = []string{"magic-bento-card", "hackathon-card", "winner-card", "team-card", "stat-box"}

type EventKind int

const (
	PointerMove EventKind = iota
	PointerLeave
	PointerEnter
	Click
)

func (k EventKind) String() string {
	switch k {
	case PointerMove:
		return "pointermove"
	case PointerLeave:
		return "pointerleave"
	case PointerEnter:
		return "pointerenter"
	case Click:
		return "click"
	}
	return "unknown"
}

// Event carries an absolute pointer position.
type Event struct {
	Kind  EventKind
	Point Point
}

type Listener func(Event)

// EventTarget registers listeners. The returned func removes the
// listener and is safe to call more than once.
type EventTarget interface {
	AddListener(kind EventKind, fn Listener) (remove func())
}

// Element is anything with layout whose custom properties can be set.
type Element interface {
	Rect() Rect
	SetProperty(name, value string)
}

// Card is one rendered entity inside a grid.
type Card interface {
	Element
	EventTarget
	Mount(s *Sprite)
	Unmount(s *Sprite)
	SetTransform(t Transform)
}

// Grid is a container whose cards are looked up by class on every
// pointer sample, because grids are rebuilt wholesale on filter changes.
type Grid interface {
	Element
	Query(classes ...string) []Card
}

// Document is the ambient pointer source shared by every grid.
type Document interface {
	EventTarget
	// Spotlight returns the overlay element used for the ambient glow of
	// one grid.
	Spotlight(color string) Element
	// ViewportWidth is read once when a binder is created.
	ViewportWidth() float64
}

type SpriteKind int

const (
	SpriteParticle SpriteKind = iota
	SpriteRipple
)

// Sprite is a transient visual mounted inside a card. X and Y are the
// top-left corner relative to the card; the offsets, rotation, scale and
// opacity are animated on top of that.
type Sprite struct {
	Kind     SpriteKind
	X, Y     float64
	Size     float64
	Color    string
	OffsetX  float64
	OffsetY  float64
	Rotation float64
	Scale    float64
	Opacity  float64
}

// Transform is the tilt (degrees) and magnetism (units) applied to a card.
type Transform struct {
	RotateX, RotateY       float64
	TranslateX, TranslateY float64
}
