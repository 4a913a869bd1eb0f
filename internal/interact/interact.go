// Package interact keeps a trail's on-map line and its hover target in sync.
//
// Every trail is drawn as two polylines over the same path: a thin visible
// line that never takes pointer input, and a wide transparent hit line
// stacked directly above it that does. Hover on either flips the trail's
// hover flag, which reveals the name label at the trail's midpoint.
package interact

import (
	"slices"

	"constellations/internal/projection"
)

const (
	VisibleColor = "#c084fc"
	HitWeight    = 25

	zIdle  = 1
	zFront = 10
)

// Style describes how a polyline is drawn and whether it takes input.
type Style struct {
	Color       string
	Opacity     float64
	Weight      float64
	Z           int
	Interactive bool
	Cursor      string
}

type PointerKind int

const (
	PointerEnter PointerKind = iota
	PointerLeave
	PointerClick
)

type PointerEvent struct {
	Kind PointerKind
	X, Y float64
}

// Polyline is a line on a map layer.
type Polyline interface {
	SetPath(path []projection.Coord)
	SetStyle(s Style)
	Attach()
	Detach()
	// Remove takes the line off its layer for good.
	Remove()
	// OnPointer registers fn for pointer events on this line and returns a
	// function that removes it.
	OnPointer(fn func(PointerEvent)) (remove func())
}

// MapLayer creates polylines.
type MapLayer interface {
	NewPolyline() Polyline
}

// State is the trail's display state.
type State struct {
	Active      bool
	Highlighted bool
}

func (s State) front() bool { return s.Active || s.Highlighted }

// VisibleStyle is the style of the drawn line.
func VisibleStyle(s State) Style {
	st := Style{Color: VisibleColor, Opacity: 0.3, Weight: 2, Z: zIdle}
	if s.front() {
		st.Opacity = 1
		st.Z = zFront
	}
	switch {
	case s.Highlighted:
		st.Weight = 4
	case s.Active:
		st.Weight = 3
	}
	return st
}

// HitStyle is the style of the hover target: invisible, wide, one layer
// above the visible line.
func HitStyle(s State) Style {
	return Style{
		Color:       "#ffffff",
		Opacity:     0,
		Weight:      HitWeight,
		Z:           VisibleStyle(s).Z + 1,
		Interactive: true,
		Cursor:      "pointer",
	}
}

// Label is the trail name shown at its midpoint.
type Label struct {
	Text        string
	Anchor      projection.Coord
	Highlighted bool
	Z           int
}

// InteractionLine owns the visible and hit polylines of one trail.
type InteractionLine struct {
	name     string
	visible  Polyline
	hit      Polyline
	path     []projection.Coord
	state    State
	hovered  bool
	attached bool
	onHover  func(bool)
	removers []func()
}

func NewInteractionLine(layer MapLayer, name string) *InteractionLine {
	l := &InteractionLine{
		name:    name,
		visible: layer.NewPolyline(),
		hit:     layer.NewPolyline(),
	}
	l.removers = append(l.removers,
		l.hit.OnPointer(l.pointer),
		l.visible.OnPointer(l.pointer),
	)
	return l
}

func (l *InteractionLine) pointer(e PointerEvent) {
	switch e.Kind {
	case PointerEnter:
		l.setHovered(true)
	case PointerLeave:
		l.setHovered(false)
	}
}

func (l *InteractionLine) setHovered(h bool) {
	if l.hovered == h {
		return
	}
	l.hovered = h
	if l.onHover != nil {
		l.onHover(h)
	}
}

func (l *InteractionLine) Name() string { return l.name }

func (l *InteractionLine) SetName(name string) { l.name = name }

// Update redraws both lines for path and s. Fewer than two points empties and
// detaches both lines.
func (l *InteractionLine) Update(path []projection.Coord, s State) {
	l.path = slices.Clone(path)
	l.state = s
	if len(path) < 2 {
		l.clear()
		return
	}
	l.visible.SetPath(l.path)
	l.visible.SetStyle(VisibleStyle(s))
	l.hit.SetPath(l.path)
	l.hit.SetStyle(HitStyle(s))
	if !l.attached {
		l.visible.Attach()
		l.hit.Attach()
		l.attached = true
	}
}

func (l *InteractionLine) clear() {
	l.visible.SetPath(nil)
	l.visible.Detach()
	l.hit.SetPath(nil)
	l.hit.Detach()
	l.attached = false
	l.setHovered(false)
}

func (l *InteractionLine) Hovered() bool { return l.hovered }

func (l *InteractionLine) Attached() bool { return l.attached }

// OnHover sets the callback for hover changes.
func (l *InteractionLine) OnHover(fn func(hovered bool)) { l.onHover = fn }

// LabelAnchor is the midpoint of the path: the middle vertex for an odd
// count, the mean of the two central vertices for an even one.
func (l *InteractionLine) LabelAnchor() (projection.Coord, bool) {
	return Midpoint(l.path)
}

// Midpoint applies the LabelAnchor rule to path.
func Midpoint(path []projection.Coord) (projection.Coord, bool) {
	n := len(path)
	if n == 0 {
		return projection.Coord{}, false
	}
	mid := (n - 1) / 2
	p := path[mid]
	if n%2 == 0 {
		q := path[mid+1]
		return projection.Coord{Lat: (p.Lat + q.Lat) / 2, Lng: (p.Lng + q.Lng) / 2}, true
	}
	return p, true
}

// ShowLabel reports whether the name label should be visible.
func (l *InteractionLine) ShowLabel() bool {
	return (l.hovered || l.state.Highlighted) && l.name != "" && len(l.path) >= 2
}

// Label returns the label to draw, if any.
func (l *InteractionLine) Label() (Label, bool) {
	if !l.ShowLabel() {
		return Label{}, false
	}
	anchor, _ := l.LabelAnchor()
	lb := Label{Text: l.name, Anchor: anchor, Highlighted: l.state.Highlighted, Z: 60}
	if l.state.Highlighted {
		lb.Z = 100
	}
	return lb, true
}

// Close drops pointer handlers and removes both lines from the layer.
func (l *InteractionLine) Close() {
	l.path = nil
	l.clear()
	for _, rm := range l.removers {
		rm()
	}
	l.removers = nil
	l.visible.Remove()
	l.hit.Remove()
}
