package tui

import (
	"slices"

	"constellations/internal/interact"
	"constellations/internal/projection"
)

// hitScale converts polyline weights, given in screen pixels, to braille
// micro-pixels.
const hitScale = 0.5

// termLayer is the map layer of the terminal canvas. It keeps the polylines
// of live trails and routes pointer movement to the topmost interactive one
// under the cursor.
type termLayer struct {
	lines []*termPolyline
	hover *termPolyline
	seq   int
}

func newTermLayer() *termLayer { return &termLayer{} }

func (l *termLayer) NewPolyline() interact.Polyline {
	p := &termPolyline{layer: l, order: l.seq, handlers: map[int]func(interact.PointerEvent){}}
	l.seq++
	l.lines = append(l.lines, p)
	return p
}

// drawOrder returns attached lines bottom to top. Equal depths keep creation
// order.
func (l *termLayer) drawOrder() []*termPolyline {
	out := make([]*termPolyline, 0, len(l.lines))
	for _, p := range l.lines {
		if p.attached && len(p.path) >= 2 {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *termPolyline) int {
		if a.style.Z != b.style.Z {
			return a.style.Z - b.style.Z
		}
		return a.order - b.order
	})
	return out
}

// hitTest returns the topmost interactive line within half its weight of
// micro-pixel (x, y).
func (l *termLayer) hitTest(v viewport, x, y float64) *termPolyline {
	order := l.drawOrder()
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		if !p.style.Interactive {
			continue
		}
		if p.distance(v, x, y) <= p.style.Weight/2*hitScale {
			return p
		}
	}
	return nil
}

// pointer moves the cursor to (x, y), sending leave and enter events as the
// line under it changes. inside is false once the cursor leaves the map.
func (l *termLayer) pointer(v viewport, x, y float64, inside bool) {
	var top *termPolyline
	if inside && v.ok {
		top = l.hitTest(v, x, y)
	}
	if top == l.hover {
		return
	}
	if prev := l.hover; prev != nil {
		l.hover = nil
		prev.emit(interact.PointerEvent{Kind: interact.PointerLeave, X: x, Y: y})
	}
	if top != nil {
		l.hover = top
		top.emit(interact.PointerEvent{Kind: interact.PointerEnter, X: x, Y: y})
	}
}

// click sends a click to the hovered line, if any.
func (l *termLayer) click(x, y float64) bool {
	if l.hover == nil {
		return false
	}
	l.hover.emit(interact.PointerEvent{Kind: interact.PointerClick, X: x, Y: y})
	return true
}

type termPolyline struct {
	layer    *termLayer
	order    int
	path     []projection.Coord
	style    interact.Style
	attached bool
	handlers map[int]func(interact.PointerEvent)
	nextH    int
}

func (p *termPolyline) SetPath(path []projection.Coord) { p.path = slices.Clone(path) }
func (p *termPolyline) SetStyle(s interact.Style)       { p.style = s }
func (p *termPolyline) Attach()                         { p.attached = true }

func (p *termPolyline) Detach() {
	p.attached = false
	if p.layer.hover == p {
		p.layer.hover = nil
	}
}

func (p *termPolyline) Remove() {
	p.Detach()
	p.layer.lines = slices.DeleteFunc(p.layer.lines, func(q *termPolyline) bool { return q == p })
}

func (p *termPolyline) OnPointer(fn func(interact.PointerEvent)) func() {
	id := p.nextH
	p.nextH++
	p.handlers[id] = fn
	return func() { delete(p.handlers, id) }
}

func (p *termPolyline) emit(e interact.PointerEvent) {
	for _, h := range p.handlers {
		h(e)
	}
}

func (p *termPolyline) distance(v viewport, x, y float64) float64 {
	best := -1.0
	for i := 0; i+1 < len(p.path); i++ {
		ax, ay := v.micro(p.path[i])
		bx, by := v.micro(p.path[i+1])
		if d := segmentDist(x, y, ax, ay, bx, by); best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 1e18
	}
	return best
}
