package tui

import (
	"slices"

	"github.com/mattn/go-runewidth"

	"constellations/internal/geom"
	"constellations/internal/interact"
	"constellations/internal/projection"
)

// pickRadius is how close, in micro-pixels, the cursor must be to a star to
// hover or select it.
const pickRadius = 4.0

// renderMap draws trails, stars, labels and the user marker into a w×h block.
func (m Model) renderMap(w, h int) string {
	v := m.viewport(w, h)
	br := newBrailleBuf(w, h)
	if !v.ok {
		return renderCells(br.toCells())
	}

	for _, p := range m.layer.drawOrder() {
		if p.style.Opacity == 0 {
			continue
		}
		k := inkTrailDim
		if p.style.Opacity >= 1 {
			k = inkTrail
		}
		for i := 0; i+1 < len(p.path); i++ {
			x0, y0 := v.microInt(p.path[i])
			x1, y1 := v.microInt(p.path[i+1])
			br.drawLineMicro(x0, y0, x1, y1, k)
		}
	}

	cursorID := ""
	pts := m.catalog.Points()
	if m.cursor >= 0 && m.cursor < len(pts) {
		cursorID = pts[m.cursor].ID
	}
	for _, p := range pts {
		k := inkPoint
		if m.weaver.Contains(p.ID) {
			k = inkPicked
		}
		x, y := v.microInt(projection.Coord{Lat: p.Lat, Lng: p.Lng})
		br.dot(x-1, y-1, k)
	}

	cells := br.toCells()
	for _, lb := range m.labels() {
		x, y := v.micro(lb.Anchor)
		cx, cy := int(x)/2, int(y)/4-1
		if cy < 0 || cy >= h {
			continue
		}
		text := " " + truncate(lb.Text, w/2) + " "
		putText(cells[cy], cx-runewidth.StringWidth(text)/2, text, inkLabel)
	}
	for _, id := range []string{m.hoverPoint, cursorID} {
		if p, ok := m.catalog.Lookup(id); ok {
			m.markCell(v, cells, projection.Coord{Lat: p.Lat, Lng: p.Lng}, "◯", inkHover)
		}
	}
	if m.userPos != nil {
		m.markCell(v, cells, projection.Coord{Lat: m.userPos.Lat, Lng: m.userPos.Lng}, "✦", inkUser)
	}
	return renderCells(cells)
}

func (m Model) markCell(v viewport, cells [][]cell, c projection.Coord, s string, k ink) {
	x, y := v.microInt(c)
	cx, cy := x/2, y/4
	if cy < 0 || cy >= len(cells) || cx < 0 || cx >= len(cells[cy]) {
		return
	}
	putText(cells[cy], cx, s, k)
}

// labels returns the visible trail labels, lowest first so the highlighted
// one is drawn last.
func (m Model) labels() []interact.Label {
	var out []interact.Label
	if lb, ok := m.active.Label(); ok {
		out = append(out, lb)
	}
	for _, ln := range m.lines {
		if lb, ok := ln.Label(); ok {
			out = append(out, lb)
		}
	}
	slices.SortStableFunc(out, func(a, b interact.Label) int {
		if a.Z != b.Z {
			return a.Z - b.Z
		}
		switch {
		case a.Text < b.Text:
			return -1
		case a.Text > b.Text:
			return 1
		}
		return 0
	})
	return out
}

// pointAt returns the star nearest to micro-pixel (x, y) within pickRadius.
func (m Model) pointAt(v viewport, x, y float64) (geom.Point, bool) {
	if !v.ok {
		return geom.Point{}, false
	}
	best := pickRadius * pickRadius
	var (
		bp    geom.Point
		found bool
	)
	for _, p := range m.catalog.Points() {
		px, py := v.micro(projection.Coord{Lat: p.Lat, Lng: p.Lng})
		dx, dy := px-x, py-y
		if d := dx*dx + dy*dy; d <= best {
			best, bp, found = d, p, true
		}
	}
	return bp, found
}
