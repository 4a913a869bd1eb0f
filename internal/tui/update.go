package tui

import (
	"errors"
	"fmt"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"constellations/internal/projection"
	"constellations/internal/render"
	"constellations/internal/store"
	"constellations/internal/trail"
)

const (
	maxZoom  = 64
	minZoom  = 0.05
	zoomStep = 1.2
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lay := m.layout()
		m.l.SetSize(sidebarWidth-2, lay.contentH-2)
		return m, nil
	case locatedMsg:
		m.locating = false
		if msg.err != nil {
			m.notice = "could not find your location"
			return m, nil
		}
		pos := msg.pos
		m.userPos = &pos
		focus := []projection.Coord{{Lat: pos.Lat, Lng: pos.Lng}}
		if p, ok := m.catalog.Nearest(pos.Lng, pos.Lat); ok {
			focus = append(focus, projection.Coord{Lat: p.Lat, Lng: p.Lng})
		}
		m.focusOn(focus)
		m.status = fmt.Sprintf("you are near %.3f, %.3f", pos.Lat, pos.Lng)
		return m, nil
	case exportedMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, render.ErrNothingToExport):
			m.notice = "nothing to export: none of its stars are in the catalog"
		case msg.err != nil:
			m.notice = "export failed: " + msg.err.Error()
		default:
			m.status = "exported " + msg.path
		}
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg), nil
	}
	if m.showPanel {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch {
	case m.form != nil:
		return m.updateForm(msg)
	case m.share != nil:
		return m.updateShare(msg)
	case m.showDetails:
		switch msg.String() {
		case "esc", "i", "q":
			m.showDetails = false
			return m, nil
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	case m.showPanel && m.l.FilterState() == list.Filtering:
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}

	// any key dismisses a notice
	m.notice = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		switch {
		case m.picked != nil:
			m.picked = nil
		case m.highlighted != "":
			m.unhighlight()
			m.focusOn(nil)
			m.status = "map reset"
		}
	case "+", "=":
		if m.zoom < maxZoom {
			m.zoom *= zoomStep
			m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
		}
	case "-", "_":
		if m.zoom > minZoom {
			m.zoom /= zoomStep
			m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
		}
	case "0":
		m.focusOn(nil)
		m.status = "map reset"
	case "left":
		m.offsetX -= 2
	case "right":
		m.offsetX += 2
	case "up", "down":
		if m.showPanel {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if msg.String() == "up" {
			m.offsetY--
		} else {
			m.offsetY++
		}
	case "tab":
		m.showPanel = !m.showPanel
		if m.showPanel {
			m.refreshPanel()
			m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
		}
	case "/":
		if m.showPanel {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
	case "n", "N":
		m.cyclePoint(msg.String() == "n")
	case "enter", " ":
		if m.showPanel && msg.String() == "enter" {
			if it, ok := m.selectedTrail(); ok {
				m.highlight(it.t.ID)
			}
			return m, nil
		}
		pts := m.catalog.Points()
		if m.cursor >= 0 && m.cursor < len(pts) {
			m.pick(pts[m.cursor].ID)
		}
	case "s":
		if !m.weaver.CanSave() {
			m.status = fmt.Sprintf("pick at least %d stars to save", trail.MinPoints)
			return m, nil
		}
		m.picked = nil
		m.form = newTrailForm(formSave, "", trail.DefaultName(m.now()), "")
	case "c":
		if m.weaver.Len() > 0 {
			m.weaver.Clear()
			m.status = "cleared"
		}
	case "e":
		t, ok := m.currentTrail()
		switch {
		case !ok:
			m.status = "no constellation selected"
		case m.isShared(t.ID):
			m.status = "keep the shared constellation first (k)"
		default:
			m.form = newTrailForm(formEdit, t.ID, t.Name, t.Description)
		}
	case "d":
		return m.deleteCurrent(), nil
	case "k":
		return m.keepShared(), nil
	case "y":
		if t, ok := m.currentTrail(); ok {
			m.openShare(t)
		} else {
			m.status = "no constellation selected"
		}
	case "x":
		t, ok := m.currentTrail()
		if !ok {
			m.status = "no constellation selected"
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "exporting " + t.Name + "…"
		return m, exportCmd(m.exporter, t.Clone(), m.catalog, m.user, m.exportDir)
	case "g":
		if m.locator == nil {
			m.notice = "location is turned off"
			return m, nil
		}
		if m.locating {
			return m, nil
		}
		m.locating = true
		m.status = "locating…"
		return m, locateCmd(m.ctx, m.locator)
	case "i":
		m.showDetails = true
		m.refreshDetails()
	case "h":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

// cyclePoint moves the keyboard cursor through the catalog.
func (m *Model) cyclePoint(forward bool) {
	n := m.catalog.Len()
	if n == 0 {
		return
	}
	switch {
	case m.cursor < 0 && forward:
		m.cursor = 0
	case m.cursor < 0:
		m.cursor = n - 1
	case forward:
		m.cursor = (m.cursor + 1) % n
	default:
		m.cursor = (m.cursor - 1 + n) % n
	}
	p := m.catalog.Points()[m.cursor]
	m.status = "☆ " + pointTitle(p.Title, p.ID)
}

// pick feeds a star into the weaver and opens its narrative.
func (m *Model) pick(id string) {
	p, ok := m.catalog.Lookup(id)
	if !ok {
		return
	}
	m.weaver.Select(id)
	m.picked = &p
	if n := m.weaver.Len(); n == 1 {
		m.status = "★ " + pointTitle(p.Title, p.ID) + "  pick another star"
	} else {
		m.status = fmt.Sprintf("★ %s  %d stars  (s saves)", pointTitle(p.Title, p.ID), n)
	}
}

func pointTitle(title, id string) string {
	if title == "" {
		return id
	}
	return title
}

func (m Model) deleteCurrent() Model {
	t, ok := m.currentTrail()
	if !ok {
		m.status = "no constellation selected"
		return m
	}
	if m.isShared(t.ID) {
		m.shared = nil
		m.reload()
		m.status = "closed shared constellation"
		return m
	}
	err := m.repo.Delete(m.ctx, t.ID)
	switch {
	case errors.Is(err, trail.ErrNotFound):
		m.notice = "that constellation no longer exists"
	case errors.Is(err, store.ErrWrite):
		m.notice = "could not write to disk; removed for this session only"
	}
	m.reload()
	if err == nil || errors.Is(err, store.ErrWrite) {
		m.status = "deleted " + t.Name
	}
	return m
}

// keepShared stores a copy of the shared trail as the user's own and closes
// the shared view.
func (m Model) keepShared() Model {
	if m.shared == nil {
		return m
	}
	src := *m.shared
	for _, t := range m.trails {
		if t.SameShape(src) {
			m.shared = nil
			m.reload()
			m.highlight(t.ID)
			m.status = "already saved: " + t.Name
			return m
		}
	}
	kept := src.Copy(m.newID(), m.now())
	err := m.repo.Add(m.ctx, kept)
	if err != nil && !errors.Is(err, store.ErrWrite) {
		m.notice = "cannot keep: " + formError(err)
		return m
	}
	if err != nil {
		m.notice = "could not write to disk; kept for this session only"
	}
	m.shared = nil
	m.reload()
	m.highlight(kept.ID)
	m.status = "kept ✦ " + kept.Name
	return m
}

func (m Model) updateMouse(msg tea.MouseMsg) Model {
	if m.form != nil || m.share != nil || m.showDetails {
		return m
	}
	lay := m.layout()
	cx, cy := msg.X-lay.mapX, msg.Y-lay.mapY
	inside := cx >= 0 && cx < lay.mapW && cy >= 0 && cy < lay.mapH
	v := m.viewport(lay.mapW, lay.mapH)
	px, py := float64(cx*2)+1, float64(cy*4)+2

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if inside && m.zoom < maxZoom {
			m.zoom *= zoomStep
		}
		return m
	case tea.MouseButtonWheelDown:
		if inside && m.zoom > minZoom {
			m.zoom /= zoomStep
		}
		return m
	}

	m.hoverPoint = ""
	m.hoverGeo = false
	if inside {
		if lat, lng, ok := v.cellToLatLng(cx, cy); ok {
			m.hoverLat, m.hoverLng, m.hoverGeo = lat, projection.WrapLng(lng), true
		}
		if p, ok := m.pointAt(v, px, py); ok {
			m.hoverPoint = p.ID
		}
	}
	m.layer.pointer(v, px, py, inside && m.hoverPoint == "")

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || !inside {
		return m
	}
	if m.hoverPoint != "" {
		m.pick(m.hoverPoint)
		return m
	}
	if m.layer.click(px, py) {
		for id, ln := range m.lines {
			if ln.Hovered() {
				m.highlight(id)
				break
			}
		}
		return m
	}
	m.picked = nil
	return m
}
