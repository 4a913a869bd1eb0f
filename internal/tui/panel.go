package tui

import (
	"fmt"
	"sort"

	list "github.com/charmbracelet/bubbles/list"

	"constellations/internal/trail"
)

type trailItem struct {
	t      trail.Trail
	shared bool
}

func (i trailItem) Title() string {
	if i.shared {
		return i.t.Name + " · shared"
	}
	return i.t.Name
}

func (i trailItem) Description() string {
	return fmt.Sprintf("%d stars · %s", len(i.t.PointIDs), i.t.CreatedAt.Local().Format("2006-01-02"))
}

func (i trailItem) FilterValue() string { return i.t.Name }

// refreshPanel rebuilds the panel items, shared trail first, then saved
// trails newest first.
func (m *Model) refreshPanel() {
	saved := append([]trail.Trail(nil), m.trails...)
	sort.SliceStable(saved, func(i, j int) bool { return saved[i].CreatedAt.After(saved[j].CreatedAt) })

	items := make([]list.Item, 0, len(saved)+1)
	if m.shared != nil {
		items = append(items, trailItem{t: *m.shared, shared: true})
	}
	for _, t := range saved {
		items = append(items, trailItem{t: t})
	}
	idx := m.l.Index()
	m.l.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.l.Select(idx)
	}
}

// selectedTrail is the trail under the panel cursor.
func (m Model) selectedTrail() (trailItem, bool) {
	it, ok := m.l.SelectedItem().(trailItem)
	return it, ok
}

// currentTrail is what trail actions apply to: the highlighted trail, or the
// panel selection while the panel is open.
func (m Model) currentTrail() (trail.Trail, bool) {
	if m.highlighted != "" {
		return m.trailByID(m.highlighted)
	}
	if m.showPanel {
		if it, ok := m.selectedTrail(); ok {
			return it.t, true
		}
	}
	return trail.Trail{}, false
}

func (m Model) isShared(id string) bool { return m.shared != nil && m.shared.ID == id }

// highlight marks id as the highlighted trail and fits the map to it.
func (m *Model) highlight(id string) {
	t, ok := m.trailByID(id)
	if !ok {
		return
	}
	m.highlighted = id
	m.focusOn(coordsOf(m.catalog.Resolve(t.PointIDs)))
	m.syncLines()
	m.status = "✦ " + t.Name
}

func (m *Model) unhighlight() {
	if m.highlighted == "" {
		return
	}
	m.highlighted = ""
	m.syncLines()
}
