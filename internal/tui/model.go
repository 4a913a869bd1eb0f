package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"constellations/internal/geom"
	"constellations/internal/interact"
	"constellations/internal/locate"
	"constellations/internal/projection"
	"constellations/internal/render"
	"constellations/internal/store"
	"constellations/internal/trail"
)

const (
	sidebarWidth = 32
	headerHeight = 1
	footerHeight = 2
)

// Deps is what the terminal app needs from the outside.
type Deps struct {
	Catalog      *geom.Catalog
	Repo         *store.Repository // nil keeps trails in memory
	Weaver       *trail.Weaver
	Exporter     *render.Exporter
	Locator      locate.Locator // nil disables locate
	User         string
	ExportDir    string
	ShareBaseURL string
	// Shared is a trail opened from a share link. It is shown and highlighted
	// but not stored unless the user keeps it.
	Shared *trail.Trail
	// Notice is shown until the first key press.
	Notice string
	// Copy writes to the system clipboard.
	Copy  func(string) error
	Now   func() time.Time
	NewID func() string
}

type Model struct {
	ctx    context.Context
	width  int
	height int

	showPanel   bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int
	focus   []projection.Coord

	status string
	notice string

	catalog   *geom.Catalog
	repo      *store.Repository
	weaver    *trail.Weaver
	exporter  *render.Exporter
	locator   locate.Locator
	user      string
	exportDir string
	shareBase string
	copyText  func(string) error
	now       func() time.Time
	newID     func() string

	trails      []trail.Trail
	shared      *trail.Trail
	highlighted string

	layer  *termLayer
	active *interact.InteractionLine
	lines  map[string]*interact.InteractionLine
	unsub  func()

	// saved trails panel
	l list.Model

	// details table
	showDetails  bool
	tbl          table.Model
	detailsTitle string
	detailsDesc  string

	form  *trailForm
	share *sharePopup

	// point narrative popup
	picked *geom.Point

	cursor   int
	locating bool
	userPos  *locate.Position
	busy     bool

	// hover state
	hoverPoint string
	hoverLat   float64
	hoverLng   float64
	hoverGeo   bool
}

func New(d Deps) Model {
	m := Model{
		ctx:         context.Background(),
		helpVisible: true,
		zoom:        1.0,
		status:      "click stars to weave a constellation",
		notice:      d.Notice,
		catalog:     d.Catalog,
		repo:        d.Repo,
		weaver:      d.Weaver,
		exporter:    d.Exporter,
		locator:     d.Locator,
		user:        d.User,
		exportDir:   d.ExportDir,
		shareBase:   d.ShareBaseURL,
		copyText:    d.Copy,
		now:         d.Now,
		newID:       d.NewID,
		layer:       newTermLayer(),
		lines:       map[string]*interact.InteractionLine{},
		cursor:      -1,
	}
	if m.weaver == nil {
		m.weaver = trail.NewWeaver()
	}
	if m.repo == nil {
		m.repo = store.NewRepository(store.NewMemorySlot(), "")
	}
	if m.exporter == nil {
		m.exporter = render.NewExporter()
	}
	if m.copyText == nil {
		m.copyText = clipboard.WriteAll
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = trail.NewID
	}
	if m.shareBase == "" {
		m.shareBase = "https://constellations.app/"
	}
	if m.exportDir == "" {
		m.exportDir = "."
	}

	// The weaving line exists for the whole session so clearing the
	// sequence always removes it from the map.
	active := interact.NewInteractionLine(m.layer, "")
	cat := m.catalog
	m.active = active
	m.unsub = m.weaver.Subscribe(func(e trail.Event) {
		active.Update(coordsOf(cat.Resolve(e.Points)), interact.State{Active: true})
	})

	d2 := list.NewDefaultDelegate()
	m.l = list.New(nil, d2, 0, 0)
	m.l.Title = "Constellations"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	m.l.SetStatusBarItemName("constellation", "constellations")

	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)

	m.focusOn(nil)
	m.trails = m.repo.LoadAll(m.ctx)
	if d.Shared != nil {
		s := d.Shared.Clone()
		m.shared = &s
		m.highlighted = s.ID
		m.status = "viewing shared constellation " + s.Name + "  (k keeps it)"
		m.focusOn(coordsOf(m.catalog.Resolve(s.PointIDs)))
	}
	m.syncLines()
	m.refreshPanel()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Close releases map lines and the weaver subscription.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.active.Close()
	for _, l := range m.lines {
		l.Close()
	}
}

func coordsOf(pts []geom.Point) []projection.Coord {
	out := make([]projection.Coord, len(pts))
	for i, p := range pts {
		out[i] = projection.Coord{Lat: p.Lat, Lng: p.Lng}
	}
	return out
}

// allTrails is the saved collection plus the shared trail, if any.
func (m Model) allTrails() []trail.Trail {
	if m.shared == nil {
		return m.trails
	}
	out := make([]trail.Trail, 0, len(m.trails)+1)
	out = append(out, m.trails...)
	return append(out, *m.shared)
}

func (m Model) trailByID(id string) (trail.Trail, bool) {
	for _, t := range m.allTrails() {
		if t.ID == id {
			return t, true
		}
	}
	return trail.Trail{}, false
}

// syncLines makes the map's trail lines match the trail collection and the
// current highlight.
func (m *Model) syncLines() {
	seen := make(map[string]bool)
	for _, t := range m.allTrails() {
		seen[t.ID] = true
		ln, ok := m.lines[t.ID]
		if !ok {
			ln = interact.NewInteractionLine(m.layer, t.Name)
			m.lines[t.ID] = ln
		}
		ln.SetName(t.Name)
		ln.Update(coordsOf(m.catalog.Resolve(t.PointIDs)), interact.State{Highlighted: t.ID == m.highlighted})
	}
	for id, ln := range m.lines {
		if !seen[id] {
			ln.Close()
			delete(m.lines, id)
		}
	}
}

// minFocusSpan keeps a one-star catalog from filling the map.
const minFocusSpan = 2.0

// focusOn refits the map to coords and resets zoom and pan. An empty set
// falls back to the catalog's bounding box.
func (m *Model) focusOn(coords []projection.Coord) {
	if len(coords) == 0 {
		b := m.catalog.BBox().Pad(minFocusSpan)
		coords = []projection.Coord{{Lat: b.MinY, Lng: b.MinX}, {Lat: b.MaxY, Lng: b.MaxX}}
	}
	m.focus = coords
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
}

// reload reads the collection back after a repository write and redraws.
func (m *Model) reload() {
	m.trails = m.repo.Trails()
	if m.highlighted != "" {
		if _, ok := m.trailByID(m.highlighted); !ok {
			m.highlighted = ""
		}
	}
	m.syncLines()
	m.refreshPanel()
	if m.showDetails {
		m.refreshDetails()
	}
}
