package tui

import (
	"errors"
	"math/rand/v2"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constellations/internal/geom"
	"constellations/internal/interact"
	"constellations/internal/locate"
	"constellations/internal/projection"
	"constellations/internal/render"
	"constellations/internal/share"
	"constellations/internal/store"
	"constellations/internal/trail"
)

var fixedNow = time.Date(2024, 3, 9, 20, 30, 0, 0, time.UTC)

func testCatalog(t *testing.T) *geom.Catalog {
	t.Helper()
	c, err := geom.NewCatalog([]geom.Point{
		{ID: "harbour", Lat: 0, Lng: 0, Title: "Harbour", Description: "Boats at dawn."},
		{ID: "ridge", Lat: 20, Lng: 40, Title: "Ridge"},
		{ID: "spring", Lat: -20, Lng: 60, Title: "Spring"},
		{ID: "tower", Lat: 25, Lng: -30, Title: "Tower"},
	})
	require.NoError(t, err)
	return c
}

type harness struct {
	m      Model
	slot   *store.MemorySlot
	copied []string
}

func newHarness(t *testing.T, mod func(*Deps)) *harness {
	t.Helper()
	h := &harness{slot: store.NewMemorySlot()}
	ids := 0
	d := Deps{
		Catalog: testCatalog(t),
		Repo:    store.NewRepository(h.slot, store.DefaultKey),
		Weaver: trail.NewWeaver(
			trail.WithIDFunc(func() string { ids++; return "t" + string(rune('0'+ids)) }),
			trail.WithClock(func() time.Time { return fixedNow }),
		),
		Exporter:  render.NewExporter(render.WithRand(rand.New(rand.NewPCG(1, 2)))),
		ExportDir: t.TempDir(),
		User:      "ana",
		Copy: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
		Now: func() time.Time { return fixedNow },
	}
	if mod != nil {
		mod(&d)
	}
	h.m = New(d)
	t.Cleanup(h.m.Close)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	switch s {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return h.send(tea.KeyMsg{Type: tea.KeyTab})
	case "ctrl+s":
		return h.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	}
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// cellOf returns the screen cell of a coordinate on the current map.
func (h *harness) cellOf(c projection.Coord) (int, int) {
	lay := h.m.layout()
	x, y := h.m.viewport(lay.mapW, lay.mapH).microInt(c)
	return lay.mapX + x/2, lay.mapY + y/4
}

func (h *harness) click(x, y int) {
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func (h *harness) weave(ids ...string) {
	for _, id := range ids {
		h.m.pick(id)
	}
}

func TestKeyboardPickAndSave(t *testing.T) {
	h := newHarness(t, nil)

	h.key("s")
	assert.Nil(t, h.m.form, "one star is not enough to save")

	h.key("n")
	h.key("enter")
	h.key("n")
	h.key("enter")
	assert.Equal(t, []string{"harbour", "ridge"}, h.m.weaver.Points())
	assert.True(t, h.m.active.Attached())
	require.NotNil(t, h.m.picked)
	assert.Equal(t, "ridge", h.m.picked.ID)

	h.key("s")
	require.NotNil(t, h.m.form)
	assert.Equal(t, trail.DefaultName(fixedNow), h.m.form.name.Value())
	h.key("ctrl+s")

	assert.Nil(t, h.m.form)
	assert.Zero(t, h.m.weaver.Len())
	assert.False(t, h.m.active.Attached())
	require.Len(t, h.m.trails, 1)
	saved := h.m.trails[0]
	assert.Equal(t, []string{"harbour", "ridge"}, saved.PointIDs)
	assert.Equal(t, saved.ID, h.m.highlighted)

	ln, ok := h.m.lines[saved.ID]
	require.True(t, ok)
	assert.True(t, ln.ShowLabel())

	persisted := store.NewRepository(h.slot, store.DefaultKey).LoadAll(h.m.ctx)
	require.Len(t, persisted, 1)
	assert.True(t, saved.Equal(persisted[0]))
}

func TestFormRejectsEmptyName(t *testing.T) {
	h := newHarness(t, nil)
	h.weave("harbour", "spring")
	h.key("s")
	require.NotNil(t, h.m.form)
	h.m.form.name.SetValue("   ")
	h.key("ctrl+s")

	require.NotNil(t, h.m.form)
	assert.Equal(t, "a name is required", h.m.form.err)
	assert.Equal(t, 2, h.m.weaver.Len(), "sequence survives a rejected save")

	h.m.form.name.SetValue(strings.Repeat("n", trail.MaxNameLen+1))
	h.key("ctrl+s")
	require.NotNil(t, h.m.form)
	assert.Equal(t, "name is limited to 200 characters", h.m.form.err)
	assert.Equal(t, 2, h.m.weaver.Len())

	h.key("esc")
	assert.Nil(t, h.m.form)
	assert.Empty(t, h.m.trails)
}

func TestClickingStarsWeaves(t *testing.T) {
	h := newHarness(t, nil)
	for _, id := range []string{"tower", "spring"} {
		p, _ := h.m.catalog.Lookup(id)
		x, y := h.cellOf(projection.Coord{Lat: p.Lat, Lng: p.Lng})
		h.click(x, y)
	}
	assert.Equal(t, []string{"tower", "spring"}, h.m.weaver.Points())

	// clicking an earlier star truncates back to it
	p, _ := h.m.catalog.Lookup("tower")
	x, y := h.cellOf(projection.Coord{Lat: p.Lat, Lng: p.Lng})
	h.click(x, y)
	assert.Equal(t, []string{"tower"}, h.m.weaver.Points())
	assert.False(t, h.m.active.Attached())
}

func TestClickingTrailHighlightsIt(t *testing.T) {
	h := newHarness(t, nil)
	h.weave("harbour", "ridge")
	h.key("s")
	h.key("ctrl+s")
	id := h.m.trails[0].ID

	h.key("esc")
	require.Empty(t, h.m.highlighted)

	mid := projection.Coord{Lat: 10, Lng: 20}
	x, y := h.cellOf(mid)
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.True(t, h.m.lines[id].Hovered())
	lbs := h.m.labels()
	require.Len(t, lbs, 1)
	assert.Equal(t, h.m.trails[0].Name, lbs[0].Text)

	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, id, h.m.highlighted)
	assert.Empty(t, h.m.weaver.Points(), "clicking a line picks no star")
}

func TestHitTestPrefersTopmostInteractiveLine(t *testing.T) {
	h := newHarness(t, nil)
	layer := newTermLayer()
	path := []projection.Coord{{Lat: 0, Lng: 0}, {Lat: 20, Lng: 40}}
	low := interact.NewInteractionLine(layer, "low")
	high := interact.NewInteractionLine(layer, "high")
	low.Update(path, interact.State{})
	high.Update(path, interact.State{Highlighted: true})

	lay := h.m.layout()
	v := h.m.viewport(lay.mapW, lay.mapH)
	x, y := v.micro(projection.Coord{Lat: 10, Lng: 20})

	layer.pointer(v, x, y, true)
	assert.True(t, high.Hovered())
	assert.False(t, low.Hovered())

	high.Update(nil, interact.State{})
	assert.False(t, high.Hovered(), "clearing a line drops its hover")
	layer.pointer(v, x+0.1, y, true)
	assert.True(t, low.Hovered())

	layer.pointer(v, x, y, false)
	assert.False(t, low.Hovered())
}

func TestEditAndDelete(t *testing.T) {
	h := newHarness(t, nil)
	h.weave("harbour", "ridge", "spring")
	h.key("s")
	h.key("ctrl+s")
	id := h.m.trails[0].ID

	h.key("e")
	require.NotNil(t, h.m.form)
	h.m.form.name.SetValue("Southern Arc")
	h.key("tab")
	h.m.form.desc.SetValue("three friends")
	h.key("ctrl+s")
	require.Nil(t, h.m.form)
	got, err := h.m.repo.Get(h.m.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Southern Arc", got.Name)
	assert.Equal(t, "three friends", got.Description)
	assert.Equal(t, "Southern Arc", h.m.lines[id].Name())

	h.key("d")
	assert.Empty(t, h.m.trails)
	assert.Empty(t, h.m.lines)
	assert.Empty(t, h.m.highlighted)
	assert.Len(t, h.m.layer.lines, 2, "only the active trail's lines remain")
}

func TestLayerForgetsClosedLines(t *testing.T) {
	layer := newTermLayer()
	path := []projection.Coord{{Lat: 0, Lng: 0}, {Lat: 20, Lng: 40}}
	kept := interact.NewInteractionLine(layer, "kept")
	kept.Update(path, interact.State{})

	for i := 0; i < 100; i++ {
		ln := interact.NewInteractionLine(layer, "gone")
		ln.Update(path, interact.State{Highlighted: i%2 == 0})
		ln.Close()
	}
	assert.Len(t, layer.lines, 2)
	assert.Len(t, layer.drawOrder(), 2)

	kept.Close()
	assert.Empty(t, layer.lines)
	assert.Nil(t, layer.hover)
}

func TestWriteFailureIsNotice(t *testing.T) {
	h := newHarness(t, nil)
	h.slot.PutErr = errors.New("disk full")
	h.weave("harbour", "ridge")
	h.key("s")
	h.key("ctrl+s")

	assert.Contains(t, h.m.notice, "this session only")
	assert.Len(t, h.m.trails, 1, "kept in memory")

	h.key("h")
	assert.Empty(t, h.m.notice, "any key dismisses the notice")
}

func TestShareCopiesLink(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.ShareBaseURL = "https://example.org/" })
	h.weave("tower", "harbour")
	h.key("s")
	h.key("ctrl+s")
	want := h.m.trails[0]

	h.key("y")
	require.NotNil(t, h.m.share)
	h.key("c")
	require.Len(t, h.copied, 1)
	assert.True(t, h.m.share.copied)

	tok, _, ok := share.FromURL(h.copied[0])
	require.True(t, ok)
	got, err := share.Decode(tok)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	h.key("esc")
	assert.Nil(t, h.m.share)
}

func TestShareClipboardFailure(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.Copy = func(string) error { return errors.New("no display") }
	})
	h.weave("tower", "harbour")
	h.key("s")
	h.key("ctrl+s")
	h.key("y")
	h.key("c")
	require.NotNil(t, h.m.share)
	assert.False(t, h.m.share.copied)
	assert.NotEmpty(t, h.m.share.err)
}

func TestSharedTrailIsViewOnlyUntilKept(t *testing.T) {
	shared := trail.Trail{
		ID:        "0192b6a8-0000-7000-8000-000000000abc",
		Name:      "From a friend",
		PointIDs:  []string{"spring", "ridge", "gone"},
		CreatedAt: fixedNow.Add(-time.Hour),
	}
	h := newHarness(t, func(d *Deps) { d.Shared = &shared })

	assert.Equal(t, shared.ID, h.m.highlighted)
	assert.True(t, h.m.lines[shared.ID].Attached())
	assert.Empty(t, h.m.repo.LoadAll(h.m.ctx), "nothing stored until kept")

	h.key("e")
	assert.Nil(t, h.m.form, "shared trails are not editable")

	h.key("k")
	assert.Nil(t, h.m.shared)
	all := h.m.repo.LoadAll(h.m.ctx)
	require.Len(t, all, 1)
	assert.True(t, shared.SameShape(all[0]))
	assert.NotEqual(t, shared.ID, all[0].ID, "the shared original is never stored")
	assert.True(t, all[0].CreatedAt.Equal(fixedNow))
	assert.Equal(t, all[0].ID, h.m.highlighted)
	_, ok := h.m.lines[shared.ID]
	assert.False(t, ok)
}

func TestPanelListsNewestFirst(t *testing.T) {
	h := newHarness(t, nil)
	ctx := h.m.ctx
	older := trail.Trail{ID: "a", Name: "Older", PointIDs: []string{"harbour", "ridge"}, CreatedAt: fixedNow.Add(-48 * time.Hour)}
	newer := trail.Trail{ID: "b", Name: "Newer", PointIDs: []string{"ridge", "spring"}, CreatedAt: fixedNow}
	require.NoError(t, h.m.repo.SaveAll(ctx, []trail.Trail{older, newer}))
	h.m.reload()

	h.key("tab")
	require.True(t, h.m.showPanel)
	items := h.m.l.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Newer", items[0].(trailItem).t.Name)

	h.key("enter")
	assert.Equal(t, "b", h.m.highlighted)

	h.key("i")
	require.True(t, h.m.showDetails)
	assert.Len(t, h.m.tbl.Rows(), 2)
	assert.Equal(t, "Newer", h.m.detailsTitle)
}

func TestExport(t *testing.T) {
	h := newHarness(t, nil)
	h.weave("harbour", "ridge", "spring")
	h.key("s")
	h.key("ctrl+s")

	cmd := h.key("x")
	require.NotNil(t, cmd)
	assert.True(t, h.m.busy)
	assert.Nil(t, h.key("x"), "one export at a time")

	msg := cmd()
	ex, ok := msg.(exportedMsg)
	require.True(t, ok)
	require.NoError(t, ex.err)
	data, err := os.ReadFile(ex.path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))

	h.send(msg)
	assert.False(t, h.m.busy)
	assert.Contains(t, h.m.status, ex.path)
}

func TestExportWithoutResolvablePoints(t *testing.T) {
	h := newHarness(t, nil)
	h.send(exportedMsg{name: "ghost", err: render.ErrNothingToExport})
	assert.Contains(t, h.m.notice, "nothing to export")
}

func TestLocate(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t, nil)
		assert.Nil(t, h.key("g"))
		assert.NotEmpty(t, h.m.notice)
	})
	t.Run("static", func(t *testing.T) {
		loc, err := locate.NewStatic(18, 55)
		require.NoError(t, err)
		h := newHarness(t, func(d *Deps) { d.Locator = loc })

		cmd := h.key("g")
		require.NotNil(t, cmd)
		h.send(cmd())
		require.NotNil(t, h.m.userPos)
		assert.Equal(t, 18.0, h.m.userPos.Lat)
		// focus is the user and the nearest star
		assert.Len(t, h.m.focus, 2)
		assert.Contains(t, h.m.View(), "✦")
	})
	t.Run("failure keeps state", func(t *testing.T) {
		h := newHarness(t, nil)
		before := h.m.focus
		h.send(locatedMsg{err: locate.ErrUnavailable})
		assert.Nil(t, h.m.userPos)
		assert.Equal(t, before, h.m.focus)
		assert.NotEmpty(t, h.m.notice)
	})
}

func TestViewRenders(t *testing.T) {
	h := newHarness(t, nil)
	h.weave("ridge", "harbour")
	out := h.m.View()
	assert.Contains(t, out, "constellations")
	assert.Contains(t, out, "Boats at dawn.", "narrative of the picked star")
	assert.Contains(t, out, "x export")

	h.key("h")
	assert.NotContains(t, h.m.View(), "x export")
}

func TestZoomAndReset(t *testing.T) {
	h := newHarness(t, nil)
	h.key("+")
	h.key("+")
	assert.InDelta(t, zoomStep*zoomStep, h.m.zoom, 1e-9)
	h.send(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, -2, h.m.offsetX)
	h.key("0")
	assert.Equal(t, 1.0, h.m.zoom)
	assert.Zero(t, h.m.offsetX)
	assert.Equal(t, []projection.Coord{{Lat: -20, Lng: -30}, {Lat: 25, Lng: 60}}, h.m.focus,
		"reset frames the catalog's bounding box")
}

func TestFocusOnLoneStarIsPadded(t *testing.T) {
	c, err := geom.NewCatalog([]geom.Point{{ID: "solo", Lat: 10, Lng: 20, Title: "Solo"}})
	require.NoError(t, err)
	h := newHarness(t, func(d *Deps) { d.Catalog = c })

	h.key("0")
	assert.Equal(t, []projection.Coord{{Lat: 9, Lng: 19}, {Lat: 11, Lng: 21}}, h.m.focus)
	lay := h.m.layout()
	v := h.m.viewport(lay.mapW, lay.mapH)
	require.True(t, v.ok)
	x, y := v.micro(projection.Coord{Lat: 10, Lng: 20})
	assert.InDelta(t, float64(v.wMic)/2, x, 1)
	assert.InDelta(t, float64(v.hMic)/2, y, 1)
}
