package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constellations/internal/projection"
)

type fakeLine struct {
	path     []projection.Coord
	style    Style
	attached bool
	removed  bool
	handlers map[int]func(PointerEvent)
	next     int
}

func (f *fakeLine) SetPath(p []projection.Coord) { f.path = p }
func (f *fakeLine) SetStyle(s Style)             { f.style = s }
func (f *fakeLine) Attach()                      { f.attached = true }
func (f *fakeLine) Detach()                      { f.attached = false }
func (f *fakeLine) Remove()                      { f.removed = true }

func (f *fakeLine) OnPointer(fn func(PointerEvent)) func() {
	id := f.next
	f.next++
	f.handlers[id] = fn
	return func() { delete(f.handlers, id) }
}

func (f *fakeLine) fire(k PointerKind) {
	for _, h := range f.handlers {
		h(PointerEvent{Kind: k})
	}
}

type fakeLayer struct{ lines []*fakeLine }

func (l *fakeLayer) NewPolyline() Polyline {
	f := &fakeLine{handlers: map[int]func(PointerEvent){}}
	l.lines = append(l.lines, f)
	return f
}

func path(n int) []projection.Coord {
	out := make([]projection.Coord, n)
	for i := range out {
		out[i] = projection.Coord{Lat: float64(i), Lng: float64(10 * i)}
	}
	return out
}

func setup(t *testing.T, name string) (*InteractionLine, *fakeLine, *fakeLine) {
	t.Helper()
	layer := &fakeLayer{}
	l := NewInteractionLine(layer, name)
	require.Len(t, layer.lines, 2)
	return l, layer.lines[0], layer.lines[1]
}

func TestStyles(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		opacity float64
		weight  float64
		z       int
	}{
		{"idle", State{}, 0.3, 2, 1},
		{"active", State{Active: true}, 1, 3, 10},
		{"highlighted", State{Highlighted: true}, 1, 4, 10},
		{"both", State{Active: true, Highlighted: true}, 1, 4, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := VisibleStyle(tt.state)
			assert.Equal(t, VisibleColor, v.Color)
			assert.Equal(t, tt.opacity, v.Opacity)
			assert.Equal(t, tt.weight, v.Weight)
			assert.Equal(t, tt.z, v.Z)
			assert.False(t, v.Interactive)

			h := HitStyle(tt.state)
			assert.Zero(t, h.Opacity)
			assert.Equal(t, float64(HitWeight), h.Weight)
			assert.Equal(t, v.Z+1, h.Z)
			assert.True(t, h.Interactive)
			assert.Equal(t, "pointer", h.Cursor)
		})
	}
}

func TestUpdateSharesPath(t *testing.T) {
	l, vis, hit := setup(t, "n")
	l.Update(path(3), State{Active: true})

	assert.True(t, vis.attached)
	assert.True(t, hit.attached)
	assert.Equal(t, path(3), vis.path)
	assert.Equal(t, vis.path, hit.path)
	assert.Equal(t, VisibleStyle(State{Active: true}), vis.style)
	assert.Equal(t, HitStyle(State{Active: true}), hit.style)
}

func TestBelowTwoPointsClears(t *testing.T) {
	l, vis, hit := setup(t, "n")
	l.Update(path(3), State{})
	require.True(t, l.Attached())

	for _, n := range []int{1, 0} {
		l.Update(path(n), State{})
		assert.Empty(t, vis.path)
		assert.Empty(t, hit.path)
		assert.False(t, vis.attached)
		assert.False(t, hit.attached)
	}

	l.Update(path(2), State{})
	assert.True(t, vis.attached)
	assert.Len(t, hit.path, 2)
}

func TestHoverFromEitherLine(t *testing.T) {
	l, vis, hit := setup(t, "Trail")
	l.Update(path(4), State{})
	var seen []bool
	l.OnHover(func(h bool) { seen = append(seen, h) })

	hit.fire(PointerEnter)
	assert.True(t, l.Hovered())
	assert.True(t, l.ShowLabel())
	vis.fire(PointerEnter)
	hit.fire(PointerLeave)
	assert.False(t, l.Hovered())
	assert.False(t, l.ShowLabel())
	assert.Equal(t, []bool{true, false}, seen)
}

func TestShowLabel(t *testing.T) {
	l, _, hit := setup(t, "")
	l.Update(path(3), State{Highlighted: true})
	assert.False(t, l.ShowLabel(), "no name, no label")

	l.SetName("Named")
	assert.True(t, l.ShowLabel())
	lb, ok := l.Label()
	require.True(t, ok)
	assert.Equal(t, 100, lb.Z)
	assert.Equal(t, projection.Coord{Lat: 1, Lng: 10}, lb.Anchor)

	l.Update(path(3), State{})
	hit.fire(PointerEnter)
	lb, ok = l.Label()
	require.True(t, ok)
	assert.Equal(t, 60, lb.Z)

	l.Update(path(1), State{Highlighted: true})
	assert.False(t, l.ShowLabel())
	assert.False(t, l.Hovered())
}

func TestMidpoint(t *testing.T) {
	_, ok := Midpoint(nil)
	assert.False(t, ok)

	c, ok := Midpoint(path(1))
	require.True(t, ok)
	assert.Equal(t, projection.Coord{}, c)

	c, _ = Midpoint(path(4))
	assert.Equal(t, projection.Coord{Lat: 1.5, Lng: 15}, c)

	c, _ = Midpoint(path(5))
	assert.Equal(t, projection.Coord{Lat: 2, Lng: 20}, c)
}

func TestClose(t *testing.T) {
	l, vis, hit := setup(t, "n")
	l.Update(path(3), State{Active: true})
	l.Close()

	assert.False(t, vis.attached)
	assert.False(t, hit.attached)
	assert.Empty(t, vis.path)
	assert.Empty(t, vis.handlers)
	assert.Empty(t, hit.handlers)
	assert.True(t, vis.removed)
	assert.True(t, hit.removed)

	_, ok := l.LabelAnchor()
	assert.False(t, ok)
}
