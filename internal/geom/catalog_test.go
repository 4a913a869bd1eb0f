package geom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 10)

	p, ok := c.Lookup("suva")
	require.True(t, ok)
	assert.Equal(t, "Suva", p.Title)
	assert.InDelta(t, 178.4501, p.Lng, 1e-9)
}

func TestNewCatalogRejectsBadPoints(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewCatalog([]Point{{ID: "a", Lat: 1, Lng: 1}, {ID: "a", Lat: 2, Lng: 2}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewCatalog([]Point{{ID: "a", Lat: 91, Lng: 0}})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = NewCatalog([]Point{{Lat: 0, Lng: 0}})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestResolveDropsUnknownIDs(t *testing.T) {
	c, err := NewCatalog([]Point{
		{ID: "p1", Lat: 0, Lng: 0},
		{ID: "p2", Lat: 10, Lng: 10},
	})
	require.NoError(t, err)

	got := c.Resolve([]string{"p2", "gone", "p1"})
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)
	assert.Empty(t, c.Resolve([]string{"x"}))
}

func TestCatalogBBox(t *testing.T) {
	c, err := NewCatalog([]Point{
		{ID: "a", Lat: -5, Lng: 10},
		{ID: "b", Lat: 20, Lng: -30},
	})
	require.NoError(t, err)
	assert.Equal(t, BBox{MinX: -30, MinY: -5, MaxX: 10, MaxY: 20}, c.BBox())
}

func TestNearestWrapsAntimeridian(t *testing.T) {
	c, err := NewCatalog([]Point{
		{ID: "east", Lat: 0, Lng: 179},
		{ID: "mid", Lat: 0, Lng: 100},
	})
	require.NoError(t, err)
	p, ok := c.Nearest(-179, 0)
	require.True(t, ok)
	assert.Equal(t, "east", p.ID)
}

func TestBBoxPad(t *testing.T) {
	b := BBox{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}.Pad(2)
	assert.Equal(t, BBox{MinX: 4, MinY: 4, MaxX: 6, MaxY: 6}, b)
}

func TestLoadByExtension(t *testing.T) {
	csvPath := writeFile(t, "pts.csv", "id,name,latitude,longitude\na,Alpha,1.5,2.5\nb,Beta,-3,4\nbad,Bad,x,y\n")
	c, err := Load(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	p, _ := c.Lookup("a")
	assert.Equal(t, "Alpha", p.Title)
	assert.Equal(t, 1.5, p.Lat)

	kmlPath := writeFile(t, "pts.kml", `<?xml version="1.0"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
<Placemark id="k1"><name>One</name><Point><coordinates>10,20,0</coordinates></Point></Placemark>
<Placemark><name>Two</name><Point><coordinates>-10,-20</coordinates></Point></Placemark>
</Document></kml>`)
	c, err = Load(kmlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	p, ok := c.Lookup("k1")
	require.True(t, ok)
	assert.Equal(t, 20.0, p.Lat)
	assert.Equal(t, "One", p.Title)

	wktPath := writeFile(t, "pts.wkt", "MULTIPOINT ((10 40), (40 30))")
	c, err = Load(wktPath)
	require.NoError(t, err)
	p, _ = c.Lookup("pt-2")
	assert.Equal(t, 40.0, p.Lng)
	assert.Equal(t, 30.0, p.Lat)

	_, err = Load(writeFile(t, "pts.shp", "x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestParseGeoJSON(t *testing.T) {
	pts, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"a","name":"A"},"geometry":{"type":"Point","coordinates":[1,2]}},
		{"type":"Feature","id":7,"properties":{},"geometry":{"type":"MultiPoint","coordinates":[[3,4],[5,6]]}},
		{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}
	]}`))
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, Point{ID: "a", Lng: 1, Lat: 2, Title: "A"}, pts[0])
	assert.Equal(t, "7-1", pts[1].ID)
	assert.Equal(t, "7-2", pts[2].ID)

	_, err = ParseGeoJSON([]byte(`{"features":[]}`))
	assert.Error(t, err)
	_, err = ParseGeoJSON([]byte(`{"type":"Polygon","coordinates":[]}`))
	assert.Error(t, err)
}

func TestFormatLineString(t *testing.T) {
	assert.Equal(t, "LINESTRING EMPTY", FormatLineString(nil))
	assert.Equal(t, "POINT (1 2)", FormatLineString([]Point{{Lng: 1, Lat: 2}}))
	assert.Equal(t, "LINESTRING (1 2, -3.5 4)", FormatLineString([]Point{{Lng: 1, Lat: 2}, {Lng: -3.5, Lat: 4}}))

	pts, err := ParseWKTPoints("LINESTRING (1 2, -3.5 4)")
	require.NoError(t, err)
	assert.Equal(t, -3.5, pts[1].Lng)
}
