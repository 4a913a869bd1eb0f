package geom

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

//go:embed sample.geojson
var sampleGeoJSON []byte

// Catalog is the read-only set of points trails refer to.
type Catalog struct {
	points []Point
	index  map[string]int
	bbox   BBox
}

// NewCatalog validates points and indexes them by id. Order is preserved.
func NewCatalog(points []Point) (*Catalog, error) {
	if len(points) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		points: make([]Point, 0, len(points)),
		index:  make(map[string]int, len(points)),
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		c.bbox = c.bbox.Extend(p.Lng, p.Lat, len(c.points) == 0)
		c.index[p.ID] = len(c.points)
		c.points = append(c.points, p)
	}
	return c, nil
}

// Default returns the bundled sample catalog.
func Default() (*Catalog, error) {
	pts, err := ParseGeoJSON(sampleGeoJSON)
	if err != nil {
		return nil, err
	}
	return NewCatalog(pts)
}

// Load reads a catalog file, picking the loader by extension.
func Load(path string) (*Catalog, error) {
	var (
		pts []Point
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		pts, err = LoadGeoJSON(path)
	case ".csv":
		pts, err = LoadCSV(path)
	case ".kml":
		pts, err = LoadKML(path)
	case ".wkt":
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			pts, err = ParseWKTPoints(string(data))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return NewCatalog(pts)
}

func (c *Catalog) Len() int   { return len(c.points) }
func (c *Catalog) BBox() BBox { return c.bbox }

// Points returns a copy of the catalog in load order.
func (c *Catalog) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

func (c *Catalog) Lookup(id string) (Point, bool) {
	i, ok := c.index[id]
	if !ok {
		return Point{}, false
	}
	return c.points[i], true
}

// Resolve maps ids to points in order, silently dropping ids the catalog no
// longer knows.
func (c *Catalog) Resolve(ids []string) []Point {
	out := make([]Point, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.Lookup(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// Nearest returns the point closest to lng/lat, measuring longitude the
// short way around the antimeridian.
func (c *Catalog) Nearest(lng, lat float64) (Point, bool) {
	best := math.Inf(1)
	var bp Point
	for _, p := range c.points {
		dx := math.Abs(p.Lng - lng)
		if dx > 180 {
			dx = 360 - dx
		}
		dy := p.Lat - lat
		if d := dx*dx + dy*dy; d < best {
			best = d
			bp = p
		}
	}
	return bp, !math.IsInf(best, 1)
}
