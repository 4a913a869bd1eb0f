package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseWKTPoints parses a subset of WKT and returns every vertex as a catalog
// point with a positional id (pt-1, pt-2, ...).
// Supported: POINT(x y), MULTIPOINT(x y, ...), LINESTRING(x y, ...), POLYGON((x y, ...))
func ParseWKTPoints(wkt string) ([]Point, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return nil, errors.New("empty wkt")
	}
	var pts []Point
	parseCoords := func(block string) {
		// MULTIPOINT may wrap each tuple in its own parentheses
		block = strings.NewReplacer("(", " ", ")", " ").Replace(block)
		for _, tup := range strings.Split(block, ",") {
			parts := strings.Fields(strings.TrimSpace(tup))
			if len(parts) < 2 {
				continue
			}
			x, err1 := strconv.ParseFloat(parts[0], 64)
			y, err2 := strconv.ParseFloat(parts[1], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			pts = append(pts, Point{ID: fmt.Sprintf("pt-%d", len(pts)+1), Lng: x, Lat: y})
		}
	}
	up := strings.ToUpper(s)
	open, close := "(", ")"
	var kind string
	switch {
	case strings.HasPrefix(up, "MULTIPOINT"):
		kind = "multipoint"
	case strings.HasPrefix(up, "POINT"):
		kind = "point"
	case strings.HasPrefix(up, "LINESTRING"):
		kind = "linestring"
	case strings.HasPrefix(up, "POLYGON"):
		kind = "polygon"
		open, close = "((", "))"
	default:
		return nil, errors.New("unsupported wkt type")
	}
	i := strings.Index(s, open)
	j := strings.LastIndex(s, close)
	if i < 0 || j <= i {
		return nil, fmt.Errorf("wkt %s: invalid", kind)
	}
	parseCoords(s[i+len(open) : j])
	if len(pts) == 0 {
		return nil, errors.New("wkt: no coordinates parsed")
	}
	return pts, nil
}

// FormatLineString renders points as a WKT LINESTRING (lon lat order).
// A single point is rendered as POINT, none as LINESTRING EMPTY.
func FormatLineString(pts []Point) string {
	switch len(pts) {
	case 0:
		return "LINESTRING EMPTY"
	case 1:
		return fmt.Sprintf("POINT (%s %s)", fmtCoord(pts[0].Lng), fmtCoord(pts[0].Lat))
	}
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmtCoord(p.Lng) + " " + fmtCoord(p.Lat)
	}
	return "LINESTRING (" + strings.Join(parts, ", ") + ")"
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
