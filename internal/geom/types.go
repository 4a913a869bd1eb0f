package geom

import (
	"errors"
	"fmt"
)

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Extend grows the box to include lon/lat. A zero box starts at the first point
// only when empty is true.
func (b BBox) Extend(lon, lat float64, empty bool) BBox {
	if empty {
		return BBox{MinX: lon, MinY: lat, MaxX: lon, MaxY: lat}
	}
	if lon < b.MinX {
		b.MinX = lon
	}
	if lat < b.MinY {
		b.MinY = lat
	}
	if lon > b.MaxX {
		b.MaxX = lon
	}
	if lat > b.MaxY {
		b.MaxY = lat
	}
	return b
}

// Pad returns a box with at least min extent on each axis, centred on the
// original. Single-point boxes would otherwise collapse the viewport.
func (b BBox) Pad(min float64) BBox {
	if w := b.MaxX - b.MinX; w < min {
		d := (min - w) / 2
		b.MinX -= d
		b.MaxX += d
	}
	if h := b.MaxY - b.MinY; h < min {
		d := (min - h) / 2
		b.MinY -= d
		b.MaxY += d
	}
	return b
}

// Point is a point of interest. Everything besides ID and the coordinate is
// display metadata carried through untouched.
type Point struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	AudioURL    string  `json:"audioUrl,omitempty"`
}

var (
	ErrMissingID       = errors.New("point: missing id")
	ErrOutOfRange      = errors.New("point: coordinate out of range")
	ErrDuplicateID     = errors.New("catalog: duplicate point id")
	ErrEmptyCatalog    = errors.New("catalog: no points")
	ErrUnsupportedFile = errors.New("catalog: unsupported file")
)

func (p Point) Validate() error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: %s (%g, %g)", ErrOutOfRange, p.ID, p.Lat, p.Lng)
	}
	return nil
}
