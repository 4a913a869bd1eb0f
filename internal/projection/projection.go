// Package projection maps geographic coordinates onto a fixed-size canvas
// and back. The mapping is equirectangular with one uniform scale so the
// aspect ratio of the trail is preserved, and it keeps trails that cross the
// antimeridian compact.
package projection

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoPoints  = errors.New("projection: no points")
	ErrBadCanvas = errors.New("projection: canvas smaller than padding")
)

// Coord is a geographic coordinate in degrees.
type Coord struct {
	Lat float64
	Lng float64
}

// Frame is a fitted projection for one set of coordinates.
type Frame struct {
	Width, Height int
	Padding       float64

	MinLng, MaxLng float64 // after antimeridian normalization
	MinLat, MaxLat float64
	LngRange       float64 // never zero
	LatRange       float64 // never zero
	Scale          float64
	OffsetX        float64
	OffsetY        float64

	// Wrapped is set when negative longitudes were shifted by +360.
	Wrapped bool
}

// CrossesAntimeridian reports whether lngs mix far-west (< -90) and far-east
// (> 90) values, in which case a naive min/max spans most of the globe.
func CrossesAntimeridian(lngs []float64) bool {
	if len(lngs) == 0 {
		return false
	}
	return floats.Min(lngs) < -90 && floats.Max(lngs) > 90
}

// Fit computes the frame that places every coordinate inside the padded
// canvas, centred.
func Fit(coords []Coord, width, height int, padding float64) (Frame, error) {
	if len(coords) == 0 {
		return Frame{}, ErrNoPoints
	}
	drawW := float64(width) - 2*padding
	drawH := float64(height) - 2*padding
	if drawW <= 0 || drawH <= 0 {
		return Frame{}, ErrBadCanvas
	}
	lats := make([]float64, len(coords))
	lngs := make([]float64, len(coords))
	for i, c := range coords {
		lats[i] = c.Lat
		lngs[i] = c.Lng
	}
	f := Frame{Width: width, Height: height, Padding: padding}
	f.Wrapped = CrossesAntimeridian(lngs)
	if f.Wrapped {
		for i, l := range lngs {
			if l < 0 {
				lngs[i] = l + 360
			}
		}
	}
	f.MinLng, f.MaxLng = floats.Min(lngs), floats.Max(lngs)
	f.MinLat, f.MaxLat = floats.Min(lats), floats.Max(lats)

	// A zero range becomes one degree centred on the shared value, so a lone
	// point lands in the middle of the canvas.
	f.LngRange = f.MaxLng - f.MinLng
	if f.LngRange == 0 {
		f.LngRange = 1
		f.MinLng -= 0.5
		f.MaxLng += 0.5
	}
	f.LatRange = f.MaxLat - f.MinLat
	if f.LatRange == 0 {
		f.LatRange = 1
		f.MinLat -= 0.5
		f.MaxLat += 0.5
	}
	f.Scale = math.Min(drawW/f.LngRange, drawH/f.LatRange)
	f.OffsetX = (float64(width) - f.LngRange*f.Scale) / 2
	f.OffsetY = (float64(height) - f.LatRange*f.Scale) / 2
	return f, nil
}

func (f Frame) normalize(lng float64) float64 {
	if f.Wrapped && lng < 0 {
		return lng + 360
	}
	return lng
}

// Project maps a coordinate to canvas pixels. Y grows downward.
func (f Frame) Project(lat, lng float64) (x, y float64) {
	x = (f.normalize(lng)-f.MinLng)*f.Scale + f.OffsetX
	y = (f.MaxLat-lat)*f.Scale + f.OffsetY
	return x, y
}

// ProjectAll projects coords in order.
func (f Frame) ProjectAll(coords []Coord) [][2]float64 {
	out := make([][2]float64, len(coords))
	for i, c := range coords {
		x, y := f.Project(c.Lat, c.Lng)
		out[i] = [2]float64{x, y}
	}
	return out
}

// Unproject is the inverse of Project. Longitudes are wrapped back into
// [-180, 180].
func (f Frame) Unproject(x, y float64) (lat, lng float64) {
	lng = (x-f.OffsetX)/f.Scale + f.MinLng
	lat = f.MaxLat - (y-f.OffsetY)/f.Scale
	return lat, WrapLng(lng)
}

// WrapLng folds a longitude into [-180, 180].
func WrapLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}
