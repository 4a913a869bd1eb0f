// Package render draws a trail into a shareable PNG.
//
// Drawing goes through the Surface capability so the exporter does not care
// what backs the pixels. ImageSurface is the in-process implementation.
package render

import (
	"image/color"
	"io"
)

// Align is the horizontal anchor of FillText.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Pt is a canvas position in pixels.
type Pt struct{ X, Y float64 }

// Stop is one color stop of a gradient. Offset is in [0, 1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Font selects a face for subsequent text calls.
type Font struct {
	Size   float64
	Italic bool
}

// Surface is a 2D raster target.
type Surface interface {
	Size() (w, h int)
	// FillLinearGradient paints the whole surface with a gradient running
	// from p0 to p1.
	FillLinearGradient(p0, p1 Pt, stops []Stop)
	FillCircle(center Pt, r float64, c color.NRGBA)
	// FillRadialGlow blends a disc of radius r whose color follows stops
	// from the center outwards.
	FillRadialGlow(center Pt, r float64, stops []Stop)
	// StrokePolyline strokes pts with round joins. A positive glow draws a
	// soft halo of that many pixels beneath the stroke in glowColor.
	StrokePolyline(pts []Pt, width float64, c color.NRGBA, glow float64, glowColor color.NRGBA)
	SetFont(f Font) error
	MeasureText(s string) float64
	// FillText draws s on baseline y; x is the left or right edge per align.
	FillText(s string, x, y float64, c color.NRGBA, align Align)
	EncodePNG(w io.Writer) error
}

// SurfaceFactory creates a blank surface of the given size.
type SurfaceFactory func(w, h int) (Surface, error)

// RGBA is shorthand for an NRGBA color with a fractional alpha.
func RGBA(r, g, b uint8, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}
}
