package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var ErrBadSize = errors.New("render: surface size must be positive")

const lutSize = 1024

type fontSet struct {
	regular *opentype.Font
	italic  *opentype.Font
}

var loadFonts = sync.OnceValues(func() (fontSet, error) {
	reg, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("parse regular font: %w", err)
	}
	ita, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("parse italic font: %w", err)
	}
	return fontSet{regular: reg, italic: ita}, nil
})

// ImageSurface draws into an in-memory RGBA image. Shapes are anti-aliased
// with a vector rasterizer and text uses the Go font family.
type ImageSurface struct {
	img   *image.RGBA
	fonts fontSet
	faces map[Font]font.Face
	face  font.Face
}

// NewImageSurface returns a transparent w×h surface with 16px regular text
// selected.
func NewImageSurface(w, h int) (*ImageSurface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, w, h)
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	s := &ImageSurface{
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		fonts: fonts,
		faces: make(map[Font]font.Face),
	}
	if err := s.SetFont(Font{Size: 16}); err != nil {
		return nil, err
	}
	return s, nil
}

// NewImage is a SurfaceFactory backed by ImageSurface.
func NewImage(w, h int) (Surface, error) {
	s, err := NewImageSurface(w, h)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ImageSurface) Image() *image.RGBA { return s.img }

func (s *ImageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *ImageSurface) FillLinearGradient(p0, p1 Pt, stops []Stop) {
	lut := gradientLUT(stops)
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	den := dx*dx + dy*dy
	b := s.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var t float64
			if den > 0 {
				t = ((float64(x)+0.5-p0.X)*dx + (float64(y)+0.5-p0.Y)*dy) / den
			}
			s.img.SetRGBA(x, y, lut.at(t))
		}
	}
}

func (s *ImageSurface) FillCircle(center Pt, r float64, c color.NRGBA) {
	if r <= 0 {
		return
	}
	s.fill(image.NewUniform(c), func(z *vector.Rasterizer) { circle(z, center, r) })
}

func (s *ImageSurface) FillRadialGlow(center Pt, r float64, stops []Stop) {
	if r <= 0 {
		return
	}
	src := &radial{c: center, r: r, lut: gradientLUT(stops)}
	s.fill(src, func(z *vector.Rasterizer) { circle(z, center, r) })
}

func (s *ImageSurface) StrokePolyline(pts []Pt, width float64, c color.NRGBA, glow float64, glowColor color.NRGBA) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	if glow > 0 {
		const steps = 4
		halo := glowColor
		halo.A = uint8(float64(glowColor.A) / (steps + 1))
		for k := steps; k >= 1; k-- {
			w := width + 2*glow*float64(k)/steps
			s.fill(image.NewUniform(halo), func(z *vector.Rasterizer) { stroke(z, pts, w) })
		}
	}
	s.fill(image.NewUniform(c), func(z *vector.Rasterizer) { stroke(z, pts, width) })
}

func (s *ImageSurface) SetFont(f Font) error {
	if f.Size <= 0 {
		return fmt.Errorf("render: font size %v", f.Size)
	}
	if face, ok := s.faces[f]; ok {
		s.face = face
		return nil
	}
	src := s.fonts.regular
	if f.Italic {
		src = s.fonts.italic
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("render: font face: %w", err)
	}
	s.faces[f] = face
	s.face = face
	return nil
}

func (s *ImageSurface) MeasureText(text string) float64 {
	return float64(font.MeasureString(s.face, text)) / 64
}

func (s *ImageSurface) FillText(text string, x, y float64, c color.NRGBA, align Align) {
	if align == AlignRight {
		x -= s.MeasureText(text)
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text)
}

func (s *ImageSurface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

func (s *ImageSurface) fill(src image.Image, build func(z *vector.Rasterizer)) {
	w, h := s.Size()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	build(z)
	z.Draw(s.img, s.img.Bounds(), src, image.Point{})
}

// circle adds a closed polygon approximating a circle. Vertices run
// clockwise in screen space, the same winding stroke uses, so overlapping
// pieces of one path never cancel out.
func circle(z *vector.Rasterizer, c Pt, r float64) {
	n := int(math.Ceil(r * 2))
	n = max(16, min(n, 128))
	for i := 0; i <= n; i++ {
		a := -2 * math.Pi * float64(i) / float64(n)
		x := float32(c.X + r*math.Cos(a))
		y := float32(c.Y + r*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

// stroke outlines each segment as a quad and rounds every vertex.
func stroke(z *vector.Rasterizer, pts []Pt, width float64) {
	hw := width / 2
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		z.LineTo(float32(b.X+nx), float32(b.Y+ny))
		z.LineTo(float32(b.X-nx), float32(b.Y-ny))
		z.LineTo(float32(a.X-nx), float32(a.Y-ny))
		z.ClosePath()
	}
	for _, p := range pts {
		circle(z, p, hw)
	}
}

// lut samples a gradient at lutSize evenly spaced offsets.
type lut []color.RGBA

func (l lut) at(t float64) color.RGBA {
	if len(l) == 0 {
		return color.RGBA{}
	}
	if t <= 0 {
		return l[0]
	}
	if t >= 1 {
		return l[len(l)-1]
	}
	return l[int(t*float64(len(l)-1)+0.5)]
}

func gradientLUT(stops []Stop) lut {
	if len(stops) == 0 {
		return nil
	}
	out := make(lut, lutSize)
	for i := range out {
		c := sampleStops(stops, float64(i)/float64(lutSize-1))
		out[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return out
}

// sampleStops interpolates RGB through go-colorful and alpha linearly.
func sampleStops(stops []Stop, t float64) color.NRGBA {
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 0; i+1 < len(stops); i++ {
		a, b := stops[i], stops[i+1]
		if t < a.Offset || t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		u := (t - a.Offset) / span
		m := toColorful(a.Color).BlendRgb(toColorful(b.Color), u).Clamped()
		r, g, bl := m.RGB255()
		alpha := float64(a.Color.A) + (float64(b.Color.A)-float64(a.Color.A))*u
		return color.NRGBA{R: r, G: g, B: bl, A: uint8(alpha + 0.5)}
	}
	return last.Color
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// radial is an unbounded source image whose color depends on the distance
// from c, normalized by r.
type radial struct {
	c   Pt
	r   float64
	lut lut
}

func (g *radial) ColorModel() color.Model { return color.RGBAModel }

func (g *radial) Bounds() image.Rectangle {
	return image.Rect(-1<<20, -1<<20, 1<<20, 1<<20)
}

func (g *radial) At(x, y int) color.Color {
	d := math.Hypot(float64(x)+0.5-g.c.X, float64(y)+0.5-g.c.Y)
	return g.lut.at(d / g.r)
}
