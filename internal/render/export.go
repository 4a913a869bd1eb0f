package render

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"constellations/internal/geom"
	"constellations/internal/projection"
	"constellations/internal/trail"
)

const (
	CanvasWidth  = 1200
	CanvasHeight = 630
	Padding      = 120
	StarCount    = 200

	textPadding = 60
	lineHeight  = 22
)

var (
	ErrNothingToExport    = errors.New("render: no trail points resolve against the catalog")
	ErrSurfaceUnavailable = errors.New("render: drawing surface unavailable")
)

var (
	backgroundStops = []Stop{
		{0, RGBA(0x0f, 0x0c, 0x29, 1)},
		{0.5, RGBA(0x21, 0x20, 0x3a, 1)},
		{1, RGBA(0x24, 0x24, 0x3e, 1)},
	}
	starStops = []Stop{
		{0, RGBA(253, 224, 71, 1)},
		{0.5, RGBA(253, 224, 71, 0.5)},
		{1, RGBA(253, 224, 71, 0)},
	}
	dustColor = RGBA(255, 255, 255, 0.5)
	lineColor = RGBA(196, 181, 253, 0.4)
	glowColor = RGBA(196, 181, 253, 0.8)
	nameColor = RGBA(233, 213, 255, 0.95)
	descColor = RGBA(233, 213, 255, 0.7)
	attrColor = RGBA(233, 213, 255, 0.5)
)

// Artifact is an encoded trail image.
type Artifact struct {
	Filename string
	Data     []byte
}

// Save writes the artifact into dir and returns the full path. Path
// separators in the file name are replaced so the file stays inside dir.
func (a Artifact) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(a.Filename)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Exporter renders trails as 1200×630 starfield images.
type Exporter struct {
	surface SurfaceFactory
	rnd     *rand.Rand
}

type ExportOption func(*Exporter)

// WithSurface replaces the surface factory.
func WithSurface(f SurfaceFactory) ExportOption { return func(e *Exporter) { e.surface = f } }

// WithRand fixes the source of star placement and sizes.
func WithRand(r *rand.Rand) ExportOption { return func(e *Exporter) { e.rnd = r } }

func NewExporter(opts ...ExportOption) *Exporter {
	seed := uint64(time.Now().UnixNano())
	e := &Exporter{
		surface: NewImage,
		rnd:     rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Export draws t. Point ids the catalog does not know are skipped; if none
// are left the export fails with ErrNothingToExport. user signs the image.
func (e *Exporter) Export(t trail.Trail, cat *geom.Catalog, user string) (Artifact, error) {
	pts := cat.Resolve(t.PointIDs)
	if len(pts) == 0 {
		return Artifact{}, ErrNothingToExport
	}
	s, err := e.surface(CanvasWidth, CanvasHeight)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}
	const w, h = float64(CanvasWidth), float64(CanvasHeight)

	s.FillLinearGradient(Pt{0, 0}, Pt{0, h}, backgroundStops)
	for range StarCount {
		x, y := e.rnd.Float64()*w, e.rnd.Float64()*h
		s.FillCircle(Pt{x, y}, e.rnd.Float64()*1.5, dustColor)
	}

	coords := make([]projection.Coord, len(pts))
	for i, p := range pts {
		coords[i] = projection.Coord{Lat: p.Lat, Lng: p.Lng}
	}
	frame, err := projection.Fit(coords, CanvasWidth, CanvasHeight, Padding)
	if err != nil {
		return Artifact{}, err
	}
	path := make([]Pt, len(coords))
	for i, xy := range frame.ProjectAll(coords) {
		path[i] = Pt{xy[0], xy[1]}
	}
	if len(path) > 1 {
		s.StrokePolyline(path, 1.5, lineColor, 8, glowColor)
	}
	mid := len(path) / 2
	for i, p := range path {
		size := 4.0
		if i == mid {
			size += 3
		} else {
			size += e.rnd.Float64() * 2
		}
		s.FillRadialGlow(p, size*2, starStops)
	}

	if err := e.drawText(s, t, user); err != nil {
		return Artifact{}, err
	}

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return Artifact{}, fmt.Errorf("render: encode png: %w", err)
	}
	return Artifact{Filename: Filename(t.Name), Data: buf.Bytes()}, nil
}

func (e *Exporter) drawText(s Surface, t trail.Trail, user string) error {
	const h = float64(CanvasHeight)
	if err := s.SetFont(Font{Size: 32, Italic: true}); err != nil {
		return err
	}
	s.FillText(t.Name, textPadding, h-textPadding-60, nameColor, AlignLeft)

	if t.Description != "" {
		if err := s.SetFont(Font{Size: 16}); err != nil {
			return err
		}
		y := h - textPadding - 30
		for _, line := range WrapText(s, t.Description, CanvasWidth/2) {
			s.FillText(line, textPadding, y, descColor, AlignLeft)
			y += lineHeight
		}
	}

	if err := s.SetFont(Font{Size: 14}); err != nil {
		return err
	}
	s.FillText(Attribution(user), CanvasWidth-textPadding, h-textPadding+20, attrColor, AlignRight)
	return nil
}

// Attribution is the signature line printed on every image.
func Attribution(user string) string {
	if strings.TrimSpace(user) == "" {
		user = "a cartographer"
	}
	return "Constellations – constellation created by " + user
}

var spaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

// Filename derives the download name from a trail name.
func Filename(name string) string {
	return "constellation-" + spaceRun.ReplaceAllString(strings.ToLower(name), "-") + ".png"
}
