package tui

import (
	"constellations/internal/projection"
)

const viewPadding = 4 // micro-pixels kept clear around the focus area

// viewport maps geographic coordinates onto the braille micro-grid of a
// w×h cell map, applying zoom about the centre and the pan offsets.
type viewport struct {
	frame      projection.Frame
	zoom       float64
	offX, offY int // in cells
	wMic, hMic int
	ok         bool
}

func (m Model) viewport(w, h int) viewport {
	v := viewport{zoom: m.zoom, offX: m.offsetX, offY: m.offsetY, wMic: w * 2, hMic: h * 4}
	f, err := projection.Fit(m.focus, v.wMic, v.hMic, viewPadding)
	if err != nil {
		return v
	}
	v.frame, v.ok = f, true
	return v
}

// micro projects c to micro-pixel coordinates.
func (v viewport) micro(c projection.Coord) (float64, float64) {
	x, y := v.frame.Project(c.Lat, c.Lng)
	cx, cy := float64(v.wMic)/2, float64(v.hMic)/2
	x = cx + (x-cx)*v.zoom + float64(v.offX*2)
	y = cy + (y-cy)*v.zoom + float64(v.offY*4)
	return x, y
}

func (v viewport) microInt(c projection.Coord) (int, int) {
	x, y := v.micro(c)
	return int(x), int(y)
}

// cellToLatLng is the inverse of micro for the centre of a cell.
func (v viewport) cellToLatLng(cx, cy int) (lat, lng float64, ok bool) {
	if !v.ok {
		return 0, 0, false
	}
	return v.microToLatLng(float64(cx*2)+1, float64(cy*4)+2)
}

func (v viewport) microToLatLng(x, y float64) (lat, lng float64, ok bool) {
	if !v.ok || v.zoom == 0 {
		return 0, 0, false
	}
	cx, cy := float64(v.wMic)/2, float64(v.hMic)/2
	x = (x-float64(v.offX*2)-cx)/v.zoom + cx
	y = (y-float64(v.offY*4)-cy)/v.zoom + cy
	lat, lng = v.frame.Unproject(x, y)
	return lat, lng, true
}
