package tui

// cell is one terminal cell of the map. A zero rune marks the right half of
// a wide glyph and renders as nothing.
type cell struct {
	r   rune
	ink ink
}

// brailleBuf is a 2x4 micro-pixel canvas per terminal cell. Each cell keeps
// the highest ink drawn into it.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
	ink  [][]ink
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	k := make([][]ink, h)
	for i := range m {
		m[i] = make([]uint8, w)
		k[i] = make([]ink, w)
	}
	return &brailleBuf{w: w, h: h, m: m, ink: k}
}

// dot bits indexed by [column][row] within a cell.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int, k ink) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= dotBits[rx][ry]
	if k > b.ink[cy][cx] {
		b.ink[cy][cx] = k
	}
}

// dot fills a 2x2 block centred near mx, my.
func (b *brailleBuf) dot(mx, my int, k ink) {
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			b.setPixel(mx+dx, my+dy, k)
		}
	}
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int, k ink) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, k)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (b *brailleBuf) toCells() [][]cell {
	out := make([][]cell, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]cell, b.w)
		for x := 0; x < b.w; x++ {
			if mask := b.m[y][x]; mask == 0 {
				row[x] = cell{r: ' '}
			} else {
				row[x] = cell{r: rune(0x2800 + int(mask)), ink: b.ink[y][x]}
			}
		}
		out[y] = row
	}
	return out
}
