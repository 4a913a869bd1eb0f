package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// truncate shortens s to at most w terminal columns.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "…")
}

// segmentDist is the distance from p to segment ab.
func segmentDist(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// putText writes s into row starting at column x. Wide runes take two
// cells; text past the row end is dropped.
func putText(row []cell, x int, s string, k ink) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x < 0 {
			x += w
			continue
		}
		if x+w > len(row) {
			return
		}
		row[x] = cell{r: r, ink: k}
		if w == 2 {
			row[x+1] = cell{}
		}
		x += w
	}
}

// renderCells turns cells into styled lines, one style run at a time.
func renderCells(cells [][]cell) string {
	lines := make([]string, len(cells))
	for y, row := range cells {
		var (
			sb  strings.Builder
			run strings.Builder
			cur ink
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if st, ok := inkStyles[cur]; ok {
				sb.WriteString(st.Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
			run.Reset()
		}
		for _, c := range row {
			if c.r == 0 {
				continue
			}
			if c.ink != cur {
				flush()
				cur = c.ink
			}
			run.WriteRune(c.r)
		}
		flush()
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// overlay centres box over a w×h area.
func overlay(w, h int, box string) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}
