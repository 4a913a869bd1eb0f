package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// layout is the screen geometry shared by View and mouse handling.
type layout struct {
	contentW, contentH int
	mapX, mapY         int
	mapW, mapH         int
}

func (m Model) layout() layout {
	lay := layout{
		contentW: max(10, m.width),
		contentH: max(4, m.height-headerHeight-footerHeight),
		mapY:     headerHeight,
	}
	if m.showPanel {
		lay.mapX = sidebarWidth + 1
	}
	lay.mapW = max(10, lay.contentW-lay.mapX)
	lay.mapH = lay.contentH
	return lay
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()

	header := titleStyle.Render(" constellations ") + dimStyle.Render(fmt.Sprintf("─ %d stars · %d saved ", m.catalog.Len(), len(m.trails)))
	header = lipgloss.NewStyle().Width(lay.contentW).Render(header)

	var mapView string
	switch {
	case m.form != nil:
		mapView = overlay(lay.mapW, lay.mapH, m.form.view())
	case m.share != nil:
		mapView = overlay(lay.mapW, lay.mapH, m.share.view(lay.mapW-4))
	case m.showDetails:
		m.tbl.SetHeight(max(1, min(lay.mapH-6, 16)))
		rows := []string{titleStyle.Render(m.detailsTitle)}
		if m.detailsDesc != "" {
			rows = append(rows, italicStyle.Width(44).Render(m.detailsDesc))
		}
		rows = append(rows, "", m.tbl.View(), dimStyle.Render("esc close"))
		mapView = overlay(lay.mapW, lay.mapH, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	default:
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(m.renderMap(lay.mapW, lay.mapH))
		if m.picked != nil {
			mapView = m.withNarrative(mapView, lay)
		}
	}

	body := mapView
	if m.showPanel {
		m.l.SetSize(sidebarWidth-2, lay.contentH-2)
		panel := lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, panel, " ", mapView)
	}

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer(lay.contentW))
	return appStyle.Width(lay.contentW).Height(m.height).Render(ui)
}

// withNarrative draws the picked star's story over the bottom-left corner of
// the map, or centred in place of the map when the map is too small.
func (m Model) withNarrative(mapView string, lay layout) string {
	p := m.picked
	w := min(40, lay.mapW/2)
	rows := []string{italicStyle.Render(pointTitle(p.Title, p.ID))}
	if p.Description != "" {
		rows = append(rows, lipgloss.NewStyle().Width(w-4).Render(p.Description))
	}
	if p.ImageURL != "" {
		rows = append(rows, dimStyle.Render("image "+truncate(p.ImageURL, w-10)))
	}
	if p.AudioURL != "" {
		rows = append(rows, dimStyle.Render("audio "+truncate(p.AudioURL, w-10)))
	}
	box := boxStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if lipgloss.Height(box) >= lay.mapH || w < 20 {
		return overlay(lay.mapW, lay.mapH, box)
	}
	mapLines := strings.Split(mapView, "\n")
	boxLines := strings.Split(box, "\n")
	start := len(mapLines) - len(boxLines)
	for i, bl := range boxLines {
		rest := ansi.TruncateLeft(mapLines[start+i], lipgloss.Width(bl), "")
		mapLines[start+i] = bl + rest
	}
	return strings.Join(mapLines, "\n")
}

func (m Model) footer(w int) string {
	status := dimStyle.Render(" " + m.status + " ")
	if m.notice != "" {
		status = noticeStyle.Render(" " + m.notice + " ")
	}
	coords := ""
	if m.hoverGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lat=%.4f lng=%.4f  ", m.hoverLat, m.hoverLng))
	}
	line1 := lipgloss.JoinHorizontal(lipgloss.Bottom, status,
		lipgloss.PlaceHorizontal(max(0, w-lipgloss.Width(status)), lipgloss.Right, coords))
	return lipgloss.JoinVertical(lipgloss.Left, line1, m.renderHelp())
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"click/n+enter pick",
		"s save",
		"c clear",
		"Tab trails",
		"e edit",
		"d delete",
		"y share",
		"x export",
		"i info",
		"g locate",
		"+/- zoom",
		"h help",
		"q quit",
	}
	if m.shared != nil {
		keys = append([]string{"k keep"}, keys...)
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
