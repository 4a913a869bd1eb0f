package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshDetails fills the table with the stars of the current trail.
// Stars the catalog no longer knows are listed as missing.
func (m *Model) refreshDetails() {
	t, ok := m.currentTrail()
	if !ok {
		m.showDetails = false
		m.status = "no constellation selected"
		return
	}
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Star", Width: 22},
		{Title: "Lat", Width: 9},
		{Title: "Lng", Width: 10},
	}
	rows := make([]table.Row, 0, len(t.PointIDs))
	for i, id := range t.PointIDs {
		p, ok := m.catalog.Lookup(id)
		if !ok {
			rows = append(rows, table.Row{fmt.Sprint(i + 1), id + " (missing)", "", ""})
			continue
		}
		title := p.Title
		if title == "" {
			title = p.ID
		}
		rows = append(rows, table.Row{
			fmt.Sprint(i + 1),
			truncate(title, 22),
			fmt.Sprintf("%.4f", p.Lat),
			fmt.Sprintf("%.4f", p.Lng),
		})
	}
	m.detailsTitle = t.Name
	m.detailsDesc = t.Description
	// clear rows first so the new columns never see stale row widths
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
}
