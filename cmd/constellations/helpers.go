package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"constellations/internal/geom"
	"constellations/internal/store"
	"constellations/internal/trail"
)

// session is what trail commands open: the catalog and the trail store.
type session struct {
	slot    *store.SQLiteSlot
	repo    *store.Repository
	catalog *geom.Catalog
}

func openSession() (*session, error) {
	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	slot, err := store.OpenSQLite(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &session{slot: slot, repo: store.NewRepository(slot, cfg.SlotKey), catalog: cat}, nil
}

func (s *session) Close() error { return s.slot.Close() }

// find resolves an id or a unique id prefix.
func (s *session) find(ctx context.Context, ref string) (trail.Trail, error) {
	var matches []trail.Trail
	for _, t := range s.repo.LoadAll(ctx) {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return trail.Trail{}, fmt.Errorf("%w: %w: %s", errUsage, trail.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	}
	return trail.Trail{}, fmt.Errorf("%w: %q matches %d constellations", errUsage, ref, len(matches))
}

func loadCatalog(path string) (*geom.Catalog, error) {
	if path == "" {
		return geom.Default()
	}
	c, err := geom.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printTrails(w io.Writer, ts []trail.Trail) error {
	if flagJSON {
		if ts == nil {
			ts = []trail.Trail{}
		}
		return printJSON(w, ts)
	}
	if len(ts) == 0 {
		_, err := fmt.Fprintln(w, "no constellations")
		return err
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "STARS", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, t := range ts {
		tbl.Row(t.ID, t.Name, fmt.Sprint(len(t.PointIDs)), t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

// trailView is the detailed form of a trail with its stars resolved.
type trailView struct {
	trail.Trail
	Points  []geom.Point `json:"points"`
	Missing []string     `json:"missing,omitempty"`
}

// MarshalJSON keeps the stored trail shape and adds the resolved stars.
func (v trailView) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(v.Trail)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	pts, err := json.Marshal(v.Points)
	if err != nil {
		return nil, err
	}
	m["points"] = pts
	if len(v.Missing) > 0 {
		miss, _ := json.Marshal(v.Missing)
		m["missing"] = miss
	}
	return json.Marshal(m)
}

func resolve(cat *geom.Catalog, t trail.Trail) trailView {
	v := trailView{Trail: t, Points: []geom.Point{}}
	for _, id := range t.PointIDs {
		if p, ok := cat.Lookup(id); ok {
			v.Points = append(v.Points, p)
		} else {
			v.Missing = append(v.Missing, id)
		}
	}
	return v
}

func printTrail(w io.Writer, v trailView) error {
	if flagJSON {
		return printJSON(w, v)
	}
	fmt.Fprintf(w, "%s\n  id:      %s\n  created: %s\n", v.Name, v.ID, v.CreatedAt.Local().Format("2006-01-02 15:04"))
	if v.Description != "" {
		fmt.Fprintf(w, "  %s\n", v.Description)
	}
	for i, p := range v.Points {
		title := p.Title
		if title == "" {
			title = p.ID
		}
		fmt.Fprintf(w, "  %2d. %s (%.4f, %.4f)\n", i+1, title, p.Lat, p.Lng)
	}
	for _, id := range v.Missing {
		fmt.Fprintf(w, "   -  %s (not in catalog)\n", id)
	}
	return nil
}
