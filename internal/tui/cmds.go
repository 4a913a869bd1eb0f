package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"constellations/internal/geom"
	"constellations/internal/locate"
	"constellations/internal/logging"
	"constellations/internal/render"
	"constellations/internal/trail"
)

type locatedMsg struct {
	pos locate.Position
	err error
}

type exportedMsg struct {
	name string
	path string
	err  error
}

func locateCmd(ctx context.Context, l locate.Locator) tea.Cmd {
	return func() tea.Msg {
		pos, err := l.Locate(ctx)
		if err != nil {
			logging.L().Warn("locate", slog.Any("err", err))
		}
		return locatedMsg{pos: pos, err: err}
	}
}

func exportCmd(e *render.Exporter, t trail.Trail, cat *geom.Catalog, user, dir string) tea.Cmd {
	return func() tea.Msg {
		a, err := e.Export(t, cat, user)
		if err != nil {
			logging.L().Warn("export", slog.String("trail", t.ID), slog.Any("err", err))
			return exportedMsg{name: t.Name, err: err}
		}
		path, err := a.Save(dir)
		if err != nil {
			logging.L().Warn("write export", slog.String("dir", dir), slog.Any("err", err))
		} else {
			logging.L().Info("exported", slog.String("trail", t.ID), slog.String("path", path))
		}
		return exportedMsg{name: t.Name, path: path, err: err}
	}
}
