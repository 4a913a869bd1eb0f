package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"constellations/internal/logging"
	"constellations/internal/share"
	"constellations/internal/trail"
)

type sharePopup struct {
	name   string
	link   string
	copied bool
	err    string
}

func (m *Model) openShare(t trail.Trail) {
	link, err := share.Link(m.shareBase, t)
	if err != nil {
		m.notice = "cannot share: " + err.Error()
		return
	}
	m.share = &sharePopup{name: t.Name, link: link}
}

func (m Model) updateShare(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.share = nil
	case "c", "y", "enter":
		if err := m.copyText(m.share.link); err != nil {
			logging.L().Warn("copy share link", slog.Any("err", err))
			m.share.err = "clipboard unavailable; copy the link above"
			return m, nil
		}
		m.share.copied = true
		m.share.err = ""
		m.status = "link copied"
	}
	return m, nil
}

func (p *sharePopup) view(w int) string {
	w = max(24, min(w, 72))
	rows := []string{
		titleStyle.Render("Share ✦ " + truncate(p.name, w-12)),
		"",
		lipgloss.NewStyle().Width(w - 4).Render(p.link),
		"",
	}
	switch {
	case p.err != "":
		rows = append(rows, noticeStyle.Render(p.err))
	case p.copied:
		rows = append(rows, italicStyle.Render("copied to clipboard"))
	}
	rows = append(rows, dimStyle.Render("c copy  esc close"))
	return boxStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
