package tui

import (
	"errors"
	"fmt"

	textarea "github.com/charmbracelet/bubbles/textarea"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"constellations/internal/store"
	"constellations/internal/trail"
)

type formMode int

const (
	formSave formMode = iota
	formEdit
)

const formWidth = 48

// trailForm is the save/edit modal.
type trailForm struct {
	mode  formMode
	id    string
	name  textinput.Model
	desc  textarea.Model
	focus int // 0 name, 1 description
	err   string
}

func newTrailForm(mode formMode, id, name, desc string) *trailForm {
	ti := textinput.New()
	ti.Placeholder = "Name your constellation"
	ti.CharLimit = 200
	ti.Width = formWidth - 4
	ti.SetValue(name)
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "A few words about it (optional)"
	ta.CharLimit = trail.MaxDescriptionLen
	ta.ShowLineNumbers = false
	ta.SetWidth(formWidth - 4)
	ta.SetHeight(5)
	ta.SetValue(desc)
	ta.Blur()

	return &trailForm{mode: mode, id: id, name: ti, desc: ta}
}

func (f *trailForm) toggleFocus() {
	f.focus = 1 - f.focus
	if f.focus == 0 {
		f.desc.Blur()
		f.name.Focus()
	} else {
		f.name.Blur()
		f.desc.Focus()
	}
}

func (f *trailForm) view() string {
	title := "Save constellation"
	if f.mode == formEdit {
		title = "Edit constellation"
	}
	rows := []string{
		titleStyle.Render(title),
		"",
		f.name.View(),
		"",
		f.desc.View(),
		dimStyle.Render(fmt.Sprintf("%d/%d", len([]rune(f.desc.Value())), trail.MaxDescriptionLen)),
	}
	if f.err != "" {
		rows = append(rows, noticeStyle.Render(f.err))
	}
	rows = append(rows, dimStyle.Render("tab switch  ctrl+s save  esc cancel"))
	return boxStyle.Width(formWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// updateForm routes keys to the open form and submits or cancels it.
func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "esc":
		m.form = nil
		m.status = "cancelled"
		return m, nil
	case "tab", "shift+tab":
		f.toggleFocus()
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if f.focus == 0 {
			return m.submitForm()
		}
	}
	var cmd tea.Cmd
	if f.focus == 0 {
		f.name, cmd = f.name.Update(msg)
	} else {
		f.desc, cmd = f.desc.Update(msg)
	}
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	f := m.form
	name, desc := f.name.Value(), f.desc.Value()

	var (
		saved trail.Trail
		err   error
	)
	switch f.mode {
	case formSave:
		saved, err = m.weaver.Save(name, desc)
		if err != nil {
			f.err = formError(err)
			return m, nil
		}
		err = m.repo.Add(m.ctx, saved)
	case formEdit:
		saved, err = m.repo.Update(m.ctx, f.id, trail.Edit{Name: name, Description: desc})
		if err != nil && !errors.Is(err, store.ErrWrite) {
			f.err = formError(err)
			return m, nil
		}
	}

	m.form = nil
	switch {
	case errors.Is(err, store.ErrWrite):
		m.notice = "could not write to disk; kept for this session only"
	case err != nil:
		m.notice = err.Error()
	}
	m.reload()
	m.highlight(saved.ID)
	if f.mode == formSave {
		m.status = "saved ✦ " + saved.Name
	} else {
		m.status = "updated ✦ " + saved.Name
	}
	return m, nil
}

func formError(err error) string {
	switch {
	case errors.Is(err, trail.ErrEmptyName):
		return "a name is required"
	case errors.Is(err, trail.ErrNameTooLong):
		return fmt.Sprintf("name is limited to %d characters", trail.MaxNameLen)
	case errors.Is(err, trail.ErrTooManyPoints):
		return fmt.Sprintf("a constellation holds at most %d stars", trail.MaxPoints)
	case errors.Is(err, trail.ErrTooFewPoints):
		return "pick at least two stars"
	case errors.Is(err, trail.ErrDescriptionTooLong):
		return fmt.Sprintf("description is limited to %d characters", trail.MaxDescriptionLen)
	case errors.Is(err, trail.ErrNotFound):
		return "that constellation no longer exists"
	}
	return err.Error()
}
