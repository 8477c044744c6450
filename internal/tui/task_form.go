package tui

import (
	"strings"

	"taskpad/internal/assist"
	"taskpad/internal/form"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	focusTitle = iota
	focusDescription
	focusDue
	focusCategory
	focusPriority
	focusStatus
)

type formModel struct {
	form *form.TaskForm

	title textinput.Model
	due   textinput.Model
	desc  textarea.Model
	focus int

	suggesting bool
	// notice carries non-blocking messages, e.g. an unavailable assist.
	notice string
}

func newFormModel(f *form.TaskForm, width int) *formModel {
	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.Prompt = ""
	title.CharLimit = 200

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.Prompt = ""
	due.CharLimit = 10

	desc := textarea.New()
	desc.Placeholder = "Description (markdown)"
	desc.ShowLineNumbers = false
	desc.SetHeight(4)

	fm := &formModel{form: f, title: title, due: due, desc: desc}
	fm.resize(width)
	fm.fill()
	fm.setFocus(focusTitle)
	return fm
}

func (f *formModel) resize(width int) {
	w := min(max(width-6, 20), 80)
	f.title.Width = w
	f.due.Width = 12
	f.desc.SetWidth(w)
}

// fill copies the form fields into the inputs.
func (f *formModel) fill() {
	f.title.SetValue(f.form.Fields.Title)
	f.due.SetValue(f.form.Fields.DueDate)
	f.desc.SetValue(f.form.Fields.Description)
}

// sync copies the inputs back into the form fields.
func (f *formModel) sync() {
	f.form.Fields.Title = f.title.Value()
	f.form.Fields.DueDate = f.due.Value()
	f.form.Fields.Description = f.desc.Value()
}

func (f *formModel) lastFocus() int {
	if f.form.Mode == form.Edit {
		return focusStatus
	}
	return focusPriority
}

func (f *formModel) setFocus(i int) tea.Cmd {
	f.focus = i
	f.title.Blur()
	f.due.Blur()
	f.desc.Blur()
	switch i {
	case focusTitle:
		return f.title.Focus()
	case focusDue:
		return f.due.Focus()
	case focusDescription:
		return f.desc.Focus()
	}
	return nil
}

func (f *formModel) move(delta int) tea.Cmd {
	n := f.lastFocus() + 1
	return f.setFocus(((f.focus+delta)%n + n) % n)
}

func (m appModel) openForm(tf *form.TaskForm) (tea.Model, tea.Cmd) {
	m.form = newFormModel(tf, m.width)
	m.screen = screenForm
	m.dash.notice, m.dash.err = "", ""
	if tf.State != form.Loading {
		return m, textinput.Blink
	}
	ctx, c, id := m.ctx, m.rt.Tasks, tf.TaskID
	return m, func() tea.Msg {
		t, err := c.Get(ctx, id)
		return formLoadedMsg{task: t, err: err}
	}
}

func (m appModel) closeForm(notice string) (tea.Model, tea.Cmd) {
	m.form = nil
	m.screen = screenDashboard
	m.dash.notice = notice
	m.dash.refresh(m.rt.Tasks.Tasks())
	return m, nil
}

func (m appModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.screen = screenDashboard
		return m, nil
	}

	switch msg := msg.(type) {
	case formLoadedMsg:
		if f.form.State != form.Loading {
			return m, nil
		}
		_ = f.form.Loaded(msg.task, msg.err)
		f.fill()
		return m, f.setFocus(focusTitle)
	case formSavedMsg:
		if f.form.State != form.Submitting {
			return m, nil
		}
		_ = f.form.Finish(msg.task, msg.err)
		if f.form.State == form.Success {
			notice := "Task created"
			if f.form.Mode == form.Edit {
				notice = "Task updated"
			}
			return m.closeForm(notice)
		}
		return m, nil
	case suggestionMsg:
		f.suggesting = false
		if msg.err != nil {
			f.notice = errText(msg.err)
			return m, nil
		}
		f.desc.SetValue(msg.text)
		f.notice = "Suggested description added"
		return m, nil
	case tea.KeyMsg:
		return m.formKey(msg)
	}

	var cmd tea.Cmd
	switch f.focus {
	case focusTitle:
		f.title, cmd = f.title.Update(msg)
	case focusDue:
		f.due, cmd = f.due.Update(msg)
	case focusDescription:
		f.desc, cmd = f.desc.Update(msg)
	}
	return m, cmd
}

func (m appModel) formKey(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if km.String() == "esc" {
		f.form.Cancel()
		return m.closeForm("")
	}
	if f.form.State != form.Editable {
		return m, nil
	}

	switch km.String() {
	case "tab":
		return m, f.move(1)
	case "shift+tab":
		return m, f.move(-1)
	case "ctrl+s":
		f.sync()
		in, err := f.form.Begin()
		if err != nil {
			return m, nil
		}
		ctx, c, mode, id := m.ctx, m.rt.Tasks, f.form.Mode, f.form.TaskID
		return m, func() tea.Msg {
			if mode == form.Edit {
				t, err := c.Update(ctx, id, in)
				return formSavedMsg{task: t, err: err}
			}
			t, err := c.Create(ctx, in)
			return formSavedMsg{task: t, err: err}
		}
	case "ctrl+g":
		if f.suggesting {
			return m, nil
		}
		f.sync()
		f.suggesting, f.notice = true, "Asking for a description…"
		ctx, as := m.ctx, m.rt.Assist
		req := assist.Request{
			Title:    f.form.Fields.Title,
			Category: f.form.Fields.Category,
			Priority: f.form.Fields.Priority,
		}
		return m, func() tea.Msg {
			text, err := as.Suggest(ctx, req)
			return suggestionMsg{text: text, err: err}
		}
	}

	switch f.focus {
	case focusCategory, focusPriority, focusStatus:
		delta := 0
		switch km.String() {
		case "left", "h":
			delta = -1
		case "right", "l", " ":
			delta = 1
		case "down", "enter":
			return m, f.move(1)
		case "up":
			return m, f.move(-1)
		}
		if delta != 0 {
			switch f.focus {
			case focusCategory:
				f.form.CycleCategory(delta)
			case focusPriority:
				f.form.CyclePriority(delta)
			default:
				f.form.ToggleStatus()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case focusTitle:
		if km.String() == "enter" || km.String() == "down" {
			return m, f.move(1)
		}
		f.title, cmd = f.title.Update(km)
	case focusDue:
		if km.String() == "enter" || km.String() == "down" {
			return m, f.move(1)
		}
		if km.String() == "up" {
			return m, f.move(-1)
		}
		f.due, cmd = f.due.Update(km)
	case focusDescription:
		f.desc, cmd = f.desc.Update(km)
	}
	return m, cmd
}

func (f *formModel) view(width int) string {
	var b strings.Builder
	heading := "New task"
	if f.form.Mode == form.Edit {
		heading = "Edit task"
	}
	b.WriteString(styleTitle().Render(heading) + "\n\n")

	if f.form.State == form.Loading {
		b.WriteString(styleMuted().Render("Loading task…"))
		return stylePanel().Render(b.String())
	}

	label := func(i int, s string) string {
		if f.focus == i {
			return styleTitle().Render("› " + s)
		}
		return styleMuted().Render("  " + s)
	}
	choice := func(i int, s string) string {
		if f.focus == i {
			return "‹ " + styleSelected().Render(s) + " ›"
		}
		return "  " + s
	}

	b.WriteString(label(focusTitle, "Title") + "\n  " + f.title.View() + "\n")
	b.WriteString(label(focusDescription, "Description") + "\n" + f.desc.View() + "\n")
	b.WriteString(label(focusDue, "Due date") + "\n  " + f.due.View() + "\n")
	b.WriteString(label(focusCategory, "Category") + " " + choice(focusCategory, string(f.form.Fields.Category)) + "\n")
	b.WriteString(label(focusPriority, "Priority") + " " + choice(focusPriority, string(f.form.Fields.Priority)) + "\n")
	if f.form.Mode == form.Edit {
		b.WriteString(label(focusStatus, "Status") + "   " + choice(focusStatus, string(f.form.Fields.Status)) + "\n")
	}
	b.WriteString("\n")

	switch {
	case f.form.State == form.Submitting:
		b.WriteString(styleMuted().Render("Saving…") + "\n")
	case f.form.Err != "":
		b.WriteString(styleError().Render(f.form.Err) + "\n")
	}
	if f.notice != "" {
		b.WriteString(styleMuted().Render(f.notice) + "\n")
	}
	b.WriteString(styleMuted().Render("tab next · ←/→ cycle · ctrl+g suggest · ctrl+s save · esc cancel"))
	return stylePanel().Width(min(max(width-2, 24), 86)).Render(b.String())
}
