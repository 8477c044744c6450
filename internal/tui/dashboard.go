package tui

import (
	"fmt"
	"strings"

	"taskpad/internal/filter"
	"taskpad/internal/form"
	"taskpad/internal/model"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dashboardModel struct {
	filters   model.FilterSet
	list      list.Model
	search    textinput.Model
	searching bool

	// pendingDelete holds the id awaiting y/n confirmation.
	pendingDelete string

	loading bool
	notice  string
	err     string

	listWidth   int
	detailWidth int
}

func newDashboardModel() dashboardModel {
	l := list.New(nil, newTaskDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()

	s := textinput.New()
	s.Prompt = "/"
	s.Placeholder = "search title or description"
	s.CharLimit = 120

	return dashboardModel{filters: model.AllFilters(), list: l, search: s}
}

func (d *dashboardModel) resize(width, height int) {
	d.listWidth = width
	d.detailWidth = 0
	if width >= 90 {
		d.listWidth = width * 55 / 100
		d.detailWidth = width - d.listWidth - 1
	}
	// header + cards + filter bar + footer
	h := height - 12
	if h < 3 {
		h = 3
	}
	d.list.SetSize(d.listWidth, h)
	d.search.Width = max(d.listWidth-4, 10)
}

func (d *dashboardModel) refresh(all []*model.Task) {
	id := d.selectedID()
	visible := filter.Visible(all, d.filters)
	d.list.SetItems(taskItems(visible))
	if id == "" {
		return
	}
	for i, t := range visible {
		if t.ID == id {
			d.list.Select(i)
			return
		}
	}
}

func (d dashboardModel) selected() *model.Task {
	it, ok := d.list.SelectedItem().(taskItem)
	if !ok {
		return nil
	}
	return it.task
}

func (d dashboardModel) selectedID() string {
	if t := d.selected(); t != nil {
		return t.ID
	}
	return ""
}

func (d *dashboardModel) onLoaded(msg tasksLoadedMsg, all []*model.Task) {
	d.loading = false
	if msg.err != nil {
		d.err = errText(msg.err)
	} else {
		d.err = ""
		if msg.reload {
			d.notice = fmt.Sprintf("Loaded %d tasks", len(all))
		}
	}
	d.refresh(all)
}

func (d *dashboardModel) onStatusChanged(msg statusChangedMsg, all []*model.Task) {
	if msg.err != nil {
		d.err = errText(msg.err)
	} else {
		d.err = ""
		d.notice = "Task marked " + string(msg.status)
	}
	d.refresh(all)
}

func (d *dashboardModel) onDeleted(msg taskDeletedMsg, all []*model.Task) {
	if msg.err != nil {
		d.err = errText(msg.err)
	} else {
		d.err = ""
		d.notice = "Task deleted"
	}
	d.refresh(all)
}

func (m appModel) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.dash.list, cmd = m.dash.list.Update(msg)
		return m, cmd
	}
	d := &m.dash
	all := m.rt.Tasks.Tasks()

	if d.searching {
		switch km.String() {
		case "enter", "esc":
			d.searching = false
			d.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		d.search, cmd = d.search.Update(msg)
		d.filters.Search = d.search.Value()
		d.refresh(all)
		return m, cmd
	}

	if d.pendingDelete != "" {
		id := d.pendingDelete
		d.pendingDelete = ""
		if km.String() == "y" || km.String() == "Y" {
			d.notice = ""
			return m, m.deleteTask(id)
		}
		d.notice = "Delete cancelled"
		return m, nil
	}

	switch km.String() {
	case "q":
		return m, tea.Quit
	case "c":
		d.filters.Category = filter.Next(d.filters.Category, model.Categories)
		d.refresh(all)
		return m, nil
	case "s":
		d.filters.Status = filter.Next(d.filters.Status, model.Statuses)
		d.refresh(all)
		return m, nil
	case "p":
		d.filters.Priority = filter.Next(d.filters.Priority, model.Priorities)
		d.refresh(all)
		return m, nil
	case "/":
		d.searching = true
		return m, d.search.Focus()
	case "x":
		d.filters = model.AllFilters()
		d.search.SetValue("")
		d.refresh(all)
		return m, nil
	case "r":
		d.loading, d.notice, d.err = true, "", ""
		return m, m.loadTasks(true)
	case "L":
		return m, m.logout()
	case "n":
		return m.openForm(form.NewCreate())
	case "e", "enter":
		t := d.selected()
		if t == nil {
			return m, nil
		}
		return m.openForm(form.NewEdit(t.ID))
	case " ":
		t := d.selected()
		if t == nil {
			return m, nil
		}
		next := model.StatusCompleted
		if t.Status == model.StatusCompleted {
			next = model.StatusPending
		}
		d.notice, d.err = "", ""
		return m, m.setStatus(t.ID, next)
	case "d":
		t := d.selected()
		if t == nil {
			return m, nil
		}
		d.pendingDelete = t.ID
		d.notice = fmt.Sprintf("Delete %q? (y/n)", t.Title)
		return m, nil
	}

	var cmd tea.Cmd
	d.list, cmd = d.list.Update(msg)
	return m, cmd
}

func (d dashboardModel) view(sess *model.Session, stats model.Stats, width int, profile string) string {
	var b strings.Builder

	who := "not signed in"
	if sess != nil {
		who = sess.Name
		if sess.Email != "" {
			who += " <" + sess.Email + ">"
		}
	}
	b.WriteString(styleTitle().Render("taskpad") + "  " + styleMuted().Render(who) + "\n")
	b.WriteString(statsCards(stats) + "\n")
	b.WriteString(d.filterBar() + "\n")

	listView := d.list.View()
	if len(d.list.Items()) == 0 {
		switch {
		case d.loading:
			listView = styleMuted().Render("Loading tasks…")
		case filter.Active(d.filters):
			listView = styleMuted().Render("No tasks match the current filters.")
		default:
			listView = styleMuted().Render("No tasks yet. Press n to create one.")
		}
	}
	if d.detailWidth > 0 {
		detail := detailView(d.selected(), d.detailWidth, profile)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(d.listWidth).Render(listView),
			" ",
			detail,
		))
	} else {
		b.WriteString(listView)
	}
	b.WriteString("\n")

	switch {
	case d.err != "":
		b.WriteString(styleError().Render(d.err) + "\n")
	case d.notice != "":
		b.WriteString(styleNotice().Render(d.notice) + "\n")
	}
	b.WriteString(styleMuted().Render("space toggle · n new · e edit · d delete · c/s/p filter · / search · x clear · r reload · L logout · q quit"))
	return b.String()
}

func (d dashboardModel) filterBar() string {
	show := func(label, v string) string {
		if v == "" {
			v = model.FilterAll
		}
		if v == model.FilterAll {
			return styleMuted().Render(label + ": all")
		}
		return label + ": " + styleTitle().Render(v)
	}
	parts := []string{
		show("category", d.filters.Category),
		show("status", d.filters.Status),
		show("priority", d.filters.Priority),
	}
	if d.searching {
		parts = append(parts, d.search.View())
	} else if d.filters.Search != "" {
		parts = append(parts, "search: "+styleTitle().Render(fmt.Sprintf("%q", d.filters.Search)))
	}
	return strings.Join(parts, "  ")
}

func statsCards(st model.Stats) string {
	card := func(label string, value string) string {
		return styleCard().Render(styleMuted().Render(label) + "\n" + styleTitle().Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", fmt.Sprint(st.Total)),
		card("Completed", fmt.Sprint(st.Completed)),
		card("Pending", fmt.Sprint(st.Pending)),
		card("Completion", fmt.Sprintf("%d%%", st.CompletionRate())),
	)
}

func detailView(t *model.Task, width int, profile string) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	if t == nil {
		return stylePanel().Width(inner).Render(styleMuted().Render("No task selected"))
	}
	var b strings.Builder
	b.WriteString(styleTitle().Render(t.Title) + "\n")
	meta := []string{
		"Due " + model.DueDay(t.DueDate),
		string(t.Category),
		stylePriority(t.Priority).Render(string(t.Priority)),
		string(t.Status),
	}
	b.WriteString(strings.Join(meta, " · ") + "\n\n")
	if desc := RenderMarkdown(t.Description, inner, profile); desc != "" {
		b.WriteString(desc)
	} else {
		b.WriteString(styleMuted().Render("No description"))
	}
	return stylePanel().Width(inner).Render(b.String())
}
