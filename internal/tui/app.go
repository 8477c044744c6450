package tui

import (
	"context"
	"strings"

	"taskpad/internal/app"
	"taskpad/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenLogin screen = iota
	screenDashboard
	screenForm
)

// Messages produced by the commands below. Every remote call runs inside a tea.Cmd so
// the update loop never blocks on the network.
type (
	authDoneMsg struct {
		sess *model.Session
		err  error
	}
	loggedOutMsg   struct{ err error }
	tasksLoadedMsg struct {
		reload bool
		err    error
	}
	statusChangedMsg struct {
		id     string
		status model.Status
		err    error
	}
	taskDeletedMsg struct {
		id  string
		err error
	}
	formLoadedMsg struct {
		task model.Task
		err  error
	}
	formSavedMsg struct {
		task model.Task
		err  error
	}
	suggestionMsg struct {
		text string
		err  error
	}
)

type appModel struct {
	ctx     context.Context
	rt      *app.App
	profile string

	width  int
	height int
	screen screen

	login loginModel
	dash  dashboardModel
	form  *formModel
}

func newAppModel(ctx context.Context, rt *app.App) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	m := appModel{
		ctx:     ctx,
		rt:      rt,
		profile: rt.Config.TUIProfile(),
		width:   100,
		height:  30,
		login:   newLoginModel(),
		dash:    newDashboardModel(),
	}
	if rt.Session.LoggedIn() {
		m.screen = screenDashboard
		m.dash.loading = true
	}
	m.dash.resize(m.width, m.height)
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.screen == screenDashboard {
		return m.loadTasks(false)
	}
	return m.login.focusCmd()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.dash.resize(m.width, m.height)
		if m.form != nil {
			m.form.resize(m.width)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case authDoneMsg:
		return m.onAuthDone(msg)
	case loggedOutMsg:
		return m.onLoggedOut(msg)
	case tasksLoadedMsg:
		m.dash.onLoaded(msg, m.rt.Tasks.Tasks())
		return m, nil
	case statusChangedMsg:
		m.dash.onStatusChanged(msg, m.rt.Tasks.Tasks())
		return m, nil
	case taskDeletedMsg:
		m.dash.onDeleted(msg, m.rt.Tasks.Tasks())
		return m, nil
	}

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenForm:
		return m.updateForm(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m appModel) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.login.view(m.width)
	case screenForm:
		if m.form != nil {
			body = m.form.view(m.width)
		}
	default:
		body = m.dash.view(m.rt.Session.Current(), m.rt.Tasks.Stats(), m.width, m.profile)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.TrimRight(body, "\n"))
}

func (m appModel) onAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.login.err = errText(msg.err)
		return m, nil
	}
	m.login = newLoginModel()
	m.screen = screenDashboard
	m.dash = newDashboardModel()
	m.dash.resize(m.width, m.height)
	m.dash.loading = true
	m.rt.Tasks.Reset()
	return m, m.loadTasks(true)
}

func (m appModel) onLoggedOut(msg loggedOutMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.dash.err = errText(msg.err)
		return m, nil
	}
	m.screen = screenLogin
	m.form = nil
	m.login = newLoginModel()
	m.dash = newDashboardModel()
	m.dash.resize(m.width, m.height)
	return m, m.login.focusCmd()
}

func (m appModel) loadTasks(reload bool) tea.Cmd {
	ctx, c := m.ctx, m.rt.Tasks
	return func() tea.Msg {
		if reload {
			return tasksLoadedMsg{reload: true, err: c.Reload(ctx)}
		}
		return tasksLoadedMsg{err: c.Load(ctx)}
	}
}

func (m appModel) setStatus(id string, status model.Status) tea.Cmd {
	ctx, c := m.ctx, m.rt.Tasks
	return func() tea.Msg {
		return statusChangedMsg{id: id, status: status, err: c.SetStatus(ctx, id, status)}
	}
}

func (m appModel) deleteTask(id string) tea.Cmd {
	ctx, c := m.ctx, m.rt.Tasks
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: c.Delete(ctx, id)}
	}
}

func (m appModel) logout() tea.Cmd {
	ctx, rt := m.ctx, m.rt
	return func() tea.Msg {
		return loggedOutMsg{err: rt.Logout(ctx)}
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}
