package tui

import (
	"strings"

	"taskpad/internal/session"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

type loginModel struct {
	register bool
	focus    int
	inputs   [4]textinput.Model
	busy     bool
	err      string
}

func newLoginModel() loginModel {
	m := loginModel{focus: fieldEmail}
	placeholders := [4]string{"Name", "Email", "Password", "Confirm password"}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 40
		if i == fieldPassword || i == fieldConfirm {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.inputs[i] = in
	}
	m.inputs[fieldEmail].Focus()
	return m
}

// fields lists the visible inputs in order: email/password for login, all four for register.
func (l loginModel) fields() []int {
	if l.register {
		return []int{fieldName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

func (l loginModel) focusCmd() tea.Cmd { return textinput.Blink }

func (l *loginModel) setFocus(field int) {
	l.focus = field
	for i := range l.inputs {
		if i == field {
			l.inputs[i].Focus()
		} else {
			l.inputs[i].Blur()
		}
	}
}

func (l *loginModel) move(delta int) {
	fs := l.fields()
	idx := 0
	for i, f := range fs {
		if f == l.focus {
			idx = i
		}
	}
	idx = ((idx+delta)%len(fs) + len(fs)) % len(fs)
	l.setFocus(fs[idx])
}

func (l *loginModel) toggleMode() {
	l.register = !l.register
	l.err = ""
	if l.register {
		l.setFocus(fieldName)
	} else {
		l.setFocus(fieldEmail)
	}
}

func (l loginModel) lastField() bool {
	fs := l.fields()
	return l.focus == fs[len(fs)-1]
}

func (l loginModel) value(field int) string { return l.inputs[field].Value() }

func (m appModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
		return m, cmd
	}
	if m.login.busy {
		return m, nil
	}
	switch km.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		m.login.toggleMode()
		return m, nil
	case "up", "shift+tab":
		m.login.move(-1)
		return m, nil
	case "down":
		m.login.move(1)
		return m, nil
	case "enter":
		if !m.login.lastField() {
			m.login.move(1)
			return m, nil
		}
		return m.submitLogin()
	}
	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m appModel) submitLogin() (tea.Model, tea.Cmd) {
	ctx, store := m.ctx, m.rt.Session
	email := strings.TrimSpace(m.login.value(fieldEmail))
	password := m.login.value(fieldPassword)

	if !m.login.register {
		if email == "" || password == "" {
			m.login.err = "Email and password are required"
			return m, nil
		}
		m.login.busy, m.login.err = true, ""
		return m, func() tea.Msg {
			sess, err := store.Login(ctx, email, password)
			return authDoneMsg{sess: sess, err: err}
		}
	}

	in := session.RegisterInput{
		Name:     m.login.value(fieldName),
		Email:    email,
		Password: password,
		Confirm:  m.login.value(fieldConfirm),
	}
	if err := session.ValidateRegister(in); err != nil {
		m.login.err = errText(err)
		return m, nil
	}
	m.login.busy, m.login.err = true, ""
	return m, func() tea.Msg {
		sess, err := store.Register(ctx, in)
		return authDoneMsg{sess: sess, err: err}
	}
}

func (l loginModel) view(width int) string {
	var b strings.Builder
	title := "Sign in"
	if l.register {
		title = "Create account"
	}
	b.WriteString(styleTitle().Render("taskpad · "+title) + "\n\n")
	labels := [4]string{"Name", "Email", "Password", "Confirm"}
	for _, f := range l.fields() {
		label := labels[f]
		if f == l.focus {
			label = styleTitle().Render(label)
		} else {
			label = styleMuted().Render(label)
		}
		b.WriteString(label + "\n" + l.inputs[f].View() + "\n\n")
	}
	switch {
	case l.busy:
		b.WriteString(styleMuted().Render("Working…") + "\n")
	case l.err != "":
		b.WriteString(styleError().Render(l.err) + "\n")
	}
	hint := "tab: create account · enter: next/submit · esc: quit"
	if l.register {
		hint = "tab: sign in instead · enter: next/submit · esc: quit"
	}
	b.WriteString("\n" + styleMuted().Render(hint))
	return stylePanel().Width(min(width-2, 60)).Render(b.String())
}
