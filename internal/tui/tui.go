package tui

import (
	"context"

	"taskpad/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive dashboard on the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, rt *app.App) error {
	if ctx == nil {
		ctx = context.Background()
	}
	applyThemePreference()
	applyColorProfilePreference(rt.Config.TUIProfile())

	m := newAppModel(ctx, rt)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		rt.Log.WithError(err).Error("tui exited")
	}
	return err
}
