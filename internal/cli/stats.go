package cli

import (
	"taskpad/internal/app"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Task totals, per-category counts, and completion rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return requireSession(cmd, a, func(rt *app.App) error {
				if err := rt.Tasks.Load(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, newStatsView(rt.Tasks.Stats()))
			})
		},
	}
}
