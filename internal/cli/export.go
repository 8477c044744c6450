package cli

import (
	"taskpad/internal/app"
	"taskpad/internal/filter"
	"taskpad/internal/publish"

	"github.com/spf13/cobra"
)

func newTasksExportCmd(a *App) *cobra.Command {
	var to string
	var overwrite bool
	var category, status, priority, search string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks as markdown files (index.md + tasks/<id>.md)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilters(category, status, priority, search)
			if err != nil {
				return writeErr(cmd, err)
			}
			return requireSession(cmd, a, func(rt *app.App) error {
				if err := rt.Tasks.Load(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				res, err := publish.WriteTasks(filter.Visible(rt.Tasks.Tasks(), f), to, publish.WriteOptions{Overwrite: overwrite})
				if err != nil {
					return writeErr(cmd, err)
				}
				rt.Log.WithField("files", len(res.Written)).Info("tasks exported")
				return writeData(cmd, a, res)
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().StringVar(&category, "category", "all", "all|Work|Personal|Health|Study|Other")
	cmd.Flags().StringVar(&status, "status", "all", "all|pending|completed")
	cmd.Flags().StringVar(&priority, "priority", "all", "all|low|medium|high")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text in title or description")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
