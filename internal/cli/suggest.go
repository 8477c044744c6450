package cli

import (
	"strings"

	"taskpad/internal/app"
	"taskpad/internal/assist"
	"taskpad/internal/filter"
	"taskpad/internal/model"

	"github.com/spf13/cobra"
)

type suggestionView struct {
	Description string `json:"description"`
}

func (v suggestionView) Text() string { return v.Description }

func newSuggestCmd(a *App) *cobra.Command {
	var title, category, priority string
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a one-sentence description for a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := assist.Request{Title: strings.TrimSpace(title)}
			if c, err := filter.ParseCategory(category); err == nil && c != model.FilterAll {
				req.Category = model.Category(c)
			}
			if p, err := filter.ParsePriority(priority); err == nil && p != model.FilterAll {
				req.Priority = model.Priority(p)
			}
			return withRuntime(cmd, a, func(rt *app.App) error {
				desc, err := rt.Assist.Suggest(cmd.Context(), req)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, suggestionView{Description: desc})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&category, "category", "Work", "Task category")
	cmd.Flags().StringVar(&priority, "priority", "medium", "Task priority")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
