package cli

import (
	"errors"
	"strings"

	"taskpad/internal/app"
	"taskpad/internal/assist"
	"taskpad/internal/filter"
	"taskpad/internal/form"
	"taskpad/internal/model"
	"taskpad/internal/tui"

	"github.com/spf13/cobra"
)

func newTasksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(a))
	cmd.AddCommand(newTasksShowCmd(a))
	cmd.AddCommand(newTasksCreateCmd(a))
	cmd.AddCommand(newTasksUpdateCmd(a))
	cmd.AddCommand(newTasksStatusCmd(a, "complete", "Mark a task completed", model.StatusCompleted))
	cmd.AddCommand(newTasksStatusCmd(a, "reopen", "Mark a task pending again", model.StatusPending))
	cmd.AddCommand(newTasksDeleteCmd(a))
	cmd.AddCommand(newTasksExportCmd(a))
	return cmd
}

func parseFilters(category, status, priority, search string) (model.FilterSet, error) {
	f := model.AllFilters()
	var err error
	if f.Category, err = filter.ParseCategory(category); err != nil {
		return f, err
	}
	if f.Status, err = filter.ParseStatus(status); err != nil {
		return f, err
	}
	if f.Priority, err = filter.ParsePriority(priority); err != nil {
		return f, err
	}
	f.Search = search
	return f, nil
}

func newTasksListCmd(a *App) *cobra.Command {
	var category, status, priority, search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks (filters combine; search matches title or description)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilters(category, status, priority, search)
			if err != nil {
				return writeErr(cmd, err)
			}
			return requireSession(cmd, a, func(rt *app.App) error {
				if err := rt.Tasks.Load(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, taskListView{
					Tasks:   filter.Visible(rt.Tasks.Tasks(), f),
					Stats:   newStatsView(rt.Tasks.Stats()),
					Filters: f,
				})
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "all", "all|Work|Personal|Health|Study|Other")
	cmd.Flags().StringVar(&status, "status", "all", "all|pending|completed")
	cmd.Flags().StringVar(&priority, "priority", "all", "all|low|medium|high")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text in title or description")
	return cmd
}

func newTasksShowCmd(a *App) *cobra.Command {
	var render bool
	var width int
	cmd := &cobra.Command{
		Use:     "show <task-id>",
		Aliases: []string{"get"},
		Short:   "Show a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return requireSession(cmd, a, func(rt *app.App) error {
				t, err := rt.Tasks.Get(cmd.Context(), id)
				if err != nil {
					return writeErr(cmd, remoteErr(err, "task", id))
				}
				v := taskView{Task: &t}
				if render && strings.TrimSpace(t.Description) != "" {
					v.Rendered = tui.RenderMarkdown(t.Description, width, rt.Config.TUIProfile())
				}
				return writeData(cmd, a, v)
			})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Include a terminal rendering of the description (markdown)")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}

// taskFlags binds the editable task fields to flags.
type taskFlags struct {
	title, description, due, category, priority, status string
}

func (tf *taskFlags) bind(cmd *cobra.Command, withStatus bool) {
	cmd.Flags().StringVar(&tf.title, "title", "", "Title")
	cmd.Flags().StringVar(&tf.description, "description", "", "Description")
	cmd.Flags().StringVar(&tf.due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&tf.category, "category", "", "Work|Personal|Health|Study|Other")
	cmd.Flags().StringVar(&tf.priority, "priority", "", "low|medium|high")
	if withStatus {
		cmd.Flags().StringVar(&tf.status, "status", "", "pending|completed")
	}
}

// apply copies the flags the user set onto the form fields.
func (tf *taskFlags) apply(cmd *cobra.Command, f *form.Fields) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		f.Title = tf.title
	}
	if changed("description") {
		f.Description = tf.description
	}
	if changed("due") {
		f.DueDate = strings.TrimSpace(tf.due)
	}
	if changed("category") {
		v, err := filter.ParseCategory(tf.category)
		if err != nil || v == model.FilterAll {
			return errors.New("invalid --category (expected Work, Personal, Health, Study, or Other)")
		}
		f.Category = model.Category(v)
	}
	if changed("priority") {
		v, err := filter.ParsePriority(tf.priority)
		if err != nil || v == model.FilterAll {
			return errors.New("invalid --priority (expected low, medium, or high)")
		}
		f.Priority = model.Priority(v)
	}
	if changed("status") {
		v, err := filter.ParseStatus(tf.status)
		if err != nil || v == model.FilterAll {
			return errors.New("invalid --status (expected pending or completed)")
		}
		f.Status = model.Status(v)
	}
	return nil
}

func newTasksCreateCmd(a *App) *cobra.Command {
	var tf taskFlags
	var suggest bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := form.NewCreate()
			if err := tf.apply(cmd, &f.Fields); err != nil {
				return writeErr(cmd, err)
			}
			return requireSession(cmd, a, func(rt *app.App) error {
				if suggest && strings.TrimSpace(f.Fields.Description) == "" {
					desc, err := rt.Assist.Suggest(cmd.Context(), assist.Request{
						Title:    f.Fields.Title,
						Category: f.Fields.Category,
						Priority: f.Fields.Priority,
					})
					if err != nil {
						// Suggestions never block the create.
						writeNotice(cmd, "suggestion unavailable: "+err.Error())
					} else {
						f.Fields.Description = desc
					}
				}
				if err := f.Submit(cmd.Context(), rt.Tasks); err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, taskView{Task: &f.Result})
			})
		},
	}
	tf.bind(cmd, false)
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Fill an empty description with a generated one-sentence suggestion")
	return cmd
}

func newTasksUpdateCmd(a *App) *cobra.Command {
	var tf taskFlags
	cmd := &cobra.Command{
		Use:     "update <task-id>",
		Aliases: []string{"edit"},
		Short:   "Update a task (only the flags you pass change)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return requireSession(cmd, a, func(rt *app.App) error {
				f := form.NewEdit(id)
				t, err := rt.Tasks.Get(cmd.Context(), id)
				if err != nil {
					return writeErr(cmd, remoteErr(err, "task", id))
				}
				if err := f.Loaded(t, nil); err != nil {
					return writeErr(cmd, err)
				}
				if err := tf.apply(cmd, &f.Fields); err != nil {
					return writeErr(cmd, err)
				}
				if err := f.Submit(cmd.Context(), rt.Tasks); err != nil {
					return writeErr(cmd, remoteErr(err, "task", id))
				}
				return writeData(cmd, a, taskView{Task: &f.Result})
			})
		},
	}
	tf.bind(cmd, true)
	return cmd
}

func newTasksStatusCmd(a *App, use, short string, status model.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return requireSession(cmd, a, func(rt *app.App) error {
				if err := rt.Tasks.Load(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				if err := rt.Tasks.SetStatus(cmd.Context(), id, status); err != nil {
					return writeErr(cmd, remoteErr(err, "task", id))
				}
				if t, ok := rt.Tasks.Find(id); ok {
					return writeData(cmd, a, taskView{Task: t})
				}
				return writeData(cmd, a, map[string]any{"_id": id, "status": status})
			})
		},
	}
}

func newTasksDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return requireSession(cmd, a, func(rt *app.App) error {
				if err := rt.Tasks.Delete(cmd.Context(), id); err != nil {
					return writeErr(cmd, remoteErr(err, "task", id))
				}
				return writeData(cmd, a, map[string]any{"_id": id, "deleted": true})
			})
		},
	}
}
