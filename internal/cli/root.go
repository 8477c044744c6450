package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"taskpad/internal/app"
	"taskpad/internal/format"
	"taskpad/internal/session"
	"taskpad/internal/store"
	"taskpad/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigDir  string
	APIURL     string
	PrettyJSON bool
	Format     string
	Debug      bool

	// open builds the runtime for one command; tests may replace it.
	open func(cmd *cobra.Command, opts app.Options) (*app.App, error)
}

func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "taskpad",
		Short:        "Terminal client for your task service (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskpad

  # Log in once; the session is remembered
  taskpad auth login --email you@example.com --password '...'

  # Scriptable commands
  taskpad tasks list --category Health --status pending
  taskpad tasks create --title "Book dentist" --due 2024-05-01 --category Health

  # Direct task lookup (shortcut for: taskpad tasks show <task-id>)
  taskpad 665f1c2ab4d9a81e3c0f7d21
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return withRuntime(cmd, a, func(rt *app.App) error {
					return tui.Run(cmd.Context(), rt)
				})
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&a.ConfigDir, "config-dir", envOr("TASKPAD_CONFIG_DIR", ""), "Config directory (default: ~/.taskpad)")
	cmd.PersistentFlags().StringVar(&a.APIURL, "api-url", "", "Task service base url (overrides TASKPAD_API_URL and config apiUrl)")
	cmd.PersistentFlags().BoolVar(&a.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&a.Format, "format", envOr("TASKPAD_FORMAT", "json"), "Output format (json|edn|text)")
	cmd.PersistentFlags().BoolVar(&a.Debug, "debug", false, "Log at debug level")

	cmd.AddCommand(newAuthCmd(a))
	cmd.AddCommand(newProfileCmd(a))
	cmd.AddCommand(newTasksCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newSuggestCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newDocsCmd(a))

	return cmd
}

func (a *App) options() app.Options {
	return app.Options{ConfigDir: a.ConfigDir, APIURL: a.APIURL, Debug: a.Debug}
}

func (a *App) configDir() (string, error) {
	if d := strings.TrimSpace(a.ConfigDir); d != "" {
		return d, nil
	}
	return store.ConfigDir()
}

// withRuntime opens the runtime, runs fn, and closes it again.
func withRuntime(cmd *cobra.Command, a *App, fn func(rt *app.App) error) error {
	open := a.open
	if open == nil {
		open = func(cmd *cobra.Command, opts app.Options) (*app.App, error) {
			return app.Open(cmd.Context(), opts)
		}
	}
	rt, err := open(cmd, a.options())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = rt.Close() }()
	return fn(rt)
}

// requireSession is withRuntime for commands that need a logged-in user.
func requireSession(cmd *cobra.Command, a *App, fn func(rt *app.App) error) error {
	return withRuntime(cmd, a, func(rt *app.App) error {
		if err := rt.RequireSession(); err != nil {
			if errors.Is(err, session.ErrNotLoggedIn) {
				return writeErr(cmd, errors.New("not logged in; run `taskpad auth login --email <email> --password <password>`"))
			}
			return writeErr(cmd, err)
		}
		return fn(rt)
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, a *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, a.Format, a.PrettyJSON)
}

func writeData(cmd *cobra.Command, a *App, v any) error {
	return writeOut(cmd, a, map[string]any{"data": v})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func writeNotice(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
}
