package cli

import (
	"taskpad/internal/app"
	"taskpad/internal/logging"
	"taskpad/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ~/.taskpad/config.json",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show config values and resolved paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, a, func(rt *app.App) error {
				return writeData(cmd, a, map[string]any{
					"configDir":       rt.ConfigDir,
					"configFile":      store.ConfigPath(rt.ConfigDir),
					"storageFile":     rt.KV.Path(),
					"logFile":         logging.Path(rt.ConfigDir),
					"apiUrl":          rt.Client.BaseURL(),
					"assistAvailable": rt.Assist.Available(),
					"values":          rt.Config.Values(),
				})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value (empty value clears it)",
		Long:  "Keys: apiUrl, logLevel, assist.model, assist.apiKeyEnv, breaker.enabled, breaker.failures, breaker.openSeconds, tui.profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, a, func(rt *app.App) error {
				if args[0] == "logLevel" {
					if _, err := logging.ParseLevel(args[1]); err != nil {
						return writeErr(cmd, err)
					}
				}
				if err := rt.Config.Set(args[0], args[1]); err != nil {
					return writeErr(cmd, err)
				}
				if err := rt.SaveConfig(); err != nil {
					return writeErr(cmd, err)
				}
				v, _ := rt.Config.Get(args[0])
				return writeData(cmd, a, map[string]string{"key": args[0], "value": v})
			})
		},
	})
	return cmd
}
