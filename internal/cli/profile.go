package cli

import (
	"taskpad/internal/app"
	"taskpad/internal/form"

	"github.com/spf13/cobra"
)

func newProfileCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Account profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Fetch the profile from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return requireSession(cmd, a, func(rt *app.App) error {
				p, err := rt.Client.Profile(cmd.Context()).Unwrap()
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, p)
			})
		},
	})
	cmd.AddCommand(newProfileChangePasswordCmd(a))
	return cmd
}

func newProfileChangePasswordCmd(a *App) *cobra.Command {
	pf := form.NewPassword()
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return requireSession(cmd, a, func(rt *app.App) error {
				if err := pf.Submit(cmd.Context(), rt.Client); err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, messageView{Message: pf.Message})
			})
		},
	}
	cmd.Flags().StringVar(&pf.Current, "current", "", "Current password")
	cmd.Flags().StringVar(&pf.New, "new", "", "New password")
	cmd.Flags().StringVar(&pf.Confirm, "confirm", "", "New password again")
	return cmd
}
