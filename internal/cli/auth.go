package cli

import (
	"taskpad/internal/app"
	"taskpad/internal/model"
	"taskpad/internal/session"

	"github.com/spf13/cobra"
)

func newAuthCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Register, log in, and log out",
	}
	cmd.AddCommand(newAuthRegisterCmd(a))
	cmd.AddCommand(newAuthLoginCmd(a))
	cmd.AddCommand(newAuthLogoutCmd(a))
	cmd.AddCommand(newAuthWhoamiCmd(a))
	return cmd
}

func toSessionView(s *model.Session) sessionView {
	v := sessionView{UserID: s.UserID, Name: s.Name, Email: s.Email}
	if exp, ok := session.ExpiresAt(s); ok {
		v.ExpiresAt = &exp
	}
	return v
}

func newAuthRegisterCmd(a *App) *cobra.Command {
	var in session.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm") {
				in.Confirm = in.Password
			}
			return withRuntime(cmd, a, func(rt *app.App) error {
				sess, err := rt.Session.Register(cmd.Context(), in)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, toSessionView(sess))
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password")
	cmd.Flags().StringVar(&in.Confirm, "confirm", "", "Password confirmation (default: same as --password)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAuthLoginCmd(a *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, a, func(rt *app.App) error {
				sess, err := rt.Session.Login(cmd.Context(), email, password)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, toSessionView(sess))
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAuthLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, a, func(rt *app.App) error {
				if err := rt.Logout(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				return writeData(cmd, a, messageView{Message: "Logged out"})
			})
		},
	}
}

func newAuthWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return requireSession(cmd, a, func(rt *app.App) error {
				return writeData(cmd, a, toSessionView(rt.Session.Current()))
			})
		},
	}
}
