package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// errNotSignedIn makes the process exit non-zero without an extra message
// beyond the notification already printed.
var errNotSignedIn = errors.New("not signed in")

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		Long: `Sign in against the dashboard backend. The password may also be passed
through the DASHCTL_PASSWORD environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("DASHCTL_PASSWORD")
			}
			return run(cmd, func(ctx context.Context, a *app) error {
				a.ui.SetGlobalLoading(true)
				err := a.session.Login(ctx, domain.Credentials{Username: username, Password: password})
				a.ui.SetGlobalLoading(false)

				if err != nil {
					a.ui.Error(a.session.State().Error, "Вход")
					return err
				}
				user := a.session.State().User
				a.ui.Success(fmt.Sprintf("Добро пожаловать, %s", displayName(user)), "Вход")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				a.session.Logout(ctx)
				a.ui.Info("Вы вышли из системы")
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Validate the persisted session against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				a.ui.SetGlobalLoading(true, "Проверка сессии...")
				a.session.CheckAuth(ctx)
				a.ui.SetGlobalLoading(false)

				st := a.session.State()
				if !st.IsAuthenticated {
					a.ui.Warning("Сессия недействительна, войдите снова")
					return errNotSignedIn
				}
				a.ui.Success(fmt.Sprintf("Сессия активна: %s (%s)", displayName(st.User), st.User.Role))
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the persisted user without contacting the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				st := a.session.State()
				out := cmd.OutOrStdout()
				if !st.IsAuthenticated || st.User == nil {
					fmt.Fprintln(out, "not signed in")
					return errNotSignedIn
				}

				u := st.User
				fmt.Fprintf(out, "%s (%s)\n", u.Username, u.Role)
				if verbose {
					fmt.Fprintf(out, "  ID:        %d\n", u.ID)
					fmt.Fprintf(out, "  Name:      %s\n", u.FullName)
					fmt.Fprintf(out, "  Email:     %s\n", u.Email)
					if u.LastLogin != nil {
						fmt.Fprintf(out, "  Last login: %s\n", u.LastLogin.Format("2006-01-02 15:04"))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the full profile")
	return cmd
}

func displayName(u *domain.User) string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
