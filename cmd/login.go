package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Klyro",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("KLYRO_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("no password provided: pass --password or set KLYRO_PASSWORD")
			}

			if err := app.store.Login(cmd.Context(), email, password); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", email)

			if _, err := app.store.FetchProjects(cmd.Context(), true); err != nil {
				app.logger.Warn().Err(err).Msg("loading projects after login")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or set KLYRO_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.store.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return err
		},
	}
}
