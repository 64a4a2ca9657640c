package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klyro-io/klyro-cli/internal/domain"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage session tokens",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRefreshCmd(app), newAuthExportCmd(app))

	return cmd
}

// newAuthSetCmd installs tokens obtained elsewhere (CI, another machine)
// without running the login flow.
func newAuthSetCmd(app *app) *cobra.Command {
	var accessToken string
	var refreshToken string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Install an access/refresh token pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.store.SetTokens(cmd.Context(), accessToken, refreshToken); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Tokens stored.")
			return err
		},
	}

	cmd.Flags().StringVar(&accessToken, "access-token", "", "Access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token")
	_ = cmd.MarkFlagRequired("access-token")

	return cmd
}

func newAuthRefreshCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.store.RefreshAccessToken(cmd.Context()) {
				return errors.New(domain.SessionExpiredMessage)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Session refreshed.")
			return err
		},
	}
}

// newAuthExportCmd prints the current token pair as JSON so other tooling
// can reuse the session.
func newAuthExportCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the current token pair as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.store.Session()
			if !session.IsAuthenticated {
				return domain.ErrNotAuthenticated
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(domain.TokenPair{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
			})
		},
	}
}
