package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImpersonateCmd(app *app) *cobra.Command {
	var projectName string
	var userEmail string

	cmd := &cobra.Command{
		Use:   "impersonate <project-id>",
		Short: "View data as another project (support workflow)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.Impersonate(cmd.Context(), args[0], projectName, userEmail); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Impersonating project %s. Run `klyro impersonate clear` to stop.\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&projectName, "project-name", "", "Display name for the impersonated project")
	cmd.Flags().StringVar(&userEmail, "user-email", "", "Email of the customer being helped")

	cmd.AddCommand(newImpersonateClearCmd(app))

	return cmd
}

func newImpersonateClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Stop impersonating and return to your own selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.store.ClearImpersonation(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Impersonation cleared.")
			return err
		},
	}
}
