package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAPIKeysCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikeys",
		Short: "Manage ingest API keys for the active project",
	}

	cmd.AddCommand(newAPIKeysListCmd(app), newAPIKeysCreateCmd(app), newAPIKeysDeleteCmd(app))

	return cmd
}

func newAPIKeysListCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := app.store.FetchAPIKeys(cmd.Context(), force)
			if err != nil {
				return err
			}

			if len(keys) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No API keys.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPREFIX\tLAST USED\t")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", k.ID, k.Name, k.Prefix, k.LastUsed)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")

	return cmd
}

func newAPIKeysCreateCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := app.store.CreateAPIKey(cmd.Context(), name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created API key %s (%s)\n", key.Name, key.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Key name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAPIKeysDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key-id>",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.DeleteAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted API key %s\n", args[0])
			return err
		},
	}
}
