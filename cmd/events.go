package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *app) *cobra.Command {
	var flags rangeFlags
	var force bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List custom events for the active project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dr, err := flags.resolve(app.now())
			if err != nil {
				return err
			}

			events, err := app.store.FetchEvents(cmd.Context(), dr, force)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(events)
			}

			if len(events) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No events in this range.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOUNT\tUNIQUE\tLAST SEEN\t")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t\n", e.Name, e.Count, e.UniqueBy, e.LastSeen)
			}
			return w.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
