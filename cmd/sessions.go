package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newSessionsCmd(app *app) *cobra.Command {
	var flags rangeFlags
	var force bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions for the active project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dr, err := flags.resolve(app.now())
			if err != nil {
				return err
			}

			sessions, err := app.store.FetchSessions(cmd.Context(), dr, force)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			if len(sessions) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No recorded sessions in this range.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tPAGES\tCOUNTRY\tENTRY\t")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t\n",
					s.ID, s.StartedAt, (time.Duration(s.DurationSecs) * time.Second).String(),
					s.PageCount, s.Country, s.EntryPage)
			}
			return w.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
