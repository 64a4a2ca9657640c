package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd(app *app) *cobra.Command {
	var flags rangeFlags
	var force bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the analytics summary for the active project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dr, err := flags.resolve(app.now())
			if err != nil {
				return err
			}

			summary, err := app.store.FetchAnalytics(cmd.Context(), dr, force)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Analytics %s to %s\n", dr.StartDate, dr.EndDate)
			fmt.Fprintf(out, "  visitors:    %d\n", summary.Visitors)
			fmt.Fprintf(out, "  page views:  %d\n", summary.PageViews)
			fmt.Fprintf(out, "  bounce rate: %.1f%%\n", summary.BounceRate)
			fmt.Fprintf(out, "  avg session: %.0fs\n", summary.AvgSessionSecs)

			if len(summary.TopPages) > 0 {
				fmt.Fprintln(out, "\nTop pages:")
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, p := range summary.TopPages {
					fmt.Fprintf(w, "  %s\t%d\t\n", p.Path, p.Views)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			if len(summary.TopReferrers) > 0 {
				fmt.Fprintln(out, "\nTop referrers:")
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, r := range summary.TopReferrers {
					fmt.Fprintf(w, "  %s\t%d\t\n", r.Source, r.Visitors)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
