package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newPrefetchCmd(app *app) *cobra.Command {
	var flags rangeFlags

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Warm the cache for the active project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dr, err := flags.resolve(app.now())
			if err != nil {
				return err
			}

			err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Warming project caches...",
				func(ctx context.Context) error {
					return app.store.Prefetch(ctx, dr)
				})
			if err != nil {
				return err
			}

			stats := app.cache.Stats()
			total := 0
			for _, n := range stats {
				total += n
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cache warm: %d entries across %d buckets\n", total, len(stats))
			return err
		},
	}

	flags.register(cmd)

	return cmd
}
