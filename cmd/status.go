package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	statusadapter "github.com/klyro-io/klyro-cli/internal/adapters/render/status"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var staleAfter time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session, project and cache status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot := app.store.Snapshot()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}

			rendered, err := app.statusRenderer(snapshot, statusadapter.RenderOptions{
				Now:        app.now(),
				StaleAfter: staleAfter,
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", 6*time.Hour, "Age after which cached queries are flagged stale")

	return cmd
}
