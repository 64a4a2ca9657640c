package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/klyro-io/klyro-cli/internal/domain"
)

func newExperimentsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "Manage A/B experiments for the active project",
	}

	cmd.AddCommand(
		newExperimentsListCmd(app),
		newExperimentsCreateCmd(app),
		newExperimentsStatusCmd(app),
	)

	return cmd
}

func newExperimentsListCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			experiments, err := app.store.FetchExperiments(cmd.Context(), force)
			if err != nil {
				return err
			}

			if len(experiments) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No experiments.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tVARIANTS\t")
			for _, e := range experiments {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t\n", e.ID, e.Name, e.Status, len(e.Variants))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")

	return cmd
}

func newExperimentsCreateCmd(app *app) *cobra.Command {
	var name string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an experiment (starts as draft)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := app.store.CreateExperiment(cmd.Context(), domain.Experiment{
				Name:        name,
				Description: description,
				Status:      domain.ExperimentDraft,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created experiment %s (%s)\n", created.Name, created.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Experiment name")
	cmd.Flags().StringVar(&description, "description", "", "Experiment description")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newExperimentsStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <experiment-id> <draft|running|paused|completed>",
		Short: "Change an experiment's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseExperimentStatus(args[1])
			if err != nil {
				return err
			}

			updated, err := app.store.UpdateExperimentStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Experiment %s is now %s\n", updated.ID, updated.Status)
			return err
		},
	}
}

func parseExperimentStatus(raw string) (domain.ExperimentStatus, error) {
	status := domain.ExperimentStatus(raw)
	switch status {
	case domain.ExperimentDraft, domain.ExperimentRunning, domain.ExperimentPaused, domain.ExperimentCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("invalid experiment status %q (expected draft|running|paused|completed)", raw)
	}
}
