package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/klyro-io/klyro-cli/internal/domain"
)

func newPlaybooksCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playbooks",
		Short: "Manage retention playbooks for the active project",
	}

	cmd.AddCommand(
		newPlaybooksListCmd(app),
		newPlaybooksCreateCmd(app),
		newPlaybooksStatusCmd(app),
	)

	return cmd
}

func newPlaybooksListCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List playbooks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			playbooks, err := app.store.FetchPlaybooks(cmd.Context(), force)
			if err != nil {
				return err
			}

			if len(playbooks) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No playbooks.")
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tTRIGGER\t")
			for _, p := range playbooks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", p.ID, p.Name, p.Type, p.Status, p.Trigger)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")

	return cmd
}

func newPlaybooksCreateCmd(app *app) *cobra.Command {
	var name string
	var playbookType string
	var trigger string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a playbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := app.store.CreatePlaybook(cmd.Context(), domain.Playbook{
				Name:    name,
				Type:    playbookType,
				Trigger: trigger,
				Status:  domain.PlaybookPaused,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created playbook %s (%s)\n", created.Name, created.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Playbook name")
	cmd.Flags().StringVar(&playbookType, "type", "", "Playbook type (e.g. churn, onboarding)")
	cmd.Flags().StringVar(&trigger, "trigger", "", "Trigger condition")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newPlaybooksStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <playbook-id> <active|paused|archived>",
		Short: "Change a playbook's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parsePlaybookStatus(args[1])
			if err != nil {
				return err
			}

			updated, err := app.store.UpdatePlaybookStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Playbook %s is now %s\n", updated.ID, updated.Status)
			return err
		},
	}
}

func parsePlaybookStatus(raw string) (domain.PlaybookStatus, error) {
	status := domain.PlaybookStatus(raw)
	switch status {
	case domain.PlaybookActive, domain.PlaybookPaused, domain.PlaybookArchived:
		return status, nil
	default:
		return "", fmt.Errorf("invalid playbook status %q (expected active|paused|archived)", raw)
	}
}
