package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectsListCmd(app),
		newProjectsCreateCmd(app),
		newProjectsDeleteCmd(app),
		newProjectsSelectCmd(app),
	)

	return cmd
}

func newProjectsListCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projects, err := app.store.FetchProjects(cmd.Context(), force)
			if err != nil {
				return err
			}

			if len(projects) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No projects yet. Create one with `klyro projects create --name ...`.")
				return err
			}

			selected := app.store.Selection().SelectedProjectID
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDOMAIN\t")
			for _, p := range projects {
				marker := ""
				if p.ID == selected {
					marker = " *"
				}
				fmt.Fprintf(w, "%s\t%s%s\t%s\t\n", p.ID, p.Name, marker, p.Domain)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cached project list")

	return cmd
}

func newProjectsCreateCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := app.store.CreateProject(cmd.Context(), name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", project.Name, project.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectsDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return err
		},
	}
}

func newProjectsSelectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <project-id>",
		Short: "Select the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.store.FetchProjects(cmd.Context(), false); err != nil {
				return err
			}

			selected, err := app.store.SetSelectedProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if selected != args[0] {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Project %s not found, selected %s instead\n", args[0], selected)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Selected project %s\n", selected)
			return err
		},
	}
}
