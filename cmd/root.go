package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "klyro",
		Short:         "Klyro CLI: analytics, experiments and revenue from the terminal",
		Long:          "klyro talks to the Klyro analytics backend: sign in, pick a project, and query analytics, events, session recordings, experiments, playbooks and revenue without opening the dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newAuthCmd(app),
		newStatusCmd(app),
		newProjectsCmd(app),
		newImpersonateCmd(app),
		newAPIKeysCmd(app),
		newAnalyticsCmd(app),
		newEventsCmd(app),
		newExperimentsCmd(app),
		newPlaybooksCmd(app),
		newSessionsCmd(app),
		newRevenueCmd(app),
		newPrefetchCmd(app),
	)

	return rootCmd
}
