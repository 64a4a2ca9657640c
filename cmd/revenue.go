package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRevenueCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Stripe-backed revenue reporting for the active project",
	}

	cmd.AddCommand(newRevenueReportCmd(app), newRevenueSetStripeKeyCmd(app))

	return cmd
}

func newRevenueReportCmd(app *app) *cobra.Command {
	var flags rangeFlags
	var force bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the revenue report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dr, err := flags.resolve(app.now())
			if err != nil {
				return err
			}

			report, err := app.store.FetchRevenue(cmd.Context(), dr, force)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			currency := report.Currency
			if currency == "" {
				currency = "usd"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Revenue %s to %s\n", dr.StartDate, dr.EndDate)
			fmt.Fprintf(out, "  MRR:              %s\n", formatCents(report.MRRCents, currency))
			fmt.Fprintf(out, "  ARR:              %s\n", formatCents(report.ARRCents, currency))
			fmt.Fprintf(out, "  churn:            %.1f%%\n", report.ChurnPercent)
			fmt.Fprintf(out, "  active customers: %d\n", report.ActiveCustomers)
			fmt.Fprintf(out, "  new customers:    %d\n", report.NewCustomers)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newRevenueSetStripeKeyCmd(app *app) *cobra.Command {
	var stripeKey string

	cmd := &cobra.Command{
		Use:   "set-stripe-key",
		Short: "Attach a Stripe restricted key to the active project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.store.SetStripeKey(cmd.Context(), stripeKey); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Stripe key stored. Cached revenue was cleared.")
			return err
		},
	}

	cmd.Flags().StringVar(&stripeKey, "key", "", "Stripe restricted key (rk_...)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}
