package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
	"nainai/backend/internal/report"
)

func newReportCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales and inventory reports",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Orders and revenue for the current local day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				text := report.DailySummary(a.Service.Today(), a.Service.TodaySummary(cmd.Context()))
				printReport(cmd, text)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "ranking",
		Short: "Products ranked by cups sold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				printReport(cmd, report.Ranking(a.Service.ProductRanking(cmd.Context())))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "inventory",
		Short: "Stock on hand with low stock flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				printReport(cmd, report.Inventory(a.Service.InventoryReport(cmd.Context())))
				return nil
			})
		},
	})
	cmd.AddCommand(newRecentCmd(open))
	return cmd
}

func newRecentCmd(open Opener) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Latest sales, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				text := report.Recent(a.Service.RecentSales(cmd.Context(), limit), a.Service.Location())
				printReport(cmd, text)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum sales to show")
	return cmd
}

// printReport styles the first line as a title and prints the rest untouched.
func printReport(cmd *cobra.Command, text string) {
	out := cmd.OutOrStdout()
	head, body, _ := strings.Cut(text, "\n")
	fmt.Fprintln(out, titleStyle.Render(head))
	if body != "" {
		fmt.Fprintln(out, body)
	}
}
