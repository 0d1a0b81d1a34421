package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
	"nainai/backend/internal/domain"
	"nainai/backend/internal/report"
)

func newIngredientCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ingredient",
		Aliases: []string{"ing"},
		Short:   "Manage ingredient stock",
	}
	cmd.AddCommand(newIngredientAddCmd(open))
	cmd.AddCommand(newIngredientListCmd(open))
	cmd.AddCommand(newStockMoveCmd(open, "adjust", "Apply a signed stock correction", "DELTA"))
	cmd.AddCommand(newStockMoveCmd(open, "purchase", "Record a delivery", "QUANTITY"))
	cmd.AddCommand(newStockMoveCmd(open, "spoil", "Write off spoiled stock", "QUANTITY"))
	cmd.AddCommand(newMovementsCmd(open))
	cmd.AddCommand(newLowStockCmd(open))
	return cmd
}

func newIngredientAddCmd(open Opener) *cobra.Command {
	var stock, unit, threshold string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stockQty, err := parseDecimal("stock", stock)
			if err != nil {
				return err
			}
			thresholdQty, err := parseDecimal("threshold", threshold)
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				res, err := a.Service.AddIngredient(cmd.Context(), domain.IngredientCreateRequest{
					Name:              args[0],
					StockQuantity:     stockQty,
					Unit:              unit,
					LowStockThreshold: thresholdQty,
				})
				return outcome(cmd.OutOrStdout(), res.Result, err)
			})
		},
	}

	cmd.Flags().StringVar(&stock, "stock", "0", "Initial stock")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit label, e.g. kg or L")
	cmd.Flags().StringVar(&threshold, "threshold", "0", "Low stock threshold")
	return cmd
}

func newIngredientListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingredients with stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				printInventory(cmd, a.Service.InventoryReport(cmd.Context()))
				return nil
			})
		},
	}
}

func newStockMoveCmd(open Opener, use string, short string, amountName string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s ID %s", use, amountName),
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseDecimal(amountName, args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				var res domain.IngredientResult
				switch use {
				case "purchase":
					res, err = a.Service.RecordPurchase(cmd.Context(), id, amount)
				case "spoil":
					res, err = a.Service.RecordSpoilage(cmd.Context(), id, amount)
				default:
					res, err = a.Service.AdjustStock(cmd.Context(), id, amount)
				}
				if err := outcome(cmd.OutOrStdout(), res.Result, err); err != nil {
					return err
				}
				printInventory(cmd, []domain.InventoryLine{{Ingredient: *res.Ingredient, Low: res.Ingredient.LowStock()}})
				return nil
			})
		},
	}
}

func newMovementsCmd(open Opener) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "movements ID",
		Short: "Show an ingredient's stock movements, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				movements := a.Service.Movements(cmd.Context(), id, limit)
				out := cmd.OutOrStdout()
				if len(movements) == 0 {
					fmt.Fprintln(out, dimStyle.Render("no movements"))
					return nil
				}
				loc := a.Service.Location()
				for _, m := range movements {
					fmt.Fprintf(out, "%s  %-14s %s\n",
						dimStyle.Render(m.MovementTime.In(loc).Format("2006-01-02 15:04:05")),
						string(m.Kind),
						signed(m.QuantityChange),
					)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum movements to show")
	return cmd
}

func newLowStockCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "low",
		Short: "List ingredients below their threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				low := a.Service.LowStock(cmd.Context())
				if len(low) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("all ingredients above threshold"))
					return nil
				}
				lines := make([]domain.InventoryLine, 0, len(low))
				for _, ingredient := range low {
					lines = append(lines, domain.InventoryLine{Ingredient: ingredient, Low: true})
				}
				printInventory(cmd, lines)
				return nil
			})
		},
	}
}

func printInventory(cmd *cobra.Command, lines []domain.InventoryLine) {
	out := cmd.OutOrStdout()
	if len(lines) == 0 {
		fmt.Fprintln(out, dimStyle.Render(report.EmptyInventory))
		return
	}
	for _, line := range lines {
		text := fmt.Sprintf("%4d  %s", line.ID, report.InventoryLine(line))
		if line.Low {
			text = lowStyle.Render(text)
		}
		fmt.Fprintln(out, text)
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("id %q must be a positive integer", raw)
	}
	return id, nil
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}
