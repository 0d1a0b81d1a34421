package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
	"nainai/backend/internal/domain"
)

func newSellCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sell PRODUCT_ID QUANTITY",
		Short: "Sell cups of a product by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				res, err := a.Service.Sell(cmd.Context(), productID, quantity)
				return saleOutcome(cmd, res, err)
			})
		},
	}
}

func newOrderCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "order PRODUCT_NAME QUANTITY",
		Short: "Sell cups of a product by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				res, err := a.Service.SellByName(cmd.Context(), args[0], quantity)
				return saleOutcome(cmd, res, err)
			})
		},
	}
}

func saleOutcome(cmd *cobra.Command, res domain.SaleResult, err error) error {
	if err := outcome(cmd.OutOrStdout(), res.Result, err); err != nil {
		return err
	}
	if res.Sale != nil {
		fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(fmt.Sprintf("sale #%d", res.Sale.ID)))
	}
	return nil
}

// parseQuantity leaves range checks to the service so refusals read the same everywhere.
func parseQuantity(raw string) (int, error) {
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("quantity %q must be a whole number", raw)
	}
	return quantity, nil
}
