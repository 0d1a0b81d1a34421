package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
	"nainai/backend/internal/domain"
)

func newProductCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage menu products and their attributes",
	}
	cmd.AddCommand(newProductAddCmd(open))
	cmd.AddCommand(newProductListCmd(open))
	cmd.AddCommand(newProductAttrCmd(open))
	cmd.AddCommand(newProductAttrsCmd(open))
	return cmd
}

func newProductAddCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME PRICE",
		Short: "Add a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parseDecimal("price", args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				res, err := a.Service.AddProduct(cmd.Context(), domain.ProductCreateRequest{Name: args[0], Price: price})
				return outcome(cmd.OutOrStdout(), res.Result, err)
			})
		},
	}
}

func newProductListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				products := a.Service.ListProducts(cmd.Context())
				out := cmd.OutOrStdout()
				if len(products) == 0 {
					fmt.Fprintln(out, dimStyle.Render("no products"))
					return nil
				}
				for _, p := range products {
					fmt.Fprintf(out, "%4d  %s  %s\n", p.ID, labelStyle.Render(p.Name), p.Price.StringFixed(2))
				}
				return nil
			})
		},
	}
}

func newProductAttrCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "attr PRODUCT_ID NAME VALUE",
		Short: "Add a descriptive attribute to a product",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				res, err := a.Service.SetAttribute(cmd.Context(), id, domain.AttributeCreateRequest{Name: args[1], Value: args[2]})
				return outcome(cmd.OutOrStdout(), res.Result, err)
			})
		},
	}
}

func newProductAttrsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "attrs PRODUCT_ID",
		Short: "List a product's attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				out := cmd.OutOrStdout()
				attrs := a.Service.Attributes(cmd.Context(), id)
				if len(attrs) == 0 {
					fmt.Fprintln(out, dimStyle.Render("no attributes"))
					return nil
				}
				for _, attr := range attrs {
					fmt.Fprintf(out, "%s: %s\n", labelStyle.Render(attr.Name), attr.Value)
				}
				return nil
			})
		},
	}
}
