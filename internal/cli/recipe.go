package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
	"nainai/backend/internal/domain"
	"nainai/backend/internal/export"
)

func newRecipeCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage drink recipes",
	}
	cmd.AddCommand(newRecipeSetCmd(open))
	cmd.AddCommand(newRecipeShowCmd(open))
	cmd.AddCommand(newRecipeAllCmd(open))
	cmd.AddCommand(newRecipeExportCmd(open))
	return cmd
}

func newRecipeSetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "set PRODUCT_ID [INGREDIENT_ID=QUANTITY ...]",
		Short: "Replace a product's recipe. No entries clears it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			entries := make([]domain.RecipeEntry, 0, len(args)-1)
			for _, raw := range args[1:] {
				idPart, qtyPart, found := strings.Cut(raw, "=")
				if !found {
					return fmt.Errorf("entry %q must look like INGREDIENT_ID=QUANTITY", raw)
				}
				ingredientID, err := parseID(idPart)
				if err != nil {
					return err
				}
				qty, err := parseDecimal("quantity", qtyPart)
				if err != nil {
					return err
				}
				entries = append(entries, domain.RecipeEntry{IngredientID: ingredientID, QuantityNeeded: qty})
			}
			return withApp(cmd, open, func(a *app.App) error {
				res, err := a.Service.SaveRecipe(cmd.Context(), productID, entries)
				return outcome(cmd.OutOrStdout(), res, err)
			})
		},
	}
}

func newRecipeShowCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show PRODUCT_ID",
		Short: "Show one product's recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, open, func(a *app.App) error {
				product, found := a.Service.GetProduct(cmd.Context(), productID)
				if !found {
					return fmt.Errorf("product not found")
				}
				printRecipe(cmd.OutOrStdout(), domain.ProductRecipe{
					Product: product,
					Lines:   a.Service.Recipe(cmd.Context(), productID),
				})
				return nil
			})
		},
	}
}

func newRecipeAllCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Show every product's recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				for _, entry := range a.Service.RecipeBook(cmd.Context()) {
					printRecipe(cmd.OutOrStdout(), entry)
				}
				return nil
			})
		},
	}
}

func newRecipeExportCmd(open Opener) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the recipe book as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				book := a.Service.RecipeBook(cmd.Context())
				if outPath == "" || outPath == "-" {
					return export.Recipes(cmd.OutOrStdout(), book)
				}

				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				if err := export.Recipes(f, book); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), okStyle.Render("✓ recipes written to "+outPath))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "recipes.csv", `Output file, "-" for stdout`)
	return cmd
}

func printRecipe(w io.Writer, entry domain.ProductRecipe) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(entry.Product.Name), dimStyle.Render(entry.Product.Price.StringFixed(2)))
	if len(entry.Lines) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  no recipe"))
		return
	}
	for _, line := range entry.Lines {
		fmt.Fprintf(w, "  - %s: %s %s\n", line.IngredientName, line.QuantityNeeded.String(), line.Unit)
	}
}
