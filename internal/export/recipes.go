// Package export writes the recipe book as CSV.
package export

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"nainai/backend/internal/domain"
)

type recipeRow struct {
	ProductID      string `csv:"product id"`
	ProductName    string `csv:"product name"`
	IngredientName string `csv:"ingredient name"`
	QuantityNeeded string `csv:"quantity needed"`
	Unit           string `csv:"unit"`
}

// Recipes writes one row per recipe line. A product without a recipe gets a single
// row with the ingredient columns left empty.
func Recipes(w io.Writer, book []domain.ProductRecipe) error {
	rows := make([]*recipeRow, 0, len(book)*3)
	for _, entry := range book {
		productID := strconv.FormatInt(entry.Product.ID, 10)
		if len(entry.Lines) == 0 {
			rows = append(rows, &recipeRow{ProductID: productID, ProductName: entry.Product.Name})
			continue
		}
		for _, line := range entry.Lines {
			rows = append(rows, &recipeRow{
				ProductID:      productID,
				ProductName:    entry.Product.Name,
				IngredientName: line.IngredientName,
				QuantityNeeded: line.QuantityNeeded.String(),
				Unit:           line.Unit,
			})
		}
	}
	return gocsv.Marshal(rows, w)
}
