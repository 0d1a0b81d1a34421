package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nainai/backend/internal/domain"
)

func TestRecipesCSV(t *testing.T) {
	book := []domain.ProductRecipe{
		{Product: domain.Product{ID: 2, Name: "Hot Water"}},
		{
			Product: domain.Product{ID: 1, Name: "Milk Tea, Large"},
			Lines: []domain.RecipeLine{
				{IngredientID: 1, IngredientName: "Black Tea", QuantityNeeded: decimal.RequireFromString("0.1"), Unit: "kg"},
				{IngredientID: 2, IngredientName: "Milk", QuantityNeeded: decimal.RequireFromString("0.15"), Unit: "L"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Recipes(&buf, book))
	assert.Equal(t,
		"product id,product name,ingredient name,quantity needed,unit\n"+
			"2,Hot Water,,,\n"+
			"1,\"Milk Tea, Large\",Black Tea,0.1,kg\n"+
			"1,\"Milk Tea, Large\",Milk,0.15,L\n",
		buf.String())
}
