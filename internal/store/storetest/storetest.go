// Package storetest holds the behaviour every store.Repository must show.
// Each implementation runs it from its own tests with a fresh, empty repository per case.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
)

type Factory func(t *testing.T) store.Repository

var base = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func Run(t *testing.T, newRepo Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, repo store.Repository)
	}{
		{"DuplicateIngredientNameRejected", testDuplicateIngredient},
		{"IngredientsListedByName", testIngredientsListedByName},
		{"AdjustStockAppendsOneMovement", testAdjustStock},
		{"AdjustStockUnknownIngredient", testAdjustStockUnknown},
		{"DuplicateProductNameRejected", testDuplicateProduct},
		{"AttributesAllowRepeats", testAttributesRepeat},
		{"SaveRecipeReplacesPriorEntries", testSaveRecipeReplaces},
		{"SaveRecipeRejectsBadInput", testSaveRecipeRejects},
		{"SellWithoutRecipe", testSellWithoutRecipe},
		{"SellInsufficientStockTouchesNothing", testSellInsufficient},
		{"SellNamesFirstFailingIngredient", testSellFirstFailing},
		{"SellDeductsAndRecords", testSellSuccess},
		{"DecimalsKeptExactly", testExactDecimals},
		{"SellRejectsBadInput", testSellBadInput},
		{"SalesSummaryCountsRange", testSalesSummary},
		{"RankingByQuantityStableTies", testRanking},
		{"RecentSalesNewestFirst", testRecentSales},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newRepo(t))
		})
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// AssertDecimal compares by value so 1.0 and 1 are equal.
func AssertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func mustIngredient(t *testing.T, repo store.Repository, name string, stock string, unit string) domain.Ingredient {
	t.Helper()
	created, err := repo.CreateIngredient(context.Background(), domain.Ingredient{
		Name:              name,
		StockQuantity:     dec(stock),
		Unit:              unit,
		LowStockThreshold: dec("0.5"),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	return *created
}

func mustProduct(t *testing.T, repo store.Repository, name string, price string) domain.Product {
	t.Helper()
	created, err := repo.CreateProduct(context.Background(), domain.Product{Name: name, Price: dec(price)})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	return *created
}

// MilkTea builds the black tea + milk fixture: tea 10 kg, milk at milkStock litres,
// one cup needs 0.1 kg tea and 0.15 L milk.
func MilkTea(t *testing.T, repo store.Repository, milkStock string) (domain.Product, domain.Ingredient, domain.Ingredient) {
	t.Helper()
	tea := mustIngredient(t, repo, "Black Tea", "10.0", "kg")
	milk := mustIngredient(t, repo, "Milk", milkStock, "L")
	product := mustProduct(t, repo, "Milk Tea", "12.5")
	require.NoError(t, repo.SaveRecipe(context.Background(), product.ID, []domain.RecipeEntry{
		{IngredientID: tea.ID, QuantityNeeded: dec("0.1")},
		{IngredientID: milk.ID, QuantityNeeded: dec("0.15")},
	}))
	return product, tea, milk
}

func stockOf(t *testing.T, repo store.Repository, id int64) decimal.Decimal {
	t.Helper()
	ingredient, err := repo.GetIngredient(context.Background(), id)
	require.NoError(t, err)
	return ingredient.StockQuantity
}

func testDuplicateIngredient(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	first := mustIngredient(t, repo, "Sugar", "5", "kg")

	_, err := repo.CreateIngredient(ctx, domain.Ingredient{Name: "Sugar", StockQuantity: dec("99"), Unit: "kg"})
	require.ErrorIs(t, err, store.ErrDuplicateName)

	got, err := repo.GetIngredientByName(ctx, "Sugar")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	AssertDecimal(t, "5", got.StockQuantity)

	all, err := repo.ListIngredients(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testIngredientsListedByName(t *testing.T, repo store.Repository) {
	mustIngredient(t, repo, "Oat Milk", "1", "L")
	mustIngredient(t, repo, "Honey", "1", "L")
	mustIngredient(t, repo, "Ice", "1", "kg")

	all, err := repo.ListIngredients(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, ingredient := range all {
		names = append(names, ingredient.Name)
	}
	assert.Equal(t, []string{"Honey", "Ice", "Oat Milk"}, names)
}

func testAdjustStock(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	honey := mustIngredient(t, repo, "Honey", "2.5", "L")

	updated, err := repo.AdjustStock(ctx, honey.ID, dec("1.25"), domain.MovementManualUpdate, base)
	require.NoError(t, err)
	AssertDecimal(t, "3.75", updated.StockQuantity)
	AssertDecimal(t, "3.75", stockOf(t, repo, honey.ID))

	movements, err := repo.ListMovements(ctx, honey.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	AssertDecimal(t, "1.25", movements[0].QuantityChange)
	assert.Equal(t, domain.MovementManualUpdate, movements[0].Kind)

	_, err = repo.AdjustStock(ctx, honey.ID, dec("-5"), domain.MovementSpoilage, base.Add(time.Minute))
	require.NoError(t, err)
	AssertDecimal(t, "-1.25", stockOf(t, repo, honey.ID))

	movements, err = repo.ListMovements(ctx, honey.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, domain.MovementSpoilage, movements[0].Kind)
}

func testAdjustStockUnknown(t *testing.T, repo store.Repository) {
	_, err := repo.AdjustStock(context.Background(), 4242, dec("1"), domain.MovementManualUpdate, base)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testDuplicateProduct(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product := mustProduct(t, repo, "Milk Tea", "12")

	_, err := repo.CreateProduct(ctx, domain.Product{Name: "Milk Tea", Price: dec("20")})
	require.ErrorIs(t, err, store.ErrDuplicateName)

	got, err := repo.GetProductByName(ctx, "Milk Tea")
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	AssertDecimal(t, "12", got.Price)

	_, err = repo.GetProductByName(ctx, "Nope")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = repo.GetProduct(ctx, product.ID+100)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testAttributesRepeat(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product := mustProduct(t, repo, "Lemon Tea", "9")

	for _, value := range []string{"sour", "sour", "fresh"} {
		_, err := repo.AddProductAttribute(ctx, domain.ProductAttribute{ProductID: product.ID, Name: "taste", Value: value})
		require.NoError(t, err)
	}
	attrs, err := repo.ListProductAttributes(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, attrs, 3)

	_, err = repo.AddProductAttribute(ctx, domain.ProductAttribute{ProductID: product.ID + 100, Name: "taste", Value: "x"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testSaveRecipeReplaces(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product, tea, milk := MilkTea(t, repo, "2.0")
	sugar := mustIngredient(t, repo, "Sugar", "3", "kg")

	entries := []domain.RecipeEntry{
		{IngredientID: sugar.ID, QuantityNeeded: dec("0.02")},
		{IngredientID: tea.ID, QuantityNeeded: dec("0.12")},
	}
	require.NoError(t, repo.SaveRecipe(ctx, product.ID, entries))

	lines, err := repo.GetRecipe(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	got := map[int64]decimal.Decimal{}
	for _, line := range lines {
		got[line.IngredientID] = line.QuantityNeeded
	}
	assert.NotContains(t, got, milk.ID)
	AssertDecimal(t, "0.02", got[sugar.ID])
	AssertDecimal(t, "0.12", got[tea.ID])
	assert.Equal(t, "Sugar", lines[0].IngredientName)
	assert.Equal(t, "kg", lines[0].Unit)

	require.NoError(t, repo.SaveRecipe(ctx, product.ID, nil))
	lines, err = repo.GetRecipe(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func testSaveRecipeRejects(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product, tea, milk := MilkTea(t, repo, "2.0")

	err := repo.SaveRecipe(ctx, product.ID, []domain.RecipeEntry{
		{IngredientID: tea.ID, QuantityNeeded: dec("0.1")},
		{IngredientID: milk.ID, QuantityNeeded: dec("0")},
	})
	require.ErrorIs(t, err, store.ErrInvalidQuantity)

	err = repo.SaveRecipe(ctx, product.ID, []domain.RecipeEntry{
		{IngredientID: tea.ID, QuantityNeeded: dec("-1")},
	})
	require.ErrorIs(t, err, store.ErrInvalidQuantity)

	err = repo.SaveRecipe(ctx, product.ID, []domain.RecipeEntry{
		{IngredientID: tea.ID, QuantityNeeded: dec("0.1")},
		{IngredientID: tea.ID, QuantityNeeded: dec("0.2")},
	})
	require.ErrorIs(t, err, store.ErrInvalidRecipe)

	err = repo.SaveRecipe(ctx, product.ID, []domain.RecipeEntry{
		{IngredientID: tea.ID + milk.ID + 100, QuantityNeeded: dec("0.1")},
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	err = repo.SaveRecipe(ctx, product.ID+100, nil)
	require.ErrorIs(t, err, store.ErrNotFound)

	lines, err := repo.GetRecipe(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2, "rejected saves must keep the prior recipe")
}

func testSellWithoutRecipe(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	tea := mustIngredient(t, repo, "Black Tea", "10", "kg")
	product := mustProduct(t, repo, "Plain Water", "1")

	_, err := repo.Sell(ctx, product.ID, 1, base)
	require.ErrorIs(t, err, store.ErrNoRecipe)

	AssertDecimal(t, "10", stockOf(t, repo, tea.ID))
	recent, err := repo.RecentSales(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func testSellInsufficient(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product, tea, milk := MilkTea(t, repo, "1.0")

	_, err := repo.Sell(ctx, product.ID, 10, base)
	require.ErrorIs(t, err, store.ErrInsufficientStock)
	var stockErr *store.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Milk", stockErr.Ingredient)

	AssertDecimal(t, "10", stockOf(t, repo, tea.ID))
	AssertDecimal(t, "1", stockOf(t, repo, milk.ID))

	for _, id := range []int64{tea.ID, milk.ID} {
		movements, err := repo.ListMovements(ctx, id, 10)
		require.NoError(t, err)
		assert.Empty(t, movements)
	}
	summary, err := repo.SalesSummary(ctx, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, summary.OrderCount)
}

func testSellFirstFailing(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	syrup := mustIngredient(t, repo, "Syrup", "0.01", "L")
	tea := mustIngredient(t, repo, "Green Tea", "0.01", "kg")
	product := mustProduct(t, repo, "Sweet Green", "8")
	require.NoError(t, repo.SaveRecipe(ctx, product.ID, []domain.RecipeEntry{
		{IngredientID: tea.ID, QuantityNeeded: dec("0.1")},
		{IngredientID: syrup.ID, QuantityNeeded: dec("0.1")},
	}))

	_, err := repo.Sell(ctx, product.ID, 1, base)
	var stockErr *store.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Green Tea", stockErr.Ingredient)
}

func testSellSuccess(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product, tea, milk := MilkTea(t, repo, "2.0")
	other := mustIngredient(t, repo, "Ice", "50", "kg")

	sale, err := repo.Sell(ctx, product.ID, 10, base)
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)
	assert.Equal(t, product.ID, sale.ProductID)
	assert.Equal(t, 10, sale.QuantitySold)
	AssertDecimal(t, "125", sale.TotalPrice)

	AssertDecimal(t, "9", stockOf(t, repo, tea.ID))
	AssertDecimal(t, "0.5", stockOf(t, repo, milk.ID))
	AssertDecimal(t, "50", stockOf(t, repo, other.ID))

	teaMoves, err := repo.ListMovements(ctx, tea.ID, 10)
	require.NoError(t, err)
	require.Len(t, teaMoves, 1)
	assert.Equal(t, domain.MovementSaleDeduction, teaMoves[0].Kind)
	AssertDecimal(t, "-1", teaMoves[0].QuantityChange)

	milkMoves, err := repo.ListMovements(ctx, milk.ID, 10)
	require.NoError(t, err)
	require.Len(t, milkMoves, 1)
	AssertDecimal(t, "-1.5", milkMoves[0].QuantityChange)

	iceMoves, err := repo.ListMovements(ctx, other.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, iceMoves)

	summary, err := repo.SalesSummary(ctx, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OrderCount)
	AssertDecimal(t, "125", summary.TotalRevenue)

	_, err = repo.Sell(ctx, product.ID, 4, base.Add(time.Minute))
	var stockErr *store.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Milk", stockErr.Ingredient)
}

func testExactDecimals(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	saffron := mustIngredient(t, repo, "Saffron", "1.234567", "g")
	product := mustProduct(t, repo, "Saffron Milk", "3.999")
	AssertDecimal(t, "3.999", product.Price)

	require.NoError(t, repo.SaveRecipe(ctx, product.ID, []domain.RecipeEntry{
		{IngredientID: saffron.ID, QuantityNeeded: dec("0.00004")},
	}))
	lines, err := repo.GetRecipe(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	AssertDecimal(t, "0.00004", lines[0].QuantityNeeded)

	sale, err := repo.Sell(ctx, product.ID, 3, base)
	require.NoError(t, err)
	AssertDecimal(t, "11.997", sale.TotalPrice)
	AssertDecimal(t, "1.234447", stockOf(t, repo, saffron.ID))

	moves, err := repo.ListMovements(ctx, saffron.ID, 1)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	AssertDecimal(t, "-0.00012", moves[0].QuantityChange)

	recent, err := repo.RecentSales(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	AssertDecimal(t, "11.997", recent[0].TotalPrice)
}

func testSellBadInput(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product, _, _ := MilkTea(t, repo, "2.0")

	_, err := repo.Sell(ctx, product.ID, 0, base)
	require.ErrorIs(t, err, store.ErrInvalidQuantity)
	_, err = repo.Sell(ctx, product.ID, -3, base)
	require.ErrorIs(t, err, store.ErrInvalidQuantity)
	_, err = repo.Sell(ctx, product.ID+100, 1, base)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testSalesSummary(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product, _, _ := MilkTea(t, repo, "20")

	_, err := repo.Sell(ctx, product.ID, 1, base.Add(-24*time.Hour))
	require.NoError(t, err)
	_, err = repo.Sell(ctx, product.ID, 2, base)
	require.NoError(t, err)
	_, err = repo.Sell(ctx, product.ID, 3, base.Add(2*time.Hour))
	require.NoError(t, err)

	dayStart := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	summary, err := repo.SalesSummary(ctx, dayStart, dayStart.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.OrderCount)
	AssertDecimal(t, "62.5", summary.TotalRevenue)

	empty, err := repo.SalesSummary(ctx, dayStart.Add(48*time.Hour), dayStart.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, empty.OrderCount)
	AssertDecimal(t, "0", empty.TotalRevenue)
}

func testRanking(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	tea := mustIngredient(t, repo, "Black Tea", "100", "kg")
	names := []string{"Alpha", "Bravo", "Charlie"}
	ids := map[string]int64{}
	for _, name := range names {
		product := mustProduct(t, repo, name, "2")
		require.NoError(t, repo.SaveRecipe(ctx, product.ID, []domain.RecipeEntry{
			{IngredientID: tea.ID, QuantityNeeded: dec("0.1")},
		}))
		ids[name] = product.ID
	}

	sells := []struct {
		name string
		qty  int
	}{
		{"Alpha", 2}, {"Bravo", 4}, {"Charlie", 2}, {"Bravo", 1},
	}
	for i, s := range sells {
		_, err := repo.Sell(ctx, ids[s.name], s.qty, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	ranking, err := repo.ProductRanking(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "Bravo", ranking[0].ProductName)
	assert.Equal(t, 5, ranking[0].TotalQuantity)
	AssertDecimal(t, "10", ranking[0].TotalRevenue)
	assert.ElementsMatch(t, []string{"Alpha", "Charlie"}, []string{ranking[1].ProductName, ranking[2].ProductName})
	assert.Equal(t, 2, ranking[1].TotalQuantity)
	assert.Equal(t, 2, ranking[2].TotalQuantity)
}

func testRecentSales(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	product, _, _ := MilkTea(t, repo, "20")

	for i := 1; i <= 3; i++ {
		_, err := repo.Sell(ctx, product.ID, i, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	recent, err := repo.RecentSales(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].QuantitySold)
	assert.Equal(t, 2, recent[1].QuantitySold)
	assert.Equal(t, "Milk Tea", recent[0].ProductName)
	AssertDecimal(t, "37.5", recent[0].TotalPrice)
	assert.True(t, recent[0].SaleTime.Equal(base.Add(3*time.Minute)))
}
