package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/seed"
	"nainai/backend/internal/store"
	"nainai/backend/internal/store/storetest"
)

func TestRepositoryBehaviour(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		return New()
	})
}

func TestNewSeededHoldsDemoCatalog(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	wantIngredients, wantProducts := seed.Counts()
	ingredients, err := s.ListIngredients(ctx)
	require.NoError(t, err)
	assert.Len(t, ingredients, wantIngredients)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, wantProducts)

	for _, product := range products {
		lines, err := s.GetRecipe(ctx, product.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, lines, "seeded product %s has no recipe", product.Name)
	}

	err = seed.Apply(ctx, s)
	require.ErrorIs(t, err, store.ErrDuplicateName)
}

func TestSellRollsBackOnWriteFault(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for _, op := range []string{OpUpdateStock, OpInsertMovement, OpInsertSale} {
		t.Run(op, func(t *testing.T) {
			s := New()
			product, tea, milk := storetest.MilkTea(t, s, "2.0")
			s.FailOn(op, errors.New("disk full"))

			_, err := s.Sell(ctx, product.ID, 10, at)
			require.ErrorIs(t, err, store.ErrStorage)

			storetest.AssertDecimal(t, "10", s.ingredients[tea.ID].StockQuantity)
			storetest.AssertDecimal(t, "2", s.ingredients[milk.ID].StockQuantity)
			assert.Empty(t, s.movements)
			assert.Empty(t, s.sales)

			s.FailOn(op, nil)
			_, err = s.Sell(ctx, product.ID, 10, at)
			require.NoError(t, err)
			assert.Len(t, s.movements, 2)
		})
	}
}

func TestAdjustStockRollsBackOnWriteFault(t *testing.T) {
	s := New()
	ctx := context.Background()
	honey, err := s.CreateIngredient(ctx, domain.Ingredient{Name: "Honey", StockQuantity: decimal.NewFromInt(2), Unit: "L"})
	require.NoError(t, err)

	s.FailOn(OpInsertMovement, errors.New("io"))
	_, err = s.AdjustStock(ctx, honey.ID, decimal.NewFromInt(3), domain.MovementPurchase, time.Now())
	require.ErrorIs(t, err, store.ErrStorage)
	storetest.AssertDecimal(t, "2", s.ingredients[honey.ID].StockQuantity)
	assert.Empty(t, s.movements)
}

func TestRankingTiesKeepFirstSaleOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	tea, err := s.CreateIngredient(ctx, domain.Ingredient{Name: "Tea", StockQuantity: decimal.NewFromInt(100), Unit: "kg"})
	require.NoError(t, err)

	ids := map[string]int64{}
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		p, err := s.CreateProduct(ctx, domain.Product{Name: name, Price: decimal.NewFromInt(3)})
		require.NoError(t, err)
		require.NoError(t, s.SaveRecipe(ctx, p.ID, []domain.RecipeEntry{{IngredientID: tea.ID, QuantityNeeded: decimal.RequireFromString("0.1")}}))
		ids[name] = p.ID
	}

	now := time.Now()
	for _, name := range []string{"Zeta", "Mid", "Alpha"} {
		_, err := s.Sell(ctx, ids[name], 2, now)
		require.NoError(t, err)
	}

	ranking, err := s.ProductRanking(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, []string{"Zeta", "Mid", "Alpha"}, []string{ranking[0].ProductName, ranking[1].ProductName, ranking[2].ProductName})
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	s := New()
	ctx := context.Background()
	product, tea, milk := storetest.MilkTea(t, s, "3.0")

	// Milk allows exactly 20 single cups.
	var wg sync.WaitGroup
	results := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Sell(ctx, product.ID, 1, time.Now())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, store.ErrInsufficientStock)
	}
	assert.Equal(t, 20, succeeded)
	storetest.AssertDecimal(t, "0", s.ingredients[milk.ID].StockQuantity)
	storetest.AssertDecimal(t, "8", s.ingredients[tea.ID].StockQuantity)
	assert.Len(t, s.sales, 20)
	assert.Len(t, s.movements, 40)
}
