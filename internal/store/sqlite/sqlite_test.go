package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
	"nainai/backend/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "nainai_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestRepositoryBehaviour(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		return newTestStore(t)
	})
}

// failCreatesOn makes every insert into table fail before it reaches SQLite.
func failCreatesOn(t *testing.T, s *Store, table string) {
	t.Helper()
	err := s.db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)
}

func TestSellRollsBackWhenSaleInsertFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	product, tea, milk := storetest.MilkTea(t, s, "2.0")
	failCreatesOn(t, s, "sales")

	_, err := s.Sell(ctx, product.ID, 10, time.Now())
	require.ErrorIs(t, err, store.ErrStorage)

	teaNow, err := s.GetIngredient(ctx, tea.ID)
	require.NoError(t, err)
	storetest.AssertDecimal(t, "10", teaNow.StockQuantity)
	milkNow, err := s.GetIngredient(ctx, milk.ID)
	require.NoError(t, err)
	storetest.AssertDecimal(t, "2", milkNow.StockQuantity)

	var movements int64
	require.NoError(t, s.db.Model(&movementRow{}).Count(&movements).Error)
	assert.Zero(t, movements)
}

func TestAdjustStockRollsBackWhenMovementInsertFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, tea, _ := storetest.MilkTea(t, s, "2.0")
	failCreatesOn(t, s, "inventory_movements")

	_, err := s.AdjustStock(ctx, tea.ID, decimal.RequireFromString("5"), domain.MovementManualUpdate, time.Now())
	require.ErrorIs(t, err, store.ErrStorage)

	teaNow, err := s.GetIngredient(ctx, tea.ID)
	require.NoError(t, err)
	storetest.AssertDecimal(t, "10", teaNow.StockQuantity)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	product, _, milk := storetest.MilkTea(t, s, "1.5")

	// Milk covers exactly 10 single cups.
	var wg sync.WaitGroup
	errs := make(chan error, 25)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Sell(ctx, product.ID, 1, time.Now())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, store.ErrInsufficientStock)
	}
	assert.Equal(t, 10, succeeded)

	milkNow, err := s.GetIngredient(ctx, milk.ID)
	require.NoError(t, err)
	storetest.AssertDecimal(t, "0", milkNow.StockQuantity)
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	first, err := New(ctx, path)
	require.NoError(t, err)
	product, _, _ := storetest.MilkTea(t, first, "2.0")
	_, err = first.Sell(ctx, product.ID, 2, time.Now())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	lines, err := second.GetRecipe(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	recent, err := second.RecentSales(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	storetest.AssertDecimal(t, "25", recent[0].TotalPrice)
}
