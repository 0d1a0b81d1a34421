package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"nainai/backend/internal/domain"
)

func TestInventory(t *testing.T) {
	assert.Equal(t, EmptyInventory, Inventory(nil))

	text := Inventory([]domain.InventoryLine{
		{Ingredient: domain.Ingredient{Name: "Black Tea", StockQuantity: decimal.RequireFromString("9.5"), Unit: "kg"}},
		{Ingredient: domain.Ingredient{Name: "Milk", StockQuantity: decimal.RequireFromString("0.123"), Unit: "L"}, Low: true},
	})
	assert.Equal(t, "inventory:\n- Black Tea: 9.50 kg\n- Milk: 0.12 L (low stock!)", text)
}

func TestRanking(t *testing.T) {
	assert.Equal(t, EmptyRanking, Ranking(nil))

	text := Ranking([]domain.ProductRanking{
		{ProductName: "Milk Tea", TotalQuantity: 12, TotalRevenue: decimal.RequireFromString("150")},
		{ProductName: "Lemon Tea", TotalQuantity: 3, TotalRevenue: decimal.RequireFromString("28.5")},
	})
	assert.Equal(t, "product sales ranking:\n1. Milk Tea - sold: 12, revenue: 150.00\n2. Lemon Tea - sold: 3, revenue: 28.50", text)
}

func TestDailySummary(t *testing.T) {
	day := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	text := DailySummary(day, domain.SalesSummary{OrderCount: 4, TotalRevenue: decimal.RequireFromString("61")})
	assert.Equal(t, "daily summary (2026-03-14):\n- orders: 4\n- revenue: 61.00", text)
}

func TestRecent(t *testing.T) {
	assert.Equal(t, EmptyRecent, Recent(nil, time.UTC))

	text := Recent([]domain.SaleRecord{{
		SaleTime:     time.Date(2026, 3, 14, 1, 2, 3, 0, time.UTC),
		ProductName:  "Milk Tea",
		QuantitySold: 2,
		TotalPrice:   decimal.RequireFromString("25"),
	}}, time.FixedZone("UTC+8", 8*60*60))
	assert.Equal(t, "recent sales:\n- 2026-03-14 09:02:03 Milk Tea x2 = 25.00", text)
}
