package mcpserver

import (
	"context"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nainai/backend/internal/service"
	"nainai/backend/internal/store/memory"
	"nainai/backend/internal/store/storetest"
)

func newTestServer(t *testing.T) (*server.MCPServer, *memory.Store) {
	t.Helper()
	repo := memory.New()
	return New(service.New(repo, nil)), repo
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) (string, bool) {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %q not registered", name)

	var req mcplib.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestServerHasTools(t *testing.T) {
	s, _ := newTestServer(t)
	tools := s.ListTools()

	expected := []string{
		"place_order",
		"add_stock",
		"get_inventory_report",
		"get_sales_ranking_report",
		"get_daily_summary_report",
		"get_recent_sales",
		"recommend_drink",
	}
	for _, name := range expected {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expected))
}

func TestPlaceOrder(t *testing.T) {
	s, repo := newTestServer(t)
	storetest.MilkTea(t, repo, "1.0")

	text, isErr := call(t, s, "place_order", map[string]any{"product_name": "Milk Tea", "quantity": 10})
	assert.True(t, isErr)
	assert.Equal(t, "insufficient stock: Milk", text)

	text, isErr = call(t, s, "place_order", map[string]any{"product_name": "Milk Tea", "quantity": "2"})
	assert.False(t, isErr)
	assert.Equal(t, "sale completed, total: 25.00", text)

	text, isErr = call(t, s, "place_order", map[string]any{"product_name": "Milk Tea", "quantity": 0})
	assert.True(t, isErr)
	assert.Equal(t, "quantity must be a positive integer", text)

	_, isErr = call(t, s, "place_order", map[string]any{"quantity": 1})
	assert.True(t, isErr)
}

func TestPlaceOrderRefusesFractionalQuantity(t *testing.T) {
	s, repo := newTestServer(t)
	storetest.MilkTea(t, repo, "2.0")

	for _, quantity := range []any{2.5, "1.5", "two"} {
		text, isErr := call(t, s, "place_order", map[string]any{"product_name": "Milk Tea", "quantity": quantity})
		assert.True(t, isErr, "quantity %v", quantity)
		assert.Equal(t, "quantity must be a positive integer", text)
	}

	recent, err := repo.RecentSales(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recent)

	text, isErr := call(t, s, "place_order", map[string]any{"product_name": "Milk Tea", "quantity": 3.0})
	assert.False(t, isErr)
	assert.Equal(t, "sale completed, total: 37.50", text)
}

func TestAddStock(t *testing.T) {
	s, repo := newTestServer(t)
	storetest.MilkTea(t, repo, "1.0")

	text, isErr := call(t, s, "add_stock", map[string]any{"ingredient_name": "Milk", "quantity": 2.5})
	assert.False(t, isErr)
	assert.Equal(t, "stock updated: Milk now 3.50 L", text)

	text, isErr = call(t, s, "add_stock", map[string]any{"ingredient_name": "Cream", "quantity": 1})
	assert.True(t, isErr)
	assert.Equal(t, "ingredient not found", text)

	_, isErr = call(t, s, "add_stock", map[string]any{"ingredient_name": "Milk", "quantity": "lots"})
	assert.True(t, isErr)
}

func TestReports(t *testing.T) {
	s, repo := newTestServer(t)

	text, _ := call(t, s, "get_inventory_report", nil)
	assert.Equal(t, "no ingredients in stock", text)
	text, _ = call(t, s, "get_sales_ranking_report", nil)
	assert.Equal(t, "no sales yet", text)

	storetest.MilkTea(t, repo, "2.0")
	_, isErr := call(t, s, "place_order", map[string]any{"product_name": "Milk Tea", "quantity": 3})
	require.False(t, isErr)

	text, _ = call(t, s, "get_sales_ranking_report", nil)
	assert.Equal(t, "product sales ranking:\n1. Milk Tea - sold: 3, revenue: 37.50", text)

	text, _ = call(t, s, "get_daily_summary_report", nil)
	assert.Contains(t, text, "- orders: 1\n- revenue: 37.50")

	text, _ = call(t, s, "get_inventory_report", nil)
	assert.Contains(t, text, "- Milk: 1.55 L")

	text, _ = call(t, s, "get_recent_sales", map[string]any{"limit": 5})
	assert.Contains(t, text, "Milk Tea x3 = 37.50")
}

func TestRecommendDrink(t *testing.T) {
	s, _ := newTestServer(t)

	text, isErr := call(t, s, "recommend_drink", map[string]any{"preference": "fruity"})
	assert.False(t, isErr)
	assert.Equal(t, "no products available to recommend", text)

	_, isErr = call(t, s, "recommend_drink", map[string]any{"preference": "  "})
	assert.True(t, isErr)
}
