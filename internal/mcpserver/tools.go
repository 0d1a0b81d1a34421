package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"nainai/backend/internal/report"
	"nainai/backend/internal/service"
)

func registerTools(s *server.MCPServer, svc *service.Service) {
	s.AddTool(
		mcplib.NewTool("place_order",
			mcplib.WithDescription("Sell a drink by its exact menu name. Deducts every recipe ingredient and records the sale, or refuses without changing anything."),
			mcplib.WithString("product_name", mcplib.Required(), mcplib.Description("Exact product name, e.g. Ceylon Pearl Milk Tea")),
			mcplib.WithNumber("quantity", mcplib.Required(), mcplib.Description("Number of cups, a positive integer")),
		),
		handlePlaceOrder(svc),
	)

	s.AddTool(
		mcplib.NewTool("add_stock",
			mcplib.WithDescription("Add stock to an ingredient by name"),
			mcplib.WithString("ingredient_name", mcplib.Required(), mcplib.Description("Exact ingredient name")),
			mcplib.WithNumber("quantity", mcplib.Required(), mcplib.Description("Amount to add in the ingredient's unit")),
		),
		handleAddStock(svc),
	)

	s.AddTool(
		mcplib.NewTool("get_inventory_report",
			mcplib.WithDescription("Current stock of every ingredient, flagging low stock"),
		),
		handleInventoryReport(svc),
	)

	s.AddTool(
		mcplib.NewTool("get_sales_ranking_report",
			mcplib.WithDescription("Products ranked by cups sold with revenue"),
		),
		handleRankingReport(svc),
	)

	s.AddTool(
		mcplib.NewTool("get_daily_summary_report",
			mcplib.WithDescription("Order count and revenue for today"),
		),
		handleDailySummary(svc),
	)

	s.AddTool(
		mcplib.NewTool("get_recent_sales",
			mcplib.WithDescription("Most recent sales, newest first"),
			mcplib.WithNumber("limit", mcplib.Description("How many sales to list (default 10)")),
		),
		handleRecentSales(svc),
	)

	s.AddTool(
		mcplib.NewTool("recommend_drink",
			mcplib.WithDescription("Suggest the menu item that best matches a taste preference"),
			mcplib.WithString("preference", mcplib.Required(), mcplib.Description("Free text, e.g. something fruity and sour")),
		),
		handleRecommend(svc),
	)
}

func handlePlaceOrder(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, err := request.RequireString("product_name")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		quantity, err := wholeArg(request.GetArguments()["quantity"])
		if err != nil {
			return errorResult("quantity must be a positive integer"), nil
		}

		res, err := svc.SellByName(ctx, name, quantity)
		if err != nil {
			return errorResult(res.Message), nil
		}
		return textResult(res.Message), nil
	}
}

func handleAddStock(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, err := request.RequireString("ingredient_name")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		quantity, err := decimalArg(request.GetArguments()["quantity"])
		if err != nil {
			return errorResult("quantity must be positive"), nil
		}

		res, err := svc.AddStockByName(ctx, name, quantity)
		if err != nil {
			return errorResult(res.Message), nil
		}
		return textResult(fmt.Sprintf("%s: %s now %s %s",
			res.Message, res.Ingredient.Name, res.Ingredient.StockQuantity.StringFixed(2), res.Ingredient.Unit)), nil
	}
}

func handleInventoryReport(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return textResult(report.Inventory(svc.InventoryReport(ctx))), nil
	}
}

func handleRankingReport(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return textResult(report.Ranking(svc.ProductRanking(ctx))), nil
	}
}

func handleDailySummary(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return textResult(report.DailySummary(svc.Today(), svc.TodaySummary(ctx))), nil
	}
}

func handleRecentSales(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		limit := 10
		if raw, ok := request.GetArguments()["limit"]; ok {
			if parsed, err := cast.ToIntE(raw); err == nil && parsed > 0 {
				limit = min(parsed, 100)
			}
		}
		return textResult(report.Recent(svc.RecentSales(ctx, limit), svc.Location())), nil
	}
}

func handleRecommend(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		preference, err := request.RequireString("preference")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		resp, err := svc.Recommend(ctx, preference)
		if err != nil {
			return errorResult(resp.Message), nil
		}
		if resp.Recommendation == nil {
			return textResult(resp.Message), nil
		}
		return jsonResult(resp)
	}
}

// decimalArg accepts JSON numbers and numeric strings.
func decimalArg(raw any) (decimal.Decimal, error) {
	text, err := cast.ToStringE(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(text)
}

// wholeArg accepts a whole number, refusing fractions instead of truncating them.
func wholeArg(raw any) (int, error) {
	value, err := decimalArg(raw)
	if err != nil {
		return 0, err
	}
	if !value.IsInteger() || !value.Abs().LessThanOrEqual(decimal.NewFromInt(math.MaxInt32)) {
		return 0, fmt.Errorf("%s is not a whole number", value)
	}
	return int(value.IntPart()), nil
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult marks a refused operation. The assistant sees the message, the
// protocol call itself still succeeds.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
