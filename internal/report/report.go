// Package report renders reporting results as plain text for the CLI and assistant tools.
package report

import (
	"fmt"
	"strings"
	"time"

	"nainai/backend/internal/domain"
)

const (
	EmptyInventory = "no ingredients in stock"
	EmptyRanking   = "no sales yet"
	EmptyRecent    = "no sales yet"
)

func InventoryLine(line domain.InventoryLine) string {
	text := fmt.Sprintf("%s: %s %s", line.Name, line.StockQuantity.StringFixed(2), line.Unit)
	if line.Low {
		text += " (low stock!)"
	}
	return text
}

func Inventory(lines []domain.InventoryLine) string {
	if len(lines) == 0 {
		return EmptyInventory
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, "inventory:")
	for _, line := range lines {
		out = append(out, "- "+InventoryLine(line))
	}
	return strings.Join(out, "\n")
}

func RankingLine(position int, r domain.ProductRanking) string {
	return fmt.Sprintf("%d. %s - sold: %d, revenue: %s", position, r.ProductName, r.TotalQuantity, r.TotalRevenue.StringFixed(2))
}

func Ranking(ranking []domain.ProductRanking) string {
	if len(ranking) == 0 {
		return EmptyRanking
	}
	out := make([]string, 0, len(ranking)+1)
	out = append(out, "product sales ranking:")
	for i, r := range ranking {
		out = append(out, RankingLine(i+1, r))
	}
	return strings.Join(out, "\n")
}

func DailySummary(day time.Time, summary domain.SalesSummary) string {
	return fmt.Sprintf("daily summary (%s):\n- orders: %d\n- revenue: %s",
		day.Format("2006-01-02"), summary.OrderCount, summary.TotalRevenue.StringFixed(2))
}

// Recent prints sale times in loc.
func Recent(records []domain.SaleRecord, loc *time.Location) string {
	if len(records) == 0 {
		return EmptyRecent
	}
	if loc == nil {
		loc = time.Local
	}
	out := make([]string, 0, len(records)+1)
	out = append(out, "recent sales:")
	for _, r := range records {
		out = append(out, fmt.Sprintf("- %s %s x%d = %s",
			r.SaleTime.In(loc).Format("2006-01-02 15:04:05"), r.ProductName, r.QuantitySold, r.TotalPrice.StringFixed(2)))
	}
	return strings.Join(out, "\n")
}
