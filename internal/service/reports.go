package service

import (
	"context"
	"time"

	"nainai/backend/internal/domain"
)

// TodaySummary counts sales whose timestamp falls on the current local calendar day.
func (s *Service) TodaySummary(ctx context.Context) domain.SalesSummary {
	from, to := s.dayBounds(s.now())
	summary, err := s.repo.SalesSummary(ctx, from, to)
	if err != nil {
		s.readFailed("today_summary", err)
		return domain.SalesSummary{}
	}
	return summary
}

func (s *Service) dayBounds(at time.Time) (time.Time, time.Time) {
	local := at.In(s.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

func (s *Service) ProductRanking(ctx context.Context) []domain.ProductRanking {
	ranking, err := s.repo.ProductRanking(ctx)
	if err != nil {
		s.readFailed("product_ranking", err)
		return []domain.ProductRanking{}
	}
	return ranking
}

func (s *Service) RecentSales(ctx context.Context, limit int) []domain.SaleRecord {
	records, err := s.repo.RecentSales(ctx, limit)
	if err != nil {
		s.readFailed("recent_sales", err)
		return []domain.SaleRecord{}
	}
	return records
}

func (s *Service) InventoryReport(ctx context.Context) []domain.InventoryLine {
	ingredients := s.ListIngredients(ctx)
	lines := make([]domain.InventoryLine, 0, len(ingredients))
	for _, ingredient := range ingredients {
		lines = append(lines, domain.InventoryLine{Ingredient: ingredient, Low: ingredient.LowStock()})
	}
	return lines
}

// Today is the current time in the report calendar's zone.
func (s *Service) Today() time.Time {
	return s.now().In(s.location)
}
