package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
)

func (s *Service) AddIngredient(ctx context.Context, req domain.IngredientCreateRequest) (domain.IngredientResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" {
		err := invalid("ingredient name is required")
		return domain.IngredientResult{Result: s.failure("add_ingredient", err, "ingredient", req.Name)}, err
	}
	if req.StockQuantity.IsNegative() || req.LowStockThreshold.IsNegative() {
		err := invalid("stock and threshold must not be negative")
		return domain.IngredientResult{Result: s.failure("add_ingredient", err, "ingredient", req.Name)}, err
	}

	created, err := s.repo.CreateIngredient(ctx, domain.Ingredient{
		Name:              req.Name,
		StockQuantity:     req.StockQuantity,
		Unit:              req.Unit,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		return domain.IngredientResult{Result: s.failure("add_ingredient", err, "ingredient", req.Name)}, err
	}

	return domain.IngredientResult{
		Result:     ok(fmt.Sprintf("ingredient '%s' added", created.Name)),
		Ingredient: created,
	}, nil
}

func (s *Service) ListIngredients(ctx context.Context) []domain.Ingredient {
	items, err := s.repo.ListIngredients(ctx)
	if err != nil {
		s.readFailed("list_ingredients", err)
		return []domain.Ingredient{}
	}
	return items
}

func (s *Service) GetIngredient(ctx context.Context, id int64) (domain.Ingredient, bool) {
	ingredient, err := s.repo.GetIngredient(ctx, id)
	if err != nil {
		s.readFailed("get_ingredient", err)
		return domain.Ingredient{}, false
	}
	return *ingredient, true
}

func (s *Service) FindIngredientByName(ctx context.Context, name string) (domain.Ingredient, bool) {
	ingredient, err := s.repo.GetIngredientByName(ctx, strings.TrimSpace(name))
	if err != nil {
		s.readFailed("find_ingredient", err)
		return domain.Ingredient{}, false
	}
	return *ingredient, true
}

// AdjustStock applies a signed correction and logs it as manual_update.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta decimal.Decimal) (domain.IngredientResult, error) {
	return s.applyMovement(ctx, "adjust_stock", id, delta, domain.MovementManualUpdate)
}

func (s *Service) RecordPurchase(ctx context.Context, id int64, quantity decimal.Decimal) (domain.IngredientResult, error) {
	if err := positive(quantity); err != nil {
		return domain.IngredientResult{Result: s.failure("record_purchase", err, "ingredient", "")}, err
	}
	return s.applyMovement(ctx, "record_purchase", id, quantity, domain.MovementPurchase)
}

// RecordSpoilage writes stock off. It may take stock below zero.
func (s *Service) RecordSpoilage(ctx context.Context, id int64, quantity decimal.Decimal) (domain.IngredientResult, error) {
	if err := positive(quantity); err != nil {
		return domain.IngredientResult{Result: s.failure("record_spoilage", err, "ingredient", "")}, err
	}
	return s.applyMovement(ctx, "record_spoilage", id, quantity.Neg(), domain.MovementSpoilage)
}

// AddStockByName tops up an ingredient looked up by name.
func (s *Service) AddStockByName(ctx context.Context, name string, quantity decimal.Decimal) (domain.IngredientResult, error) {
	if err := positive(quantity); err != nil {
		return domain.IngredientResult{Result: s.failure("add_stock", err, "ingredient", name)}, err
	}
	ingredient, err := s.repo.GetIngredientByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return domain.IngredientResult{Result: s.failure("add_stock", err, "ingredient", name)}, err
	}
	return s.applyMovement(ctx, "add_stock", ingredient.ID, quantity, domain.MovementManualUpdate)
}

func (s *Service) applyMovement(ctx context.Context, op string, id int64, delta decimal.Decimal, kind domain.MovementKind) (domain.IngredientResult, error) {
	updated, err := s.repo.AdjustStock(ctx, id, delta, kind, s.now().UTC())
	if err != nil {
		return domain.IngredientResult{Result: s.failure(op, err, "ingredient", "")}, err
	}

	s.log.Debug("stock moved",
		zap.String("ingredient", updated.Name),
		zap.String("kind", string(kind)),
		zap.String("delta", delta.String()),
		zap.String("stock", updated.StockQuantity.String()),
	)
	return domain.IngredientResult{Result: ok("stock updated"), Ingredient: updated}, nil
}

// Movements returns the ingredient's movements, newest first. limit <= 0 returns all.
func (s *Service) Movements(ctx context.Context, id int64, limit int) []domain.InventoryMovement {
	items, err := s.repo.ListMovements(ctx, id, limit)
	if err != nil {
		s.readFailed("movements", err)
		return []domain.InventoryMovement{}
	}
	return items
}

func (s *Service) LowStock(ctx context.Context) []domain.Ingredient {
	low := make([]domain.Ingredient, 0, 8)
	for _, ingredient := range s.ListIngredients(ctx) {
		if ingredient.LowStock() {
			low = append(low, ingredient)
		}
	}
	return low
}

func positive(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return store.ErrInvalidQuantity
	}
	return nil
}
