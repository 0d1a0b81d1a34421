package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
)

// Sell runs the sale transaction for one product. Business refusals come back
// with Success false and a message. The store guarantees nothing was written.
func (s *Service) Sell(ctx context.Context, productID int64, quantity int) (domain.SaleResult, error) {
	if quantity < 1 {
		return saleRefused(), store.ErrInvalidQuantity
	}

	sale, err := s.repo.Sell(ctx, productID, quantity, s.now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuantity) {
			return saleRefused(), err
		}
		return domain.SaleResult{Result: s.failure("sell", err, "product", "")}, err
	}

	s.log.Info("sale completed",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.Int("quantity", sale.QuantitySold),
		zap.String("total", sale.TotalPrice.StringFixed(2)),
	)
	return domain.SaleResult{
		Result: ok(fmt.Sprintf("sale completed, total: %s", sale.TotalPrice.StringFixed(2))),
		Sale:   sale,
	}, nil
}

// SellByName resolves the product by its exact name, then sells it.
func (s *Service) SellByName(ctx context.Context, name string, quantity int) (domain.SaleResult, error) {
	if quantity < 1 {
		return saleRefused(), store.ErrInvalidQuantity
	}

	product, err := s.repo.GetProductByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return domain.SaleResult{Result: s.failure("sell_by_name", err, "product", name)}, err
	}
	return s.Sell(ctx, product.ID, quantity)
}

func saleRefused() domain.SaleResult {
	return domain.SaleResult{Result: domain.Result{Message: "quantity must be a positive integer"}}
}
