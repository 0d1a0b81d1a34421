package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"nainai/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidRecipe     = errors.New("invalid recipe")
	ErrNoRecipe          = errors.New("no recipe")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStorage           = errors.New("storage error")
)

// InsufficientStockError names the first recipe ingredient that failed the stock check.
type InsufficientStockError struct {
	Ingredient string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %s", e.Ingredient)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StorageFault marks err as a persistence fault. Nil stays nil.
func StorageFault(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

type Repository interface {
	CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error)
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error)
	GetIngredientByName(ctx context.Context, name string) (*domain.Ingredient, error)
	// AdjustStock applies delta and appends one movement of the given kind as a single unit.
	AdjustStock(ctx context.Context, id int64, delta decimal.Decimal, kind domain.MovementKind, at time.Time) (*domain.Ingredient, error)
	ListMovements(ctx context.Context, ingredientID int64, limit int) ([]domain.InventoryMovement, error)

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByName(ctx context.Context, name string) (*domain.Product, error)
	AddProductAttribute(ctx context.Context, attr domain.ProductAttribute) (*domain.ProductAttribute, error)
	ListProductAttributes(ctx context.Context, productID int64) ([]domain.ProductAttribute, error)

	// SaveRecipe replaces the product's recipe with entries. Empty entries clear it.
	SaveRecipe(ctx context.Context, productID int64, entries []domain.RecipeEntry) error
	GetRecipe(ctx context.Context, productID int64) ([]domain.RecipeLine, error)

	// Sell checks every recipe ingredient, then deducts stock, logs sale_deduction
	// movements and records the sale in one serializable unit.
	Sell(ctx context.Context, productID int64, quantity int, at time.Time) (*domain.Sale, error)

	SalesSummary(ctx context.Context, from time.Time, to time.Time) (domain.SalesSummary, error)
	ProductRanking(ctx context.Context) ([]domain.ProductRanking, error)
	RecentSales(ctx context.Context, limit int) ([]domain.SaleRecord, error)
}

// ValidateRecipe rejects non-positive quantities and repeated ingredients.
func ValidateRecipe(entries []domain.RecipeEntry) error {
	seen := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.QuantityNeeded.IsPositive() {
			return ErrInvalidQuantity
		}
		if _, dup := seen[entry.IngredientID]; dup {
			return ErrInvalidRecipe
		}
		seen[entry.IngredientID] = struct{}{}
	}
	return nil
}
