package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementKind string

const (
	MovementPurchase      MovementKind = "purchase"
	MovementSaleDeduction MovementKind = "sale_deduction"
	MovementManualUpdate  MovementKind = "manual_update"
	MovementSpoilage      MovementKind = "spoilage"
)

func (k MovementKind) Valid() bool {
	switch k {
	case MovementPurchase, MovementSaleDeduction, MovementManualUpdate, MovementSpoilage:
		return true
	}
	return false
}

type Ingredient struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// LowStock reports whether stock sits strictly below the threshold. Display only.
func (i Ingredient) LowStock() bool {
	return i.StockQuantity.LessThan(i.LowStockThreshold)
}

type InventoryMovement struct {
	ID             int64           `json:"id"`
	IngredientID   int64           `json:"ingredient_id"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	Kind           MovementKind    `json:"movement_type"`
	MovementTime   time.Time       `json:"movement_time"`
}

type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type ProductAttribute struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"attribute_name"`
	Value     string `json:"attribute_value"`
}

// RecipeEntry is one (ingredient, quantity per unit sold) pair as written by saveRecipe.
type RecipeEntry struct {
	IngredientID   int64           `json:"ingredient_id" validate:"required,gt=0"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
}

// RecipeLine is a recipe entry joined with its ingredient, in recipe order.
type RecipeLine struct {
	IngredientID   int64           `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
	Unit           string          `json:"unit"`
}

type ProductRecipe struct {
	Product Product      `json:"product"`
	Lines   []RecipeLine `json:"lines"`
}

type Sale struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	QuantitySold int             `json:"quantity_sold"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	SaleTime     time.Time       `json:"sale_time"`
}

type SaleRecord struct {
	SaleTime     time.Time       `json:"sale_time"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type SalesSummary struct {
	OrderCount   int             `json:"order_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type ProductRanking struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type IngredientResult struct {
	Result
	Ingredient *Ingredient `json:"ingredient,omitempty"`
}

type ProductResult struct {
	Result
	Product *Product `json:"product,omitempty"`
}

type AttributeResult struct {
	Result
	Attribute *ProductAttribute `json:"attribute,omitempty"`
}

type SaleResult struct {
	Result
	Sale *Sale `json:"sale,omitempty"`
}

type IngredientCreateRequest struct {
	Name              string          `json:"name" validate:"required"`
	StockQuantity     decimal.Decimal `json:"stock_quantity" validate:"gte=0"`
	Unit              string          `json:"unit" validate:"required"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold" validate:"gte=0"`
}

type StockAdjustRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

type StockQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required,gt=0"`
}

type ProductCreateRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"required,gt=0"`
}

type AttributeCreateRequest struct {
	Name  string `json:"attribute_name" validate:"required"`
	Value string `json:"attribute_value" validate:"required"`
}

type RecipeSaveRequest struct {
	Entries []RecipeEntry `json:"entries" validate:"dive"`
}

type SaleRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

type OrderRequest struct {
	ProductName string `json:"product_name" validate:"required"`
	Quantity    int    `json:"quantity"`
}

type RecommendationRequest struct {
	Preference string `json:"preference" validate:"required"`
}

type Recommendation struct {
	ProductID         int64           `json:"product_id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	MatchedAttributes []string        `json:"matched_attributes"`
	Confidence        float64         `json:"confidence"`
}

type RecommendationResponse struct {
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Message        string          `json:"message"`
	LatencyMS      int64           `json:"latency_ms"`
}

// ProductProfile is the read-only view the recommender ranks over.
type ProductProfile struct {
	Product    Product            `json:"product"`
	Attributes []ProductAttribute `json:"attributes"`
}

type InventoryLine struct {
	Ingredient
	Low bool `json:"low_stock"`
}
