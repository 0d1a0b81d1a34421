package sqlite

import (
	"time"

	"github.com/shopspring/decimal"

	"nainai/backend/internal/domain"
)

// Decimal columns are stored as text so quantities round-trip exactly.

type ingredientRow struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	Name              string          `gorm:"uniqueIndex;not null"`
	StockQuantity     decimal.Decimal `gorm:"type:text;not null"`
	Unit              string          `gorm:"not null;default:''"`
	LowStockThreshold decimal.Decimal `gorm:"type:text;not null"`
}

func (ingredientRow) TableName() string { return "ingredients" }

func (r ingredientRow) toDomain() domain.Ingredient {
	return domain.Ingredient{
		ID:                r.ID,
		Name:              r.Name,
		StockQuantity:     r.StockQuantity,
		Unit:              r.Unit,
		LowStockThreshold: r.LowStockThreshold,
	}
}

type movementRow struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	IngredientID   int64           `gorm:"index;not null"`
	QuantityChange decimal.Decimal `gorm:"type:text;not null"`
	MovementType   string          `gorm:"not null"`
	MovementTime   time.Time       `gorm:"index;not null"`
}

func (movementRow) TableName() string { return "inventory_movements" }

type productRow struct {
	ID    int64           `gorm:"primaryKey;autoIncrement"`
	Name  string          `gorm:"uniqueIndex;not null"`
	Price decimal.Decimal `gorm:"type:text;not null"`
}

func (productRow) TableName() string { return "products" }

func (r productRow) toDomain() domain.Product {
	return domain.Product{ID: r.ID, Name: r.Name, Price: r.Price}
}

type attributeRow struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	ProductID      int64  `gorm:"index;not null"`
	AttributeName  string `gorm:"not null"`
	AttributeValue string `gorm:"not null"`
}

func (attributeRow) TableName() string { return "product_attributes" }

type recipeRow struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	ProductID      int64           `gorm:"index;not null"`
	IngredientID   int64           `gorm:"not null"`
	QuantityNeeded decimal.Decimal `gorm:"type:text;not null"`
}

func (recipeRow) TableName() string { return "recipes" }

type saleRow struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	ProductID    int64           `gorm:"index;not null"`
	QuantitySold int             `gorm:"not null"`
	SaleTime     time.Time       `gorm:"index;not null"`
	TotalPrice   decimal.Decimal `gorm:"type:text;not null"`
}

func (saleRow) TableName() string { return "sales" }

func (r saleRow) toDomain() domain.Sale {
	return domain.Sale{
		ID:           r.ID,
		ProductID:    r.ProductID,
		QuantitySold: r.QuantitySold,
		TotalPrice:   r.TotalPrice,
		SaleTime:     r.SaleTime.UTC(),
	}
}

// saleJoin is a sale row joined with its product name.
type saleJoin struct {
	Name         string
	QuantitySold int
	TotalPrice   decimal.Decimal
	SaleTime     time.Time
}
