// Package sqlite is the file-backed repository, built on gorm with the CGO-free SQLite driver.
//
// The pool is capped at one connection, so every transaction in the process runs
// alone. Across processes SQLite's database lock keeps a stock check and the
// writes that follow it serializable: a competing writer waits (busy_timeout) or
// the transaction fails and rolls back.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
)

type Store struct {
	db *gorm.DB
}

func New(ctx context.Context, path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&ingredientRow{},
		&movementRow{},
		&productRow{},
		&attributeRow{},
		&recipeRow{},
		&saleRow{},
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	row := ingredientRow{
		Name:              ingredient.Name,
		StockQuantity:     ingredient.StockQuantity,
		Unit:              ingredient.Unit,
		LowStockThreshold: ingredient.LowStockThreshold,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, classify(err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	var rows []ingredientRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, store.StorageFault(err)
	}
	items := make([]domain.Ingredient, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (s *Store) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var row ingredientRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, classify(err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) GetIngredientByName(ctx context.Context, name string) (*domain.Ingredient, error) {
	var row ingredientRow
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		return nil, classify(err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) AdjustStock(ctx context.Context, id int64, delta decimal.Decimal, kind domain.MovementKind, at time.Time) (*domain.Ingredient, error) {
	var row ingredientRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		row.StockQuantity = row.StockQuantity.Add(delta)
		if err := tx.Model(&ingredientRow{}).Where("id = ?", id).Update("stock_quantity", row.StockQuantity).Error; err != nil {
			return err
		}
		return tx.Create(&movementRow{
			IngredientID:   id,
			QuantityChange: delta,
			MovementType:   string(kind),
			MovementTime:   at.UTC(),
		}).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) ListMovements(ctx context.Context, ingredientID int64, limit int) ([]domain.InventoryMovement, error) {
	query := s.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("movement_time DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []movementRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, store.StorageFault(err)
	}
	items := make([]domain.InventoryMovement, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.InventoryMovement{
			ID:             row.ID,
			IngredientID:   row.IngredientID,
			QuantityChange: row.QuantityChange,
			Kind:           domain.MovementKind(row.MovementType),
			MovementTime:   row.MovementTime.UTC(),
		})
	}
	return items, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	row := productRow{Name: product.Name, Price: product.Price}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, classify(err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, store.StorageFault(err)
	}
	items := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var row productRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, classify(err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	var row productRow
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		return nil, classify(err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) AddProductAttribute(ctx context.Context, attr domain.ProductAttribute) (*domain.ProductAttribute, error) {
	row := attributeRow{ProductID: attr.ProductID, AttributeName: attr.Name, AttributeValue: attr.Value}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&productRow{}, attr.ProductID).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	attr.ID = row.ID
	return &attr, nil
}

func (s *Store) ListProductAttributes(ctx context.Context, productID int64) ([]domain.ProductAttribute, error) {
	var rows []attributeRow
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&rows).Error; err != nil {
		return nil, store.StorageFault(err)
	}
	items := make([]domain.ProductAttribute, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.ProductAttribute{
			ID:        row.ID,
			ProductID: row.ProductID,
			Name:      row.AttributeName,
			Value:     row.AttributeValue,
		})
	}
	return items, nil
}

func (s *Store) SaveRecipe(ctx context.Context, productID int64, entries []domain.RecipeEntry) error {
	if err := store.ValidateRecipe(entries); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&productRow{}, productID).Error; err != nil {
			return err
		}
		if len(entries) > 0 {
			ids := make([]int64, 0, len(entries))
			for _, entry := range entries {
				ids = append(ids, entry.IngredientID)
			}
			var found int64
			if err := tx.Model(&ingredientRow{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
				return err
			}
			if int(found) != len(ids) {
				return store.ErrNotFound
			}
		}

		if err := tx.Where("product_id = ?", productID).Delete(&recipeRow{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]recipeRow, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, recipeRow{
				ProductID:      productID,
				IngredientID:   entry.IngredientID,
				QuantityNeeded: entry.QuantityNeeded,
			})
		}
		return tx.Create(&rows).Error
	})
	return classify(err)
}

func (s *Store) GetRecipe(ctx context.Context, productID int64) ([]domain.RecipeLine, error) {
	lines, err := recipeLines(s.db.WithContext(ctx), productID)
	if err != nil {
		return nil, store.StorageFault(err)
	}
	return lines, nil
}

func recipeLines(tx *gorm.DB, productID int64) ([]domain.RecipeLine, error) {
	var rows []struct {
		IngredientID   int64
		Name           string
		QuantityNeeded decimal.Decimal
		Unit           string
	}
	err := tx.Table("recipes").
		Select("recipes.ingredient_id, ingredients.name, recipes.quantity_needed, ingredients.unit").
		Joins("JOIN ingredients ON ingredients.id = recipes.ingredient_id").
		Where("recipes.product_id = ?", productID).
		Order("recipes.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	lines := make([]domain.RecipeLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.RecipeLine{
			IngredientID:   row.IngredientID,
			IngredientName: row.Name,
			QuantityNeeded: row.QuantityNeeded,
			Unit:           row.Unit,
		})
	}
	return lines, nil
}

func (s *Store) Sell(ctx context.Context, productID int64, quantity int, at time.Time) (*domain.Sale, error) {
	if quantity < 1 {
		return nil, store.ErrInvalidQuantity
	}

	at = at.UTC()
	qty := decimal.NewFromInt(int64(quantity))
	var sale saleRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product productRow
		if err := tx.First(&product, productID).Error; err != nil {
			return err
		}

		lines, err := recipeLines(tx, productID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return store.ErrNoRecipe
		}

		ids := make([]int64, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.IngredientID)
		}
		var stocks []ingredientRow
		if err := tx.Where("id IN ?", ids).Find(&stocks).Error; err != nil {
			return err
		}
		byID := make(map[int64]ingredientRow, len(stocks))
		for _, row := range stocks {
			byID[row.ID] = row
		}

		needed := make([]decimal.Decimal, len(lines))
		for i, line := range lines {
			needed[i] = line.QuantityNeeded.Mul(qty)
			if byID[line.IngredientID].StockQuantity.LessThan(needed[i]) {
				return &store.InsufficientStockError{Ingredient: line.IngredientName}
			}
		}

		for i, line := range lines {
			remaining := byID[line.IngredientID].StockQuantity.Sub(needed[i])
			if err := tx.Model(&ingredientRow{}).Where("id = ?", line.IngredientID).Update("stock_quantity", remaining).Error; err != nil {
				return err
			}
			if err := tx.Create(&movementRow{
				IngredientID:   line.IngredientID,
				QuantityChange: needed[i].Neg(),
				MovementType:   string(domain.MovementSaleDeduction),
				MovementTime:   at,
			}).Error; err != nil {
				return err
			}
		}

		sale = saleRow{
			ProductID:    productID,
			QuantitySold: quantity,
			SaleTime:     at,
			TotalPrice:   product.Price.Mul(qty),
		}
		return tx.Create(&sale).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	out := sale.toDomain()
	return &out, nil
}

func (s *Store) SalesSummary(ctx context.Context, from time.Time, to time.Time) (domain.SalesSummary, error) {
	var rows []saleRow
	err := s.db.WithContext(ctx).
		Where("sale_time >= ? AND sale_time < ?", from.UTC(), to.UTC()).
		Find(&rows).Error
	if err != nil {
		return domain.SalesSummary{}, store.StorageFault(err)
	}
	summary := domain.SalesSummary{OrderCount: len(rows), TotalRevenue: decimal.Zero}
	for _, row := range rows {
		summary.TotalRevenue = summary.TotalRevenue.Add(row.TotalPrice)
	}
	return summary, nil
}

// ProductRanking aggregates in sale id order, so tied products keep first-sale order.
func (s *Store) ProductRanking(ctx context.Context) ([]domain.ProductRanking, error) {
	var rows []saleJoin
	if err := s.salesJoined(ctx).Order("sales.id").Scan(&rows).Error; err != nil {
		return nil, store.StorageFault(err)
	}

	index := make(map[string]int)
	ranking := make([]domain.ProductRanking, 0, 16)
	for _, row := range rows {
		pos, ok := index[row.Name]
		if !ok {
			pos = len(ranking)
			index[row.Name] = pos
			ranking = append(ranking, domain.ProductRanking{ProductName: row.Name, TotalRevenue: decimal.Zero})
		}
		ranking[pos].TotalQuantity += row.QuantitySold
		ranking[pos].TotalRevenue = ranking[pos].TotalRevenue.Add(row.TotalPrice)
	}
	sortRanking(ranking)
	return ranking, nil
}

func (s *Store) RecentSales(ctx context.Context, limit int) ([]domain.SaleRecord, error) {
	query := s.salesJoined(ctx).Order("sales.sale_time DESC, sales.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []saleJoin
	if err := query.Scan(&rows).Error; err != nil {
		return nil, store.StorageFault(err)
	}
	records := make([]domain.SaleRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.SaleRecord{
			SaleTime:     row.SaleTime.UTC(),
			ProductName:  row.Name,
			QuantitySold: row.QuantitySold,
			TotalPrice:   row.TotalPrice,
		})
	}
	return records, nil
}

func sortRanking(ranking []domain.ProductRanking) {
	slices.SortStableFunc(ranking, func(a, b domain.ProductRanking) int {
		return b.TotalQuantity - a.TotalQuantity
	})
}

func (s *Store) salesJoined(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("sales").
		Select("products.name, sales.quantity_sold, sales.total_price, sales.sale_time").
		Joins("JOIN products ON products.id = sales.product_id")
}

// classify keeps business errors and maps everything else onto the store taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return store.ErrDuplicateName
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrNoRecipe),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrInvalidQuantity),
		errors.Is(err, store.ErrInvalidRecipe):
		return err
	}
	return store.StorageFault(err)
}
