package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/seed"
	"nainai/backend/internal/store"
)

// Write steps that can be made to fail with FailOn.
const (
	OpUpdateStock    = "update_stock"
	OpInsertMovement = "insert_movement"
	OpInsertSale     = "insert_sale"
	OpSaveRecipe     = "save_recipe"
)

type Store struct {
	mu sync.RWMutex

	nextID map[string]int64

	ingredients      map[int64]domain.Ingredient
	ingredientByName map[string]int64
	movements        []domain.InventoryMovement

	products      map[int64]domain.Product
	productByName map[string]int64
	attributes    []domain.ProductAttribute
	recipes       map[int64][]domain.RecipeEntry

	sales []domain.Sale

	faults map[string]error
}

func New() *Store {
	return &Store{
		nextID:           map[string]int64{},
		ingredients:      map[int64]domain.Ingredient{},
		ingredientByName: map[string]int64{},
		products:         map[int64]domain.Product{},
		productByName:    map[string]int64{},
		recipes:          map[int64][]domain.RecipeEntry{},
		faults:           map[string]error{},
	}
}

// NewSeeded returns a store holding the demo catalog.
func NewSeeded() *Store {
	s := New()
	if err := seed.Apply(context.Background(), s); err != nil {
		zap.L().Named("memory-store").Warn("seeding demo catalog failed", zap.Error(err))
	}
	return s
}

// FailOn makes every later write step op fail with err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		return store.StorageFault(err)
	}
	return nil
}

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *Store) CreateIngredient(_ context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ingredientByName[ingredient.Name]; exists {
		return nil, store.ErrDuplicateName
	}
	ingredient.ID = s.id("ingredients")
	s.ingredients[ingredient.ID] = ingredient
	s.ingredientByName[ingredient.Name] = ingredient.ID

	out := ingredient
	return &out, nil
}

func (s *Store) ListIngredients(_ context.Context) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Ingredient, 0, len(s.ingredients))
	for _, ingredient := range s.ingredients {
		items = append(items, ingredient)
	}
	slices.SortFunc(items, func(a, b domain.Ingredient) int {
		return cmpString(a.Name, b.Name)
	})
	return items, nil
}

func (s *Store) GetIngredient(_ context.Context, id int64) (*domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ingredient, ok := s.ingredients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ingredient, nil
}

func (s *Store) GetIngredientByName(_ context.Context, name string) (*domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ingredientByName[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	ingredient := s.ingredients[id]
	return &ingredient, nil
}

func (s *Store) AdjustStock(_ context.Context, id int64, delta decimal.Decimal, kind domain.MovementKind, at time.Time) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ingredient, ok := s.ingredients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := s.fault(OpUpdateStock); err != nil {
		return nil, err
	}
	if err := s.fault(OpInsertMovement); err != nil {
		return nil, err
	}

	ingredient.StockQuantity = ingredient.StockQuantity.Add(delta)
	s.ingredients[id] = ingredient
	s.movements = append(s.movements, domain.InventoryMovement{
		ID:             s.id("inventory_movements"),
		IngredientID:   id,
		QuantityChange: delta,
		Kind:           kind,
		MovementTime:   at.UTC(),
	})

	out := ingredient
	return &out, nil
}

func (s *Store) ListMovements(_ context.Context, ingredientID int64, limit int) ([]domain.InventoryMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryMovement, 0, 16)
	for i := len(s.movements) - 1; i >= 0; i-- {
		if s.movements[i].IngredientID != ingredientID {
			continue
		}
		items = append(items, s.movements[i])
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.productByName[product.Name]; exists {
		return nil, store.ErrDuplicateName
	}
	product.ID = s.id("products")
	s.products[product.ID] = product
	s.productByName[product.Name] = product.ID

	out := product
	return &out, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		items = append(items, product)
	}
	slices.SortFunc(items, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return items, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *Store) GetProductByName(_ context.Context, name string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.productByName[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	product := s.products[id]
	return &product, nil
}

func (s *Store) AddProductAttribute(_ context.Context, attr domain.ProductAttribute) (*domain.ProductAttribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[attr.ProductID]; !ok {
		return nil, store.ErrNotFound
	}
	attr.ID = s.id("product_attributes")
	s.attributes = append(s.attributes, attr)

	out := attr
	return &out, nil
}

func (s *Store) ListProductAttributes(_ context.Context, productID int64) ([]domain.ProductAttribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.ProductAttribute, 0, 4)
	for _, attr := range s.attributes {
		if attr.ProductID == productID {
			items = append(items, attr)
		}
	}
	return items, nil
}

func (s *Store) SaveRecipe(_ context.Context, productID int64, entries []domain.RecipeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return store.ErrNotFound
	}
	if err := store.ValidateRecipe(entries); err != nil {
		return err
	}
	for _, entry := range entries {
		if _, ok := s.ingredients[entry.IngredientID]; !ok {
			return store.ErrNotFound
		}
	}
	if err := s.fault(OpSaveRecipe); err != nil {
		return err
	}

	if len(entries) == 0 {
		delete(s.recipes, productID)
		return nil
	}
	s.recipes[productID] = slices.Clone(entries)
	return nil
}

func (s *Store) GetRecipe(_ context.Context, productID int64) ([]domain.RecipeLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recipeLines(productID), nil
}

func (s *Store) recipeLines(productID int64) []domain.RecipeLine {
	entries := s.recipes[productID]
	lines := make([]domain.RecipeLine, 0, len(entries))
	for _, entry := range entries {
		ingredient := s.ingredients[entry.IngredientID]
		lines = append(lines, domain.RecipeLine{
			IngredientID:   entry.IngredientID,
			IngredientName: ingredient.Name,
			QuantityNeeded: entry.QuantityNeeded,
			Unit:           ingredient.Unit,
		})
	}
	return lines
}

// Sell holds the write lock from the stock check through the last write, and
// stages every change before applying any of them.
func (s *Store) Sell(_ context.Context, productID int64, quantity int, at time.Time) (*domain.Sale, error) {
	if quantity < 1 {
		return nil, store.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	entries := s.recipes[productID]
	if len(entries) == 0 {
		return nil, store.ErrNoRecipe
	}

	qty := decimal.NewFromInt(int64(quantity))
	needed := make([]decimal.Decimal, len(entries))
	for i, entry := range entries {
		needed[i] = entry.QuantityNeeded.Mul(qty)
		ingredient := s.ingredients[entry.IngredientID]
		if ingredient.StockQuantity.LessThan(needed[i]) {
			return nil, &store.InsufficientStockError{Ingredient: ingredient.Name}
		}
	}

	at = at.UTC()
	stocks := make(map[int64]domain.Ingredient, len(entries))
	movements := make([]domain.InventoryMovement, 0, len(entries))
	for i, entry := range entries {
		if err := s.fault(OpUpdateStock); err != nil {
			return nil, err
		}
		ingredient := s.ingredients[entry.IngredientID]
		ingredient.StockQuantity = ingredient.StockQuantity.Sub(needed[i])
		stocks[ingredient.ID] = ingredient

		if err := s.fault(OpInsertMovement); err != nil {
			return nil, err
		}
		movements = append(movements, domain.InventoryMovement{
			IngredientID:   entry.IngredientID,
			QuantityChange: needed[i].Neg(),
			Kind:           domain.MovementSaleDeduction,
			MovementTime:   at,
		})
	}
	if err := s.fault(OpInsertSale); err != nil {
		return nil, err
	}

	for id, ingredient := range stocks {
		s.ingredients[id] = ingredient
	}
	for _, movement := range movements {
		movement.ID = s.id("inventory_movements")
		s.movements = append(s.movements, movement)
	}
	sale := domain.Sale{
		ID:           s.id("sales"),
		ProductID:    productID,
		QuantitySold: quantity,
		TotalPrice:   product.Price.Mul(qty),
		SaleTime:     at,
	}
	s.sales = append(s.sales, sale)

	out := sale
	return &out, nil
}

func (s *Store) SalesSummary(_ context.Context, from time.Time, to time.Time) (domain.SalesSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.SalesSummary{TotalRevenue: decimal.Zero}
	for _, sale := range s.sales {
		if sale.SaleTime.Before(from) || !sale.SaleTime.Before(to) {
			continue
		}
		summary.OrderCount++
		summary.TotalRevenue = summary.TotalRevenue.Add(sale.TotalPrice)
	}
	return summary, nil
}

// ProductRanking groups by product name in first-sale order; ties keep that order.
func (s *Store) ProductRanking(_ context.Context) ([]domain.ProductRanking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := make(map[string]int)
	ranking := make([]domain.ProductRanking, 0, len(s.products))
	for _, sale := range s.sales {
		name := s.products[sale.ProductID].Name
		pos, ok := index[name]
		if !ok {
			pos = len(ranking)
			index[name] = pos
			ranking = append(ranking, domain.ProductRanking{ProductName: name, TotalRevenue: decimal.Zero})
		}
		ranking[pos].TotalQuantity += sale.QuantitySold
		ranking[pos].TotalRevenue = ranking[pos].TotalRevenue.Add(sale.TotalPrice)
	}
	slices.SortStableFunc(ranking, func(a, b domain.ProductRanking) int {
		return b.TotalQuantity - a.TotalQuantity
	})
	return ranking, nil
}

func (s *Store) RecentSales(_ context.Context, limit int) ([]domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.SaleRecord, 0, len(s.sales))
	for i := len(s.sales) - 1; i >= 0; i-- {
		sale := s.sales[i]
		records = append(records, domain.SaleRecord{
			SaleTime:     sale.SaleTime,
			ProductName:  s.products[sale.ProductID].Name,
			QuantitySold: sale.QuantitySold,
			TotalPrice:   sale.TotalPrice,
		})
	}
	slices.SortStableFunc(records, func(a, b domain.SaleRecord) int {
		return b.SaleTime.Compare(a.SaleTime)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}
