package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Migrate creates the six tables when they do not exist yet and widens older
// fixed-scale decimal columns to unscaled NUMERIC.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return store.StorageFault(err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ingredients (name, stock_quantity, unit, low_stock_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, ingredient.Name, ingredient.StockQuantity, ingredient.Unit, ingredient.LowStockThreshold).Scan(&ingredient.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateName
		}
		return nil, store.StorageFault(err)
	}
	return &ingredient, nil
}

func (s *Store) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, stock_quantity, unit, low_stock_threshold
		FROM ingredients
		ORDER BY name
	`)
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer rows.Close()

	items := make([]domain.Ingredient, 0, 64)
	for rows.Next() {
		var i domain.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.StockQuantity, &i.Unit, &i.LowStockThreshold); err != nil {
			return nil, store.StorageFault(err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageFault(err)
	}
	return items, nil
}

func (s *Store) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	return s.getIngredient(ctx, `WHERE id = $1`, id)
}

func (s *Store) GetIngredientByName(ctx context.Context, name string) (*domain.Ingredient, error) {
	return s.getIngredient(ctx, `WHERE name = $1`, name)
}

func (s *Store) getIngredient(ctx context.Context, where string, arg any) (*domain.Ingredient, error) {
	var i domain.Ingredient
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, stock_quantity, unit, low_stock_threshold
		FROM ingredients
	`+where, arg).Scan(&i.ID, &i.Name, &i.StockQuantity, &i.Unit, &i.LowStockThreshold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.StorageFault(err)
	}
	return &i, nil
}

func (s *Store) AdjustStock(ctx context.Context, id int64, delta decimal.Decimal, kind domain.MovementKind, at time.Time) (*domain.Ingredient, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer func() { _ = pgTx.Rollback() }()

	var i domain.Ingredient
	err = pgTx.QueryRowContext(ctx, `
		UPDATE ingredients
		SET stock_quantity = stock_quantity + $2
		WHERE id = $1
		RETURNING id, name, stock_quantity, unit, low_stock_threshold
	`, id, delta).Scan(&i.ID, &i.Name, &i.StockQuantity, &i.Unit, &i.LowStockThreshold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.StorageFault(err)
	}

	if _, err := pgTx.ExecContext(ctx, `
		INSERT INTO inventory_movements (ingredient_id, quantity_change, movement_type, movement_time)
		VALUES ($1, $2, $3, $4)
	`, id, delta, string(kind), at.UTC()); err != nil {
		return nil, store.StorageFault(err)
	}

	if err := pgTx.Commit(); err != nil {
		return nil, store.StorageFault(err)
	}
	return &i, nil
}

func (s *Store) ListMovements(ctx context.Context, ingredientID int64, limit int) ([]domain.InventoryMovement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ingredient_id, quantity_change, movement_type, movement_time
		FROM inventory_movements
		WHERE ingredient_id = $1
		ORDER BY movement_time DESC, id DESC
		LIMIT $2
	`, ingredientID, limitOrAll(limit))
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer rows.Close()

	items := make([]domain.InventoryMovement, 0, 16)
	for rows.Next() {
		var m domain.InventoryMovement
		var kind string
		if err := rows.Scan(&m.ID, &m.IngredientID, &m.QuantityChange, &kind, &m.MovementTime); err != nil {
			return nil, store.StorageFault(err)
		}
		m.Kind = domain.MovementKind(kind)
		m.MovementTime = m.MovementTime.UTC()
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageFault(err)
	}
	return items, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price)
		VALUES ($1, $2)
		RETURNING id
	`, product.Name, product.Price).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateName
		}
		return nil, store.StorageFault(err)
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, store.StorageFault(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageFault(err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.getProduct(ctx, `WHERE id = $1`, id)
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.getProduct(ctx, `WHERE name = $1`, name)
}

func (s *Store) getProduct(ctx context.Context, where string, arg any) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `SELECT id, name, price FROM products `+where, arg).Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.StorageFault(err)
	}
	return &p, nil
}

func (s *Store) AddProductAttribute(ctx context.Context, attr domain.ProductAttribute) (*domain.ProductAttribute, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO product_attributes (product_id, attribute_name, attribute_value)
		SELECT id, $2, $3 FROM products WHERE id = $1
		RETURNING id
	`, attr.ProductID, attr.Name, attr.Value).Scan(&attr.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.StorageFault(err)
	}
	return &attr, nil
}

func (s *Store) ListProductAttributes(ctx context.Context, productID int64) ([]domain.ProductAttribute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, attribute_name, attribute_value
		FROM product_attributes
		WHERE product_id = $1
		ORDER BY id
	`, productID)
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer rows.Close()

	items := make([]domain.ProductAttribute, 0, 8)
	for rows.Next() {
		var a domain.ProductAttribute
		if err := rows.Scan(&a.ID, &a.ProductID, &a.Name, &a.Value); err != nil {
			return nil, store.StorageFault(err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageFault(err)
	}
	return items, nil
}

func (s *Store) SaveRecipe(ctx context.Context, productID int64, entries []domain.RecipeEntry) error {
	if err := store.ValidateRecipe(entries); err != nil {
		return err
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return store.StorageFault(err)
	}
	defer func() { _ = pgTx.Rollback() }()

	var exists bool
	if err := pgTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return store.StorageFault(err)
	}
	if !exists {
		return store.ErrNotFound
	}

	if len(entries) > 0 {
		ids := make([]int64, 0, len(entries))
		for _, entry := range entries {
			ids = append(ids, entry.IngredientID)
		}
		var found int
		if err := pgTx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredients WHERE id = ANY($1)`, ids).Scan(&found); err != nil {
			return store.StorageFault(err)
		}
		if found != len(ids) {
			return store.ErrNotFound
		}
	}

	if _, err := pgTx.ExecContext(ctx, `DELETE FROM recipes WHERE product_id = $1`, productID); err != nil {
		return store.StorageFault(err)
	}
	for _, entry := range entries {
		if _, err := pgTx.ExecContext(ctx, `
			INSERT INTO recipes (product_id, ingredient_id, quantity_needed)
			VALUES ($1, $2, $3)
		`, productID, entry.IngredientID, entry.QuantityNeeded); err != nil {
			return store.StorageFault(err)
		}
	}

	if err := pgTx.Commit(); err != nil {
		return store.StorageFault(err)
	}
	return nil
}

func (s *Store) GetRecipe(ctx context.Context, productID int64) ([]domain.RecipeLine, error) {
	lines, err := recipeLines(ctx, s.db, productID, false)
	if err != nil {
		return nil, store.StorageFault(err)
	}
	lineItems := make([]domain.RecipeLine, 0, len(lines))
	for _, line := range lines {
		lineItems = append(lineItems, line.RecipeLine)
	}
	return lineItems, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type lockedLine struct {
	domain.RecipeLine
	stock decimal.Decimal
}

// recipeLines reads the recipe in entry order with each ingredient's stock.
// With lock set the ingredient rows stay locked until the transaction ends.
func recipeLines(ctx context.Context, q queryer, productID int64, lock bool) ([]lockedLine, error) {
	query := `
		SELECT i.id, i.name, r.quantity_needed, i.unit, i.stock_quantity
		FROM recipes r
		JOIN ingredients i ON i.id = r.ingredient_id
		WHERE r.product_id = $1
		ORDER BY r.id
	`
	if lock {
		query += ` FOR UPDATE OF i`
	}
	rows, err := q.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]lockedLine, 0, 8)
	for rows.Next() {
		var line lockedLine
		if err := rows.Scan(&line.IngredientID, &line.IngredientName, &line.QuantityNeeded, &line.Unit, &line.stock); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *Store) Sell(ctx context.Context, productID int64, quantity int, at time.Time) (*domain.Sale, error) {
	if quantity < 1 {
		return nil, store.ErrInvalidQuantity
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer func() { _ = pgTx.Rollback() }()

	var price decimal.Decimal
	err = pgTx.QueryRowContext(ctx, `SELECT price FROM products WHERE id = $1`, productID).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.StorageFault(err)
	}

	lines, err := recipeLines(ctx, pgTx, productID, true)
	if err != nil {
		return nil, store.StorageFault(err)
	}
	if len(lines) == 0 {
		return nil, store.ErrNoRecipe
	}

	qty := decimal.NewFromInt(int64(quantity))
	needed := make([]decimal.Decimal, len(lines))
	for i, line := range lines {
		needed[i] = line.QuantityNeeded.Mul(qty)
		if line.stock.LessThan(needed[i]) {
			return nil, &store.InsufficientStockError{Ingredient: line.IngredientName}
		}
	}

	at = at.UTC()
	for i, line := range lines {
		if _, err := pgTx.ExecContext(ctx, `
			UPDATE ingredients
			SET stock_quantity = stock_quantity - $2
			WHERE id = $1
		`, line.IngredientID, needed[i]); err != nil {
			return nil, store.StorageFault(err)
		}
		if _, err := pgTx.ExecContext(ctx, `
			INSERT INTO inventory_movements (ingredient_id, quantity_change, movement_type, movement_time)
			VALUES ($1, $2, $3, $4)
		`, line.IngredientID, needed[i].Neg(), string(domain.MovementSaleDeduction), at); err != nil {
			return nil, store.StorageFault(err)
		}
	}

	sale := domain.Sale{
		ProductID:    productID,
		QuantitySold: quantity,
		TotalPrice:   price.Mul(qty),
		SaleTime:     at,
	}
	if err := pgTx.QueryRowContext(ctx, `
		INSERT INTO sales (product_id, quantity_sold, sale_time, total_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, productID, quantity, at, sale.TotalPrice).Scan(&sale.ID); err != nil {
		return nil, store.StorageFault(err)
	}

	if err := pgTx.Commit(); err != nil {
		return nil, store.StorageFault(err)
	}
	return &sale, nil
}

func (s *Store) SalesSummary(ctx context.Context, from time.Time, to time.Time) (domain.SalesSummary, error) {
	var summary domain.SalesSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(id), COALESCE(SUM(total_price), 0)
		FROM sales
		WHERE sale_time >= $1 AND sale_time < $2
	`, from.UTC(), to.UTC()).Scan(&summary.OrderCount, &summary.TotalRevenue)
	if err != nil {
		return domain.SalesSummary{}, store.StorageFault(err)
	}
	return summary, nil
}

// ProductRanking orders by quantity only; ties come back in whatever order the planner yields.
func (s *Store) ProductRanking(ctx context.Context) ([]domain.ProductRanking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, SUM(s.quantity_sold), SUM(s.total_price)
		FROM sales s
		JOIN products p ON p.id = s.product_id
		GROUP BY p.name
		ORDER BY SUM(s.quantity_sold) DESC
	`)
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer rows.Close()

	ranking := make([]domain.ProductRanking, 0, 32)
	for rows.Next() {
		var r domain.ProductRanking
		if err := rows.Scan(&r.ProductName, &r.TotalQuantity, &r.TotalRevenue); err != nil {
			return nil, store.StorageFault(err)
		}
		ranking = append(ranking, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageFault(err)
	}
	return ranking, nil
}

func (s *Store) RecentSales(ctx context.Context, limit int) ([]domain.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.sale_time, p.name, s.quantity_sold, s.total_price
		FROM sales s
		JOIN products p ON p.id = s.product_id
		ORDER BY s.sale_time DESC, s.id DESC
		LIMIT $1
	`, limitOrAll(limit))
	if err != nil {
		return nil, store.StorageFault(err)
	}
	defer rows.Close()

	records := make([]domain.SaleRecord, 0, 64)
	for rows.Next() {
		var r domain.SaleRecord
		if err := rows.Scan(&r.SaleTime, &r.ProductName, &r.QuantitySold, &r.TotalPrice); err != nil {
			return nil, store.StorageFault(err)
		}
		r.SaleTime = r.SaleTime.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.StorageFault(err)
	}
	return records, nil
}

// limitOrAll maps a non-positive limit to NULL, which LIMIT treats as no limit.
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
