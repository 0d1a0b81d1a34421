// Package seed populates a repository with the demo tea shop catalog.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
)

type ingredientSeed struct {
	name      string
	stock     string
	unit      string
	threshold string
}

type lineSeed struct {
	ingredient string
	qty        string
}

type productSeed struct {
	name       string
	price      string
	recipe     []lineSeed
	attributes [][2]string
}

var ingredients = []ingredientSeed{
	{"Ceylon Black Tea", "10", "kg", "1"},
	{"Assam Black Tea", "10", "kg", "1"},
	{"Jasmine Green Tea", "10", "kg", "1"},
	{"Four Seasons Oolong", "10", "kg", "1"},
	{"Jin Xuan Oolong", "10", "kg", "1"},
	{"White Peach Oolong", "10", "kg", "1"},

	{"Fresh Milk", "50", "L", "5"},
	{"Whole Milk", "50", "L", "5"},
	{"Thick Milk", "30", "L", "3"},
	{"Oat Milk", "20", "L", "2"},
	{"Coconut Milk", "30", "L", "3"},

	{"Fresh Lemon", "20", "kg", "2"},
	{"Fresh Strawberry", "15", "kg", "1.5"},
	{"Fresh Grape", "15", "kg", "1.5"},
	{"Fresh Mango", "15", "kg", "1.5"},
	{"Fresh Passion Fruit", "10", "kg", "1"},
	{"Fresh Watermelon", "30", "kg", "3"},
	{"Fresh Peach", "15", "kg", "1.5"},
	{"Fresh Orange", "20", "kg", "2"},

	{"Brown Sugar Pearls", "20", "kg", "2"},
	{"Agar Boba", "20", "kg", "2"},
	{"Nata de Coco", "20", "kg", "2"},
	{"Grass Jelly", "20", "kg", "2"},
	{"Red Bean", "15", "kg", "1.5"},
	{"Pudding", "15", "kg", "1.5"},
	{"Cheese Foam Powder", "10", "kg", "1"},
	{"Oreo Crumbs", "10", "kg", "1"},

	{"Fructose", "40", "L", "4"},
	{"Brown Sugar Syrup", "10", "L", "1"},
	{"Honey", "10", "L", "1"},
	{"Ice", "500", "kg", "20"},
}

var products = []productSeed{
	{
		name:  "Ceylon Pearl Milk Tea",
		price: "12",
		recipe: []lineSeed{
			{"Ceylon Black Tea", "0.1"}, {"Fresh Milk", "0.12"}, {"Brown Sugar Pearls", "0.06"},
			{"Fructose", "0.015"}, {"Ice", "0.15"},
		},
		attributes: [][2]string{{"style", "milk tea"}, {"taste", "rich"}, {"sweetness", "medium"}},
	},
	{
		name:  "Jasmine Oat Latte",
		price: "15.5",
		recipe: []lineSeed{
			{"Jasmine Green Tea", "0.09"}, {"Oat Milk", "0.14"}, {"Honey", "0.012"}, {"Ice", "0.15"},
		},
		attributes: [][2]string{{"style", "milk tea"}, {"taste", "floral"}, {"diet", "dairy free"}},
	},
	{
		name:  "Oolong Cheese Foam",
		price: "16",
		recipe: []lineSeed{
			{"Four Seasons Oolong", "0.1"}, {"Cheese Foam Powder", "0.05"}, {"Thick Milk", "0.1"},
			{"Fructose", "0.01"}, {"Ice", "0.15"},
		},
		attributes: [][2]string{{"style", "milk tea"}, {"taste", "creamy"}, {"caffeine", "high"}},
	},
	{
		name:  "Brown Sugar Thick Milk",
		price: "18",
		recipe: []lineSeed{
			{"Assam Black Tea", "0.08"}, {"Thick Milk", "0.15"}, {"Brown Sugar Syrup", "0.02"},
			{"Brown Sugar Pearls", "0.07"}, {"Ice", "0.15"},
		},
		attributes: [][2]string{{"style", "milk tea"}, {"taste", "rich"}, {"sweetness", "high"}},
	},
	{
		name:  "Full Cup Lemon",
		price: "12.5",
		recipe: []lineSeed{
			{"Fresh Lemon", "0.15"}, {"Jasmine Green Tea", "0.1"}, {"Honey", "0.02"}, {"Ice", "0.2"},
		},
		attributes: [][2]string{{"style", "fruit tea"}, {"taste", "sour refreshing"}, {"sweetness", "low"}},
	},
	{
		name:  "Strawberry Grape Duo",
		price: "19",
		recipe: []lineSeed{
			{"Fresh Strawberry", "0.12"}, {"Fresh Grape", "0.1"}, {"Jasmine Green Tea", "0.08"},
			{"Agar Boba", "0.06"}, {"Fructose", "0.02"}, {"Ice", "0.2"},
		},
		attributes: [][2]string{{"style", "fruit tea"}, {"taste", "sweet fruity"}, {"sweetness", "high"}},
	},
	{
		name:  "Mango Passion Fruit Tea",
		price: "17",
		recipe: []lineSeed{
			{"Fresh Mango", "0.13"}, {"Fresh Passion Fruit", "0.08"}, {"Four Seasons Oolong", "0.1"},
			{"Nata de Coco", "0.05"}, {"Fructose", "0.02"}, {"Ice", "0.2"},
		},
		attributes: [][2]string{{"style", "fruit tea"}, {"taste", "tropical sour"}, {"sweetness", "medium"}},
	},
	{
		name:  "White Peach Oolong Tea",
		price: "14",
		recipe: []lineSeed{
			{"White Peach Oolong", "0.1"}, {"Fresh Peach", "0.1"}, {"Honey", "0.015"}, {"Ice", "0.2"},
		},
		attributes: [][2]string{{"style", "fruit tea"}, {"taste", "floral light"}, {"sweetness", "low"}},
	},
	{
		name:  "Watermelon Slush",
		price: "13",
		recipe: []lineSeed{
			{"Fresh Watermelon", "0.25"}, {"Fructose", "0.02"}, {"Ice", "0.2"},
		},
		attributes: [][2]string{{"style", "slush"}, {"taste", "refreshing"}, {"caffeine", "none"}},
	},
	{
		name:  "Coconut Grass Jelly Milk Tea",
		price: "13.5",
		recipe: []lineSeed{
			{"Jin Xuan Oolong", "0.1"}, {"Coconut Milk", "0.12"}, {"Grass Jelly", "0.07"},
			{"Fructose", "0.015"}, {"Ice", "0.15"},
		},
		attributes: [][2]string{{"style", "milk tea"}, {"taste", "creamy"}, {"diet", "dairy free"}},
	},
}

// Apply writes the demo catalog into repo. It stops at the first failure,
// so seeding a populated store fails with store.ErrDuplicateName.
func Apply(ctx context.Context, repo store.Repository) error {
	ingredientIDs := make(map[string]int64, len(ingredients))
	for _, seed := range ingredients {
		created, err := repo.CreateIngredient(ctx, domain.Ingredient{
			Name:              seed.name,
			StockQuantity:     decimal.RequireFromString(seed.stock),
			Unit:              seed.unit,
			LowStockThreshold: decimal.RequireFromString(seed.threshold),
		})
		if err != nil {
			return fmt.Errorf("seed ingredient %q: %w", seed.name, err)
		}
		ingredientIDs[seed.name] = created.ID
	}

	for _, seed := range products {
		created, err := repo.CreateProduct(ctx, domain.Product{
			Name:  seed.name,
			Price: decimal.RequireFromString(seed.price),
		})
		if err != nil {
			return fmt.Errorf("seed product %q: %w", seed.name, err)
		}

		entries := make([]domain.RecipeEntry, 0, len(seed.recipe))
		for _, line := range seed.recipe {
			entries = append(entries, domain.RecipeEntry{
				IngredientID:   ingredientIDs[line.ingredient],
				QuantityNeeded: decimal.RequireFromString(line.qty),
			})
		}
		if err := repo.SaveRecipe(ctx, created.ID, entries); err != nil {
			return fmt.Errorf("seed recipe %q: %w", seed.name, err)
		}

		for _, attr := range seed.attributes {
			if _, err := repo.AddProductAttribute(ctx, domain.ProductAttribute{
				ProductID: created.ID,
				Name:      attr[0],
				Value:     attr[1],
			}); err != nil {
				return fmt.Errorf("seed attribute %q: %w", seed.name, err)
			}
		}
	}
	return nil
}

// Counts reports how many ingredients and products Apply creates.
func Counts() (int, int) {
	return len(ingredients), len(products)
}
