package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/store"
)

func (s *Service) AddProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.ProductResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		err := invalid("product name is required")
		return domain.ProductResult{Result: s.failure("add_product", err, "product", req.Name)}, err
	}
	if !req.Price.IsPositive() {
		err := invalid("price must be positive")
		return domain.ProductResult{Result: s.failure("add_product", err, "product", req.Name)}, err
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{Name: req.Name, Price: req.Price})
	if err != nil {
		return domain.ProductResult{Result: s.failure("add_product", err, "product", req.Name)}, err
	}
	return domain.ProductResult{
		Result:  ok(fmt.Sprintf("product '%s' added", created.Name)),
		Product: created,
	}, nil
}

func (s *Service) ListProducts(ctx context.Context) []domain.Product {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.readFailed("list_products", err)
		return []domain.Product{}
	}
	return products
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, bool) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		s.readFailed("get_product", err)
		return domain.Product{}, false
	}
	return *product, true
}

func (s *Service) FindProductByName(ctx context.Context, name string) (domain.Product, bool) {
	product, err := s.repo.GetProductByName(ctx, strings.TrimSpace(name))
	if err != nil {
		s.readFailed("find_product", err)
		return domain.Product{}, false
	}
	return *product, true
}

// SetAttribute always appends. Repeating a name keeps both rows.
func (s *Service) SetAttribute(ctx context.Context, productID int64, req domain.AttributeCreateRequest) (domain.AttributeResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Value = strings.TrimSpace(req.Value)
	if req.Name == "" || req.Value == "" {
		err := invalid("attribute name and value are required")
		return domain.AttributeResult{Result: s.failure("set_attribute", err, "product", "")}, err
	}

	created, err := s.repo.AddProductAttribute(ctx, domain.ProductAttribute{
		ProductID: productID,
		Name:      req.Name,
		Value:     req.Value,
	})
	if err != nil {
		return domain.AttributeResult{Result: s.failure("set_attribute", err, "product", "")}, err
	}
	return domain.AttributeResult{
		Result:    ok(fmt.Sprintf("attribute '%s: %s' added", created.Name, created.Value)),
		Attribute: created,
	}, nil
}

func (s *Service) Attributes(ctx context.Context, productID int64) []domain.ProductAttribute {
	attrs, err := s.repo.ListProductAttributes(ctx, productID)
	if err != nil {
		s.readFailed("attributes", err)
		return []domain.ProductAttribute{}
	}
	return attrs
}

func (s *Service) SaveRecipe(ctx context.Context, productID int64, entries []domain.RecipeEntry) (domain.Result, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return s.failure("save_recipe", err, "product", ""), err
	}

	if err := s.repo.SaveRecipe(ctx, productID, entries); err != nil {
		// The product was just found, so a miss here is one of the ingredients.
		entity := "product"
		if errors.Is(err, store.ErrNotFound) {
			entity = "ingredient"
		}
		return s.failure("save_recipe", err, entity, ""), err
	}
	return ok("recipe saved"), nil
}

func (s *Service) Recipe(ctx context.Context, productID int64) []domain.RecipeLine {
	lines, err := s.repo.GetRecipe(ctx, productID)
	if err != nil {
		s.readFailed("recipe", err)
		return []domain.RecipeLine{}
	}
	return lines
}

// RecipeBook lists every product by name with its recipe, empty recipes included.
func (s *Service) RecipeBook(ctx context.Context) []domain.ProductRecipe {
	products := s.ListProducts(ctx)
	book := make([]domain.ProductRecipe, 0, len(products))
	for _, product := range products {
		book = append(book, domain.ProductRecipe{
			Product: product,
			Lines:   s.Recipe(ctx, product.ID),
		})
	}
	return book
}

func (s *Service) profiles(ctx context.Context) []domain.ProductProfile {
	products := s.ListProducts(ctx)
	profiles := make([]domain.ProductProfile, 0, len(products))
	for _, product := range products {
		profiles = append(profiles, domain.ProductProfile{
			Product:    product,
			Attributes: s.Attributes(ctx, product.ID),
		})
	}
	return profiles
}
