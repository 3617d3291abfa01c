package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arscode/arscode-backend/internal/pricing"
	"github.com/arscode/arscode-backend/pkg/db"
	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes catalog management and read operations.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	SetCategoryDiscount(ctx context.Context, categoryID uuid.UUID, percent int) error

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	SetProductDiscount(ctx context.Context, productID uuid.UUID, percent int) error
	Restock(ctx context.Context, productID uuid.UUID, quantity int) (*ProductDTO, error)

	StorefrontDiscountPercent(ctx context.Context) (int, error)
	SetStorefrontDiscount(ctx context.Context, percent int) error
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name            string
	DiscountPercent int
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	CategoryID      *uuid.UUID
	PriceCents      int
	Stock           int
	DiscountPercent int
}

// service implements the catalog service.
type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// CreateCategory creates a category with an optional starting discount.
func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if err := validatePercent(input.DiscountPercent); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:            name,
		DiscountPercent: input.DiscountPercent,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	dto := NewCategoryDTO(created)
	return &dto, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	dtos := make([]CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = NewCategoryDTO(&categories[i])
	}
	return dtos, nil
}

// SetCategoryDiscount updates the discount percent for every product in
// the category at once.
func (s *service) SetCategoryDiscount(ctx context.Context, categoryID uuid.UUID, percent int) error {
	if err := validatePercent(percent); err != nil {
		return err
	}
	if err := s.repo.UpdateCategoryDiscount(ctx, categoryID, percent); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category discount")
	}
	return nil
}

// CreateProduct creates a product, verifying the category when given.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	if err := validatePercent(input.DiscountPercent); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
		}
	}

	product := &models.Product{
		Name:            name,
		CategoryID:      input.CategoryID,
		PriceCents:      input.PriceCents,
		Stock:           input.Stock,
		DiscountPercent: input.DiscountPercent,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return s.loadProductDTO(ctx, created.ID)
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	return s.loadProductDTO(ctx, productID)
}

// ListProducts returns all products with their effective discount, so the
// storefront can render the price a checkout would actually charge.
func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	storefrontPct, err := s.StorefrontDiscountPercent(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProductDTO, len(products))
	for i := range products {
		dtos[i] = NewProductDTO(&products[i], storefrontPct)
	}
	return dtos, nil
}

// SetProductDiscount updates a single product's own discount percent.
func (s *service) SetProductDiscount(ctx context.Context, productID uuid.UUID, percent int) error {
	if err := validatePercent(percent); err != nil {
		return err
	}
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	product.DiscountPercent = percent
	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return nil
}

// Restock adds quantity to the product's stock.
func (s *service) Restock(ctx context.Context, productID uuid.UUID, quantity int) (*ProductDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := s.repo.IncrementStock(ctx, productID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restock product")
	}
	return s.loadProductDTO(ctx, productID)
}

func (s *service) StorefrontDiscountPercent(ctx context.Context) (int, error) {
	setting, err := s.repo.GetStorefrontSetting(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load storefront settings")
	}
	return setting.DiscountPercent, nil
}

func (s *service) SetStorefrontDiscount(ctx context.Context, percent int) error {
	if err := validatePercent(percent); err != nil {
		return err
	}
	setting, err := s.repo.GetStorefrontSetting(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load storefront settings")
	}
	setting.DiscountPercent = percent
	if err := s.repo.SaveStorefrontSetting(ctx, setting); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save storefront settings")
	}
	return nil
}

func (s *service) loadProductDTO(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	storefrontPct, err := s.StorefrontDiscountPercent(ctx)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product, storefrontPct)
	return &dto, nil
}

func validatePercent(value int) error {
	if value < pricing.MinDiscountPercent || value > pricing.MaxDiscountPercent {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 0 and 100")
	}
	return nil
}
