package catalog

import (
	"time"

	"github.com/arscode/arscode-backend/internal/pricing"
	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CategoryDTO is the API-facing shape of a category.
type CategoryDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DiscountPercent int       `json:"discount_percent"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewCategoryDTO maps a category row into its DTO.
func NewCategoryDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:              category.ID,
		Name:            category.Name,
		DiscountPercent: category.DiscountPercent,
		CreatedAt:       category.CreatedAt,
	}
}

// ProductDTO is the API-facing shape of a product, including the
// effective (non-stacking) discount and the resulting unit price.
type ProductDTO struct {
	ID                       uuid.UUID  `json:"id"`
	Name                     string     `json:"name"`
	CategoryID               *uuid.UUID `json:"category_id,omitempty"`
	CategoryName             *string    `json:"category_name,omitempty"`
	PriceCents               int        `json:"price_cents"`
	Stock                    int        `json:"stock"`
	DiscountPercent          int        `json:"discount_percent"`
	EffectiveDiscountPercent int        `json:"effective_discount_percent"`
	DiscountedPriceCents     int        `json:"discounted_price_cents"`
	CreatedAt                time.Time  `json:"created_at"`
}

// NewProductDTO maps a product row into its DTO, resolving the effective
// discount from the product, its category, and the storefront percent.
func NewProductDTO(product *models.Product, storefrontPercent int) ProductDTO {
	categoryPct := 0
	var categoryName *string
	if product.Category != nil {
		categoryPct = product.Category.DiscountPercent
		categoryName = &product.Category.Name
	}
	effective := pricing.ResolveDiscountPercent(product.DiscountPercent, categoryPct, storefrontPercent)
	line := pricing.ComputeLine(product.PriceCents, 1, effective)

	return ProductDTO{
		ID:                       product.ID,
		Name:                     product.Name,
		CategoryID:               product.CategoryID,
		CategoryName:             categoryName,
		PriceCents:               product.PriceCents,
		Stock:                    product.Stock,
		DiscountPercent:          product.DiscountPercent,
		EffectiveDiscountPercent: effective,
		DiscountedPriceCents:     line.TotalCents,
		CreatedAt:                product.CreatedAt,
	}
}
