package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/arscode/arscode-backend/internal/pricing"
	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes cart operations for a customer.
type Service interface {
	AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*CartDTO, error)
	Get(ctx context.Context, customerID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

// CartLineDTO is one priced cart position.
type CartLineDTO struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	UnitPriceCents  int       `json:"unit_price_cents"`
	DiscountPercent int       `json:"discount_percent"`
	TotalCents      int       `json:"total_cents"`
}

// CartDTO is the customer's cart with the running subtotal. Line totals
// already include per-line discounts; coupons only apply at checkout.
type CartDTO struct {
	Lines         []CartLineDTO `json:"lines"`
	SubtotalCents int           `json:"subtotal_cents"`
}

// productReader is the slice of the catalog this package needs.
type productReader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// storefrontReader resolves the storefront-wide discount percent.
type storefrontReader interface {
	StorefrontDiscountPercent(ctx context.Context) (int, error)
}

// service implements the cart service.
type service struct {
	repo       *Repository
	products   productReader
	storefront storefrontReader
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, products productReader, storefront storefrontReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if storefront == nil {
		return nil, fmt.Errorf("storefront reader required")
	}
	return &service{repo: repo, products: products, storefront: storefront}, nil
}

// AddItem puts quantity units of the product in the cart. Adding a product
// already present accumulates onto the existing line.
func (s *service) AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	line, err := s.repo.FindLine(ctx, customerID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart line")
	}
	if line == nil {
		line = &models.CartLine{
			CustomerID: customerID,
			ProductID:  productID,
		}
	}
	line.Quantity += quantity
	if err := s.repo.SaveLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save cart line")
	}
	return s.Get(ctx, customerID)
}

// UpdateQuantity sets the line to an exact quantity. Zero removes it.
func (s *service) UpdateQuantity(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, customerID, productID)
	}

	line, err := s.repo.FindLine(ctx, customerID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart line")
	}
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	line.Quantity = quantity
	if err := s.repo.SaveLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save cart line")
	}
	return s.Get(ctx, customerID)
}

func (s *service) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*CartDTO, error) {
	affected, err := s.repo.DeleteLine(ctx, customerID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart line")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	return s.Get(ctx, customerID)
}

// Get prices the cart with the effective discount of each product at the
// time of the call.
func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*CartDTO, error) {
	lines, err := s.repo.ListLines(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cart lines")
	}
	storefrontPct, err := s.storefront.StorefrontDiscountPercent(ctx)
	if err != nil {
		return nil, err
	}

	dto := &CartDTO{Lines: make([]CartLineDTO, 0, len(lines))}
	for i := range lines {
		line := &lines[i]
		if line.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart line missing product")
		}
		categoryPct := 0
		if line.Product.Category != nil {
			categoryPct = line.Product.Category.DiscountPercent
		}
		pct := pricing.ResolveDiscountPercent(line.Product.DiscountPercent, categoryPct, storefrontPct)
		priced := pricing.ComputeLine(line.Product.PriceCents, line.Quantity, pct)

		dto.Lines = append(dto.Lines, CartLineDTO{
			ProductID:       line.ProductID,
			ProductName:     line.Product.Name,
			Quantity:        line.Quantity,
			UnitPriceCents:  line.Product.PriceCents,
			DiscountPercent: pct,
			TotalCents:      priced.TotalCents,
		})
		dto.SubtotalCents += priced.TotalCents
	}
	return dto, nil
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	if err := s.repo.Clear(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}
