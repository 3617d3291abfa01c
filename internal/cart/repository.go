package cart

import (
	"context"
	"errors"

	"github.com/arscode/arscode-backend/internal/repo"
	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists cart lines.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// FindLine loads the line for one (customer, product) pairing, or nil.
func (r *Repository) FindLine(ctx context.Context, customerID, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.DB(ctx).
		First(&line, "customer_id = ? AND product_id = ?", customerID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// SaveLine upserts a cart line.
func (r *Repository) SaveLine(ctx context.Context, line *models.CartLine) error {
	return r.DB(ctx).Save(line).Error
}

// ListLines returns the customer's cart with products preloaded, oldest
// line first so the cart renders in the order items were added.
func (r *Repository) ListLines(ctx context.Context, customerID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.DB(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// DeleteLine removes one product from the customer's cart.
func (r *Repository) DeleteLine(ctx context.Context, customerID, productID uuid.UUID) (int64, error) {
	res := r.DB(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

// Clear drops every line from the customer's cart.
func (r *Repository) Clear(ctx context.Context, customerID uuid.UUID) error {
	return r.DB(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.CartLine{}).Error
}
