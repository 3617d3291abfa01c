package coupons

import (
	"context"
	"strings"

	"github.com/arscode/arscode-backend/internal/repo"
	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles coupon and redemption persistence.
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

// NormalizeCode upper-cases and trims a coupon code for lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create inserts a new coupon.
func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	coupon.Code = NormalizeCode(coupon.Code)
	if err := r.DB(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

// FindByCode loads a coupon by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.DB(ctx).
		First(&coupon, "code = ?", NormalizeCode(code)).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// List returns all coupons, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.DB(ctx).
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// SetActive flips a coupon's active flag.
func (r *Repository) SetActive(ctx context.Context, code string, active bool) error {
	res := r.DB(ctx).
		Model(&models.Coupon{}).
		Where("code = ?", NormalizeCode(code)).
		UpdateColumn("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementUsage bumps used_count while re-checking the limit, so two
// concurrent checkouts cannot push a coupon past its cap. Zero rows
// affected means the coupon was exhausted in the meantime.
func (r *Repository) IncrementUsage(ctx context.Context, code string) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Coupon{}).
		Where("code = ? AND (usage_limit = 0 OR used_count < usage_limit)", NormalizeCode(code)).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	return res.RowsAffected, res.Error
}

// RecordUse inserts the per-customer redemption row. The unique index on
// (coupon_code, customer_id) rejects a second redemption.
func (r *Repository) RecordUse(ctx context.Context, code string, customerID uuid.UUID) error {
	use := &models.CouponUse{
		CouponCode: NormalizeCode(code),
		CustomerID: customerID,
	}
	return r.DB(ctx).Create(use).Error
}

// HasCustomerUsed reports whether the customer already redeemed the coupon.
func (r *Repository) HasCustomerUsed(ctx context.Context, code string, customerID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.CouponUse{}).
		Where("coupon_code = ? AND customer_id = ?", NormalizeCode(code), customerID).
		Count(&count).Error
	return count > 0, err
}
