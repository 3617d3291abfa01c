package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arscode/arscode-backend/pkg/db"
	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rejection reasons, checked in order. Validation stops at the first
// failure, so a coupon that is both inactive and expired reports inactive.
const (
	ReasonNotFound    = "not_found"
	ReasonInactive    = "inactive"
	ReasonExpired     = "expired"
	ReasonExhausted   = "exhausted"
	ReasonAlreadyUsed = "already_used"
)

// InvalidCouponDetails is attached to INVALID_COUPON errors so callers can
// tell the customer exactly why the code was rejected.
type InvalidCouponDetails struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Service exposes coupon validation, redemption, and administration.
type Service interface {
	Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error)
	List(ctx context.Context) ([]CouponDTO, error)
	Deactivate(ctx context.Context, code string) error

	Validate(ctx context.Context, code string, customerID uuid.UUID, now time.Time) (*models.Coupon, error)
	Redeem(ctx context.Context, tx *gorm.DB, code string, customerID uuid.UUID) error
}

// CreateCouponInput holds the validated payload to create a coupon.
type CreateCouponInput struct {
	Code            string
	DiscountPercent int
	ExpiresAt       *time.Time
	UsageLimit      int
}

// CouponDTO is the API-facing shape of a coupon.
type CouponDTO struct {
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	UsageLimit      int        `json:"usage_limit"`
	UsedCount       int        `json:"used_count"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newCouponDTO(coupon *models.Coupon) CouponDTO {
	return CouponDTO{
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
		ExpiresAt:       coupon.ExpiresAt,
		UsageLimit:      coupon.UsageLimit,
		UsedCount:       coupon.UsedCount,
		Active:          coupon.Active,
		CreatedAt:       coupon.CreatedAt,
	}
}

// service implements the coupon service.
type service struct {
	repo *Repository
}

// NewService constructs a coupon service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo}, nil
}

// Create registers a new coupon code.
func (s *service) Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if input.DiscountPercent < 1 || input.DiscountPercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 1 and 100")
	}
	if input.UsageLimit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage_limit must be non-negative")
	}

	coupon := &models.Coupon{
		Code:            code,
		DiscountPercent: input.DiscountPercent,
		ExpiresAt:       input.ExpiresAt,
		UsageLimit:      input.UsageLimit,
		Active:          true,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert coupon")
	}
	dto := newCouponDTO(created)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list coupons")
	}
	dtos := make([]CouponDTO, len(coupons))
	for i := range coupons {
		dtos[i] = newCouponDTO(&coupons[i])
	}
	return dtos, nil
}

// Deactivate turns a coupon off without deleting its redemption history.
func (s *service) Deactivate(ctx context.Context, code string) error {
	if err := s.repo.SetActive(ctx, code, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate coupon")
	}
	return nil
}

// Validate checks a coupon for the given customer without mutating state.
// Checks run in a fixed order and stop at the first failure.
func (s *service) Validate(ctx context.Context, code string, customerID uuid.UUID, now time.Time) (*models.Coupon, error) {
	normalized := NormalizeCode(code)

	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCoupon(normalized, ReasonNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load coupon")
	}
	if !coupon.Active {
		return nil, invalidCoupon(normalized, ReasonInactive)
	}
	// A coupon is still valid at the exact expiration instant.
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return nil, invalidCoupon(normalized, ReasonExpired)
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, invalidCoupon(normalized, ReasonExhausted)
	}

	used, err := s.repo.HasCustomerUsed(ctx, normalized, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check coupon use")
	}
	if used {
		return nil, invalidCoupon(normalized, ReasonAlreadyUsed)
	}
	return coupon, nil
}

// Redeem consumes one use of the coupon for the customer inside the
// caller's transaction. The guarded counter update and the unique
// redemption row together keep concurrent checkouts honest: whichever
// race the earlier Validate missed fails here and rolls the order back.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, code string, customerID uuid.UUID) error {
	txRepo := s.repo.WithTx(tx)
	normalized := NormalizeCode(code)

	affected, err := txRepo.IncrementUsage(ctx, normalized)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment coupon usage")
	}
	if affected == 0 {
		return invalidCoupon(normalized, ReasonExhausted)
	}

	if err := txRepo.RecordUse(ctx, normalized, customerID); err != nil {
		if db.IsUniqueViolation(err, "") {
			return invalidCoupon(normalized, ReasonAlreadyUsed)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record coupon use")
	}
	return nil
}

func invalidCoupon(code, reason string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeInvalidCoupon, fmt.Sprintf("coupon %q rejected: %s", code, reason)).
		WithDetails(InvalidCouponDetails{Code: code, Reason: reason})
}
