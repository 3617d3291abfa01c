package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CouponUse records one successful redemption. The unique index on
// (coupon_code, customer_id) blocks reuse by the same customer.
type CouponUse struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CouponCode string    `gorm:"column:coupon_code;not null;uniqueIndex:idx_coupon_use_code_customer"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_coupon_use_code_customer"`
	UsedAt     time.Time `gorm:"column:used_at;autoCreateTime"`
}

func (c *CouponUse) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
