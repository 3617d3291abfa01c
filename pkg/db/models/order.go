package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is the immutable result of a successful checkout.
// TotalCents always equals SubtotalCents minus CouponDiscountCents.
type Order struct {
	ID                  uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID          uuid.UUID   `gorm:"column:customer_id;type:uuid;not null;index"`
	SubtotalCents       int         `gorm:"column:subtotal_cents;not null"`
	CouponCode          *string     `gorm:"column:coupon_code"`
	CouponDiscountCents int         `gorm:"column:coupon_discount_cents;not null;default:0"`
	TotalCents          int         `gorm:"column:total_cents;not null"`
	Lines               []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time   `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
