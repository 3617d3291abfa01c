package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLine captures the snapshot of each item at checkout time; later price
// or discount changes never touch it.
type OrderLine struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity        int       `gorm:"column:quantity;not null"`
	UnitPriceCents  int       `gorm:"column:unit_price_cents;not null"`
	DiscountPercent int       `gorm:"column:discount_percent;not null;default:0"`
	TotalCents      int       `gorm:"column:total_cents;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
