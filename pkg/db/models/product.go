package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a catalog listing. Prices are integer cents; Stock is
// only ever mutated through guarded decrements during checkout or admin
// restock.
type Product struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	CategoryID      *uuid.UUID `gorm:"column:category_id;type:uuid"`
	PriceCents      int        `gorm:"column:price_cents;not null"`
	Stock           int        `gorm:"column:stock;not null;default:0"`
	DiscountPercent int        `gorm:"column:discount_percent;not null;default:0"`
	Category        *Category  `gorm:"foreignKey:CategoryID"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
