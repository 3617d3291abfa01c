package models

import "time"

// Coupon is an order-level discount keyed by its upper-cased code.
// UsageLimit of zero means unlimited redemptions.
type Coupon struct {
	Code            string     `gorm:"column:code;primaryKey"`
	DiscountPercent int        `gorm:"column:discount_percent;not null"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
	UsageLimit      int        `gorm:"column:usage_limit;not null;default:0"`
	UsedCount       int        `gorm:"column:used_count;not null;default:0"`
	Active          bool       `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
