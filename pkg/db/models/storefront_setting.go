package models

import "time"

// StorefrontSettingID is the single row the settings table ever holds.
const StorefrontSettingID = 1

// StorefrontSetting keeps the storefront-wide discount percent as explicit
// configuration instead of ambient mutable state.
type StorefrontSetting struct {
	ID              int       `gorm:"column:id;primaryKey"`
	DiscountPercent int       `gorm:"column:discount_percent;not null;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
