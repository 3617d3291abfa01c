package coupons

import (
	"fmt"
	"testing"
	"time"

	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Coupon{}, &models.CouponUse{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateTestCoupon(t *testing.T, tx *gorm.DB, code string, percent, usageLimit int, expiresAt *time.Time, active bool) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:            NormalizeCode(code),
		DiscountPercent: percent,
		ExpiresAt:       expiresAt,
		UsageLimit:      usageLimit,
		Active:          active,
	}
	if err := tx.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	return coupon
}
