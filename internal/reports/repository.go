package reports

import (
	"context"
	"time"

	"github.com/arscode/arscode-backend/internal/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopProductRow aggregates sales for one product across order lines.
type TopProductRow struct {
	ProductID    uuid.UUID `gorm:"column:product_id"`
	ProductName  string    `gorm:"column:product_name"`
	UnitsSold    int       `gorm:"column:units_sold"`
	RevenueCents int64     `gorm:"column:revenue_cents"`
}

// DiscountBandRow counts sales grouped by the discount percent that was
// applied to the line at checkout time.
type DiscountBandRow struct {
	DiscountPercent int   `gorm:"column:discount_percent"`
	LineCount       int64 `gorm:"column:line_count"`
	UnitsSold       int   `gorm:"column:units_sold"`
}

// Repository runs the aggregate queries behind storefront reports.
type Repository interface {
	RevenueSince(ctx context.Context, since time.Time) (int64, error)
	OrderCountSince(ctx context.Context, since time.Time) (int64, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductRow, error)
	DiscountBands(ctx context.Context, since time.Time) ([]DiscountBandRow, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds the GORM-backed reports repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) RevenueSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.DB(ctx).
		Table("orders").
		Where("created_at >= ?", since).
		Select("COALESCE(SUM(total_cents), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) OrderCountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Table("orders").
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *repository) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductRow, error) {
	var rows []TopProductRow
	err := r.DB(ctx).
		Table("order_lines").
		Select("order_lines.product_id AS product_id, products.name AS product_name, SUM(order_lines.quantity) AS units_sold, SUM(order_lines.total_cents) AS revenue_cents").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("orders.created_at >= ?", since).
		Group("order_lines.product_id, products.name").
		Order("units_sold DESC, revenue_cents DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) DiscountBands(ctx context.Context, since time.Time) ([]DiscountBandRow, error) {
	var rows []DiscountBandRow
	err := r.DB(ctx).
		Table("order_lines").
		Select("order_lines.discount_percent AS discount_percent, COUNT(*) AS line_count, SUM(order_lines.quantity) AS units_sold").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.created_at >= ?", since).
		Group("order_lines.discount_percent").
		Order("discount_percent DESC").
		Scan(&rows).Error
	return rows, err
}
