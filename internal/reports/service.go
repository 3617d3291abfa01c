package reports

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period selects the time window a report covers.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// IsValid reports whether the period is one of the known windows.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

func (p Period) duration() time.Duration {
	switch p {
	case PeriodDay:
		return 24 * time.Hour
	case PeriodWeek:
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// RevenueReport summarizes order revenue over one window. The average is
// computed with decimal arithmetic and rendered with two fraction digits.
type RevenueReport struct {
	Period               Period          `json:"period"`
	OrderCount           int64           `json:"order_count"`
	RevenueCents         int64           `json:"revenue_cents"`
	AverageOrderValue    string          `json:"average_order_value"`
	AverageOrderValueRaw decimal.Decimal `json:"-"`
}

// TopProductEntry is one row of the best-sellers report.
type TopProductEntry struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	UnitsSold    int       `json:"units_sold"`
	RevenueCents int64     `json:"revenue_cents"`
}

// DiscountBandEntry is one row of the discount-performance report: how many
// order lines (and units) sold at each applied discount percent.
type DiscountBandEntry struct {
	DiscountPercent int   `json:"discount_percent"`
	LineCount       int64 `json:"line_count"`
	UnitsSold       int   `json:"units_sold"`
}

// Service renders storefront reports.
type Service interface {
	Revenue(ctx context.Context, period Period) (*RevenueReport, error)
	TopProducts(ctx context.Context, period Period, limit int) ([]TopProductEntry, error)
	DiscountPerformance(ctx context.Context, period Period) ([]DiscountBandEntry, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a reports service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Revenue(ctx context.Context, period Period) (*RevenueReport, error) {
	if !period.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid report period %q", period))
	}
	since := s.now().Add(-period.duration())

	revenue, err := s.repo.RevenueSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum revenue")
	}
	count, err := s.repo.OrderCountSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
	}

	average := decimal.Zero
	if count > 0 {
		average = decimal.NewFromInt(revenue).
			Div(decimal.NewFromInt(count)).
			Div(decimal.NewFromInt(100)).
			Round(2)
	}

	return &RevenueReport{
		Period:               period,
		OrderCount:           count,
		RevenueCents:         revenue,
		AverageOrderValue:    average.StringFixed(2),
		AverageOrderValueRaw: average,
	}, nil
}

func (s *service) TopProducts(ctx context.Context, period Period, limit int) ([]TopProductEntry, error) {
	if !period.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid report period %q", period))
	}
	if limit <= 0 {
		limit = 5
	}
	since := s.now().Add(-period.duration())

	rows, err := s.repo.TopProducts(ctx, since, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: top products")
	}

	entries := make([]TopProductEntry, len(rows))
	for i, row := range rows {
		entries[i] = TopProductEntry{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			UnitsSold:    row.UnitsSold,
			RevenueCents: row.RevenueCents,
		}
	}
	return entries, nil
}

func (s *service) DiscountPerformance(ctx context.Context, period Period) ([]DiscountBandEntry, error) {
	if !period.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid report period %q", period))
	}
	since := s.now().Add(-period.duration())

	rows, err := s.repo.DiscountBands(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: discount bands")
	}

	entries := make([]DiscountBandEntry, len(rows))
	for i, row := range rows {
		entries[i] = DiscountBandEntry{
			DiscountPercent: row.DiscountPercent,
			LineCount:       row.LineCount,
			UnitsSold:       row.UnitsSold,
		}
	}
	return entries, nil
}
