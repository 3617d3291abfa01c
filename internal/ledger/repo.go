package ledger

import (
	"context"
	"time"

	"github.com/arscode/arscode-backend/internal/repo"
	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists and queries immutable ledger rows.
type Repository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error)
	SumByTypeSince(ctx context.Context, entryType models.LedgerEntryType, since time.Time) (int64, error)
	CountByTypeSince(ctx context.Context, entryType models.LedgerEntryType, since time.Time) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds the GORM-backed ledger repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	q := r.DB(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SumByTypeSince(ctx context.Context, entryType models.LedgerEntryType, since time.Time) (int64, error) {
	var total int64
	err := r.DB(ctx).
		Model(&models.LedgerEntry{}).
		Where("type = ? AND created_at >= ?", entryType, since).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) CountByTypeSince(ctx context.Context, entryType models.LedgerEntryType, since time.Time) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.LedgerEntry{}).
		Where("type = ? AND created_at >= ?", entryType, since).
		Count(&count).Error
	return count, err
}
