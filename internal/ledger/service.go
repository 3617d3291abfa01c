package ledger

import (
	"context"
	"fmt"

	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service records and lists money lifecycle events.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, entry models.LedgerEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

type service struct {
	repo Repository
	db   *gorm.DB
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, db *gorm.DB) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{repo: repo, db: db}, nil
}

// Record writes one immutable entry. When tx is non-nil the write joins
// the caller's transaction so a rolled-back checkout leaves no trace.
func (s *service) Record(ctx context.Context, tx *gorm.DB, entry models.LedgerEntry) error {
	if entry.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if !entry.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry type %q", entry.Type))
	}
	if entry.AmountCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount_cents must be non-negative")
	}

	conn := s.db
	if tx != nil {
		conn = tx
	}
	if err := NewRepository(conn).Create(ctx, &entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ledger entry")
	}
	return nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	entries, err := s.repo.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list ledger entries")
	}
	return entries, nil
}
