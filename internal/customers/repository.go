package customers

import (
	"context"
	"strings"

	"github.com/arscode/arscode-backend/internal/repo"
	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles customer persistence, including balance mutations.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// NormalizeEmail lower-cases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new customer row.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	customer.Email = NormalizeEmail(customer.Email)
	if err := r.DB(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// FindByID loads a customer by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmail loads a customer by normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.DB(ctx).
		First(&customer, "email = ?", NormalizeEmail(email)).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// DecrementBalance atomically charges the customer, refusing to overdraw.
// Zero rows affected means the balance was below amountCents.
func (r *Repository) DecrementBalance(ctx context.Context, customerID uuid.UUID, amountCents int) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND balance_cents >= ?", customerID, amountCents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	return res.RowsAffected, res.Error
}

// IncrementBalance credits the customer's balance.
func (r *Repository) IncrementBalance(ctx context.Context, customerID uuid.UUID, amountCents int) error {
	res := r.DB(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", amountCents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
