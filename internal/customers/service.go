package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arscode/arscode-backend/pkg/config"
	"github.com/arscode/arscode-backend/pkg/db"
	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/arscode/arscode-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsufficientBalanceDetails is attached to INSUFFICIENT_BALANCE errors.
type InsufficientBalanceDetails struct {
	RequiredCents  int `json:"required_cents"`
	AvailableCents int `json:"available_cents"`
}

// Service exposes customer account operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*CustomerDTO, error)
	GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error)
	Authenticate(ctx context.Context, email, password string) (*models.Customer, error)
	TopUp(ctx context.Context, customerID uuid.UUID, amountCents int) (*CustomerDTO, error)
	Charge(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amountCents int) error
}

// RegisterInput holds the validated payload to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// CustomerDTO is the API-facing shape of a customer account.
type CustomerDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	BalanceCents int       `json:"balance_cents"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

func newCustomerDTO(customer *models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:           customer.ID,
		Name:         customer.Name,
		Email:        customer.Email,
		BalanceCents: customer.BalanceCents,
		IsAdmin:      customer.IsAdmin,
		CreatedAt:    customer.CreatedAt,
	}
}

// ledgerRecorder is the slice of the ledger service this package needs.
type ledgerRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry models.LedgerEntry) error
}

// service implements the customer service.
type service struct {
	repo        *Repository
	dbClient    *db.Client
	ledger      ledgerRecorder
	passwordCfg config.PasswordConfig
}

// NewService constructs a customer service instance.
func NewService(repo *Repository, dbClient *db.Client, ledger ledgerRecorder, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger recorder required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		ledger:      ledger,
		passwordCfg: passwordCfg,
	}, nil
}

// Register creates a new account with a hashed password.
func (s *service) Register(ctx context.Context, input RegisterInput) (*CustomerDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	customer := &models.Customer{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}
	dto := newCustomerDTO(created)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	dto := newCustomerDTO(customer)
	return &dto, nil
}

// Authenticate resolves email plus password to a customer row. The same
// UNAUTHORIZED error covers unknown emails and bad passwords so login
// probes cannot enumerate accounts.
func (s *service) Authenticate(ctx context.Context, email, password string) (*models.Customer, error) {
	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	ok, err := security.VerifyPassword(password, customer.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return customer, nil
}

// TopUp credits the customer's balance and records the ledger entry in
// the same transaction.
func (s *service) TopUp(ctx context.Context, customerID uuid.UUID, amountCents int) (*CustomerDTO, error) {
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_cents must be positive")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.IncrementBalance(ctx, customerID, amountCents); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit balance")
		}
		return s.ledger.Record(ctx, tx, models.LedgerEntry{
			CustomerID:  customerID,
			Type:        models.LedgerEntryTypeTopUp,
			AmountCents: amountCents,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top up balance")
	}

	return s.GetByID(ctx, customerID)
}

// Charge debits the customer inside the caller's transaction, failing
// with INSUFFICIENT_BALANCE when the guarded decrement touches no row.
func (s *service) Charge(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amountCents int) error {
	txRepo := s.repo.WithTx(tx)

	affected, err := txRepo.DecrementBalance(ctx, customerID, amountCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: charge balance")
	}
	if affected > 0 {
		return nil
	}

	customer, err := txRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "balance too low for this order").
		WithDetails(InsufficientBalanceDetails{
			RequiredCents:  amountCents,
			AvailableCents: customer.BalanceCents,
		})
}
