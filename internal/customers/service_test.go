package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/arscode/arscode-backend/internal/ledger"
	"github.com/arscode/arscode-backend/pkg/config"
	"github.com/arscode/arscode-backend/pkg/db"
	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
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
	if err := conn.AutoMigrate(&models.Customer{}, &models.LedgerEntry{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func testPasswordConfig() config.PasswordConfig {
	// Cheap parameters keep the hashing fast under test.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn), conn)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), ledgerSvc, testPasswordConfig())
	require.NoError(t, err)
	return svc, conn
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
}

func TestServiceRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "", Password: "supersecret"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "short"})
	requireCode(t, err, pkgerrors.CodeValidation)

	dto, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: " Ada@Example.COM ", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", dto.Email)
	require.Zero(t, dto.BalanceCents)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "ada@example.com", Password: "supersecret"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "supersecret"})
	require.NoError(t, err)

	customer, err := svc.Authenticate(ctx, "ADA@example.com", "supersecret")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", customer.Email)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrongpassword")
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Authenticate(ctx, "ghost@example.com", "supersecret")
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestServiceTopUpRecordsLedgerEntry(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.TopUp(ctx, dto.ID, 0)
	requireCode(t, err, pkgerrors.CodeValidation)

	topped, err := svc.TopUp(ctx, dto.ID, 10000)
	require.NoError(t, err)
	require.Equal(t, 10000, topped.BalanceCents)

	var entries []models.LedgerEntry
	require.NoError(t, conn.Where("customer_id = ?", dto.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, models.LedgerEntryTypeTopUp, entries[0].Type)
	require.Equal(t, 10000, entries[0].AmountCents)

	_, err = svc.TopUp(ctx, uuid.New(), 100)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceChargeGuardsBalance(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "supersecret"})
	require.NoError(t, err)
	_, err = svc.TopUp(ctx, dto.ID, 10000)
	require.NoError(t, err)

	require.NoError(t, svc.Charge(ctx, conn, dto.ID, 4000))

	// 15000 > the remaining 6000.
	err = svc.Charge(ctx, conn, dto.ID, 15000)
	requireCode(t, err, pkgerrors.CodeInsufficientBalance)
	details, ok := pkgerrors.As(err).Details().(InsufficientBalanceDetails)
	require.True(t, ok)
	require.Equal(t, 15000, details.RequiredCents)
	require.Equal(t, 6000, details.AvailableCents)

	// Failed charge must not move the balance.
	reloaded, err := svc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	require.Equal(t, 6000, reloaded.BalanceCents)

	err = svc.Charge(ctx, conn, uuid.New(), 100)
	requireCode(t, err, pkgerrors.CodeNotFound)
}
