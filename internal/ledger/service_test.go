package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

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
	if err := conn.AutoMigrate(&models.LedgerEntry{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func TestServiceRecordValidation(t *testing.T) {
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), conn)
	require.NoError(t, err)
	ctx := context.Background()

	err = svc.Record(ctx, nil, models.LedgerEntry{Type: models.LedgerEntryTypeTopUp, AmountCents: 100})
	require.NotNil(t, pkgerrors.As(err))

	err = svc.Record(ctx, nil, models.LedgerEntry{CustomerID: uuid.New(), Type: "mystery", AmountCents: 100})
	require.NotNil(t, pkgerrors.As(err))

	err = svc.Record(ctx, nil, models.LedgerEntry{CustomerID: uuid.New(), Type: models.LedgerEntryTypeTopUp, AmountCents: -5})
	require.NotNil(t, pkgerrors.As(err))
}

func TestServiceRecordAndList(t *testing.T) {
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), conn)
	require.NoError(t, err)
	ctx := context.Background()
	customer := uuid.New()

	require.NoError(t, svc.Record(ctx, nil, models.LedgerEntry{
		CustomerID:  customer,
		Type:        models.LedgerEntryTypeTopUp,
		AmountCents: 5000,
	}))
	orderID := uuid.New()
	require.NoError(t, svc.Record(ctx, nil, models.LedgerEntry{
		CustomerID:  customer,
		OrderID:     &orderID,
		Type:        models.LedgerEntryTypePurchase,
		AmountCents: 3200,
	}))

	entries, err := svc.ListByCustomer(ctx, customer, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = svc.ListByCustomer(ctx, uuid.New(), 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestServiceRecordJoinsTransaction(t *testing.T) {
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), conn)
	require.NoError(t, err)
	ctx := context.Background()
	customer := uuid.New()

	tx := conn.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, svc.Record(ctx, tx, models.LedgerEntry{
		CustomerID:  customer,
		Type:        models.LedgerEntryTypeTopUp,
		AmountCents: 100,
	}))
	require.NoError(t, tx.Rollback().Error)

	entries, err := svc.ListByCustomer(ctx, customer, 10)
	require.NoError(t, err)
	require.Empty(t, entries, "rolled-back entry must not persist")
}

func TestRepositorySumAndCountByTypeSince(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := uuid.New()

	for _, amount := range []int{1000, 2500} {
		require.NoError(t, repo.Create(ctx, &models.LedgerEntry{
			CustomerID:  customer,
			Type:        models.LedgerEntryTypePurchase,
			AmountCents: amount,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.LedgerEntry{
		CustomerID:  customer,
		Type:        models.LedgerEntryTypeTopUp,
		AmountCents: 9999,
	}))

	since := time.Now().Add(-time.Minute)
	sum, err := repo.SumByTypeSince(ctx, models.LedgerEntryTypePurchase, since)
	require.NoError(t, err)
	require.EqualValues(t, 3500, sum)

	count, err := repo.CountByTypeSince(ctx, models.LedgerEntryTypePurchase, since)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	sum, err = repo.SumByTypeSince(ctx, models.LedgerEntryTypePurchase, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, sum)
}
