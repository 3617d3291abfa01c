package catalog

import (
	"context"
	"testing"

	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestServiceCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "  ", PriceCents: 100})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "Desk", PriceCents: -1})
	requireCode(t, err, pkgerrors.CodeValidation)

	missing := uuid.New()
	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "Desk", PriceCents: 100, CategoryID: &missing})
	requireCode(t, err, pkgerrors.CodeValidation)

	dto, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Desk", PriceCents: 19900, Stock: 4})
	require.NoError(t, err)
	require.Equal(t, "Desk", dto.Name)
	require.Equal(t, 4, dto.Stock)
	require.Equal(t, 19900, dto.DiscountedPriceCents)
}

func TestServiceCreateCategoryRejectsDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Audio"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceListProductsResolvesEffectiveDiscount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Laptops", DiscountPercent: 20})
	require.NoError(t, err)

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:            "Ultrabook",
		CategoryID:      &category.ID,
		PriceCents:      100000,
		Stock:           2,
		DiscountPercent: 5,
	})
	require.NoError(t, err)

	// The category discount (20%) beats the product's own 5%.
	require.Equal(t, 20, created.EffectiveDiscountPercent)
	require.Equal(t, 80000, created.DiscountedPriceCents)

	// A larger storefront discount takes over without stacking.
	require.NoError(t, svc.SetStorefrontDiscount(ctx, 30))

	listed, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 30, listed[0].EffectiveDiscountPercent)
	require.Equal(t, 70000, listed[0].DiscountedPriceCents)
}

func TestServiceSetDiscountsValidateRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	requireCode(t, svc.SetStorefrontDiscount(ctx, 101), pkgerrors.CodeValidation)
	requireCode(t, svc.SetStorefrontDiscount(ctx, -1), pkgerrors.CodeValidation)
	requireCode(t, svc.SetProductDiscount(ctx, uuid.New(), 120), pkgerrors.CodeValidation)
	requireCode(t, svc.SetCategoryDiscount(ctx, uuid.New(), 50), pkgerrors.CodeNotFound)
}

func TestServiceRestock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Monitor", PriceCents: 25000, Stock: 1})
	require.NoError(t, err)

	_, err = svc.Restock(ctx, created.ID, 0)
	requireCode(t, err, pkgerrors.CodeValidation)

	restocked, err := svc.Restock(ctx, created.ID, 9)
	require.NoError(t, err)
	require.Equal(t, 10, restocked.Stock)

	_, err = svc.Restock(ctx, uuid.New(), 1)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
}
