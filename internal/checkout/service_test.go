package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/arscode/arscode-backend/internal/cart"
	"github.com/arscode/arscode-backend/internal/catalog"
	"github.com/arscode/arscode-backend/internal/coupons"
	"github.com/arscode/arscode-backend/internal/customers"
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

type fixture struct {
	conn       *gorm.DB
	svc        Service
	catalogSvc catalog.Service
	cartSvc    cart.Service
	couponSvc  coupons.Service
	customers  customers.Service
	orders     *Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.CartLine{},
		&models.Coupon{},
		&models.CouponUse{},
		&models.Order{},
		&models.OrderLine{},
		&models.LedgerEntry{},
		&models.StorefrontSetting{},
	))

	client := db.NewFromConn(conn)
	catalogRepo := catalog.NewRepository(conn)
	catalogSvc, err := catalog.NewService(catalogRepo)
	require.NoError(t, err)

	cartRepo := cart.NewRepository(conn)
	cartSvc, err := cart.NewService(cartRepo, catalogRepo, catalogSvc)
	require.NoError(t, err)

	couponSvc, err := coupons.NewService(coupons.NewRepository(conn))
	require.NoError(t, err)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn), conn)
	require.NoError(t, err)

	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	customerSvc, err := customers.NewService(customers.NewRepository(conn), client, ledgerSvc, passwordCfg)
	require.NoError(t, err)

	orders := NewRepository(conn)
	svc, err := NewService(client, cartRepo, catalogRepo, catalogSvc, couponSvc, customerSvc, ledgerSvc, orders, nil, nil)
	require.NoError(t, err)

	return &fixture{
		conn:       conn,
		svc:        svc,
		catalogSvc: catalogSvc,
		cartSvc:    cartSvc,
		couponSvc:  couponSvc,
		customers:  customerSvc,
		orders:     orders,
	}
}

func (f *fixture) newCustomer(t *testing.T, balanceCents int) uuid.UUID {
	t.Helper()
	dto, err := f.customers.Register(context.Background(), customers.RegisterInput{
		Name:     "Shopper",
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password: "supersecret",
	})
	require.NoError(t, err)
	if balanceCents > 0 {
		_, err = f.customers.TopUp(context.Background(), dto.ID, balanceCents)
		require.NoError(t, err)
	}
	return dto.ID
}

func (f *fixture) newProduct(t *testing.T, name string, priceCents, stock, discountPercent int) uuid.UUID {
	t.Helper()
	dto, err := f.catalogSvc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name:            name,
		PriceCents:      priceCents,
		Stock:           stock,
		DiscountPercent: discountPercent,
	})
	require.NoError(t, err)
	return dto.ID
}

func (f *fixture) addToCart(t *testing.T, customerID, productID uuid.UUID, quantity int) {
	t.Helper()
	_, err := f.cartSvc.AddItem(context.Background(), customerID, productID, quantity)
	require.NoError(t, err)
}

func (f *fixture) productStock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	dto, err := f.catalogSvc.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return dto.Stock
}

func (f *fixture) balance(t *testing.T, customerID uuid.UUID) int {
	t.Helper()
	dto, err := f.customers.GetByID(context.Background(), customerID)
	require.NoError(t, err)
	return dto.BalanceCents
}

func (f *fixture) orderCount(t *testing.T, customerID uuid.UUID) int {
	t.Helper()
	orders, err := f.orders.ListByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	return len(orders)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
	return appErr
}

func strPtr(s string) *string { return &s }

func TestExecuteAppliesLineDiscounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 100000)
	product := f.newProduct(t, "Headphones", 18000, 5, 10)
	f.addToCart(t, customer, product, 2)

	order, err := f.svc.Execute(ctx, customer, nil)
	require.NoError(t, err)

	// 2 x 180.00 at 10% off: 360.00 becomes 324.00.
	require.Equal(t, 32400, order.SubtotalCents)
	require.Zero(t, order.CouponDiscountCents)
	require.Equal(t, 32400, order.TotalCents)
	require.Len(t, order.Lines, 1)
	require.Equal(t, 10, order.Lines[0].DiscountPercent)

	require.Equal(t, 3, f.productStock(t, product))
	require.Equal(t, 100000-32400, f.balance(t, customer))

	// Cart is empty after a successful checkout.
	cartDTO, err := f.cartSvc.Get(ctx, customer)
	require.NoError(t, err)
	require.Empty(t, cartDTO.Lines)
}

func TestExecuteAppliesCouponAfterLineDiscounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 100000)
	product := f.newProduct(t, "Desk", 90000, 3, 0)
	f.addToCart(t, customer, product, 1)

	_, err := f.couponSvc.Create(ctx, coupons.CreateCouponInput{Code: "SWEET15", DiscountPercent: 15})
	require.NoError(t, err)

	order, err := f.svc.Execute(ctx, customer, strPtr("sweet15"))
	require.NoError(t, err)

	// 900.00 with SWEET15: 135.00 off, 765.00 due.
	require.Equal(t, 90000, order.SubtotalCents)
	require.Equal(t, 13500, order.CouponDiscountCents)
	require.Equal(t, 76500, order.TotalCents)
	require.Equal(t, "SWEET15", *order.CouponCode)

	require.Equal(t, 100000-76500, f.balance(t, customer))

	listed, err := f.couponSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 1, listed[0].UsedCount)
}

func TestExecuteEmptyCart(t *testing.T) {
	f := newFixture(t)

	customer := f.newCustomer(t, 10000)
	_, err := f.svc.Execute(context.Background(), customer, nil)
	requireCode(t, err, pkgerrors.CodeEmptyCart)
	require.Zero(t, f.orderCount(t, customer))
}

func TestExecuteOutOfStockRollsEverythingBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 100000)
	plenty := f.newProduct(t, "Cable", 500, 50, 0)
	scarce := f.newProduct(t, "Limited Vinyl", 3000, 1, 0)

	f.addToCart(t, customer, plenty, 2)
	f.addToCart(t, customer, scarce, 3)

	_, err := f.svc.Execute(ctx, customer, nil)
	appErr := requireCode(t, err, pkgerrors.CodeOutOfStock)
	details, ok := appErr.Details().(OutOfStockDetails)
	require.True(t, ok)
	require.Equal(t, "Limited Vinyl", details.ProductName)
	require.Equal(t, 3, details.Requested)
	require.Equal(t, 1, details.Available)

	// Nothing moved: both stocks, the balance, the cart, no order.
	require.Equal(t, 50, f.productStock(t, plenty))
	require.Equal(t, 1, f.productStock(t, scarce))
	require.Equal(t, 100000, f.balance(t, customer))
	require.Zero(t, f.orderCount(t, customer))

	cartDTO, err := f.cartSvc.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, cartDTO.Lines, 2)
}

func TestExecuteInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 10000)
	product := f.newProduct(t, "Monitor", 15000, 4, 0)
	f.addToCart(t, customer, product, 1)

	_, err := f.couponSvc.Create(ctx, coupons.CreateCouponInput{Code: "TENOFF", DiscountPercent: 10})
	require.NoError(t, err)

	// 150.00 minus 10% is 135.00, still above the 100.00 balance.
	_, err = f.svc.Execute(ctx, customer, strPtr("TENOFF"))
	appErr := requireCode(t, err, pkgerrors.CodeInsufficientBalance)
	details, ok := appErr.Details().(customers.InsufficientBalanceDetails)
	require.True(t, ok)
	require.Equal(t, 13500, details.RequiredCents)
	require.Equal(t, 10000, details.AvailableCents)

	require.Equal(t, 4, f.productStock(t, product))
	require.Equal(t, 10000, f.balance(t, customer))
	require.Zero(t, f.orderCount(t, customer))

	// The failed attempt must not consume the coupon.
	listed, err := f.couponSvc.List(ctx)
	require.NoError(t, err)
	require.Zero(t, listed[0].UsedCount)

	var uses int64
	require.NoError(t, f.conn.Model(&models.CouponUse{}).Count(&uses).Error)
	require.Zero(t, uses)
}

func TestExecuteInvalidCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 50000)
	product := f.newProduct(t, "Lamp", 4000, 5, 0)
	f.addToCart(t, customer, product, 1)

	_, err := f.svc.Execute(ctx, customer, strPtr("GHOST"))
	appErr := requireCode(t, err, pkgerrors.CodeInvalidCoupon)
	details, ok := appErr.Details().(coupons.InvalidCouponDetails)
	require.True(t, ok)
	require.Equal(t, coupons.ReasonNotFound, details.Reason)

	// The rejected coupon aborts checkout before any mutation.
	require.Equal(t, 5, f.productStock(t, product))
	require.Equal(t, 50000, f.balance(t, customer))
	require.Zero(t, f.orderCount(t, customer))
}

func TestExecuteCouponUsageLimitStopsAtCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.newProduct(t, "Mug", 1000, 100, 0)
	_, err := f.couponSvc.Create(ctx, coupons.CreateCouponInput{Code: "CAP2", DiscountPercent: 10, UsageLimit: 2})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		customer := f.newCustomer(t, 5000)
		f.addToCart(t, customer, product, 1)
		_, err := f.svc.Execute(ctx, customer, strPtr("CAP2"))
		require.NoError(t, err)
	}

	third := f.newCustomer(t, 5000)
	f.addToCart(t, third, product, 1)
	_, err = f.svc.Execute(ctx, third, strPtr("CAP2"))
	appErr := requireCode(t, err, pkgerrors.CodeInvalidCoupon)
	details := appErr.Details().(coupons.InvalidCouponDetails)
	require.Equal(t, coupons.ReasonExhausted, details.Reason)

	// The third customer can still check out without the coupon.
	order, err := f.svc.Execute(ctx, third, nil)
	require.NoError(t, err)
	require.Equal(t, 1000, order.TotalCents)
}

func TestExecuteCouponSingleUsePerCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 50000)
	product := f.newProduct(t, "Notebook", 2000, 10, 0)
	_, err := f.couponSvc.Create(ctx, coupons.CreateCouponInput{Code: "LOYAL", DiscountPercent: 10})
	require.NoError(t, err)

	f.addToCart(t, customer, product, 1)
	_, err = f.svc.Execute(ctx, customer, strPtr("LOYAL"))
	require.NoError(t, err)

	f.addToCart(t, customer, product, 1)
	_, err = f.svc.Execute(ctx, customer, strPtr("LOYAL"))
	appErr := requireCode(t, err, pkgerrors.CodeInvalidCoupon)
	details := appErr.Details().(coupons.InvalidCouponDetails)
	require.Equal(t, coupons.ReasonAlreadyUsed, details.Reason)
}

func TestExecuteRecordsLedgerEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 20000)
	product := f.newProduct(t, "Poster", 2500, 5, 0)
	f.addToCart(t, customer, product, 2)

	order, err := f.svc.Execute(ctx, customer, nil)
	require.NoError(t, err)

	var entries []models.LedgerEntry
	require.NoError(t, f.conn.
		Where("customer_id = ? AND type = ?", customer, models.LedgerEntryTypePurchase).
		Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, order.TotalCents, entries[0].AmountCents)
	require.NotNil(t, entries[0].OrderID)
	require.Equal(t, order.ID, *entries[0].OrderID)
}

func TestExecuteNonStackingDiscountUsesLargest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 100000)

	category, err := f.catalogSvc.CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Audio", DiscountPercent: 20})
	require.NoError(t, err)
	productDTO, err := f.catalogSvc.CreateProduct(ctx, catalog.CreateProductInput{
		Name:            "Speaker",
		CategoryID:      &category.ID,
		PriceCents:      10000,
		Stock:           5,
		DiscountPercent: 5,
	})
	require.NoError(t, err)
	require.NoError(t, f.catalogSvc.SetStorefrontDiscount(ctx, 10))

	f.addToCart(t, customer, productDTO.ID, 1)

	order, err := f.svc.Execute(ctx, customer, nil)
	require.NoError(t, err)

	// 20% category discount wins over 5% product and 10% storefront.
	require.Equal(t, 8000, order.TotalCents)
	require.Equal(t, 20, order.Lines[0].DiscountPercent)
}

func TestQuoteIsSideEffectFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 100000)
	product := f.newProduct(t, "Chair", 30000, 2, 0)
	f.addToCart(t, customer, product, 1)

	_, err := f.couponSvc.Create(ctx, coupons.CreateCouponInput{Code: "SEAT10", DiscountPercent: 10, UsageLimit: 1})
	require.NoError(t, err)

	quote, err := f.svc.Quote(ctx, customer, strPtr("SEAT10"))
	require.NoError(t, err)
	require.Equal(t, 30000, quote.SubtotalCents)
	require.Equal(t, 3000, quote.CouponDiscountCents)
	require.Equal(t, 27000, quote.TotalCents)

	// Quoting again works: nothing was spent, reserved, or redeemed.
	quote, err = f.svc.Quote(ctx, customer, strPtr("SEAT10"))
	require.NoError(t, err)
	require.Equal(t, 27000, quote.TotalCents)

	require.Equal(t, 2, f.productStock(t, product))
	require.Equal(t, 100000, f.balance(t, customer))
	listed, err := f.couponSvc.List(ctx)
	require.NoError(t, err)
	require.Zero(t, listed[0].UsedCount)
}

func TestQuoteSurfacesStockShortfall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 100000)
	product := f.newProduct(t, "Lamp", 4000, 1, 0)
	f.addToCart(t, customer, product, 2)

	_, err := f.svc.Quote(ctx, customer, nil)
	requireCode(t, err, pkgerrors.CodeOutOfStock)
}

func TestExecuteWholeBalanceSpendSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.newCustomer(t, 5000)
	product := f.newProduct(t, "Gift Card", 5000, 1, 0)
	f.addToCart(t, customer, product, 1)

	order, err := f.svc.Execute(ctx, customer, nil)
	require.NoError(t, err)
	require.Equal(t, 5000, order.TotalCents)
	require.Zero(t, f.balance(t, customer))
}
