package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/arscode/arscode-backend/internal/cart"
	"github.com/arscode/arscode-backend/internal/catalog"
	"github.com/arscode/arscode-backend/internal/pricing"
	"github.com/arscode/arscode-backend/pkg/db/models"
	pkgerrors "github.com/arscode/arscode-backend/pkg/errors"
	"github.com/arscode/arscode-backend/pkg/logger"
	"github.com/arscode/arscode-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storefrontReader interface {
	StorefrontDiscountPercent(ctx context.Context) (int, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string, customerID uuid.UUID, now time.Time) (*models.Coupon, error)
	Redeem(ctx context.Context, tx *gorm.DB, code string, customerID uuid.UUID) error
}

type balanceCharger interface {
	Charge(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, amountCents int) error
}

type ledgerRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry models.LedgerEntry) error
}

// OutOfStockDetails is attached to OUT_OF_STOCK errors so the customer
// sees which product fell short and by how much.
type OutOfStockDetails struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// Service executes checkout orchestration.
type Service interface {
	Quote(ctx context.Context, customerID uuid.UUID, couponCode *string) (*QuoteDTO, error)
	Execute(ctx context.Context, customerID uuid.UUID, couponCode *string) (*OrderDTO, error)
}

type service struct {
	tx         txRunner
	carts      *cart.Repository
	stock      *catalog.Repository
	storefront storefrontReader
	coupons    couponValidator
	customers  balanceCharger
	ledger     ledgerRecorder
	orders     *Repository
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService wires the checkout orchestrator.
func NewService(
	tx txRunner,
	carts *cart.Repository,
	stock *catalog.Repository,
	storefront storefrontReader,
	coupons couponValidator,
	customers balanceCharger,
	ledger ledgerRecorder,
	orders *Repository,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	if storefront == nil {
		return nil, fmt.Errorf("storefront reader required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if customers == nil {
		return nil, fmt.Errorf("balance charger required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger recorder required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{
		tx:         tx,
		carts:      carts,
		stock:      stock,
		storefront: storefront,
		coupons:    coupons,
		customers:  customers,
		ledger:     ledger,
		orders:     orders,
		metrics:    checkoutMetrics,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// pricedLine is the internal snapshot of one cart line at checkout time.
type pricedLine struct {
	productID       uuid.UUID
	productName     string
	quantity        int
	unitPriceCents  int
	discountPercent int
	totalCents      int
}

// Quote prices the cart and optional coupon without touching any state,
// so a client can show the final total before the customer commits.
func (s *service) Quote(ctx context.Context, customerID uuid.UUID, couponCode *string) (*QuoteDTO, error) {
	lines, coupon, err := s.buildOrderDraft(ctx, customerID, couponCode)
	if err != nil {
		return nil, err
	}
	return newQuoteDTO(lines, coupon), nil
}

// Execute runs the full checkout: validate everything, then mutate stock,
// balance, coupon usage, orders, and the ledger inside one transaction.
// Any failure rolls the whole attempt back and leaves the cart intact.
func (s *service) Execute(ctx context.Context, customerID uuid.UUID, couponCode *string) (*OrderDTO, error) {
	started := s.now()

	order, err := s.execute(ctx, customerID, couponCode)

	if s.metrics != nil {
		if err != nil {
			code := string(pkgerrors.CodeInternal)
			if appErr := pkgerrors.As(err); appErr != nil {
				code = string(appErr.Code())
			}
			s.metrics.IncFailure(code)
			s.metrics.ObserveDuration("failure", s.now().Sub(started))
		} else {
			s.metrics.IncSuccess()
			s.metrics.ObserveDuration("success", s.now().Sub(started))
		}
	}
	return order, err
}

func (s *service) execute(ctx context.Context, customerID uuid.UUID, couponCode *string) (*OrderDTO, error) {
	lines, coupon, err := s.buildOrderDraft(ctx, customerID, couponCode)
	if err != nil {
		return nil, err
	}

	subtotal := 0
	for _, line := range lines {
		subtotal += line.totalCents
	}
	couponDiscount := 0
	var couponCodeValue *string
	if coupon != nil {
		couponDiscount = pricing.ApplyCouponDiscount(subtotal, coupon.DiscountPercent)
		code := coupon.Code
		couponCodeValue = &code
	}
	total := subtotal - couponDiscount

	order := &models.Order{
		CustomerID:          customerID,
		SubtotalCents:       subtotal,
		CouponCode:          couponCodeValue,
		CouponDiscountCents: couponDiscount,
		TotalCents:          total,
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID:       line.productID,
			Quantity:        line.quantity,
			UnitPriceCents:  line.unitPriceCents,
			DiscountPercent: line.discountPercent,
			TotalCents:      line.totalCents,
		})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txStock := s.stock.WithTx(tx)
		for _, line := range lines {
			if err := reserveStock(ctx, txStock, line); err != nil {
				return err
			}
		}

		if err := s.customers.Charge(ctx, tx, customerID, total); err != nil {
			return err
		}

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		if coupon != nil {
			if err := s.coupons.Redeem(ctx, tx, coupon.Code, customerID); err != nil {
				return err
			}
		}

		if err := s.ledger.Record(ctx, tx, models.LedgerEntry{
			CustomerID:  customerID,
			OrderID:     &order.ID,
			Type:        models.LedgerEntryTypePurchase,
			AmountCents: total,
		}); err != nil {
			return err
		}

		return s.carts.WithTx(tx).Clear(ctx, customerID)
	}); err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeCheckoutFailed, err, "checkout transaction failed")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "checkout completed")
	}
	dto := newOrderDTO(order)
	return &dto, nil
}

// buildOrderDraft loads and prices the cart, then validates the coupon.
// It performs no writes; Execute repeats the racy checks with guards
// inside the transaction.
func (s *service) buildOrderDraft(ctx context.Context, customerID uuid.UUID, couponCode *string) ([]pricedLine, *models.Coupon, error) {
	cartLines, err := s.carts.ListLines(ctx, customerID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cart lines")
	}
	if len(cartLines) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	storefrontPct, err := s.storefront.StorefrontDiscountPercent(ctx)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]pricedLine, 0, len(cartLines))
	for i := range cartLines {
		cl := &cartLines[i]
		if cl.Product == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "cart line missing product")
		}
		if cl.Product.Stock < cl.Quantity {
			return nil, nil, outOfStock(cl.Product, cl.Quantity)
		}
		categoryPct := 0
		if cl.Product.Category != nil {
			categoryPct = cl.Product.Category.DiscountPercent
		}
		pct := pricing.ResolveDiscountPercent(cl.Product.DiscountPercent, categoryPct, storefrontPct)
		priced := pricing.ComputeLine(cl.Product.PriceCents, cl.Quantity, pct)

		lines = append(lines, pricedLine{
			productID:       cl.ProductID,
			productName:     cl.Product.Name,
			quantity:        cl.Quantity,
			unitPriceCents:  cl.Product.PriceCents,
			discountPercent: pct,
			totalCents:      priced.TotalCents,
		})
	}

	var coupon *models.Coupon
	if couponCode != nil && *couponCode != "" {
		coupon, err = s.coupons.Validate(ctx, *couponCode, customerID, s.now())
		if err != nil {
			return nil, nil, err
		}
	}
	return lines, coupon, nil
}

// reserveStock performs the guarded decrement; zero rows means another
// checkout drained the product after the draft was priced.
func reserveStock(ctx context.Context, txStock *catalog.Repository, line pricedLine) error {
	affected, err := txStock.DecrementStock(ctx, line.productID, line.quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
	}
	if affected > 0 {
		return nil
	}
	product, err := txStock.FindProductByID(ctx, line.productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return outOfStock(product, line.quantity)
}

func outOfStock(product *models.Product, requested int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeOutOfStock, fmt.Sprintf("not enough stock for %q", product.Name)).
		WithDetails(OutOfStockDetails{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   requested,
			Available:   product.Stock,
		})
}
