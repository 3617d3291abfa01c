package checkout

import (
	"time"

	"github.com/arscode/arscode-backend/internal/pricing"
	"github.com/arscode/arscode-backend/pkg/db/models"
	"github.com/google/uuid"
)

// OrderLineDTO is the API-facing snapshot of one purchased item.
type OrderLineDTO struct {
	ProductID       uuid.UUID `json:"product_id"`
	Quantity        int       `json:"quantity"`
	UnitPriceCents  int       `json:"unit_price_cents"`
	DiscountPercent int       `json:"discount_percent"`
	TotalCents      int       `json:"total_cents"`
}

// OrderDTO is the API-facing shape of a completed order.
type OrderDTO struct {
	ID                  uuid.UUID      `json:"id"`
	CustomerID          uuid.UUID      `json:"customer_id"`
	SubtotalCents       int            `json:"subtotal_cents"`
	CouponCode          *string        `json:"coupon_code,omitempty"`
	CouponDiscountCents int            `json:"coupon_discount_cents"`
	TotalCents          int            `json:"total_cents"`
	Lines               []OrderLineDTO `json:"lines"`
	CreatedAt           time.Time      `json:"created_at"`
}

func newOrderDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:                  order.ID,
		CustomerID:          order.CustomerID,
		SubtotalCents:       order.SubtotalCents,
		CouponCode:          order.CouponCode,
		CouponDiscountCents: order.CouponDiscountCents,
		TotalCents:          order.TotalCents,
		CreatedAt:           order.CreatedAt,
	}
	for _, line := range order.Lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPriceCents:  line.UnitPriceCents,
			DiscountPercent: line.DiscountPercent,
			TotalCents:      line.TotalCents,
		})
	}
	return dto
}

// QuoteLineDTO is one priced position of a quote.
type QuoteLineDTO struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	UnitPriceCents  int       `json:"unit_price_cents"`
	DiscountPercent int       `json:"discount_percent"`
	TotalCents      int       `json:"total_cents"`
}

// QuoteDTO is the side-effect-free preview of a checkout.
type QuoteDTO struct {
	Lines               []QuoteLineDTO `json:"lines"`
	SubtotalCents       int            `json:"subtotal_cents"`
	CouponCode          *string        `json:"coupon_code,omitempty"`
	CouponDiscountCents int            `json:"coupon_discount_cents"`
	TotalCents          int            `json:"total_cents"`
}

func newQuoteDTO(lines []pricedLine, coupon *models.Coupon) *QuoteDTO {
	dto := &QuoteDTO{Lines: make([]QuoteLineDTO, 0, len(lines))}
	for _, line := range lines {
		dto.Lines = append(dto.Lines, QuoteLineDTO{
			ProductID:       line.productID,
			ProductName:     line.productName,
			Quantity:        line.quantity,
			UnitPriceCents:  line.unitPriceCents,
			DiscountPercent: line.discountPercent,
			TotalCents:      line.totalCents,
		})
		dto.SubtotalCents += line.totalCents
	}
	if coupon != nil {
		code := coupon.Code
		dto.CouponCode = &code
		dto.CouponDiscountCents = pricing.ApplyCouponDiscount(dto.SubtotalCents, coupon.DiscountPercent)
	}
	dto.TotalCents = dto.SubtotalCents - dto.CouponDiscountCents
	return dto
}
