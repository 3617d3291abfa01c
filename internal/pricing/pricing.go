package pricing

// Percent bounds for every discount source.
const (
	MinDiscountPercent = 0
	MaxDiscountPercent = 100
)

// Line is the priced result for a single cart position.
type Line struct {
	BaseCents       int
	DiscountPercent int
	DiscountCents   int
	TotalCents      int
}

// ClampPercent forces a discount percentage into the [0, 100] range.
func ClampPercent(percent int) int {
	if percent < MinDiscountPercent {
		return MinDiscountPercent
	}
	if percent > MaxDiscountPercent {
		return MaxDiscountPercent
	}
	return percent
}

// ResolveDiscountPercent picks the effective discount for a product.
// The sources never stack: the largest of the product's own discount,
// its category discount, and the storefront-wide discount wins.
func ResolveDiscountPercent(productPercent, categoryPercent, storefrontPercent int) int {
	best := ClampPercent(productPercent)
	if p := ClampPercent(categoryPercent); p > best {
		best = p
	}
	if p := ClampPercent(storefrontPercent); p > best {
		best = p
	}
	return best
}

// ComputeLine prices quantity units at unitPriceCents with the given
// discount percent. Discounts round down, so the customer-facing total
// is never lower than the exact value.
func ComputeLine(unitPriceCents, quantity, discountPercent int) Line {
	pct := ClampPercent(discountPercent)
	base := unitPriceCents * quantity
	discount := base * pct / 100
	return Line{
		BaseCents:       base,
		DiscountPercent: pct,
		DiscountCents:   discount,
		TotalCents:      base - discount,
	}
}

// ApplyCouponDiscount returns the coupon discount for a subtotal in
// cents, again rounding down.
func ApplyCouponDiscount(subtotalCents, discountPercent int) int {
	return subtotalCents * ClampPercent(discountPercent) / 100
}
