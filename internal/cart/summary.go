package cart

import (
	"github.com/shopspring/decimal"

	"github.com/mercagoods/storefront-backend/pkg/config"
)

// Summary is the derived monetary rollup of a cart. It is never mutated
// directly: every change to the item list recomputes it from scratch.
type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	TotalItems int             `json:"total_items"`
}

// Pricing holds the constants the summary computation depends on.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFlatFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// PricingFromConfig converts the float-valued config section into decimals.
func PricingFromConfig(cfg config.CartConfig) Pricing {
	return Pricing{
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
		ShippingFlatFee:       decimal.NewFromFloat(cfg.ShippingFlatFee),
		FreeShippingThreshold: decimal.NewFromFloat(cfg.FreeShippingThreshold),
	}
}

// ZeroSummary returns the summary of an empty cart.
func ZeroSummary() Summary {
	return Summary{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// ComputeSummary derives the full summary from the item list. Discount is
// reserved for future coupon logic and is always zero. Shipping is free for
// an empty cart or once the subtotal reaches the free-shipping threshold.
func ComputeSummary(items []LineItem, pricing Pricing) Summary {
	subtotal := decimal.Zero
	totalItems := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		totalItems += item.Quantity
	}

	discount := decimal.Zero
	tax := subtotal.Sub(discount).Mul(pricing.TaxRate).Round(2)

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(pricing.FreeShippingThreshold) {
		shipping = pricing.ShippingFlatFee
	}

	return Summary{
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		Shipping:   shipping,
		Total:      subtotal.Sub(discount).Add(tax).Add(shipping),
		ItemCount:  len(items),
		TotalItems: totalItems,
	}
}
