package cart

import (
	"github.com/shopspring/decimal"

	"goflare.io/storefront/models"
)

var (
	// ShippingFee 訂單小計大於零時收取的運費
	ShippingFee = decimal.RequireFromString("5.99")
	// TaxRate 稅率 8%
	TaxRate = decimal.RequireFromString("0.08")
)

// Summarize computes the totals shown on the cart and checkout pages.
func Summarize(items []models.LineItem) models.CartSummary {
	subtotal := decimal.Zero
	var count int64
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
		count += item.Quantity
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = ShippingFee
	}
	tax := subtotal.Mul(TaxRate).Round(2)

	return models.CartSummary{
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal.Add(shipping).Add(tax),
	}
}

// Count returns the total number of units in the cart.
func Count(items []models.LineItem) int64 {
	var n int64
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
