package models

import (
	"github.com/shopspring/decimal"
)

// LineItem 代表購物車中的單個商品項目
type LineItem struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int64           `json:"quantity"`
}

// Subtotal returns price * quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(li.Quantity))
}

// CartSummary 購物車金額摘要
type CartSummary struct {
	ItemCount int64           `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// CartView is what the display layer renders for a cart page.
type CartView struct {
	Items   []LineItem  `json:"items"`
	Summary CartSummary `json:"summary"`
}
