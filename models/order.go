package models

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"goflare.io/storefront/models/enum"
)

// Order 代表訂單
type Order struct {
	ID              uint64             `json:"id"`
	Reference       string             `json:"reference"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerName    string             `json:"customer_name"`
	Status          enum.OrderStatus   `json:"status"`
	PaymentMethod   enum.PaymentMethod `json:"payment_method"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Shipping        decimal.Decimal    `json:"shipping"`
	Tax             decimal.Decimal    `json:"tax"`
	Total           decimal.Decimal    `json:"total"`
	PaymentIntentID string             `json:"payment_intent_id,omitempty"`
	ShippingAddress ShippingDetails    `json:"shipping_address"`
	Items           []OrderItem        `json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// OrderItem 代表訂單中的單個商品項目
type OrderItem struct {
	ID        uint64          `json:"id"`
	OrderID   uint64          `json:"order_id"`
	ProductID uint64          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ShippingDetails 收件資訊
type ShippingDetails struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

// PaymentDetails 付款資訊
type PaymentDetails struct {
	Method          enum.PaymentMethod `json:"method"`
	PaymentMethodID string             `json:"payment_method_id,omitempty"`
}

// CheckoutRequest is the order submission form.
type CheckoutRequest struct {
	Shipping ShippingDetails `json:"shipping"`
	Payment  PaymentDetails  `json:"payment"`
}

var (
	ErrMissingShipping      = errors.New("shipping details are incomplete")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// Validate checks the submitted shipping and payment details.
func (r *CheckoutRequest) Validate() error {
	s := r.Shipping
	if s.FullName == "" || s.Address == "" || s.City == "" || s.PostalCode == "" || s.Phone == "" {
		return ErrMissingShipping
	}
	if !r.Payment.Method.Valid() {
		return ErrUnknownPaymentMethod
	}
	return nil
}

// AllowChangeStatus reports whether the order may move to the given status.
func (o *Order) AllowChangeStatus(next enum.OrderStatus) bool {
	switch o.Status {
	case enum.OrderStatusPending:
		return next == enum.OrderStatusPaid || next == enum.OrderStatusFailed || next == enum.OrderStatusCancelled
	case enum.OrderStatusFailed:
		return next == enum.OrderStatusPaid || next == enum.OrderStatusCancelled
	case enum.OrderStatusPaid:
		return next == enum.OrderStatusRefunded || next == enum.OrderStatusCompleted
	default:
		return false
	}
}

// ReleasesStock reports whether moving to status returns the items to stock.
func ReleasesStock(status enum.OrderStatus) bool {
	return status == enum.OrderStatusFailed || status == enum.OrderStatusCancelled || status == enum.OrderStatusRefunded
}
