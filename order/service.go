package order

import (
	"strings"

	"github.com/google/uuid"

	"goflare.io/storefront/catalog"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

// Customer identifies who places an order.
type Customer struct {
	Email string
	Name  string
}

// NewReference returns a short human readable order reference.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SF-" + strings.ToUpper(id[:12])
}

// Build snapshots the cart lines and summary into a pending order.
func Build(customer Customer, items []models.LineItem, summary models.CartSummary, req models.CheckoutRequest) *models.Order {
	o := &models.Order{
		Reference:       NewReference(),
		CustomerEmail:   customer.Email,
		CustomerName:    customer.Name,
		Status:          enum.OrderStatusPending,
		PaymentMethod:   req.Payment.Method,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Tax:             summary.Tax,
		Total:           summary.Total,
		ShippingAddress: req.Shipping,
		Items:           make([]models.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  item.Subtotal(),
		})
	}
	return o
}

// StockChanges lists the stock movements an order's items represent.
func StockChanges(items []models.OrderItem) []catalog.StockChange {
	changes := make([]catalog.StockChange, 0, len(items))
	for _, item := range items {
		changes = append(changes, catalog.StockChange{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return changes
}
