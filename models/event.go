package models

import (
	"time"

	"github.com/stripe/stripe-go/v79"
)

type Event struct {
	ID        string           `json:"id"`
	Type      stripe.EventType `json:"type"`
	Processed bool             `json:"processed"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// OrderEvent is published on NATS whenever an order changes state.
type OrderEvent struct {
	OrderID   uint64    `json:"order_id"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	At        time.Time `json:"at"`
}
