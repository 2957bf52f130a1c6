package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"goflare.io/storefront/models"
)

const (
	SubjectCreated       = "storefront.order.created"
	SubjectStatusChanged = "storefront.order.status"
)

// Publisher announces order lifecycle changes.
type Publisher interface {
	Publish(ctx context.Context, subject string, order *models.Order) error
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewPublisher(conn *nats.Conn, logger *zap.Logger) Publisher {
	if conn == nil {
		return NopPublisher{}
	}
	return &natsPublisher{conn: conn, logger: logger}
}

func (p *natsPublisher) Publish(_ context.Context, subject string, order *models.Order) error {
	data, err := json.Marshal(models.OrderEvent{
		OrderID:   order.ID,
		Reference: order.Reference,
		Status:    string(order.Status),
		Total:     order.Total.StringFixed(2),
		At:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish order event", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}

// NopPublisher drops every event. Used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *models.Order) error { return nil }
