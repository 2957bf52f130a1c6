package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/nats-io/nats.go"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/storefront/event"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
	"goflare.io/storefront/order"
)

// PaymentEventSubject carries stripe events relayed by the payment service.
const PaymentEventSubject = "payment.service.event.>"

type EventHandler func(context.Context, *stripe.Event) error

type EventManager struct {
	natsConn *nats.Conn
	handlers map[stripe.EventType]EventHandler
	logger   *zap.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn: natsConn,
		handlers: make(map[stripe.EventType]EventHandler),
		logger:   logger,
	}
}

func (em *EventManager) RegisterHandler(eventType stripe.EventType, handler EventHandler) {
	em.handlers[eventType] = handler
}

func (em *EventManager) GetHandler(eventType stripe.EventType) (EventHandler, bool) {
	handler, exists := em.handlers[eventType]
	return handler, exists
}

func (em *EventManager) SubscribeToEvents(wp *WorkerPool) error {
	sub, err := em.natsConn.Subscribe(PaymentEventSubject, func(msg *nats.Msg) {
		var event stripe.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			em.logger.Error("Failed to unmarshal event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}

		if !wp.Submit(context.Background(), &event) {
			em.logger.Warn("Worker pool closed, dropping event", zap.String("event_id", event.ID))
		}
	})
	if err != nil {
		return err
	}

	em.mu.Lock()
	em.sub = sub
	em.mu.Unlock()
	return nil
}

// Close stops the subscription; events already queued are still processed.
func (em *EventManager) Close() {
	em.mu.Lock()
	defer em.mu.Unlock()
	if em.sub == nil {
		return
	}
	if err := em.sub.Unsubscribe(); err != nil {
		em.logger.Warn("Failed to unsubscribe from events", zap.Error(err))
	}
	em.sub = nil
}

func (s *service) registerEventHandlers() {
	eventHandlers := map[stripe.EventType]EventHandler{
		// Payment Intent Events
		stripe.EventTypePaymentIntentSucceeded:     s.paymentIntentHandler(enum.OrderStatusPaid),
		stripe.EventTypePaymentIntentPaymentFailed: s.paymentIntentHandler(enum.OrderStatusFailed),
		stripe.EventTypePaymentIntentCanceled:      s.paymentIntentHandler(enum.OrderStatusCancelled),

		// Charge Events
		stripe.EventTypeChargeRefunded: s.handleChargeRefunded,
	}

	for eventType, handler := range eventHandlers {
		s.eventManager.RegisterHandler(eventType, handler)
	}
}

func (s *service) paymentIntentHandler(status enum.OrderStatus) EventHandler {
	return func(ctx context.Context, event *stripe.Event) error {
		s.logger.Info("Handling PaymentIntent event",
			zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			s.logger.Error("Failed to unmarshal PaymentIntent", zap.Error(err))
			return err
		}
		return s.applyPaymentStatus(ctx, paymentIntent.ID, status)
	}
}

func (s *service) handleChargeRefunded(ctx context.Context, event *stripe.Event) error {
	s.logger.Info("Handling charge refunded event", zap.String("event_id", event.ID))

	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		s.logger.Error("Failed to unmarshal Charge", zap.Error(err))
		return err
	}
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		s.logger.Warn("Refunded charge has no PaymentIntent", zap.String("charge_id", charge.ID))
		return nil
	}
	return s.applyPaymentStatus(ctx, charge.PaymentIntent.ID, enum.OrderStatusRefunded)
}

// applyPaymentStatus moves the order paid through paymentIntentID to status.
// Changes the order's current status does not allow are logged and skipped.
func (s *service) applyPaymentStatus(ctx context.Context, paymentIntentID string, status enum.OrderStatus) error {
	var updated *models.Order
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		updated = nil
		// 根據 PaymentIntent ID 獲取訂單
		o, err := s.order.GetByPaymentIntentID(ctx, tx, paymentIntentID)
		if err != nil {
			s.logger.Error("Order not found for PaymentIntent", zap.String("payment_intent_id", paymentIntentID), zap.Error(err))
			return err
		}

		if o.Status == status {
			return nil
		}
		if err := s.transition(ctx, tx, o, status); err != nil {
			if errors.Is(err, ErrInvalidStatusChange) {
				s.logger.Warn("Ignoring order status change", zap.Uint64("order_id", o.ID), zap.Error(err))
				return nil
			}
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}

	s.logger.Info("Order status updated", zap.Uint64("order_id", updated.ID), zap.String("status", string(status)))
	if err := s.publisher.Publish(ctx, order.SubjectStatusChanged, updated); err != nil {
		s.logger.Warn("Failed to announce order status", zap.Uint64("order_id", updated.ID), zap.Error(err))
	}
	return nil
}

// ProcessEvent runs the handler for a stripe event once. Events already marked
// processed are skipped; a failed attempt may be retried with the same id.
func (s *service) ProcessEvent(ctx context.Context, evt *stripe.Event) error {
	if existing, err := s.event.GetByID(ctx, nil, evt.ID); err == nil && existing.Processed {
		s.logger.Info("Event already processed", zap.String("event_id", evt.ID))
		return nil
	} else if err != nil && !errors.Is(err, event.ErrEventNotFound) {
		return err
	}

	handler, exists := s.eventManager.GetHandler(evt.Type)
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnsupportedEvent, evt.Type)
	}

	now := time.Now()
	if err := s.event.Create(ctx, nil, &models.Event{
		ID:        evt.ID,
		Type:      evt.Type,
		Processed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil && !errors.Is(err, event.ErrDuplicate) {
		s.logger.Error("Failed to create event", zap.Error(err))
		return err
	}

	if err := handler(ctx, evt); err != nil {
		s.logger.Error("處理事件時出錯",
			zap.String("event_id", evt.ID),
			zap.String("event_type", string(evt.Type)),
			zap.Error(err),
		)
		return err
	}

	if err := s.event.MarkAsProcessed(ctx, nil, evt.ID); err != nil {
		return err
	}

	s.logger.Info("Stripe event processed", zap.String("event_id", evt.ID))
	return nil
}
