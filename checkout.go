package storefront

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"goflare.io/storefront/cart"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
	"goflare.io/storefront/order"
)

// Checkout turns the visitor's cart into an order. On success every line is
// removed from the cart; on failure the cart is left as it was.
func (s *service) Checkout(ctx context.Context, visitorID string, req models.CheckoutRequest) (created *models.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "storefront.Checkout",
		trace.WithAttributes(attribute.String("payment.method", string(req.Payment.Method))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.withVisitor(ctx, visitorID, func(v *visitor) {
		created, err = s.checkout(ctx, visitorID, v, req)
	})
	if created != nil {
		span.SetAttributes(attribute.String("order.reference", created.Reference))
	}
	return created, err
}

func (s *service) checkout(ctx context.Context, visitorID string, v *visitor, req models.CheckoutRequest) (*models.Order, error) {
	sess := v.session.State()
	if !sess.IsLoggedIn {
		return nil, ErrNotLoggedIn
	}
	items := v.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Payment.Method == enum.PaymentMethodCard && s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	draft := order.Build(order.Customer{Email: v.email, Name: sess.UserName}, items, cart.Summarize(items), req)

	var created *models.Order
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		// 扣除庫存
		if err := s.products.ReduceStock(ctx, tx, order.StockChanges(draft.Items)); err != nil {
			return fmt.Errorf("failed to reduce stock: %w", err)
		}

		o, err := s.order.Create(ctx, tx, draft)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		created = o
		return nil
	})
	if err != nil {
		s.logger.Error("Checkout failed", zap.String("visitor_id", visitorID), zap.Error(err))
		return nil, err
	}

	if req.Payment.Method == enum.PaymentMethodCard {
		if err := s.attachPayment(ctx, created, req.Payment.PaymentMethodID); err != nil {
			return nil, err
		}
	}

	if err := s.publisher.Publish(ctx, order.SubjectCreated, created); err != nil {
		s.logger.Warn("Failed to announce order", zap.String("reference", created.Reference), zap.Error(err))
	}

	// 逐項移除購物車內容
	for _, item := range items {
		v.cart.RemoveItem(item.ID)
	}
	s.changed(ctx, visitorID, v)

	s.logger.Info("Order placed",
		zap.String("reference", created.Reference),
		zap.Uint64("order_id", created.ID),
		zap.String("total", created.Total.StringFixed(2)))

	return created, nil
}

// attachPayment opens the card payment for a freshly created order. When the
// gateway refuses, the order is marked failed and its stock released.
func (s *service) attachPayment(ctx context.Context, o *models.Order, paymentMethodID string) error {
	intentID, err := s.gateway.CreatePaymentIntent(ctx, o, paymentMethodID)
	if err == nil {
		if err = s.order.SetPaymentIntent(ctx, nil, o.ID, intentID); err == nil {
			o.PaymentIntentID = intentID
			return nil
		}
		// 訂單未記錄此付款，取消以免重複扣款
		if cerr := s.gateway.CancelPaymentIntent(ctx, intentID); cerr != nil {
			s.logger.Error("Failed to cancel orphaned payment intent",
				zap.String("payment_intent_id", intentID), zap.Error(cerr))
		}
	}

	payErr := fmt.Errorf("failed to create payment: %w", err)
	base := *o
	if cerr := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		attempt := base
		return s.transition(ctx, tx, &attempt, enum.OrderStatusFailed)
	}); cerr != nil {
		s.logger.Error("Failed to release order after payment error",
			zap.String("reference", o.Reference), zap.Error(cerr))
		return fmt.Errorf("%w (release failed: %v)", payErr, cerr)
	}
	o.Status = enum.OrderStatusFailed
	return payErr
}

// transition moves o to next inside tx, moving stock when the order starts or
// stops holding it.
func (s *service) transition(ctx context.Context, tx pgx.Tx, o *models.Order, next enum.OrderStatus) error {
	if !o.AllowChangeStatus(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, o.Status, next)
	}

	changes := order.StockChanges(o.Items)
	switch {
	case !models.ReleasesStock(o.Status) && models.ReleasesStock(next):
		if err := s.products.RestoreStock(ctx, tx, changes); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	case models.ReleasesStock(o.Status) && !models.ReleasesStock(next):
		if err := s.products.ReduceStock(ctx, tx, changes); err != nil {
			return fmt.Errorf("failed to reduce stock: %w", err)
		}
	}

	if err := s.order.UpdateStatus(ctx, tx, o.ID, next); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	o.Status = next
	return nil
}

func (s *service) GetOrder(ctx context.Context, visitorID string, orderID uint64) (*models.Order, error) {
	email, err := s.customer(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	o, err := s.order.GetByID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerEmail != email {
		return nil, ErrOrderNotOwned
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, visitorID string, limit, offset uint64) ([]models.Order, error) {
	email, err := s.customer(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	switch {
	case limit == 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	return s.order.ListByCustomer(ctx, nil, email, limit, offset)
}

// customer returns the email of the logged in visitor.
func (s *service) customer(ctx context.Context, visitorID string) (string, error) {
	var email string
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		if v.session.State().IsLoggedIn {
			email = v.email
		}
	})
	if email == "" {
		return "", ErrNotLoggedIn
	}
	return email, nil
}
