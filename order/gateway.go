package order

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"goflare.io/storefront/models"
)

// PaymentGateway opens a card payment for an order and returns the provider's intent id.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, order *models.Order, paymentMethodID string) (string, error)
	CancelPaymentIntent(ctx context.Context, paymentIntentID string) error
}

var _ PaymentGateway = (*StripeGateway)(nil)

type StripeGateway struct {
	api      *client.API
	currency stripe.Currency
	logger   *zap.Logger
}

func NewStripeGateway(secretKey string, currency stripe.Currency, logger *zap.Logger) *StripeGateway {
	if currency == "" {
		currency = stripe.CurrencyUSD
	}
	return &StripeGateway{
		api:      client.New(secretKey, nil),
		currency: currency,
		logger:   logger,
	}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, order *models.Order, paymentMethodID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(MinorUnits(order.Total)),
		Currency:     stripe.String(string(g.currency)),
		ReceiptEmail: stripe.String(order.CustomerEmail),
		Description:  stripe.String("Order " + order.Reference),
	}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.FormatUint(order.ID, 10))
	params.AddMetadata("order_reference", order.Reference)
	params.SetIdempotencyKey("order-" + order.Reference)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error("Failed to create payment intent", zap.String("reference", order.Reference), zap.Error(err))
		return "", err
	}
	return pi.ID, nil
}

func (g *StripeGateway) CancelPaymentIntent(ctx context.Context, paymentIntentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.api.PaymentIntents.Cancel(paymentIntentID, params); err != nil {
		g.logger.Error("Failed to cancel payment intent", zap.String("payment_intent_id", paymentIntentID), zap.Error(err))
		return err
	}
	return nil
}

// MinorUnits converts an amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
