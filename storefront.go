// Package storefront ties the per-visitor cart and session to the catalog,
// accounts and orders.
package storefront

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/nats-io/nats.go"
	"github.com/stripe/stripe-go/v79"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"goflare.io/storefront/account"
	"goflare.io/storefront/cart"
	"goflare.io/storefront/catalog"
	"goflare.io/storefront/driver"
	"goflare.io/storefront/event"
	"goflare.io/storefront/mirror"
	"goflare.io/storefront/models"
	"goflare.io/storefront/order"
)

var (
	ErrNotLoggedIn         = errors.New("login required")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrPaymentUnavailable  = errors.New("card payments are not configured")
	ErrOrderNotOwned       = errors.New("order belongs to another customer")
	ErrUnsupportedEvent    = errors.New("no handler registered for event type")
	ErrInvalidStatusChange = errors.New("invalid order status change")
)

// Notifier receives the nav-bar state of a visitor after every change.
type Notifier interface {
	NotifyNav(visitorID string, nav models.NavState)
}

type nopNotifier struct{}

func (nopNotifier) NotifyNav(string, models.NavState) {}

type Service interface {
	AddToCart(ctx context.Context, visitorID string, productID uint64, quantity int64) (models.CartView, error)
	UpdateCartQuantity(ctx context.Context, visitorID string, productID uint64, quantity int64) (models.CartView, error)
	RemoveFromCart(ctx context.Context, visitorID string, productID uint64) models.CartView
	Cart(ctx context.Context, visitorID string) models.CartView
	Nav(ctx context.Context, visitorID string) models.NavState

	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, visitorID, email, password string) (models.Session, error)
	Logout(ctx context.Context, visitorID string) models.Session
	Session(ctx context.Context, visitorID string) models.Session

	Checkout(ctx context.Context, visitorID string, req models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, visitorID string, orderID uint64) (*models.Order, error)
	ListOrders(ctx context.Context, visitorID string, limit, offset uint64) ([]models.Order, error)

	ProcessEvent(ctx context.Context, event *stripe.Event) error
	Sweep(idle time.Duration) int
	Shutdown()
}

// Deps are the collaborators of the storefront service. Gateway, Publisher,
// Notifier and NATS are optional.
type Deps struct {
	Catalog  *catalog.Service
	Products catalog.Repository
	Accounts *account.Service
	Orders   order.Repository
	Events   event.Repository
	Tx       driver.Transactor
	Mirror   mirror.Store

	Gateway   order.PaymentGateway
	Publisher order.Publisher
	Notifier  Notifier
	NATS      *nats.Conn

	Workers int
	Logger  *zap.Logger
}

type service struct {
	catalog  *catalog.Service
	products catalog.Repository
	accounts *account.Service
	order    order.Repository
	event    event.Repository
	mirror   mirror.Store

	gateway   order.PaymentGateway
	publisher order.Publisher
	notifier  Notifier

	transactionManager driver.Transactor
	eventManager       *EventManager
	workerPool         *WorkerPool
	visitors           *visitors

	tracer trace.Tracer
	logger *zap.Logger
}

func NewService(d Deps) Service {
	s := &service{
		catalog:            d.Catalog,
		products:           d.Products,
		accounts:           d.Accounts,
		order:              d.Orders,
		event:              d.Events,
		mirror:             d.Mirror,
		gateway:            d.Gateway,
		publisher:          d.Publisher,
		notifier:           d.Notifier,
		transactionManager: d.Tx,
		visitors:           newVisitors(),
		tracer:             otel.Tracer("goflare.io/storefront"),
		logger:             d.Logger,
	}
	if s.publisher == nil {
		s.publisher = order.NopPublisher{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if d.Workers <= 0 {
		d.Workers = 10
	}

	s.eventManager = NewEventManager(d.NATS, d.Logger)
	s.workerPool = NewWorkerPool(d.Workers, s, d.Logger)
	s.registerEventHandlers()

	// 訂閱事件
	if d.NATS != nil {
		if err := s.eventManager.SubscribeToEvents(s.workerPool); err != nil {
			d.Logger.Error("Failed to subscribe to events", zap.Error(err))
		}
	}

	return s
}

// withVisitor runs fn while holding the visitor's lock. Whichever call takes the
// lock first on a new visitor seeds its cart from the mirror.
func (s *service) withVisitor(ctx context.Context, visitorID string, fn func(v *visitor)) {
	v, _ := s.visitors.acquire(visitorID)
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.seeded {
		if items, ok := s.mirror.LoadCart(ctx, visitorID); ok {
			v.cart = cart.Restore(items)
		}
		v.seeded = true
	}
	fn(v)
}

// changed mirrors the cart and pushes the nav state. Caller holds v.mu.
func (s *service) changed(ctx context.Context, visitorID string, v *visitor) {
	s.mirror.SaveCart(ctx, visitorID, v.cart.Items())
	s.notifier.NotifyNav(visitorID, navOf(v))
}

func navOf(v *visitor) models.NavState {
	sess := v.session.State()
	return models.NavState{
		IsLoggedIn: sess.IsLoggedIn,
		UserName:   sess.UserName,
		CartCount:  cart.Count(v.cart.Items()),
	}
}

func viewOf(v *visitor) models.CartView {
	items := v.cart.Items()
	return models.CartView{Items: items, Summary: cart.Summarize(items)}
}

func (s *service) AddToCart(ctx context.Context, visitorID string, productID uint64, quantity int64) (models.CartView, error) {
	if quantity < 1 {
		return models.CartView{}, ErrInvalidQuantity
	}
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return models.CartView{}, err
	}

	var view models.CartView
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		v.cart.AddItem(product.LineItem(quantity))
		s.changed(ctx, visitorID, v)
		view = viewOf(v)
	})
	return view, nil
}

func (s *service) UpdateCartQuantity(ctx context.Context, visitorID string, productID uint64, quantity int64) (models.CartView, error) {
	if quantity < 1 {
		return models.CartView{}, ErrInvalidQuantity
	}

	var view models.CartView
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		v.cart.UpdateQuantity(productID, quantity)
		s.changed(ctx, visitorID, v)
		view = viewOf(v)
	})
	return view, nil
}

func (s *service) RemoveFromCart(ctx context.Context, visitorID string, productID uint64) models.CartView {
	var view models.CartView
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		v.cart.RemoveItem(productID)
		s.changed(ctx, visitorID, v)
		view = viewOf(v)
	})
	return view
}

func (s *service) Cart(ctx context.Context, visitorID string) models.CartView {
	var view models.CartView
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		view = viewOf(v)
	})
	return view
}

func (s *service) Nav(ctx context.Context, visitorID string) models.NavState {
	var nav models.NavState
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		nav = navOf(v)
	})
	return nav
}

func (s *service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	return s.accounts.Signup(ctx, req)
}

func (s *service) Login(ctx context.Context, visitorID, email, password string) (models.Session, error) {
	name, err := s.accounts.Verify(ctx, email, password)
	if err != nil {
		return models.Session{}, err
	}

	var sess models.Session
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		v.session.Login(name)
		v.email = account.NormalizeEmail(email)
		s.mirror.SaveSession(ctx, visitorID, mirror.Record{IsLoggedIn: true, UserEmail: v.email})
		s.notifier.NotifyNav(visitorID, navOf(v))
		sess = v.session.State()
	})

	s.logger.Info("Visitor logged in", zap.String("visitor_id", visitorID))
	return sess, nil
}

func (s *service) Logout(ctx context.Context, visitorID string) models.Session {
	var sess models.Session
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		v.session.Logout()
		v.email = ""
		s.mirror.DeleteSession(ctx, visitorID)
		s.notifier.NotifyNav(visitorID, navOf(v))
		sess = v.session.State()
	})
	return sess
}

func (s *service) Session(ctx context.Context, visitorID string) models.Session {
	var sess models.Session
	s.withVisitor(ctx, visitorID, func(v *visitor) {
		sess = v.session.State()
	})
	return sess
}

func (s *service) Sweep(idle time.Duration) int {
	removed := s.visitors.sweep(idle)
	if removed > 0 {
		s.logger.Debug("Swept idle visitors", zap.Int("removed", removed))
	}
	return removed
}

func (s *service) Shutdown() {
	s.eventManager.Close()
	s.workerPool.Shutdown()
}
