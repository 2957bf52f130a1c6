package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"goflare.io/storefront/account"
	"goflare.io/storefront/catalog"
	"goflare.io/storefront/event"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
	"goflare.io/storefront/order"
)

type fakeTx struct{}

func (fakeTx) ExecuteTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeProducts struct {
	mu    sync.Mutex
	stock map[uint64]int64
}

func newFakeProducts() *fakeProducts {
	p := &fakeProducts{stock: make(map[uint64]int64)}
	for _, prod := range catalog.Fallback() {
		p.stock[prod.ID] = prod.Stock
	}
	return p
}

func (p *fakeProducts) List(context.Context, pgx.Tx) ([]models.Product, error) {
	return catalog.Fallback(), nil
}

func (p *fakeProducts) GetByID(_ context.Context, _ pgx.Tx, id uint64) (*models.Product, error) {
	for _, prod := range catalog.Fallback() {
		if prod.ID == id {
			return &prod, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (p *fakeProducts) ReduceStock(_ context.Context, _ pgx.Tx, changes []catalog.StockChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range changes {
		if p.stock[c.ProductID] < c.Quantity {
			return catalog.ErrInsufficientStock
		}
	}
	for _, c := range changes {
		p.stock[c.ProductID] -= c.Quantity
	}
	return nil
}

func (p *fakeProducts) RestoreStock(_ context.Context, _ pgx.Tx, changes []catalog.StockChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range changes {
		p.stock[c.ProductID] += c.Quantity
	}
	return nil
}

func (p *fakeProducts) level(id uint64) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stock[id]
}

type fakeOrders struct {
	mu           sync.Mutex
	nextID       uint64
	orders       map[uint64]*models.Order
	setIntentErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[uint64]*models.Order)}
}

func (f *fakeOrders) Create(_ context.Context, _ pgx.Tx, o *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := *o
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	c.Items = make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.ID = uint64(i + 1)
		item.OrderID = c.ID
		c.Items[i] = item
	}
	stored := c
	f.orders[c.ID] = &stored
	return &c, nil
}

func (f *fakeOrders) find(match func(*models.Order) bool) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if match(o) {
			c := *o
			return &c, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (f *fakeOrders) GetByID(_ context.Context, _ pgx.Tx, id uint64) (*models.Order, error) {
	return f.find(func(o *models.Order) bool { return o.ID == id })
}

func (f *fakeOrders) GetByReference(_ context.Context, _ pgx.Tx, ref string) (*models.Order, error) {
	return f.find(func(o *models.Order) bool { return o.Reference == ref })
}

func (f *fakeOrders) GetByPaymentIntentID(_ context.Context, _ pgx.Tx, id string) (*models.Order, error) {
	return f.find(func(o *models.Order) bool { return o.PaymentIntentID == id })
}

func (f *fakeOrders) ListByCustomer(_ context.Context, _ pgx.Tx, email string, limit, offset uint64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for id := uint64(1); id <= f.nextID; id++ {
		if o, ok := f.orders[id]; ok && o.CustomerEmail == email {
			out = append(out, *o)
		}
	}
	if offset >= uint64(len(out)) {
		return nil, nil
	}
	out = out[offset:]
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status enum.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) SetPaymentIntent(_ context.Context, _ pgx.Tx, id uint64, intent string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setIntentErr != nil {
		return f.setIntentErr
	}
	o, ok := f.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.PaymentIntentID = intent
	return nil
}

func (f *fakeOrders) ListItems(_ context.Context, _ pgx.Tx, id uint64) ([]models.OrderItem, error) {
	o, err := f.GetByID(context.Background(), nil, id)
	if err != nil {
		return nil, err
	}
	return o.Items, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events map[string]*models.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: make(map[string]*models.Event)}
}

func (f *fakeEvents) Create(_ context.Context, _ pgx.Tx, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; ok {
		return event.ErrDuplicate
	}
	c := *e
	f.events[e.ID] = &c
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, _ pgx.Tx, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEvents) MarkAsProcessed(_ context.Context, _ pgx.Tx, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return event.ErrEventNotFound
	}
	e.Processed = true
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]models.User)}
}

func (f *fakeUsers) Create(_ context.Context, _ pgx.Tx, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := account.NormalizeEmail(u.Email)
	if _, ok := f.users[key]; ok {
		return account.ErrEmailTaken
	}
	u.ID = uint64(len(f.users) + 1)
	f.users[key] = *u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, _ pgx.Tx, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[account.NormalizeEmail(email)]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return &u, nil
}

type fakeGateway struct {
	mu        sync.Mutex
	err       error
	created   []string
	cancelled []string
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, o *models.Order, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	id := "pi_" + o.Reference
	g.created = append(g.created, id)
	return id, nil
}

func (g *fakeGateway) CancelPaymentIntent(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = append(g.cancelled, id)
	return nil
}

type published struct {
	subject string
	status  enum.OrderStatus
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, o *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject: subject, status: o.Status})
	return nil
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type recordingNotifier struct {
	mu   sync.Mutex
	last map[string]models.NavState
}

func (n *recordingNotifier) NotifyNav(visitorID string, nav models.NavState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		n.last = make(map[string]models.NavState)
	}
	n.last[visitorID] = nav
}

func (n *recordingNotifier) get(visitorID string) models.NavState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last[visitorID]
}
