package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"goflare.io/storefront/cache"
	"goflare.io/storefront/driver"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

var ErrOrderNotFound = errors.New("order not found")

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, tx pgx.Tx, orderID uint64) (*models.Order, error)
	GetByReference(ctx context.Context, tx pgx.Tx, reference string) (*models.Order, error)
	GetByPaymentIntentID(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, tx pgx.Tx, email string, limit, offset uint64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uint64, status enum.OrderStatus) error
	SetPaymentIntent(ctx context.Context, tx pgx.Tx, orderID uint64, paymentIntentID string) error
	ListItems(ctx context.Context, tx pgx.Tx, orderID uint64) ([]models.OrderItem, error)
}

type repository struct {
	conn   driver.PostgresPool
	cache  cache.Cache
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, cache cache.Cache, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		cache:  cache,
		logger: logger,
	}
}

const orderColumns = `id, reference, customer_email, customer_name, status, payment_method,
	subtotal::text, shipping::text, tax::text, total::text,
	COALESCE(payment_intent_id, ''), shipping_address, created_at, updated_at`

func orderKey(orderID uint64) string { return fmt.Sprintf("order:%d", orderID) }

func itemsKey(orderID uint64) string { return fmt.Sprintf("order_items:%d", orderID) }

func (r *repository) Create(ctx context.Context, tx pgx.Tx, order *models.Order) (*models.Order, error) {
	q := driver.Use(r.conn, tx)

	var paymentIntent *string
	if order.PaymentIntentID != "" {
		paymentIntent = &order.PaymentIntentID
	}

	rows, err := q.Query(ctx, `INSERT INTO orders
		(reference, customer_email, customer_name, status, payment_method, subtotal, shipping, tax, total, payment_intent_id, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11)
		RETURNING `+orderColumns,
		order.Reference, order.CustomerEmail, order.CustomerName, string(order.Status), string(order.PaymentMethod),
		order.Subtotal.StringFixed(2), order.Shipping.StringFixed(2), order.Tax.StringFixed(2), order.Total.StringFixed(2),
		paymentIntent, order.ShippingAddress,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return nil, err
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		r.logger.Error("Failed to scan created order", zap.Error(err))
		return nil, err
	}

	if len(order.Items) > 0 {
		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(`INSERT INTO order_items (order_id, product_id, name, quantity, unit_price, subtotal)
				VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric) RETURNING id`,
				int64(created.ID), int64(item.ProductID), item.Name, item.Quantity,
				item.UnitPrice.StringFixed(2), item.Subtotal.StringFixed(2))
		}
		results := q.SendBatch(ctx, batch)
		created.Items = make([]models.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			var id int64
			if err := results.QueryRow().Scan(&id); err != nil {
				_ = results.Close()
				r.logger.Error("Failed to add order items", zap.Uint64("order_id", created.ID), zap.Error(err))
				return nil, err
			}
			item.ID = uint64(id)
			item.OrderID = created.ID
			created.Items = append(created.Items, item)
		}
		if err := results.Close(); err != nil {
			r.logger.Error("failed to close batch", zap.Error(err))
			return nil, err
		}
	}

	// 交易尚未提交，不寫入快取
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, orderID uint64) (*models.Order, error) {
	cacheKey := orderKey(orderID)
	var order models.Order

	// 嘗試從快取中獲取
	if tx == nil {
		found, err := r.cache.Get(ctx, cacheKey, &order)
		if err != nil {
			r.logger.Warn("Failed to get order from cache", zap.Error(err))
		}
		if found {
			return &order, nil
		}
	}

	loaded, err := r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, int64(orderID))
	if err != nil {
		return nil, err
	}

	// 更新快取
	if tx == nil {
		if err := r.cache.Set(ctx, cacheKey, loaded, 30*time.Minute); err != nil {
			r.logger.Warn("Failed to cache order", zap.Error(err))
		}
	}

	return loaded, nil
}

func (r *repository) GetByReference(ctx context.Context, tx pgx.Tx, reference string) (*models.Order, error) {
	return r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE reference = $1`, reference)
}

func (r *repository) GetByPaymentIntentID(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*models.Order, error) {
	return r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, paymentIntentID)
}

func (r *repository) getOne(ctx context.Context, tx pgx.Tx, query string, arg any) (*models.Order, error) {
	rows, err := driver.Use(r.conn, tx).Query(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to get order", zap.Any("key", arg), zap.Error(err))
		return nil, err
	}
	order, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		r.logger.Error("Failed to scan order", zap.Any("key", arg), zap.Error(err))
		return nil, err
	}

	order.Items, err = r.ListItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCustomer(ctx context.Context, tx pgx.Tx, email string, limit, offset uint64) ([]models.Order, error) {
	rows, err := driver.Use(r.conn, tx).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_email = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		email, int64(limit), int64(offset))
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		r.logger.Error("Failed to scan orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uint64, status enum.OrderStatus) error {
	return r.update(ctx, tx, orderID, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, string(status))
}

func (r *repository) SetPaymentIntent(ctx context.Context, tx pgx.Tx, orderID uint64, paymentIntentID string) error {
	return r.update(ctx, tx, orderID, `UPDATE orders SET payment_intent_id = $2, updated_at = now() WHERE id = $1`, paymentIntentID)
}

func (r *repository) update(ctx context.Context, tx pgx.Tx, orderID uint64, query string, arg any) error {
	tag, err := driver.Use(r.conn, tx).Exec(ctx, query, int64(orderID), arg)
	if err != nil {
		r.logger.Error("Failed to update order", zap.Uint64("order_id", orderID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	// 使相關的快取失效
	r.invalidateOrderCache(ctx, orderID)
	return nil
}

func (r *repository) ListItems(ctx context.Context, tx pgx.Tx, orderID uint64) ([]models.OrderItem, error) {
	cacheKey := itemsKey(orderID)
	var items []models.OrderItem

	// 訂單項目建立後不再變動
	found, err := r.cache.Get(ctx, cacheKey, &items)
	if err != nil {
		r.logger.Warn("Failed to get order items from cache", zap.Error(err))
	}
	if found {
		return items, nil
	}

	rows, err := driver.Use(r.conn, tx).Query(ctx,
		`SELECT id, order_id, product_id, name, quantity, unit_price::text, subtotal::text
		FROM order_items WHERE order_id = $1 ORDER BY id`, int64(orderID))
	if err != nil {
		r.logger.Error("Failed to list order items", zap.Uint64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	items, err = pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		r.logger.Error("Failed to scan order items", zap.Uint64("order_id", orderID), zap.Error(err))
		return nil, err
	}

	// 更新快取
	if tx == nil && len(items) > 0 {
		if err := r.cache.Set(ctx, cacheKey, items, 30*time.Minute); err != nil {
			r.logger.Warn("Failed to cache order items", zap.Error(err))
		}
	}

	return items, nil
}

func (r *repository) invalidateOrderCache(ctx context.Context, orderID uint64) {
	if err := r.cache.Delete(ctx, orderKey(orderID)); err != nil {
		r.logger.Warn("Failed to invalidate order cache", zap.Error(err), zap.Uint64("order_id", orderID))
	}
}

func scanOrder(row pgx.CollectableRow) (models.Order, error) {
	var (
		o                              models.Order
		id                             int64
		status, method                 string
		subtotal, shipping, tax, total string
	)
	if err := row.Scan(&id, &o.Reference, &o.CustomerEmail, &o.CustomerName, &status, &method,
		&subtotal, &shipping, &tax, &total,
		&o.PaymentIntentID, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return o, err
	}
	o.ID = uint64(id)
	o.Status = enum.OrderStatus(status)
	o.PaymentMethod = enum.PaymentMethod(method)

	var err error
	if o.Subtotal, err = parseAmount(subtotal); err != nil {
		return o, err
	}
	if o.Shipping, err = parseAmount(shipping); err != nil {
		return o, err
	}
	if o.Tax, err = parseAmount(tax); err != nil {
		return o, err
	}
	if o.Total, err = parseAmount(total); err != nil {
		return o, err
	}
	return o, nil
}

func scanOrderItem(row pgx.CollectableRow) (models.OrderItem, error) {
	var (
		item                 models.OrderItem
		id, orderID, product int64
		unit, subtotal       string
	)
	if err := row.Scan(&id, &orderID, &product, &item.Name, &item.Quantity, &unit, &subtotal); err != nil {
		return item, err
	}
	item.ID = uint64(id)
	item.OrderID = uint64(orderID)
	item.ProductID = uint64(product)

	var err error
	if item.UnitPrice, err = parseAmount(unit); err != nil {
		return item, err
	}
	if item.Subtotal, err = parseAmount(subtotal); err != nil {
		return item, err
	}
	return item, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return d, errors.Wrapf(err, "parse amount %q", s)
	}
	return d, nil
}
