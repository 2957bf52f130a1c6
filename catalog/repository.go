package catalog

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
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockChange moves Quantity units of a product out of (Reduce) or back into (Restore) stock.
type StockChange struct {
	ProductID uint64
	Quantity  int64
}

var _ Repository = (*repository)(nil)

type Repository interface {
	List(ctx context.Context, tx pgx.Tx) ([]models.Product, error)
	GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Product, error)
	ReduceStock(ctx context.Context, tx pgx.Tx, changes []StockChange) error
	RestoreStock(ctx context.Context, tx pgx.Tx, changes []StockChange) error
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

const productColumns = `id, name, price::text, image, rating, category, description, stock`

func (r *repository) List(ctx context.Context, tx pgx.Tx) ([]models.Product, error) {
	const cacheKey = "products"
	var products []models.Product

	// 嘗試從快取中獲取
	found, err := r.cache.Get(ctx, cacheKey, &products)
	if err != nil {
		r.logger.Warn("Failed to get products from cache", zap.Error(err))
	}
	if found {
		return products, nil
	}

	rows, err := driver.Use(r.conn, tx).Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	products, err = pgx.CollectRows(rows, scanProduct)
	if err != nil {
		r.logger.Error("Failed to scan products", zap.Error(err))
		return nil, err
	}

	// 更新快取
	if err := r.cache.Set(ctx, cacheKey, products, 5*time.Minute); err != nil {
		r.logger.Warn("Failed to cache products", zap.Error(err))
	}

	return products, nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Product, error) {
	cacheKey := fmt.Sprintf("product:%d", id)
	var product models.Product

	// 交易中必須讀取最新庫存，不使用快取
	if tx == nil {
		found, err := r.cache.Get(ctx, cacheKey, &product)
		if err != nil {
			r.logger.Warn("Failed to get product from cache", zap.Error(err))
		}
		if found {
			return &product, nil
		}
	}

	rows, err := driver.Use(r.conn, tx).Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, int64(id))
	if err != nil {
		r.logger.Error("Failed to get product", zap.Uint64("product_id", id), zap.Error(err))
		return nil, err
	}
	product, err = pgx.CollectExactlyOneRow(rows, scanProduct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		r.logger.Error("Failed to scan product", zap.Uint64("product_id", id), zap.Error(err))
		return nil, err
	}

	// 更新快取
	if err := r.cache.Set(ctx, cacheKey, product, 5*time.Minute); err != nil {
		r.logger.Warn("Failed to cache product", zap.Error(err))
	}

	return &product, nil
}

func (r *repository) ReduceStock(ctx context.Context, tx pgx.Tx, changes []StockChange) error {
	return r.adjust(ctx, tx, changes, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`)
}

func (r *repository) RestoreStock(ctx context.Context, tx pgx.Tx, changes []StockChange) error {
	return r.adjust(ctx, tx, changes, `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`)
}

func (r *repository) adjust(ctx context.Context, tx pgx.Tx, changes []StockChange, query string) error {
	if len(changes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(query, int64(c.ProductID), c.Quantity)
	}
	results := driver.Use(r.conn, tx).SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			r.logger.Error("failed to close batch", zap.Error(err))
		}
	}()

	for _, c := range changes {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error("failed to execute batch", zap.Uint64("product_id", c.ProductID), zap.Error(err))
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: product %d", ErrInsufficientStock, c.ProductID)
		}
	}

	// 使相關的快取失效
	r.invalidate(ctx, changes)
	return nil
}

func (r *repository) invalidate(ctx context.Context, changes []StockChange) {
	keys := make([]string, 0, len(changes)+1)
	keys = append(keys, "products")
	for _, c := range changes {
		keys = append(keys, fmt.Sprintf("product:%d", c.ProductID))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}

func scanProduct(row pgx.CollectableRow) (models.Product, error) {
	var (
		p     models.Product
		id    int64
		price string
	)
	if err := row.Scan(&id, &p.Name, &price, &p.Image, &p.Rating, &p.Category, &p.Description, &p.Stock); err != nil {
		return p, err
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return p, errors.Wrap(err, "parse price")
	}
	p.ID = uint64(id)
	p.Price = amount
	return p, nil
}
