package event

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/storefront/driver"
	"goflare.io/storefront/models"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrDuplicate     = errors.New("event already recorded")
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, event *models.Event) error
	GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.Event, error)
	MarkAsProcessed(ctx context.Context, tx pgx.Tx, id string) error
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func (r *repository) Create(ctx context.Context, tx pgx.Tx, event *models.Event) error {
	tag, err := driver.Use(r.conn, tx).Exec(ctx,
		`INSERT INTO events (id, type, processed, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, string(event.Type), event.Processed, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create event", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id string) (*models.Event, error) {
	var (
		e         models.Event
		eventType string
	)
	err := driver.Use(r.conn, tx).QueryRow(ctx,
		`SELECT id, type, processed, created_at, updated_at FROM events WHERE id = $1`, id).
		Scan(&e.ID, &eventType, &e.Processed, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get event", zap.String("event_id", id), zap.Error(err))
		return nil, err
	}
	e.Type = stripe.EventType(eventType)
	return &e, nil
}

func (r *repository) MarkAsProcessed(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := driver.Use(r.conn, tx).Exec(ctx,
		`UPDATE events SET processed = true, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark event as processed", zap.String("event_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
