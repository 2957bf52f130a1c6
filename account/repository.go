package account

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"goflare.io/storefront/driver"
	"goflare.io/storefront/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, user *models.User) error
	GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*models.User, error)
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

func (r *repository) Create(ctx context.Context, tx pgx.Tx, user *models.User) error {
	var id int64
	err := driver.Use(r.conn, tx).QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`,
		user.Name, NormalizeEmail(user.Email), user.PasswordHash,
	).Scan(&id, &user.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return err
	}

	user.ID = uint64(id)
	return nil
}

func (r *repository) GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*models.User, error) {
	var (
		user models.User
		id   int64
	)
	err := driver.Use(r.conn, tx).QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		NormalizeEmail(email),
	).Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, err
	}

	user.ID = uint64(id)
	return &user, nil
}

// NormalizeEmail is the canonical form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
