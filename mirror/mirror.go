// Package mirror keeps a best-effort copy of visitor state outside the process.
// The in-memory containers stay authoritative; the mirror only seeds a cart for a
// returning visitor after a restart.
package mirror

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"goflare.io/storefront/cache"
	"goflare.io/storefront/models"
)

// Record is what gets mirrored for a login.
type Record struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	UserEmail  string `json:"userEmail"`
}

type Store interface {
	SaveCart(ctx context.Context, visitorID string, items []models.LineItem)
	LoadCart(ctx context.Context, visitorID string) ([]models.LineItem, bool)
	SaveSession(ctx context.Context, visitorID string, rec Record)
	DeleteSession(ctx context.Context, visitorID string)
}

var _ Store = (*store)(nil)

type store struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// New returns a Store writing through c. Entries live for ttl after the last write.
func New(c cache.Cache, ttl time.Duration, logger *zap.Logger) Store {
	return &store{cache: c, ttl: ttl, logger: logger}
}

func (s *store) SaveCart(ctx context.Context, visitorID string, items []models.LineItem) {
	if err := s.cache.Set(ctx, cartKey(visitorID), items, s.ttl); err != nil {
		s.logger.Warn("Failed to mirror cart", zap.String("visitor_id", visitorID), zap.Error(err))
	}
}

func (s *store) LoadCart(ctx context.Context, visitorID string) ([]models.LineItem, bool) {
	var items []models.LineItem
	found, err := s.cache.Get(ctx, cartKey(visitorID), &items)
	if err != nil {
		s.logger.Warn("Failed to load mirrored cart", zap.String("visitor_id", visitorID), zap.Error(err))
		return nil, false
	}
	return items, found
}

func (s *store) SaveSession(ctx context.Context, visitorID string, rec Record) {
	if err := s.cache.Set(ctx, sessionKey(visitorID), rec, s.ttl); err != nil {
		s.logger.Warn("Failed to mirror session", zap.String("visitor_id", visitorID), zap.Error(err))
	}
}

func (s *store) DeleteSession(ctx context.Context, visitorID string) {
	if err := s.cache.Delete(ctx, sessionKey(visitorID)); err != nil {
		s.logger.Warn("Failed to drop mirrored session", zap.String("visitor_id", visitorID), zap.Error(err))
	}
}

func cartKey(visitorID string) string {
	return fmt.Sprintf("visitor:%s:cart", visitorID)
}

func sessionKey(visitorID string) string {
	return fmt.Sprintf("visitor:%s:session", visitorID)
}
