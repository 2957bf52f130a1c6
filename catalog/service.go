// Package catalog supplies the product list, with remote, database and built-in fallbacks.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"goflare.io/storefront/models"
)

// Source is one place products can be read from.
type Source interface {
	Name() string
	Products(ctx context.Context) ([]models.Product, error)
}

type repositorySource struct {
	repo Repository
}

// FromRepository exposes a Repository as a Source.
func FromRepository(repo Repository) Source {
	return repositorySource{repo: repo}
}

func (s repositorySource) Name() string { return "postgres" }

func (s repositorySource) Products(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx, nil)
}

// Service answers catalog queries. Sources are tried in order; the built-in list
// is used when every source fails or returns nothing.
type Service struct {
	sources []Source
	logger  *zap.Logger
}

func NewService(logger *zap.Logger, sources ...Source) *Service {
	return &Service{sources: sources, logger: logger}
}

// All returns the unfiltered catalog.
func (s *Service) All(ctx context.Context) []models.Product {
	for _, src := range s.sources {
		products, err := src.Products(ctx)
		if err != nil {
			s.logger.Warn("Catalog source unavailable", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		if len(products) == 0 {
			continue
		}
		return products
	}
	s.logger.Debug("Serving fallback catalog")
	return Fallback()
}

// List returns the products matching q.
func (s *Service) List(ctx context.Context, q models.ProductQuery) []models.Product {
	return Apply(s.All(ctx), q)
}

// Get returns the product with the given id.
func (s *Service) Get(ctx context.Context, id uint64) (*models.Product, error) {
	for _, p := range s.All(ctx) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

// Categories lists the categories present in the catalog.
func (s *Service) Categories(ctx context.Context) []string {
	return Categories(s.All(ctx))
}

// Featured returns the n best rated products for the home page.
func (s *Service) Featured(ctx context.Context, n int) []models.Product {
	return Featured(s.All(ctx), n)
}

// Offers returns the current promotions.
func (s *Service) Offers() []models.Offer {
	return Offers()
}
