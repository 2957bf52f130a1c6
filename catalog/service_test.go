package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/storefront/models"
)

type staticSource struct {
	name     string
	products []models.Product
	err      error
	calls    int
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Products(context.Context) ([]models.Product, error) {
	s.calls++
	return s.products, s.err
}

func TestService_FallsThroughSources(t *testing.T) {
	broken := &staticSource{name: "remote", err: errors.New("connection refused")}
	empty := &staticSource{name: "postgres"}
	svc := NewService(zap.NewNop(), broken, empty)

	got := svc.All(context.Background())

	assert.Equal(t, Fallback(), got)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, empty.calls)
}

func TestService_FirstHealthySourceWins(t *testing.T) {
	first := &staticSource{name: "remote", products: []models.Product{{ID: 42, Name: "Kale"}}}
	second := &staticSource{name: "postgres", products: Fallback()}
	svc := NewService(zap.NewNop(), first, second)

	got := svc.All(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Kale", got[0].Name)
	assert.Zero(t, second.calls)
}

func TestService_Get(t *testing.T) {
	svc := NewService(zap.NewNop())

	p, err := svc.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Strawberries", p.Name)

	_, err = svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "name": "Organic Apples", "price": 2.99, "image": "a.jpg", "rating": 4.5},
		})
	}))
	defer srv.Close()

	products, err := NewRemoteSource(srv.URL+"/", srv.Client()).Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("2.99")))
	assert.Equal(t, 4.5, products[0].Rating)
}

func TestRemoteSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRemoteSource(srv.URL, srv.Client()).Products(context.Background())
	assert.Error(t, err)
}
