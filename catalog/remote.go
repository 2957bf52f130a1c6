package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"goflare.io/storefront/models"
)

// RemoteSource reads the catalog from a JSON server exposing GET /products.
type RemoteSource struct {
	baseURL string
	client  *http.Client
}

// NewRemoteSource returns a source for baseURL. A nil client gets a 5 second timeout.
func NewRemoteSource(baseURL string, client *http.Client) *RemoteSource {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &RemoteSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *RemoteSource) Name() string { return "remote" }

func (s *RemoteSource) Products(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/products", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch products: unexpected status %d", resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}
