package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/httpclient"
)

// HTTPDoer is the subset of the HTTP client used by the catalog client. It is
// satisfied by both httpclient.Client and httpclient.CircuitBreakerClient.
type HTTPDoer interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client fetches product data from the catalog service.
type Client struct {
	http    HTTPDoer
	baseURL string
}

// NewClient creates a catalog client targeting baseURL, for example
// "http://catalog:8081".
func NewClient(http HTTPDoer, baseURL string) *Client {
	return &Client{http: http, baseURL: baseURL}
}

type productEnvelope struct {
	Data domain.Product `json:"data"`
}

type productListEnvelope struct {
	Data []domain.Product `json:"data"`
}

// Product fetches a single product by ID. Returns a not-found error when the
// catalog does not know the product.
func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	url := fmt.Sprintf("%s/api/v1/products/%d", c.baseURL, id)

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch product %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode product %d: %w", id, err)
	}
	return &envelope.Data, nil
}

// Products fetches the full catalog, keyed by product ID. Used to assemble a
// whole cart with a single catalog round trip.
func (c *Client) Products(ctx context.Context) (map[int64]domain.Product, error) {
	url := c.baseURL + "/api/v1/products"

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope productListEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make(map[int64]domain.Product, len(envelope.Data))
	for _, p := range envelope.Data {
		products[p.ID] = p
	}
	return products, nil
}
