package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/httpclient"
)

// HTTPDoer is the HTTP client surface the remote fetcher uses.
type HTTPDoer interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// RemoteFetcher hydrates the cache from the cart service API.
type RemoteFetcher struct {
	http    HTTPDoer
	baseURL string
}

// NewRemoteFetcher creates a fetcher targeting the cart service at baseURL.
func NewRemoteFetcher(http HTTPDoer, baseURL string) *RemoteFetcher {
	return &RemoteFetcher{http: http, baseURL: baseURL}
}

var _ Fetcher = (*RemoteFetcher)(nil)

type itemsEnvelope struct {
	Data []domain.LineItem `json:"data"`
}

// FetchItems retrieves the user's assembled line items from the cart service.
func (f *RemoteFetcher) FetchItems(ctx context.Context, userID int64) ([]domain.LineItem, error) {
	url := fmt.Sprintf("%s/api/v1/cart/%d/items", f.baseURL, userID)

	resp, err := f.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch cart items for user %d: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "cart")
	}

	var envelope itemsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	if envelope.Data == nil {
		return []domain.LineItem{}, nil
	}
	return envelope.Data, nil
}
