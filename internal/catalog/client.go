package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// Client fetches the product catalog from the upstream catalog endpoint.
// The upstream is treated as flaky by default: requests are retried with
// backoff and guarded by a circuit breaker so a dead catalog cannot stall
// every storefront request.
type Client struct {
	http   *httpclient.CircuitBreakerClient
	url    string
	logger *slog.Logger
}

// NewClient creates a catalog client for the given products URL.
func NewClient(url string, logger *slog.Logger) *Client {
	base := httpclient.New(httpclient.DefaultConfig())
	return &Client{
		http:   httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("catalog"), logger),
		url:    url,
		logger: logger,
	}
}

// NewClientWithHTTP creates a catalog client with a custom HTTP client.
func NewClientWithHTTP(url string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{http: http, url: url, logger: logger}
}

// FetchProducts retrieves the full product list from the upstream.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	resp, err := c.http.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}
