// Package catalog provides the HTTP client for the product catalog service,
// the external system of record for product existence and price.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bharat2468/cloud-project/internal/domain"
)

// Sentinel errors distinguishing a definitive catalog answer from a transient
// failure. Callers must treat the two differently: on the read path both
// degrade to omission, on the mutation path both are hard failures but map to
// different HTTP statuses.
var (
	// ErrProductNotFound means the catalog definitively answered 404.
	ErrProductNotFound = errors.New("catalog: product not found")

	// ErrUnavailable covers network failure, timeout, an open circuit
	// breaker, and any non-2xx/non-404 response.
	ErrUnavailable = errors.New("catalog: unavailable")
)

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client fetches products from the catalog service over HTTP.
type Client struct {
	http    Doer
	baseURL string
	timeout time.Duration
}

// NewClient creates a catalog client. Every fetch carries an explicit
// per-call timeout so a slow catalog can never block a request indefinitely.
func NewClient(httpClient Doer, baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// Fetch looks up a product by id via GET {baseURL}/products/{id}.
//
//   - 200 with a JSON body yields the product.
//   - 404 yields ErrProductNotFound.
//   - Anything else (network failure, timeout, open breaker, other statuses,
//     an undecodable body) yields ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, productID string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/products/" + url.PathEscape(productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch product %s: %v", ErrUnavailable, productID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		var product domain.Product
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&product); err != nil {
			return nil, fmt.Errorf("%w: decode product %s: %v", ErrUnavailable, productID, err)
		}
		if product.ID == "" {
			product.ID = productID
		}
		return &product, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)

	default:
		return nil, fmt.Errorf("%w: fetch product %s: status %d", ErrUnavailable, productID, resp.StatusCode)
	}
}

// Ping checks catalog reachability for the readiness probe. Any definitive
// HTTP answer counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/ping", http.NoBody)
	if err != nil {
		return fmt.Errorf("create catalog ping request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("catalog unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}
