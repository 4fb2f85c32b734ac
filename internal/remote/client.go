// Package remote implements the HTTP client for the upstream product
// collection API. It wraps the three verbs the dashboard needs (list,
// update, create) plus the category listing used by the creation form,
// and translates transport failures and non-2xx statuses into a
// uniform *NetworkError.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
)

// NetworkError is the uniform failure for any remote call: either the
// transport failed (Err is set) or the server answered with a non-2xx
// status (StatusCode is set). The response body is not interpreted.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s: remote returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpdateRequest carries the writable fields for a product update.
type UpdateRequest struct {
	Title       string
	Price       decimal.Decimal
	Description string
	Images      []string
}

// CreateRequest carries the fields for a new product. The server
// assigns the identifier.
type CreateRequest struct {
	Title       string
	Price       decimal.Decimal
	Description string
	CategoryID  int64
	Images      []string
}

// ClientConfig holds the remote endpoint configuration.
type ClientConfig struct {
	// BaseURL is the API root, e.g. https://api.example.com/api/v1.
	BaseURL string
	// Timeout bounds every request. Zero means no client-side timeout.
	Timeout time.Duration
	// TracerProvider and MeterProvider instrument the HTTP transport
	// when set.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Client talks to the remote product collection endpoint. It performs
// no retries; failures propagate to the caller as *NetworkError.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient builds a Client with an otel-instrumented transport.
func NewClient(cfg ClientConfig) *Client {
	var opts []otelhttp.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(cfg.MeterProvider))
	}
	return &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
			Timeout:   cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// List fetches the full product collection.
func (c *Client) List(ctx context.Context) ([]catalog.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/products", nil, "list")
	if err != nil {
		return nil, err
	}
	products, err := decodeProducts(body)
	if err != nil {
		return nil, &NetworkError{Op: "list", Err: err}
	}
	zctx.From(ctx).Debug("Fetched catalog", zap.Int("count", len(products)))
	return products, nil
}

// Categories fetches the category collection used by the creation form.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	body, err := c.do(ctx, http.MethodGet, "/categories", nil, "categories")
	if err != nil {
		return nil, err
	}
	categories, err := decodeCategories(body)
	if err != nil {
		return nil, &NetworkError{Op: "categories", Err: err}
	}
	return categories, nil
}

// Update issues a PUT for the given product. The server returns the
// merged record; the response may omit fields, so the caller merges it
// into local state.
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (catalog.Product, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), encodeUpdateRequest(req), "update")
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := decodeOneProduct(body)
	if err != nil {
		return catalog.Product{}, &NetworkError{Op: "update", Err: err}
	}
	return p, nil
}

// Create issues a POST for a new product and returns the record with
// its server-assigned identifier.
func (c *Client) Create(ctx context.Context, req CreateRequest) (catalog.Product, error) {
	body, err := c.do(ctx, http.MethodPost, "/products", encodeCreateRequest(req), "create")
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := decodeOneProduct(body)
	if err != nil {
		return catalog.Product{}, &NetworkError{Op: "create", Err: err}
	}
	return p, nil
}

// Ping performs a minimal read against the collection, for readiness
// probes.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/products?offset=0&limit=1", nil, "ping")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, op string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return data, nil
}
