// Package api implements the typed client for the storefront REST service:
// product search and browsing, recommendations, order history and the
// shopping-assistant chat endpoint. Each operation is a single HTTP round
// trip with no retry; failures surface to the caller, which decides how to
// degrade.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stylecart/internal/logging"
)

// ErrNotFound is returned when the server reports no match for a lookup.
var ErrNotFound = errors.New("api: not found")

// APIError is a non-2xx response from the storefront service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// Client talks to the storefront REST service at a single base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the transport timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchOptions are the optional, additive search filters.
type SearchOptions struct {
	Category  string
	MinRating float64
	MaxPrice  float64
	Limit     int
}

// SearchProducts searches the catalog. The query must be non-empty;
// filters are ANDed server-side.
func (c *Client) SearchProducts(ctx context.Context, query string, opts SearchOptions) ([]Product, error) {
	if query == "" {
		return nil, fmt.Errorf("api: search query must not be empty")
	}

	params := url.Values{}
	params.Set("query", query)
	if opts.Category != "" {
		params.Set("category", opts.Category)
	}
	if opts.MinRating > 0 {
		params.Set("min_rating", formatFloat(opts.MinRating))
	}
	if opts.MaxPrice > 0 {
		params.Set("max_price", formatFloat(opts.MaxPrice))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var products []Product
	if err := c.get(ctx, "/products/search", params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductByID fetches a single product by catalog ID or accession number.
// Returns ErrNotFound when the server has no match.
func (c *Client) GetProductByID(ctx context.Context, id string) (Product, error) {
	var product Product
	if err := c.get(ctx, "/products/"+url.PathEscape(id), nil, &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// GetTopRated fetches top-rated products. A zero minRating defaults to 4.0
// and a zero limit to 10, matching the storefront defaults.
func (c *Client) GetTopRated(ctx context.Context, minRating float64, category string, limit int) ([]Product, error) {
	if minRating <= 0 {
		minRating = 4.0
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("min_rating", formatFloat(minRating))
	params.Set("limit", strconv.Itoa(limit))
	if category != "" {
		params.Set("category", category)
	}

	var products []Product
	if err := c.get(ctx, "/products/top-rated", params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByCategory fetches products in a category. A zero limit defaults to 10.
func (c *Client) GetByCategory(ctx context.Context, category string, limit int, minRating float64) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if minRating > 0 {
		params.Set("min_rating", formatFloat(minRating))
	}

	var products []Product
	if err := c.get(ctx, "/products/category/"+url.PathEscape(category), params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetRecommendations fetches products related to the given product.
// An empty result is legitimate; callers degrade gracefully on error.
func (c *Client) GetRecommendations(ctx context.Context, id string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var products []Product
	if err := c.get(ctx, "/products/recommendations/"+url.PathEscape(id), params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetCategories fetches the list of distinct category names.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.get(ctx, "/products/categories/list", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCustomerOrders fetches order history for a customer identifier.
// A zero limit defaults to 10. Returns ErrNotFound when the customer has
// no orders.
func (c *Client) GetCustomerOrders(ctx context.Context, customerID int, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var orders []Order
	if err := c.get(ctx, "/orders/customer/"+strconv.Itoa(customerID), params, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type chatRequest struct {
	Query      string `json:"query"`
	CustomerID *int   `json:"customer_id,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// SendChatQuery sends a chat query to the shopping assistant and returns
// the assistant's response text. customerID is optional.
func (c *Client) SendChatQuery(ctx context.Context, query string, customerID *int) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "/chat/query", chatRequest{Query: query, CustomerID: customerID}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// get performs a GET round trip and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

// post performs a POST round trip with a JSON body.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	timer := logging.StartTimer(logging.CategoryAPI, req.Method+" "+req.URL.Path)
	defer timer.StopWithThreshold(2 * time.Second)

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("%s %s failed: %v", req.Method, req.URL.Path, err)
		return fmt.Errorf("api: request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// readDetail extracts the FastAPI-style {"detail": ...} message, if any.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Detail == "" {
		return ""
	}
	return body.Detail
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
