package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestSearchProducts(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "headphones", q.Get("query"))
		assert.Equal(t, "Electronics", q.Get("category"))
		assert.Equal(t, "4", q.Get("min_rating"))
		assert.Equal(t, "99.99", q.Get("max_price"))
		assert.Equal(t, "5", q.Get("limit"))

		json.NewEncoder(w).Encode([]Product{
			{ProductID: "123", Title: "Wireless Headphones", Price: 79.99, Rating: 4.5},
			{ParentASIN: "B0ABCD", Title: "Earbuds", Price: 29.99, Rating: 4.1},
		})
	})

	products, err := client.SearchProducts(context.Background(), "headphones", SearchOptions{
		Category:  "Electronics",
		MinRating: 4,
		MaxPrice:  99.99,
		Limit:     5,
	})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "123", products[0].ID())
	assert.Equal(t, "B0ABCD", products[1].ID())
}

func TestSearchProducts_EmptyQueryRejected(t *testing.T) {
	client := New("http://unused.invalid")

	_, err := client.SearchProducts(context.Background(), "", SearchOptions{})
	require.Error(t, err)
}

func TestSearchProducts_UnknownFieldsDropped(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Upstream sends an open-ended record with extra keys.
		w.Write([]byte(`[{"Product_Title":"Socks","Price":3.5,"weird_extra":{"a":1},"another":"x"}]`))
	})

	products, err := client.SearchProducts(context.Background(), "socks", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Socks", products[0].Title)
	assert.Equal(t, 3.5, products[0].Price)
}

func TestGetProductByID_NotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Product not found"}`))
	})

	_, err := client.GetProductByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTopRated_Defaults(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/top-rated", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("min_rating"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("category"))
		w.Write([]byte(`[]`))
	})

	products, err := client.GetTopRated(context.Background(), 0, "", 0)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetByCategory(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/category/Home%20&%20Kitchen", r.URL.EscapedPath())
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		assert.Equal(t, "4.5", r.URL.Query().Get("min_rating"))
		json.NewEncoder(w).Encode([]Product{{ProductID: "9", Title: "Pan"}})
	})

	products, err := client.GetByCategory(context.Background(), "Home & Kitchen", 3, 4.5)
	require.NoError(t, err)
	require.Len(t, products, 1)
}

func TestGetCategories(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/categories/list", r.URL.Path)
		w.Write([]byte(`["Electronics","Clothing"]`))
	})

	categories, err := client.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Clothing"}, categories)
}

func TestGetCustomerOrders_DefensiveFields(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/customer/7", r.URL.Path)
		w.Write([]byte(`[{"Product":"Desk Lamp","Sales":24.5},{"Order_Priority":"High"}]`))
	})

	orders, err := client.GetCustomerOrders(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "Desk Lamp", orders[0].Text("Product"))
	assert.Equal(t, "24.50", orders[0].Money("Sales"))
	// Missing fields fall back to display defaults
	assert.Equal(t, "N/A", orders[1].Text("Product"))
	assert.Equal(t, "0.00", orders[1].Money("Sales"))
	assert.Equal(t, "High", orders[1].Text("Order_Priority"))
}

func TestSendChatQuery(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/query", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what should I buy?", req.Query)
		require.NotNil(t, req.CustomerID)
		assert.Equal(t, 42, *req.CustomerID)

		json.NewEncoder(w).Encode(chatResponse{Response: "Try the **wireless headphones**."})
	})

	id := 42
	resp, err := client.SendChatQuery(context.Background(), "what should I buy?", &id)
	require.NoError(t, err)
	assert.Contains(t, resp, "wireless headphones")
}

func TestServerError_SurfacesAsAPIError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Order data not loaded"}`))
	})

	_, err := client.GetCustomerOrders(context.Background(), 1, 10)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Order data not loaded", apiErr.Detail)
}
