package shop

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"stylecart/internal/api"
	"stylecart/internal/logging"
)

// Messages delivered back into the update loop by async commands.

type homeLoadedMsg struct {
	topRated   []api.Product
	categories []string
}

type searchDebouncedMsg struct {
	seq   int
	query string
}

type searchResultsMsg struct {
	query    string
	products []api.Product
}

type productLoadedMsg struct {
	product api.Product
	recs    []api.Product
}

type ordersLoadedMsg struct {
	orders []api.Order
}

type ordersEmptyMsg struct{}

type chatReplyMsg struct {
	text string
}

type tryonDoneMsg struct {
	imageURL string
	err      error
}

// errMsg is a failed user action; scope names the view it belongs to.
type errMsg struct {
	scope string
	err   error
}

// loadHome fetches the featured products and category list concurrently.
// A failure of either half degrades to whatever loaded.
func (m *Model) loadHome() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		var msg homeLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())

		g.Go(func() error {
			products, err := client.GetTopRated(ctx, 0, "", 10)
			if err != nil {
				return err
			}
			msg.topRated = products
			return nil
		})
		g.Go(func() error {
			categories, err := client.GetCategories(ctx)
			if err != nil {
				// Categories are decorative on the home page
				logging.Get(logging.CategoryUI).Warn("categories unavailable: %v", err)
				return nil
			}
			msg.categories = categories
			return nil
		})

		if err := g.Wait(); err != nil {
			return errMsg{scope: "home", err: err}
		}
		return msg
	}
}

// search fires the debounced search request.
func (m *Model) search(query string) tea.Cmd {
	client := m.client
	opts := m.searchFilters
	return func() tea.Msg {
		products, err := client.SearchProducts(context.Background(), query, opts)
		if err != nil {
			return errMsg{scope: "search", err: err}
		}
		return searchResultsMsg{query: query, products: products}
	}
}

// loadProduct fetches a product and its recommendations. Recommendation
// failures are swallowed; the detail page renders without them.
func (m *Model) loadProduct(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		product, err := client.GetProductByID(context.Background(), id)
		if err != nil {
			return errMsg{scope: "detail", err: err}
		}

		recs, err := client.GetRecommendations(context.Background(), id, 5)
		if err != nil {
			logging.Get(logging.CategoryUI).Warn("recommendations unavailable for %s: %v", id, err)
			recs = nil
		}
		return productLoadedMsg{product: product, recs: recs}
	}
}

// loadOrders fetches order history for the given customer identifier.
func (m *Model) loadOrders(customerID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		orders, err := client.GetCustomerOrders(context.Background(), customerID, 10)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) {
				return ordersEmptyMsg{}
			}
			return errMsg{scope: "orders", err: err}
		}
		return ordersLoadedMsg{orders: orders}
	}
}

// sendChat sends the user's question to the shopping assistant.
func (m *Model) sendChat(text string) tea.Cmd {
	client := m.client
	customerID := m.identity.Get()
	return func() tea.Msg {
		reply, err := client.SendChatQuery(context.Background(), text, customerID)
		if err != nil {
			return errMsg{scope: "chat", err: err}
		}
		return chatReplyMsg{text: reply}
	}
}
