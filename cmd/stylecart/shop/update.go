package shop

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"stylecart/internal/logging"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatVP.Width = msg.Width - 4
		m.chatVP.Height = msg.Height - 8
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case homeLoadedMsg:
		m.topRated = msg.topRated
		if msg.categories != nil {
			m.categories = msg.categories
		}
		m.homeCursor = 0
		m.status = ""
		return m, nil

	case searchDebouncedMsg:
		// Only the latest pending query fires; stale timers are dropped.
		if msg.seq != m.searchSeq || msg.query != strings.TrimSpace(m.searchInput.Value()) {
			return m, nil
		}
		m.searching = true
		m.errText = ""
		return m, m.search(msg.query)

	case searchResultsMsg:
		m.searching = false
		m.activeQuery = msg.query
		m.results = msg.products
		m.resultCursor = 0
		return m, nil

	case productLoadedMsg:
		m.detail = &msg.product
		m.recommendations = msg.recs
		m.page = PageDetail
		m.errText = ""
		return m, nil

	case ordersLoadedMsg:
		m.orders = msg.orders
		m.ordersState = "loaded"
		return m, nil

	case ordersEmptyMsg:
		m.orders = nil
		m.ordersState = "empty"
		return m, nil

	case chatReplyMsg:
		m.chatWaiting = false
		m.chatHistory = append(m.chatHistory, Message{Role: "assistant", Content: msg.text, Time: time.Now()})
		m.chatVP.SetContent(m.renderChatHistory())
		m.chatVP.GotoBottom()
		return m, nil

	case tryonDoneMsg:
		m.tryonBusy = false
		if msg.err != nil {
			m.tryonResult = ""
			m.errText = msg.err.Error()
			return m, nil
		}
		m.tryonResult = msg.imageURL
		return m, nil

	case errMsg:
		m.searching = false
		m.chatWaiting = false
		if msg.scope == "orders" {
			m.ordersState = ""
		}
		if msg.scope == "chat" {
			m.chatHistory = append(m.chatHistory, Message{
				Role:    "assistant",
				Content: "Sorry, I could not reach the assistant. Please try again.",
				Time:    time.Now(),
			})
			m.chatVP.SetContent(m.renderChatHistory())
			m.chatVP.GotoBottom()
		}
		m.errText = msg.err.Error()
		logging.Get(logging.CategoryUI).Warn("%s: %v", msg.scope, msg.err)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits.
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.page {
	case PageHome:
		return m.handleHomeKey(msg)
	case PageSearch:
		return m.handleSearchKey(msg)
	case PageDetail:
		return m.handleDetailKey(msg)
	case PageCart:
		return m.handleCartKey(msg)
	case PageOrders:
		return m.handleOrdersKey(msg)
	case PageChat:
		return m.handleChatKey(msg)
	case PageTryOn:
		return m.handleTryOnKey(msg)
	}
	return m, nil
}

func (m *Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.homeCursor > 0 {
			m.homeCursor--
		}
	case "down", "j":
		if m.homeCursor < len(m.topRated)-1 {
			m.homeCursor++
		}
	case "enter":
		if m.homeCursor < len(m.topRated) {
			return m, m.loadProduct(m.topRated[m.homeCursor].ID())
		}
	case "s":
		m.gotoSearch()
		return m, nil
	case "c":
		m.gotoCart()
	case "o":
		m.gotoOrders()
	case "a":
		m.gotoChat()
	case "r":
		m.status = "Refreshing..."
		return m, m.loadHome()
	}
	return m, nil
}

func (m *Model) gotoSearch() {
	m.page = PageSearch
	m.errText = ""
	m.searchInput.Focus()
}

func (m *Model) gotoCart() {
	m.page = PageCart
	m.errText = ""
	m.cartCursor = 0
}

func (m *Model) gotoOrders() {
	m.page = PageOrders
	m.errText = ""
	if m.identity.Get() == nil {
		m.idInput.Focus()
	}
}

func (m *Model) gotoChat() {
	m.page = PageChat
	m.errText = ""
	m.chatInput.Focus()
	m.chatVP.SetContent(m.renderChatHistory())
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.page = PageHome
		return m, nil
	case "up":
		if m.resultCursor > 0 {
			m.resultCursor--
		}
		return m, nil
	case "down":
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
		return m, nil
	case "enter":
		if m.resultCursor < len(m.results) {
			return m, m.loadProduct(m.results[m.resultCursor].ID())
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(msg)
	after := strings.TrimSpace(m.searchInput.Value())

	if after != strings.TrimSpace(before) {
		// Hold the request back until the user stops typing, and never
		// issue a search under two characters.
		m.searchSeq++
		if len(after) >= 2 {
			seq := m.searchSeq
			query := after
			m.debounce.Debounce(func() {
				m.send(searchDebouncedMsg{seq: seq, query: query})
			})
		} else {
			m.debounce.Cancel()
			m.results = nil
			m.activeQuery = ""
		}
	}
	return m, cmd
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.activeQuery != "" {
			m.gotoSearch()
		} else {
			m.page = PageHome
		}
		return m, nil
	case "b":
		if m.detail != nil {
			m.cart.Add(*m.detail, 1)
			m.status = fmt.Sprintf("Added %q to cart", m.detail.Title)
		}
	case "c":
		m.gotoCart()
	case "t":
		m.gotoTryOn()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) gotoTryOn() {
	m.page = PageTryOn
	m.errText = ""
	m.photoInput.focus = 0
	m.photoInput.path.Focus()
	m.photoInput.token.Blur()
}

func (m *Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.cart.Items()

	switch msg.String() {
	case "esc":
		m.page = PageHome
		return m, nil
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cartCursor > 0 {
			m.cartCursor--
		}
	case "down", "j":
		if m.cartCursor < len(items)-1 {
			m.cartCursor++
		}
	case "+", "=":
		if m.cartCursor < len(items) {
			it := items[m.cartCursor]
			m.cart.SetQuantity(it.Product.ID(), it.Quantity+1)
		}
	case "-":
		if m.cartCursor < len(items) {
			it := items[m.cartCursor]
			// Quantity 0 removes the item
			m.cart.SetQuantity(it.Product.ID(), it.Quantity-1)
			if m.cartCursor >= m.cart.Len() && m.cartCursor > 0 {
				m.cartCursor--
			}
		}
	case "x", "delete":
		if m.cartCursor < len(items) {
			m.cart.Remove(items[m.cartCursor].Product.ID())
			if m.cartCursor >= m.cart.Len() && m.cartCursor > 0 {
				m.cartCursor--
			}
		}
	case "C":
		m.cart.Clear()
		m.cartCursor = 0
	}
	return m, nil
}

func (m *Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.idInput.Blur()
		m.page = PageHome
		return m, nil
	case "r":
		if !m.idInput.Focused() {
			// Forget the stored customer identifier.
			m.identity.Set(nil)
			m.orders = nil
			m.ordersState = ""
			m.idInput.SetValue("")
			m.idInput.Focus()
			return m, nil
		}
	case "enter":
		if m.idInput.Focused() {
			raw := strings.TrimSpace(m.idInput.Value())
			id, err := strconv.Atoi(raw)
			if err != nil {
				// Validation failure: inline report, no state change.
				m.errText = fmt.Sprintf("customer id must be a number, got %q", raw)
				return m, nil
			}
			m.errText = ""
			m.identity.Set(&id)
			m.idInput.Blur()
			m.ordersState = "loading"
			return m, m.loadOrders(id)
		}
		if id := m.identity.Get(); id != nil {
			m.ordersState = "loading"
			return m, m.loadOrders(*id)
		}
		return m, nil
	}

	if m.idInput.Focused() {
		var cmd tea.Cmd
		m.idInput, cmd = m.idInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.chatInput.Blur()
		m.page = PageHome
		return m, nil
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatVP, cmd = m.chatVP.Update(msg)
		return m, cmd
	case "enter":
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" || m.chatWaiting {
			return m, nil
		}
		m.chatHistory = append(m.chatHistory, Message{Role: "user", Content: text, Time: time.Now()})
		m.chatVP.SetContent(m.renderChatHistory())
		m.chatVP.GotoBottom()
		m.chatInput.SetValue("")
		m.chatWaiting = true
		m.errText = ""
		return m, m.sendChat(text)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}
