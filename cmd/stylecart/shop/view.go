package shop

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stylecart/cmd/stylecart/ui"
	"stylecart/internal/api"
	"stylecart/internal/tryon"
)

func (m *Model) View() string {
	if !m.ready {
		return "Loading storefront..."
	}

	var body string
	switch m.page {
	case PageHome:
		body = m.viewHome()
	case PageSearch:
		body = m.viewSearch()
	case PageDetail:
		body = m.viewDetail()
	case PageCart:
		body = m.viewCart()
	case PageOrders:
		body = m.viewOrders()
	case PageChat:
		body = m.viewChat()
	case PageTryOn:
		body = m.viewTryOn()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		m.styles.Content.Render(body),
		m.viewFooter(),
	)
}

func (m *Model) viewHeader() string {
	title := m.styles.Header.Render(" stylecart ")
	crumb := m.styles.Muted.Render("  " + m.pageName())
	cartBadge := ""
	if n := m.cart.Len(); n > 0 {
		cartBadge = "  " + m.styles.Badge.Render(fmt.Sprintf("cart: %d", n))
	}
	return title + crumb + cartBadge
}

func (m *Model) pageName() string {
	switch m.page {
	case PageHome:
		return "home"
	case PageSearch:
		return "search"
	case PageDetail:
		return "product"
	case PageCart:
		return "cart"
	case PageOrders:
		return "orders"
	case PageChat:
		return "assistant"
	case PageTryOn:
		return "virtual try-on"
	}
	return ""
}

func (m *Model) viewFooter() string {
	var parts []string
	if m.errText != "" {
		parts = append(parts, m.styles.Error.Render(m.errText))
	} else if m.status != "" {
		parts = append(parts, m.styles.Body.Render(m.status))
	}
	parts = append(parts, m.styles.Muted.Render(m.footerKeys()))
	return m.styles.Footer.Render(strings.Join(parts, "  "))
}

func (m *Model) footerKeys() string {
	switch m.page {
	case PageHome:
		return "enter view | s search | c cart | o orders | a assistant | r refresh | q quit"
	case PageSearch:
		return "type to search | enter view | esc back"
	case PageDetail:
		return "b add to cart | t try on | c cart | esc back"
	case PageCart:
		return "+/- quantity | x remove | C clear | esc back"
	case PageOrders:
		return "enter lookup | r change id | esc back"
	case PageChat:
		return "enter send | esc back"
	case PageTryOn:
		return "enter start | tab field | d dismiss | esc back"
	}
	return ""
}

func (m *Model) viewHome() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Top rated"))
	sb.WriteString("\n")
	if len(m.topRated) == 0 {
		sb.WriteString(m.styles.Muted.Render("Nothing to show - is the storefront API running?"))
		sb.WriteString("\n")
	}
	for i, p := range m.topRated {
		sb.WriteString(m.renderProductLine(p, i == m.homeCursor))
		sb.WriteString("\n")
	}

	if len(m.categories) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Subtitle.Render("Categories"))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render(strings.Join(m.categories, " · ")))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderProductLine(p api.Product, selected bool) string {
	line := fmt.Sprintf("%-40.40s %s %s",
		p.Title,
		m.styles.Price.Render(fmt.Sprintf("$%.2f", p.Price)),
		m.styles.Rating.Render(fmt.Sprintf("%.1f★ (%d)", p.Rating, p.RatingCount)),
	)
	if selected {
		return m.styles.Selected.Render("> " + line)
	}
	return "  " + line
}

func (m *Model) viewSearch() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Prompt.Render("Search: "))
	sb.WriteString(m.searchInput.View())
	sb.WriteString("\n\n")

	switch {
	case m.searching:
		sb.WriteString(m.spinner.View() + " searching...")
	case m.activeQuery != "" && len(m.results) == 0:
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("No products match %q.", m.activeQuery)))
	default:
		for i, p := range m.results {
			sb.WriteString(m.renderProductLine(p, i == m.resultCursor))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m *Model) viewDetail() string {
	if m.detail == nil {
		return m.styles.Muted.Render("Product not found.")
	}
	p := m.detail

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(p.Title))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Price.Render(fmt.Sprintf("$%.2f", p.Price)))
	sb.WriteString("  ")
	sb.WriteString(m.styles.Rating.Render(fmt.Sprintf("%.1f★ (%d ratings)", p.Rating, p.RatingCount)))
	sb.WriteString("\n")
	if p.Category != "" {
		sb.WriteString(m.styles.Muted.Render(p.Category))
		sb.WriteString("\n")
	}
	if p.Store != "" {
		sb.WriteString(m.styles.Muted.Render("Sold by " + p.Store))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Body.Render(p.Description))
	sb.WriteString("\n")

	if len(m.recommendations) > 0 {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Subtitle.Render("You may also like"))
		sb.WriteString("\n")
		for _, rec := range m.recommendations {
			sb.WriteString("  " + rec.Title + " " + m.styles.Price.Render(fmt.Sprintf("$%.2f", rec.Price)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m *Model) viewCart() string {
	items := m.cart.Items()
	if len(items) == 0 {
		return m.styles.Muted.Render("Your cart is empty.")
	}

	table := ui.NewSimpleTable("Your cart", []string{"", "Product", "Qty", "Price", "Subtotal"})
	for i, it := range items {
		marker := " "
		if i == m.cartCursor {
			marker = ">"
		}
		table.AddRow(
			marker,
			it.Product.Title,
			fmt.Sprintf("%d", it.Quantity),
			fmt.Sprintf("$%.2f", it.Product.Price),
			fmt.Sprintf("$%.2f", it.Product.Price*float64(it.Quantity)),
		)
	}

	total := m.styles.Bold.Render(fmt.Sprintf("Total: $%.2f", m.cart.Total()))
	return table.View(m.styles) + "\n" + total + "\n"
}

func (m *Model) viewOrders() string {
	var sb strings.Builder

	if id := m.identity.Get(); id != nil {
		sb.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Customer #%d", *id)))
		sb.WriteString("\n\n")
	} else {
		sb.WriteString(m.styles.Prompt.Render("Customer id: "))
		sb.WriteString(m.idInput.View())
		sb.WriteString("\n\n")
	}

	switch m.ordersState {
	case "loading":
		sb.WriteString(m.spinner.View() + " loading orders...")
	case "empty":
		sb.WriteString(m.styles.Muted.Render("No orders found for this customer."))
	case "loaded":
		table := ui.NewSimpleTable("Order history", []string{"Date", "Product", "Sales", "Priority"})
		for _, o := range m.orders {
			date := o.Text("Order_DateTime")
			if date == "N/A" {
				date = o.Text("Order_Date")
			}
			table.AddRow(date, o.Text("Product"), "$"+o.Money("Sales"), o.Text("Order_Priority"))
		}
		sb.WriteString(table.View(m.styles))
	}
	return sb.String()
}

func (m *Model) viewChat() string {
	var sb strings.Builder
	sb.WriteString(m.chatVP.View())
	sb.WriteString("\n")
	if m.chatWaiting {
		sb.WriteString(m.spinner.View() + " thinking...\n")
	}
	sb.WriteString(m.styles.Prompt.Render("> "))
	sb.WriteString(m.chatInput.View())
	return sb.String()
}

func (m *Model) viewTryOn() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Virtual try-on"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("See how this garment looks on you. Your photo is sent to the try-on service and never stored."))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Prompt.Render("Photo:  "))
	sb.WriteString(m.photoInput.path.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Prompt.Render("Token:  "))
	sb.WriteString(m.photoInput.token.View())
	sb.WriteString("\n\n")

	switch m.tryon.State() {
	case tryon.StatePreparing:
		sb.WriteString(m.spinner.View() + " preparing garment image...")
	case tryon.StateConnecting:
		sb.WriteString(m.spinner.View() + " connecting to try-on service...")
	case tryon.StateSubmitting:
		sb.WriteString(m.spinner.View() + " generating virtual try-on...")
	case tryon.StateSucceeded:
		sb.WriteString(m.styles.Success.Render("Try-on complete!"))
		sb.WriteString("\n")
		if m.tryonResult != "" {
			sb.WriteString(m.styles.Body.Render("Image: " + m.tryonResult))
		}
	case tryon.StateFailed:
		sb.WriteString(m.styles.Error.Render("Virtual try-on failed: " + m.tryon.ErrMessage()))
	default:
		sb.WriteString(m.styles.Muted.Render("Enter your photo path and press enter."))
	}
	sb.WriteString("\n")
	return sb.String()
}
