// Package shop provides the interactive TUI storefront for stylecart.
// The code is split across files in the usual model/update/view shape:
//   - model.go: types, construction, Init (this file)
//   - update.go: the Update loop and key handling
//   - view.go: rendering functions
//   - commands.go: async tea.Cmd wrappers around the API client
//   - chat.go: the shopping-assistant chat widget
//   - tryon.go: the virtual try-on page
package shop

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"stylecart/cmd/stylecart/ui"
	"stylecart/internal/api"
	"stylecart/internal/cart"
	"stylecart/internal/config"
	"stylecart/internal/identity"
	"stylecart/internal/tryon"
)

// Page is the active storefront view.
type Page int

const (
	PageHome Page = iota
	PageSearch
	PageDetail
	PageCart
	PageOrders
	PageChat
	PageTryOn
)

// Message is one entry in the chat transcript. Ephemeral: it lives only for
// the open session and is never persisted.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
	Time    time.Time
}

// Model is the bubbletea model for the storefront.
type Model struct {
	cfg    *config.Config
	styles ui.Styles

	// Collaborators, injected rather than looked up ambiently.
	client   *api.Client
	cart     *cart.Store
	identity *identity.Store
	tryon    *tryon.Orchestrator

	// Markdown renderer for assistant responses.
	renderer *glamour.TermRenderer

	// Search debounce. send is wired to the running program so the timer
	// can deliver a message back into the update loop.
	debounce  *ui.Debouncer
	send      func(tea.Msg)
	searchSeq int

	page   Page
	width  int
	height int
	ready  bool

	// Footer status line; errText renders in the error style.
	status  string
	errText string

	// Home
	topRated   []api.Product
	categories []string
	homeCursor int

	// Search
	searchInput   textinput.Model
	results       []api.Product
	resultCursor  int
	searching     bool
	activeQuery   string
	searchFilters api.SearchOptions

	// Detail
	detail          *api.Product
	recommendations []api.Product

	// Cart
	cartCursor int

	// Orders
	idInput     textinput.Model
	orders      []api.Order
	ordersState string // "", "loading", "loaded", "empty"

	// Chat
	chatInput   textinput.Model
	chatHistory []Message
	chatVP      viewport.Model
	chatWaiting bool

	// Try-on
	photoInput  tryonInput
	tryonBusy   bool
	tryonResult string

	spinner spinner.Model
}

// tryonInput bundles the try-on page inputs: photo path and optional token.
type tryonInput struct {
	path  textinput.Model
	token textinput.Model
	focus int // 0 = path, 1 = token
}

// Deps are the injected collaborators for the storefront model.
type Deps struct {
	Config   *config.Config
	Client   *api.Client
	Cart     *cart.Store
	Identity *identity.Store
	TryOn    *tryon.Orchestrator
}

// NewModel builds the storefront model.
func NewModel(deps Deps) *Model {
	styles := ui.NewStyles(ui.ThemeByName(deps.Config.UI.Theme))

	search := textinput.New()
	search.Placeholder = "search products (min 2 characters)"
	search.CharLimit = 128

	idIn := textinput.New()
	idIn.Placeholder = "customer id (number)"
	idIn.CharLimit = 12

	chatIn := textinput.New()
	chatIn.Placeholder = "ask the shopping assistant"
	chatIn.CharLimit = 512

	photoIn := textinput.New()
	photoIn.Placeholder = "path to your photo (jpg/png)"
	photoIn.CharLimit = 256

	tokenIn := textinput.New()
	tokenIn.Placeholder = "optional HF token (never saved)"
	tokenIn.EchoMode = textinput.EchoPassword
	tokenIn.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Subtitle

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil
	}

	debounceDelay := ui.DefaultSearchDebounce
	if deps.Config.UI.SearchDebounceMS > 0 {
		debounceDelay = time.Duration(deps.Config.UI.SearchDebounceMS) * time.Millisecond
	}

	return &Model{
		cfg:      deps.Config,
		styles:   styles,
		client:   deps.Client,
		cart:     deps.Cart,
		identity: deps.Identity,
		tryon:    deps.TryOn,
		renderer: renderer,
		debounce: ui.NewDebouncer(debounceDelay),
		send:     func(tea.Msg) {},

		page:        PageHome,
		searchInput: search,
		idInput:     idIn,
		chatInput:   chatIn,
		photoInput:  tryonInput{path: photoIn, token: tokenIn},
		chatVP:      viewport.New(80, 20),
		spinner:     sp,
	}
}

// SetSend wires the model's timers to the running program's message queue.
// Must be called before Program.Run.
func (m *Model) SetSend(send func(tea.Msg)) {
	m.send = send
}

// Init kicks off the home page load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadHome(), m.spinner.Tick)
}
