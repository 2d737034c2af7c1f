package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stylecart/cmd/stylecart/shop"
	"stylecart/internal/api"
	"stylecart/internal/cart"
	"stylecart/internal/config"
	"stylecart/internal/identity"
	"stylecart/internal/localstore"
	"stylecart/internal/logging"
	"stylecart/internal/tryon"
)

var (
	// Global flags
	verbose bool
	apiURL  string
	limit   int

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "stylecart",
	Short: "stylecart - terminal storefront with virtual try-on",
	Long: `stylecart is a terminal storefront client: browse and search the
catalog, manage a local cart, look up order history, chat with the
shopping assistant and try garments on virtually via a hosted
image-generation space.

Run without arguments to start the interactive storefront.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive storefront has its own UI; skip the zap logger.
		if cmd == cmd.Root() {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStorefront()
	},
}

// searchCmd performs a one-shot product search
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog and print matching products",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

// productCmd fetches a single product
var productCmd = &cobra.Command{
	Use:   "product [id]",
	Short: "Show one product by catalog ID or accession number",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

// categoriesCmd lists the catalog categories
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	RunE:  runCategories,
}

// ordersCmd prints a customer's order history
var ordersCmd = &cobra.Command{
	Use:   "orders [customer-id]",
	Short: "Show order history for a customer identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrders,
}

// chatCmd sends a one-shot question to the shopping assistant
var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the shopping assistant a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

// tryonCmd runs one virtual try-on attempt from the command line
var tryonCmd = &cobra.Command{
	Use:   "tryon [photo-path]",
	Short: "Run a virtual try-on with your photo and print the result URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runTryOn,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "storefront API base URL (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&limit, "limit", "n", 10, "maximum results to fetch")

	searchCmd.Flags().String("category", "", "restrict results to one category")
	searchCmd.Flags().Float64("min-rating", 0, "minimum average rating")
	searchCmd.Flags().Float64("max-price", 0, "maximum price")

	rootCmd.AddCommand(searchCmd, productCmd, categoriesCmd, ordersCmd, chatCmd, tryonCmd)
}

// loadConfig resolves the config file and applies the --api-url flag.
func loadConfig() (*config.Config, error) {
	path, err := config.ConfigFile()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	return cfg, nil
}

func newAPIClient(cfg *config.Config) *api.Client {
	timeout, err := time.ParseDuration(cfg.API.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return api.New(cfg.API.BaseURL, api.WithTimeout(timeout))
}

// runStorefront launches the interactive TUI.
func runStorefront() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	if err := logging.Initialize(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	store, err := localstore.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("could not open local storage: %w", err)
	}
	defer store.Close()

	tryonTimeout, err := time.ParseDuration(cfg.TryOn.Timeout)
	if err != nil || tryonTimeout <= 0 {
		tryonTimeout = 5 * time.Minute
	}
	provider := tryon.NewGradioProvider(tryonTimeout)
	orchestrator := tryon.New(
		provider,
		tryon.GarmentFromSource(cfg.TryOn.GarmentImage, nil),
		cfg.TryOn.SpaceID,
		cfg.TryOn.Endpoint,
		tryon.DefaultParams(),
	)

	model := shop.NewModel(shop.Deps{
		Config:   cfg,
		Client:   newAPIClient(cfg),
		Cart:     cart.NewStore(store),
		Identity: identity.NewStore(store),
		TryOn:    orchestrator,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.SetSend(p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("storefront exited with error: %w", err)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newAPIClient(cfg)

	query := args[0]
	category, _ := cmd.Flags().GetString("category")
	minRating, _ := cmd.Flags().GetFloat64("min-rating")
	maxPrice, _ := cmd.Flags().GetFloat64("max-price")

	logger.Debug("searching", zap.String("query", query))
	products, err := client.SearchProducts(context.Background(), query, api.SearchOptions{
		Category:  category,
		MinRating: minRating,
		MaxPrice:  maxPrice,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	for _, p := range products {
		fmt.Printf("%-14s  $%-8.2f %.1f★  %s\n", p.ID(), p.Price, p.Rating, p.Title)
	}
	if len(products) == 0 {
		fmt.Println("no products found")
	}
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newAPIClient(cfg)

	p, err := client.GetProductByID(context.Background(), args[0])
	if errors.Is(err, api.ErrNotFound) {
		fmt.Println("product not found")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s\n$%.2f  %.1f★ (%d ratings)\n%s\n", p.Title, p.Price, p.Rating, p.RatingCount, p.Description)
	if p.Store != "" {
		fmt.Printf("Sold by %s\n", p.Store)
	}
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newAPIClient(cfg)

	categories, err := client.GetCategories(context.Background())
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func runOrders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newAPIClient(cfg)

	customerID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("customer id must be a number, got %q", args[0])
	}

	orders, err := client.GetCustomerOrders(context.Background(), customerID, limit)
	if errors.Is(err, api.ErrNotFound) {
		fmt.Println("no orders found for this customer")
		return nil
	}
	if err != nil {
		return err
	}

	for _, o := range orders {
		date := o.Text("Order_DateTime")
		if date == "N/A" {
			date = o.Text("Order_Date")
		}
		fmt.Printf("%-20s  $%-8s  %-8s  %s\n", date, o.Money("Sales"), o.Text("Order_Priority"), o.Text("Product"))
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newAPIClient(cfg)

	reply, err := client.SendChatQuery(context.Background(), strings.Join(args, " "), nil)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

func runTryOn(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	photoPath := args[0]
	data, err := os.ReadFile(photoPath)
	if err != nil {
		return fmt.Errorf("could not read photo: %w", err)
	}

	tryonTimeout, err := time.ParseDuration(cfg.TryOn.Timeout)
	if err != nil || tryonTimeout <= 0 {
		tryonTimeout = 5 * time.Minute
	}
	orchestrator := tryon.New(
		tryon.NewGradioProvider(tryonTimeout),
		tryon.GarmentFromSource(cfg.TryOn.GarmentImage, nil),
		cfg.TryOn.SpaceID,
		cfg.TryOn.Endpoint,
		tryon.DefaultParams(),
	)

	logger.Info("starting try-on",
		zap.String("space", cfg.TryOn.SpaceID),
		zap.String("photo", photoPath))

	contentType := "image/png"
	if ext := strings.ToLower(filepath.Ext(photoPath)); ext == ".jpg" || ext == ".jpeg" {
		contentType = "image/jpeg"
	} else if ext == ".webp" {
		contentType = "image/webp"
	}

	res, err := orchestrator.Run(context.Background(), tryon.FileHandle{
		Name:        photoPath,
		ContentType: contentType,
		Data:        data,
	}, cfg.TryOn.Token)
	if err != nil {
		return err
	}

	fmt.Println(res.ImageURL)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
