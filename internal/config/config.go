// Package config holds all stylecart configuration, loaded from
// .stylecart/config.yaml with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all stylecart configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Storefront REST API
	API APIConfig `yaml:"api"`

	// Virtual try-on integration
	TryOn TryOnConfig `yaml:"tryon"`

	// Local keyed storage
	Storage StorageConfig `yaml:"storage"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the storefront REST API client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// TryOnConfig configures the external inference provider for virtual try-on.
type TryOnConfig struct {
	SpaceID      string `yaml:"space_id"`
	Endpoint     string `yaml:"endpoint"`
	GarmentImage string `yaml:"garment_image"` // local path or http(s) URL
	Token        string `yaml:"token"`         // optional HF bearer token
	Timeout      string `yaml:"timeout"`
}

// StorageConfig configures the persistent local store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme            string `yaml:"theme"`              // "light" or "dark"
	SearchDebounceMS int    `yaml:"search_debounce_ms"` // delay before a search fires
	PageSize         int    `yaml:"page_size"`          // products per listing
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "stylecart",
		Version: "1.0.0",

		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},

		TryOn: TryOnConfig{
			SpaceID:      "franciszzj/Leffa",
			Endpoint:     "/leffa_predict_vt",
			GarmentImage: "assets/product.png",
			Timeout:      "300s",
		},

		Storage: StorageConfig{
			DatabasePath: "data/stylecart.db",
		},

		UI: UIConfig{
			Theme:            "light",
			SearchDebounceMS: 400,
			PageSize:         10,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the directory where config is stored.
// Prefers a project-local .stylecart directory, falling back to the home dir.
func ConfigDir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".stylecart")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stylecart"), nil
}

// ConfigFile returns the full path to the config file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from a YAML file, applying defaults for anything
// unset and environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("STYLECART_API_URL"); url != "" {
		c.API.BaseURL = url
	}
	if token := os.Getenv("STYLECART_HF_TOKEN"); token != "" {
		c.TryOn.Token = token
	}
	if space := os.Getenv("STYLECART_TRYON_SPACE"); space != "" {
		c.TryOn.SpaceID = space
	}
	if theme := os.Getenv("STYLECART_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if path := os.Getenv("STYLECART_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
}
