package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "stylecart" {
		t.Errorf("expected Name=stylecart, got %s", cfg.Name)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("expected default API base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.TryOn.SpaceID != "franciszzj/Leffa" {
		t.Errorf("expected default try-on space, got %s", cfg.TryOn.SpaceID)
	}
	if cfg.UI.SearchDebounceMS != 400 {
		t.Errorf("expected SearchDebounceMS=400, got %d", cfg.UI.SearchDebounceMS)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("STYLECART_API_URL", "")
	t.Setenv("STYLECART_HF_TOKEN", "")
	t.Setenv("STYLECART_THEME", "")
	t.Setenv("STYLECART_TRYON_SPACE", "")
	t.Setenv("STYLECART_DB", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://shop.example.com"
	cfg.UI.Theme = "dark"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(cfg, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config did not survive a save/load round trip (-want +got):\n%s", diff)
	}
	// Unset fields keep their defaults
	if loaded.TryOn.Endpoint != "/leffa_predict_vt" {
		t.Errorf("expected default endpoint, got %s", loaded.TryOn.Endpoint)
	}
}

func TestConfig_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("STYLECART_API_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("expected defaults, got %s", cfg.API.BaseURL)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STYLECART_API_URL", "http://api.internal:9000")
	t.Setenv("STYLECART_THEME", "dark")
	t.Setenv("STYLECART_HF_TOKEN", "hf_testtoken")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.API.BaseURL != "http://api.internal:9000" {
		t.Errorf("env override not applied to BaseURL: %s", cfg.API.BaseURL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("env override not applied to Theme: %s", cfg.UI.Theme)
	}
	if cfg.TryOn.Token != "hf_testtoken" {
		t.Errorf("env override not applied to Token: %s", cfg.TryOn.Token)
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{DebugMode: false}
	if lc.IsCategoryEnabled("api") {
		t.Error("production mode should disable all categories")
	}

	lc = LoggingConfig{DebugMode: true, Categories: map[string]bool{"api": false}}
	if lc.IsCategoryEnabled("api") {
		t.Error("api explicitly disabled")
	}
	if !lc.IsCategoryEnabled("cart") {
		t.Error("unlisted category should default to enabled")
	}
}
