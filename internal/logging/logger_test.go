package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetState clears package globals between tests.
func resetState() {
	loggersMu.Lock()
	loggers = make(map[Category]*Logger)
	loggersMu.Unlock()

	configMu.Lock()
	config = loggingConfig{}
	configMu.Unlock()

	logsDir = ""
	workspace = ""
	logLevel = LevelInfo
}

func TestInitialize_NoConfigDisablesLogging(t *testing.T) {
	resetState()
	defer Close()

	tmp := t.TempDir()
	if err := Initialize(tmp); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsDebugMode() {
		t.Error("expected debug mode off without a config file")
	}

	// No logs directory should have been created
	if _, err := os.Stat(filepath.Join(tmp, ".stylecart", "logs")); !os.IsNotExist(err) {
		t.Error("expected no logs directory in production mode")
	}
}

func TestInitialize_DebugModeWritesLogs(t *testing.T) {
	resetState()
	defer Close()

	tmp := t.TempDir()
	cfgDir := filepath.Join(tmp, ".stylecart")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := "logging:\n  debug_mode: true\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Initialize(tmp); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("expected debug mode on")
	}

	Get(CategoryCart).Info("added product %s", "B0TEST")
	Close()

	entries, err := os.ReadDir(filepath.Join(cfgDir, "logs"))
	if err != nil {
		t.Fatalf("logs dir not created: %v", err)
	}

	var cartLog string
	for _, e := range entries {
		if strings.Contains(e.Name(), "_cart.log") {
			cartLog = filepath.Join(cfgDir, "logs", e.Name())
		}
	}
	if cartLog == "" {
		t.Fatalf("no cart log file among %v", entries)
	}

	data, err := os.ReadFile(cartLog)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "added product B0TEST") {
		t.Errorf("log content missing message: %q", data)
	}
}

func TestIsCategoryEnabled_Filtering(t *testing.T) {
	resetState()
	defer Close()

	tmp := t.TempDir()
	cfgDir := filepath.Join(tmp, ".stylecart")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := "logging:\n  debug_mode: true\n  categories:\n    api: false\n    tryon: true\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(tmp); err != nil {
		t.Fatal(err)
	}

	if IsCategoryEnabled(CategoryAPI) {
		t.Error("api should be disabled")
	}
	if !IsCategoryEnabled(CategoryTryOn) {
		t.Error("tryon should be enabled")
	}
	// Unlisted categories default to enabled in debug mode
	if !IsCategoryEnabled(CategoryCart) {
		t.Error("cart should default to enabled")
	}
}
