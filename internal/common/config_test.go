package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", config.Server.Port)
	}
	if config.Sync.SheetName != "Все бумаги" {
		t.Errorf("unexpected default sheet name: %s", config.Sync.SheetName)
	}
	if config.Sync.DecimalSeparator != "," {
		t.Errorf("unexpected decimal separator: %q", config.Sync.DecimalSeparator)
	}
	if config.Clients.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected default model: %s", config.Clients.Gemini.Model)
	}
	if config.IsProduction() {
		t.Error("default config should not be production")
	}
}

func TestLoadConfigFileMerge(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "folio.toml")
	override := filepath.Join(dir, "folio.local.toml")

	baseToml := `
environment = "production"

[server]
port = 9090

[sync]
sheet_name = "Holdings"
`
	overrideToml := `
[server]
port = 9191
`
	if err := os.WriteFile(base, []byte(baseToml), 0o644); err != nil {
		t.Fatalf("write base config: %v", err)
	}
	if err := os.WriteFile(override, []byte(overrideToml), 0o644); err != nil {
		t.Fatalf("write override config: %v", err)
	}

	config, err := LoadConfig(base, override)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Server.Port != 9191 {
		t.Errorf("later file should win: expected 9191, got %d", config.Server.Port)
	}
	if config.Sync.SheetName != "Holdings" {
		t.Errorf("expected sheet from base file, got %s", config.Sync.SheetName)
	}
	if !config.IsProduction() {
		t.Error("expected production environment")
	}
	// Untouched sections keep defaults
	if config.Storage.Path != "data/folio" {
		t.Errorf("storage path default lost: %s", config.Storage.Path)
	}
}

func TestLoadConfigSkipsMissingFiles(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"), "")
	if err != nil {
		t.Fatalf("missing files should not error: %v", err)
	}
	if config.Server.Port != 8080 {
		t.Errorf("expected defaults, got port %d", config.Server.Port)
	}
}

func TestLoadConfigInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("server = {{{"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_PORT", "7070")
	t.Setenv("FOLIO_LOG_LEVEL", "debug")
	t.Setenv("FOLIO_DATA_PATH", "/var/lib/folio")
	t.Setenv("FOLIO_SHEET_NAME", "Portfolio")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", config.Server.Port)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", config.Logging.Level)
	}
	if config.Storage.Path != "/var/lib/folio" {
		t.Errorf("expected env data path, got %s", config.Storage.Path)
	}
	if config.Sync.SheetName != "Portfolio" {
		t.Errorf("expected env sheet name, got %s", config.Sync.SheetName)
	}
}

func TestEnvOverrideInvalidPortIgnored(t *testing.T) {
	t.Setenv("FOLIO_PORT", "not-a-number")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.Server.Port != 8080 {
		t.Errorf("invalid port should keep default, got %d", config.Server.Port)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("FOLIO_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	if _, err := ResolveAPIKey("gemini_api_key", ""); err == nil {
		t.Error("expected error when no key available")
	}

	key, err := ResolveAPIKey("gemini_api_key", "from-config")
	if err != nil {
		t.Fatalf("ResolveAPIKey with fallback: %v", err)
	}
	if key != "from-config" {
		t.Errorf("expected config fallback, got %s", key)
	}

	t.Setenv("GEMINI_API_KEY", "from-env")
	key, err = ResolveAPIKey("gemini_api_key", "from-config")
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "from-env" {
		t.Errorf("env should win over config fallback, got %s", key)
	}
}

func TestTimeoutParsing(t *testing.T) {
	g := GeminiConfig{Timeout: "30s"}
	if g.GetTimeout() != 30*time.Second {
		t.Errorf("expected 30s, got %s", g.GetTimeout())
	}

	g.Timeout = "garbage"
	if g.GetTimeout() != 60*time.Second {
		t.Errorf("expected 60s fallback, got %s", g.GetTimeout())
	}

	n := NewsConfig{Timeout: ""}
	if n.GetTimeout() != 15*time.Second {
		t.Errorf("expected 15s fallback, got %s", n.GetTimeout())
	}
}
