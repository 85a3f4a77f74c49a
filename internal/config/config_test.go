package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.NPM.URL != "http://localhost:81" {
		t.Errorf("NPM.URL = %q, want http://localhost:81", cfg.NPM.URL)
	}
	if cfg.NPM.Email != "admin@example.com" {
		t.Errorf("NPM.Email = %q, want admin@example.com", cfg.NPM.Email)
	}
	if cfg.Server.HTTPAddr != ":3000" {
		t.Errorf("Server.HTTPAddr = %q, want :3000", cfg.Server.HTTPAddr)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("Server.LogLevel = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Auth.SweepInterval != "1m" {
		t.Errorf("Auth.SweepInterval = %q, want 1m", cfg.Auth.SweepInterval)
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		NPM:    NPMConfig{URL: "https://npm.internal:81"},
		Server: ServerConfig{HTTPAddr: ":9090"},
	}
	cfg.SetDefaults()

	if cfg.NPM.URL != "https://npm.internal:81" {
		t.Errorf("NPM.URL was overwritten: %q", cfg.NPM.URL)
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("Server.HTTPAddr was overwritten: %q", cfg.Server.HTTPAddr)
	}
}

func validConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := validConfig()
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate(defaults) = %v, want nil", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"bad url", func(c *Config) { c.NPM.URL = "not a url" }, "valid URL"},
		{"bad email", func(c *Config) { c.NPM.Email = "not-an-email" }, "email"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }, "one of"},
		{"bad sweep interval", func(c *Config) { c.Auth.SweepInterval = "soon" }, "duration"},
		{"negative sweep interval", func(c *Config) { c.Auth.SweepInterval = "-1m" }, "duration"},
		{"missing addr", func(c *Config) { c.Server.HTTPAddr = "" }, "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("Validate() = %q, want message containing %q", err, tc.wantMsg)
			}
		})
	}
}

// TestConfig_Validate_OAuthPair verifies the client id and secret must be
// configured together.
func TestConfig_Validate_OAuthPair(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Auth.OAuthClientID = "my-client"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate(id without secret) = nil, want error")
	}

	cfg = validConfig()
	cfg.Auth.OAuthClientSecret = "my-secret"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate(secret without id) = nil, want error")
	}

	cfg = validConfig()
	cfg.Auth.OAuthClientID = "my-client"
	cfg.Auth.OAuthClientSecret = "my-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate(full pair) = %v, want nil", err)
	}
}

func TestConfig_SweepInterval(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Auth.SweepInterval = "30s"
	if got := cfg.SweepInterval(); got != 30*time.Second {
		t.Errorf("SweepInterval() = %v, want 30s", got)
	}

	// Unparseable values fall back to the default rather than stalling sweeps.
	cfg.Auth.SweepInterval = "garbage"
	if got := cfg.SweepInterval(); got != time.Minute {
		t.Errorf("SweepInterval(garbage) = %v, want 1m fallback", got)
	}
}

func TestConfig_AuthModes(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if !cfg.OpenMode() {
		t.Error("OpenMode() = false with no auth configured")
	}
	if cfg.OAuthEnabled() {
		t.Error("OAuthEnabled() = true with no client configured")
	}

	cfg.Auth.APIKey = "secret"
	if cfg.OpenMode() {
		t.Error("OpenMode() = true with an api key configured")
	}

	cfg.Auth.APIKey = ""
	cfg.Auth.OAuthClientID = "my-client"
	cfg.Auth.OAuthClientSecret = "my-secret"
	if cfg.OpenMode() {
		t.Error("OpenMode() = true with oauth configured")
	}
	if !cfg.OAuthEnabled() {
		t.Error("OAuthEnabled() = false with a client configured")
	}
}

// TestLoadConfig_FromFile verifies a YAML config file is read, merged with
// defaults and validated. Not parallel: the loader uses the global viper.
func TestLoadConfig_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	raw, err := yaml.Marshal(map[string]any{
		"npm": map[string]any{
			"url":      "http://npm.internal:81",
			"email":    "ops@example.com",
			"password": "changeme",
		},
		"auth": map[string]any{
			"api_key": "static-secret",
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), "npmgate.yaml")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	InitViper(path)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.NPM.URL != "http://npm.internal:81" {
		t.Errorf("NPM.URL = %q", cfg.NPM.URL)
	}
	if cfg.NPM.Email != "ops@example.com" {
		t.Errorf("NPM.Email = %q", cfg.NPM.Email)
	}
	if cfg.Auth.APIKey != "static-secret" {
		t.Errorf("Auth.APIKey = %q", cfg.Auth.APIKey)
	}
	// Unset fields come from defaults.
	if cfg.Server.HTTPAddr != ":3000" {
		t.Errorf("Server.HTTPAddr = %q, want default :3000", cfg.Server.HTTPAddr)
	}
	if ConfigFileUsed() != path {
		t.Errorf("ConfigFileUsed() = %q, want %q", ConfigFileUsed(), path)
	}
}

// TestLoadConfig_EnvOverride verifies NPMGATE_ environment variables override
// file values. Not parallel: the loader uses the global viper.
func TestLoadConfig_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("NPMGATE_NPM_URL", "http://override.internal:81")
	t.Setenv("NPMGATE_SERVER_HTTP_ADDR", ":4000")

	// No config file anywhere: point the search at an empty directory.
	t.Chdir(t.TempDir())

	InitViper("")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.NPM.URL != "http://override.internal:81" {
		t.Errorf("NPM.URL = %q, want env override", cfg.NPM.URL)
	}
	if cfg.Server.HTTPAddr != ":4000" {
		t.Errorf("Server.HTTPAddr = %q, want env override", cfg.Server.HTTPAddr)
	}
}
