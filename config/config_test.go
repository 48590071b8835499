package config

import (
	"os"
	"path/filepath"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"APP_ENV",
	"LOG_LEVEL",
	"BACKEND_URL",
	"BACKEND_TIMEOUT_SECONDS",
	"STATUS_CACHE_TTL_SECONDS",
	"PROGRESS_TICK_MS",
	"PROGRESS_COLLECT_AFTER_TICKS",
	"PROGRESS_ANALYZE_AFTER_TICKS",
	"PROGRESS_BOUND_TICKS",
	"BREAKER_MAX_REQUESTS",
	"BREAKER_INTERVAL_SECONDS",
	"BREAKER_TIMEOUT_SECONDS",
	"RATE_LIMIT_ENABLED",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"UI_TITLE",
	"PERIODS_FILE",
	"PORT",
	"CORS_ALLOWED_ORIGINS",
	"HTTP_REQUEST_TIMEOUT_SECONDS",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Backend.URL != "http://127.0.0.1:5001" {
		t.Errorf("expected Backend.URL='http://127.0.0.1:5001', got %s", cfg.Backend.URL)
	}
	if cfg.Backend.BackendTimeout() != 0 {
		t.Errorf("expected no backend timeout, got %v", cfg.Backend.BackendTimeout())
	}
	if cfg.Progress.TickMillis != 1000 {
		t.Errorf("expected TickMillis=1000, got %d", cfg.Progress.TickMillis)
	}
	if cfg.Progress.CollectAfterTicks != 3 || cfg.Progress.AnalyzeAfterTicks != 6 || cfg.Progress.BoundTicks != 20 {
		t.Errorf("expected progress ticks 3/6/20, got %d/%d/%d",
			cfg.Progress.CollectAfterTicks, cfg.Progress.AnalyzeAfterTicks, cfg.Progress.BoundTicks)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("expected rate limiting enabled by default")
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("expected Port=8080, got %s", cfg.HTTP.Port)
	}
	if cfg.HTTP.CORSAllowedOrigins != "*" {
		t.Errorf("expected CORSAllowedOrigins='*', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Error("expected development environment by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %s", cfg.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("BACKEND_URL", "https://analysis.internal:9000")
	os.Setenv("BACKEND_TIMEOUT_SECONDS", "90")
	os.Setenv("PROGRESS_TICK_MS", "250")
	os.Setenv("RATE_LIMIT_ENABLED", "false")
	os.Setenv("PORT", "9999")
	os.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with custom values failed: %v", err)
	}

	if cfg.Backend.URL != "https://analysis.internal:9000" {
		t.Errorf("expected custom Backend.URL, got %s", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSeconds != 90 {
		t.Errorf("expected TimeoutSeconds=90, got %d", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Progress.TickInterval().Milliseconds() != 250 {
		t.Errorf("expected 250ms tick, got %v", cfg.Progress.TickInterval())
	}
	if cfg.RateLimit.Enabled {
		t.Error("expected rate limiting disabled")
	}
	if cfg.HTTP.Port != "9999" {
		t.Errorf("expected Port=9999, got %s", cfg.HTTP.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"relative backend url", func(c *Config) { c.Backend.URL = "/api" }, true},
		{"non http backend url", func(c *Config) { c.Backend.URL = "ftp://host" }, true},
		{"collect after analyze", func(c *Config) { c.Progress.CollectAfterTicks = 7 }, true},
		{"bound before analyze", func(c *Config) { c.Progress.BoundTicks = 5 }, true},
		{"zero tick", func(c *Config) { c.Progress.TickMillis = 0 }, true},
		{"rate limit zero burst", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Burst = 0
		}, true},
		{"disabled rate limit ignores values", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.RequestsPerSecond = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvInt_InvalidUsesDefault(t *testing.T) {
	saved := saveEnv(t, []string{"PROGRESS_TICK_MS"})
	defer restoreEnv(t, saved)

	os.Setenv("PROGRESS_TICK_MS", "not-a-number")
	if got := getEnvInt("PROGRESS_TICK_MS", 1000); got != 1000 {
		t.Errorf("expected default 1000, got %d", got)
	}

	os.Setenv("PROGRESS_TICK_MS", "-5")
	if got := getEnvInt("PROGRESS_TICK_MS", 1000); got != 1000 {
		t.Errorf("expected default 1000 for negative value, got %d", got)
	}
}

func TestLoadPeriods(t *testing.T) {
	t.Run("empty path uses built-in catalog", func(t *testing.T) {
		periods, err := LoadPeriods("")
		if err != nil {
			t.Fatalf("LoadPeriods() error = %v", err)
		}
		if len(periods) != 8 {
			t.Errorf("expected 8 periods, got %d", len(periods))
		}
	})

	t.Run("reads yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "periods.yaml")
		content := "periods:\n  - value: 1mo\n    label: 1 Month\n  - value: 1y\n    label: 1 Year\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		periods, err := LoadPeriods(path)
		if err != nil {
			t.Fatalf("LoadPeriods() error = %v", err)
		}
		if len(periods) != 2 || periods[1].Label != "1 Year" {
			t.Errorf("unexpected periods %+v", periods)
		}
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "periods.yaml")
		content := "periods:\n  - value: 1y\n    label: 1 Year\n  - value: 1y\n    label: One Year\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadPeriods(path); err == nil {
			t.Error("expected error for duplicate period")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadPeriods(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
