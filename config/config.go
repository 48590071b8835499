package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Environment name; "production" switches logging to JSON
	Environment string

	// Minimum log level: debug, info, warn or error
	LogLevel string

	// Analysis backend configuration
	Backend BackendConfig

	// Simulated progress configuration
	Progress ProgressConfig

	// Circuit breaker guarding the backend
	CircuitBreaker CircuitBreakerConfig

	// Submission rate limiting
	RateLimit RateLimitConfig

	// UI configuration
	UI UIConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// BackendConfig holds analysis backend configuration
type BackendConfig struct {
	URL                   string
	TimeoutSeconds        int // 0 means no transport timeout
	StatusCacheTTLSeconds int
}

// ProgressConfig holds the simulated progress timings, expressed in ticks
type ProgressConfig struct {
	TickMillis        int
	CollectAfterTicks int // data collection shown done after this many ticks
	AnalyzeAfterTicks int // analysis shown done after this many ticks
	BoundTicks        int // simulator gives up after this many ticks
}

// CircuitBreakerConfig holds backend circuit breaker settings
type CircuitBreakerConfig struct {
	MaxRequests     int
	IntervalSeconds int
	TimeoutSeconds  int
}

// RateLimitConfig holds per-client submission limits
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// UIConfig holds page configuration
type UIConfig struct {
	Title       string
	PeriodsFile string // optional YAML period catalog
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port                  string
	CORSAllowedOrigins    string
	RequestTimeoutSeconds int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnvString("APP_ENV", "development"),
		LogLevel:    getEnvString("LOG_LEVEL", "info"),
		Backend: BackendConfig{
			URL:                   getEnvString("BACKEND_URL", "http://127.0.0.1:5001"),
			TimeoutSeconds:        getEnvInt("BACKEND_TIMEOUT_SECONDS", 0),
			StatusCacheTTLSeconds: getEnvInt("STATUS_CACHE_TTL_SECONDS", 10),
		},
		Progress: ProgressConfig{
			TickMillis:        getEnvInt("PROGRESS_TICK_MS", 1000),
			CollectAfterTicks: getEnvInt("PROGRESS_COLLECT_AFTER_TICKS", 3),
			AnalyzeAfterTicks: getEnvInt("PROGRESS_ANALYZE_AFTER_TICKS", 6),
			BoundTicks:        getEnvInt("PROGRESS_BOUND_TICKS", 20),
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:     getEnvInt("BREAKER_MAX_REQUESTS", 5),
			IntervalSeconds: getEnvInt("BREAKER_INTERVAL_SECONDS", 60),
			TimeoutSeconds:  getEnvInt("BREAKER_TIMEOUT_SECONDS", 30),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvFloatUnbounded("RATE_LIMIT_RPS", 1),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 5),
		},
		UI: UIConfig{
			Title:       getEnvString("UI_TITLE", "Chain of Agents Stock Analysis"),
			PeriodsFile: os.Getenv("PERIODS_FILE"),
		},
		HTTP: HTTPConfig{
			Port:                  getEnvString("PORT", "8080"),
			CORSAllowedOrigins:    getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeoutSeconds: getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", 300),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute http(s) URL, got %q", c.Backend.URL)
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("BACKEND_TIMEOUT_SECONDS must not be negative, got %d", c.Backend.TimeoutSeconds)
	}

	// Validate progress ordering
	p := c.Progress
	if p.TickMillis <= 0 {
		return fmt.Errorf("PROGRESS_TICK_MS must be positive, got %d", p.TickMillis)
	}
	if p.CollectAfterTicks <= 0 || p.AnalyzeAfterTicks <= p.CollectAfterTicks || p.BoundTicks <= p.AnalyzeAfterTicks {
		return fmt.Errorf("progress ticks must satisfy 0 < collect < analyze < bound, got collect=%d analyze=%d bound=%d",
			p.CollectAfterTicks, p.AnalyzeAfterTicks, p.BoundTicks)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %.2f", c.RateLimit.RequestsPerSecond)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimit.Burst)
		}
	}

	if c.HTTP.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.HTTP.RequestTimeoutSeconds)
	}

	return nil
}

// IsProduction returns true when running with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// TickInterval returns the simulator tick period
func (p ProgressConfig) TickInterval() time.Duration {
	return time.Duration(p.TickMillis) * time.Millisecond
}

// BackendTimeout returns the transport timeout, zero when unset
func (b BackendConfig) BackendTimeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// StatusCacheTTL returns how long agent status responses are reused
func (b BackendConfig) StatusCacheTTL() time.Duration {
	return time.Duration(b.StatusCacheTTLSeconds) * time.Second
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatUnbounded(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Environment: "test",
		LogLevel:    "info",
		Backend: BackendConfig{
			URL:                   "http://127.0.0.1:5001",
			TimeoutSeconds:        0,
			StatusCacheTTLSeconds: 10,
		},
		Progress: ProgressConfig{
			TickMillis:        1000,
			CollectAfterTicks: 3,
			AnalyzeAfterTicks: 6,
			BoundTicks:        20,
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:     5,
			IntervalSeconds: 60,
			TimeoutSeconds:  30,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		UI: UIConfig{
			Title: "Chain of Agents Stock Analysis",
		},
		HTTP: HTTPConfig{
			Port:                  "8080",
			CORSAllowedOrigins:    "*",
			RequestTimeoutSeconds: 300,
		},
	}
}
