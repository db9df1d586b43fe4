package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"fortuna/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Worker intervals
	DrawSchedulerInterval time.Duration
	TradePollInterval     time.Duration
	RoundWorkerInterval   time.Duration

	// Price feed configuration
	PriceFeedURL          string
	PriceFeedPollInterval time.Duration
	PriceFeedSymbols      []string // symbols to poll, comma-separated in env

	// Round configuration
	RoundSecretKey string // hex-encoded 32-byte AES key for sealed round secrets

	// Admin API configuration
	AdminAPIPort int

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		DrawSchedulerInterval: getEnvDuration("DRAW_SCHEDULER_INTERVAL", time.Minute),
		TradePollInterval:     getEnvDuration("TRADE_POLL_INTERVAL", 30*time.Second),
		RoundWorkerInterval:   getEnvDuration("ROUND_WORKER_INTERVAL", time.Minute),

		PriceFeedURL:          getEnvWithDefault("PRICE_FEED_URL", "https://api.binance.com/api/v3/ticker/price"),
		PriceFeedPollInterval: getEnvDuration("PRICE_FEED_POLL_INTERVAL", 5*time.Second),

		RoundSecretKey: os.Getenv("ROUND_SECRET_KEY"),

		AdminAPIPort: 8889,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if symbols := os.Getenv("PRICE_FEED_SYMBOLS"); symbols != "" {
		for _, s := range strings.Split(symbols, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				config.PriceFeedSymbols = append(config.PriceFeedSymbols, s)
			}
		}
	} else {
		config.PriceFeedSymbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	}

	if port := os.Getenv("ADMIN_API_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			config.AdminAPIPort = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration environment variable, falling back to the
// default on absence or parse failure
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:           "test",
		DrawSchedulerInterval: time.Minute,
		TradePollInterval:     30 * time.Second,
		RoundWorkerInterval:   time.Minute,
		PriceFeedPollInterval: 5 * time.Second,
		PriceFeedSymbols:      []string{"BTCUSDT"},
		AdminAPIPort:          8889,
	}
}
