package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"sattbot/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// External provider credentials
	OpenRouterAPIKey string
	HumorAPIKey      string

	// Provider endpoints
	OpenRouterBaseURL string
	HumorAPIURL       string
	NewsFeedURL       string
	QOTDFeedURL       string

	// Default AI model used when a guild has not picked one
	DefaultAIModel string

	// NATS configuration (empty disables event publishing)
	NATSServers string

	// Daily post schedule
	DailyPostHour int // Hour in UTC when the daily news and QOTD are posted (0-23)

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
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
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
	// Best-effort .env loading for local development
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Providers
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		HumorAPIKey:      os.Getenv("HUMOR_API_KEY"),

		OpenRouterBaseURL: getEnvWithDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		HumorAPIURL:       getEnvWithDefault("HUMOR_API_URL", "https://api.humorapi.com"),
		NewsFeedURL:       getEnvWithDefault("NEWS_FEED_URL", "https://metacurate.io/briefs/daily/latest/rss"),
		QOTDFeedURL:       getEnvWithDefault("QOTD_FEED_URL", "https://metacurate.io/qotd/rss"),

		DefaultAIModel: getEnvWithDefault("DEFAULT_AI_MODEL", "google/gemini-2.5-flash"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Daily posts at 14:00 UTC unless overridden
		DailyPostHour: 14,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if hour := os.Getenv("DAILY_POST_HOUR"); hour != "" {
		if parsed, err := strconv.Atoi(hour); err == nil && parsed >= 0 && parsed <= 23 {
			config.DailyPostHour = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
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
		Environment:    "test",
		DefaultAIModel: "google/gemini-2.5-flash",
		DailyPostHour:  14,
	}
}
