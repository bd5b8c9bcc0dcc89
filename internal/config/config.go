package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIBaseURL is where the catalogue backend is deployed by default
const DefaultAPIBaseURL = "http://localhost:8080/LibrarySystem_war_exploded/api"

// Session store backends
const (
	StoreClickHouse = "clickhouse"
	StoreRedis      = "redis"
	StoreMemory     = "memory"
)

// Config holds the application configuration
type Config struct {
	TelegramToken  string
	AllowedUserIDs []int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)
	Port        string

	// Library API
	APIBaseURL string
	APITimeout time.Duration // zero leaves requests unbounded

	// Console behaviour
	SuccessDelay  time.Duration
	SendRateLimit float64 // Telegram messages per second, zero disables throttling

	// Session store
	SessionStore string
	UseMockDB    bool

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	// Redis configuration
	RedisURL   string
	SessionTTL time.Duration

	// Logging
	LogLevel          string
	LogFile           string
	LogFileMaxSize    int // megabytes
	LogFileMaxBackups int
	LogFileMaxAge     int // days
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Allowed User IDs (required)
	allowedIDsStr := os.Getenv("ALLOWED_USER_IDS")
	if allowedIDsStr == "" {
		return nil, fmt.Errorf("ALLOWED_USER_IDS is required (comma-separated list of Telegram user IDs)")
	}

	idStrs := strings.Split(allowedIDsStr, ",")
	for _, idStr := range idStrs {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in ALLOWED_USER_IDS: %s", idStr)
		}
		config.AllowedUserIDs = append(config.AllowedUserIDs, id)
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}
	config.Port = getEnv("PORT", "8080")

	// Library API
	config.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", DefaultAPIBaseURL), "/")
	var err error
	if config.APITimeout, err = durationEnv("API_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if config.SuccessDelay, err = durationEnv("SUCCESS_DELAY", time.Second); err != nil {
		return nil, err
	}
	if s := os.Getenv("SEND_RATE_LIMIT"); s != "" {
		rate, err := strconv.ParseFloat(s, 64)
		if err != nil || rate < 0 {
			return nil, fmt.Errorf("invalid SEND_RATE_LIMIT: %s", s)
		}
		config.SendRateLimit = rate
	} else {
		config.SendRateLimit = 25
	}

	// Logging
	config.LogLevel = getEnv("LOG_LEVEL", "info")
	config.LogFile = os.Getenv("LOG_FILE")
	if config.LogFileMaxSize, err = intEnv("LOG_FILE_MAX_SIZE", 100); err != nil {
		return nil, err
	}
	if config.LogFileMaxBackups, err = intEnv("LOG_FILE_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if config.LogFileMaxAge, err = intEnv("LOG_FILE_MAX_AGE", 28); err != nil {
		return nil, err
	}

	// Use Mock DB (default: false) wins over SESSION_STORE
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"
	config.SessionStore = strings.ToLower(getEnv("SESSION_STORE", StoreClickHouse))
	if config.UseMockDB {
		config.SessionStore = StoreMemory
	}

	switch config.SessionStore {
	case StoreMemory:
	case StoreRedis:
		config.RedisURL = os.Getenv("REDIS_URL")
		if config.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when SESSION_STORE is redis")
		}
		if config.SessionTTL, err = durationEnv("SESSION_TTL", 0); err != nil {
			return nil, err
		}
	case StoreClickHouse:
		if err := loadClickHouse(config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q (expected clickhouse, redis or memory)", config.SessionStore)
	}

	return config, nil
}

func loadClickHouse(config *Config) error {
	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHouseHost == "" {
		return fmt.Errorf("CLICKHOUSE_HOST is required when USE_MOCK_DB is not set")
	}

	portStr := os.Getenv("CLICKHOUSE_PORT")
	if portStr == "" {
		config.ClickHousePort = 9000 // Default ClickHouse native port
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
		}
		config.ClickHousePort = port
	}

	config.ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", "default")
	config.ClickHouseUser = getEnv("CLICKHOUSE_USER", "default")
	// Password is optional, can be empty
	config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %s", key, s)
	}
	return d, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
