package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ALLOWED_USER_IDS", "1, 2")
	t.Setenv("USE_MOCK_DB", "true")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, cfg.AllowedUserIDs)
	assert.False(t, cfg.WebhookMode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Zero(t, cfg.APITimeout)
	assert.Equal(t, time.Second, cfg.SuccessDelay)
	assert.Equal(t, 25.0, cfg.SendRateLimit)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.LogFileMaxSize)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_BASE_URL", "http://backend:9090/api/")
	t.Setenv("API_TIMEOUT", "15s")
	t.Setenv("SUCCESS_DELAY", "0s")
	t.Setenv("SEND_RATE_LIMIT", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/admin.log")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9090/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Zero(t, cfg.SuccessDelay)
	assert.Zero(t, cfg.SendRateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/admin.log", cfg.LogFile)
}

func TestLoadFromEnv_ClickHouse(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ALLOWED_USER_IDS", "1")
	t.Setenv("CLICKHOUSE_HOST", "ch.local")
	t.Setenv("CLICKHOUSE_USE_TLS", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreClickHouse, cfg.SessionStore)
	assert.Equal(t, "ch.local", cfg.ClickHouseHost)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "default", cfg.ClickHouseUser)
	assert.True(t, cfg.ClickHouseUseTLS)
}

func TestLoadFromEnv_Redis(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ALLOWED_USER_IDS", "1")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_TTL", "24h")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.SessionStore)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing token",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": ""},
			want: "TELEGRAM_BOT_TOKEN is required",
		},
		{
			name: "bad user id",
			env:  map[string]string{"ALLOWED_USER_IDS": "1,abc"},
			want: "invalid user ID in ALLOWED_USER_IDS: abc",
		},
		{
			name: "webhook without url",
			env:  map[string]string{"WEBHOOK_MODE": "true"},
			want: "WEBHOOK_URL is required when WEBHOOK_MODE is true",
		},
		{
			name: "bad timeout",
			env:  map[string]string{"API_TIMEOUT": "soon"},
			want: "invalid API_TIMEOUT: soon",
		},
		{
			name: "bad rate",
			env:  map[string]string{"SEND_RATE_LIMIT": "-1"},
			want: "invalid SEND_RATE_LIMIT: -1",
		},
		{
			name: "clickhouse without host",
			env:  map[string]string{"USE_MOCK_DB": "false", "CLICKHOUSE_HOST": ""},
			want: "CLICKHOUSE_HOST is required when USE_MOCK_DB is not set",
		},
		{
			name: "redis without url",
			env:  map[string]string{"USE_MOCK_DB": "false", "SESSION_STORE": "redis"},
			want: "REDIS_URL is required when SESSION_STORE is redis",
		},
		{
			name: "unknown store",
			env:  map[string]string{"USE_MOCK_DB": "false", "SESSION_STORE": "sqlite"},
			want: `unknown SESSION_STORE "sqlite" (expected clickhouse, redis or memory)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
