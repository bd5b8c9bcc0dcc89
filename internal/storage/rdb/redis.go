package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"library-admin/internal/models"
)

const keyPrefix = "library-admin:session:"

// Client is the subset of go-redis used by RedisDB
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisDB stores one JSON user marker per chat
type RedisDB struct {
	client Client
	ttl    time.Duration
}

// NewRedisDB connects to the Redis server at url (redis://...).
// A zero ttl keeps markers until logout.
func NewRedisDB(url string, ttl time.Duration) (*RedisDB, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &RedisDB{client: client, ttl: ttl}, nil
}

// NewRedisDBWithClient wraps an existing client
func NewRedisDBWithClient(client Client, ttl time.Duration) *RedisDB {
	return &RedisDB{client: client, ttl: ttl}
}

// Initialize is a no-op, Redis needs no schema
func (db *RedisDB) Initialize(ctx context.Context) error {
	return nil
}

// SaveUser stores user as the chat's marker
func (db *RedisDB) SaveUser(ctx context.Context, chatID int64, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := db.client.Set(ctx, key(chatID), data, db.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// CurrentUser returns the chat's marker, nil when absent
func (db *RedisDB) CurrentUser(ctx context.Context, chatID int64) (*models.User, error) {
	data, err := db.client.Get(ctx, key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &user, nil
}

// ClearUser removes the chat's marker
func (db *RedisDB) ClearUser(ctx context.Context, chatID int64) error {
	if err := db.client.Del(ctx, key(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (db *RedisDB) Close() error {
	if db.client != nil {
		return db.client.Close()
	}
	return nil
}

func key(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}
