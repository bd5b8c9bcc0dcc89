package rdb

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-admin/internal/models"
	"library-admin/internal/storage"
)

var _ storage.Storage = (*RedisDB)(nil)

func newTestRedisDB(t *testing.T, ttl time.Duration) (*RedisDB, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDBWithClient(client, ttl), mr
}

func TestRedisDB_SaveAndCurrentUser(t *testing.T) {
	db, mr := newTestRedisDB(t, 0)
	ctx := context.Background()

	user, err := db.CurrentUser(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, db.SaveUser(ctx, 10, models.User{ID: 3, Username: "Ann", Account: "ann"}))
	assert.True(t, mr.Exists("library-admin:session:10"))

	user, err = db.CurrentUser(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.User{ID: 3, Username: "Ann", Account: "ann"}, *user)
}

func TestRedisDB_ClearUser(t *testing.T) {
	db, mr := newTestRedisDB(t, 0)
	ctx := context.Background()

	require.NoError(t, db.SaveUser(ctx, 10, models.User{ID: 3, Username: "Ann"}))
	require.NoError(t, db.ClearUser(ctx, 10))
	assert.False(t, mr.Exists("library-admin:session:10"))

	user, err := db.CurrentUser(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRedisDB_MarkerExpires(t *testing.T) {
	db, mr := newTestRedisDB(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, db.SaveUser(ctx, 1, models.User{ID: 1, Username: "Ann"}))
	assert.Equal(t, time.Hour, mr.TTL("library-admin:session:1"))

	mr.FastForward(2 * time.Hour)

	user, err := db.CurrentUser(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRedisDB_CorruptMarker(t *testing.T) {
	db, mr := newTestRedisDB(t, 0)
	require.NoError(t, mr.Set("library-admin:session:1", "not json"))

	_, err := db.CurrentUser(context.Background(), 1)
	assert.Error(t, err)
}
