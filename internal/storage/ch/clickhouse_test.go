package ch

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"library-admin/internal/models"
	"library-admin/migrations"
)

// runMigrations applies the embedded goose migrations
func runMigrations(host string, port string) error {
	db, err := sql.Open("clickhouse", migrations.DSN(host, port, "default", "default", "", false))
	if err != nil {
		return err
	}
	defer db.Close()
	return migrations.Up(db)
}

// setupTestDB creates a test ClickHouse instance using testcontainers
func setupTestDB(t *testing.T) (*ClickHouseDB, func()) {
	if testing.Short() {
		t.Skip("Skipping ClickHouse container test in short mode")
	}
	ctx := context.Background()

	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	db, err := NewClickHouseDB(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	err = runMigrations(host, port.Port())
	require.NoError(t, err, "Failed to run migrations")

	// Deterministic, strictly increasing timestamps
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	cleanup := func() {
		db.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestClickHouseDB_SaveAndCurrentUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := db.CurrentUser(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user)

	err = db.SaveUser(ctx, 42, models.User{ID: 7, Username: "Ann", Account: "ann"})
	require.NoError(t, err)

	user, err = db.CurrentUser(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.User{ID: 7, Username: "Ann", Account: "ann"}, *user)

	other, err := db.CurrentUser(ctx, 43)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestClickHouseDB_LatestMarkerWins(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, db.SaveUser(ctx, 1, models.User{ID: 1, Username: "first"}))
	require.NoError(t, db.SaveUser(ctx, 1, models.User{ID: 2, Username: "second"}))

	user, err := db.CurrentUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "second", user.Username)
}

func TestClickHouseDB_ClearUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, db.SaveUser(ctx, 1, models.User{ID: 1, Username: "Ann"}))
	require.NoError(t, db.ClearUser(ctx, 1))

	user, err := db.CurrentUser(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, user)

	// Logging in again after logout
	require.NoError(t, db.SaveUser(ctx, 1, models.User{ID: 3, Username: "Bob"}))
	user, err = db.CurrentUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Bob", user.Username)
}
