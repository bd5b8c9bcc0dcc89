package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"library-admin/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
	now  func() time.Time
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn, now: time.Now}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	return nil
}

// SaveUser appends a logged-in row; ReplacingMergeTree keeps the newest per chat
func (db *ClickHouseDB) SaveUser(ctx context.Context, chatID int64, user models.User) error {
	err := db.conn.Exec(ctx, `INSERT INTO sessions (chat_id, user_id, username, account, logged_in, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		chatID, user.ID, user.Username, user.Account, true, db.now())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// CurrentUser returns the newest marker of the chat, nil when absent or logged out
func (db *ClickHouseDB) CurrentUser(ctx context.Context, chatID int64) (*models.User, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT user_id, username, account, logged_in
		FROM sessions FINAL
		WHERE chat_id = ?
		ORDER BY updated_at DESC
		LIMIT 1`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		user     models.User
		loggedIn bool
	)
	if err := rows.Scan(&user.ID, &user.Username, &user.Account, &loggedIn); err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	if !loggedIn {
		return nil, nil
	}
	return &user, nil
}

// ClearUser appends a logged-out row for the chat
func (db *ClickHouseDB) ClearUser(ctx context.Context, chatID int64) error {
	err := db.conn.Exec(ctx, `INSERT INTO sessions (chat_id, user_id, username, account, logged_in, updated_at) VALUES (?, 0, '', '', false, ?)`,
		chatID, db.now())
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
