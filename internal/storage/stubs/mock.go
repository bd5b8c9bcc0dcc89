package stubs

import (
	"context"
	"sync"

	"library-admin/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for testing
// and for running without a database
type MockDB struct {
	mu    sync.RWMutex
	users map[int64]models.User
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		users: make(map[int64]models.User),
	}
}

// Initialize is a no-op
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// SaveUser records user as logged in for chatID
func (m *MockDB) SaveUser(ctx context.Context, chatID int64, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[chatID] = user
	return nil
}

// CurrentUser returns the marker for chatID, nil when logged out
func (m *MockDB) CurrentUser(ctx context.Context, chatID int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[chatID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// ClearUser removes the marker for chatID
func (m *MockDB) ClearUser(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, chatID)
	return nil
}

// Close is a no-op for mock database
func (m *MockDB) Close() error {
	return nil
}
