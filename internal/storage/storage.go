package storage

import (
	"context"

	"library-admin/internal/models"
)

// Storage keeps the logged-in user marker of each console (chat)
type Storage interface {
	// SaveUser records user as logged in for chatID, replacing any previous marker
	SaveUser(ctx context.Context, chatID int64, user models.User) error

	// CurrentUser returns the marker for chatID, or nil when nobody is logged in
	CurrentUser(ctx context.Context, chatID int64) (*models.User, error)

	// ClearUser removes the marker (logout)
	ClearUser(ctx context.Context, chatID int64) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
