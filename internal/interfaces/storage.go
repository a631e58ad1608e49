package interfaces

import (
	"context"

	"github.com/corelabs/core/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	InternalStore() InternalStore
	PortfolioStore() PortfolioStore
	SnapshotStore() SnapshotStore

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts, per-user config, and system-level KV.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	DeleteUserKV(ctx context.Context, userID, key string) error

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// PortfolioStore manages portfolio persistence. One portfolio per user.
type PortfolioStore interface {
	// GetPortfolio retrieves a user's portfolio, or ErrNotFound.
	GetPortfolio(ctx context.Context, userID string) (*models.Portfolio, error)

	// SavePortfolio persists a portfolio, replacing any existing one for the
	// same user (holdings replaced wholesale).
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error

	// DeletePortfolio removes a user's portfolio.
	DeletePortfolio(ctx context.Context, userID string) error

	// ListUserIDs returns the IDs of all users with a stored portfolio.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// SnapshotStore manages daily value snapshots. At most one row exists per
// (user, UTC day); Upsert overwrites on the composite key.
type SnapshotStore interface {
	// Upsert writes a snapshot, overwriting any existing (user, day) row.
	Upsert(ctx context.Context, snapshot *models.ValueSnapshot) error

	// Get retrieves the snapshot for a specific day, or ErrNotFound.
	Get(ctx context.Context, userID, day string) (*models.ValueSnapshot, error)

	// ListRange returns snapshots with from <= day <= to, ordered by day
	// ascending.
	ListRange(ctx context.Context, userID, from, to string) ([]*models.ValueSnapshot, error)

	// ListRecent returns the most recent snapshots for a user, ordered by day
	// descending, at most limit entries.
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.ValueSnapshot, error)

	// LatestBefore returns the most recent snapshot with day < before, or
	// ErrNotFound.
	LatestBefore(ctx context.Context, userID, before string) (*models.ValueSnapshot, error)
}
