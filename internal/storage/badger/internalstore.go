package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type internalStore struct {
	store  *Store
	logger *common.Logger
}

func newInternalStore(store *Store, logger *common.Logger) *internalStore {
	return &internalStore{store: store, logger: logger}
}

// --- User accounts ---

func (s *internalStore) GetUser(_ context.Context, userID string) (*models.InternalUser, error) {
	var user models.InternalUser
	if err := s.store.db.Get(userID, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return &user, nil
}

func (s *internalStore) SaveUser(_ context.Context, user *models.InternalUser) error {
	now := time.Now().UTC()
	var existing models.InternalUser
	if err := s.store.db.Get(user.ID, &existing); err == nil {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if err := s.store.db.Upsert(user.ID, user); err != nil {
		return fmt.Errorf("failed to save user '%s': %w", user.ID, err)
	}
	s.logger.Debug().Str("user_id", user.ID).Msg("User saved")
	return nil
}

func (s *internalStore) DeleteUser(_ context.Context, userID string) error {
	if err := s.store.db.Delete(userID, models.InternalUser{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	// Delete the user's KV entries as well
	var kvs []models.UserKeyValue
	if err := s.store.db.Find(&kvs, badgerhold.Where("UserID").Eq(userID)); err == nil {
		for _, kv := range kvs {
			_ = s.store.db.Delete(kv.ID, models.UserKeyValue{})
		}
	}
	s.logger.Debug().Str("user_id", userID).Msg("User and KV entries deleted")
	return nil
}

func (s *internalStore) ListUsers(_ context.Context) ([]string, error) {
	var users []models.InternalUser
	if err := s.store.db.Find(&users, nil); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

// --- Per-user key-value config ---

func (s *internalStore) GetUserKV(_ context.Context, userID, key string) (*models.UserKeyValue, error) {
	var kv models.UserKeyValue
	if err := s.store.db.Get(models.UserKVID(userID, key), &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kv '%s' for user '%s': %w", key, userID, err)
	}
	return &kv, nil
}

func (s *internalStore) SetUserKV(_ context.Context, userID, key, value string) error {
	kv := &models.UserKeyValue{
		ID:        models.UserKVID(userID, key),
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.db.Upsert(kv.ID, kv); err != nil {
		return fmt.Errorf("failed to set kv '%s' for user '%s': %w", key, userID, err)
	}
	return nil
}

func (s *internalStore) DeleteUserKV(_ context.Context, userID, key string) error {
	err := s.store.db.Delete(models.UserKVID(userID, key), models.UserKeyValue{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete kv '%s' for user '%s': %w", key, userID, err)
	}
	return nil
}

// --- System key-value ---

func (s *internalStore) GetSystemKV(_ context.Context, key string) (string, error) {
	var kv models.SystemKeyValue
	if err := s.store.db.Get(key, &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get system kv '%s': %w", key, err)
	}
	return kv.Value, nil
}

func (s *internalStore) SetSystemKV(_ context.Context, key, value string) error {
	kv := &models.SystemKeyValue{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.db.Upsert(key, kv); err != nil {
		return fmt.Errorf("failed to set system kv '%s': %w", key, err)
	}
	return nil
}

func (s *internalStore) Close() error {
	// The shared database is closed by the manager.
	return nil
}

// Compile-time check
var _ interfaces.InternalStore = (*internalStore)(nil)
