package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// InternalStore implements interfaces.InternalStore on SurrealDB.
type InternalStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewInternalStore(db *surrealdb.DB, logger *common.Logger) *InternalStore {
	return &InternalStore{
		db:     db,
		logger: logger,
	}
}

func (s *InternalStore) GetUser(ctx context.Context, userID string) (*models.InternalUser, error) {
	user, err := surrealdb.Select[models.InternalUser](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil || user.ID == "" {
		return nil, interfaces.ErrNotFound
	}
	return user, nil
}

func (s *InternalStore) SaveUser(ctx context.Context, user *models.InternalUser) error {
	now := time.Now().UTC()
	if existing, err := s.GetUser(ctx, user.ID); err == nil {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	sql := "UPSERT type::record('user', $id) CONTENT $user"
	vars := map[string]any{"id": user.ID, "user": user}
	if _, err := surrealdb.Query[[]models.InternalUser](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save user '%s': %w", user.ID, err)
	}
	return nil
}

func (s *InternalStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := surrealdb.Delete[models.InternalUser](ctx, s.db, surrealmodels.NewRecordID("user", userID)); err != nil {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	// Remove the user's KV entries as well
	sql := "DELETE user_kv WHERE user_id = $user_id"
	if _, err := surrealdb.Query[any](ctx, s.db, sql, map[string]any{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete kv entries for '%s': %w", userID, err)
	}
	return nil
}

func (s *InternalStore) ListUsers(ctx context.Context) ([]string, error) {
	list, err := surrealdb.Select[[]models.InternalUser](ctx, s.db, surrealmodels.Table("user"))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var ids []string
	if list != nil {
		for _, u := range *list {
			if u.ID != "" {
				ids = append(ids, u.ID)
			}
		}
	}
	return ids, nil
}

func (s *InternalStore) GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error) {
	kv, err := surrealdb.Select[models.UserKeyValue](ctx, s.db, surrealmodels.NewRecordID("user_kv", models.UserKVID(userID, key)))
	if err != nil {
		return nil, fmt.Errorf("failed to select user kv: %w", err)
	}
	if kv == nil || kv.Key == "" {
		return nil, interfaces.ErrNotFound
	}
	return kv, nil
}

func (s *InternalStore) SetUserKV(ctx context.Context, userID, key, value string) error {
	kv := models.UserKeyValue{
		ID:        models.UserKVID(userID, key),
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	sql := "UPSERT type::record('user_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": kv.ID, "kv": kv}
	if _, err := surrealdb.Query[[]models.UserKeyValue](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to set kv '%s' for user '%s': %w", key, userID, err)
	}
	return nil
}

func (s *InternalStore) DeleteUserKV(ctx context.Context, userID, key string) error {
	if _, err := surrealdb.Delete[models.UserKeyValue](ctx, s.db, surrealmodels.NewRecordID("user_kv", models.UserKVID(userID, key))); err != nil {
		return fmt.Errorf("failed to delete kv '%s' for user '%s': %w", key, userID, err)
	}
	return nil
}

func (s *InternalStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	kv, err := surrealdb.Select[models.SystemKeyValue](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil {
		return "", fmt.Errorf("failed to select system kv: %w", err)
	}
	if kv == nil || kv.Key == "" {
		return "", nil
	}
	return kv.Value, nil
}

func (s *InternalStore) SetSystemKV(ctx context.Context, key, value string) error {
	kv := models.SystemKeyValue{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	sql := "UPSERT type::record('system_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": kv}
	if _, err := surrealdb.Query[[]models.SystemKeyValue](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to set system kv '%s': %w", key, err)
	}
	return nil
}

func (s *InternalStore) Close() error {
	// The shared connection is closed by the manager.
	return nil
}

// Compile-time check
var _ interfaces.InternalStore = (*InternalStore)(nil)
