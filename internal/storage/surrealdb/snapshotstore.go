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

// SnapshotStore implements interfaces.SnapshotStore on SurrealDB. Records are
// keyed by the composite (user, day) ID so writes upsert in place.
type SnapshotStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSnapshotStore(db *surrealdb.DB, logger *common.Logger) *SnapshotStore {
	return &SnapshotStore{
		db:     db,
		logger: logger,
	}
}

func (s *SnapshotStore) Upsert(ctx context.Context, snapshot *models.ValueSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = models.SnapshotID(snapshot.UserID, snapshot.Day)
	}

	now := time.Now().UTC()
	if existing, err := s.Get(ctx, snapshot.UserID, snapshot.Day); err == nil {
		snapshot.CreatedAt = existing.CreatedAt
	} else if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = now
	}
	snapshot.UpdatedAt = now

	sql := "UPSERT type::record('snapshot', $id) CONTENT $snapshot"
	vars := map[string]any{"id": snapshot.ID, "snapshot": snapshot}
	if _, err := surrealdb.Query[[]models.ValueSnapshot](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to upsert snapshot '%s': %w", snapshot.ID, err)
	}
	s.logger.Debug().Str("user_id", snapshot.UserID).Str("day", snapshot.Day).Float64("total_usd", snapshot.TotalUSD).Msg("Snapshot upserted")
	return nil
}

func (s *SnapshotStore) Get(ctx context.Context, userID, day string) (*models.ValueSnapshot, error) {
	snapshot, err := surrealdb.Select[models.ValueSnapshot](ctx, s.db, surrealmodels.NewRecordID("snapshot", models.SnapshotID(userID, day)))
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot: %w", err)
	}
	if snapshot == nil || snapshot.Day == "" {
		return nil, interfaces.ErrNotFound
	}
	return snapshot, nil
}

func (s *SnapshotStore) ListRange(ctx context.Context, userID, from, to string) ([]*models.ValueSnapshot, error) {
	sql := "SELECT * FROM snapshot WHERE user_id = $user_id AND day >= $from AND day <= $to ORDER BY day ASC"
	vars := map[string]any{"user_id": userID, "from": from, "to": to}

	results, err := surrealdb.Query[[]models.ValueSnapshot](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for '%s': %w", userID, err)
	}
	return collectSnapshots(results), nil
}

func (s *SnapshotStore) ListRecent(ctx context.Context, userID string, limit int) ([]*models.ValueSnapshot, error) {
	sql := "SELECT * FROM snapshot WHERE user_id = $user_id ORDER BY day DESC LIMIT $limit"
	vars := map[string]any{"user_id": userID, "limit": limit}

	results, err := surrealdb.Query[[]models.ValueSnapshot](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent snapshots for '%s': %w", userID, err)
	}
	return collectSnapshots(results), nil
}

func (s *SnapshotStore) LatestBefore(ctx context.Context, userID, before string) (*models.ValueSnapshot, error) {
	sql := "SELECT * FROM snapshot WHERE user_id = $user_id AND day < $before ORDER BY day DESC LIMIT 1"
	vars := map[string]any{"user_id": userID, "before": before}

	results, err := surrealdb.Query[[]models.ValueSnapshot](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot before %s for '%s': %w", before, userID, err)
	}
	snapshots := collectSnapshots(results)
	if len(snapshots) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return snapshots[0], nil
}

func collectSnapshots(results *[]surrealdb.QueryResult[[]models.ValueSnapshot]) []*models.ValueSnapshot {
	snapshots := make([]*models.ValueSnapshot, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			snapshots = append(snapshots, &(*results)[0].Result[i])
		}
	}
	return snapshots
}

// Compile-time check
var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
