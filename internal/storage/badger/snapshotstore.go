package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type snapshotStore struct {
	store  *Store
	logger *common.Logger
}

func newSnapshotStore(store *Store, logger *common.Logger) *snapshotStore {
	return &snapshotStore{store: store, logger: logger}
}

func (s *snapshotStore) Upsert(_ context.Context, snapshot *models.ValueSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = models.SnapshotID(snapshot.UserID, snapshot.Day)
	}

	now := time.Now().UTC()
	var existing models.ValueSnapshot
	if err := s.store.db.Get(snapshot.ID, &existing); err == nil {
		snapshot.CreatedAt = existing.CreatedAt
	} else if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = now
	}
	snapshot.UpdatedAt = now

	if err := s.store.db.Upsert(snapshot.ID, snapshot); err != nil {
		return fmt.Errorf("failed to upsert snapshot '%s': %w", snapshot.ID, err)
	}
	s.logger.Debug().Str("user_id", snapshot.UserID).Str("day", snapshot.Day).Float64("total_usd", snapshot.TotalUSD).Msg("Snapshot upserted")
	return nil
}

func (s *snapshotStore) Get(_ context.Context, userID, day string) (*models.ValueSnapshot, error) {
	var snapshot models.ValueSnapshot
	if err := s.store.db.Get(models.SnapshotID(userID, day), &snapshot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot for '%s' on %s: %w", userID, day, err)
	}
	return &snapshot, nil
}

func (s *snapshotStore) ListRange(_ context.Context, userID, from, to string) ([]*models.ValueSnapshot, error) {
	all, err := s.userSnapshots(userID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.ValueSnapshot, 0)
	for i := range all {
		if all[i].Day >= from && all[i].Day <= to {
			result = append(result, &all[i])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day < result[j].Day })
	return result, nil
}

func (s *snapshotStore) ListRecent(_ context.Context, userID string, limit int) ([]*models.ValueSnapshot, error) {
	all, err := s.userSnapshots(userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Day > all[j].Day })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	result := make([]*models.ValueSnapshot, len(all))
	for i := range all {
		result[i] = &all[i]
	}
	return result, nil
}

func (s *snapshotStore) LatestBefore(_ context.Context, userID, before string) (*models.ValueSnapshot, error) {
	all, err := s.userSnapshots(userID)
	if err != nil {
		return nil, err
	}

	var latest *models.ValueSnapshot
	for i := range all {
		if all[i].Day >= before {
			continue
		}
		if latest == nil || all[i].Day > latest.Day {
			latest = &all[i]
		}
	}
	if latest == nil {
		return nil, interfaces.ErrNotFound
	}
	return latest, nil
}

// Day strings are YYYY-MM-DD so lexical order is chronological order.
func (s *snapshotStore) userSnapshots(userID string) ([]models.ValueSnapshot, error) {
	var all []models.ValueSnapshot
	if err := s.store.db.Find(&all, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list snapshots for '%s': %w", userID, err)
	}
	return all, nil
}

// Compile-time check
var _ interfaces.SnapshotStore = (*snapshotStore)(nil)
