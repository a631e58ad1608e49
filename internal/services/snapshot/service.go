// Package snapshot persists and reconciles daily portfolio value snapshots
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
)

// Service implements SnapshotService.
type Service struct {
	storage   interfaces.StorageManager
	valuation interfaces.ValuationService
	logger    *common.Logger
	now       func() time.Time // injectable clock for testing
}

// NewService creates a new snapshot service. valuation may be nil when only
// the record/history paths are needed (ReconcileAll will fail without it).
func NewService(storage interfaces.StorageManager, valuation interfaces.ValuationService, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		valuation: valuation,
		logger:    logger,
		now:       time.Now,
	}
}

// Record upserts the (user, UTC day) snapshot with the given total,
// overwriting any existing value for that day. Last writer wins; concurrent
// writers race benignly because the write is an idempotent overwrite. Totals
// are rounded to 4 decimal places before persisting.
func (s *Service) Record(ctx context.Context, userID string, totalUSD float64, day time.Time) error {
	dayStr := day.UTC().Format(models.SnapshotDay)
	rounded := decimal.NewFromFloat(totalUSD).Round(4).InexactFloat64()

	snap := &models.ValueSnapshot{
		ID:        models.SnapshotID(userID, dayStr),
		UserID:    userID,
		Day:       dayStr,
		TotalUSD:  rounded,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.storage.SnapshotStore().Upsert(ctx, snap); err != nil {
		return fmt.Errorf("upsert snapshot for %s on %s: %w", userID, dayStr, err)
	}
	return nil
}

// BuildHistory returns one point per calendar day in [from, to] inclusive.
// Days with a snapshot use its value; gaps carry the most recent known value
// forward (value doesn't change when we didn't sample it). The carry-forward
// seed is the latest snapshot before the range, or 0 when none exists.
// Read-only: re-running with the same inputs has no side effects.
func (s *Service) BuildHistory(ctx context.Context, userID string, from, to time.Time) ([]models.HistoryPoint, error) {
	start := dateOnly(from)
	end := dateOnly(to)
	if end.Before(start) {
		return nil, fmt.Errorf("invalid history range: %s after %s",
			start.Format(models.SnapshotDay), end.Format(models.SnapshotDay))
	}

	store := s.storage.SnapshotStore()
	fromStr := start.Format(models.SnapshotDay)
	toStr := end.Format(models.SnapshotDay)

	snaps, err := store.ListRange(ctx, userID, fromStr, toStr)
	if err != nil {
		return nil, fmt.Errorf("list snapshots %s..%s: %w", fromStr, toStr, err)
	}
	byDay := make(map[string]float64, len(snaps))
	for _, snap := range snaps {
		byDay[snap.Day] = snap.TotalUSD
	}

	carry := 0.0
	if prior, err := store.LatestBefore(ctx, userID, fromStr); err == nil {
		carry = prior.TotalUSD
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("find carry-forward seed: %w", err)
	}

	var points []models.HistoryPoint
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dayStr := d.Format(models.SnapshotDay)
		if total, ok := byDay[dayStr]; ok {
			carry = total
		}
		points = append(points, models.HistoryPoint{Day: dayStr, TotalUSD: carry})
	}

	return points, nil
}

// Reconcile writes today's snapshot, then computes the day-over-day delta
// against the most recent snapshot whose day differs from today. The
// two-snapshot lookback matters: once today's row is written (possibly
// earlier in the same session), the most recent snapshot IS today, and
// comparing against it would always yield zero.
func (s *Service) Reconcile(ctx context.Context, userID string, liveTotal float64, today time.Time) (*models.SnapshotDiff, error) {
	if err := s.Record(ctx, userID, liveTotal, today); err != nil {
		return nil, err
	}

	todayStr := today.UTC().Format(models.SnapshotDay)
	recent, err := s.storage.SnapshotStore().ListRecent(ctx, userID, 2)
	if err != nil {
		return nil, fmt.Errorf("list recent snapshots for %s: %w", userID, err)
	}

	diff := &models.SnapshotDiff{}
	for _, snap := range recent {
		if snap.Day == todayStr {
			continue
		}
		diff.HasBaseline = true
		diff.BaselineDay = snap.Day
		diff.BaselineTotal = snap.TotalUSD
		diff.DayChangeAmount = liveTotal - snap.TotalUSD
		if snap.TotalUSD > 0 {
			diff.DayChangePct = diff.DayChangeAmount / snap.TotalUSD * 100
		}
		break
	}

	return diff, nil
}

// ReconcileAll values and snapshots every stored portfolio once. Failures on
// one user are logged and skipped so a single bad portfolio cannot stall the
// batch. Returns the number of portfolios successfully reconciled.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	if s.valuation == nil {
		return 0, fmt.Errorf("reconcile all: no valuation service configured")
	}

	userIDs, err := s.storage.PortfolioStore().ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list portfolios: %w", err)
	}

	count := 0
	for _, userID := range userIDs {
		portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Skipping portfolio in batch snapshot")
			continue
		}

		result, err := s.valuation.ValuePortfolio(ctx, portfolio.Holdings)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Valuation failed in batch snapshot")
			continue
		}

		if _, err := s.Reconcile(ctx, userID, result.TotalUSD, s.now()); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Snapshot write failed in batch snapshot")
			continue
		}
		count++
	}

	s.logger.Info().Int("portfolios", count).Msg("Batch snapshot run complete")
	return count, nil
}

// dateOnly truncates a time to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Ensure Service implements SnapshotService
var _ interfaces.SnapshotService = (*Service)(nil)
