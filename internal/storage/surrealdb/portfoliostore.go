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

// PortfolioStore implements interfaces.PortfolioStore on SurrealDB.
// Portfolios are keyed by user ID, one per user.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{
		db:     db,
		logger: logger,
	}
}

func (s *PortfolioStore) GetPortfolio(ctx context.Context, userID string) (*models.Portfolio, error) {
	portfolio, err := surrealdb.Select[models.Portfolio](ctx, s.db, surrealmodels.NewRecordID("portfolio", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select portfolio: %w", err)
	}
	if portfolio == nil || portfolio.UserID == "" {
		return nil, interfaces.ErrNotFound
	}
	return portfolio, nil
}

func (s *PortfolioStore) SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	now := time.Now().UTC()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = now
	}
	if portfolio.UpdatedAt.IsZero() {
		portfolio.UpdatedAt = now
	}

	sql := "UPSERT type::record('portfolio', $id) CONTENT $portfolio"
	vars := map[string]any{"id": portfolio.UserID, "portfolio": portfolio}
	if _, err := surrealdb.Query[[]models.Portfolio](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save portfolio for '%s': %w", portfolio.UserID, err)
	}
	s.logger.Debug().Str("user_id", portfolio.UserID).Int("holdings", len(portfolio.Holdings)).Msg("Portfolio saved")
	return nil
}

func (s *PortfolioStore) DeletePortfolio(ctx context.Context, userID string) error {
	if _, err := surrealdb.Delete[models.Portfolio](ctx, s.db, surrealmodels.NewRecordID("portfolio", userID)); err != nil {
		return fmt.Errorf("failed to delete portfolio for '%s': %w", userID, err)
	}
	return nil
}

func (s *PortfolioStore) ListUserIDs(ctx context.Context) ([]string, error) {
	list, err := surrealdb.Select[[]models.Portfolio](ctx, s.db, surrealmodels.Table("portfolio"))
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	var ids []string
	if list != nil {
		for _, p := range *list {
			if p.UserID != "" {
				ids = append(ids, p.UserID)
			}
		}
	}
	return ids, nil
}

// Compile-time check
var _ interfaces.PortfolioStore = (*PortfolioStore)(nil)
