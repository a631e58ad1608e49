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

type portfolioStore struct {
	store  *Store
	logger *common.Logger
}

func newPortfolioStore(store *Store, logger *common.Logger) *portfolioStore {
	return &portfolioStore{store: store, logger: logger}
}

func (s *portfolioStore) GetPortfolio(_ context.Context, userID string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := s.store.db.Get(userID, &portfolio); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio for '%s': %w", userID, err)
	}
	return &portfolio, nil
}

func (s *portfolioStore) SavePortfolio(_ context.Context, portfolio *models.Portfolio) error {
	now := time.Now().UTC()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = now
	}
	if portfolio.UpdatedAt.IsZero() {
		portfolio.UpdatedAt = now
	}

	if err := s.store.db.Upsert(portfolio.UserID, portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio for '%s': %w", portfolio.UserID, err)
	}
	s.logger.Debug().Str("user_id", portfolio.UserID).Int("holdings", len(portfolio.Holdings)).Msg("Portfolio saved")
	return nil
}

func (s *portfolioStore) DeletePortfolio(_ context.Context, userID string) error {
	err := s.store.db.Delete(userID, models.Portfolio{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete portfolio for '%s': %w", userID, err)
	}
	s.logger.Debug().Str("user_id", userID).Msg("Portfolio deleted")
	return nil
}

func (s *portfolioStore) ListUserIDs(_ context.Context) ([]string, error) {
	var portfolios []models.Portfolio
	if err := s.store.db.Find(&portfolios, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	ids := make([]string, len(portfolios))
	for i, p := range portfolios {
		ids[i] = p.UserID
	}
	sort.Strings(ids)
	return ids, nil
}

// Compile-time check
var _ interfaces.PortfolioStore = (*portfolioStore)(nil)
