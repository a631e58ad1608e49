// Package portfolio manages portfolio access and holdings updates
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
)

// DefaultPortfolioName is used when a portfolio is lazily created.
const DefaultPortfolioName = "My Portfolio"

// Service implements PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// GetOrCreatePortfolio retrieves a user's portfolio, creating an empty
// private one on first access. Every user who touches holdings endpoints ends
// up with exactly one portfolio.
func (s *Service) GetOrCreatePortfolio(ctx context.Context, userID string) (*models.Portfolio, error) {
	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID)
	if err == nil {
		return portfolio, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("get portfolio for %s: %w", userID, err)
	}

	now := s.now().UTC()
	portfolio = &models.Portfolio{
		UserID:    userID,
		Name:      DefaultPortfolioName,
		IsPublic:  false,
		Holdings:  []models.Holding{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("create portfolio for %s: %w", userID, err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Created portfolio on first access")
	return portfolio, nil
}

// GetPortfolio retrieves a user's portfolio without creating it.
func (s *Service) GetPortfolio(ctx context.Context, userID string) (*models.Portfolio, error) {
	return s.storage.PortfolioStore().GetPortfolio(ctx, userID)
}

// ReplaceHoldings replaces the holdings set wholesale (delete-all-then-insert
// semantics). Holdings are normalized before saving; an invalid holding
// (empty symbol, non-finite or non-positive amount) rejects the whole update
// before anything is written.
func (s *Service) ReplaceHoldings(ctx context.Context, userID string, holdings []models.Holding) (*models.Portfolio, error) {
	normalized := make([]models.Holding, 0, len(holdings))
	for i, h := range holdings {
		n := h.Normalized()
		if !n.Valid() {
			return nil, fmt.Errorf("invalid holding at index %d: symbol %q amount %v", i, h.Symbol, h.Amount)
		}
		if n.Basis != models.BasisShares && n.Basis != models.BasisNotional {
			return nil, fmt.Errorf("invalid holding at index %d: unknown basis %q", i, h.Basis)
		}
		normalized = append(normalized, n)
	}

	portfolio, err := s.GetOrCreatePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio.Holdings = normalized
	portfolio.UpdatedAt = s.now().UTC()
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("save holdings for %s: %w", userID, err)
	}

	return portfolio, nil
}

// SetVisibility updates the portfolio's public flag.
func (s *Service) SetVisibility(ctx context.Context, userID string, isPublic bool) (*models.Portfolio, error) {
	portfolio, err := s.GetOrCreatePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio.IsPublic = isPublic
	portfolio.UpdatedAt = s.now().UTC()
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("save visibility for %s: %w", userID, err)
	}

	return portfolio, nil
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
