package interfaces

import (
	"context"
	"time"

	"github.com/corelabs/core/internal/models"
)

// FXService resolves USD conversion factors.
type FXService interface {
	// ResolveUSDRates returns USD-per-unit factors for the given currency
	// codes. USD always maps to 1.0. Currencies the provider cannot quote are
	// omitted. A provider failure fails the whole resolution.
	ResolveUSDRates(ctx context.Context, currencies []string) (map[string]float64, error)
}

// QuoteService fetches live quotes.
type QuoteService interface {
	// FetchQuotes retrieves quotes for all symbols concurrently. Per-symbol
	// failures degrade to a zero quote; the batch never fails.
	FetchQuotes(ctx context.Context, symbols []string) map[string]models.Quote
}

// ValuationService values a holdings set.
type ValuationService interface {
	// ValuePortfolio computes per-position USD values and aggregate totals
	// for the given holdings. Zero holdings yields a zero-valued result.
	ValuePortfolio(ctx context.Context, holdings []models.Holding) (*models.PortfolioValuation, error)
}

// SnapshotService persists and reconciles daily value snapshots.
type SnapshotService interface {
	// Record upserts the (user, day) snapshot with the given total.
	Record(ctx context.Context, userID string, totalUSD float64, day time.Time) error

	// BuildHistory returns one point per calendar day in [from, to] inclusive,
	// carrying the last known value forward across gaps (seed 0).
	BuildHistory(ctx context.Context, userID string, from, to time.Time) ([]models.HistoryPoint, error)

	// Reconcile writes today's snapshot and computes the day-over-day delta
	// against the most recent snapshot from a prior day.
	Reconcile(ctx context.Context, userID string, liveTotal float64, today time.Time) (*models.SnapshotDiff, error)

	// ReconcileAll values and snapshots every stored portfolio once. Returns
	// the number of portfolios processed.
	ReconcileAll(ctx context.Context) (int, error)
}

// PortfolioService manages portfolio access and holdings updates.
type PortfolioService interface {
	// GetOrCreatePortfolio retrieves a user's portfolio, creating an empty
	// one on first access.
	GetOrCreatePortfolio(ctx context.Context, userID string) (*models.Portfolio, error)

	// GetPortfolio retrieves a user's portfolio without creating it.
	GetPortfolio(ctx context.Context, userID string) (*models.Portfolio, error)

	// ReplaceHoldings replaces the holdings set wholesale.
	ReplaceHoldings(ctx context.Context, userID string, holdings []models.Holding) (*models.Portfolio, error)

	// SetVisibility updates the portfolio's public flag.
	SetVisibility(ctx context.Context, userID string, isPublic bool) (*models.Portfolio, error)
}

// NewsService aggregates and filters market news.
type NewsService interface {
	// Review fetches news for the symbols, scores relevance, filters below
	// threshold, and returns items ranked by score descending.
	Review(ctx context.Context, symbols []string, limit int) (*models.NewsReview, error)
}
