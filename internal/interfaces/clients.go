// Package interfaces defines service contracts for Core
package interfaces

import (
	"context"

	"github.com/corelabs/core/internal/models"
)

// MarketDataClient provides live quote and news access.
type MarketDataClient interface {
	// GetRealTimeQuote retrieves the current and previous-close price for a
	// symbol in its native currency.
	GetRealTimeQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetNews retrieves recent news for a symbol.
	GetNews(ctx context.Context, symbol string, limit int) ([]*models.NewsItem, error)
}

// FXClient provides access to the FX rate provider.
type FXClient interface {
	// GetUSDRateTable retrieves the full quote table in one call, mapping
	// currency code to units of that currency per 1 USD.
	GetUSDRateTable(ctx context.Context) (map[string]float64, error)
}

// AIClient provides access to a generative AI backend.
type AIClient interface {
	// GenerateContent generates text from a prompt.
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
