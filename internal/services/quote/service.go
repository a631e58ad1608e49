// Package quote fetches live quotes with concurrent fan-out
package quote

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
)

// Service implements QuoteService against the market-data provider.
type Service struct {
	market interfaces.MarketDataClient
	logger *common.Logger
}

// NewService creates a new quote service.
func NewService(market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		market: market,
		logger: logger,
	}
}

// FetchQuotes retrieves quotes for all symbols, one upstream request per
// symbol issued concurrently. A per-symbol failure (transport error, non-2xx,
// malformed or non-finite price) degrades that symbol to a zero quote rather
// than failing the batch; the valuation layer excludes zero-priced positions
// from totals. No retries, no cache — every call hits the live provider.
func (s *Service) FetchQuotes(ctx context.Context, symbols []string) map[string]models.Quote {
	distinct := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		symbol := strings.ToUpper(strings.TrimSpace(sym))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		distinct = append(distinct, symbol)
	}

	quotes := make(map[string]models.Quote, len(distinct))
	if len(distinct) == 0 {
		return quotes
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range distinct {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			quote := s.fetchOne(ctx, symbol)
			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return quotes
}

// fetchOne retrieves a single quote, degrading any failure to a zero quote.
func (s *Service) fetchOne(ctx context.Context, symbol string) models.Quote {
	zero := models.Quote{Symbol: symbol}

	if s.market == nil {
		s.logger.Warn().Str("symbol", symbol).Msg("Market data client not configured, degrading to zero")
		return zero
	}

	quote, err := s.market.GetRealTimeQuote(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote fetch failed, degrading to zero")
		return zero
	}
	if quote == nil || !finite(quote.Current) || quote.Current < 0 {
		s.logger.Warn().Str("symbol", symbol).Msg("Quote has no usable price, degrading to zero")
		return zero
	}

	prevClose := quote.PreviousClose
	if !finite(prevClose) || prevClose < 0 {
		prevClose = 0
	}

	return models.Quote{
		Symbol:        symbol,
		Current:       quote.Current,
		PreviousClose: prevClose,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Ensure Service implements QuoteService
var _ interfaces.QuoteService = (*Service)(nil)
