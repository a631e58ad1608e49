// Package valuation combines holdings, live quotes, and FX factors into
// per-position USD values and aggregate totals
package valuation

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
	"github.com/corelabs/core/internal/services/fx"
)

// Service implements ValuationService.
type Service struct {
	quotes interfaces.QuoteService
	fx     interfaces.FXService
	logger *common.Logger
}

// NewService creates a new valuation service.
func NewService(quotes interfaces.QuoteService, fxService interfaces.FXService, logger *common.Logger) *Service {
	return &Service{
		quotes: quotes,
		fx:     fxService,
		logger: logger,
	}
}

// ValuePortfolio values a holdings set:
//
//  1. holdings with an empty symbol or non-finite/non-positive amount are
//     dropped before any upstream call;
//  2. quotes and FX rates are fetched concurrently — an FX provider failure
//     fails the valuation, quote failures degrade per symbol;
//  3. a position contributes to totals only when its computed USD value is
//     finite and positive; degraded positions are emitted with zero value and
//     Excluded set, so totals silently under-count when a provider is down.
//
// Zero valid holdings yields a zero-valued result, not an error.
func (s *Service) ValuePortfolio(ctx context.Context, holdings []models.Holding) (*models.PortfolioValuation, error) {
	valid := make([]models.Holding, 0, len(holdings))
	for _, h := range holdings {
		n := h.Normalized()
		if n.Valid() {
			valid = append(valid, n)
		}
	}

	result := &models.PortfolioValuation{
		Positions: []models.PositionValue{},
	}
	if len(valid) == 0 {
		return result, nil
	}

	symbols := make([]string, 0, len(valid))
	currencies := make([]string, 0, len(valid))
	for _, h := range valid {
		symbols = append(symbols, h.Symbol)
		currencies = append(currencies, h.Currency)
	}

	var (
		wg     sync.WaitGroup
		quotes map[string]models.Quote
		rates  map[string]float64
		fxErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quotes = s.quotes.FetchQuotes(ctx, symbols)
	}()
	go func() {
		defer wg.Done()
		rates, fxErr = s.fx.ResolveUSDRates(ctx, currencies)
	}()
	wg.Wait()

	if fxErr != nil {
		return nil, fmt.Errorf("resolve FX rates: %w", fxErr)
	}

	var totalToday, totalPrev float64
	for _, h := range valid {
		quote := quotes[h.Symbol]
		usdPerUnit := fx.USDPerUnit(h.Currency, rates[h.Currency])

		var today, prev float64
		switch h.Basis {
		case models.BasisNotional:
			// Amount is the prior-close notional; re-base it by the price
			// ratio. A zero previous close keeps the ratio at 1 so a missing
			// prior bar doesn't register as a total loss.
			ratio := 1.0
			if quote.PreviousClose > 0 {
				ratio = quote.Current / quote.PreviousClose
			}
			today = h.Amount * ratio * usdPerUnit
			prev = h.Amount * usdPerUnit
		default:
			today = h.Amount * quote.Current * usdPerUnit
			prev = h.Amount * quote.PreviousClose * usdPerUnit
		}

		included := quote.Current > 0 && usdPerUnit > 0 && finite(today) && today > 0
		if !included {
			s.logger.Debug().
				Str("symbol", h.Symbol).
				Str("currency", h.Currency).
				Msg("Position excluded from totals")
			result.Positions = append(result.Positions, models.PositionValue{
				Symbol:   h.Symbol,
				Currency: h.Currency,
				Amount:   h.Amount,
				Basis:    h.Basis,
				Excluded: true,
			})
			continue
		}

		if !finite(prev) || prev < 0 {
			prev = 0
		}

		totalToday += today
		totalPrev += prev
		result.Positions = append(result.Positions, models.PositionValue{
			Symbol:       h.Symbol,
			Currency:     h.Currency,
			Amount:       h.Amount,
			Basis:        h.Basis,
			Price:        quote.Current,
			PrevClose:    quote.PreviousClose,
			USDValue:     today,
			PrevUSDValue: prev,
		})
	}

	result.TotalUSD = totalToday
	result.PrevTotalUSD = totalPrev
	result.DayChangeAmount = totalToday - totalPrev
	if totalPrev > 0 {
		result.DayChangePct = result.DayChangeAmount / totalPrev * 100
	}

	return result, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Ensure Service implements ValuationService
var _ interfaces.ValuationService = (*Service)(nil)
