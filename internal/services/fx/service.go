// Package fx resolves USD conversion factors from the FX rate provider
package fx

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
)

// Service implements FXService against a single batched rate-table provider.
type Service struct {
	client interfaces.FXClient
	logger *common.Logger
}

// NewService creates a new FX service.
func NewService(client interfaces.FXClient, logger *common.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// ResolveUSDRates returns USD-per-unit factors for the given currency codes.
// USD always maps to 1.0, whether or not it was requested. The provider's
// table quotes units-of-currency-per-USD, so each factor is the inverse of
// the provider quote. Currencies with a missing, non-positive, or non-finite
// quote are omitted; callers treat absence as unknown. A provider failure
// fails the whole resolution — there is no fallback or cached rate.
func (s *Service) ResolveUSDRates(ctx context.Context, currencies []string) (map[string]float64, error) {
	rates := map[string]float64{"USD": 1.0}

	need := make([]string, 0, len(currencies))
	seen := map[string]bool{"USD": true}
	for _, c := range currencies {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		need = append(need, code)
	}

	if len(need) == 0 {
		return rates, nil
	}

	table, err := s.client.GetUSDRateTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch USD rate table: %w", err)
	}

	for _, code := range need {
		quote, ok := table[code]
		if !ok || quote <= 0 || math.IsNaN(quote) || math.IsInf(quote, 0) {
			s.logger.Warn().Str("currency", code).Float64("quote", quote).Msg("No usable FX quote, omitting currency")
			continue
		}
		rates[code] = 1 / quote
	}

	return rates, nil
}

// USDPerUnit converts a raw FX factor into a USD-per-unit rate. USD is always
// 1. A raw factor above 5 is assumed to be quoted as units-of-currency-per-USD
// (JPY-style) and inverted; at or below 5 it is taken as already USD-per-unit.
// Non-finite or non-positive factors yield 0. The magnitude threshold is a
// known limitation: the provider exposes no quote-direction field, and low
// value currencies can be misclassified.
func USDPerUnit(currency string, raw float64) float64 {
	if strings.EqualFold(strings.TrimSpace(currency), "USD") {
		return 1
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return 0
	}
	if raw > 5 {
		return 1 / raw
	}
	return raw
}

// Ensure Service implements FXService
var _ interfaces.FXService = (*Service)(nil)
