// Package news aggregates and filters market news for a set of symbols
package news

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
)

const (
	// DefaultLimit caps items returned per review when the caller gives none.
	DefaultLimit = 20

	// perSymbolFetch is how many items are pulled per symbol before scoring.
	perSymbolFetch = 25

	// relevanceThreshold filters out weakly related items.
	relevanceThreshold = 0.35

	// recencyHalfLifeDays controls the exponential recency decay.
	recencyHalfLifeDays = 3.0
)

// Service implements NewsService.
type Service struct {
	market interfaces.MarketDataClient
	ai     interfaces.AIClient // optional; nil disables the digest
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewService creates a new news service. ai may be nil — the review then
// omits the digest.
func NewService(market interfaces.MarketDataClient, ai interfaces.AIClient, logger *common.Logger) *Service {
	return &Service{
		market: market,
		ai:     ai,
		logger: logger,
		now:    time.Now,
	}
}

// Review fetches news for the symbols concurrently, scores each item's
// relevance, filters below threshold, and returns the top items ranked by
// score descending. Per-symbol fetch failures are absorbed — the review
// proceeds with whatever arrived.
func (s *Service) Review(ctx context.Context, symbols []string, limit int) (*models.NewsReview, error) {
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
	if len(distinct) == 0 {
		return nil, fmt.Errorf("no symbols to review")
	}
	if s.market == nil {
		return nil, fmt.Errorf("market data client not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []*models.NewsItem
	)
	for _, symbol := range distinct {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			fetched, err := s.market.GetNews(ctx, symbol, perSymbolFetch)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("News fetch failed, skipping symbol")
				return
			}
			mu.Lock()
			items = append(items, fetched...)
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	now := s.now()
	scored := make([]models.ScoredNewsItem, 0, len(items))
	for _, item := range items {
		score := s.scoreItem(item, now)
		if score < relevanceThreshold {
			continue
		}
		scored = append(scored, models.ScoredNewsItem{NewsItem: *item, Relevance: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	review := &models.NewsReview{
		Symbols:     distinct,
		Items:       scored,
		GeneratedAt: now,
	}

	if s.ai != nil && len(scored) > 0 {
		digest, err := s.ai.GenerateContent(ctx, buildDigestPrompt(distinct, scored))
		if err != nil {
			s.logger.Warn().Err(err).Msg("News digest generation failed")
		} else {
			review.Digest = digest
		}
	}

	return review, nil
}

// scoreItem computes relevance in [0, ~1.5]: symbol-match weight, exponential
// recency decay, and sentiment magnitude (strong moves either way matter).
func (s *Service) scoreItem(item *models.NewsItem, now time.Time) float64 {
	match := 0.2
	title := strings.ToUpper(item.Title)
	base := baseSymbol(item.Symbol)
	for _, sym := range item.Symbols {
		if strings.EqualFold(sym, item.Symbol) {
			match = 0.5
			break
		}
	}
	if base != "" && strings.Contains(title, base) {
		match = 0.7
	}

	recency := 0.0
	if !item.Date.IsZero() {
		ageDays := now.Sub(item.Date).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		recency = 0.5 * math.Exp(-ageDays/recencyHalfLifeDays)
	}

	sentiment := 0.3 * math.Abs(item.Sentiment)

	return match + recency + sentiment
}

// baseSymbol strips the exchange suffix ("AAPL.US" -> "AAPL").
func baseSymbol(symbol string) string {
	if i := strings.IndexByte(symbol, '.'); i > 0 {
		return symbol[:i]
	}
	return symbol
}

func buildDigestPrompt(symbols []string, items []models.ScoredNewsItem) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following market news for ")
	sb.WriteString(strings.Join(symbols, ", "))
	sb.WriteString(" in 3-5 sentences, focusing on price-moving events:\n\n")
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item.Title)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Ensure Service implements NewsService
var _ interfaces.NewsService = (*Service)(nil)
