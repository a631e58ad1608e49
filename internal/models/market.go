package models

import "time"

// Quote holds live prices for one symbol in its native currency.
// Ephemeral — sourced fresh on every valuation, never persisted.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Current       float64 `json:"current"`
	PreviousClose float64 `json:"previous_close"`
}

// Zero reports whether the quote carries no usable price.
func (q Quote) Zero() bool {
	return q.Current == 0 && q.PreviousClose == 0
}

// NewsItem is a single news article from the market-data provider.
type NewsItem struct {
	Symbol    string    `json:"symbol"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Link      string    `json:"link,omitempty"`
	Date      time.Time `json:"date"`
	Symbols   []string  `json:"symbols,omitempty"`
	Sentiment float64   `json:"sentiment,omitempty"` // -1..1 when provided upstream
}

// ScoredNewsItem is a news item with its computed relevance score.
type ScoredNewsItem struct {
	NewsItem
	Relevance float64 `json:"relevance"`
}

// NewsReview is the filtered, ranked news result for a set of symbols.
type NewsReview struct {
	Symbols     []string         `json:"symbols"`
	Items       []ScoredNewsItem `json:"items"`
	Digest      string           `json:"digest,omitempty"` // AI summary, when configured
	GeneratedAt time.Time        `json:"generated_at"`
}
