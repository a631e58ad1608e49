// Package models defines data structures for Core
package models

import (
	"math"
	"strings"
	"time"
)

// Basis describes what a holding's Amount represents.
const (
	// BasisShares: Amount is a share count. Canonical representation.
	BasisShares = "shares"
	// BasisNotional: Amount is the position's notional USD-convertible value
	// at the previous close. Kept for compatibility with older saved data.
	BasisNotional = "notional"
)

// Portfolio represents a user's stock portfolio. Each user owns exactly one,
// lazily created on first access.
type Portfolio struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"is_public"`
	Holdings  []Holding `json:"holdings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Holding represents a single position within a portfolio.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	Basis    string  `json:"basis,omitempty"` // "shares" (default) or "notional"
	Currency string  `json:"currency"`        // 3-letter code, defaults to USD
}

// Normalized returns a copy with symbol and currency uppercased and defaults
// applied (currency USD, basis shares).
func (h Holding) Normalized() Holding {
	h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
	h.Currency = strings.ToUpper(strings.TrimSpace(h.Currency))
	if h.Currency == "" {
		h.Currency = "USD"
	}
	h.Basis = strings.ToLower(strings.TrimSpace(h.Basis))
	if h.Basis == "" {
		h.Basis = BasisShares
	}
	return h
}

// Valid reports whether the holding can be valued: non-empty symbol and a
// finite, positive amount.
func (h Holding) Valid() bool {
	if h.Symbol == "" {
		return false
	}
	if math.IsNaN(h.Amount) || math.IsInf(h.Amount, 0) || h.Amount <= 0 {
		return false
	}
	return true
}

// PositionValue is the valuation of a single holding. Excluded positions
// appear in the output with zero value but do not contribute to totals.
type PositionValue struct {
	Symbol       string  `json:"symbol"`
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	Basis        string  `json:"basis"`
	Price        float64 `json:"price"`
	PrevClose    float64 `json:"prev_close"`
	USDValue     float64 `json:"usd_value"`
	PrevUSDValue float64 `json:"prev_usd_value"`
	Excluded     bool    `json:"excluded"`
}

// PortfolioValuation is the aggregate result of valuing a holdings set.
type PortfolioValuation struct {
	TotalUSD        float64         `json:"total_usd"`
	PrevTotalUSD    float64         `json:"prev_total_usd"`
	DayChangeAmount float64         `json:"day_change_amount"`
	DayChangePct    float64         `json:"day_change_pct"`
	Positions       []PositionValue `json:"positions"`
}
