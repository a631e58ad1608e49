package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/models"
	"github.com/corelabs/core/internal/services/snapshot"
)

// isOwner reports whether the request identity is the given user or an admin.
func isOwner(r *http.Request, userID string) bool {
	uc := common.UserContextFromContext(r.Context())
	if uc == nil {
		return false
	}
	return uc.UserID == userID || uc.Role == models.RoleAdmin
}

// loadReadable resolves the portfolio for a read request, enforcing the
// visibility rule: the owner (or an admin) always sees it, everyone else only
// when it is public. The owner's first read lazily creates the portfolio.
func (s *Server) loadReadable(w http.ResponseWriter, r *http.Request, userID string) *models.Portfolio {
	if isOwner(r, userID) {
		uc := common.UserContextFromContext(r.Context())
		if uc.UserID == userID {
			portfolio, err := s.app.PortfolioService.GetOrCreatePortfolio(r.Context(), userID)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "Failed to load portfolio: "+err.Error())
				return nil
			}
			return portfolio
		}
		// Admin reading someone else's portfolio — no lazy create
		portfolio, err := s.app.PortfolioService.GetPortfolio(r.Context(), userID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "Portfolio not found")
				return nil
			}
			WriteError(w, http.StatusInternalServerError, "Failed to load portfolio: "+err.Error())
			return nil
		}
		return portfolio
	}

	portfolio, err := s.app.PortfolioService.GetPortfolio(r.Context(), userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Portfolio not found")
			return nil
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load portfolio: "+err.Error())
		return nil
	}
	if !portfolio.IsPublic {
		WriteError(w, http.StatusForbidden, "Portfolio is private")
		return nil
	}
	return portfolio
}

// handlePortfolioGet handles GET /api/portfolios/{user}.
func (s *Server) handlePortfolioGet(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	portfolio := s.loadReadable(w, r, userID)
	if portfolio == nil {
		return
	}
	WriteJSON(w, http.StatusOK, portfolio)
}

// handleHoldingsReplace handles PUT /api/portfolios/{user}/holdings.
// The holdings set is replaced wholesale; a single invalid holding rejects
// the whole update before anything is written.
func (s *Server) handleHoldingsReplace(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	if !isOwner(r, userID) {
		WriteError(w, http.StatusForbidden, "Only the owner may update holdings")
		return
	}

	var req struct {
		Holdings []models.Holding `json:"holdings"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	portfolio, err := s.app.PortfolioService.ReplaceHoldings(r.Context(), userID, req.Holdings)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, portfolio)
}

// handleVisibilitySet handles PUT /api/portfolios/{user}/visibility.
func (s *Server) handleVisibilitySet(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	if !isOwner(r, userID) {
		WriteError(w, http.StatusForbidden, "Only the owner may change visibility")
		return
	}

	var req struct {
		IsPublic bool `json:"is_public"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	portfolio, err := s.app.PortfolioService.SetVisibility(r.Context(), userID, req.IsPublic)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to update visibility: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, portfolio)
}

// valuationResponse is the payload for GET /api/portfolios/{user}/valuation.
type valuationResponse struct {
	TotalUSD        float64                `json:"total_usd"`
	PrevTotalUSD    float64                `json:"prev_total_usd"`
	DayChangeAmount float64                `json:"day_change_amount"`
	DayChangePct    float64                `json:"day_change_pct"`
	BaselineDay     string                 `json:"baseline_day,omitempty"`
	HasBaseline     bool                   `json:"has_baseline"`
	Positions       []models.PositionValue `json:"positions"`
}

// handleValuation handles GET /api/portfolios/{user}/valuation. The live
// valuation is reconciled against stored snapshots: today's snapshot is
// written, and when a prior-day baseline exists the day change is computed
// against it instead of the quote-level previous closes.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	portfolio := s.loadReadable(w, r, userID)
	if portfolio == nil {
		return
	}

	result, err := s.app.ValuationService.ValuePortfolio(r.Context(), portfolio.Holdings)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "Valuation failed: "+err.Error())
		return
	}

	diff, err := s.app.SnapshotService.Reconcile(r.Context(), userID, result.TotalUSD, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Snapshot reconciliation failed: "+err.Error())
		return
	}

	resp := valuationResponse{
		TotalUSD:        result.TotalUSD,
		PrevTotalUSD:    result.PrevTotalUSD,
		DayChangeAmount: result.DayChangeAmount,
		DayChangePct:    result.DayChangePct,
		Positions:       result.Positions,
	}
	if diff.HasBaseline {
		resp.DayChangeAmount = diff.DayChangeAmount
		resp.DayChangePct = diff.DayChangePct
		resp.BaselineDay = diff.BaselineDay
		resp.HasBaseline = true
	}
	WriteJSON(w, http.StatusOK, resp)
}

// parseHistoryRange reads from/to query parameters, defaulting to the last 30
// days ending today (UTC).
func parseHistoryRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(models.SnapshotDay, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(models.SnapshotDay, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}

// handleHistory handles GET /api/portfolios/{user}/history?from=&to=.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if portfolio := s.loadReadable(w, r, userID); portfolio == nil {
		return
	}

	from, to, err := parseHistoryRange(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid date: "+err.Error())
		return
	}

	points, err := s.app.SnapshotService.BuildHistory(r.Context(), userID, from, to)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid history range: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"points":  points,
	})
}

// handleHistoryChart handles GET /api/portfolios/{user}/history/chart.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request, userID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if portfolio := s.loadReadable(w, r, userID); portfolio == nil {
		return
	}

	from, to, err := parseHistoryRange(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid date: "+err.Error())
		return
	}

	points, err := s.app.SnapshotService.BuildHistory(r.Context(), userID, from, to)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid history range: "+err.Error())
		return
	}

	png, err := snapshot.RenderHistoryChart(userID+" portfolio value", points)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Chart rendering failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
