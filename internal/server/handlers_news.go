package server

import (
	"net/http"
	"strconv"
	"strings"
)

// handleNews handles GET /api/news?symbols=AAPL.US,MSFT.US&limit=10.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	raw := r.URL.Query().Get("symbols")
	symbols := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			symbols = append(symbols, part)
		}
	}
	if len(symbols) == 0 {
		WriteError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	review, err := s.app.NewsService.Review(r.Context(), symbols, limit)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "News review failed: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, review)
}
