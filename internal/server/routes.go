package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/corelabs/core/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Portfolios
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)

	// News
	mux.HandleFunc("/api/news", s.handleNews)

	// Admin
	mux.HandleFunc("/api/admin/snapshots/run", s.handleAdminSnapshotsRun)
}

// routePortfolios dispatches /api/portfolios/{user}/* to the appropriate handler.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "user is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	userID := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handlePortfolioGet(w, r, userID)
	case "holdings":
		s.handleHoldingsReplace(w, r, userID)
	case "visibility":
		s.handleVisibilitySet(w, r, userID)
	case "valuation":
		s.handleValuation(w, r, userID)
	case "history":
		s.handleHistory(w, r, userID)
	case "history/chart":
		s.handleHistoryChart(w, r, userID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	store := s.app.Storage.InternalStore()

	// Runtime settings from system KV, secrets masked
	kvAll := map[string]string{}
	for _, key := range []string{"eodhd_api_key", "fxrates_api_key", "gemini_api_key"} {
		if val, err := store.GetSystemKV(ctx, key); err == nil && val != "" {
			kvAll[key] = maskSecret(val)
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runtime_settings":  kvAll,
		"environment":       s.app.Config.Environment,
		"storage_driver":    s.app.Config.Storage.Driver,
		"logging_level":     s.app.Config.Logging.Level,
		"snapshot_interval": s.app.Config.Snapshots.Interval,
		"eodhd_configured":  s.app.EODHDClient != nil,
		"gemini_configured": s.app.GeminiClient != nil,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
