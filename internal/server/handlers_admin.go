package server

import (
	"net/http"

	"github.com/corelabs/core/internal/common"
)

// handleAdminSnapshotsRun handles POST /api/admin/snapshots/run — records a
// value snapshot for every stored portfolio (same pass the scheduler runs).
func (s *Server) handleAdminSnapshotsRun(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	uc := common.UserContextFromContext(r.Context())
	if uc == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !common.IsAdmin(r.Context()) {
		WriteError(w, http.StatusForbidden, "Admin role required")
		return
	}

	count, err := s.app.SnapshotService.ReconcileAll(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Snapshot run failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"portfolios": count,
	})
}
