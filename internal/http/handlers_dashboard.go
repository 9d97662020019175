package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// handleDashboard computes the aggregate view for an optional filter scope
// posted as the request body. An empty body means no filtering at all.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	stats, err := s.repo.DashboardStats(r.Context(), filter)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(stats))
}
