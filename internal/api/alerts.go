package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/verdano/plantcore/internal/alert"
)

// defaultAlertLimit caps alert listings when the client does not ask for a
// specific page size.
const defaultAlertLimit = 100

// handleListAlerts returns persisted alerts, newest first.
//
// Query parameters:
//   - plantId: filter by plant
//   - unread: "true" restricts to alerts not yet marked as read
//   - limit: maximum number of rows (default 100)
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if s.alerts == nil {
		writeInternalError(w, "alert store not configured")
		return
	}

	filter := alert.ListFilter{
		PlantID: r.URL.Query().Get("plantId"),
		Limit:   defaultAlertLimit,
	}
	if r.URL.Query().Get("unread") == "true" {
		filter.UnreadOnly = true
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	alerts, err := s.alerts.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

// handleMarkAlertRead marks a single alert as read.
func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	if s.alerts == nil {
		writeInternalError(w, "alert store not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.alerts.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			writeNotFound(w, "alert not found: "+id)
			return
		}
		writeInternalError(w, "failed to mark alert as read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "read": true})
}
