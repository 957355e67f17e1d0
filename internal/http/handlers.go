package http

import (
	"context"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the store answers and the tracker is loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.tracker == nil {
		checks["tracker"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["tracker"] = map[string]int{
			"entries": len(s.tracker.Entries()),
			"tasks":   len(s.tracker.Tasks()),
			"trash":   s.tracker.TrashLen(),
		}
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	m := s.limiter.GetMetrics()
	checks["rate_limit"] = map[string]int64{"clients": m.ClientCount, "rejected": m.Rejected}

	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"darkMode": s.tracker.DarkMode()})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.DarkMode == nil {
		writeError(w, http.StatusUnprocessableEntity, "darkMode is required")
		return
	}
	s.tracker.SetDarkMode(r.Context(), *req.DarkMode)
	writeJSON(w, http.StatusOK, map[string]bool{"darkMode": s.tracker.DarkMode()})
}
