package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"myy/internal/core"
	"myy/internal/services"
)

type entriesResponse struct {
	Month   string       `json:"month,omitempty"`
	Entries []core.Entry `json:"entries"`
	Count   int          `json:"count"`
}

type categoriesResponse struct {
	Type       core.EntryType `json:"type"`
	Categories []string       `json:"categories"`
	Default    string         `json:"default"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.Expense
	if v := r.URL.Query().Get("type"); v != "" {
		t, err := core.ParseEntryType(v)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		typ = t
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Type: typ, Categories: typ.Presets(), Default: typ.DefaultCategory()})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	month, filtered, err := parseMonth(r.URL.Query(), s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := entriesResponse{}
	if filtered {
		resp.Month = month
		resp.Entries = s.tracker.EntriesForMonth(month)
	} else {
		resp.Entries = s.tracker.Entries()
	}
	resp.Count = len(resp.Entries)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	typ, err := core.ParseEntryType(req.Type)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	e, err := s.tracker.AddEntry(r.Context(), services.NewEntry{
		Type:     typ,
		Amount:   amount,
		Category: sanitizeInput(req.Category),
		Note:     sanitizeInput(req.Note),
		Date:     date,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if !s.tracker.SoftDeleteEntry(r.Context(), id) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrashMonth(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	month, _, err := parseMonth(query, s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	n, outcome := s.tracker.ConfirmMoveMonthToTrash(r.Context(), queryConfirmer(query), month)
	if outcome == services.Cancelled {
		writeConfirmationRequired(w, services.PromptMoveMonth)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month, "moved": n})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, _, err := parseMonth(r.URL.Query(), s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Summary(month))
}
