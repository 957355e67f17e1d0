package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"myy/internal/core"
	"myy/internal/services"
)

type trashResponse struct {
	Expenses []core.TrashedEntry `json:"expenses"`
	Tasks    []core.TrashedTask  `json:"tasks"`
	Count    int                 `json:"count"`
}

func (s *Server) handleListTrash(w http.ResponseWriter, r *http.Request) {
	resp := trashResponse{
		Expenses: s.tracker.TrashedEntries(),
		Tasks:    s.tracker.TrashedTasks(),
	}
	resp.Count = len(resp.Expenses) + len(resp.Tasks)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	var restored any
	var found bool
	switch kind {
	case core.KindTask:
		restored, found, err = s.tracker.RestoreTask(r.Context(), id)
	default:
		restored, found, err = s.tracker.RestoreEntry(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "record not found in trash")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "restored": restored})
}

func (s *Server) handleRemoveFromTrash(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !s.tracker.RemoveFromTrash(r.Context(), kind, chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "record not found in trash")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePurgeTrash(w http.ResponseWriter, r *http.Request) {
	n, outcome := s.tracker.ConfirmPurgeAll(r.Context(), queryConfirmer(r.URL.Query()))
	if outcome == services.Cancelled {
		writeConfirmationRequired(w, services.PromptPurgeAll)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"purged": n})
}
