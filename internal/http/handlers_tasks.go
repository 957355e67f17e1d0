package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"myy/internal/core"
	"myy/internal/services"
)

// taskView adds the derived overdue flag to a task.
type taskView struct {
	core.Task
	Overdue bool `json:"overdue"`
}

type tasksResponse struct {
	Tasks     []taskView `json:"tasks"`
	Pending   int        `json:"pending"`
	Completed int        `json:"completed"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var tasks []core.Task
	switch strings.ToLower(r.URL.Query().Get("status")) {
	case "", "all":
		tasks = s.tracker.Tasks()
	case "pending":
		tasks = s.tracker.PendingTasks()
	case "completed", "done":
		tasks = s.tracker.CompletedTasks()
	default:
		writeError(w, http.StatusUnprocessableEntity, "status must be all, pending or completed")
		return
	}

	today := core.DateOf(s.now())
	resp := tasksResponse{
		Tasks:     make([]taskView, 0, len(tasks)),
		Pending:   len(s.tracker.PendingTasks()),
		Completed: len(s.tracker.CompletedTasks()),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskView{Task: t, Overdue: t.Overdue(today)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var due *core.Date
	if strings.TrimSpace(req.Due) != "" {
		d, err := core.ParseDate(req.Due)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		due = &d
	}

	t, err := s.tracker.AddTask(r.Context(), sanitizeInput(req.Text), due)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskView{Task: t, Overdue: t.Overdue(core.DateOf(s.now()))})
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tracker.ToggleTask(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, taskView{Task: t, Overdue: t.Overdue(core.DateOf(s.now()))})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if !s.tracker.SoftDeleteTask(r.Context(), chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrashCompleted(w http.ResponseWriter, r *http.Request) {
	n, outcome := s.tracker.ConfirmMoveCompletedToTrash(r.Context(), queryConfirmer(r.URL.Query()))
	if outcome == services.Cancelled {
		writeConfirmationRequired(w, services.PromptMoveCompleted)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"moved": n})
}

// queryConfirmer answers every prompt with the request's confirm flag.
func queryConfirmer(query url.Values) services.Confirmer {
	if confirmed(query) {
		return services.AlwaysConfirm
	}
	return services.NeverConfirm
}
