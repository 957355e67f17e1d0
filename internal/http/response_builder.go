package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"myy/internal/core"
	applog "myy/internal/log"
	"myy/internal/services"
)

type errorBody struct {
	Error  string           `json:"error"`
	Prompt *services.Prompt `json:"prompt,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeConfirmationRequired answers 409 with the prompt the client must
// show before retrying with confirm=true.
func writeConfirmationRequired(w http.ResponseWriter, p services.Prompt) {
	writeJSON(w, http.StatusConflict, errorBody{Error: "confirmation required", Prompt: &p})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyText),
		errors.Is(err, errInvalidQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrRestoreFailed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeServiceError logs server-side failures and writes the mapped status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", applog.FieldError, err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}
