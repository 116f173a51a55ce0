package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/comment"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/invitation"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

// errorBody is the JSON shape of every error response. Fields is only set
// for validation failures.
type errorBody struct {
	Timestamp string            `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// errorMapping pairs a sentinel with the response it produces. The first
// match wins.
type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "authentication required"},
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
	{auth.ErrForbidden, http.StatusForbidden, "access denied"},
	{comment.ErrNotAuthor, http.StatusForbidden, comment.ErrNotAuthor.Error()},
	{invitation.ErrInvitationUnusable, http.StatusForbidden, invitation.ErrInvitationUnusable.Error()},
	{repository.ErrNotFound, http.StatusNotFound, "resource not found"},
	{repository.ErrConflict, http.StatusConflict, "resource already exists"},
	{validation.ErrMalformedBody, http.StatusBadRequest, "malformed request body"},
}

// writeError maps err to a status and writes the JSON error body.
// Unrecognized errors are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		writeErrorBody(w, http.StatusBadRequest, "validation failed", fields)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeErrorBody(w, m.status, m.message, nil)
			return
		}
	}

	logging.FromContext(r.Context()).Error("request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	writeErrorBody(w, http.StatusInternalServerError, "internal error", nil)
}

func writeErrorBody(w http.ResponseWriter, status int, message string, fields map[string]string) {
	writeJSON(w, status, errorBody{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Fields:    fields,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Op().Warn("encode response", "error", err)
	}
}
