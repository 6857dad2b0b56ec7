package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"liveclass-backend/internal/models"
	"liveclass-backend/internal/services"
)

type SessionHandler struct {
	expander    expander
	sessionRepo sessionRepository
}

type expander interface {
	Expand(ctx context.Context, classID uuid.UUID) (*models.ExpandResult, error)
}

type sessionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListByClass(ctx context.Context, classID uuid.UUID) ([]models.Session, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

func NewSessionHandler(exp expander, sessionRepo sessionRepository) *SessionHandler {
	return &SessionHandler{expander: exp, sessionRepo: sessionRepo}
}

// Generate expands an approved class into its calendar sessions. The
// response shape is the contract the approval workflow consumes.
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClassID string `json:"classId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeExpandFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		writeExpandFailure(w, http.StatusBadRequest, "Invalid classId")
		return
	}

	result, err := h.expander.Expand(r.Context(), classID)
	if err != nil {
		status := http.StatusInternalServerError
		var notFound *services.NotFoundError
		var invalidState *services.InvalidStateError
		var validation *services.ValidationError
		switch {
		case errors.As(err, &notFound):
			status = http.StatusNotFound
		case errors.As(err, &invalidState):
			status = http.StatusBadRequest
		case errors.As(err, &validation):
			status = http.StatusBadRequest
			writeExpandFailure(w, status, validationMessage(validation))
			return
		}
		writeExpandFailure(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// UpdateStatus is the live-class flow touchpoint: scheduled sessions go
// live, live sessions complete, and scheduled sessions can be cancelled.
func (h *SessionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.sessionRepo.GetByID(r.Context(), sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load session", r))
		return
	}

	if !validTransition(session.Status, req.Status) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR",
			"Cannot move session from "+session.Status+" to "+req.Status, r))
		return
	}

	if err := h.sessionRepo.UpdateStatus(r.Context(), sessionID, req.Status); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update session", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session status updated"})
}

func (h *SessionHandler) ListByClass(w http.ResponseWriter, r *http.Request) {
	classID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid class ID", r))
		return
	}

	sessions, err := h.sessionRepo.ListByClass(r.Context(), classID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list sessions", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

func validTransition(from, to string) bool {
	switch from {
	case models.SessionScheduled:
		return to == models.SessionLive || to == models.SessionCancelled
	case models.SessionLive:
		return to == models.SessionCompleted || to == models.SessionCancelled
	}
	return false
}

func validationMessage(v *services.ValidationError) string {
	if len(v.Fields) == 0 {
		return v.Error()
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, v.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func writeExpandFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
