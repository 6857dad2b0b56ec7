package handlers

import (
	"context"
	"net/http"
	"time"

	"liveclass-backend/internal/models"
)

type ReminderHandler struct {
	scanner scanRunner
	lock    scanLocker
}

type scanRunner interface {
	Scan(ctx context.Context, now time.Time) *models.ScanResult
}

type scanLocker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

func NewReminderHandler(scanner scanRunner, lock scanLocker) *ReminderHandler {
	return &ReminderHandler{scanner: scanner, lock: lock}
}

// Scan runs one reminder pass. The external cron service triggers this and
// logs whatever JSON comes back; partial counters are returned even when the
// scan dies on a store failure.
func (h *ReminderHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	acquired, err := h.lock.Acquire(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to acquire scan lock", r))
		return
	}
	if !acquired {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "A reminder scan is already in progress", r))
		return
	}
	defer h.lock.Release(ctx)

	result := h.scanner.Scan(ctx, time.Now().UTC())

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}
