package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"liveclass-backend/internal/middleware"
	"liveclass-backend/internal/models"
	"liveclass-backend/internal/worker"
)

type ClassHandler struct {
	classRepo classRepository
	jobRepo   jobRepository
	redis     *redis.Client
}

type classRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Class, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type jobRepository interface {
	Create(ctx context.Context, j *models.Job) error
}

func NewClassHandler(classRepo classRepository, jobRepo jobRepository, redisClient *redis.Client) *ClassHandler {
	return &ClassHandler{classRepo: classRepo, jobRepo: jobRepo, redis: redisClient}
}

// Approve marks a class approved and enqueues its session expansion. The
// expansion itself runs on the worker pool with retries, so a transient
// store failure cannot strand an approved class without sessions.
func (h *ClassHandler) Approve(w http.ResponseWriter, r *http.Request) {
	classID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid class ID", r))
		return
	}

	class, err := h.classRepo.GetByID(r.Context(), classID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Class not found", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load class", r))
		return
	}

	if class.Status == models.ClassApproved {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Class is already approved", r))
		return
	}

	if err := h.classRepo.UpdateStatus(r.Context(), classID, models.ClassApproved); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to approve class", r))
		return
	}

	job := &models.Job{
		Type:    models.JobSessionExpansion,
		ClassID: classID,
	}
	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create expansion job", r))
		return
	}

	jobBytes, _ := json.Marshal(job)
	if h.redis == nil {
		log.Println("CRITICAL: redis client is nil in Approve, cannot enqueue expansion")
	} else {
		h.redis.LPush(r.Context(), worker.ExpansionQueue, string(jobBytes))
	}

	log.Printf("Class %s approved by %s, expansion job %s queued", classID, middleware.GetCaller(r.Context()), job.ID)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Class approved, session generation queued",
		"job_id":  job.ID,
	})
}
